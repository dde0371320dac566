// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package serializer

import (
	"strings"
	"time"

	"github.com/NVIDIA/gridserde/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	operationDeserialize = "deserialize"
	operationSerialize   = "serialize"

	statusSuccess = "success"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridserde_operations_total",
			Help: "Total number of dataset (de)serializations by outcome",
		},
		[]string{"operation", "format", "status"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridserde_operation_duration_seconds",
			Help:    "Duration of dataset (de)serialization in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation", "format"},
	)

	payloadBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridserde_payload_bytes",
			Help:    "Size of serialized datasets read or written",
			Buckets: prometheus.ExponentialBuckets(256, 4, 10),
		},
		[]string{"operation", "format"},
	)
)

// observe records the outcome of one operation.
func observe(operation string, f Format, start time.Time, size int, err error) {
	status := statusSuccess
	if err != nil {
		status = strings.ToLower(string(errors.CodeOf(err)))
	}
	operationsTotal.WithLabelValues(operation, string(f), status).Inc()
	operationDuration.WithLabelValues(operation, string(f)).Observe(time.Since(start).Seconds())
	if err == nil {
		payloadBytes.WithLabelValues(operation, string(f)).Observe(float64(size))
	}
}
