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
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/NVIDIA/gridserde/pkg/dataset"
	"github.com/NVIDIA/gridserde/pkg/defaults"
	"github.com/NVIDIA/gridserde/pkg/errors"
	"github.com/NVIDIA/gridserde/pkg/schema"
	"github.com/NVIDIA/gridserde/pkg/server"
)

// Query parameters understood by the handlers.
const (
	QueryFrom    = "from"
	QueryTo      = "to"
	QueryCompact = "compact"
	QueryIndent  = "indent"
)

// Handler serves dataset conversion and validation over HTTP.
type Handler struct {
	registry *schema.Registry
}

// NewHandler creates a Handler resolving datasets against reg. A nil reg
// uses schema.Default().
func NewHandler(reg *schema.Registry) *Handler {
	if reg == nil {
		reg = schema.Default()
	}
	return &Handler{registry: reg}
}

// HandleConvert reads a dataset from the request body and writes it back in
// the format named by the "to" query parameter.
//
//	POST /v1/convert?from=json&to=msgpack&compact=true&indent=0
//
// The input format comes from "from", then the Content-Type header, and
// defaults to JSON. Uniform sparse components are densified before
// writing; ragged ones fail with NOT_SUPPORTED.
func (h *Handler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		server.MethodNotAllowed(w, r, http.MethodPost)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaults.ConvertHandlerTimeout)
	defer cancel()

	from, err := requestFormat(r)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Invalid input format", nil)
		return
	}
	to, err := queryFormat(r, QueryTo, FormatJSON)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Invalid output format", nil)
		return
	}
	opts, err := dumpOptions(r)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Invalid output options", nil)
		return
	}

	ds, ok := h.load(ctx, w, r, from)
	if !ok {
		return
	}

	out, err := Serialize(ds.Type(), dataset.Canonicalize(ds), to,
		append(opts, WithRegistry(h.registry))...)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to serialize dataset", nil)
		return
	}
	if err := ctx.Err(); err != nil {
		server.WriteErrorFromErr(w, r, errors.Wrap(errors.ErrCodeTimeout, "conversion timed out", err), "", nil)
		return
	}

	w.Header().Set("Content-Type", to.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out); err != nil {
		slog.Warn("response write failed", "error", err)
	}
}

// HandleValidate reads a dataset from the request body and responds with
// its Summary.
//
//	POST /v1/validate?from=msgpack
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		server.MethodNotAllowed(w, r, http.MethodPost)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaults.ValidateHandlerTimeout)
	defer cancel()

	from, err := requestFormat(r)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Invalid input format", nil)
		return
	}

	ds, ok := h.load(ctx, w, r, from)
	if !ok {
		return
	}

	server.RespondJSON(w, http.StatusOK, Summarize("", from, ds))
}

// load reads and deserializes the request body. It writes the error
// response itself and reports whether the caller may continue.
func (h *Handler) load(ctx context.Context, w http.ResponseWriter, r *http.Request, from Format) (*dataset.Dataset, bool) {
	if r.Body == nil {
		server.WriteError(w, r, http.StatusBadRequest, errors.ErrCodeInvalidRequest,
			"Request body is required", false, nil)
		return nil, false
	}
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			server.WriteError(w, r, http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidRequest,
				"Request body too large", false, map[string]any{"limit": maxErr.Limit})
			return nil, false
		}
		server.WriteErrorFromErr(w, r, err, "Failed to read request body", nil)
		return nil, false
	}
	if len(body) == 0 {
		server.WriteError(w, r, http.StatusBadRequest, errors.ErrCodeInvalidRequest,
			"Request body is required", false, nil)
		return nil, false
	}

	_, ds, err := Deserialize(body, from, WithRegistry(h.registry))
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to deserialize dataset", map[string]any{"format": from})
		return nil, false
	}
	if err := ctx.Err(); err != nil {
		server.WriteErrorFromErr(w, r, errors.Wrap(errors.ErrCodeTimeout, "request timed out", err), "", nil)
		return nil, false
	}

	slog.Debug("request dataset loaded",
		"requestID", server.RequestID(r.Context()),
		"type", ds.Type(),
		"format", from,
		"bytes", len(body))
	return ds, true
}

func requestFormat(r *http.Request) (Format, error) {
	if r.URL.Query().Has(QueryFrom) {
		return ParseFormat(r.URL.Query().Get(QueryFrom))
	}
	if f, ok := FormatFromContentType(r.Header.Get("Content-Type")); ok {
		return f, nil
	}
	return FormatJSON, nil
}

func queryFormat(r *http.Request, key string, def Format) (Format, error) {
	if !r.URL.Query().Has(key) {
		return def, nil
	}
	return ParseFormat(r.URL.Query().Get(key))
}

func dumpOptions(r *http.Request) ([]Option, error) {
	q := r.URL.Query()
	var opts []Option

	if q.Has(QueryCompact) {
		compact, err := strconv.ParseBool(q.Get(QueryCompact))
		if err != nil {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid %s value %q", QueryCompact, q.Get(QueryCompact)),
				map[string]any{"parameter": QueryCompact})
		}
		opts = append(opts, WithCompactList(compact))
	}

	if q.Has(QueryIndent) {
		indent, err := strconv.Atoi(q.Get(QueryIndent))
		if err != nil || indent > defaults.MaxIndent {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid %s value %q, expected at most %d", QueryIndent, q.Get(QueryIndent), defaults.MaxIndent),
				map[string]any{"parameter": QueryIndent})
		}
		opts = append(opts, WithIndent(max(indent, 0)))
	}

	return opts, nil
}
