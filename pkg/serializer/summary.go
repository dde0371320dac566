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
	"strconv"

	"github.com/NVIDIA/gridserde/pkg/dataset"
)

// Summary describes a loaded dataset without its records.
type Summary struct {
	Source     string             `json:"source,omitempty" yaml:"source,omitempty"`
	Format     Format             `json:"format" yaml:"format"`
	Type       string             `json:"type" yaml:"type"`
	IsBatch    bool               `json:"is_batch" yaml:"is_batch"`
	BatchSize  int                `json:"batch_size" yaml:"batch_size"`
	Components []ComponentSummary `json:"components" yaml:"components"`
}

// ComponentSummary describes one component array.
type ComponentSummary struct {
	Name     string         `json:"name" yaml:"name"`
	Layout   dataset.Layout `json:"layout" yaml:"layout"`
	Elements int            `json:"elements" yaml:"elements"`
}

// Summarize builds the summary of ds.
func Summarize(source string, format Format, ds *dataset.Dataset) Summary {
	s := Summary{
		Source:     source,
		Format:     format,
		Type:       ds.Type(),
		IsBatch:    ds.IsBatch(),
		BatchSize:  ds.BatchSize(),
		Components: make([]ComponentSummary, 0, ds.Len()),
	}
	for _, a := range ds.Components() {
		s.Components = append(s.Components, ComponentSummary{
			Name:     a.Component().Name,
			Layout:   a.Layout(),
			Elements: a.Len(),
		})
	}
	return s
}

// Summaries is a list of summaries rendered as one table.
type Summaries []Summary

// TableHeader implements Tabular.
func (Summaries) TableHeader() []string {
	return []string{"SOURCE", "FORMAT", "TYPE", "BATCH", "SCENARIOS", "COMPONENT", "LAYOUT", "ELEMENTS"}
}

// TableRows implements Tabular. Each component gets its own row.
func (ss Summaries) TableRows() [][]string {
	var rows [][]string
	for _, s := range ss {
		base := []string{s.Source, string(s.Format), s.Type, strconv.FormatBool(s.IsBatch), strconv.Itoa(s.BatchSize)}
		if len(s.Components) == 0 {
			rows = append(rows, append(base, "-", "-", "0"))
			continue
		}
		for _, c := range s.Components {
			row := append([]string(nil), base...)
			rows = append(rows, append(row, c.Name, string(c.Layout), strconv.Itoa(c.Elements)))
		}
	}
	return rows
}
