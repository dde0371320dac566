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

package schema

// ScalarType names the storage type of one attribute. Values match the
// engine's C type names so schema files read the same as its metadata.
type ScalarType string

// String returns the string representation of the ScalarType.
func (t ScalarType) String() string {
	return string(t)
}

const (
	ScalarFloat64   ScalarType = "double"
	ScalarInt32     ScalarType = "int32_t"
	ScalarInt8      ScalarType = "int8_t"
	ScalarID        ScalarType = "ID"
	ScalarString    ScalarType = "string"
	ScalarFloat64x3 ScalarType = "double3"
)

// ScalarTypes is the list of all supported scalar types.
var ScalarTypes = []ScalarType{
	ScalarFloat64,
	ScalarInt32,
	ScalarInt8,
	ScalarID,
	ScalarString,
	ScalarFloat64x3,
}

// ParseScalarType parses a string into a ScalarType.
// Returns the ScalarType and true if parsing succeeds, or empty ScalarType and false if the string is invalid.
func ParseScalarType(s string) (ScalarType, bool) {
	for _, t := range ScalarTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Attribute is one named, typed slot of a component record.
type Attribute struct {
	Name string
	Type ScalarType
	// Index is the attribute's offset inside a record.
	Index int
}

// AttributeDef is the serializable form of an Attribute.
type AttributeDef struct {
	Name string     `json:"name" yaml:"name"`
	Type ScalarType `json:"type" yaml:"type"`
}

// ComponentDef is the serializable form of a Component.
type ComponentDef struct {
	Name       string         `json:"name" yaml:"name"`
	Attributes []AttributeDef `json:"attributes" yaml:"attributes"`
}

// DatasetDef is the serializable form of a DatasetSchema.
type DatasetDef struct {
	Name       string         `json:"name" yaml:"name"`
	Components []ComponentDef `json:"components" yaml:"components"`
}

// File is the top-level layout of a schema YAML file.
type File struct {
	Datasets []DatasetDef `json:"datasets" yaml:"datasets"`
}
