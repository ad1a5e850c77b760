// Copyright 2025 The Presto-Go Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package expression

import "fmt"

// NullableValue is a typed constant that may be SQL NULL. Values are plain
// comparable scalars (int64, float64, string, bool); the planner never
// inspects them beyond equality.
type NullableValue struct {
	typeName string
	value    any
	null     bool
}

// NonNullValue builds a constant holding the given value.
func NonNullValue(typeName string, value any) NullableValue {
	return NullableValue{typeName: typeName, value: value}
}

// NullValue builds a typed SQL NULL constant.
func NullValue(typeName string) NullableValue {
	return NullableValue{typeName: typeName, null: true}
}

// TypeName returns the SQL type name of the constant.
func (v NullableValue) TypeName() string {
	return v.typeName
}

// IsNull reports whether the constant is SQL NULL.
func (v NullableValue) IsNull() bool {
	return v.null
}

// Value returns the constant's value, nil for SQL NULL.
func (v NullableValue) Value() any {
	if v.null {
		return nil
	}
	return v.value
}

// Equal reports whether both constants have the same type and value. Two
// NULLs of the same type compare equal here; this is planner-level identity,
// not SQL three-valued comparison.
func (v NullableValue) Equal(other NullableValue) bool {
	if v.typeName != other.typeName || v.null != other.null {
		return false
	}
	return v.null || v.value == other.value
}

func (v NullableValue) String() string {
	if v.null {
		return fmt.Sprintf("null:%s", v.typeName)
	}
	return fmt.Sprintf("%v:%s", v.value, v.typeName)
}
