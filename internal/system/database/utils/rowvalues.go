/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */
package utils

import (
	"strconv"
)

// RowString reads a string column, returning "" for NULL or mismatched types.
func RowString(row map[string]interface{}, column string) string {
	switch v := row[column].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// RowInt64 reads an integer column stored as any numeric driver type or numeric string.
func RowInt64(row map[string]interface{}, column string) int64 {
	switch v := row[column].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	case []byte:
		n, _ := strconv.ParseInt(string(v), 10, 64)
		return n
	default:
		return 0
	}
}

// RowBool reads a boolean column stored as TINYINT, BOOL or "true"/"1" text.
func RowBool(row map[string]interface{}, column string) bool {
	switch v := row[column].(type) {
	case bool:
		return v
	case string:
		return v == "1" || v == "true"
	case []byte:
		s := string(v)
		return s == "1" || s == "true"
	default:
		return RowInt64(row, column) != 0
	}
}

// RowNullableInt64 reads an integer column, returning nil for NULL.
func RowNullableInt64(row map[string]interface{}, column string) *int64 {
	if row[column] == nil {
		return nil
	}
	v := RowInt64(row, column)
	return &v
}
