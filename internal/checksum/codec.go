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


// Package checksum computes and verifies the versioned tamper-detection digest
// stored alongside every consent.
package checksum

import (
	"bytes"
	"strings"

	"github.com/wso2/psd2-consent-mgt/internal/consent/model"
)

// Delimiter separates the segments of a stored checksum.
const Delimiter = "_%_"

// versionLength is the width of the zero-padded version prefix.
const versionLength = 3

// Codec calculates and verifies one checksum version.
type Codec interface {
	Version() string
	Calculate(consent *model.Consent) []byte
	Verify(consent *model.Consent, checksum []byte) bool
}

// segments splits a stored checksum on the delimiter. Trailing empty segments are
// dropped so that "abc_%_" counts as a single segment.
func segments(checksum []byte) []string {
	parts := strings.Split(string(checksum), Delimiter)
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// versionOf returns the version prefix of a stored checksum, or "" when it has none.
func versionOf(checksum []byte) string {
	if len(checksum) < versionLength {
		return ""
	}
	idx := bytes.Index(checksum, []byte(Delimiter))
	if idx != versionLength {
		return ""
	}
	return string(checksum[:versionLength])
}
