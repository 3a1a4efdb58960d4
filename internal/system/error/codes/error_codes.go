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

package codes

import "net/http"

// PSD2 message codes surfaced to TPPs and PSUs.
const (
	FormatError           = "FORMAT_ERROR"
	PsuCredentialsInvalid = "PSU_CREDENTIALS_INVALID"
	ConsentExpired        = "CONSENT_EXPIRED"
	ConsentUnknown        = "CONSENT_UNKNOWN_400"
	ServiceBlocked        = "SERVICE_BLOCKED"
	ServiceInvalid        = "SERVICE_INVALID_405"
	StatusInvalid         = "STATUS_INVALID"
	ScaMethodUnknown      = "SCA_METHOD_UNKNOWN"
	ScaInvalid            = "SCA_INVALID"
	ResourceUnknown       = "RESOURCE_UNKNOWN_404"
	ResourceExpired       = "RESOURCE_EXPIRED_403"
	AccessExceeded        = "ACCESS_EXCEEDED"
	InternalServerError   = "INTERNAL_SERVER_ERROR"
)

var httpStatusByMessageCode = map[string]int{
	FormatError:           http.StatusBadRequest,
	PsuCredentialsInvalid: http.StatusUnauthorized,
	ConsentExpired:        http.StatusUnauthorized,
	ConsentUnknown:        http.StatusBadRequest,
	ServiceBlocked:        http.StatusForbidden,
	ServiceInvalid:        http.StatusMethodNotAllowed,
	StatusInvalid:         http.StatusConflict,
	ScaMethodUnknown:      http.StatusBadRequest,
	ScaInvalid:            http.StatusBadRequest,
	ResourceUnknown:       http.StatusNotFound,
	ResourceExpired:       http.StatusForbidden,
	AccessExceeded:        http.StatusTooManyRequests,
	InternalServerError:   http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status associated with a message code, or 0 when unknown.
func HTTPStatus(messageCode string) int {
	return httpStatusByMessageCode[messageCode]
}
