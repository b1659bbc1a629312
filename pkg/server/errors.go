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

package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/NVIDIA/lxd-inventory/pkg/errors"
	"github.com/NVIDIA/lxd-inventory/pkg/serializer"
)

// Error codes of the service itself. Build failures reuse the codes of
// the errors package.
const (
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	ErrCodeNotFound          = "NOT_FOUND"
)

// WriteError writes an error response carrying the request ID.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code, message string, retryable bool, details map[string]any) {

	requestID := RequestID(r.Context())
	if requestID == "" {
		requestID = uuid.New().String()
	}

	serializer.RespondJSON(w, statusCode, ErrorResponse{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	})
}

// WriteAppError maps a structured error to a status code and writes it.
func WriteAppError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.CodeOf(err)
	status, retryable := statusFor(code)
	if code == "" {
		code = ErrCodeInternalError
	}

	var details map[string]any
	var se *apperrors.StructuredError
	if errors.As(err, &se) {
		details = se.Context
	}
	WriteError(w, r, status, string(code), err.Error(), retryable, details)
}

func statusFor(code apperrors.ErrorCode) (int, bool) {
	switch code {
	case apperrors.ErrCodeConfig, apperrors.ErrCodeFilterEvaluation:
		return http.StatusInternalServerError, false
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout, true
	case apperrors.ErrCodeUnavailable, apperrors.ErrCodeEndpoint:
		return http.StatusBadGateway, true
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound, false
	default:
		return http.StatusInternalServerError, true
	}
}
