/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import "errors"

// ErrorCode classifies a KeeperError. Codes are strings so they serialize
// naturally into logs and API payloads.
type ErrorCode string

const (
	// CodeRemoteFetch: network, timeout or non-success response from the
	// remote holiday source.
	CodeRemoteFetch ErrorCode = "REMOTE_FETCH_FAILED"

	// CodeUnknownCountry: the referenced country code is not stored.
	CodeUnknownCountry ErrorCode = "COUNTRY_CODE_NOT_FOUND"

	// CodeInvalidPageRequest: rejected before any query runs.
	CodeInvalidPageRequest ErrorCode = "INVALID_PAGE_REQUEST"

	// CodeStore: persistence failure during save, delete or query.
	CodeStore ErrorCode = "STORE_ERROR"
)

// Sentinels for errors.Is. Any KeeperError with the same code matches.
var (
	ErrRemoteFetch        = &KeeperError{Code: CodeRemoteFetch}
	ErrUnknownCountry     = &KeeperError{Code: CodeUnknownCountry}
	ErrInvalidPageRequest = &KeeperError{Code: CodeInvalidPageRequest}
	ErrStore              = &KeeperError{Code: CodeStore}
)

var defaultMessages = map[ErrorCode]string{
	CodeRemoteFetch:        "remote holiday source request failed",
	CodeUnknownCountry:     "country code does not exist",
	CodeInvalidPageRequest: "invalid page request",
	CodeStore:              "holiday store operation failed",
}

// KeeperError is the classified error surfaced by holidaykeeper operations.
type KeeperError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// NewError builds a KeeperError; an empty message uses the code's default.
func NewError(code ErrorCode, message string, cause error) *KeeperError {
	return &KeeperError{Code: code, Message: message, Err: cause}
}

func (e *KeeperError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = defaultMessages[e.Code]
	}
	if e.Err != nil {
		return string(e.Code) + ": " + msg + ": " + e.Err.Error()
	}
	return string(e.Code) + ": " + msg
}

func (e *KeeperError) Unwrap() error { return e.Err }

// Is matches any KeeperError carrying the same code.
func (e *KeeperError) Is(target error) bool {
	t, ok := target.(*KeeperError)
	return ok && t.Code == e.Code
}

// CodeOf returns the code of the first KeeperError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var ke *KeeperError
	if errors.As(err, &ke) {
		return ke.Code
	}
	return ""
}
