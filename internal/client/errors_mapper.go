// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

var statusErrors = map[int]error{
	http.StatusBadRequest:           ErrBadRequest,
	http.StatusUnauthorized:         ErrUnauthorized,
	http.StatusForbidden:            ErrForbidden,
	http.StatusNotFound:             ErrNotFound,
	http.StatusConflict:             ErrConflict,
	http.StatusUnsupportedMediaType: ErrUnsupportedMediaType,
	http.StatusTooManyRequests:      ErrTooManyRequests,
	http.StatusInternalServerError:  ErrInternalServerError,
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// mapHTTPError returns nil for 2xx responses. Otherwise the detail of the
// error body, or the raw body, is wrapped into the sentinel of the status.
func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	message := strings.TrimSpace(string(resp.Body()))
	var body errorBody
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error != "" {
		message = body.Error
		if body.Detail != "" {
			message = body.Detail
		}
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode())
	}

	if sentinel, ok := statusErrors[resp.StatusCode()]; ok {
		return fmt.Errorf("%w: %s", sentinel, message)
	}
	return fmt.Errorf("http %d: %s", resp.StatusCode(), message)
}
