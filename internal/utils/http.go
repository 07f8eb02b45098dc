// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ContentTypeJSON is the media type of every response body.
const ContentTypeJSON = "application/json"

// WriteJSON serializes data to JSON and writes it with statusCode.
//
// The body is marshaled before any header is written, so a marshaling
// failure still produces a clean 500 Internal Server Error. It returns the
// number of body bytes written.
//
// Example usage:
//
//	WriteJSON(w, models.Document{...}, http.StatusOK)
//	WriteJSON(w, errorResponse{Error: "Not Found"}, http.StatusNotFound)
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(statusCode)

	return w.Write(jsonData)
}
