// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package app

import "errors"

var (
	// ErrAlreadyConnected is returned by a second call to Connect.
	ErrAlreadyConnected = errors.New("adapter is already connected")

	// ErrClosed is returned by operations on a closed App.
	ErrClosed = errors.New("app is closed")
)
