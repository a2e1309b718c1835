/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import "errors"

var (
	errTooManyRows   = errors.New("too many rows in request")
	errEmptyBody     = errors.New("request body is empty")
	errTrailingInput = errors.New("unexpected data after request body")
	errInvalidAge    = errors.New("subject age out of range")
)
