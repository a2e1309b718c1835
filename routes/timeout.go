/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"context"
	"time"

	"github.com/flamego/flamego"
)

// Timeout bounds the request context so a slow batch is interrupted. A
// non-positive duration leaves the context untouched.
func Timeout(d time.Duration) flamego.Handler {
	return func(c flamego.Context) {
		if d <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), d)
		defer cancel()

		c.Request().Request = c.Request().WithContext(ctx)
		c.Next()
	}
}
