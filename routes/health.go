/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"net/http"

	"github.com/flamego/flamego"
)

// Info describes the running normalizer for health checks.
type Info struct {
	Strategies     []string `json:"strategies"`
	DefaultProfile string   `json:"defaultProfile"`
	Store          string   `json:"store"`
}

// Healthz handles GET /healthz.
func Healthz(c flamego.Context, info Info) {
	writeJSON(c, http.StatusOK, map[string]any{
		"status": "ok",
		"info":   info,
	})
}
