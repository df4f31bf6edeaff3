// Package handler exposes the conference API over HTTP.  Handlers bind the
// JSON wire forms, call the service and map its errors to status codes.
package handler

import (
	"github.com/rs/zerolog"

	"github.com/iliyamo/conference-central/internal/service"
)

// Handler serves every API route.
type Handler struct {
	Svc *service.Service
	Log zerolog.Logger
}

// New returns a Handler backed by svc.
func New(svc *service.Service, log zerolog.Logger) *Handler {
	return &Handler{Svc: svc, Log: log}
}
