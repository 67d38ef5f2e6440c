// SPDX-License-Identifier: MIT

// Package web provides the HTTP surface of overlayd: the server-rendered
// admin pages and the overlay links JSON API.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/wyniki-tenis/overlayd/internal/config"
	"github.com/wyniki-tenis/overlayd/internal/health"
	"github.com/wyniki-tenis/overlayd/internal/log"
	"github.com/wyniki-tenis/overlayd/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server handles all HTTP routes.
type Server struct {
	cfg    config.AppConfig
	store  *store.Store
	health *health.Manager
	tmpl   *template.Template
	logger zerolog.Logger
}

// New constructs the HTTP server over the given store.
func New(cfg config.AppConfig, st *store.Store, hm *health.Manager) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}

	return &Server{
		cfg:    cfg,
		store:  st,
		health: hm,
		tmpl:   tmpl,
		logger: log.WithComponent("web"),
	}, nil
}

// render executes one of the embedded page templates.
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error().Err(err).Str("template", name).Msg("template render failed")
	}
}
