// SPDX-License-Identifier: MIT

// Package health answers liveness and readiness probes.
package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

// Status is the outcome of a check.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult is the outcome of one component check.
type CheckResult struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Checker is a named readiness check.
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// Manager runs registered checks and serves the probe endpoints.
type Manager struct {
	version  string
	checkers []Checker
}

// NewManager creates a manager reporting the given build version.
func NewManager(version string) *Manager {
	return &Manager{version: version}
}

// RegisterChecker adds a readiness check.
func (m *Manager) RegisterChecker(c Checker) {
	m.checkers = append(m.checkers, c)
}

type probeResponse struct {
	Status    Status                 `json:"status"`
	Ready     *bool                  `json:"ready,omitempty"`
	Version   string                 `json:"version,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

func writeProbe(w http.ResponseWriter, code int, resp probeResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// ServeHealth answers the liveness probe: 200 whenever the process is up.
func (m *Manager) ServeHealth(w http.ResponseWriter, r *http.Request) {
	writeProbe(w, http.StatusOK, probeResponse{
		Status:    StatusHealthy,
		Version:   m.version,
		Timestamp: time.Now(),
	})
}

// ServeReady answers the readiness probe: 200 only when every registered
// checker passes, 503 otherwise.
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ready := true
	checks := make(map[string]CheckResult, len(m.checkers))
	for _, c := range m.checkers {
		result := c.Check(ctx)
		checks[c.Name()] = result
		if result.Status == StatusUnhealthy {
			ready = false
		}
	}

	status := StatusHealthy
	code := http.StatusOK
	if !ready {
		status = StatusUnhealthy
		code = http.StatusServiceUnavailable
	}
	writeProbe(w, code, probeResponse{
		Status:    status,
		Ready:     &ready,
		Timestamp: time.Now(),
		Checks:    checks,
	})
}

// DBChecker verifies database connectivity with a ping.
type DBChecker struct {
	db *sql.DB
}

// NewDBChecker wraps a database handle in a readiness checker.
func NewDBChecker(db *sql.DB) *DBChecker {
	return &DBChecker{db: db}
}

func (c *DBChecker) Name() string { return "database" }

func (c *DBChecker) Check(ctx context.Context) CheckResult {
	if err := c.db.PingContext(ctx); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy}
}
