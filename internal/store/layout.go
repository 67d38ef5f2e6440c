// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wyniki-tenis/overlayd/internal/overlay"
)

// LoadLayout returns the layout configuration, creating the default row on
// first access.
func (s *Store) LoadLayout(ctx context.Context) (overlay.Layout, error) {
	var (
		id      int64
		l       overlay.Layout
		kortAll string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, view_width, view_height, display_scale, left_offset, label_position, kort_all
		 FROM overlay_config ORDER BY id LIMIT 1`).
		Scan(&id, &l.ViewWidth, &l.ViewHeight, &l.DisplayScale, &l.LeftOffset, &l.LabelPosition, &kortAll)
	if errors.Is(err, sql.ErrNoRows) {
		defaults := overlay.DefaultLayout()
		if err := s.SaveLayout(ctx, defaults); err != nil {
			return overlay.Layout{}, err
		}
		return defaults, nil
	}
	if err != nil {
		return overlay.Layout{}, fmt.Errorf("store: load layout: %w", err)
	}

	if kortAll != "" {
		if err := json.Unmarshal([]byte(kortAll), &l.KortAll); err != nil {
			s.logger.Warn().Err(err).Msg("stored kort_all is not valid JSON, using defaults")
			l.KortAll = nil
		}
	}

	return overlay.EnsureLayout(l), nil
}

// SaveLayout persists the layout configuration as the single config row.
func (s *Store) SaveLayout(ctx context.Context, l overlay.Layout) error {
	ensured := overlay.EnsureLayout(l)

	kortAll, err := json.Marshal(ensured.KortAll)
	if err != nil {
		return fmt.Errorf("store: marshal kort_all: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: save layout: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM overlay_config ORDER BY id LIMIT 1`).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx,
			`INSERT INTO overlay_config (view_width, view_height, display_scale, left_offset, label_position, kort_all)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			ensured.ViewWidth, ensured.ViewHeight, ensured.DisplayScale,
			ensured.LeftOffset, ensured.LabelPosition, string(kortAll))
	case err == nil:
		_, err = tx.ExecContext(ctx,
			`UPDATE overlay_config SET view_width = ?, view_height = ?, display_scale = ?,
			 left_offset = ?, label_position = ?, kort_all = ? WHERE id = ?`,
			ensured.ViewWidth, ensured.ViewHeight, ensured.DisplayScale,
			ensured.LeftOffset, ensured.LabelPosition, string(kortAll), id)
	}
	if err != nil {
		return fmt.Errorf("store: save layout: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: save layout: %w", err)
	}
	return nil
}
