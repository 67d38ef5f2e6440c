// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/wyniki-tenis/overlayd/internal/overlay"
)

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ListLinks returns all overlay links ordered by court ID, numeric IDs first.
func (s *Store) ListLinks(ctx context.Context) ([]overlay.Link, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kort_id, overlay_url, control_url FROM overlay_links`)
	if err != nil {
		return nil, fmt.Errorf("store: list links: %w", err)
	}
	defer rows.Close()

	var links []overlay.Link
	for rows.Next() {
		var l overlay.Link
		if err := rows.Scan(&l.ID, &l.KortID, &l.OverlayURL, &l.ControlURL); err != nil {
			return nil, fmt.Errorf("store: scan link: %w", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list links: %w", err)
	}

	overlay.SortLinks(links)
	return links, nil
}

// GetLink returns one link by primary key.
func (s *Store) GetLink(ctx context.Context, id int64) (overlay.Link, error) {
	var l overlay.Link
	err := s.db.QueryRowContext(ctx,
		`SELECT id, kort_id, overlay_url, control_url FROM overlay_links WHERE id = ?`, id).
		Scan(&l.ID, &l.KortID, &l.OverlayURL, &l.ControlURL)
	if errors.Is(err, sql.ErrNoRows) {
		return overlay.Link{}, ErrNotFound
	}
	if err != nil {
		return overlay.Link{}, fmt.Errorf("store: get link %d: %w", id, err)
	}
	return l, nil
}

// InsertLink validates the payload and creates a new link. It returns a
// ValidationError for malformed input and ErrConflict when the kort_id is
// already taken.
func (s *Store) InsertLink(ctx context.Context, in overlay.LinkInput) (overlay.Link, error) {
	normalized, err := overlay.ValidateLink(in)
	if err != nil {
		return overlay.Link{}, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO overlay_links (kort_id, overlay_url, control_url) VALUES (?, ?, ?)`,
		normalized.KortID, normalized.Overlay, normalized.Control)
	if isUniqueViolation(err) {
		return overlay.Link{}, ErrConflict
	}
	if err != nil {
		return overlay.Link{}, fmt.Errorf("store: insert link: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return overlay.Link{}, fmt.Errorf("store: insert link: %w", err)
	}

	return overlay.Link{
		ID:         id,
		KortID:     normalized.KortID,
		OverlayURL: normalized.Overlay,
		ControlURL: normalized.Control,
	}, nil
}

// UpdateLink validates the payload and rewrites an existing link. Changing
// kort_id onto another row's value is a conflict, matching insert semantics.
func (s *Store) UpdateLink(ctx context.Context, id int64, in overlay.LinkInput) (overlay.Link, error) {
	normalized, err := overlay.ValidateLink(in)
	if err != nil {
		return overlay.Link{}, err
	}

	if _, err := s.GetLink(ctx, id); err != nil {
		return overlay.Link{}, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE overlay_links SET kort_id = ?, overlay_url = ?, control_url = ? WHERE id = ?`,
		normalized.KortID, normalized.Overlay, normalized.Control, id)
	if isUniqueViolation(err) {
		return overlay.Link{}, ErrConflict
	}
	if err != nil {
		return overlay.Link{}, fmt.Errorf("store: update link %d: %w", id, err)
	}

	return overlay.Link{
		ID:         id,
		KortID:     normalized.KortID,
		OverlayURL: normalized.Overlay,
		ControlURL: normalized.Control,
	}, nil
}

// DeleteLink removes a link permanently.
func (s *Store) DeleteLink(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM overlay_links WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete link %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete link %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// LinksByKortID returns the links indexed by court ID.
func (s *Store) LinksByKortID(ctx context.Context) (map[string]overlay.Link, error) {
	links, err := s.ListLinks(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]overlay.Link, len(links))
	for _, l := range links {
		byID[l.KortID] = l
	}
	return byID, nil
}

// CountLinks reports the number of stored links.
func (s *Store) CountLinks(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM overlay_links`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count links: %w", err)
	}
	return n, nil
}
