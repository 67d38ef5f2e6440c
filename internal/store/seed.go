// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/wyniki-tenis/overlayd/internal/log"
	"github.com/wyniki-tenis/overlayd/internal/metrics"
	"github.com/wyniki-tenis/overlayd/internal/overlay"
)

// seedEntry is one court's pair of URLs in the seed file.
type seedEntry struct {
	Overlay string `json:"overlay"`
	Control string `json:"control"`
}

// seedFile is keyed by kort_id.
type seedFile map[string]seedEntry

// readSeedFile accepts both seed file shapes: an object keyed by kort_id and
// a list of {kort_id, overlay, control} objects. A list entry with a duplicate
// kort_id overwrites the earlier one.
func readSeedFile(path string) (seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries seedFile
	if err := json.Unmarshal(data, &entries); err == nil {
		return entries, nil
	}

	var list []struct {
		KortID string `json:"kort_id"`
		seedEntry
	}
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrSeedFormat)
	}
	entries = make(seedFile, len(list))
	for _, item := range list {
		entries[item.KortID] = item.seedEntry
	}
	return entries, nil
}

// Seed imports links from the JSON seed file when the table is empty.
// Entries violating the URL or uniqueness invariants are logged and skipped;
// a missing file is not an error. Re-running against a non-empty table is a
// no-op, keeping the operation idempotent.
func (s *Store) Seed(ctx context.Context, path string) error {
	count, err := s.CountLinks(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	entries, err := readSeedFile(path)
	if os.IsNotExist(err) {
		s.logger.Debug().Str(log.FieldPath, path).Msg("pomijam seedowanie linków - brak pliku")
		return nil
	}
	if err != nil {
		return err
	}

	created := 0
	for _, kortID := range sortedSeedIDs(entries) {
		entry := entries[kortID]
		_, err := s.InsertLink(ctx, overlay.LinkInput{
			KortID:  kortID,
			Overlay: entry.Overlay,
			Control: entry.Control,
		})
		if err != nil {
			metrics.SeedSkipped.Inc()
			s.logger.Warn().
				Err(err).
				Str(log.FieldKortID, kortID).
				Str(log.FieldEvent, "seed.skipped").
				Msg("pominięto link dla kortu")
			continue
		}
		created++
	}

	if created > 0 {
		metrics.SeedLoaded.Add(float64(created))
		s.logger.Info().
			Int("created", created).
			Str(log.FieldEvent, "seed.done").
			Msgf("dodano %d linków do bazy overlay", created)
	}
	return nil
}

// ResyncResult reports what a seed-file resync changed.
type ResyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Removed int `json:"removed"`
}

// Resync reconciles the links table with the seed file: missing courts are
// created, changed URLs updated and rows absent from the file deleted.
// Invalid entries are logged and skipped, leaving any existing row alone.
func (s *Store) Resync(ctx context.Context, path string) (ResyncResult, error) {
	entries, err := readSeedFile(path)
	if err != nil {
		return ResyncResult{}, err
	}

	existing, err := s.LinksByKortID(ctx)
	if err != nil {
		return ResyncResult{}, err
	}

	var result ResyncResult
	seen := make(map[string]bool, len(entries))

	for _, kortID := range sortedSeedIDs(entries) {
		entry := entries[kortID]
		seen[kortID] = true

		normalized, err := overlay.ValidateLink(overlay.LinkInput{
			KortID:  kortID,
			Overlay: entry.Overlay,
			Control: entry.Control,
		})
		if err != nil {
			metrics.SeedSkipped.Inc()
			s.logger.Warn().
				Err(err).
				Str(log.FieldKortID, kortID).
				Str(log.FieldEvent, "resync.skipped").
				Msg("pominięto link dla kortu")
			continue
		}

		current, ok := existing[kortID]
		if !ok {
			if _, err := s.InsertLink(ctx, normalized); err != nil {
				return result, err
			}
			result.Created++
			continue
		}

		if current.OverlayURL != normalized.Overlay || current.ControlURL != normalized.Control {
			if _, err := s.UpdateLink(ctx, current.ID, normalized); err != nil {
				return result, err
			}
			result.Updated++
		}
	}

	for kortID, link := range existing {
		if seen[kortID] {
			continue
		}
		if err := s.DeleteLink(ctx, link.ID); err != nil {
			return result, err
		}
		result.Removed++
	}

	return result, nil
}

func sortedSeedIDs(entries seedFile) []string {
	ids := make([]string, 0, len(entries))
	for kortID := range entries {
		ids = append(ids, kortID)
	}
	overlay.SortKortIDs(ids)
	return ids
}
