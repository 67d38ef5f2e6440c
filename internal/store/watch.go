// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/wyniki-tenis/overlayd/internal/log"
)

// WatchSeedFile resyncs the links table whenever the seed file is rewritten.
// It blocks until ctx is cancelled, so callers run it in its own goroutine.
// Editors and atomic writers replace the file instead of writing in place, so
// the watch covers the parent directory and filters on the file name.
func (s *Store) WatchSeedFile(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	name := filepath.Base(path)
	logger := s.logger.With().Str(log.FieldPath, path).Logger()
	logger.Info().Str(log.FieldEvent, "watch.start").Msg("watching seed file for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			result, err := s.Resync(ctx, path)
			if err != nil {
				logger.Warn().Err(err).Str(log.FieldEvent, "watch.resync_failed").Msg("seed file resync failed")
				continue
			}
			logger.Info().
				Int("created", result.Created).
				Int("updated", result.Updated).
				Int("removed", result.Removed).
				Str(log.FieldEvent, "watch.resynced").
				Msg("seed file resynced")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Str(log.FieldEvent, "watch.error").Msg("seed file watcher error")
		}
	}
}
