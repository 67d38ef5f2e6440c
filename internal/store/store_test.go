// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyniki-tenis/overlayd/internal/overlay"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func validInput(kortID string) overlay.LinkInput {
	return overlay.LinkInput{
		KortID:  kortID,
		Overlay: "https://app.overlays.uno/output/o" + kortID,
		Control: "https://app.overlays.uno/control/c" + kortID,
	}
}

func TestInsertAndGetLink(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	created, err := st.InsertLink(ctx, validInput("1"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "1", created.KortID)

	got, err := st.GetLink(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestInsertLinkValidation(t *testing.T) {
	st := newTestStore(t)

	_, err := st.InsertLink(context.Background(), overlay.LinkInput{
		KortID:  "1",
		Overlay: "http://app.overlays.uno/output/x",
		Control: "https://app.overlays.uno/control/x",
	})
	var verr *overlay.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "overlay")
}

func TestInsertLinkDuplicateKort(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.InsertLink(ctx, validInput("1"))
	require.NoError(t, err)

	_, err = st.InsertLink(ctx, validInput("1"))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateLink(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	created, err := st.InsertLink(ctx, validInput("1"))
	require.NoError(t, err)
	_, err = st.InsertLink(ctx, validInput("2"))
	require.NoError(t, err)

	t.Run("changes urls", func(t *testing.T) {
		in := validInput("1")
		in.Overlay = "https://app.overlays.uno/output/changed"
		updated, err := st.UpdateLink(ctx, created.ID, in)
		require.NoError(t, err)
		assert.Equal(t, "https://app.overlays.uno/output/changed", updated.OverlayURL)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := st.UpdateLink(ctx, 9999, validInput("9"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("kort id collision", func(t *testing.T) {
		_, err := st.UpdateLink(ctx, created.ID, validInput("2"))
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestDeleteLink(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	created, err := st.InsertLink(ctx, validInput("1"))
	require.NoError(t, err)

	require.NoError(t, st.DeleteLink(ctx, created.ID))
	assert.ErrorIs(t, st.DeleteLink(ctx, created.ID), ErrNotFound)

	_, err = st.GetLink(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListLinksSorted(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"10", "2", "centralny", "1"} {
		_, err := st.InsertLink(ctx, validInput(id))
		require.NoError(t, err)
	}

	links, err := st.ListLinks(ctx)
	require.NoError(t, err)
	require.Len(t, links, 4)

	got := make([]string, len(links))
	for i, l := range links {
		got[i] = l.KortID
	}
	assert.Equal(t, []string{"1", "2", "10", "centralny"}, got)
}

func writeSeedFile(t *testing.T, entries map[string]map[string]string) string {
	t.Helper()
	data, err := json.Marshal(entries)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "overlay_links.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestSeed(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	path := writeSeedFile(t, map[string]map[string]string{
		"1": {
			"overlay": "https://app.overlays.uno/output/o1",
			"control": "https://app.overlays.uno/control/c1",
		},
		"2": {
			"overlay": "https://example.com/output/o2", // invalid, skipped
			"control": "https://app.overlays.uno/control/c2",
		},
	})

	require.NoError(t, st.Seed(ctx, path))

	links, err := st.ListLinks(ctx)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "1", links[0].KortID)

	// Non-empty table makes a second run a no-op even with new entries.
	path2 := writeSeedFile(t, map[string]map[string]string{
		"3": {
			"overlay": "https://app.overlays.uno/output/o3",
			"control": "https://app.overlays.uno/control/c3",
		},
	})
	require.NoError(t, st.Seed(ctx, path2))
	count, err := st.CountLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSeedListFormat(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "overlay_links.json")
	payload := `[
		{"kort_id": "1", "overlay": "https://app.overlays.uno/output/o1", "control": "https://app.overlays.uno/control/c1"},
		{"kort_id": "2", "overlay": "https://app.overlays.uno/output/o2", "control": "https://app.overlays.uno/control/c2"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	require.NoError(t, st.Seed(ctx, path))

	count, err := st.CountLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSeedMissingFile(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.Seed(context.Background(), filepath.Join(t.TempDir(), "nope.json")))
}

func TestSeedBadJSON(t *testing.T) {
	st := newTestStore(t)
	path := filepath.Join(t.TempDir(), "overlay_links.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	err := st.Seed(context.Background(), path)
	assert.ErrorIs(t, err, ErrSeedFormat)
}

func TestResync(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.InsertLink(ctx, validInput("1"))
	require.NoError(t, err)
	_, err = st.InsertLink(ctx, validInput("2"))
	require.NoError(t, err)

	path := writeSeedFile(t, map[string]map[string]string{
		"1": { // unchanged
			"overlay": "https://app.overlays.uno/output/o1",
			"control": "https://app.overlays.uno/control/c1",
		},
		"2": { // new overlay URL
			"overlay": "https://app.overlays.uno/output/nowy",
			"control": "https://app.overlays.uno/control/c2",
		},
		"3": { // new court
			"overlay": "https://app.overlays.uno/output/o3",
			"control": "https://app.overlays.uno/control/c3",
		},
	})

	result, err := st.Resync(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, ResyncResult{Created: 1, Updated: 1, Removed: 0}, result)

	// A file without court 1 removes its row.
	path = writeSeedFile(t, map[string]map[string]string{
		"2": {
			"overlay": "https://app.overlays.uno/output/nowy",
			"control": "https://app.overlays.uno/control/c2",
		},
		"3": {
			"overlay": "https://app.overlays.uno/output/o3",
			"control": "https://app.overlays.uno/control/c3",
		},
	})
	result, err = st.Resync(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, ResyncResult{Removed: 1}, result)

	byID, err := st.LinksByKortID(ctx)
	require.NoError(t, err)
	assert.NotContains(t, byID, "1")
	assert.Contains(t, byID, "2")
	assert.Contains(t, byID, "3")
}

func TestWatchSeedFile(t *testing.T) {
	st := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	path := filepath.Join(dir, "overlay_links.json")

	done := make(chan error, 1)
	go func() { done <- st.WatchSeedFile(ctx, path) }()

	seed := func(ids ...string) []byte {
		entries := make(map[string]map[string]string, len(ids))
		for _, id := range ids {
			entries[id] = map[string]string{
				"overlay": "https://app.overlays.uno/output/o" + id,
				"control": "https://app.overlays.uno/control/c" + id,
			}
		}
		data, err := json.Marshal(entries)
		require.NoError(t, err)
		return data
	}

	countIs := func(want int) func() bool {
		return func() bool {
			n, err := st.CountLinks(ctx)
			return err == nil && n == want
		}
	}

	// The watcher registers asynchronously, so keep rewriting the file
	// until the first resync lands.
	first := seed("1")
	require.Eventually(t, func() bool {
		if err := os.WriteFile(path, first, 0o644); err != nil {
			return false
		}
		return countIs(1)()
	}, 5*time.Second, 100*time.Millisecond, "watcher never applied the initial seed file")

	// A rewrite reconciles: court 1 removed, courts 2 and 3 created.
	require.NoError(t, os.WriteFile(path, seed("2", "3"), 0o644))
	require.Eventually(t, func() bool {
		byID, err := st.LinksByKortID(ctx)
		if err != nil || len(byID) != 2 {
			return false
		}
		_, has2 := byID["2"]
		_, has3 := byID["3"]
		return has2 && has3
	}, 5*time.Second, 50*time.Millisecond, "watcher did not resync after the seed file changed")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after context cancellation")
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	t.Run("first load creates defaults", func(t *testing.T) {
		layout, err := st.LoadLayout(ctx)
		require.NoError(t, err)
		assert.Equal(t, overlay.DefaultLayout(), layout)
	})

	t.Run("save and reload", func(t *testing.T) {
		layout := overlay.DefaultLayout()
		layout.ViewWidth = 800
		layout.LabelPosition = "bottom-left"
		corner := layout.KortAll[overlay.CornerTopRight]
		corner.OffsetX = 0
		corner.Label.OffsetY = 20
		layout.KortAll[overlay.CornerTopRight] = corner

		require.NoError(t, st.SaveLayout(ctx, layout))

		got, err := st.LoadLayout(ctx)
		require.NoError(t, err)
		assert.Equal(t, 800, got.ViewWidth)
		assert.Equal(t, "bottom-left", got.LabelPosition)
		assert.Equal(t, 0, got.KortAll[overlay.CornerTopRight].OffsetX)
		assert.Equal(t, 20, got.KortAll[overlay.CornerTopRight].Label.OffsetY)
	})

	t.Run("single row is reused", func(t *testing.T) {
		require.NoError(t, st.SaveLayout(ctx, overlay.DefaultLayout()))
		var count int
		require.NoError(t, st.DB().QueryRow(`SELECT COUNT(*) FROM overlay_config`).Scan(&count))
		assert.Equal(t, 1, count)
	})
}
