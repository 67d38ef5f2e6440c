// SPDX-License-Identifier: MIT

package overlay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wyniki-tenis/overlayd/internal/log"
)

// Status buckets for a court's snapshot.
const (
	StatusActive      = "active"
	StatusFinished    = "finished"
	StatusUnavailable = "unavailable"
	StatusNoData      = "brak_danych"
)

// StatusOrder lists the buckets in display order.
var StatusOrder = []string{StatusActive, StatusFinished, StatusUnavailable, StatusNoData}

// StatusLabels holds the viewer-facing names of the buckets.
var StatusLabels = map[string]string{
	StatusActive:      "W trakcie",
	StatusFinished:    "Zakończony",
	StatusUnavailable: "Niedostępny",
	StatusNoData:      "Brak danych",
}

// SectionMeta describes one section of the results page.
type SectionMeta struct {
	Title        string
	Caption      string
	EmptyMessage string
}

// StatusSections maps buckets to their results page presentation.
var StatusSections = map[string]SectionMeta{
	StatusActive: {
		Title:        "Aktywne mecze",
		Caption:      "Aktualne spotkania i status kortów",
		EmptyMessage: "Aktualnie brak danych o aktywnych kortach.",
	},
	StatusFinished: {
		Title:        "Zakończone mecze",
		Caption:      "Zakończone spotkania",
		EmptyMessage: "Brak zakończonych meczów do wyświetlenia.",
	},
	StatusUnavailable: {
		Title:        "Korty niedostępne",
		Caption:      "Ostatnio obserwowane korty bez dostępu",
		EmptyMessage: "Wszystkie korty są obecnie dostępne.",
	},
	StatusNoData: {
		Title:        "Korty bez danych",
		Caption:      "Korty bez ostatnich danych pomiarowych",
		EmptyMessage: "Brak kortów bez danych do wyświetlenia.",
	},
}

var (
	finishedStatuses = map[string]bool{
		"finished": true, "complete": true, "completed": true, "done": true,
		"zakończony": true, "zakończone": true,
	}
	activeStatuses = map[string]bool{
		"active": true, "in_progress": true, "live": true, "ongoing": true, "running": true,
	}
	unavailableStatuses = map[string]bool{
		"unavailable": true, "niedostępny": true, "niedostepny": true,
	}
	noDataStatuses = map[string]bool{
		"brak danych": true, "brak_danych": true, "no data": true, "no_data": true,
	}
)

const noDataText = "brak danych"

// Player is one row of a normalized match display.
type Player struct {
	DisplayName  string
	DisplaySets  string
	DisplayGames string
	IsServing    bool
}

// Match is the display model of one court's snapshot.
type Match struct {
	KortID       string
	KortLabel    string
	Status       string
	StatusLabel  string
	Available    bool
	HasSnapshot  bool
	OverlayIsOn  bool
	OverlayLabel string
	LastUpdated  string
	Players      []Player
	RowSpan      int
	ScoreSummary string
	SetSummary   string
}

// Snapshot is one raw score snapshot entry as found on disk.
type Snapshot map[string]any

var digitsRe = regexp.MustCompile(`\d+`)

// ExtractKortID pulls a court identifier out of a snapshot entry, falling
// back to the supplied value when none of the known keys are present.
func ExtractKortID(entry Snapshot, fallback string) string {
	var candidate any
	for _, key := range []string{"kort_id", "court_id", "id", "kort", "court"} {
		if v, ok := entry[key]; ok && v != nil {
			candidate = v
			break
		}
	}
	if candidate == nil {
		return fallback
	}

	switch v := candidate.(type) {
	case float64:
		return strconv.Itoa(int(v))
	case int:
		return strconv.Itoa(v)
	}

	text := strings.TrimSpace(fmt.Sprint(candidate))
	if digits := digitsRe.FindString(text); digits != "" {
		return digits
	}
	if text != "" {
		return text
	}
	return fallback
}

// LoadSnapshots reads every *.json file under dir and indexes the contained
// entries by court ID. Unreadable or malformed files are logged and skipped.
func LoadSnapshots(dir string) map[string]Snapshot {
	snapshots := map[string]Snapshot{}
	if dir == "" {
		return snapshots
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(paths) == 0 {
		return snapshots
	}
	sort.Strings(paths)

	logger := log.WithComponent("snapshots")
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn().Err(err).Str(log.FieldPath, path).Msg("nie udało się wczytać pliku snapshot")
			continue
		}

		entries, err := decodeSnapshotFile(data)
		if err != nil {
			logger.Warn().Err(err).Str(log.FieldPath, path).Msg("nie udało się wczytać pliku snapshot")
			continue
		}

		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		for i, entry := range entries {
			fallback := fmt.Sprintf("%s-%d", stem, i)
			snapshots[ExtractKortID(entry, fallback)] = entry
		}
	}

	return snapshots
}

// decodeSnapshotFile accepts a bare entry, a list of entries, or an object
// with a "snapshots" list.
func decodeSnapshotFile(data []byte) ([]Snapshot, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	collect := func(items []any) []Snapshot {
		out := make([]Snapshot, 0, len(items))
		for _, item := range items {
			if m, ok := item.(map[string]any); ok {
				out = append(out, Snapshot(m))
			}
		}
		return out
	}

	switch v := raw.(type) {
	case map[string]any:
		if list, ok := v["snapshots"].([]any); ok {
			return collect(list), nil
		}
		return []Snapshot{Snapshot(v)}, nil
	case []any:
		return collect(v), nil
	default:
		return nil, fmt.Errorf("unsupported snapshot payload type %T", raw)
	}
}

// NormalizeStatus maps a raw status value onto one of the display buckets.
func NormalizeStatus(rawStatus any, available, hasSnapshot bool) string {
	if !hasSnapshot {
		return StatusNoData
	}

	statusText := strings.ToLower(strings.TrimSpace(fmt.Sprint(rawStatus)))
	if rawStatus == nil {
		statusText = ""
	}

	if noDataStatuses[statusText] {
		return StatusNoData
	}

	base := StatusActive
	switch {
	case finishedStatuses[statusText]:
		base = StatusFinished
	case activeStatuses[statusText] || statusText == "ok":
		base = StatusActive
	case unavailableStatuses[statusText]:
		base = StatusUnavailable
	}

	if !available {
		return StatusUnavailable
	}
	return base
}

// StatusLabel returns the viewer-facing name of a bucket.
func StatusLabel(status string) string {
	if label, ok := StatusLabels[status]; ok {
		return label
	}
	text := strings.ReplaceAll(status, "_", " ")
	if text == "" {
		return text
	}
	return strings.ToUpper(text[:1]) + text[1:]
}

func displayValue(value any, fallback string) string {
	if value == nil {
		return fallback
	}
	switch v := value.(type) {
	case []any:
		if len(v) == 0 {
			return fallback
		}
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		if len(v) == 0 {
			return fallback
		}
		return fmt.Sprint(v)
	}
	text := strings.TrimSpace(fmt.Sprint(value))
	if text == "" {
		return fallback
	}
	return text
}

func firstValue(entry Snapshot, keys ...string) any {
	for _, key := range keys {
		if v, ok := entry[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

// NormalizeLastUpdated converts the assorted timestamp shapes found in
// snapshots (RFC 3339, RFC 1123, unix seconds) to a UTC RFC 3339 string.
func NormalizeLastUpdated(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case float64:
		return time.Unix(int64(v), 0).UTC().Format(time.RFC3339)
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return ""
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", time.RFC1123, time.RFC1123Z} {
			if moment, err := time.Parse(layout, text); err == nil {
				return moment.UTC().Format(time.RFC3339)
			}
		}
		return text
	default:
		return fmt.Sprint(value)
	}
}

func isServing(marker any, index int, name string) bool {
	switch v := marker.(type) {
	case nil:
		return false
	case float64:
		return int(v) == index
	case string:
		m := strings.ToLower(strings.TrimSpace(v))
		switch m {
		case "player1", "p1":
			return index == 0
		case "player2", "p2":
			return index == 1
		}
		return name != "" && m == strings.ToLower(strings.TrimSpace(name))
	case map[string]any:
		if idx, ok := v["index"]; ok {
			return AsInt(idx, -1) == index
		}
		markerName := firstValue(Snapshot(v), "name", "player")
		if markerName != nil && name != "" {
			return strings.EqualFold(strings.TrimSpace(fmt.Sprint(markerName)), strings.TrimSpace(name))
		}
	}
	return false
}

// NormalizePlayers shapes the players list of a snapshot into display rows.
// It always returns at least one row.
func NormalizePlayers(playersData, servingMarker any) []Player {
	var items []any
	switch v := playersData.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			items = append(items, v[k])
		}
	case []any:
		items = v
	}

	players := make([]Player, 0, len(items))
	for index, raw := range items {
		var name, sets, games any
		if m, ok := raw.(map[string]any); ok {
			name = firstValue(Snapshot(m), "name", "player", "label")
			sets = firstValue(Snapshot(m), "sets", "set_score", "sets_won", "set")
			games = firstValue(Snapshot(m), "games", "games_won", "score", "points")
		} else {
			name = raw
		}

		displayedName := displayValue(name, noDataText)
		players = append(players, Player{
			DisplayName:  displayedName,
			DisplaySets:  displayValue(sets, noDataText),
			DisplayGames: displayValue(games, noDataText),
			IsServing:    isServing(servingMarker, index, displayedName),
		})
	}

	if len(players) == 0 {
		players = append(players, Player{
			DisplayName:  noDataText,
			DisplaySets:  noDataText,
			DisplayGames: noDataText,
		})
	}
	return players
}

// NormalizeMatch shapes one court's snapshot into its display model. link may
// be nil when the court has no configured overlay link.
func NormalizeMatch(kortID string, snapshot Snapshot, link *Link) Match {
	hasSnapshot := len(snapshot) > 0

	available := false
	if hasSnapshot {
		available = true
		if v, ok := snapshot["available"].(bool); ok {
			available = v
		}
	}

	status := NormalizeStatus(snapshot["status"], available, hasSnapshot)

	overlayIsOn := available
	overlayLabel := "OFF"
	if overlayIsOn {
		overlayLabel = "ON"
	}

	kortLabel := displayValue(
		firstValue(snapshot, "court_name", "kort_name", "kort", "court"),
		fmt.Sprintf("Kort %s", kortID),
	)

	players := NormalizePlayers(snapshot["players"], snapshot["serving"])
	rowSpan := len(players)
	if rowSpan < 1 {
		rowSpan = 1
	}

	return Match{
		KortID:       kortID,
		KortLabel:    kortLabel,
		Status:       status,
		StatusLabel:  StatusLabel(status),
		Available:    available,
		HasSnapshot:  hasSnapshot,
		OverlayIsOn:  overlayIsOn,
		OverlayLabel: overlayLabel,
		LastUpdated:  NormalizeLastUpdated(firstValue(snapshot, "last_updated", "updated_at", "timestamp")),
		Players:      players,
		RowSpan:      rowSpan,
		ScoreSummary: displayValue(firstValue(snapshot, "game_score", "score_summary", "score"), noDataText),
		SetSummary:   displayValue(firstValue(snapshot, "set_score", "sets"), noDataText),
	}
}
