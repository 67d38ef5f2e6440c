// SPDX-License-Identifier: MIT

// Package overlay contains the domain model of the tennis broadcast overlay
// admin: court overlay links, the four-corner layout configuration and the
// score snapshot display model.
package overlay

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// OverlaysHost is the only host overlay and control links may point at.
const OverlaysHost = "app.overlays.uno"

// Link is one court's pair of overlay URLs.
type Link struct {
	ID         int64  `json:"id"`
	KortID     string `json:"kort_id"`
	OverlayURL string `json:"overlay"`
	ControlURL string `json:"control"`
}

// LinkInput is the payload accepted by create and update operations.
type LinkInput struct {
	KortID  string `json:"kort_id"`
	Overlay string `json:"overlay"`
	Control string `json:"control"`
}

// ValidationError carries per-field, user-facing messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range sortedKeys(e.Fields) {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type pathOption struct {
	prefix      string
	description string
}

func pathHasIdentifier(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	remainder := path[len(prefix):]
	return remainder != "" && !strings.Contains(remainder, "/")
}

func validateOverlaysURL(raw, fieldLabel string, options []pathOption) (string, string) {
	if raw == "" {
		return "", fieldLabel + " jest wymagany."
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fieldLabel + " ma niepoprawny format."
	}

	if parsed.Scheme != "https" {
		return "", fieldLabel + " musi używać protokołu HTTPS."
	}

	if strings.ToLower(parsed.Host) != OverlaysHost {
		return "", fmt.Sprintf("%s musi wskazywać na %s.", fieldLabel, OverlaysHost)
	}

	for _, opt := range options {
		if pathHasIdentifier(parsed.Path, opt.prefix) {
			return raw, ""
		}
	}

	descriptions := make([]string, len(options))
	for i, opt := range options {
		descriptions[i] = opt.description
	}
	return "", fmt.Sprintf("%s musi mieć ścieżkę w formacie %s.", fieldLabel, strings.Join(descriptions, " lub "))
}

// ValidateOverlayURL checks an overlay (viewer-facing) URL.
// It returns the accepted URL or a user-facing error message.
func ValidateOverlayURL(raw string) (string, string) {
	return validateOverlaysURL(raw, "Adres overlayu", []pathOption{
		{prefix: "/output/", description: "/output/{id}"},
	})
}

// ValidateControlURL checks a control panel URL.
func ValidateControlURL(raw string) (string, string) {
	return validateOverlaysURL(raw, "Adres panelu sterowania", []pathOption{
		{prefix: "/control/", description: "/control/{id}"},
		{prefix: "/controlapps/", description: "/controlapps/{id}"},
	})
}

// ValidateLink checks a link payload and returns the normalized input or a
// ValidationError listing every rejected field.
func ValidateLink(in LinkInput) (LinkInput, error) {
	errs := map[string]string{}
	out := LinkInput{}

	kortID := strings.TrimSpace(in.KortID)
	if kortID == "" {
		errs["kort_id"] = "ID kortu jest wymagane."
	} else {
		out.KortID = kortID
	}

	if overlayURL, msg := ValidateOverlayURL(in.Overlay); msg != "" {
		errs["overlay"] = msg
	} else {
		out.Overlay = overlayURL
	}

	if controlURL, msg := ValidateControlURL(in.Control); msg != "" {
		errs["control"] = msg
	} else {
		out.Control = controlURL
	}

	if len(errs) > 0 {
		return LinkInput{}, &ValidationError{Fields: errs}
	}
	return out, nil
}

// kortSortKey orders numeric court IDs before everything else, numerically.
func kortSortKey(kortID string) (int, int, string) {
	if n, err := strconv.Atoi(kortID); err == nil {
		return 0, n, ""
	}
	return 1, 0, kortID
}

// SortLinks orders links by court ID, numeric IDs first.
func SortLinks(links []Link) {
	sort.SliceStable(links, func(i, j int) bool {
		ci, ni, si := kortSortKey(links[i].KortID)
		cj, nj, sj := kortSortKey(links[j].KortID)
		if ci != cj {
			return ci < cj
		}
		if ci == 0 {
			return ni < nj
		}
		return si < sj
	})
}

// SortKortIDs orders court IDs the same way SortLinks does.
func SortKortIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		ci, ni, si := kortSortKey(ids[i])
		cj, nj, sj := kortSortKey(ids[j])
		if ci != cj {
			return ci < cj
		}
		if ci == 0 {
			return ni < nj
		}
		return si < sj
	})
}
