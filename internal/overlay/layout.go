// SPDX-License-Identifier: MIT

package overlay

import (
	"fmt"
	"strings"
)

// Corner slot identifiers for the four-court layout.
const (
	CornerTopLeft     = "top_left"
	CornerTopRight    = "top_right"
	CornerBottomLeft  = "bottom_left"
	CornerBottomRight = "bottom_right"
)

// Corners lists the slots in render order.
var Corners = []string{CornerTopLeft, CornerTopRight, CornerBottomLeft, CornerBottomRight}

// PositionStyle couples a CSS position name with the anchoring rule of a slot.
type PositionStyle struct {
	Name  string
	Style string
}

// CornerPositions maps each slot to its anchoring style.
var CornerPositions = map[string]PositionStyle{
	CornerTopLeft:     {Name: "top-left", Style: "top: 0; left: 0;"},
	CornerTopRight:    {Name: "top-right", Style: "top: 0; right: 0;"},
	CornerBottomLeft:  {Name: "bottom-left", Style: "bottom: 0; left: 0;"},
	CornerBottomRight: {Name: "bottom-right", Style: "bottom: 0; right: 0;"},
}

// CornerLabels holds the operator-facing slot names.
var CornerLabels = map[string]string{
	CornerTopLeft:     "Lewy górny narożnik",
	CornerTopRight:    "Prawy górny narożnik",
	CornerBottomLeft:  "Lewy dolny narożnik",
	CornerBottomRight: "Prawy dolny narożnik",
}

// Base layout defaults.
const (
	DefaultViewWidth     = 690
	DefaultViewHeight    = 150
	DefaultDisplayScale  = 0.8
	DefaultLeftOffset    = -30
	DefaultLabelPosition = "top-left"

	defaultLabelOffsetX = 8
	defaultLabelOffsetY = 6
)

// LabelConfig positions the court label inside a slot.
type LabelConfig struct {
	Position string `json:"position"`
	OffsetX  int    `json:"offset_x"`
	OffsetY  int    `json:"offset_y"`
}

// CornerConfig sizes and positions one slot of the four-court view.
type CornerConfig struct {
	ViewWidth    int         `json:"view_width"`
	ViewHeight   int         `json:"view_height"`
	DisplayScale float64     `json:"display_scale"`
	OffsetX      int         `json:"offset_x"`
	OffsetY      int         `json:"offset_y"`
	Label        LabelConfig `json:"label"`
}

// Layout is the complete overlay layout configuration: the base viewport used
// by single-court pages plus one CornerConfig per slot of the all-courts view.
type Layout struct {
	ViewWidth     int                     `json:"view_width"`
	ViewHeight    int                     `json:"view_height"`
	DisplayScale  float64                 `json:"display_scale"`
	LeftOffset    int                     `json:"left_offset"`
	LabelPosition string                  `json:"label_position"`
	KortAll       map[string]CornerConfig `json:"kort_all"`
}

// DefaultCorner returns the default configuration for a slot.
func DefaultCorner(corner string) CornerConfig {
	position := DefaultLabelPosition
	if style, ok := CornerPositions[corner]; ok {
		position = style.Name
	}
	return CornerConfig{
		ViewWidth:    DefaultViewWidth,
		ViewHeight:   DefaultViewHeight,
		DisplayScale: DefaultDisplayScale,
		OffsetX:      DefaultLeftOffset,
		OffsetY:      0,
		Label: LabelConfig{
			Position: position,
			OffsetX:  defaultLabelOffsetX,
			OffsetY:  defaultLabelOffsetY,
		},
	}
}

// DefaultLayout returns the layout used before any operator edit.
func DefaultLayout() Layout {
	return EnsureLayout(Layout{})
}

// EnsureLayout fills zero-valued fields with defaults and guarantees exactly
// one configuration per known slot. The top_left slot inherits the base
// viewport values, matching the single-court mini overlay.
func EnsureLayout(l Layout) Layout {
	if l.ViewWidth == 0 {
		l.ViewWidth = DefaultViewWidth
	}
	if l.ViewHeight == 0 {
		l.ViewHeight = DefaultViewHeight
	}
	if l.DisplayScale == 0 {
		l.DisplayScale = DefaultDisplayScale
	}
	if l.LeftOffset == 0 {
		l.LeftOffset = DefaultLeftOffset
	}
	if strings.TrimSpace(l.LabelPosition) == "" {
		l.LabelPosition = DefaultLabelPosition
	}

	existing := l.KortAll
	l.KortAll = make(map[string]CornerConfig, len(Corners))

	for _, corner := range Corners {
		base := DefaultCorner(corner)
		if corner == CornerTopLeft {
			base.ViewWidth = l.ViewWidth
			base.ViewHeight = l.ViewHeight
			base.DisplayScale = l.DisplayScale
			base.OffsetX = l.LeftOffset
			base.Label.Position = l.LabelPosition
		}
		if override, ok := existing[corner]; ok {
			base = mergeCorner(base, override)
		}
		l.KortAll[corner] = base
	}

	return l
}

// mergeCorner takes a stored slot configuration and repairs fields that can
// never legitimately be unset. Offsets are trusted as stored, zero included.
func mergeCorner(base, override CornerConfig) CornerConfig {
	if override.ViewWidth <= 0 {
		override.ViewWidth = base.ViewWidth
	}
	if override.ViewHeight <= 0 {
		override.ViewHeight = base.ViewHeight
	}
	if override.DisplayScale <= 0 {
		override.DisplayScale = base.DisplayScale
	}
	if strings.TrimSpace(override.Label.Position) == "" {
		override.Label.Position = base.Label.Position
	}
	return override
}

// BuildLabelStyle renders the inline CSS placing a court label inside a slot.
func BuildLabelStyle(label LabelConfig) string {
	position := label.Position
	if position == "" {
		position = DefaultLabelPosition
	}

	parts := []string{"position: absolute;"}

	if strings.Contains(position, "top") {
		parts = append(parts, fmt.Sprintf("top: %dpx;", label.OffsetY))
	} else {
		parts = append(parts, fmt.Sprintf("bottom: %dpx;", label.OffsetY))
	}

	switch {
	case strings.Contains(position, "center"):
		parts = append(parts, fmt.Sprintf("left: calc(50%% + %dpx);", label.OffsetX))
		parts = append(parts, "transform: translateX(-50%);")
	case strings.Contains(position, "right"):
		parts = append(parts, fmt.Sprintf("right: %dpx;", label.OffsetX))
	default:
		parts = append(parts, fmt.Sprintf("left: %dpx;", label.OffsetX))
	}

	return strings.Join(parts, " ")
}
