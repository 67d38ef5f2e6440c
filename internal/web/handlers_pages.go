// SPDX-License-Identifier: MIT

package web

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wyniki-tenis/overlayd/internal/log"
	"github.com/wyniki-tenis/overlayd/internal/metrics"
	"github.com/wyniki-tenis/overlayd/internal/overlay"
	"github.com/wyniki-tenis/overlayd/internal/store"
)

// frameStyle renders the inline CSS sizing an overlay iframe inside a slot.
func frameStyle(c overlay.CornerConfig) template.CSS {
	return template.CSS(fmt.Sprintf(
		"width: %dpx; height: %dpx; transform: scale(%g); transform-origin: top left; margin-left: %dpx; margin-top: %dpx; border: 0;",
		c.ViewWidth, c.ViewHeight, c.DisplayScale, c.OffsetX, c.OffsetY))
}

// handleIndex renders the courts index with overlay and control links.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	links, err := s.store.ListLinks(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.render(w, "index.html", struct {
		Links              []overlay.Link
		LinksManagementURL string
	}{
		Links:              links,
		LinksManagementURL: "/overlay-links",
	})
}

type wynikiSection struct {
	Status       string
	Title        string
	Caption      string
	EmptyMessage string
	Matches      []overlay.Match
}

// handleWyniki renders the results page with matches grouped by status.
func (s *Server) handleWyniki(w http.ResponseWriter, r *http.Request) {
	linksByID, err := s.store.LinksByKortID(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	snapshots := overlay.LoadSnapshots(s.cfg.SnapshotsDir)

	known := make(map[string]bool, len(linksByID)+len(snapshots))
	for kortID := range linksByID {
		known[kortID] = true
	}
	for kortID := range snapshots {
		known[kortID] = true
	}
	ids := make([]string, 0, len(known))
	for kortID := range known {
		ids = append(ids, kortID)
	}
	overlay.SortKortIDs(ids)

	byStatus := map[string][]overlay.Match{}
	for _, kortID := range ids {
		var link *overlay.Link
		if l, ok := linksByID[kortID]; ok {
			link = &l
		}
		match := overlay.NormalizeMatch(kortID, snapshots[kortID], link)
		byStatus[match.Status] = append(byStatus[match.Status], match)
	}

	sections := make([]wynikiSection, 0, len(overlay.StatusOrder))
	for _, status := range overlay.StatusOrder {
		meta := overlay.StatusSections[status]
		sections = append(sections, wynikiSection{
			Status:       status,
			Title:        meta.Title,
			Caption:      meta.Caption,
			EmptyMessage: meta.EmptyMessage,
			Matches:      byStatus[status],
		})
	}

	hasRunning := len(byStatus[overlay.StatusActive]) > 0
	hasNonRunning := len(byStatus[overlay.StatusUnavailable]) > 0 || len(byStatus[overlay.StatusNoData]) > 0

	s.render(w, "wyniki.html", struct {
		Sections          []wynikiSection
		HasRunningMatches bool
		HasNonRunning     bool
	}{
		Sections:          sections,
		HasRunningMatches: hasRunning,
		HasNonRunning:     hasNonRunning,
	})
}

type miniOverlay struct {
	KortID  string
	Overlay string
	Match   overlay.Match
}

// handleKort renders one court's overlay page with mini tiles of the others.
func (s *Server) handleKort(w http.ResponseWriter, r *http.Request) {
	kortID := chi.URLParam(r, "kortID")

	linksByID, err := s.store.LinksByKortID(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	main, ok := linksByID[kortID]
	if !ok {
		http.Error(w, fmt.Sprintf("Nieznany kort %s", kortID), http.StatusNotFound)
		return
	}

	layout, err := s.store.LoadLayout(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	miniConfig := layout.KortAll[overlay.CornerTopLeft]

	snapshots := overlay.LoadSnapshots(s.cfg.SnapshotsDir)
	mainLink := main
	mainMatch := overlay.NormalizeMatch(kortID, snapshots[kortID], &mainLink)

	ids := make([]string, 0, len(linksByID))
	for id := range linksByID {
		if id != kortID {
			ids = append(ids, id)
		}
	}
	overlay.SortKortIDs(ids)

	mini := make([]miniOverlay, 0, len(ids))
	for _, id := range ids {
		link := linksByID[id]
		mini = append(mini, miniOverlay{
			KortID:  id,
			Overlay: link.OverlayURL,
			Match:   overlay.NormalizeMatch(id, snapshots[id], &link),
		})
	}

	s.render(w, "kort.html", struct {
		KortID         string
		MainOverlay    string
		MainMatch      overlay.Match
		MiniOverlays   []miniOverlay
		Config         overlay.Layout
		MiniConfig     overlay.CornerConfig
		MiniFrameStyle template.CSS
		MiniLabelStyle template.CSS
	}{
		KortID:         kortID,
		MainOverlay:    main.OverlayURL,
		MainMatch:      mainMatch,
		MiniOverlays:   mini,
		Config:         layout,
		MiniConfig:     miniConfig,
		MiniFrameStyle: frameStyle(miniConfig),
		MiniLabelStyle: template.CSS(overlay.BuildLabelStyle(miniConfig.Label)),
	})
}

type cornerTile struct {
	KortID        string
	Overlay       string
	CornerKey     string
	PositionStyle template.CSS
	Config        overlay.CornerConfig
	FrameStyle    template.CSS
	LabelStyle    template.CSS
	Match         overlay.Match
}

// handleKortAll renders the four-corner layout, assigning the first four
// courts to the slots in order.
func (s *Server) handleKortAll(w http.ResponseWriter, r *http.Request) {
	layout, err := s.store.LoadLayout(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	links, err := s.store.ListLinks(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	snapshots := overlay.LoadSnapshots(s.cfg.SnapshotsDir)

	tiles := make([]cornerTile, 0, len(overlay.Corners))
	for i, corner := range overlay.Corners {
		if i >= len(links) {
			break
		}
		link := links[i]
		cornerCfg := layout.KortAll[corner]
		tiles = append(tiles, cornerTile{
			KortID:        link.KortID,
			Overlay:       link.OverlayURL,
			CornerKey:     corner,
			PositionStyle: template.CSS(overlay.CornerPositions[corner].Style),
			Config:        cornerCfg,
			FrameStyle:    frameStyle(cornerCfg),
			LabelStyle:    template.CSS(overlay.BuildLabelStyle(cornerCfg.Label)),
			Match:         overlay.NormalizeMatch(link.KortID, snapshots[link.KortID], &link),
		})
	}

	s.render(w, "kort_all.html", struct {
		Overlays []cornerTile
		Config   overlay.Layout
	}{
		Overlays: tiles,
		Config:   layout,
	})
}

type cornerForm struct {
	Key    string
	Label  string
	Config overlay.CornerConfig
}

func (s *Server) renderConfig(w http.ResponseWriter, layout overlay.Layout, saved bool) {
	corners := make([]cornerForm, 0, len(overlay.Corners))
	for _, corner := range overlay.Corners {
		corners = append(corners, cornerForm{
			Key:    corner,
			Label:  overlay.CornerLabels[corner],
			Config: layout.KortAll[corner],
		})
	}

	s.render(w, "config.html", struct {
		Config  overlay.Layout
		Corners []cornerForm
		Saved   bool
	}{
		Config:  layout,
		Corners: corners,
		Saved:   saved,
	})
}

// handleConfigForm renders the layout configuration editor.
func (s *Server) handleConfigForm(w http.ResponseWriter, r *http.Request) {
	layout, err := s.store.LoadLayout(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.renderConfig(w, layout, false)
}

// handleConfigSave applies a configuration form submission. Unparseable
// values keep their current setting.
func (s *Server) handleConfigSave(w http.ResponseWriter, r *http.Request) {
	current, err := s.store.LoadLayout(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}
	form := r.PostForm

	formValue := func(key string, fallback any) any {
		if !form.Has(key) {
			return fallback
		}
		return form.Get(key)
	}

	next := overlay.Layout{
		ViewWidth:     overlay.AsInt(formValue("view_width", nil), current.ViewWidth),
		ViewHeight:    overlay.AsInt(formValue("view_height", nil), current.ViewHeight),
		DisplayScale:  overlay.AsFloat(formValue("display_scale", nil), current.DisplayScale),
		LeftOffset:    overlay.AsInt(formValue("left_offset", nil), current.LeftOffset),
		LabelPosition: form.Get("label_position"),
		KortAll:       make(map[string]overlay.CornerConfig, len(overlay.Corners)),
	}
	if next.LabelPosition == "" {
		next.LabelPosition = current.LabelPosition
	}

	for _, corner := range overlay.Corners {
		existing := current.KortAll[corner]
		prefix := fmt.Sprintf("kort_all[%s]", corner)
		labelPrefix := prefix + "[label]"

		cornerCfg := overlay.CornerConfig{
			ViewWidth:    overlay.AsInt(formValue(prefix+"[view_width]", nil), existing.ViewWidth),
			ViewHeight:   overlay.AsInt(formValue(prefix+"[view_height]", nil), existing.ViewHeight),
			DisplayScale: overlay.AsFloat(formValue(prefix+"[display_scale]", nil), existing.DisplayScale),
			OffsetX:      overlay.AsInt(formValue(prefix+"[offset_x]", nil), existing.OffsetX),
			OffsetY:      overlay.AsInt(formValue(prefix+"[offset_y]", nil), existing.OffsetY),
			Label: overlay.LabelConfig{
				Position: form.Get(labelPrefix + "[position]"),
				OffsetX:  overlay.AsInt(formValue(labelPrefix+"[offset_x]", nil), existing.Label.OffsetX),
				OffsetY:  overlay.AsInt(formValue(labelPrefix+"[offset_y]", nil), existing.Label.OffsetY),
			},
		}
		if cornerCfg.Label.Position == "" {
			cornerCfg.Label.Position = existing.Label.Position
		}
		next.KortAll[corner] = cornerCfg
	}

	if err := s.store.SaveLayout(r.Context(), next); err != nil {
		s.renderError(w, r, err)
		return
	}
	metrics.LayoutSaves.Inc()

	saved, err := s.store.LoadLayout(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.renderConfig(w, saved, true)
}

type linksPageData struct {
	Links  []overlay.Link
	Errors map[string]string
	Form   overlay.LinkInput
	EditID int64
}

// handleLinksPage renders the link management table and form.
func (s *Server) handleLinksPage(w http.ResponseWriter, r *http.Request) {
	links, err := s.store.ListLinks(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, "overlay_links.html", linksPageData{Links: links})
}

// handleLinksForm applies a create, update or delete submitted from the link
// management page. Validation failures re-render the page with messages.
func (s *Server) handleLinksForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	in := overlay.LinkInput{
		KortID:  r.PostForm.Get("kort_id"),
		Overlay: r.PostForm.Get("overlay"),
		Control: r.PostForm.Get("control"),
	}

	var opErr error
	var editID int64
	switch action := r.PostForm.Get("action"); action {
	case "delete":
		id, err := strconv.ParseInt(r.PostForm.Get("id"), 10, 64)
		if err != nil {
			opErr = store.ErrNotFound
			break
		}
		if opErr = s.store.DeleteLink(r.Context(), id); opErr == nil {
			metrics.LinksDeleted.Inc()
		}
	case "update":
		id, err := strconv.ParseInt(r.PostForm.Get("id"), 10, 64)
		if err != nil {
			opErr = store.ErrNotFound
			break
		}
		editID = id
		if _, opErr = s.store.UpdateLink(r.Context(), id, in); opErr == nil {
			metrics.LinksUpdated.Inc()
		}
	default:
		if _, opErr = s.store.InsertLink(r.Context(), in); opErr == nil {
			metrics.LinksCreated.Inc()
		}
	}

	if opErr == nil {
		http.Redirect(w, r, "/overlay-links", http.StatusSeeOther)
		return
	}

	links, err := s.store.ListLinks(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	data := linksPageData{Links: links, Form: in, EditID: editID}
	var verr *overlay.ValidationError
	switch {
	case errors.As(opErr, &verr):
		data.Errors = verr.Fields
	case errors.Is(opErr, store.ErrConflict):
		data.Errors = map[string]string{"kort_id": conflictMessage}
	case errors.Is(opErr, store.ErrNotFound):
		data.Errors = map[string]string{"id": "Nie znaleziono linku."}
	default:
		s.renderError(w, r, opErr)
		return
	}

	w.WriteHeader(http.StatusBadRequest)
	s.render(w, "overlay_links.html", data)
}

// renderError answers page requests that failed on storage with a 500.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.FromContext(r.Context())
	logger.Error().Err(err).Str(log.FieldPath, r.URL.Path).Msg("page handler failed")
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
