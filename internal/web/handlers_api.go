// SPDX-License-Identifier: MIT

package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wyniki-tenis/overlayd/internal/log"
	"github.com/wyniki-tenis/overlayd/internal/metrics"
	"github.com/wyniki-tenis/overlayd/internal/overlay"
	"github.com/wyniki-tenis/overlayd/internal/store"
)

func linkIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func decodeLinkInput(r *http.Request) (overlay.LinkInput, error) {
	var in overlay.LinkInput
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(&in); err != nil {
		return overlay.LinkInput{}, err
	}
	return in, nil
}

// handleAPIList returns all overlay links as a JSON array.
func (s *Server) handleAPIList(w http.ResponseWriter, r *http.Request) {
	links, err := s.store.ListLinks(r.Context())
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	if links == nil {
		links = []overlay.Link{}
	}
	writeJSON(w, http.StatusOK, links)
}

// handleAPICreate creates a link: 201 on success, 400 on validation error,
// 409 on duplicate kort_id.
func (s *Server) handleAPICreate(w http.ResponseWriter, r *http.Request) {
	in, err := decodeLinkInput(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
		return
	}

	link, err := s.store.InsertLink(r.Context(), in)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	metrics.LinksCreated.Inc()
	logger := log.FromContext(r.Context())
	logger.Info().
		Str(log.FieldEvent, "link.created").
		Str(log.FieldKortID, link.KortID).
		Int64(log.FieldLinkID, link.ID).
		Msg("overlay link created")
	writeJSON(w, http.StatusCreated, link)
}

// handleAPIGet returns one link by id, 404 when absent.
func (s *Server) handleAPIGet(w http.ResponseWriter, r *http.Request) {
	id, ok := linkIDParam(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		return
	}

	link, err := s.store.GetLink(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// handleAPIUpdate rewrites one link, with the same error contract as create.
func (s *Server) handleAPIUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := linkIDParam(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		return
	}

	in, err := decodeLinkInput(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
		return
	}

	link, err := s.store.UpdateLink(r.Context(), id, in)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	metrics.LinksUpdated.Inc()
	writeJSON(w, http.StatusOK, link)
}

// handleAPIDelete removes one link: 204 on success, 404 when absent.
func (s *Server) handleAPIDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := linkIDParam(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		return
	}

	if err := s.store.DeleteLink(r.Context(), id); err != nil {
		respondStoreError(w, r, err)
		return
	}

	metrics.LinksDeleted.Inc()
	w.WriteHeader(http.StatusNoContent)
}

// handleLinksReload resyncs the links table from the seed file and reports
// the created/updated/removed counts.
func (s *Server) handleLinksReload(w http.ResponseWriter, r *http.Request) {
	path := s.cfg.LinksFile
	if _, err := os.Stat(path); os.IsNotExist(err) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("Brak pliku %s.", path),
		})
		return
	}

	result, err := s.store.Resync(r.Context(), path)
	if err != nil {
		logger := log.FromContext(r.Context())
		logger.Error().Err(err).Str(log.FieldPath, path).Msg("seed file resync failed")
		if errors.Is(err, store.ErrSeedFormat) {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "Plik overlay_links.json ma niepoprawny format JSON.",
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, result)
}
