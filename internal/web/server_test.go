// SPDX-License-Identifier: MIT

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyniki-tenis/overlayd/internal/config"
	"github.com/wyniki-tenis/overlayd/internal/health"
	"github.com/wyniki-tenis/overlayd/internal/overlay"
	"github.com/wyniki-tenis/overlayd/internal/store"
)

type testApp struct {
	server *httptest.Server
	store  *store.Store
	cfg    config.AppConfig
}

func newTestApp(t *testing.T, mutate func(*config.AppConfig)) *testApp {
	t.Helper()

	dir := t.TempDir()
	cfg := config.AppConfig{
		ListenAddr:   ":0",
		DBPath:       filepath.Join(dir, "test.db"),
		LinksFile:    filepath.Join(dir, "overlay_links.json"),
		SnapshotsDir: filepath.Join(dir, "snapshots"),
		AdminUser:    "admin",
		AdminPass:    "sekret",
		RateLimitRPS: 50,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	st, err := store.Open(context.Background(), cfg.DBPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	hm := health.NewManager("test")
	hm.RegisterChecker(health.NewDBChecker(st.DB()))

	srv, err := New(cfg, st, hm)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	return &testApp{server: ts, store: st, cfg: cfg}
}

func (a *testApp) request(t *testing.T, method, path string, body any, admin bool) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.SetBasicAuth(a.cfg.AdminUser, a.cfg.AdminPass)
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func validPayload(kortID string) overlay.LinkInput {
	return overlay.LinkInput{
		KortID:  kortID,
		Overlay: "https://app.overlays.uno/output/o" + kortID,
		Control: "https://app.overlays.uno/control/c" + kortID,
	}
}

func TestAPILinkLifecycle(t *testing.T) {
	app := newTestApp(t, nil)

	resp := app.request(t, http.MethodGet, "/api/overlay-links", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeBody[[]overlay.Link](t, resp))

	resp = app.request(t, http.MethodPost, "/api/overlay-links", validPayload("1"), false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[overlay.Link](t, resp)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "1", created.KortID)

	resp = app.request(t, http.MethodGet, fmt.Sprintf("/api/overlay-links/%d", created.ID), nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created, decodeBody[overlay.Link](t, resp))

	update := validPayload("1")
	update.Overlay = "https://app.overlays.uno/output/changed"
	resp = app.request(t, http.MethodPut, fmt.Sprintf("/api/overlay-links/%d", created.ID), update, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://app.overlays.uno/output/changed", decodeBody[overlay.Link](t, resp).OverlayURL)

	resp = app.request(t, http.MethodDelete, fmt.Sprintf("/api/overlay-links/%d", created.ID), nil, false)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = app.request(t, http.MethodGet, fmt.Sprintf("/api/overlay-links/%d", created.ID), nil, false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPICreateValidation(t *testing.T) {
	app := newTestApp(t, nil)

	payload := validPayload("1")
	payload.Overlay = "http://app.overlays.uno/output/x"
	resp := app.request(t, http.MethodPost, "/api/overlay-links", payload, false)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody[map[string]map[string]string](t, resp)
	assert.Contains(t, body["errors"], "overlay")
}

func TestAPICreateConflict(t *testing.T) {
	app := newTestApp(t, nil)

	resp := app.request(t, http.MethodPost, "/api/overlay-links", validPayload("1"), false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = app.request(t, http.MethodPost, "/api/overlay-links", validPayload("1"), false)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decodeBody[map[string]map[string]string](t, resp)
	assert.Equal(t, "Kort o podanym ID już istnieje.", body["errors"]["kort_id"])
}

func TestAPIUpdateKortIDCollision(t *testing.T) {
	app := newTestApp(t, nil)

	resp := app.request(t, http.MethodPost, "/api/overlay-links", validPayload("1"), false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	first := decodeBody[overlay.Link](t, resp)

	resp = app.request(t, http.MethodPost, "/api/overlay-links", validPayload("2"), false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = app.request(t, http.MethodPut, fmt.Sprintf("/api/overlay-links/%d", first.ID), validPayload("2"), false)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPIBadPayloadAndIDs(t *testing.T) {
	app := newTestApp(t, nil)

	req, err := http.NewRequest(http.MethodPost, app.server.URL+"/api/overlay-links", strings.NewReader("{not json"))
	require.NoError(t, err)
	resp, err := app.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = app.request(t, http.MethodGet, "/api/overlay-links/abc", nil, false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = app.request(t, http.MethodDelete, "/api/overlay-links/9999", nil, false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminAuth(t *testing.T) {
	t.Run("no credentials", func(t *testing.T) {
		app := newTestApp(t, nil)
		resp := app.request(t, http.MethodGet, "/config", nil, false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, `Basic realm="Overlay Config"`, resp.Header.Get("WWW-Authenticate"))
	})

	t.Run("wrong credentials", func(t *testing.T) {
		app := newTestApp(t, nil)
		req, err := http.NewRequest(http.MethodGet, app.server.URL+"/config", nil)
		require.NoError(t, err)
		req.SetBasicAuth("admin", "zle-haslo")
		resp, err := app.server.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("correct credentials", func(t *testing.T) {
		app := newTestApp(t, nil)
		resp := app.request(t, http.MethodGet, "/config", nil, true)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("fail closed without configured credentials", func(t *testing.T) {
		app := newTestApp(t, func(cfg *config.AppConfig) {
			cfg.AdminUser = ""
			cfg.AdminPass = ""
		})
		req, err := http.NewRequest(http.MethodGet, app.server.URL+"/config", nil)
		require.NoError(t, err)
		req.SetBasicAuth("", "")
		resp, err := app.server.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("links management page gated", func(t *testing.T) {
		app := newTestApp(t, nil)
		resp := app.request(t, http.MethodGet, "/overlay-links", nil, false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLinksReload(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		app := newTestApp(t, nil)
		resp := app.request(t, http.MethodPost, "/api/overlay-links/reload", nil, true)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("bad JSON", func(t *testing.T) {
		app := newTestApp(t, nil)
		require.NoError(t, os.WriteFile(app.cfg.LinksFile, []byte("{broken"), 0o644))
		resp := app.request(t, http.MethodPost, "/api/overlay-links/reload", nil, true)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("requires auth", func(t *testing.T) {
		app := newTestApp(t, nil)
		resp := app.request(t, http.MethodPost, "/api/overlay-links/reload", nil, false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("resyncs links", func(t *testing.T) {
		app := newTestApp(t, nil)
		seed := map[string]map[string]string{
			"1": {
				"overlay": "https://app.overlays.uno/output/o1",
				"control": "https://app.overlays.uno/control/c1",
			},
		}
		data, err := json.Marshal(seed)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(app.cfg.LinksFile, data, 0o644))

		resp := app.request(t, http.MethodPost, "/api/overlay-links/reload", nil, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		result := decodeBody[store.ResyncResult](t, resp)
		assert.Equal(t, store.ResyncResult{Created: 1}, result)
	})
}

func TestPages(t *testing.T) {
	app := newTestApp(t, nil)

	resp := app.request(t, http.MethodPost, "/api/overlay-links", validPayload("1"), false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	for _, path := range []string{"/", "/wyniki", "/kort/1", "/kort/all"} {
		resp := app.request(t, http.MethodGet, path, nil, false)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html", path)
	}

	resp = app.request(t, http.MethodGet, "/kort/99", nil, false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestConfigSave(t *testing.T) {
	app := newTestApp(t, nil)

	form := url.Values{}
	form.Set("view_width", "800")
	form.Set("display_scale", "0,9")
	form.Set("label_position", "bottom-right")
	form.Set("kort_all[top_right][offset_x]", "0")
	form.Set("kort_all[top_right][label][position]", "bottom-left")

	req, err := http.NewRequest(http.MethodPost, app.server.URL+"/config", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("admin", "sekret")

	resp, err := app.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	layout, err := app.store.LoadLayout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 800, layout.ViewWidth)
	assert.Equal(t, 0.9, layout.DisplayScale)
	assert.Equal(t, "bottom-right", layout.LabelPosition)
	assert.Equal(t, 0, layout.KortAll[overlay.CornerTopRight].OffsetX)
	assert.Equal(t, "bottom-left", layout.KortAll[overlay.CornerTopRight].Label.Position)
	// Untouched fields keep their defaults.
	assert.Equal(t, 150, layout.ViewHeight)
	assert.Equal(t, 690, layout.KortAll[overlay.CornerBottomLeft].ViewWidth)
}

func TestLinksFormFlow(t *testing.T) {
	app := newTestApp(t, nil)

	postForm := func(values url.Values) *http.Response {
		req, err := http.NewRequest(http.MethodPost, app.server.URL+"/overlay-links", strings.NewReader(values.Encode()))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.SetBasicAuth("admin", "sekret")
		client := &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
		resp, err := client.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	create := url.Values{}
	create.Set("action", "create")
	create.Set("kort_id", "1")
	create.Set("overlay", "https://app.overlays.uno/output/o1")
	create.Set("control", "https://app.overlays.uno/control/c1")

	resp := postForm(create)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/overlay-links", resp.Header.Get("Location"))

	// Duplicate kort_id re-renders the page with an error message.
	resp = postForm(create)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	links, err := app.store.ListLinks(context.Background())
	require.NoError(t, err)
	require.Len(t, links, 1)

	del := url.Values{}
	del.Set("action", "delete")
	del.Set("id", fmt.Sprintf("%d", links[0].ID))
	resp = postForm(del)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	links, err = app.store.ListLinks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t, nil)

	resp := app.request(t, http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = app.request(t, http.MethodGet, "/readyz", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = app.request(t, http.MethodGet, "/metrics", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
