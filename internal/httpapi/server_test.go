package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/park285/pubg-card-studio/internal/adapter/cardpresenter"
	"github.com/park285/pubg-card-studio/internal/msgcat"
	"github.com/park285/pubg-card-studio/internal/service/card"
	"github.com/park285/pubg-card-studio/internal/studio"
	"github.com/park285/pubg-card-studio/pkg/carddto"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat: %v", err)
	}
	reg := studio.NewRegistry(studio.Options{
		NewNotifier: cardpresenter.NewToasterFactory(cat, cardpresenter.ToasterConfig{}),
	}, studio.RegistryConfig{MaxSessions: 4})
	srv := httptest.NewServer(NewServer(reg, cat, nil, Config{}).Router())
	t.Cleanup(func() {
		srv.Close()
		reg.Close()
	})
	return srv
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rdr)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(res.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func createSession(t *testing.T, srv *httptest.Server) carddto.SessionState {
	t.Helper()
	res := do(t, http.MethodPost, srv.URL+"/api/sessions", nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", res.StatusCode)
	}
	return decode[carddto.SessionState](t, res)
}

func TestCatalogEndpoints(t *testing.T) {
	srv := newTestServer(t)
	themes := decode[[]carddto.CardTheme](t, do(t, http.MethodGet, srv.URL+"/api/themes", nil))
	if len(themes) != 5 || themes[0].Name != "Dark" {
		t.Fatalf("themes: %+v", themes)
	}
	roles := decode[[]carddto.RoleOption](t, do(t, http.MethodGet, srv.URL+"/api/roles", nil))
	if len(roles) != 5 || roles[0].Value != "IGL" {
		t.Fatalf("roles: %+v", roles)
	}
	res := do(t, http.MethodGet, srv.URL+"/", nil)
	if res.StatusCode != http.StatusOK || !strings.HasPrefix(res.Header.Get("Content-Type"), "text/html") {
		t.Fatalf("index: %d %s", res.StatusCode, res.Header.Get("Content-Type"))
	}
}

func TestSessionEditing(t *testing.T) {
	srv := newTestServer(t)
	st := createSession(t, srv)
	if st.PlayerInfo.InGameName != "WraithKiller" || st.Theme.Name != "Dark" || st.Version != 0 {
		t.Fatalf("seed: %+v", st)
	}
	base := srv.URL + "/api/sessions/" + st.SessionID

	res := do(t, http.MethodPut, base+"/fields/kd", map[string]string{"value": "3.1"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("set field status %d", res.StatusCode)
	}
	st = decode[carddto.SessionState](t, res)
	if st.PlayerInfo.Stats.KD != "3.1" || st.Layout.Stats[0].Value != "3.1" || st.Version != 1 {
		t.Fatalf("after edit: %+v", st)
	}

	cases := []struct {
		name   string
		method string
		path   string
		value  string
		status int
	}{
		{"unknown field", http.MethodPut, "/fields/alias", "x", http.StatusBadRequest},
		{"unknown role", http.MethodPut, "/role", "Medic", http.StatusBadRequest},
		{"unknown theme", http.MethodPut, "/theme", "Neon", http.StatusNotFound},
		{"role", http.MethodPut, "/role", "sniper", http.StatusOK},
		{"theme", http.MethodPut, "/theme", "Ice", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := do(t, tc.method, base+tc.path, map[string]string{"value": tc.value})
			if res.StatusCode != tc.status {
				t.Fatalf("status %d, want %d", res.StatusCode, tc.status)
			}
		})
	}

	st = decode[carddto.SessionState](t, do(t, http.MethodGet, base, nil))
	if st.PlayerInfo.Role != "Sniper" || st.Theme.Name != "Ice" || st.Layout.Subtitle != `"WraithKiller" SNIPER` {
		t.Fatalf("final state: %+v", st)
	}

	if res := do(t, http.MethodDelete, base, nil); res.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", res.StatusCode)
	}
	if res := do(t, http.MethodGet, base, nil); res.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status %d", res.StatusCode)
	}
}

func TestImageUploadPreviewAndExport(t *testing.T) {
	srv := newTestServer(t)
	st := createSession(t, srv)
	base := srv.URL + "/api/sessions/" + st.SessionID

	var img bytes.Buffer
	_ = png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 16, 16)))
	upload := func(name string, data []byte) *http.Response {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, _ := mw.CreateFormFile("file", name)
		_, _ = fw.Write(data)
		_ = mw.Close()
		res, err := http.Post(base+"/image", mw.FormDataContentType(), &body)
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		t.Cleanup(func() { res.Body.Close() })
		return res
	}

	res := upload("me.png", img.Bytes())
	if res.StatusCode != http.StatusOK {
		t.Fatalf("upload status %d", res.StatusCode)
	}
	st = decode[carddto.SessionState](t, res)
	if !strings.HasPrefix(st.PlayerInfo.ProfileImage, "data:image/png;base64,") || st.Layout.Placeholder {
		t.Fatalf("image not applied")
	}
	if res := upload("empty.png", nil); res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("empty upload status %d", res.StatusCode)
	}
	// the failure toast is already published when the 422 arrives
	toasts := decode[[]carddto.Toast](t, do(t, http.MethodGet, base+"/toasts", nil))
	if len(toasts) != 1 || toasts[0].Variant != "destructive" || !strings.Contains(toasts[0].Description, "empty.png") {
		t.Fatalf("image failure toasts: %+v", toasts)
	}

	res = do(t, http.MethodGet, base+"/preview.png", nil)
	cfg, err := png.DecodeConfig(res.Body)
	if err != nil || cfg.Width != card.CardWidth || cfg.Height != card.CardHeight {
		t.Fatalf("preview: %v %dx%d", err, cfg.Width, cfg.Height)
	}

	res = do(t, http.MethodPost, base+"/export", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("export status %d", res.StatusCode)
	}
	if disp, params, err := mime.ParseMediaType(res.Header.Get("Content-Disposition")); err != nil || disp != "attachment" || params["filename"] != "WraithKiller_card.png" {
		t.Fatalf("content disposition: %q %v", res.Header.Get("Content-Disposition"), err)
	}
	cfg, err = png.DecodeConfig(res.Body)
	if err != nil || cfg.Width != 2*card.CardWidth || cfg.Height != 2*card.CardHeight {
		t.Fatalf("export png: %v %dx%d", err, cfg.Width, cfg.Height)
	}

	toasts = decode[[]carddto.Toast](t, do(t, http.MethodGet, base+"/toasts", nil))
	if len(toasts) == 0 || toasts[0].Title != "Success!" {
		t.Fatalf("toasts: %+v", toasts)
	}
}

func TestSessionCap(t *testing.T) {
	srv := newTestServer(t)
	for i := 0; i < 4; i++ {
		createSession(t, srv)
	}
	if res := do(t, http.MethodPost, srv.URL+"/api/sessions", nil); res.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status %d", res.StatusCode)
	}
}

func TestLiveSync(t *testing.T) {
	srv := newTestServer(t)
	st := createSession(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sessions/" + st.SessionID + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	var ev carddto.Event
	if err := wsjson.Read(ctx, conn, &ev); err != nil || ev.Type != carddto.EventSnapshot || ev.State.Version != 0 {
		t.Fatalf("initial snapshot: %+v %v", ev, err)
	}

	if err := wsjson.Write(ctx, conn, carddto.Command{Op: carddto.OpField, Field: "teamName", Value: "Night Owls"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := wsjson.Read(ctx, conn, &ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.Type != carddto.EventSnapshot || ev.State.PlayerInfo.TeamName != "Night Owls" || ev.Version != 1 {
		t.Fatalf("snapshot after edit: %+v", ev)
	}

	if err := wsjson.Write(ctx, conn, carddto.Command{Op: carddto.OpTheme, Value: "Neon"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	ev = carddto.Event{}
	if err := wsjson.Read(ctx, conn, &ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.Type != carddto.EventError || ev.Error == nil || ev.Error.Code != "unknown_theme" {
		t.Fatalf("expected unknown_theme error, got %+v", ev)
	}
}

func TestContentDispositionEncodesUnsafeNames(t *testing.T) {
	cases := []string{"WraithKiller_card.png", "Ωmega_card.png", "a/b \"x\"_card.png"}
	for _, name := range cases {
		got := contentDisposition(name)
		disp, params, err := mime.ParseMediaType(got)
		if err != nil || disp != "attachment" || params["filename"] != name {
			t.Fatalf("%q: header %q round-trips to %q (%v)", name, got, params["filename"], err)
		}
	}
}
