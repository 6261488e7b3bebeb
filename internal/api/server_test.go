package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/textblock/internal/block"
	"github.com/dgallion1/textblock/internal/config"
	"github.com/dgallion1/textblock/internal/pipeline"
	"github.com/dgallion1/textblock/internal/toolbar"
)

const testKey = "test-key"

func newTestServer(t *testing.T) (*Server, *pipeline.Orchestrator) {
	t.Helper()
	cfg := config.Config{
		APIKey:         testKey,
		WorkerCount:    1,
		MaxQueueSize:   4,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
		SessionTTL:     time.Hour,
		HighlightStyle: "github",
		DefaultFont:    "Arial, sans-serif",
		DefaultColor:   "#000000",
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, block.NewStore(cfg.SessionTTL), log)
	return NewServer(orch, log, cfg), orch
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) block.Snapshot {
	t.Helper()
	var snap block.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}

func createBlock(t *testing.T, s *Server, html string) block.Snapshot {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/blocks", map[string]string{"html": html, "title": "Notes"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body)
	}
	return decodeSnapshot(t, rec)
}

func TestHealth_NoAuth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAuth(t *testing.T) {
	s, _ := newTestServer(t)
	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Basic " + testKey},
		{"wrong key", "Bearer nope"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/fonts", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", tt.name, rec.Code)
		}
	}
}

func TestBlockLifecycle(t *testing.T) {
	s, _ := newTestServer(t)
	snap := createBlock(t, s, "hello world")
	if snap.HTML != "hello world" || snap.Title != "Notes" {
		t.Fatalf("unexpected block: %+v", snap)
	}
	base := "/api/blocks/" + snap.ID

	rec := do(t, s, http.MethodPost, base+"/selection", block.RangeSpec{
		Start: block.Point{Path: []int{0}, Offset: 0},
		End:   block.Point{Path: []int{0}, Offset: 5},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("selection: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if got := decodeSnapshot(t, rec); got.Toolbar != toolbar.Visible || got.Selected != "hello" {
		t.Errorf("unexpected selection snapshot: %+v", got)
	}

	rec = do(t, s, http.MethodPost, base+"/format", map[string]string{"format": "italic"})
	if rec.Code != http.StatusOK {
		t.Fatalf("format: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	got := decodeSnapshot(t, rec)
	if got.HTML != "<i>hello</i> world" || !got.State.Active.Italic {
		t.Errorf("unexpected format snapshot: %+v", got)
	}

	rec = do(t, s, http.MethodPost, base+"/color", map[string]string{"color": "#00FF00"})
	if got := decodeSnapshot(t, rec); got.State.Color != "#00FF00" {
		t.Errorf("expected colour #00FF00, got %q", got.State.Color)
	}

	rec = do(t, s, http.MethodPost, base+"/font", map[string]string{"family": "Verdana, sans-serif"})
	if got := decodeSnapshot(t, rec); got.State.Font != "Verdana" {
		t.Errorf("expected font Verdana, got %q", got.State.Font)
	}

	rec = do(t, s, http.MethodPost, base+"/blur", map[string]string{"related": "elsewhere"})
	if got := decodeSnapshot(t, rec); got.Toolbar != toolbar.Hidden || got.State.Active.Italic {
		t.Errorf("expected blur to hide the toolbar and clear formats, got %+v", got)
	}

	rec = do(t, s, http.MethodGet, base+"/export?format=txt", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "hello world" {
		t.Errorf("export: expected %q, got %d %q", "hello world", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodDelete, base, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete: expected 200, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, base, nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestBlockEventErrors(t *testing.T) {
	s, _ := newTestServer(t)
	snap := createBlock(t, s, "abc")
	base := "/api/blocks/" + snap.ID

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"unknown format", "/format", map[string]string{"format": "strike"}, http.StatusBadRequest},
		{"bad range", "/selection", block.RangeSpec{Start: block.Point{Path: []int{7}}}, http.StatusBadRequest},
		{"bad json", "/font", "not an object", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := do(t, s, http.MethodPost, base+tt.path, tt.body)
		if rec.Code != tt.status {
			t.Errorf("%s: expected %d, got %d: %s", tt.name, tt.status, rec.Code, rec.Body)
		}
	}

	if rec := do(t, s, http.MethodGet, "/api/blocks/missing", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a missing block, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, base+"/export?format=pdf", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an unknown export format, got %d", rec.Code)
	}
}

func TestSelectionNullClears(t *testing.T) {
	s, _ := newTestServer(t)
	snap := createBlock(t, s, "abc")
	req := httptest.NewRequest(http.MethodPost, "/api/blocks/"+snap.ID+"/selection", strings.NewReader("null"))
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if got := decodeSnapshot(t, rec); got.Selection != nil {
		t.Errorf("expected no selection, got %+v", got.Selection)
	}
}

func TestPage(t *testing.T) {
	s, _ := newTestServer(t)
	snap := createBlock(t, s, "abc")
	rec := do(t, s, http.MethodGet, "/api/blocks/"+snap.ID+"/page", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `id="color-picker"`) || !strings.Contains(rec.Body.String(), ">abc</div>") {
		t.Errorf("unexpected page: %s", rec.Body)
	}
}

func TestFontsAndStats(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/fonts", nil)
	var fonts struct {
		Fonts []struct {
			Name string `json:"name"`
		} `json:"fonts"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&fonts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(fonts.Fonts) != 10 || fonts.Fonts[0].Name != "Arial" {
		t.Errorf("unexpected fonts: %+v", fonts.Fonts)
	}

	createBlock(t, s, "x")
	rec = do(t, s, http.MethodGet, "/api/stats", nil)
	var stats map[string]int
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats["blocks"] != 1 {
		t.Errorf("expected 1 block, got %d", stats["blocks"])
	}
}

func upload(t *testing.T, s *Server, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/imports", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestImport(t *testing.T) {
	s, orch := newTestServer(t)
	orch.Start(context.Background())
	defer orch.Stop()

	rec := upload(t, s, "readme.md", "# Readme\n\nSome `code` here.\n")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body)
	}
	var accepted struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&accepted); err != nil {
		t.Fatalf("decode: %v", err)
	}

	var status pipeline.JobSnapshot
	deadline := time.Now().Add(2 * time.Second)
	for {
		rec = do(t, s, http.MethodGet, "/api/imports/"+accepted.JobID+"/status", nil)
		if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if status.Status == pipeline.StatusCompleted || status.Status == pipeline.StatusFailed {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("import did not finish: %+v", status)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if status.Status != pipeline.StatusCompleted {
		t.Fatalf("expected completed, got %+v", status)
	}

	rec = do(t, s, http.MethodGet, "/api/blocks/"+status.BlockID, nil)
	snap := decodeSnapshot(t, rec)
	if snap.Title != "Readme" || !strings.Contains(snap.HTML, `<code class="inline-code">code</code>`) {
		t.Errorf("unexpected imported block: %+v", snap)
	}

	rec = do(t, s, http.MethodGet, "/api/blocks/"+status.BlockID+"/export?format=md", nil)
	md := rec.Body.String()
	if !strings.HasPrefix(md, "# Readme\n") || !strings.Contains(md, "Some `code` here.") {
		t.Errorf("unexpected markdown export: %q", md)
	}
}

func TestImport_Rejections(t *testing.T) {
	s, _ := newTestServer(t)
	if rec := upload(t, s, "data.csv", "a,b"); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unsupported type, got %d", rec.Code)
	}
	if rec := upload(t, s, "big.txt", strings.Repeat("x", (1<<20)+1)); rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413 for oversized file, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/imports/nope/status", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown job, got %d", rec.Code)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"notes.md", "notes.md"},
		{"../../etc/passwd", "passwd"},
		{`C:\x\..\y.txt`, `C:_x___y.txt`},
		{"", "unnamed"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
