package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/solheim/lesa/internal/docservice"
	"github.com/solheim/lesa/internal/export"
	"github.com/solheim/lesa/internal/imagestore"
	"github.com/solheim/lesa/internal/markdown"
	"github.com/solheim/lesa/internal/testutil"
)

// testEnv sets up a temp workspace, SQLite DB, service, and router.
// An empty authToken means auth is disabled.
func testEnv(t *testing.T, authToken string) (*docservice.Service, http.Handler) {
	t.Helper()

	_, store := testutil.TestWorkspace(t)
	db := testutil.TestDB(t)

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	images := imagestore.New()
	renderer := markdown.NewRenderer(
		markdown.WithImageResolver(docservice.Resolver(store, images)),
		markdown.WithLogger(logger),
	)
	exporter := export.NewManager(renderer, logger)
	svc := docservice.NewService(store, db, renderer, exporter, images)
	router := NewRouter(svc, authToken != "", authToken, nil)
	return svc, router
}

func TestCreateAndGetDocument(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(map[string]string{"path": "hello.md", "content": "# Hello\nWorld"})
	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/documents/hello.md", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var doc DocumentDetail
	_ = json.Unmarshal(w.Body.Bytes(), &doc)
	if doc.Path != "hello.md" {
		t.Errorf("path = %q", doc.Path)
	}
	if doc.Title != "Hello" {
		t.Errorf("title = %q, want Hello", doc.Title)
	}
}

func TestCreateDuplicate(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(map[string]string{"path": "dup.md", "content": "a"})
	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("first create = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader(body))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", w.Code)
	}
}

func TestUpdateWithOptimisticLocking(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(map[string]string{"path": "lock.md", "content": "v1"})
	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d", w.Code)
	}
	var created DocumentDetail
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	// Stale checksum rejected.
	body, _ = json.Marshal(map[string]string{"content": "v2"})
	req = httptest.NewRequest(http.MethodPut, "/documents/lock.md", bytes.NewReader(body))
	req.Header.Set("If-Match", "stale")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("stale update = %d, want 409", w.Code)
	}

	// Matching checksum accepted, quoted ETag form too.
	req = httptest.NewRequest(http.MethodPut, "/documents/lock.md", bytes.NewReader(body))
	req.Header.Set("If-Match", `"`+created.Checksum+`"`)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("update = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestDeleteDocument(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(map[string]string{"path": "gone.md", "content": "x"})
	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	req = httptest.NewRequest(http.MethodDelete, "/documents/gone.md", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/documents/gone.md", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestListDocuments(t *testing.T) {
	_, router := testEnv(t, "")

	for _, p := range []string{"b.md", "a.md"} {
		body, _ := json.Marshal(map[string]string{"path": p, "content": "# " + p})
		req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var resp DocumentListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 || len(resp.Documents) != 2 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Documents[0].Path != "a.md" {
		t.Errorf("first = %q, want a.md", resp.Documents[0].Path)
	}
}

func TestRenderEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(map[string]string{"content": "# Title\n\nsome **bold** text"})
	req := httptest.NewRequest(http.MethodPost, "/render", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("render = %d", w.Code)
	}
	var resp RenderResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !strings.Contains(resp.HTML, `<h1 id="title"`) {
		t.Errorf("html = %q", resp.HTML)
	}
	if len(resp.Headings) != 1 || resp.Headings[0].ID != "title" {
		t.Errorf("headings = %+v", resp.Headings)
	}
	if resp.Fallback {
		t.Error("fallback should be false")
	}
}

func TestTransformEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(TransformRequest{
		Action:         "bold",
		Content:        "make this strong",
		SelectionStart: 5,
		SelectionEnd:   9,
	})
	req := httptest.NewRequest(http.MethodPost, "/transform", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("transform = %d: %s", w.Code, w.Body.String())
	}
	var resp TransformResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Content != "make **this** strong" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.SelectionStart != 7 || resp.SelectionEnd != 11 {
		t.Errorf("selection = [%d,%d]", resp.SelectionStart, resp.SelectionEnd)
	}

	// Unknown actions are rejected.
	body, _ = json.Marshal(TransformRequest{Action: "sparkle"})
	req = httptest.NewRequest(http.MethodPost, "/transform", bytes.NewReader(body))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown action = %d, want 400", w.Code)
	}
}

func TestTransformEndpoint_SelectionOutOfRange(t *testing.T) {
	_, router := testEnv(t, "")

	for _, tc := range []struct {
		name       string
		start, end int
	}{
		{"start past end of content", 10, 2},
		{"end past end of content", 0, 99},
		{"negative start", -1, 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(TransformRequest{
				Action:         "bold",
				Content:        "abc",
				SelectionStart: tc.start,
				SelectionEnd:   tc.end,
			})
			req := httptest.NewRequest(http.MethodPost, "/transform", bytes.NewReader(body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("code = %d, want 400", w.Code)
			}
		})
	}
}

func TestTOCEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(map[string]string{"path": "t.md", "content": "# One\n\n## Two\n"})
	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	req = httptest.NewRequest(http.MethodGet, "/toc/t.md", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("toc = %d", w.Code)
	}
	var resp TOCResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Entries) != 2 || resp.Entries[1].Anchor != "two" {
		t.Errorf("entries = %+v", resp.Entries)
	}
}

func TestExportEndpoints(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(map[string]string{"path": "e.md", "content": "# Export\n\nbody"})
	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Stored document export.
	req = httptest.NewRequest(http.MethodGet, "/export/html?path=e.md", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("export get = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "e.html") {
		t.Errorf("disposition = %q", cd)
	}

	// Unsaved content export.
	body, _ = json.Marshal(map[string]string{"name": "draft.md", "content": "# Draft"})
	req = httptest.NewRequest(http.MethodPost, "/export/md", bytes.NewReader(body))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("export post = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "# Draft") {
		t.Errorf("body = %q", w.Body.String())
	}

	// Empty content rejected.
	body, _ = json.Marshal(map[string]string{"name": "empty.md", "content": "  \n "})
	req = httptest.NewRequest(http.MethodPost, "/export/md", bytes.NewReader(body))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty export = %d, want 400", w.Code)
	}

	// Unknown format rejected.
	body, _ = json.Marshal(map[string]string{"name": "x.md", "content": "x"})
	req = httptest.NewRequest(http.MethodPost, "/export/rtf", bytes.NewReader(body))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("rtf export = %d, want 400", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(map[string]string{"path": "s.md", "content": "# Findable\n\nxylophone practice"})
	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	req = httptest.NewRequest(http.MethodGet, "/search?q=xylophone", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d", w.Code)
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].Path != "s.md" {
		t.Errorf("results = %+v", resp.Results)
	}

	req = httptest.NewRequest(http.MethodGet, "/search", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing q = %d, want 400", w.Code)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get settings = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"fontSize":14`) {
		t.Errorf("defaults missing: %s", w.Body.String())
	}

	body := []byte(`{"editor":{"fontSize":18}}`)
	req = httptest.NewRequest(http.MethodPut, "/settings", bytes.NewReader(body))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("put settings = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/settings", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), `"fontSize":18`) {
		t.Errorf("update not persisted: %s", w.Body.String())
	}
	// Untouched fields keep their defaults.
	if !strings.Contains(w.Body.String(), `"tabSize":4`) {
		t.Errorf("tab size default lost: %s", w.Body.String())
	}
}

func TestImageUploadAndServe(t *testing.T) {
	svc, router := testEnv(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "shot.png")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write([]byte{0x89, 0x50, 0x4E, 0x47})
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ImageUploadResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !strings.HasPrefix(resp.Token, "img_") {
		t.Errorf("token = %q", resp.Token)
	}
	if !strings.Contains(resp.Markdown, "local:"+resp.Token) {
		t.Errorf("markdown = %q", resp.Markdown)
	}
	if svc.Images().Len() != 1 {
		t.Errorf("store len = %d", svc.Images().Len())
	}

	req = httptest.NewRequest(http.MethodGet, "/images/"+resp.Token, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("serve = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}

	req = httptest.NewRequest(http.MethodGet, "/images/img_missing", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing token = %d, want 404", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, router := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/documents", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad token = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/documents", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("good token = %d, want 200", w.Code)
	}
}

func TestEncodedPath(t *testing.T) {
	svc, router := testEnv(t, "")
	ctx := context.Background()

	if _, err := svc.CreateDocument(ctx, "topics/deep.md", []byte("# Deep")); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/documents/topics%2Fdeep.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("encoded path = %d, body = %s", w.Code, w.Body.String())
	}
	var doc DocumentDetail
	_ = json.Unmarshal(w.Body.Bytes(), &doc)
	if doc.Path != "topics/deep.md" {
		t.Errorf("path = %q", doc.Path)
	}
}
