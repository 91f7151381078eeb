package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/sheetmerge/internal/config"
	"github.com/JonMunkholm/sheetmerge/internal/core"
	"github.com/JonMunkholm/sheetmerge/internal/merge"
	"github.com/JonMunkholm/sheetmerge/internal/source"
	"github.com/JonMunkholm/sheetmerge/internal/store"
)

func testConfig(dir string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		Source: config.SourceConfig{Path: filepath.Join(dir, "import.csv"), MaxFileSize: 1 << 20},
		Merge:  config.MergeConfig{PreferredKey: "id"},
		Import: config.ImportConfig{MaxWaitTime: time.Second, Timeout: 5 * time.Second, HistorySize: 10},
		Rate:   config.RateLimitConfig{Enabled: false, RequestsPerMinute: 100, ImportLimit: 10},
		Security: config.SecurityConfig{
			CORSAllowedOrigins: []string{"*"},
		},
	}
}

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	cfg := testConfig(dir)
	if mutate != nil {
		mutate(cfg)
	}

	svc, err := core.NewService(
		store.NewFileStore(filepath.Join(dir, "storage", "data.json")),
		source.NewTabularReader("", cfg.Source.MaxFileSize),
		cfg,
	)
	require.NoError(t, err)

	s := NewServer(svc, cfg)
	t.Cleanup(func() { _ = s.Shutdown(t.Context()) })
	return s, cfg
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	req.RemoteAddr = "192.0.2.10:5000"
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, url, name, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "file", body["storage"])
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestData_EmptyStore(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/data", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestImportConfigured_MissingFile(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/import-excel", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decode[ErrorResponse](t, rec)
	assert.True(t, strings.HasPrefix(body.Message, "Excel file not found at "), body.Message)
	assert.Contains(t, body.Message, "import.csv")
	assert.NotEmpty(t, body.Code)
}

func TestImportConfigured_MergesIntoStorage(t *testing.T) {
	s, cfg := newTestServer(t, nil)
	require.NoError(t, os.WriteFile(cfg.Source.Path, []byte("id,name\n1,A\n2,B\n"), 0o644))

	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/import-excel", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[importResponse](t, rec)
	assert.Equal(t, msgMerged, body.Message)
	assert.Equal(t, 2, body.Rows)
	assert.Equal(t, 2, body.Added)
	assert.Equal(t, "id", body.KeyColumn)
	assert.Equal(t, merge.StatusMerged, body.Status)
	assert.NotEmpty(t, body.ImportID)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/data", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"name":"A"},{"id":2,"name":"B"}]`, rec.Body.String())
}

func TestImportUpload(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, uploadRequest(t, "/api/import", "batch.csv", "id,qty\n1,5\n2,7\n"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[importResponse](t, rec).Added)

	rec = do(t, s, uploadRequest(t, "/api/import", "batch.csv", "id,qty\n1,6\n3,1\n"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[importResponse](t, rec)
	assert.Equal(t, 1, body.Added)
	assert.Equal(t, 1, body.Updated)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/data", nil))
	assert.JSONEq(t, `[{"id":1,"qty":6},{"id":2,"qty":7},{"id":3,"qty":1}]`, rec.Body.String())
}

func TestImportUpload_EmptyBatch(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, uploadRequest(t, "/api/import", "batch.csv", "id,name\n"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[importResponse](t, rec)
	assert.Equal(t, msgEmptyBatch, body.Message)
	assert.Equal(t, merge.StatusEmptyBatch, body.Status)
}

func TestImportUpload_BadRequests(t *testing.T) {
	s, _ := newTestServer(t, nil)

	t.Run("no file", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("other", "x"))
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/api/import", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		rec := do(t, s, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader("id\n1\n"))
		req.Header.Set("Content-Type", "text/csv")
		rec := do(t, s, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unsupported format", func(t *testing.T) {
		rec := do(t, s, uploadRequest(t, "/api/import", "notes.txt", "id\n1\n"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NotEmpty(t, decode[ErrorResponse](t, rec).Code)
	})

	t.Run("blank file", func(t *testing.T) {
		rec := do(t, s, uploadRequest(t, "/api/import", "batch.csv", "\n\n"))
		assert.Equal(t, http.StatusOK, rec.Code, "a file with no rows is an empty batch")
	})
}

func TestPreview_DoesNotSave(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, uploadRequest(t, "/api/import/preview", "batch.csv", "id,name\n1,A\n"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[importResponse](t, rec)
	assert.True(t, body.DryRun)
	assert.Equal(t, msgPreview, body.Message)
	assert.Equal(t, 1, body.Added)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/data", nil))
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestImportHistory(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/imports", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = do(t, s, uploadRequest(t, "/api/import", "batch.csv", "id\n1\n"))
	require.Equal(t, http.StatusOK, rec.Code)
	id := decode[importResponse](t, rec).ImportID

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/imports", nil))
	list := decode[[]core.ImportResult](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ImportID)
	assert.Equal(t, "192.0.2.10", list[0].ClientIP)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/imports/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "batch.csv", decode[core.ImportResult](t, rec).Source)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/imports/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIKeyRequiredForImports(t *testing.T) {
	s, cfg := newTestServer(t, func(c *config.Config) {
		c.Security.RequireAPIKey = true
		c.Security.APIKeys = []string{"secret"}
	})
	require.NoError(t, os.WriteFile(cfg.Source.Path, []byte("id\n1\n"), 0o644))

	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/import-excel", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/import-excel", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = do(t, s, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/data", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "reads stay open")
}

func TestRateLimit(t *testing.T) {
	s, cfg := newTestServer(t, func(c *config.Config) {
		c.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 100, ImportLimit: 1}
	})
	require.NoError(t, os.WriteFile(cfg.Source.Path, []byte("id\n1\n"), 0o644))

	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/import-excel", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, httptest.NewRequest(http.MethodPost, "/api/import-excel", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE001", decode[ErrorResponse](t, rec).Code)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/data", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "global limit is separate")
}

func TestStaticIndex(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sheet Merge")

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/script.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/import-excel")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"source missing", source.ErrSourceNotFound, http.StatusNotFound},
		{"import missing", core.ErrImportNotFound, http.StatusNotFound},
		{"unsupported", source.ErrUnsupportedFormat, http.StatusBadRequest},
		{"too large", source.ErrFileTooLarge, http.StatusBadRequest},
		{"no sheet", source.ErrNoSheet, http.StatusBadRequest},
		{"no file", errNoFile, http.StatusBadRequest},
		{"unkeyable", merge.ErrUnresolvableKey, http.StatusUnprocessableEntity},
		{"busy", core.ErrTooManyImports, http.StatusServiceUnavailable},
		{"rate", errRateLimited, http.StatusTooManyRequests},
		{"storage", store.ErrRead, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestShutdownBeforeStart(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.Config) {
		c.Server.Host = "127.0.0.1"
		c.Server.Port = 0
	})

	done := make(chan error, 1)
	require.NoError(t, s.Shutdown(t.Context()))
	go func() { done <- s.Start() }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}

func TestStartThenShutdown(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.Config) {
		c.Server.Host = "127.0.0.1"
		c.Server.Port = 0
	})

	done := make(chan error, 1)
	go func() { done <- s.Start() }()
	require.NoError(t, s.Shutdown(t.Context()))

	select {
	case err := <-done:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}
