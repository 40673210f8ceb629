package web

import (
	"bytes"
	"encoding/json"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JonMunkholm/sheetswap/internal/config"
	"github.com/JonMunkholm/sheetswap/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xuri/excelize/v2"
)

const salaryCSV = "name,salary,age\nann,100,30\nann,100,30\nbob,,40\n"

type testFile struct {
	name string
	data string
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	reg := prometheus.NewRegistry()
	svc := core.NewService(cfg, core.NewMetrics(reg))
	s := NewServer(cfg, svc, reg)
	t.Cleanup(func() {
		if s.limiter != nil {
			s.limiter.stop()
		}
	})
	return s
}

// uploadRequest builds a multipart upload of files plus form fields.
func uploadRequest(t *testing.T, target string, files []testFile, fields map[string][]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		part.Write([]byte(f.data))
	}
	for k, vs := range fields {
		for _, v := range vs {
			mw.WriteField(k, v)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandlePage(t *testing.T) {
	s := newTestServer(t, nil)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`id="upload-form"`, `name="files"`, `accept=".csv,.xlsx"`, `data-max-files="20"`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name    string
		csp     bool
		wantCSP bool
	}{
		{"csp enabled", true, true},
		{"csp disabled", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, func(c *config.Config) { c.Security.EnableCSP = tt.csp })
			rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
				t.Errorf("X-Content-Type-Options = %q", got)
			}
			if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
				t.Errorf("X-Frame-Options = %q", got)
			}
			if got := rec.Header().Get("Content-Security-Policy") != ""; got != tt.wantCSP {
				t.Errorf("CSP present = %v, want %v", got, tt.wantCSP)
			}
		})
	}
}

func TestHandleProcess(t *testing.T) {
	s := newTestServer(t, nil)
	req := uploadRequest(t, "/process",
		[]testFile{{"a.csv", salaryCSV}, {"data.txt", "x"}},
		map[string][]string{"dedup-0": {"on"}, "chart-0": {"on"}},
	)
	req.Header.Set("X-Requested-With", "fetch")
	rec := serve(s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Preview of a.csv",
		"Duplicates removed! (1 rows dropped)",
		"<svg",
		"Error reading data.txt: Unsupported file type: .txt",
		"Processed 2 files, 1 could not be read.",
		`data-download="0"`,
		"Download a.csv",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("results missing %q", want)
		}
	}
	if strings.Contains(body, `data-download="1"`) {
		t.Error("failed file should not offer a download")
	}
}

func TestHandleProcess_Errors(t *testing.T) {
	tests := []struct {
		name       string
		req        func(t *testing.T) *http.Request
		wantStatus int
		wantCode   string
	}{
		{
			name: "no files",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/process", nil, map[string][]string{"dedup-0": {"on"}})
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "FILE004",
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/process", strings.NewReader("x=1"))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "FILE004",
		},
		{
			name: "bad export format",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/process", []testFile{{"a.csv", salaryCSV}},
					map[string][]string{"format-0": {"PDF"}})
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "FORM001",
		},
		{
			name: "too many files",
			req: func(t *testing.T) *http.Request {
				files := make([]testFile, 21)
				for i := range files {
					files[i] = testFile{"a.csv", salaryCSV}
				}
				return uploadRequest(t, "/process", files, nil)
			},
			wantStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			req := tt.req(t)
			req.Header.Set("X-Requested-With", "fetch")
			rec := serve(s, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), `role="alert"`) {
				t.Errorf("expected an error alert fragment, got %s", rec.Body.String())
			}
			if tt.wantCode != "" && !strings.Contains(rec.Body.String(), tt.wantCode) {
				t.Errorf("body missing code %s: %s", tt.wantCode, rec.Body.String())
			}
		})
	}
}

func TestHandleDownload(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("excel", func(t *testing.T) {
		req := uploadRequest(t, "/download/0",
			[]testFile{{"a.csv", salaryCSV}},
			map[string][]string{
				"dedup-0":       {"on"},
				"columns-set-0": {"1"},
				"columns-0":     {"name", "salary"},
				"format-0":      {"Excel"},
			},
		)
		rec := serve(s, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
		}
		if got := rec.Header().Get("Content-Type"); got != core.MIMEXLSX {
			t.Errorf("Content-Type = %q", got)
		}
		_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
		if err != nil || params["filename"] != "a.xlsx" {
			t.Errorf("Content-Disposition filename = %q (err %v), want a.xlsx", params["filename"], err)
		}

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		if err != nil {
			t.Fatalf("open xlsx: %v", err)
		}
		defer f.Close()
		rows, err := f.GetRows(core.SheetName)
		if err != nil {
			t.Fatalf("GetRows: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("got %d rows, want header + 2", len(rows))
		}
		if strings.Join(rows[0], ",") != "name,salary" {
			t.Errorf("header = %v", rows[0])
		}
	})

	t.Run("columns in pick order", func(t *testing.T) {
		req := uploadRequest(t, "/download/0",
			[]testFile{{"a.csv", salaryCSV}},
			map[string][]string{
				"columns-set-0":   {"1"},
				"columns-0":       {"name", "age"},
				"columns-order-0": {"age", "name"},
			},
		)
		rec := serve(s, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
		}
		if !strings.HasPrefix(rec.Body.String(), "age,name\n30,ann\n") {
			t.Errorf("body = %q, want age before name", rec.Body.String())
		}
	})

	t.Run("csv default", func(t *testing.T) {
		rec := serve(s, uploadRequest(t, "/download/0", []testFile{{"report.xlsx.csv", salaryCSV}}, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
		}
		if got := rec.Header().Get("Content-Type"); got != core.MIMECSV {
			t.Errorf("Content-Type = %q", got)
		}
		if !strings.Contains(rec.Header().Get("Content-Disposition"), "report.xlsx.csv") {
			t.Errorf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
		}
		if !strings.HasPrefix(rec.Body.String(), "name,salary,age\n") {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("index out of range", func(t *testing.T) {
		rec := serve(s, uploadRequest(t, "/download/3", []testFile{{"a.csv", salaryCSV}}, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unreadable file", func(t *testing.T) {
		rec := serve(s, uploadRequest(t, "/download/0", []testFile{{"data.txt", "x"}}, nil))
		if rec.Code != http.StatusUnsupportedMediaType {
			t.Errorf("status = %d, want 415", rec.Code)
		}
	})
}

func TestHandleAPIProcess(t *testing.T) {
	s := newTestServer(t, nil)
	req := uploadRequest(t, "/api/process",
		[]testFile{{"a.csv", salaryCSV}},
		map[string][]string{"fill-0": {"true"}},
	)
	rec := serve(s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp batchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID == "" {
		t.Error("missing batch id")
	}
	if len(resp.Files) != 1 {
		t.Fatalf("got %d files", len(resp.Files))
	}
	f := resp.Files[0]
	if f.Format != "csv" || f.LoadedRows != 3 {
		t.Errorf("format=%q loaded_rows=%d", f.Format, f.LoadedRows)
	}
	// mean of 100 and 100
	if got := f.Result[3][1]; got != "100" {
		t.Errorf("filled salary = %q, want 100", got)
	}
	if f.Error != nil {
		t.Errorf("unexpected error %+v", f.Error)
	}
}

func TestAPIErrorIsJSON(t *testing.T) {
	s := newTestServer(t, nil)
	rec := serve(s, uploadRequest(t, "/api/process", nil, nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v; body %s", err, rec.Body.String())
	}
	if resp.Code != "FILE004" {
		t.Errorf("code = %q, want FILE004", resp.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)
	serve(s, uploadRequest(t, "/process", []testFile{{"a.csv", salaryCSV}}, nil))

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var health struct {
		Status  string                   `json:"status"`
		Batches core.UploadLimiterStatus `json:"batches"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "ok" || health.Batches.MaxConcurrent != 5 {
		t.Errorf("health = %+v", health)
	}

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `sheetswap_files_processed_total{format="csv",result="ok"} 1`) {
		t.Errorf("metrics missing processed counter:\n%s", rec.Body.String())
	}
}

func TestMetricsDisabled(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Metrics.Enabled = false })
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Rate.RequestsPerMinute = 2 })

	for i, want := range []int{200, 200, 429} {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := serve(s, req)
		if rec.Code != want {
			t.Fatalf("request %d: status = %d, want %d", i, rec.Code, want)
		}
	}

	// Another client has its own budget.
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "192.0.2.2:1234"
	if rec := serve(s, req); rec.Code != http.StatusOK {
		t.Errorf("second client status = %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	preflight := func(s *Server) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/process", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		return serve(s, req)
	}

	t.Run("no origins configured", func(t *testing.T) {
		rec := preflight(newTestServer(t, nil))
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, want none", got)
		}
	})

	t.Run("allowed origin", func(t *testing.T) {
		rec := preflight(newTestServer(t, func(c *config.Config) {
			c.Security.CORSOrigins = []string{"https://app.example.com"}
		}))
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
			t.Errorf("Allow-Origin = %q", got)
		}
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrTooManyUploads, http.StatusServiceUnavailable},
		{core.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{&core.FormatError{Ext: ".txt"}, http.StatusUnsupportedMediaType},
		{core.ErrUnknownColumn, http.StatusUnprocessableEntity},
		{errNoFile, http.StatusBadRequest},
		{errRateLimited, http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
