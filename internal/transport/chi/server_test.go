package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ayat/internal/domain"
	"github.com/kailas-cloud/ayat/internal/domain/explanation"
	"github.com/kailas-cloud/ayat/internal/domain/search/request"
	"github.com/kailas-cloud/ayat/internal/domain/verse"
	healthuc "github.com/kailas-cloud/ayat/internal/usecase/health"
	"github.com/kailas-cloud/ayat/internal/usecase/pipeline"
)

// --- Mocks ---

type mockAnswerer struct {
	resp    pipeline.Response
	err     error
	lastReq request.Request
	called  bool
	tokens  int
	degrade bool
}

func (m *mockAnswerer) Answer(ctx context.Context, req request.Request) (pipeline.Response, error) {
	m.called = true
	m.lastReq = req
	if m.tokens > 0 {
		domain.UsageFromContext(ctx).AddTokens(m.tokens)
	}
	if m.degrade {
		domain.UsageFromContext(ctx).MarkDegraded()
	}
	return m.resp, m.err
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type mockProber struct {
	n   int
	err error
}

func (m *mockProber) Probe(context.Context) (int, error) { return m.n, m.err }

// --- Helpers ---

func sampleResponse(t *testing.T) pipeline.Response {
	t.Helper()
	exp, err := explanation.New("تفصیل", []int64{7, 3}, explanation.Success, 1)
	if err != nil {
		t.Fatalf("explanation.New: %v", err)
	}
	return pipeline.Response{
		Query:          "what is fasting",
		ProcessedQuery: "fasting",
		Results: []verse.Enriched{
			{
				Text:    verse.Text{QuranID: 7, SurahID: 2, AyahID: 183, Arabic: "a7", Urdu: "u7", English: "e7"},
				PointID: "7", Score: 0.91, Origin: "dense",
			},
			{
				Text:    verse.Placeholder(3),
				PointID: "3", Score: 0.99, SyntheticScore: true, Origin: "sparse",
			},
		},
		Explanation: exp,
	}
}

func newTestRouter(a Answerer, h HealthChecker, p RetrievalProber, keys ...string) http.Handler {
	s := NewServer(a, h, p, Limits{DefaultTopK: 5, MaxTopK: 50}, zap.NewNop())
	return NewRouter(s, keys, zap.NewNop())
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e
}

// --- Tests ---

func TestSearchPost_OK(t *testing.T) {
	a := &mockAnswerer{resp: sampleResponse(t), tokens: 12}
	h := newTestRouter(a, &mockHealth{}, nil)

	rr := do(t, h, http.MethodPost, "/search", `{"text":"what is fasting","top_k":2}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rr.Code, rr.Body.String())
	}
	if a.lastReq.TopK() != 2 {
		t.Errorf("top_k: got %d, want 2", a.lastReq.TopK())
	}
	if got := rr.Header().Get("X-Embedding-Tokens"); got != "12" {
		t.Errorf("X-Embedding-Tokens: got %q", got)
	}
	if rr.Header().Get("X-Embedding-Degraded") != "" {
		t.Error("degraded header must be absent")
	}

	var resp SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Query != "what is fasting" || resp.ProcessedQuery != "fasting" {
		t.Errorf("query echo: %+v", resp)
	}
	if len(resp.TopResults) != 2 {
		t.Fatalf("results: got %d", len(resp.TopResults))
	}
	if resp.TopResults[0].QuranID != 7 || resp.TopResults[0].AyahID != 183 {
		t.Errorf("first result: %+v", resp.TopResults[0])
	}
	second := resp.TopResults[1]
	if !second.Placeholder || !second.SyntheticScore || second.Source != "sparse" {
		t.Errorf("second result flags: %+v", second)
	}
	if second.UrduText != verse.PlaceholderUrdu(3) {
		t.Errorf("placeholder urdu: %q", second.UrduText)
	}
	if resp.Explanation.State != "success" || resp.Explanation.Attempts != 1 {
		t.Errorf("explanation: %+v", resp.Explanation)
	}
	if fmt.Sprint(resp.Explanation.GroundingIDs) != "[7 3]" {
		t.Errorf("grounding ids: %v", resp.Explanation.GroundingIDs)
	}
}

func TestSearchPost_DefaultTopK(t *testing.T) {
	a := &mockAnswerer{resp: sampleResponse(t)}
	h := newTestRouter(a, &mockHealth{}, nil)

	rr := do(t, h, http.MethodPost, "/search", `{"text":"patience"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if a.lastReq.TopK() != 5 {
		t.Errorf("default top_k: got %d, want 5", a.lastReq.TopK())
	}
}

func TestSearchPost_ClampsTopK(t *testing.T) {
	a := &mockAnswerer{resp: sampleResponse(t)}
	h := newTestRouter(a, &mockHealth{}, nil)

	do(t, h, http.MethodPost, "/search", `{"text":"patience","top_k":500}`)
	if a.lastReq.TopK() != 50 {
		t.Errorf("clamped top_k: got %d, want 50", a.lastReq.TopK())
	}
}

func TestSearchPost_DegradedHeader(t *testing.T) {
	a := &mockAnswerer{resp: sampleResponse(t), degrade: true}
	h := newTestRouter(a, &mockHealth{}, nil)

	rr := do(t, h, http.MethodPost, "/search", `{"text":"prayer"}`)
	if rr.Header().Get("X-Embedding-Degraded") != "true" {
		t.Errorf("expected degraded header, got %v", rr.Header())
	}
}

func TestSearchPost_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		code ErrorCode
	}{
		{"malformed json", `{"text":`, CodeBadRequest},
		{"empty text", `{"text":"   "}`, CodeValidationFailed},
		{"negative top_k", `{"text":"x","top_k":-1}`, CodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &mockAnswerer{}
			h := newTestRouter(a, &mockHealth{}, nil)

			rr := do(t, h, http.MethodPost, "/search", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400", rr.Code)
			}
			if e := decodeError(t, rr); e.Code != tt.code {
				t.Errorf("code: got %s, want %s", e.Code, tt.code)
			}
			if a.called {
				t.Error("pipeline must not run on invalid input")
			}
		})
	}
}

func TestSearchGet_OK(t *testing.T) {
	a := &mockAnswerer{resp: sampleResponse(t)}
	h := newTestRouter(a, &mockHealth{}, nil)

	rr := do(t, h, http.MethodGet, "/search?text=sabr&top_k=3", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rr.Code, rr.Body.String())
	}
	if a.lastReq.Text() != "sabr" || a.lastReq.TopK() != 3 {
		t.Errorf("request: text=%q top_k=%d", a.lastReq.Text(), a.lastReq.TopK())
	}
}

func TestSearchGet_MissingText(t *testing.T) {
	h := newTestRouter(&mockAnswerer{}, &mockHealth{}, nil)

	rr := do(t, h, http.MethodGet, "/search", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestSearchGet_BadTopK(t *testing.T) {
	h := newTestRouter(&mockAnswerer{}, &mockHealth{}, nil)

	rr := do(t, h, http.MethodGet, "/search?text=x&top_k=many", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestSearch_DomainErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   ErrorCode
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
		{"retrieval", fmt.Errorf("search: %w", domain.ErrRetrievalFailed), http.StatusBadGateway, CodeRetrievalFailed},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(&mockAnswerer{err: tt.err}, &mockHealth{}, nil)

			rr := do(t, h, http.MethodPost, "/search", `{"text":"x"}`)
			if rr.Code != tt.status {
				t.Fatalf("status: got %d, want %d", rr.Code, tt.status)
			}
			e := decodeError(t, rr)
			if e.Code != tt.code {
				t.Errorf("code: got %s, want %s", e.Code, tt.code)
			}
			if tt.name == "not found" && e.Message != "no verses found matching your query" {
				t.Errorf("message: %q", e.Message)
			}
			if tt.name == "unknown" && strings.Contains(e.Message, "boom") {
				t.Error("internal error details leaked")
			}
		})
	}
}

func TestRoot(t *testing.T) {
	h := newTestRouter(&mockAnswerer{}, &mockHealth{}, nil, "secret")

	rr := do(t, h, http.MethodGet, "/", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "running" {
		t.Errorf("status field: %v", body["status"])
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		status healthuc.Status
		want   int
	}{
		{"healthy", healthuc.Healthy, http.StatusOK},
		{"degraded", healthuc.Degraded, http.StatusServiceUnavailable},
		{"unhealthy", healthuc.Unhealthy, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := &mockHealth{report: healthuc.Report{
				Status: tt.status,
				Checks: map[string]healthuc.CheckResult{healthuc.VectorStore: healthuc.CheckOK},
			}}
			h := newTestRouter(&mockAnswerer{}, hc, nil)

			rr := do(t, h, http.MethodGet, "/health", "")
			if rr.Code != tt.want {
				t.Fatalf("status: got %d, want %d", rr.Code, tt.want)
			}
			var body HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != string(tt.status) || body.Checks[healthuc.VectorStore] != "ok" {
				t.Errorf("body: %+v", body)
			}
		})
	}
}

func TestSearchProbe(t *testing.T) {
	t.Run("working", func(t *testing.T) {
		h := newTestRouter(&mockAnswerer{}, &mockHealth{}, &mockProber{n: 2})
		rr := do(t, h, http.MethodGet, "/health/search", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d", rr.Code)
		}
		var body map[string]any
		_ = json.NewDecoder(rr.Body).Decode(&body)
		if body["working"] != true || body["results_found"] != float64(2) {
			t.Errorf("body: %v", body)
		}
	})
	t.Run("failing", func(t *testing.T) {
		p := &mockProber{err: fmt.Errorf("%w: dial tcp", domain.ErrRetrievalFailed)}
		h := newTestRouter(&mockAnswerer{}, &mockHealth{}, p)
		rr := do(t, h, http.MethodGet, "/health/search", "")
		if rr.Code != http.StatusServiceUnavailable {
			t.Fatalf("status: got %d", rr.Code)
		}
		if strings.Contains(rr.Body.String(), "dial tcp") {
			t.Error("probe error details leaked")
		}
	})
	t.Run("not configured", func(t *testing.T) {
		h := newTestRouter(&mockAnswerer{}, &mockHealth{}, nil)
		rr := do(t, h, http.MethodGet, "/health/search", "")
		if rr.Code != http.StatusNotFound {
			t.Errorf("status: got %d", rr.Code)
		}
	})
}

func TestSearch_RequiresAuth(t *testing.T) {
	a := &mockAnswerer{resp: sampleResponse(t)}
	h := newTestRouter(a, &mockHealth{}, nil, "secret")

	rr := do(t, h, http.MethodPost, "/search", `{"text":"x"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
	if a.called {
		t.Error("pipeline ran without auth")
	}
}

func TestUnknownRoute_JSON404(t *testing.T) {
	h := newTestRouter(&mockAnswerer{}, &mockHealth{}, nil)

	rr := do(t, h, http.MethodGet, "/collections", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != CodeNotFound {
		t.Errorf("code: %s", e.Code)
	}
}

func TestJSONRecoverer(t *testing.T) {
	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	h := JSONRecoverer(zap.NewNop())(panicky)

	rr := do(t, h, http.MethodGet, "/", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != CodeInternalError {
		t.Errorf("code: %s", e.Code)
	}
}

func TestWideEventMiddleware_RequestID(t *testing.T) {
	h := newTestRouter(&mockAnswerer{}, &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}, nil)

	rr := do(t, h, http.MethodGet, "/health", "")
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}
