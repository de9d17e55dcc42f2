package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jyotish/pkg/core/ephemeris"
	"github.com/matzehuels/jyotish/pkg/errors"
	"github.com/matzehuels/jyotish/pkg/observability"
	"github.com/matzehuels/jyotish/pkg/pipeline"
	"github.com/matzehuels/jyotish/pkg/session"
)

const delhiBody = `{"birth":"1990-07-15T06:30:00Z","latitude":28.6139,"longitude":77.209}`

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(nil, nil, ephemeris.Kepler{}, logger)
	srv := httptest.NewServer(New(runner, session.NewMemoryStore(), logger, opts).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, Options{})
	resp, body := do(t, http.MethodGet, srv.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte(`"ok"`)) {
		t.Errorf("healthz = %d %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
}

func TestSessionFlow(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/sessions", delhiBody)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create = %d %s", resp.StatusCode, body)
	}
	sess := decode[SessionResponse](t, body)
	if sess.ID == "" || sess.Chart == nil || sess.ChartHash == "" {
		t.Fatalf("session = %+v", sess)
	}
	base := srv.URL + "/v1/sessions/" + sess.ID

	resp, body = do(t, http.MethodGet, base+"/dasha?at=2025-06-01", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dasha = %d %s", resp.StatusCode, body)
	}
	dasha := decode[pipeline.DashaReport](t, body)
	if dasha.Current == nil || len(dasha.Timeline.Mahas) != 9 {
		t.Errorf("dasha report = %+v", dasha)
	}

	resp, body = do(t, http.MethodGet, base+"/transits?at=2025-06-01T00:00:00Z&timing=true", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("transits = %d %s", resp.StatusCode, body)
	}
	tr := decode[pipeline.TransitReport](t, body)
	if len(tr.Transits) != 9 || tr.Transits[0].Timing == nil {
		t.Errorf("transits = %d entries, first timing %v", len(tr.Transits), tr.Transits[0].Timing)
	}

	resp, body = do(t, http.MethodGet, base+"/calendar?year=2024&month=2", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("calendar = %d %s", resp.StatusCode, body)
	}
	if cal := decode[pipeline.CalendarReport](t, body); len(cal.Days) != 29 {
		t.Errorf("leap February has %d days", len(cal.Days))
	}

	resp, body = do(t, http.MethodPut, base+"/chart", `{"birth":"2000-01-01T12:00:00Z","latitude":0,"longitude":0}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put chart = %d %s", resp.StatusCode, body)
	}
	if updated := decode[SessionResponse](t, body); updated.ChartHash == sess.ChartHash {
		t.Error("chart hash unchanged after replacing chart")
	}

	resp, _ = do(t, http.MethodDelete, base, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete = %d", resp.StatusCode)
	}
	resp, body = do(t, http.MethodGet, base, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete = %d %s", resp.StatusCode, body)
	}
}

func TestErrors(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/sessions", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create empty = %d %s", resp.StatusCode, body)
	}
	empty := decode[SessionResponse](t, body)
	if empty.Chart != nil {
		t.Error("empty session has a chart")
	}
	emptyBase := srv.URL + "/v1/sessions/" + empty.ID

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   errors.Code
	}{
		{"unknown session", http.MethodGet, "/v1/sessions/nope/dasha", "", http.StatusNotFound, errors.ErrCodeSessionNotFound},
		{"no chart", http.MethodGet, emptyBase + "/transits", "", http.StatusNotFound, errors.ErrCodeChartNotFound},
		{"bad latitude", http.MethodPost, "/v1/sessions", `{"birth":"1990-07-15T06:30:00Z","latitude":95,"longitude":0}`, http.StatusBadRequest, errors.ErrCodeInvalidLatitude},
		{"missing birth", http.MethodPost, "/v1/sessions", `{"latitude":10,"longitude":10}`, http.StatusBadRequest, errors.ErrCodeInvalidDate},
		{"malformed body", http.MethodPost, "/v1/sessions", `{"birth":`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", http.MethodPost, "/v1/sessions", `{"lat":1}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"empty chart body", http.MethodPut, emptyBase + "/chart", "", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad at", http.MethodGet, "/v1/positions?at=yesterday", "", http.StatusBadRequest, errors.ErrCodeInvalidDate},
		{"at out of range", http.MethodGet, "/v1/positions?at=2500-01-01", "", http.StatusBadRequest, errors.ErrCodeInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := tt.path
			if strings.HasPrefix(url, "/") {
				url = srv.URL + url
			}
			resp, body := do(t, tt.method, url, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.status, body)
			}
			if got := decode[ErrorResponse](t, body); got.Error.Code != tt.code {
				t.Errorf("code = %s, want %s", got.Error.Code, tt.code)
			}
		})
	}

	t.Run("bad month", func(t *testing.T) {
		_, body := do(t, http.MethodPost, srv.URL+"/v1/sessions", delhiBody)
		id := decode[SessionResponse](t, body).ID
		resp, body := do(t, http.MethodGet, srv.URL+"/v1/sessions/"+id+"/calendar?year=2025&month=13", "")
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d (%s)", resp.StatusCode, body)
		}
	})
}

func TestPositions(t *testing.T) {
	srv := newTestServer(t, Options{})
	resp, body := do(t, http.MethodGet, srv.URL+"/v1/positions?at=2000-01-01T12:00:00Z", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("positions = %d %s", resp.StatusCode, body)
	}
	got := decode[struct {
		Positions []json.RawMessage `json:"positions"`
	}](t, body)
	if len(got.Positions) != 9 {
		t.Errorf("got %d positions", len(got.Positions))
	}
}

func TestMetrics(t *testing.T) {
	prom := observability.NewPrometheus()
	observability.SetHTTPHooks(prom)
	t.Cleanup(observability.Reset)

	srv := newTestServer(t, Options{Metrics: prom.Handler()})
	do(t, http.MethodGet, srv.URL+"/v1/sessions/abc", "")

	resp, body := do(t, http.MethodGet, srv.URL+"/metrics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics = %d", resp.StatusCode)
	}
	want := `jyotish_http_requests_total{code="404",method="GET",route="/v1/sessions/{id}`
	if !bytes.Contains(body, []byte(want)) {
		t.Errorf("metrics missing %s", want)
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidBody, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeSessionExpired, "x"), http.StatusGone},
		{errors.New(errors.ErrCodeMissingPosition, "x"), http.StatusUnprocessableEntity},
		{errors.New(errors.ErrCodeEphemeris, "x"), http.StatusBadGateway},
		{errors.New(errors.ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusCode(tt.err); got != tt.want {
			t.Errorf("StatusCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
