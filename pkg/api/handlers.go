package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/jyotish/pkg/core/chart"
	"github.com/matzehuels/jyotish/pkg/core/ephemeris"
	"github.com/matzehuels/jyotish/pkg/core/timing"
	"github.com/matzehuels/jyotish/pkg/errors"
	"github.com/matzehuels/jyotish/pkg/pipeline"
	"github.com/matzehuels/jyotish/pkg/session"
)

// maxBodyBytes caps request bodies; chart requests are tiny.
const maxBodyBytes = 1 << 16

// ChartRequest is the body of chart-setting requests.
type ChartRequest struct {
	Birth     time.Time `json:"birth"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

// SessionResponse describes a session and its chart.
type SessionResponse struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
	Chart     *chart.Natal `json:"chart,omitempty"`
	ChartHash string       `json:"chart_hash,omitempty"`
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	at, err := parseAt(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	if err := errors.ValidateDate(at); err != nil {
		s.writeError(w, r, err)
		return
	}
	positions, err := ephemeris.Positions(s.runner.Provider, at)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"at": at, "positions": positions})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	req, ok, err := decodeChartRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := session.New(s.ttl)
	if ok {
		natal, err := s.buildChart(r, req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		sess.SetChart(natal)
	}
	if err := s.store.Set(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Debug("created session", "id", sess.ID, "chart", ok)
	s.writeSession(w, r, http.StatusCreated, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePutChart(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req, ok, err := decodeChartRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "request body is required"))
		return
	}
	natal, err := s.buildChart(r, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess.SetChart(natal)
	sess.Touch(s.ttl)
	if err := s.store.Set(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, sess)
}

func (s *Server) handleDasha(w http.ResponseWriter, r *http.Request) {
	_, natal, opts, err := s.reportInputs(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rep, err := s.runner.Dasha(r.Context(), natal, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleTransits(w http.ResponseWriter, r *http.Request) {
	sess, natal, opts, err := s.reportInputs(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if v := r.URL.Query().Get("timing"); v != "" {
		if opts.Timing, err = strconv.ParseBool(v); err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid timing flag %q", v))
			return
		}
	}

	var engine *timing.Engine
	if opts.Timing {
		if engine, err = sess.Engine(s.runner.NewEngine); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	rep, err := s.runner.Transits(r.Context(), natal, opts, engine)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	_, natal, opts, err := s.reportInputs(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	if opts.Year, err = queryInt(q.Get("year")); err != nil {
		s.writeError(w, r, err)
		return
	}
	if opts.Month, err = queryInt(q.Get("month")); err != nil {
		s.writeError(w, r, err)
		return
	}
	rep, err := s.runner.Calendar(r.Context(), natal, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) session(r *http.Request) (*session.Session, error) {
	return s.store.Get(r.Context(), chi.URLParam(r, "id"))
}

// reportInputs resolves the session, its chart and the reference instant.
func (s *Server) reportInputs(r *http.Request) (*session.Session, *chart.Natal, pipeline.Options, error) {
	var opts pipeline.Options
	sess, err := s.session(r)
	if err != nil {
		return nil, nil, opts, err
	}
	natal, err := sess.Chart()
	if err != nil {
		return nil, nil, opts, err
	}
	at, err := parseAt(r)
	if err != nil {
		return nil, nil, opts, err
	}
	opts = pipeline.Options{
		Birth:     natal.Birth,
		Latitude:  natal.Latitude,
		Longitude: natal.Longitude,
		At:        at,
		Refresh:   r.URL.Query().Has("refresh"),
		Logger:    s.logger,
	}
	return sess, natal, opts, nil
}

func (s *Server) buildChart(r *http.Request, req ChartRequest) (*chart.Natal, error) {
	return s.runner.Chart(r.Context(), pipeline.Options{
		Birth:     req.Birth,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Logger:    s.logger,
	})
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, status int, sess *session.Session) {
	resp := SessionResponse{ID: sess.ID, CreatedAt: sess.CreatedAt, ExpiresAt: sess.Expires()}
	if natal, err := sess.Chart(); err == nil {
		hash, err := pipeline.ChartHash(natal)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Chart, resp.ChartHash = natal, hash
	}
	writeJSON(w, status, resp)
}

// decodeChartRequest reads an optional JSON body. ok is false when the
// body is empty.
func decodeChartRequest(r *http.Request) (ChartRequest, bool, error) {
	var req ChartRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if err == io.EOF {
			return req, false, nil
		}
		return req, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return req, true, nil
}

// parseAt reads the "at" query parameter as RFC 3339 or a bare date.
// A missing parameter yields the zero time.
func parseAt(r *http.Request) (time.Time, error) {
	v := r.URL.Query().Get("at")
	if v == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New(errors.ErrCodeInvalidDate, "invalid time %q, want RFC 3339 or YYYY-MM-DD", v)
}

func queryInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidDate, "invalid number %q", v)
	}
	return n, nil
}
