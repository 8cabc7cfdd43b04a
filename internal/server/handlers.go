package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vrclog/presence-go/pkg/presence"
)

// timeJSON is the timestamp layout used in JSON responses and result
// tables.
const timeJSON = "2006-01-02T15:04:05"

// formLayout is what the HTML datetime-local inputs submit.
const formLayout = "2006-01-02T15:04"

type analyzeRequest struct {
	LogContent string `json:"log_content"`
	StartTime  string `json:"start_time,omitempty"`
	EndTime    string `json:"end_time,omitempty"`
}

type userResponse struct {
	Username              string  `json:"username"`
	UserID                string  `json:"user_id"`
	TotalJoins            int     `json:"total_joins"`
	TotalLeaves           int     `json:"total_leaves"`
	OnlineDurationMinutes float64 `json:"online_duration_minutes"`
	FirstJoin             string  `json:"first_join,omitempty"`
	LastLeave             string  `json:"last_leave,omitempty"`
	PresentAtEnd          bool    `json:"present_at_end"`
}

type analyzeResponse struct {
	AnalysisID       string         `json:"analysis_id"`
	Users            []userResponse `json:"users"`
	StartTime        string         `json:"start_time,omitempty"`
	EndTime          string         `json:"end_time,omitempty"`
	TotalUsers       int            `json:"total_users"`
	TotalJoinEvents  int            `json:"total_join_events"`
	TotalLeaveEvents int            `json:"total_leave_events"`
}

// GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "index.html", nil); err != nil {
		s.log.Error("render index", "error", err)
	}
}

// POST /api/analyze
func (s *Server) handleAPIAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Limits.MaxUploadBytes)

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			analysesTotal.WithLabelValues("rejected").Inc()
			writeError(w, http.StatusRequestEntityTooLarge, "log too large")
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if strings.TrimSpace(req.LogContent) == "" {
		writeError(w, http.StatusBadRequest, "log_content is required")
		return
	}
	uploadBytes.Observe(float64(len(req.LogContent)))

	window, err := parseWindow(req.StartTime, req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, _, status, err := s.analyze(r.Context(), strings.NewReader(req.LogContent), window)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	w.Header().Set("X-Analysis-ID", resp.AnalysisID)
	writeJSON(w, http.StatusOK, resp)
}

// POST /upload
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Limits.MaxUploadBytes)

	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			analysesTotal.WithLabelValues("rejected").Inc()
			http.Error(w, "log too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("logfile")
	if err != nil {
		http.Error(w, "logfile is required", http.StatusBadRequest)
		return
	}
	defer file.Close()
	uploadBytes.Observe(float64(header.Size))

	window, err := parseWindow(r.FormValue("start_time"), r.FormValue("end_time"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, sessions, status, err := s.analyze(r.Context(), file, window)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("X-Analysis-ID", resp.AnalysisID)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "results.html", buildResultsView(resp, sessions)); err != nil {
		s.log.Error("render results", "error", err)
	}
}

// GET /healthz
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// GET /readyz
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.shuttingDown.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("shutting down"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// analyze runs the parse-and-report pipeline over one uploaded log. The
// returned status is only meaningful when err is non-nil.
func (s *Server) analyze(ctx context.Context, src io.Reader, window *presence.Window) (*analyzeResponse, []presence.Session, int, error) {
	events, err := presence.ParseReaderAll(ctx, src)
	if err != nil {
		analysesTotal.WithLabelValues("error").Inc()
		return nil, nil, http.StatusBadRequest, fmt.Errorf("parsing log: %w", err)
	}
	eventsParsed.Add(float64(len(events)))

	var opts []presence.AnalyzeOption
	if window != nil {
		opts = append(opts, presence.WithWindow(window.Start, window.End))
	}

	report, err := presence.Analyze(events, opts...)
	if err != nil {
		if errors.Is(err, presence.ErrInvalidWindow) {
			analysesTotal.WithLabelValues("invalid").Inc()
			return nil, nil, http.StatusBadRequest, err
		}
		analysesTotal.WithLabelValues("error").Inc()
		return nil, nil, http.StatusInternalServerError, err
	}
	analysesTotal.WithLabelValues("ok").Inc()

	resp := &analyzeResponse{
		AnalysisID:       uuid.New().String(),
		Users:            make([]userResponse, 0, len(report.Users)),
		TotalUsers:       report.TotalUsers(),
		TotalJoinEvents:  report.TotalJoinEvents,
		TotalLeaveEvents: report.TotalLeaveEvents,
	}
	if report.Window != nil {
		resp.StartTime = report.Window.Start.Format(timeJSON)
		resp.EndTime = report.Window.End.Format(timeJSON)
	}
	for _, u := range report.Users {
		ur := userResponse{
			Username:              u.Username,
			UserID:                u.UserID,
			TotalJoins:            u.JoinCount,
			TotalLeaves:           u.LeaveCount,
			OnlineDurationMinutes: roundMinutes(u.Online),
			PresentAtEnd:          u.PresentAtEnd,
		}
		if !u.FirstJoin.IsZero() {
			ur.FirstJoin = u.FirstJoin.Format(timeJSON)
		}
		if !u.LastLeave.IsZero() {
			ur.LastLeave = u.LastLeave.Format(timeJSON)
		}
		resp.Users = append(resp.Users, ur)
	}
	return resp, presence.Sessions(events), 0, nil
}

// parseWindow turns the optional start/end strings into a query window.
// Bounds must be given together.
func parseWindow(start, end string) (*presence.Window, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, errors.New("start_time and end_time must be given together")
	}

	from, err := parseWindowBound(start)
	if err != nil {
		return nil, err
	}
	to, err := parseWindowBound(end)
	if err != nil {
		return nil, err
	}
	return &presence.Window{Start: from, End: to}, nil
}

// parseWindowBound accepts the datetime-local form format and RFC 3339.
func parseWindowBound(s string) (time.Time, error) {
	for _, layout := range []string{formLayout, timeJSON, time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q (want %s)", s, formLayout)
}

// roundMinutes converts a duration to minutes with two decimals.
func roundMinutes(d time.Duration) float64 {
	return math.Round(d.Minutes()*100) / 100
}
