package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"git.home.luguber.info/inful/rosterd/internal/logfields"
	"git.home.luguber.info/inful/rosterd/internal/roster"
)

// statusRequest is the transport payload for a status change. Action
// carries the chat button token, validated here at the boundary.
type statusRequest struct {
	ParticipantID int64  `json:"participant_id"`
	Name          string `json:"name,omitempty"`
	Action        string `json:"action"`
}

type interactionRequest struct {
	ParticipantID int64  `json:"participant_id"`
	Name          string `json:"name,omitempty"`
}

type statusResponse struct {
	Text         string               `json:"text"`
	Notification *roster.Notification `json:"notification,omitempty"`
}

type statsResponse struct {
	Playing    int    `json:"playing"`
	NotPlaying int    `json:"not_playing"`
	Maybe      int    `json:"maybe"`
	Ignored    int    `json:"ignored"`
	Text       string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(s.startTime).Seconds()),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	report, text := s.engine.StatsWithText()
	writeJSON(w, http.StatusOK, statsResponse{
		Playing:    report.Playing,
		NotPlaying: report.NotPlaying,
		Maybe:      report.Maybe,
		Ignored:    report.Ignored,
		Text:       text,
	})
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.ParticipantID == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "participant_id is required"})
		return
	}

	status, err := roster.ParseStatusToken(req.Action)
	if err != nil {
		// A bad token is a transport bug, not a roster error.
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	p := roster.Participant{ID: roster.ParticipantID(req.ParticipantID), Name: req.Name}
	text, notification, err := s.engine.SetStatus(r.Context(), p, status)
	if err != nil {
		slog.Error("status change not saved", logfields.Participant(req.ParticipantID), logfields.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "action may not have been saved, please retry"})
		return
	}

	if notification != nil {
		s.deliver(r, *notification)
	}

	writeJSON(w, http.StatusOK, statusResponse{Text: text, Notification: notification})
}

func (s *Server) handleInteraction(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.ParticipantID == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "participant_id is required"})
		return
	}

	p := roster.Participant{ID: roster.ParticipantID(req.ParticipantID), Name: req.Name}
	if err := s.engine.RecordInteraction(r.Context(), p); err != nil {
		slog.Error("interaction not saved", logfields.Participant(req.ParticipantID), logfields.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "action may not have been saved, please retry"})
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Text: s.engine.Greeting()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	text, err := s.engine.Reset(r.Context())
	if err != nil {
		slog.Error("reset not saved", logfields.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "action may not have been saved, please retry"})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Text: text})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("participant")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "participant query parameter is required"})
		return
	}
	id, err := strconv.ParseInt(q, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "participant must be an integer"})
		return
	}

	entries, err := s.journal.GetByParticipant(r.Context(), roster.ParticipantID(id))
	if err != nil {
		slog.Error("history query failed", logfields.Participant(id), logfields.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "history query failed"})
		return
	}

	type historyEntry struct {
		Type      string    `json:"type"`
		Status    string    `json:"status,omitempty"`
		Timestamp time.Time `json:"timestamp"`
	}
	out := make([]historyEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntry{Type: string(e.Type), Status: string(e.Status), Timestamp: e.Timestamp})
	}
	writeJSON(w, http.StatusOK, out)
}

// deliver hands a milestone broadcast to the notifier. Delivery failure
// is logged and counted but never fails the originating request: the
// status change itself is already durable.
func (s *Server) deliver(r *http.Request, n roster.Notification) {
	err := s.notifier.Broadcast(r.Context(), n)
	s.recorder.IncBroadcastResult(err == nil)
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("failed to deliver broadcast", logfields.Threshold(n.Threshold), logfields.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", logfields.Error(err))
	}
}
