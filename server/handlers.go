package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/tfkr-ae/bridgelog/domain"
	"github.com/tfkr-ae/bridgelog/sink"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type activityResponse struct {
	sink.Payload
	ReceivedAt time.Time `json:"received_at"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	var payload sink.Payload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "decoding body: "+err.Error())
		return
	}

	// Browsers post without these fields; the headers carry the same information.
	entry, err := payload.Entry(domain.EntryContext{
		URL:       r.Referer(),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	activity := &domain.Activity{Entry: *entry, ReceivedAt: s.now().UTC()}
	if err := s.store.InsertActivity(activity); err != nil {
		s.log.Error("storing activity", zap.String("id", entry.ID.String()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "storing activity")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": entry.ID.String()})
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ActivityFilter{
		UserID:    q.Get("user_id"),
		Action:    q.Get("action"),
		SessionID: q.Get("session_id"),
	}
	if raw := q.Get("level"); raw != "" {
		level, err := domain.ParseLevel(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Level = level
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit should be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	activities, err := s.store.GetActivities(filter)
	if err != nil {
		s.log.Error("listing activities", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "listing activities")
		return
	}

	out := make([]activityResponse, len(activities))
	for i, a := range activities {
		out[i] = activityResponse{Payload: sink.NewPayload(&a.Entry), ReceivedAt: a.ReceivedAt}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	total, err := s.store.CountActivities()
	if err != nil {
		s.log.Error("counting activities", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "counting activities")
		return
	}
	byAction, err := s.store.CountActivitiesByAction()
	if err != nil {
		s.log.Error("counting activities by action", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "counting activities")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": total, "by_action": byAction})
}
