package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"budgetwatch/internal/core"
	"budgetwatch/internal/log"
)

const (
	defaultHistoryDays = 30
	maxHistoryDays     = 365
	defaultAlertLimit  = 50
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// daysParam parses ?days=N with a default and an upper bound.
func daysParam(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return fallback, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 {
		return 0, fmt.Errorf("days must be a positive integer")
	}
	if days > maxHistoryDays {
		days = maxHistoryDays
	}
	return days, nil
}

// handleHealth performs a basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, statErr := os.Stat(s.latestPath)

	health := map[string]any{
		"status":      "ok",
		"timestamp":   s.now().Format(time.RFC3339),
		"uptime":      time.Since(s.startedAt).String(),
		"data_loaded": statErr == nil,
	}
	writeJSON(w, http.StatusOK, health)
}

// handleCurrent serves the latest export verbatim. The automation run is
// the writer; the API never recomputes metrics itself.
func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	if data, ok := s.currentCache.Get("current"); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
		return
	}

	data, err := os.ReadFile(s.latestPath)
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "no budget data yet, run the automation first")
			return
		}
		s.logger.ErrorContext(r.Context(), "Cannot read latest export",
			log.FieldPath, s.latestPath,
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "cannot read budget data")
		return
	}
	if !json.Valid(data) {
		writeError(w, http.StatusInternalServerError, "budget data is corrupt")
		return
	}

	s.currentCache.Set("current", data)
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

type snapshotView struct {
	Date       string  `json:"date"`
	Spent      float64 `json:"spent"`
	Target     float64 `json:"target"`
	Percentage float64 `json:"percentage"`
}

// handleHistory serves daily snapshots grouped by category.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	days, err := daysParam(r, defaultHistoryDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	history := s.historySince(r, days)

	out := make(map[string][]snapshotView, len(history))
	for category, snapshots := range history {
		views := make([]snapshotView, len(snapshots))
		for i, snap := range snapshots {
			views[i] = snapshotView{
				Date:       core.DayKey(snap.Date),
				Spent:      snap.Spent.Float(),
				Target:     snap.Target.Float(),
				Percentage: snap.Percentage,
			}
		}
		out[category] = views
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"days":    days,
		"history": out,
	})
}

type alertApiView struct {
	Date      string `json:"date"`
	Category  string `json:"category"`
	AlertType string `json:"alert_type"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
}

// handleAlerts serves recent alerts, most recent first.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	days, err := daysParam(r, 7)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := defaultAlertLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
	}

	since := s.now().AddDate(0, 0, -days)
	alerts := s.store.AlertsSince(r.Context(), since, limit)

	views := make([]alertApiView, len(alerts))
	for i, a := range alerts {
		views[i] = alertApiView{
			Date:      core.DayKey(a.Date),
			Category:  a.Category,
			AlertType: string(a.Kind),
			Severity:  string(a.Severity),
			Message:   a.Message,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"days":   days,
		"alerts": views,
	})
}

type trendApiView struct {
	Slope          float64 `json:"slope"`
	Direction      string  `json:"direction"`
	ProjectedTotal float64 `json:"projected_total"`
	AvgDaily       float64 `json:"avg_daily"`
}

// handleTrends recomputes trends from stored history on demand, so the
// endpoint stays useful between automation runs.
func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	history := s.historySince(r, defaultHistoryDays)
	trends := s.trends.Analyze(history, s.now())

	out := make(map[string]trendApiView, len(trends))
	for category, t := range trends {
		out[category] = trendApiView{
			Slope:          t.Slope,
			Direction:      string(t.Direction),
			ProjectedTotal: t.Projected.Float(),
			AvgDaily:       t.AvgDaily7.Float(),
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"trends": out})
}

func (s *Server) historySince(r *http.Request, days int) map[string][]core.DailySnapshot {
	key := strconv.Itoa(days)
	if cached, ok := s.historyCache.Get(key); ok {
		return cached
	}

	since := s.now().AddDate(0, 0, -days)
	history := s.store.SpendingSince(r.Context(), since)
	s.historyCache.Set(key, history)
	return history
}
