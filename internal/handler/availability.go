package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/openspot/parking/backend/internal/cache"
	"github.com/openspot/parking/backend/internal/domain"
)

type availabilityResponse struct {
	ResourceID string        `json:"resourceId"`
	Date       string        `json:"date"`
	Slots      []domain.Slot `json:"slots"`
}

type cacheStatsResponse struct {
	Stats cache.Stats `json:"stats"`
}

// getAvailability handles GET /resources/{resourceId}/availability?date=.
// The date is a plain calendar day (2006-01-02) interpreted as UTC.
func (s *Server) getAvailability(w http.ResponseWriter, r *http.Request) {
	resourceID := chi.URLParam(r, "resourceId")

	raw := r.URL.Query().Get("date")
	if raw == "" {
		s.writeError(w, http.StatusBadRequest, "bad_request", "date query parameter is required")
		return
	}
	day, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", "date must be formatted as YYYY-MM-DD")
		return
	}

	slots, err := s.availability.AvailabilityForDay(r.Context(), resourceID, day)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, availabilityResponse{
		ResourceID: resourceID,
		Date:       raw,
		Slots:      slots,
	})
}

// getCacheStats handles GET /admin/cache/stats.
func (s *Server) getCacheStats(w http.ResponseWriter, r *http.Request) {
	var stats cache.Stats
	if s.cacheStats != nil {
		stats = s.cacheStats.Stats()
	}
	s.writeJSON(w, http.StatusOK, cacheStatsResponse{Stats: stats})
}
