package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/openspot/parking/backend/internal/domain"
)

// createReservationRequest is the POST /reservations body.
type createReservationRequest struct {
	ResourceID  string    `json:"resourceId" validate:"required"`
	RequesterID string    `json:"userId" validate:"required"`
	StartTime   time.Time `json:"startTime" validate:"required"`
	EndTime     time.Time `json:"endTime" validate:"required"`
}

type rejectReservationRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type cancelReservationRequest struct {
	RequesterID string `json:"userId" validate:"required"`
}

// createReservationResponse mirrors the booking outcome: created carries the
// reservation, a conflict carries the proposed alternative instead.
type createReservationResponse struct {
	Success     bool                `json:"success"`
	Reservation *domain.Reservation `json:"reservation,omitempty"`
	Alternative *domain.Window      `json:"alternative,omitempty"`
	Message     string              `json:"message,omitempty"`
}

type reservationResponse struct {
	Reservation domain.Reservation `json:"reservation"`
}

type reservationListResponse struct {
	Reservations []domain.Reservation `json:"reservations"`
}

type pagedReservationsResponse struct {
	Reservations []domain.Reservation `json:"reservations"`
	Pagination   paginationResponse   `json:"pagination"`
}

type paginationResponse struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// createReservation handles POST /reservations.
// A free window yields 201 with the pending reservation; a taken window
// yields 409 with the nearest free alternative of the same duration.
func (s *Server) createReservation(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.bookings.CreateReservation(r.Context(), req.ResourceID, req.RequesterID, domain.Window{
		Start: req.StartTime,
		End:   req.EndTime,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if !result.Success() {
		s.writeJSON(w, http.StatusConflict, createReservationResponse{
			Success:     false,
			Alternative: result.Alternative,
			Message:     "requested window is not available",
		})
		return
	}

	s.writeJSON(w, http.StatusCreated, createReservationResponse{
		Success:     true,
		Reservation: result.Reservation,
	})
}

// getReservation handles GET /reservations/{id}.
func (s *Server) getReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	res, err := s.bookings.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, reservationResponse{Reservation: res})
}

// approveReservation handles PUT /reservations/{id}/approve.
func (s *Server) approveReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	res, err := s.bookings.Approve(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, reservationResponse{Reservation: res})
}

// rejectReservation handles PUT /reservations/{id}/reject.
func (s *Server) rejectReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req rejectReservationRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	res, err := s.bookings.Reject(r.Context(), id, req.Reason)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, reservationResponse{Reservation: res})
}

// cancelReservation handles PUT /reservations/{id}/cancel.
// The body names the caller; the service decides whether that identity may
// cancel this reservation.
func (s *Server) cancelReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req cancelReservationRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	res, err := s.bookings.Cancel(r.Context(), id, req.RequesterID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, reservationResponse{Reservation: res})
}

// listUserReservations handles GET /users/{userId}/reservations.
func (s *Server) listUserReservations(w http.ResponseWriter, r *http.Request) {
	reservations, err := s.bookings.ListForRequester(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, reservationListResponse{Reservations: reservations})
}

// listPendingReservations handles GET /admin/reservations/pending.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20,
// max=100).
func (s *Server) listPendingReservations(w http.ResponseWriter, r *http.Request) {
	params := domain.NewPaginationParams(
		queryInt(r, "page"),
		queryInt(r, "limit"),
	)

	reservations, total, err := s.bookings.ListPending(r.Context(), params)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, pagedReservationsResponse{
		Reservations: reservations,
		Pagination: paginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// queryInt parses an optional integer query parameter. Malformed values are
// treated as absent, letting the pagination defaults apply.
func queryInt(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}
