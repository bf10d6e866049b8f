// Package handler implements the HTTP handlers for the parking reservation
// API. All handlers are methods on Server and are split into domain-specific
// files (reservation.go, availability.go, health.go) but share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/openspot/parking/backend/internal/cache"
	"github.com/openspot/parking/backend/internal/domain"
	"github.com/openspot/parking/backend/internal/service"
	"github.com/openspot/parking/backend/spec"
)

// BookingServicer defines the business operations the reservation handlers
// depend on. Defining the interface here (in the consumer package) follows
// the Go convention: "accept interfaces, return concrete types". It lets
// handler tests inject a mock without touching the database or service layer.
type BookingServicer interface {
	CreateReservation(ctx context.Context, resourceID, requesterID string, window domain.Window) (service.CreateResult, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	Approve(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	Reject(ctx context.Context, id uuid.UUID, reason string) (domain.Reservation, error)
	Cancel(ctx context.Context, id uuid.UUID, callerID string) (domain.Reservation, error)
	ListPending(ctx context.Context, p domain.PaginationParams) ([]domain.Reservation, int, error)
	ListForRequester(ctx context.Context, requesterID string) ([]domain.Reservation, error)
}

// AvailabilityServicer defines the calendar operation the availability
// handler depends on.
type AvailabilityServicer interface {
	AvailabilityForDay(ctx context.Context, resourceID string, day time.Time) ([]domain.Slot, error)
}

// CacheStatser exposes cache counters for the admin surface.
type CacheStatser interface {
	Stats() cache.Stats
}

// Server holds the handler dependencies for all API endpoints.
type Server struct {
	bookings     BookingServicer
	availability AvailabilityServicer
	cacheStats   CacheStatser
	validate     *validator.Validate
	log          *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// cacheStats may be nil when no cache is wired; the stats endpoint then
// reports zeroes.
func NewServer(bookings BookingServicer, availability AvailabilityServicer, cacheStats CacheStatser, log *slog.Logger) *Server {
	return &Server{
		bookings:     bookings,
		availability: availability,
		cacheStats:   cacheStats,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		log:          log,
	}
}

// Routes assembles the API surface on a fresh chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.getHealth)
	r.Get("/openapi.yaml", s.getOpenAPI)

	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", s.createReservation)
		r.Get("/{id}", s.getReservation)
		r.Put("/{id}/approve", s.approveReservation)
		r.Put("/{id}/reject", s.rejectReservation)
		r.Put("/{id}/cancel", s.cancelReservation)
	})

	r.Get("/users/{userId}/reservations", s.listUserReservations)
	r.Get("/resources/{resourceId}/availability", s.getAvailability)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/reservations/pending", s.listPendingReservations)
		r.Get("/cache/stats", s.getCacheStats)
	})

	return r
}

// getOpenAPI serves the embedded API specification.
func (s *Server) getOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(spec.OpenAPI)
}
