package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openspot/parking/backend/internal/domain"
	"github.com/openspot/parking/backend/internal/handler"
	"github.com/openspot/parking/backend/internal/service"
)

// ---- mock servicers --------------------------------------------------------

// mockBookingServicer is a test double for handler.BookingServicer.
// Set only the method fields your test needs.
type mockBookingServicer struct {
	createReservation func(ctx context.Context, resourceID, requesterID string, window domain.Window) (service.CreateResult, error)
	get               func(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	approve           func(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	reject            func(ctx context.Context, id uuid.UUID, reason string) (domain.Reservation, error)
	cancel            func(ctx context.Context, id uuid.UUID, callerID string) (domain.Reservation, error)
	listPending       func(ctx context.Context, p domain.PaginationParams) ([]domain.Reservation, int, error)
	listForRequester  func(ctx context.Context, requesterID string) ([]domain.Reservation, error)
}

func (m *mockBookingServicer) CreateReservation(ctx context.Context, resourceID, requesterID string, window domain.Window) (service.CreateResult, error) {
	return m.createReservation(ctx, resourceID, requesterID, window)
}
func (m *mockBookingServicer) Get(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	return m.get(ctx, id)
}
func (m *mockBookingServicer) Approve(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	return m.approve(ctx, id)
}
func (m *mockBookingServicer) Reject(ctx context.Context, id uuid.UUID, reason string) (domain.Reservation, error) {
	return m.reject(ctx, id, reason)
}
func (m *mockBookingServicer) Cancel(ctx context.Context, id uuid.UUID, callerID string) (domain.Reservation, error) {
	return m.cancel(ctx, id, callerID)
}
func (m *mockBookingServicer) ListPending(ctx context.Context, p domain.PaginationParams) ([]domain.Reservation, int, error) {
	return m.listPending(ctx, p)
}
func (m *mockBookingServicer) ListForRequester(ctx context.Context, requesterID string) ([]domain.Reservation, error) {
	return m.listForRequester(ctx, requesterID)
}

// compile-time check: mockBookingServicer must satisfy handler.BookingServicer.
var _ handler.BookingServicer = (*mockBookingServicer)(nil)

// mockAvailabilityServicer is a test double for handler.AvailabilityServicer.
type mockAvailabilityServicer struct {
	availabilityForDay func(ctx context.Context, resourceID string, day time.Time) ([]domain.Slot, error)
}

func (m *mockAvailabilityServicer) AvailabilityForDay(ctx context.Context, resourceID string, day time.Time) ([]domain.Slot, error) {
	return m.availabilityForDay(ctx, resourceID, day)
}

var _ handler.AvailabilityServicer = (*mockAvailabilityServicer)(nil)

// ---- helpers ---------------------------------------------------------------

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// serve builds the router around the mocks and plays one request through it.
func serve(t *testing.T, bookings handler.BookingServicer, availability handler.AvailabilityServicer, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	srv := handler.NewServer(bookings, availability, nil, discardLogger())
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func sampleReservation() domain.Reservation {
	return domain.Reservation{
		ID:          uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		ResourceID:  "spot-osm-1001",
		RequesterID: "user-42",
		Window: domain.Window{
			Start: time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 7, 1, 11, 0, 0, 0, time.UTC),
		},
		Status:    domain.StatusPending,
		CreatedAt: time.Date(2025, 6, 30, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 6, 30, 9, 0, 0, 0, time.UTC),
	}
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return strings.NewReader(string(raw))
}

// ---- POST /reservations ----------------------------------------------------

func TestCreateReservation_Created(t *testing.T) {
	res := sampleReservation()
	bookings := &mockBookingServicer{
		createReservation: func(_ context.Context, resourceID, requesterID string, window domain.Window) (service.CreateResult, error) {
			assert.Equal(t, res.ResourceID, resourceID)
			assert.Equal(t, res.RequesterID, requesterID)
			assert.Equal(t, res.Window, window)
			return service.CreateResult{Reservation: &res}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/reservations", jsonBody(t, map[string]any{
		"resourceId": res.ResourceID,
		"userId":     res.RequesterID,
		"startTime":  res.Window.Start,
		"endTime":    res.Window.End,
	}))
	rec := serve(t, bookings, nil, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Success     bool                `json:"success"`
		Reservation *domain.Reservation `json:"reservation"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Success)
	require.NotNil(t, body.Reservation)
	assert.Equal(t, res.ID, body.Reservation.ID)
	assert.Equal(t, domain.StatusPending, body.Reservation.Status)
}

func TestCreateReservation_ConflictReturnsAlternative(t *testing.T) {
	alt := domain.Window{
		Start: time.Date(2025, 7, 1, 11, 15, 0, 0, time.UTC),
		End:   time.Date(2025, 7, 1, 12, 15, 0, 0, time.UTC),
	}
	bookings := &mockBookingServicer{
		createReservation: func(context.Context, string, string, domain.Window) (service.CreateResult, error) {
			return service.CreateResult{Alternative: &alt}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/reservations", jsonBody(t, map[string]any{
		"resourceId": "spot-osm-1001",
		"userId":     "user-42",
		"startTime":  "2025-07-01T10:30:00Z",
		"endTime":    "2025-07-01T11:30:00Z",
	}))
	rec := serve(t, bookings, nil, req)

	require.Equal(t, http.StatusConflict, rec.Code)

	var body struct {
		Success     bool           `json:"success"`
		Alternative *domain.Window `json:"alternative"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Success)
	require.NotNil(t, body.Alternative)
	assert.Equal(t, alt, *body.Alternative)
}

func TestCreateReservation_BadRequests(t *testing.T) {
	bookings := &mockBookingServicer{
		createReservation: func(context.Context, string, string, domain.Window) (service.CreateResult, error) {
			t.Fatal("service must not be reached on a bad request")
			return service.CreateResult{}, nil
		},
	}

	cases := map[string]string{
		"not json":        `{not json`,
		"missing fields":  `{"resourceId":"spot-osm-1001"}`,
		"missing user id": `{"resourceId":"spot-osm-1001","startTime":"2025-07-01T10:00:00Z","endTime":"2025-07-01T11:00:00Z"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/reservations", strings.NewReader(payload))
			rec := serve(t, bookings, nil, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateReservation_InvalidWindow(t *testing.T) {
	bookings := &mockBookingServicer{
		createReservation: func(context.Context, string, string, domain.Window) (service.CreateResult, error) {
			return service.CreateResult{}, fmt.Errorf("%w: end must be after start", domain.ErrInvalidWindow)
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/reservations", jsonBody(t, map[string]any{
		"resourceId": "spot-osm-1001",
		"userId":     "user-42",
		"startTime":  "2025-07-01T11:00:00Z",
		"endTime":    "2025-07-01T10:00:00Z",
	}))
	rec := serve(t, bookings, nil, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_window")
}

// ---- GET /reservations/{id} ------------------------------------------------

func TestGetReservation_OK(t *testing.T) {
	res := sampleReservation()
	bookings := &mockBookingServicer{
		get: func(_ context.Context, id uuid.UUID) (domain.Reservation, error) {
			assert.Equal(t, res.ID, id)
			return res, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/reservations/"+res.ID.String(), nil)
	rec := serve(t, bookings, nil, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Reservation domain.Reservation `json:"reservation"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, res.ID, body.Reservation.ID)
}

func TestGetReservation_NotFound(t *testing.T) {
	bookings := &mockBookingServicer{
		get: func(context.Context, uuid.UUID) (domain.Reservation, error) {
			return domain.Reservation{}, domain.ErrNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/reservations/"+uuid.NewString(), nil)
	rec := serve(t, bookings, nil, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestGetReservation_MalformedID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/reservations/not-a-uuid", nil)
	rec := serve(t, &mockBookingServicer{}, nil, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- lifecycle endpoints ---------------------------------------------------

func TestApproveReservation_OK(t *testing.T) {
	res := sampleReservation()
	res.Status = domain.StatusActive
	bookings := &mockBookingServicer{
		approve: func(_ context.Context, id uuid.UUID) (domain.Reservation, error) {
			assert.Equal(t, res.ID, id)
			return res, nil
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/reservations/"+res.ID.String()+"/approve", nil)
	rec := serve(t, bookings, nil, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"active"`)
}

func TestApproveReservation_Conflict(t *testing.T) {
	bookings := &mockBookingServicer{
		approve: func(context.Context, uuid.UUID) (domain.Reservation, error) {
			return domain.Reservation{}, fmt.Errorf("%w: window overlaps an approved reservation", domain.ErrConflict)
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/reservations/"+uuid.NewString()+"/approve", nil)
	rec := serve(t, bookings, nil, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "conflict")
}

func TestRejectReservation_OK(t *testing.T) {
	res := sampleReservation()
	res.Status = domain.StatusRejected
	res.RejectionReason = "spot closed for maintenance"
	bookings := &mockBookingServicer{
		reject: func(_ context.Context, id uuid.UUID, reason string) (domain.Reservation, error) {
			assert.Equal(t, res.ID, id)
			assert.Equal(t, res.RejectionReason, reason)
			return res, nil
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/reservations/"+res.ID.String()+"/reject",
		jsonBody(t, map[string]string{"reason": res.RejectionReason}))
	rec := serve(t, bookings, nil, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), res.RejectionReason)
}

func TestRejectReservation_MissingReason(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/reservations/"+uuid.NewString()+"/reject",
		strings.NewReader(`{}`))
	rec := serve(t, &mockBookingServicer{}, nil, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelReservation_OK(t *testing.T) {
	res := sampleReservation()
	res.Status = domain.StatusCancelled
	bookings := &mockBookingServicer{
		cancel: func(_ context.Context, id uuid.UUID, callerID string) (domain.Reservation, error) {
			assert.Equal(t, res.ID, id)
			assert.Equal(t, "user-42", callerID)
			return res, nil
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/reservations/"+res.ID.String()+"/cancel",
		jsonBody(t, map[string]string{"userId": "user-42"}))
	rec := serve(t, bookings, nil, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"cancelled"`)
}

func TestCancelReservation_Forbidden(t *testing.T) {
	bookings := &mockBookingServicer{
		cancel: func(context.Context, uuid.UUID, string) (domain.Reservation, error) {
			return domain.Reservation{}, fmt.Errorf("%w: only the requester or an admin may cancel", domain.ErrUnauthorized)
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/reservations/"+uuid.NewString()+"/cancel",
		jsonBody(t, map[string]string{"userId": "user-99"}))
	rec := serve(t, bookings, nil, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
}

func TestCancelReservation_InvalidTransition(t *testing.T) {
	bookings := &mockBookingServicer{
		cancel: func(context.Context, uuid.UUID, string) (domain.Reservation, error) {
			return domain.Reservation{}, fmt.Errorf("%w: cannot cancel a completed reservation", domain.ErrInvalidTransition)
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/reservations/"+uuid.NewString()+"/cancel",
		jsonBody(t, map[string]string{"userId": "user-42"}))
	rec := serve(t, bookings, nil, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_transition")
}

// ---- listings --------------------------------------------------------------

func TestListUserReservations_OK(t *testing.T) {
	res := sampleReservation()
	bookings := &mockBookingServicer{
		listForRequester: func(_ context.Context, requesterID string) ([]domain.Reservation, error) {
			assert.Equal(t, "user-42", requesterID)
			return []domain.Reservation{res}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/users/user-42/reservations", nil)
	rec := serve(t, bookings, nil, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Reservations []domain.Reservation `json:"reservations"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Reservations, 1)
	assert.Equal(t, res.ID, body.Reservations[0].ID)
}

func TestListUserReservations_EmptyIsArray(t *testing.T) {
	bookings := &mockBookingServicer{
		listForRequester: func(context.Context, string) ([]domain.Reservation, error) {
			return []domain.Reservation{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/users/user-42/reservations", nil)
	rec := serve(t, bookings, nil, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reservations":[]`)
}

func TestListPendingReservations_Pagination(t *testing.T) {
	res := sampleReservation()
	bookings := &mockBookingServicer{
		listPending: func(_ context.Context, p domain.PaginationParams) ([]domain.Reservation, int, error) {
			assert.Equal(t, 2, p.Page)
			assert.Equal(t, 10, p.Limit)
			return []domain.Reservation{res}, 11, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/reservations/pending?page=2&limit=10", nil)
	rec := serve(t, bookings, nil, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Reservations []domain.Reservation `json:"reservations"`
		Pagination   struct {
			Page  int `json:"page"`
			Limit int `json:"limit"`
			Total int `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 2, body.Pagination.Page)
	assert.Equal(t, 10, body.Pagination.Limit)
	assert.Equal(t, 11, body.Pagination.Total)
}

func TestListPendingReservations_DefaultsOnGarbageParams(t *testing.T) {
	bookings := &mockBookingServicer{
		listPending: func(_ context.Context, p domain.PaginationParams) ([]domain.Reservation, int, error) {
			assert.Equal(t, 1, p.Page)
			assert.Equal(t, 20, p.Limit)
			return []domain.Reservation{}, 0, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/reservations/pending?page=abc&limit=-3", nil)
	rec := serve(t, bookings, nil, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
