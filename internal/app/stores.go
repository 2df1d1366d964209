package app

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/neomorfeo/barberiq/internal/domain"
)

// Result TTLs by collection. Appointments change most often.
const (
	AppointmentsTTL = 2 * time.Minute
	CommentsTTL     = 3 * time.Minute
	BarbersTTL      = 5 * time.Minute
	ServicesTTL     = 5 * time.Minute
)

// --- Appointments ---

type AppointmentStore struct {
	*Store[domain.Appointment]
}

func NewAppointmentStore(base domain.Repository[domain.Appointment], results *ResultCache, logger *slog.Logger) *AppointmentStore {
	return &AppointmentStore{NewStore(domain.CollectionAppointments, base, results, AppointmentsTTL, logger)}
}

func (s *AppointmentStore) FetchAll(ctx context.Context) ([]domain.Appointment, error) {
	return s.Fetch(ctx, nil)
}

func (s *AppointmentStore) FetchByStatus(ctx context.Context, status domain.AppointmentStatus) ([]domain.Appointment, error) {
	return s.Fetch(ctx, domain.Filter{"status": string(status)})
}

func (s *AppointmentStore) FetchByBarberID(ctx context.Context, barberID string) ([]domain.Appointment, error) {
	return s.Fetch(ctx, domain.Filter{"barberId": barberID})
}

// FetchByDate loads the appointments on the calendar day of day.
func (s *AppointmentStore) FetchByDate(ctx context.Context, day time.Time) ([]domain.Appointment, error) {
	return s.Fetch(ctx, domain.Filter{"date": day.Format(time.DateOnly)})
}

// --- Barbers ---

type BarberStore struct {
	*Store[domain.Barber]
}

func NewBarberStore(base domain.Repository[domain.Barber], results *ResultCache, logger *slog.Logger) *BarberStore {
	return &BarberStore{NewStore(domain.CollectionBarbers, base, results, BarbersTTL, logger)}
}

func (s *BarberStore) FetchAll(ctx context.Context) ([]domain.Barber, error) {
	return s.Fetch(ctx, nil)
}

func (s *BarberStore) FetchActive(ctx context.Context) ([]domain.Barber, error) {
	return s.Fetch(ctx, domain.Filter{"active": strconv.FormatBool(true)})
}

// --- Comments ---

type CommentStore struct {
	*Store[domain.Comment]
}

func NewCommentStore(base domain.Repository[domain.Comment], results *ResultCache, logger *slog.Logger) *CommentStore {
	return &CommentStore{NewStore(domain.CollectionComments, base, results, CommentsTTL, logger)}
}

func (s *CommentStore) FetchAll(ctx context.Context) ([]domain.Comment, error) {
	return s.Fetch(ctx, nil)
}

func (s *CommentStore) FetchByStatus(ctx context.Context, status domain.CommentStatus) ([]domain.Comment, error) {
	return s.Fetch(ctx, domain.Filter{"status": string(status)})
}

func (s *CommentStore) FetchByBarberID(ctx context.Context, barberID string) ([]domain.Comment, error) {
	return s.Fetch(ctx, domain.Filter{"barberId": barberID})
}

// --- Services ---

type ServiceStore struct {
	*Store[domain.Service]
}

func NewServiceStore(base domain.Repository[domain.Service], results *ResultCache, logger *slog.Logger) *ServiceStore {
	return &ServiceStore{NewStore(domain.CollectionServices, base, results, ServicesTTL, logger)}
}

func (s *ServiceStore) FetchAll(ctx context.Context) ([]domain.Service, error) {
	return s.Fetch(ctx, nil)
}

func (s *ServiceStore) FetchActive(ctx context.Context) ([]domain.Service, error) {
	return s.Fetch(ctx, domain.Filter{"active": strconv.FormatBool(true)})
}
