package domain

import (
	"net/url"
	"time"
)

// Record carries the fields every tenant-owned entity has.
type Record struct {
	ID           string    `json:"id"`
	BarbershopID string    `json:"barbershopId"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
	UpdatedAt    time.Time `json:"updatedAt,omitzero"`
}

// Meta returns the record header.
func (r Record) Meta() Record { return r }

// Entity is satisfied by every type that embeds Record.
type Entity interface {
	Meta() Record
}

// Collection names, used as REST path segments and cache namespaces.
const (
	CollectionAppointments = "appointments"
	CollectionBarbers      = "barbers"
	CollectionComments     = "comments"
	CollectionServices     = "services"
)

// Collections lists every tenant-scoped collection.
var Collections = []string{
	CollectionAppointments,
	CollectionBarbers,
	CollectionComments,
	CollectionServices,
}

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Appointment is a booked slot with a barber.
type Appointment struct {
	Record
	ClientName  string            `json:"clientName"`
	ClientPhone string            `json:"clientPhone,omitempty"`
	BarberID    string            `json:"barberId"`
	ServiceID   string            `json:"serviceId"`
	Date        string            `json:"date"` // YYYY-MM-DD
	Time        string            `json:"time"` // HH:MM
	Status      AppointmentStatus `json:"status"`
	Price       float64           `json:"price,omitempty"`
	Notes       string            `json:"notes,omitempty"`
}

type Barber struct {
	Record
	Name        string   `json:"name"`
	Email       string   `json:"email,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	PhotoURL    string   `json:"photoUrl,omitempty"`
	Specialties []string `json:"specialties,omitempty"`
	Active      bool     `json:"active"`
}

type CommentStatus string

const (
	CommentPending  CommentStatus = "pending"
	CommentApproved CommentStatus = "approved"
	CommentRejected CommentStatus = "rejected"
)

// Comment is a customer review, moderated by the barbershop.
type Comment struct {
	Record
	AuthorName string        `json:"authorName"`
	BarberID   string        `json:"barberId,omitempty"`
	Rating     int           `json:"rating"`
	Text       string        `json:"text"`
	Status     CommentStatus `json:"status"`
}

type Service struct {
	Record
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	DurationMinutes int     `json:"durationMinutes"`
	Price           float64 `json:"price"`
	Active          bool    `json:"active"`
}

// Filter restricts a list query to records whose field equals the value.
// Field names are the JSON names of the entity.
type Filter map[string]string

// Key is the canonical form of f, stable regardless of insertion order.
func (f Filter) Key() string {
	if len(f) == 0 {
		return "all"
	}
	v := make(url.Values, len(f))
	for k, val := range f {
		v.Set(k, val)
	}
	return v.Encode()
}
