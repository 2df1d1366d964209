package domain

import (
	"maps"
	"time"
)

// PlanType is the subscription tier of a barbershop.
type PlanType string

const (
	PlanFree PlanType = "free"
	PlanPro  PlanType = "pro"
)

// Tenant is one barbershop account, the unit of data isolation.
type Tenant struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	PlanType  PlanType  `json:"planType"`
	Settings  Settings  `json:"settings"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// NewTenant creates a tenant with default settings.
func NewTenant(id, name, slug string, plan PlanType) Tenant {
	if plan == "" {
		plan = PlanFree
	}
	now := time.Now().UTC()
	return Tenant{
		ID:        id,
		Slug:      slug,
		Name:      name,
		PlanType:  plan,
		Settings:  DefaultSettings(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a copy that shares no mutable state with t.
func (t Tenant) Clone() Tenant {
	t.Settings = t.Settings.Clone()
	return t
}

// Settings is the per-barbershop configuration.
type Settings struct {
	Theme         Theme         `json:"theme"`
	WorkingHours  WorkingHours  `json:"workingHours"`
	Branding      Branding      `json:"branding"`
	Contact       Contact       `json:"contact"`
	Notifications Notifications `json:"notifications"`
}

type Theme struct {
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	Mode           string `json:"mode"`
}

// DayHours holds the opening window of one weekday, as "HH:MM".
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// WorkingHours maps a lowercase weekday name to its opening window.
type WorkingHours map[string]DayHours

type Branding struct {
	LogoURL    string `json:"logoUrl"`
	BannerURL  string `json:"bannerUrl"`
	Tagline    string `json:"tagline"`
	FaviconURL string `json:"faviconUrl"`
}

type Contact struct {
	Phone     string `json:"phone"`
	WhatsApp  string `json:"whatsapp"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	Instagram string `json:"instagram"`
}

type Notifications struct {
	Email           bool `json:"email"`
	WhatsApp        bool `json:"whatsapp"`
	ReminderMinutes int  `json:"reminderMinutes"`
}

// DefaultSettings is what a freshly registered barbershop starts with.
func DefaultSettings() Settings {
	weekday := DayHours{Open: "09:00", Close: "18:00"}
	return Settings{
		Theme: Theme{PrimaryColor: "#1f2937", SecondaryColor: "#f59e0b", Mode: "light"},
		WorkingHours: WorkingHours{
			"monday":    weekday,
			"tuesday":   weekday,
			"wednesday": weekday,
			"thursday":  weekday,
			"friday":    weekday,
			"saturday":  {Open: "09:00", Close: "14:00"},
			"sunday":    {Closed: true},
		},
		Notifications: Notifications{Email: true, ReminderMinutes: 60},
	}
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	s.WorkingHours = maps.Clone(s.WorkingHours)
	return s
}

// SettingsPatch is a partial settings update. A nil section is left untouched.
type SettingsPatch struct {
	Theme         *Theme         `json:"theme,omitempty"`
	WorkingHours  WorkingHours   `json:"workingHours,omitempty"`
	Branding      *Branding      `json:"branding,omitempty"`
	Contact       *Contact       `json:"contact,omitempty"`
	Notifications *Notifications `json:"notifications,omitempty"`
}

// Apply shallow-merges p into s: every section present in p replaces the
// corresponding section of s as a whole.
func (s Settings) Apply(p SettingsPatch) Settings {
	out := s.Clone()
	if p.Theme != nil {
		out.Theme = *p.Theme
	}
	if p.WorkingHours != nil {
		out.WorkingHours = maps.Clone(p.WorkingHours)
	}
	if p.Branding != nil {
		out.Branding = *p.Branding
	}
	if p.Contact != nil {
		out.Contact = *p.Contact
	}
	if p.Notifications != nil {
		out.Notifications = *p.Notifications
	}
	return out
}

// IsZero reports whether p changes nothing.
func (p SettingsPatch) IsZero() bool {
	return p.Theme == nil && p.WorkingHours == nil && p.Branding == nil &&
		p.Contact == nil && p.Notifications == nil
}
