package domain

import (
	"encoding/json"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON shadows the RFC 3339 encoding promoted from time.Time.
// The zero date encodes as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

type User struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	PasswordHash     string            `json:"-"`
	Birthday         Date              `json:"birthday"`
	IsStaff          bool              `json:"is_staff"`
	StaffPermissions []StaffPermission `json:"staff_permissions"`
	IsDeleted        bool              `json:"is_deleted"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

type Application struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsDeleted   bool      `json:"is_deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StaffGrant links a staff user to an application with a permission set.
// There is at most one grant per (ApplicationID, UserID).
type StaffGrant struct {
	ID            string          `json:"id"`
	ApplicationID string          `json:"application_id"`
	UserID        string          `json:"user_id"`
	Permissions   []AppPermission `json:"permissions"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type APIKey struct {
	ID              string     `json:"id"`
	Value           string     `json:"value,omitempty"`
	ActivatedAt     *time.Time `json:"activated_at"`
	Lifetime        int64      `json:"lifetime"`
	IsBanned        bool       `json:"is_banned"`
	ApplicationID   string     `json:"application_id"`
	UserID          string     `json:"user_id"`
	CreatedByUserID string     `json:"created_by_user_id"`
	IsDeleted       bool       `json:"is_deleted"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsExpired reports whether an activated key has outlived its lifetime.
// A key that was never activated never expires.
func (k APIKey) IsExpired(now time.Time) bool {
	if k.ActivatedAt == nil {
		return false
	}
	return now.Sub(*k.ActivatedAt) >= time.Duration(k.Lifetime)*time.Second
}

// ExpiresAt returns the expiry instant of an activated key.
func (k APIKey) ExpiresAt() *time.Time {
	if k.ActivatedAt == nil {
		return nil
	}
	t := k.ActivatedAt.Add(time.Duration(k.Lifetime) * time.Second)
	return &t
}

// Page is one window of a filtered listing.
type Page[T any] struct {
	Items  []T   `json:"items"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total"`
}
