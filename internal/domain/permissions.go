package domain

import "fmt"

// StaffPermission is a platform-wide capability held by staff users.
type StaffPermission string

const (
	CreateApplication StaffPermission = "CreateApplication"
	CreateStaffUser   StaffPermission = "CreateStaffUser"
	DeleteStaffUser   StaffPermission = "DeleteStaffUser"
	UpdateStaffUser   StaffPermission = "UpdateStaffUser"
	DeleteUser        StaffPermission = "DeleteUser"
)

var staffPermissions = []StaffPermission{
	CreateApplication, CreateStaffUser, DeleteStaffUser, UpdateStaffUser, DeleteUser,
}

// AppPermission is a capability granted to a staff user on one application.
type AppPermission string

const (
	UpdateApplication AppPermission = "UpdateApplication"
	ReadApplication   AppPermission = "ReadApplication"
	DeleteApplication AppPermission = "DeleteApplication"
	CreateKey         AppPermission = "CreateKey"
	ReadKey           AppPermission = "ReadKey"
	ReadKeyDetail     AppPermission = "ReadKeyDetail"
	UpdateKey         AppPermission = "UpdateKey"
	DeleteKey         AppPermission = "DeleteKey"
)

var appPermissions = []AppPermission{
	UpdateApplication, ReadApplication, DeleteApplication,
	CreateKey, ReadKey, ReadKeyDetail, UpdateKey, DeleteKey,
}

func AllStaffPermissions() []StaffPermission {
	return append([]StaffPermission(nil), staffPermissions...)
}

func AllAppPermissions() []AppPermission {
	return append([]AppPermission(nil), appPermissions...)
}

func ParseStaffPermission(s string) (StaffPermission, error) {
	for _, p := range staffPermissions {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown staff permission %q", ErrInvalidInput, s)
}

func ParseAppPermission(s string) (AppPermission, error) {
	for _, p := range appPermissions {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown application permission %q", ErrInvalidInput, s)
}

func ParseStaffPermissions(values []string) ([]StaffPermission, error) {
	return parseAll(values, ParseStaffPermission)
}

func ParseAppPermissions(values []string) ([]AppPermission, error) {
	return parseAll(values, ParseAppPermission)
}

func parseAll[P ~string](values []string, parse func(string) (P, error)) ([]P, error) {
	out := make([]P, 0, len(values))
	for _, v := range values {
		p, err := parse(v)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// PermissionStrings converts a permission set to its wire form.
func PermissionStrings[P ~string](perms []P) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}

func (p *StaffPermission) UnmarshalText(text []byte) error {
	parsed, err := ParseStaffPermission(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p *AppPermission) UnmarshalText(text []byte) error {
	parsed, err := ParseAppPermission(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// HasAll reports whether held contains every permission in required.
// An empty requirement is always satisfied.
func HasAll[P comparable](required, held []P) bool {
	set := toSet(held)
	for _, p := range required {
		if _, ok := set[p]; !ok {
			return false
		}
	}
	return true
}

// HasAny reports whether held contains at least one permission in required.
// An empty requirement is always satisfied.
func HasAny[P comparable](required, held []P) bool {
	if len(required) == 0 {
		return true
	}
	set := toSet(held)
	for _, p := range required {
		if _, ok := set[p]; ok {
			return true
		}
	}
	return false
}

func toSet[P comparable](items []P) map[P]struct{} {
	set := make(map[P]struct{}, len(items))
	for _, p := range items {
		set[p] = struct{}{}
	}
	return set
}

// Requirement is a declared permission predicate: every permission in AllOf
// and at least one in AnyOf must be held.
type Requirement[P comparable] struct {
	AllOf []P
	AnyOf []P
}

func (r Requirement[P]) SatisfiedBy(held []P) bool {
	return HasAll(r.AllOf, held) && HasAny(r.AnyOf, held)
}
