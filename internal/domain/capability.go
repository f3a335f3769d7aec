package domain

// Capability is what a request handler receives after the guard chain has
// authenticated the caller and checked the route's permission requirement.
// It deliberately exposes no raw claims.
type Capability struct {
	userID           string
	isStaff          bool
	staffPermissions []StaffPermission
	tokenID          string

	applicationID  string
	appPermissions []AppPermission
}

func NewCapability(claims TokenClaims) Capability {
	return Capability{
		userID:           claims.SubjectID,
		isStaff:          claims.IsStaff,
		staffPermissions: append([]StaffPermission(nil), claims.StaffPermissions...),
		tokenID:          claims.ID,
	}
}

// ForApplication returns a copy scoped to one application's grant.
func (c Capability) ForApplication(applicationID string, perms []AppPermission) Capability {
	c.applicationID = applicationID
	c.appPermissions = append([]AppPermission(nil), perms...)
	return c
}

func (c Capability) UserID() string  { return c.userID }
func (c Capability) IsStaff() bool   { return c.isStaff }
func (c Capability) TokenID() string { return c.tokenID }

func (c Capability) ApplicationID() string { return c.applicationID }

func (c Capability) StaffPermissions() []StaffPermission {
	return append([]StaffPermission(nil), c.staffPermissions...)
}

func (c Capability) AppPermissions() []AppPermission {
	return append([]AppPermission(nil), c.appPermissions...)
}

func (c Capability) HasAppPermission(p AppPermission) bool {
	return HasAll([]AppPermission{p}, c.appPermissions)
}
