package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"account-service/internal/domain"
)

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID               uuid.UUID `bun:"id,pk,type:uuid"`
	Name             string    `bun:"name,notnull"`
	Email            string    `bun:"email,notnull,unique"`
	Password         string    `bun:"password,notnull"`
	Birthday         time.Time `bun:"birthday,type:date,nullzero"`
	IsStaff          bool      `bun:"is_staff,notnull"`
	StaffPermissions []string  `bun:"staff_permissions,array,type:text[]"`
	IsDeleted        bool      `bun:"is_deleted,notnull"`
	CreatedAt        time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt        time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

type applicationRow struct {
	bun.BaseModel `bun:"table:applications,alias:app"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	Name        string    `bun:"name,notnull,unique"`
	Description string    `bun:"description,type:varchar(2048),notnull"`
	IsDeleted   bool      `bun:"is_deleted,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

type grantRow struct {
	bun.BaseModel `bun:"table:app_staff,alias:grant_row"`

	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	ApplicationID uuid.UUID `bun:"application_id,notnull,type:uuid"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid"`
	Permissions   []string  `bun:"permissions,array,type:text[]"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

type keyRow struct {
	bun.BaseModel `bun:"table:api_keys,alias:k"`

	ID              uuid.UUID  `bun:"id,pk,type:uuid"`
	Value           string     `bun:"value,notnull,unique"`
	ActivatedAt     *time.Time `bun:"activated_at"`
	Lifetime        int64      `bun:"lifetime,notnull"`
	IsBanned        bool       `bun:"is_banned,notnull"`
	ApplicationID   uuid.UUID  `bun:"application_id,notnull,type:uuid"`
	UserID          uuid.UUID  `bun:"user_id,notnull,type:uuid"`
	CreatedByUserID uuid.UUID  `bun:"created_by_user_id,notnull,type:uuid"`
	IsDeleted       bool       `bun:"is_deleted,notnull"`
	CreatedAt       time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// parseID accepts an empty string as "generate a new id".
func parseID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.New(), nil
	}
	return uuid.Parse(s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func userToRow(u domain.User) (*userRow, error) {
	id, err := parseID(u.ID)
	if err != nil {
		return nil, err
	}
	return &userRow{
		ID:               id,
		Name:             u.Name,
		Email:            u.Email,
		Password:         u.PasswordHash,
		Birthday:         u.Birthday.Time,
		IsStaff:          u.IsStaff,
		StaffPermissions: nonNil(domain.PermissionStrings(u.StaffPermissions)),
		IsDeleted:        u.IsDeleted,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}, nil
}

func userFromRow(r *userRow) (domain.User, error) {
	perms, err := domain.ParseStaffPermissions(r.StaffPermissions)
	if err != nil {
		return domain.User{}, corruptRow("users", r.ID.String(), err)
	}
	return domain.User{
		ID:               r.ID.String(),
		Name:             r.Name,
		Email:            r.Email,
		PasswordHash:     r.Password,
		Birthday:         domain.Date{Time: r.Birthday},
		IsStaff:          r.IsStaff,
		StaffPermissions: perms,
		IsDeleted:        r.IsDeleted,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}, nil
}

func applicationToRow(a domain.Application) (*applicationRow, error) {
	id, err := parseID(a.ID)
	if err != nil {
		return nil, err
	}
	return &applicationRow{
		ID:          id,
		Name:        a.Name,
		Description: a.Description,
		IsDeleted:   a.IsDeleted,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}, nil
}

func applicationFromRow(r *applicationRow) (domain.Application, error) {
	return domain.Application{
		ID:          r.ID.String(),
		Name:        r.Name,
		Description: r.Description,
		IsDeleted:   r.IsDeleted,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

func grantToRow(g domain.StaffGrant) (*grantRow, error) {
	id, err := parseID(g.ID)
	if err != nil {
		return nil, err
	}
	appID, err := uuid.Parse(g.ApplicationID)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(g.UserID)
	if err != nil {
		return nil, err
	}
	return &grantRow{
		ID:            id,
		ApplicationID: appID,
		UserID:        userID,
		Permissions:   nonNil(domain.PermissionStrings(g.Permissions)),
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}, nil
}

func grantFromRow(r *grantRow) (domain.StaffGrant, error) {
	perms, err := domain.ParseAppPermissions(r.Permissions)
	if err != nil {
		return domain.StaffGrant{}, corruptRow("app_staff", r.ID.String(), err)
	}
	return domain.StaffGrant{
		ID:            r.ID.String(),
		ApplicationID: r.ApplicationID.String(),
		UserID:        r.UserID.String(),
		Permissions:   perms,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}

func keyToRow(k domain.APIKey) (*keyRow, error) {
	id, err := parseID(k.ID)
	if err != nil {
		return nil, err
	}
	refs := make([]uuid.UUID, 3)
	for i, s := range []string{k.ApplicationID, k.UserID, k.CreatedByUserID} {
		if refs[i], err = uuid.Parse(s); err != nil {
			return nil, err
		}
	}
	return &keyRow{
		ID:              id,
		Value:           k.Value,
		ActivatedAt:     k.ActivatedAt,
		Lifetime:        k.Lifetime,
		IsBanned:        k.IsBanned,
		ApplicationID:   refs[0],
		UserID:          refs[1],
		CreatedByUserID: refs[2],
		IsDeleted:       k.IsDeleted,
		CreatedAt:       k.CreatedAt,
		UpdatedAt:       k.UpdatedAt,
	}, nil
}

func keyFromRow(r *keyRow) (domain.APIKey, error) {
	return domain.APIKey{
		ID:              r.ID.String(),
		Value:           r.Value,
		ActivatedAt:     r.ActivatedAt,
		Lifetime:        r.Lifetime,
		IsBanned:        r.IsBanned,
		ApplicationID:   r.ApplicationID.String(),
		UserID:          r.UserID.String(),
		CreatedByUserID: r.CreatedByUserID.String(),
		IsDeleted:       r.IsDeleted,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}, nil
}

var errCorruptRow = errors.New("stored row cannot be decoded")

// corruptRow reports a stored row that no longer decodes. The result carries
// no domain sentinel, so it surfaces as an internal error.
func corruptRow(table, id string, err error) error {
	return fmt.Errorf("%w: %s row %s: %v", errCorruptRow, table, id, err)
}
