package postgres

import (
	"github.com/uptrace/bun"

	"account-service/internal/domain"
)

type UserRepository struct {
	*Repository[domain.User, userRow]
}

func NewUserRepository(db bun.IDB) *UserRepository {
	return &UserRepository{&Repository[domain.User, userRow]{
		db:            db,
		entity:        "User",
		toRow:         userToRow,
		fromRow:       userFromRow,
		updateColumns: []string{"name", "email", "password", "birthday", "is_staff", "staff_permissions", "updated_at"},
	}}
}

type ApplicationRepository struct {
	*Repository[domain.Application, applicationRow]
}

func NewApplicationRepository(db bun.IDB) *ApplicationRepository {
	return &ApplicationRepository{&Repository[domain.Application, applicationRow]{
		db:            db,
		entity:        "Application",
		toRow:         applicationToRow,
		fromRow:       applicationFromRow,
		updateColumns: []string{"name", "description", "updated_at"},
	}}
}

type StaffGrantRepository struct {
	*Repository[domain.StaffGrant, grantRow]
}

func NewStaffGrantRepository(db bun.IDB) *StaffGrantRepository {
	return &StaffGrantRepository{&Repository[domain.StaffGrant, grantRow]{
		db:            db,
		entity:        "StaffGrant",
		toRow:         grantToRow,
		fromRow:       grantFromRow,
		updateColumns: []string{"permissions", "updated_at"},
	}}
}

type APIKeyRepository struct {
	*Repository[domain.APIKey, keyRow]
}

func NewAPIKeyRepository(db bun.IDB) *APIKeyRepository {
	return &APIKeyRepository{&Repository[domain.APIKey, keyRow]{
		db:            db,
		entity:        "APIKey",
		toRow:         keyToRow,
		fromRow:       keyFromRow,
		updateColumns: []string{"activated_at", "lifetime", "is_banned", "updated_at"},
	}}
}
