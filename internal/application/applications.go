package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"account-service/internal/domain"
	"account-service/internal/ports"
	"account-service/internal/query"
)

const maxDescriptionLen = 2048

type ApplicationInput struct {
	Name        string
	Description string
}

type ApplicationUpdate struct {
	Name        *string
	Description *string
}

type ApplicationService struct {
	apps   ports.ApplicationRepository
	grants ports.StaffGrantRepository
	users  ports.UserRepository
	logger ports.Logger
}

func NewApplicationService(apps ports.ApplicationRepository, grants ports.StaffGrantRepository, users ports.UserRepository, logger ports.Logger) *ApplicationService {
	return &ApplicationService{apps: apps, grants: grants, users: users, logger: logger}
}

func activeApplication(id string) query.Condition {
	return query.Where("id", query.Eq, id).And("is_deleted", query.Eq, false)
}

func grantOf(appID, userID string) query.Condition {
	return query.Where("application_id", query.Eq, appID).And("user_id", query.Eq, userID)
}

func validateApplication(name, description string) error {
	if strings.TrimSpace(name) == "" || len(name) > 255 {
		return fmt.Errorf("%w: name must be 1-255 characters", domain.ErrInvalidInput)
	}
	if len(description) > maxDescriptionLen {
		return fmt.Errorf("%w: description must be at most %d characters", domain.ErrInvalidInput, maxDescriptionLen)
	}
	return nil
}

// Create stores the application and grants its creator every application
// permission. If the grant cannot be stored the application is removed again.
func (s *ApplicationService) Create(ctx context.Context, creatorID string, in ApplicationInput) (domain.Application, error) {
	if err := validateApplication(in.Name, in.Description); err != nil {
		return domain.Application{}, err
	}
	now := time.Now().UTC()
	app, err := s.apps.Insert(ctx, domain.Application{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if errors.Is(err, domain.ErrConflict) {
		return domain.Application{}, fmt.Errorf("%w: application name already exists", domain.ErrConflict)
	}
	if err != nil {
		return domain.Application{}, err
	}
	_, err = s.grants.Insert(ctx, domain.StaffGrant{
		ApplicationID: app.ID,
		UserID:        creatorID,
		Permissions:   domain.AllAppPermissions(),
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		if _, delErr := s.apps.Delete(ctx, query.Where("id", query.Eq, app.ID)); delErr != nil {
			s.logger.Error(ctx, "failed to roll back application", "application_id", app.ID, "error", delErr)
		}
		return domain.Application{}, err
	}
	return app, nil
}

// List returns the applications on which userID holds ReadApplication.
func (s *ApplicationService) List(ctx context.Context, userID string, filter query.ApplicationFilter) (domain.Page[domain.Application], error) {
	cond, err := query.Compile(query.ApplicationRules, filter)
	if err != nil {
		return domain.Page[domain.Application]{}, err
	}
	cond = cond.And("is_deleted", query.Eq, false).
		WithGrant("id", userID, string(domain.ReadApplication))
	return listPage[domain.Application](ctx, s.apps, cond, filter.Pagination())
}

func (s *ApplicationService) Get(ctx context.Context, id string) (domain.Application, error) {
	if id == "" {
		return domain.Application{}, domain.ErrInvalidInput
	}
	return s.apps.FindOne(ctx, activeApplication(id))
}

func (s *ApplicationService) Update(ctx context.Context, id string, in ApplicationUpdate) (domain.Application, error) {
	app, err := s.Get(ctx, id)
	if err != nil {
		return domain.Application{}, err
	}
	if in.Name != nil {
		app.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		app.Description = *in.Description
	}
	if err := validateApplication(app.Name, app.Description); err != nil {
		return domain.Application{}, err
	}
	app.UpdatedAt = time.Now().UTC()
	updated, err := s.apps.Update(ctx, app)
	if errors.Is(err, domain.ErrConflict) {
		return domain.Application{}, fmt.Errorf("%w: application name already exists", domain.ErrConflict)
	}
	return updated, err
}

func (s *ApplicationService) Delete(ctx context.Context, id string) error {
	n, err := s.apps.SoftDelete(ctx, activeApplication(id))
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Permissions returns what userID may do on an application. A missing grant
// yields an empty set; a missing or deleted application is ErrNotFound, since
// grants outlive a soft delete.
func (s *ApplicationService) Permissions(ctx context.Context, appID, userID string) ([]domain.AppPermission, error) {
	if _, err := s.Get(ctx, appID); err != nil {
		return nil, err
	}
	grant, err := s.grants.FindOne(ctx, grantOf(appID, userID))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return grant.Permissions, nil
}

func (s *ApplicationService) ListStaff(ctx context.Context, appID string, page query.Pagination) (domain.Page[domain.StaffGrant], error) {
	return listPage[domain.StaffGrant](ctx, s.grants, query.Where("application_id", query.Eq, appID), page.Clamp())
}

// Grant gives a staff user a permission set on an application. A second grant
// for the same pair is a conflict.
func (s *ApplicationService) Grant(ctx context.Context, appID, userID string, perms []domain.AppPermission) (domain.StaffGrant, error) {
	if _, err := s.Get(ctx, appID); err != nil {
		return domain.StaffGrant{}, err
	}
	user, err := s.users.FindOne(ctx, activeUserByID(userID))
	if err != nil {
		return domain.StaffGrant{}, err
	}
	if !user.IsStaff {
		return domain.StaffGrant{}, fmt.Errorf("%w: only staff users can be granted application permissions", domain.ErrInvalidInput)
	}
	now := time.Now().UTC()
	grant, err := s.grants.Insert(ctx, domain.StaffGrant{
		ApplicationID: appID,
		UserID:        userID,
		Permissions:   dedupe(perms),
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if errors.Is(err, domain.ErrConflict) {
		return domain.StaffGrant{}, fmt.Errorf("%w: user already has a grant on this application", domain.ErrConflict)
	}
	return grant, err
}

func (s *ApplicationService) UpdateGrant(ctx context.Context, appID, userID string, perms []domain.AppPermission) (domain.StaffGrant, error) {
	grant, err := s.grants.FindOne(ctx, grantOf(appID, userID))
	if err != nil {
		return domain.StaffGrant{}, err
	}
	grant.Permissions = dedupe(perms)
	grant.UpdatedAt = time.Now().UTC()
	return s.grants.Update(ctx, grant)
}

func (s *ApplicationService) Revoke(ctx context.Context, appID, userID string) error {
	n, err := s.grants.Delete(ctx, grantOf(appID, userID))
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
