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

type StaffInput struct {
	Name        string
	Email       string
	Password    string
	Birthday    domain.Date
	Permissions []domain.StaffPermission
}

type ProfileUpdate struct {
	Name     *string
	Birthday *domain.Date
}

type StaffUpdate struct {
	Name        *string
	Permissions *[]domain.StaffPermission
}

type UserService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	events *UserEventHook
	logger ports.Logger
}

func NewUserService(users ports.UserRepository, hasher ports.PasswordHasher, events *UserEventHook, logger ports.Logger) *UserService {
	return &UserService{users: users, hasher: hasher, events: events, logger: logger}
}

// List returns users of one kind (staff or regular) that match filter.
func (s *UserService) List(ctx context.Context, filter query.UserFilter, staff bool) (domain.Page[domain.User], error) {
	cond, err := query.Compile(query.UserRules, filter)
	if err != nil {
		return domain.Page[domain.User]{}, err
	}
	cond = cond.And("is_staff", query.Eq, staff).And("is_deleted", query.Eq, false)
	return listPage[domain.User](ctx, s.users, cond, filter.Pagination())
}

func listPage[T any](ctx context.Context, store ports.Store[T], cond query.Condition, page query.Pagination) (domain.Page[T], error) {
	items, err := store.FindMany(ctx, cond, page)
	if err != nil {
		return domain.Page[T]{}, err
	}
	total, err := store.Count(ctx, cond)
	if err != nil {
		return domain.Page[T]{}, err
	}
	if items == nil {
		items = []T{}
	}
	return domain.Page[T]{Items: items, Limit: page.Limit, Offset: page.Offset, Total: total}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	if id == "" {
		return domain.User{}, domain.ErrInvalidInput
	}
	return s.users.FindOne(ctx, activeUserByID(id))
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (domain.User, error) {
	before, err := s.Get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	after := before
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return domain.User{}, fmt.Errorf("%w: name must not be empty", domain.ErrInvalidInput)
		}
		after.Name = strings.TrimSpace(*in.Name)
	}
	if in.Birthday != nil {
		after.Birthday = *in.Birthday
	}
	return s.persist(ctx, before, after)
}

// UpdatePassword replaces the password after checking the current one.
// A wrong current password is reported as a conflict.
func (s *UserService) UpdatePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password must not be empty", domain.ErrInvalidInput)
	}
	before, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	ok, err := s.hasher.Verify(oldPassword, before.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: incorrect password", domain.ErrConflict)
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	after := before
	after.PasswordHash = hash
	_, err = s.persist(ctx, before, after)
	return err
}

func (s *UserService) CreateStaff(ctx context.Context, in StaffInput) (domain.User, error) {
	if strings.TrimSpace(in.Name) == "" || in.Email == "" || in.Password == "" {
		return domain.User{}, domain.ErrInvalidInput
	}
	return createUser(ctx, s.users, s.hasher, s.events, domain.User{
		Name:             strings.TrimSpace(in.Name),
		Email:            in.Email,
		Birthday:         in.Birthday,
		IsStaff:          true,
		StaffPermissions: dedupe(in.Permissions),
	}, in.Password)
}

func (s *UserService) UpdateStaff(ctx context.Context, id string, in StaffUpdate) (domain.User, error) {
	before, err := s.getStaff(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	after := before
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return domain.User{}, fmt.Errorf("%w: name must not be empty", domain.ErrInvalidInput)
		}
		after.Name = strings.TrimSpace(*in.Name)
	}
	if in.Permissions != nil {
		after.StaffPermissions = dedupe(*in.Permissions)
	}
	return s.persist(ctx, before, after)
}

// Delete soft-deletes a regular user.
func (s *UserService) Delete(ctx context.Context, id string) error {
	before, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if before.IsStaff {
		return fmt.Errorf("%w: user is a staff member", domain.ErrInvalidInput)
	}
	return s.softDelete(ctx, before)
}

func (s *UserService) DeleteStaff(ctx context.Context, id string) error {
	before, err := s.getStaff(ctx, id)
	if err != nil {
		return err
	}
	return s.softDelete(ctx, before)
}

func (s *UserService) getStaff(ctx context.Context, id string) (domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if !user.IsStaff {
		return domain.User{}, fmt.Errorf("%w: staff user", domain.ErrNotFound)
	}
	return user, nil
}

func (s *UserService) softDelete(ctx context.Context, before domain.User) error {
	n, err := s.users.SoftDelete(ctx, query.Where("id", query.Eq, before.ID))
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	after := before
	after.IsDeleted = true
	s.events.AfterPersist(ctx, &before, after)
	return nil
}

func (s *UserService) persist(ctx context.Context, before, after domain.User) (domain.User, error) {
	after.UpdatedAt = time.Now().UTC()
	updated, err := s.users.Update(ctx, after)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.User{}, fmt.Errorf("%w: email already exists", domain.ErrConflict)
		}
		return domain.User{}, err
	}
	s.events.AfterPersist(ctx, &before, updated)
	return updated, nil
}

func dedupe[P comparable](items []P) []P {
	seen := make(map[P]struct{}, len(items))
	out := make([]P, 0, len(items))
	for _, p := range items {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
