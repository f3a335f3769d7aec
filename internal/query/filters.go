package query

import "account-service/internal/domain"

type UserFilter struct {
	ID           *string
	Name         *string
	Email        *string
	CreatedStart *domain.Date
	CreatedEnd   *domain.Date
	Offset       *int
	Limit        *int
}

func (f UserFilter) Pagination() Pagination { return Paginate(f.Offset, f.Limit) }

var UserRules = []Rule[UserFilter]{
	{Field: "id", Op: Eq, Get: func(f UserFilter) (any, bool) { return Opt(f.ID) }},
	{Field: "name", Op: Like, Transform: Contains, Get: func(f UserFilter) (any, bool) { return Opt(f.Name) }},
	{Field: "email", Op: Like, Transform: Contains, Get: func(f UserFilter) (any, bool) { return Opt(f.Email) }},
	{Field: "created_start", Op: Gte, Column: "created_at", Transform: DayStart, Get: func(f UserFilter) (any, bool) { return Opt(f.CreatedStart) }},
	{Field: "created_end", Op: Lt, Column: "created_at", Transform: DayStart, Get: func(f UserFilter) (any, bool) { return Opt(f.CreatedEnd) }},
	{Field: "offset", Ignore: true},
	{Field: "limit", Ignore: true},
}

type ApplicationFilter struct {
	ID           *string
	Name         *string
	Description  *string
	CreatedStart *domain.Date
	CreatedEnd   *domain.Date
	Offset       *int
	Limit        *int
}

func (f ApplicationFilter) Pagination() Pagination { return Paginate(f.Offset, f.Limit) }

var ApplicationRules = []Rule[ApplicationFilter]{
	{Field: "id", Op: Eq, Get: func(f ApplicationFilter) (any, bool) { return Opt(f.ID) }},
	{Field: "name", Op: Like, Transform: Contains, Get: func(f ApplicationFilter) (any, bool) { return Opt(f.Name) }},
	{Field: "description", Op: Like, Transform: Contains, Get: func(f ApplicationFilter) (any, bool) { return Opt(f.Description) }},
	{Field: "created_start", Op: Gte, Column: "created_at", Transform: DayStart, Get: func(f ApplicationFilter) (any, bool) { return Opt(f.CreatedStart) }},
	{Field: "created_end", Op: Lt, Column: "created_at", Transform: DayStart, Get: func(f ApplicationFilter) (any, bool) { return Opt(f.CreatedEnd) }},
	{Field: "offset", Ignore: true},
	{Field: "limit", Ignore: true},
}

type KeyFilter struct {
	UserIDs      []string
	IsBanned     *bool
	CreatedStart *domain.Date
	CreatedEnd   *domain.Date
	Offset       *int
	Limit        *int
}

func (f KeyFilter) Pagination() Pagination { return Paginate(f.Offset, f.Limit) }

var KeyRules = []Rule[KeyFilter]{
	{Field: "user_id", Op: In, Get: func(f KeyFilter) (any, bool) { return OptSlice(f.UserIDs) }},
	{Field: "is_banned", Op: Eq, Get: func(f KeyFilter) (any, bool) { return Opt(f.IsBanned) }},
	{Field: "created_start", Op: Gte, Column: "created_at", Transform: DayStart, Get: func(f KeyFilter) (any, bool) { return Opt(f.CreatedStart) }},
	{Field: "created_end", Op: Lt, Column: "created_at", Transform: DayStart, Get: func(f KeyFilter) (any, bool) { return Opt(f.CreatedEnd) }},
	{Field: "offset", Ignore: true},
	{Field: "limit", Ignore: true},
}
