package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account-service/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestCompile_AllAbsentMatchesEverything(t *testing.T) {
	cond, err := Compile(UserRules, UserFilter{})
	require.NoError(t, err)
	assert.True(t, cond.IsEmpty())

	cond, err = Compile(ApplicationRules, ApplicationFilter{Offset: ptr(5), Limit: ptr(20)})
	require.NoError(t, err)
	assert.True(t, cond.IsEmpty(), "offset and limit never become predicates")
}

func TestCompile_UserFilter(t *testing.T) {
	start := domain.NewDate(2024, time.January, 1)
	cond, err := Compile(UserRules, UserFilter{
		Name:         ptr("Bob"),
		CreatedStart: &start,
	})
	require.NoError(t, err)

	require.Len(t, cond.Predicates, 2)
	assert.Equal(t, Predicate{Column: "name", Op: Like, Value: "%Bob%"}, cond.Predicates[0])
	assert.Equal(t, "created_at", cond.Predicates[1].Column)
	assert.Equal(t, Gte, cond.Predicates[1].Op)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), cond.Predicates[1].Value)
}

func TestCompile_CreatedEndUsesStrictUpperBound(t *testing.T) {
	end := domain.NewDate(2024, time.March, 2)
	cond, err := Compile(ApplicationRules, ApplicationFilter{CreatedEnd: &end, ID: ptr("app-1")})
	require.NoError(t, err)

	require.Len(t, cond.Predicates, 2)
	assert.Equal(t, Predicate{Column: "id", Op: Eq, Value: "app-1"}, cond.Predicates[0])
	assert.Equal(t, Lt, cond.Predicates[1].Op)
}

func TestCompile_KeyFilterSetMembership(t *testing.T) {
	cond, err := Compile(KeyRules, KeyFilter{UserIDs: []string{"u1", "u2"}, IsBanned: ptr(false)})
	require.NoError(t, err)

	require.Len(t, cond.Predicates, 2)
	assert.Equal(t, In, cond.Predicates[0].Op)
	assert.Equal(t, []string{"u1", "u2"}, cond.Predicates[0].Value)
	assert.Equal(t, Predicate{Column: "is_banned", Op: Eq, Value: false}, cond.Predicates[1])
}

func TestCompile_SameFilterAgainstDifferentEntities(t *testing.T) {
	type nameOnly struct{ Name *string }
	rules := []Rule[nameOnly]{
		{Field: "name", Op: NotLike, Transform: Contains, Get: func(f nameOnly) (any, bool) { return Opt(f.Name) }},
	}
	cond, err := Compile(rules, nameOnly{Name: ptr("test")})
	require.NoError(t, err)
	assert.Equal(t, []Predicate{{Column: "name", Op: NotLike, Value: "%test%"}}, cond.Predicates)
}

func TestCompile_TransformErrorIsInvalidInput(t *testing.T) {
	type dated struct{ Day *string }
	rules := []Rule[dated]{
		{Field: "day", Op: Gte, Transform: DayStart, Get: func(f dated) (any, bool) { return Opt(f.Day) }},
	}
	_, err := Compile(rules, dated{Day: ptr("not-a-date")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCondition_BuildersDoNotAlias(t *testing.T) {
	base := Where("is_deleted", Eq, false)
	a := base.And("name", Eq, "a")
	b := base.WithGrant("id", "u1", "ReadApplication")

	assert.Len(t, base.Predicates, 1)
	assert.Len(t, a.Predicates, 2)
	assert.Len(t, b.Predicates, 1)
	assert.Len(t, b.Scopes, 1)
	assert.Empty(t, a.Scopes)

	merged := a.Merge(b)
	assert.Len(t, merged.Predicates, 3)
	assert.Len(t, merged.Scopes, 1)
}

func TestContains_EscapesPatternCharacters(t *testing.T) {
	got, err := Contains(`50%_off\`)
	require.NoError(t, err)
	assert.Equal(t, `%50\%\_off\\%`, got)

	got, err = Contains("%")
	require.NoError(t, err)
	assert.Equal(t, `%\%%`, got)
}
