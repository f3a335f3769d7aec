package query

import (
	"fmt"
	"strings"
	"time"

	"account-service/internal/domain"
)

// Transform rewrites a filter value before it becomes a predicate operand.
type Transform func(any) (any, error)

// Rule maps one filter field onto a store predicate. Get reports the field's
// value and whether it is present. Column defaults to Field. Ignored fields
// take part in pagination only.
type Rule[F any] struct {
	Field     string
	Op        Operator
	Column    string
	Transform Transform
	Ignore    bool
	Get       func(F) (any, bool)
}

// Compile turns a filter into a conjunctive condition. Absent fields
// contribute nothing, so an empty filter matches every row.
func Compile[F any](rules []Rule[F], filter F) (Condition, error) {
	cond := All()
	for _, r := range rules {
		if r.Ignore || r.Get == nil {
			continue
		}
		value, ok := r.Get(filter)
		if !ok {
			continue
		}
		if r.Transform != nil {
			var err error
			if value, err = r.Transform(value); err != nil {
				return Condition{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, r.Field, err)
			}
		}
		column := r.Column
		if column == "" {
			column = r.Field
		}
		cond = cond.And(column, r.Op, value)
	}
	return cond, nil
}

// Opt adapts an optional field for use in Rule.Get.
func Opt[T any](v *T) (any, bool) {
	if v == nil {
		return nil, false
	}
	return *v, true
}

// OptSlice treats an empty slice as absent.
func OptSlice[T any](v []T) (any, bool) {
	if len(v) == 0 {
		return nil, false
	}
	return v, true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Contains wraps a value in wildcards for a substring pattern match. Pattern
// characters in the value itself are escaped with a backslash, which is the
// default LIKE escape character.
func Contains(v any) (any, error) {
	return "%" + likeEscaper.Replace(fmt.Sprint(v)) + "%", nil
}

// DayStart converts a calendar date into the timestamp at its midnight, UTC.
func DayStart(v any) (any, error) {
	switch d := v.(type) {
	case domain.Date:
		return d.UTC(), nil
	case time.Time:
		y, m, day := d.UTC().Date()
		return time.Date(y, m, day, 0, 0, 0, 0, time.UTC), nil
	case string:
		parsed, err := domain.ParseDate(d)
		if err != nil {
			return nil, err
		}
		return parsed.UTC(), nil
	default:
		return nil, fmt.Errorf("unsupported date value %T", v)
	}
}
