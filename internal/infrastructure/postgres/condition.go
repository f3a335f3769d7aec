package postgres

import (
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"account-service/internal/query"
)

var errNoCondition = errors.New("refusing to write without a condition")

type whereQuery[Q any] interface {
	Where(query string, args ...interface{}) Q
}

func predicateSQL(op query.Operator) (string, error) {
	switch op {
	case query.Eq:
		return "?TableAlias.? = ?", nil
	case query.Ne:
		return "?TableAlias.? <> ?", nil
	case query.Like:
		return "?TableAlias.? LIKE ?", nil
	case query.NotLike:
		return "?TableAlias.? NOT LIKE ?", nil
	case query.In:
		return "?TableAlias.? IN (?)", nil
	case query.NotIn:
		return "?TableAlias.? NOT IN (?)", nil
	case query.Gt:
		return "?TableAlias.? > ?", nil
	case query.Lt:
		return "?TableAlias.? < ?", nil
	case query.Gte:
		return "?TableAlias.? >= ?", nil
	case query.Lte:
		return "?TableAlias.? <= ?", nil
	default:
		return "", fmt.Errorf("unsupported operator %q", op)
	}
}

func applyPredicates[Q whereQuery[Q]](q Q, preds []query.Predicate) (Q, error) {
	for _, p := range preds {
		sqlExpr, err := predicateSQL(p.Op)
		if err != nil {
			return q, err
		}
		value := p.Value
		if p.Op == query.In || p.Op == query.NotIn {
			value = bun.In(value)
		}
		q = q.Where(sqlExpr, bun.Ident(p.Column), value)
	}
	return q, nil
}

// applySelect renders a condition onto a select, joining the staff grant
// table once per scope.
func applySelect(q *bun.SelectQuery, cond query.Condition) (*bun.SelectQuery, error) {
	q, err := applyPredicates(q, cond.Predicates)
	if err != nil {
		return nil, err
	}
	for i, s := range cond.Scopes {
		alias := fmt.Sprintf("staff%d", i)
		q = q.Join("JOIN app_staff AS ? ON ?.application_id = ?TableAlias.?",
			bun.Ident(alias), bun.Ident(alias), bun.Ident(s.Column)).
			Where("?.user_id = ?", bun.Ident(alias), s.UserID).
			Where("? = ANY(?.permissions)", s.Permission, bun.Ident(alias))
	}
	return q, nil
}

// applyMutation renders a condition onto an update or delete. Grant scopes
// only make sense for reads.
func applyMutation[Q whereQuery[Q]](q Q, cond query.Condition) (Q, error) {
	if len(cond.Scopes) > 0 {
		return q, fmt.Errorf("grant scopes are not supported on writes")
	}
	if len(cond.Predicates) == 0 {
		return q, errNoCondition
	}
	return applyPredicates(q, cond.Predicates)
}
