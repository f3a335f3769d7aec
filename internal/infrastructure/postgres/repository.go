package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/uptrace/bun"

	"account-service/internal/domain"
	"account-service/internal/query"
)

type execQuery interface {
	Exec(ctx context.Context, dest ...interface{}) (sql.Result, error)
}

// Repository is the bun-backed store for one entity type T persisted as row
// type R.
type Repository[T any, R any] struct {
	db            bun.IDB
	entity        string
	toRow         func(T) (*R, error)
	fromRow       func(*R) (T, error)
	updateColumns []string
}

func (r *Repository[T, R]) segment(op string) string {
	return "Postgres." + op + r.entity
}

func (r *Repository[T, R]) Insert(ctx context.Context, entity T) (T, error) {
	var zero T
	row, err := r.toRow(entity)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	err = xray.Capture(ctx, r.segment("Insert"), func(ctx context.Context) error {
		_, err := r.db.NewInsert().Model(row).Returning("*").Exec(ctx)
		return err
	})
	if err != nil {
		return zero, mapError(err)
	}
	return r.fromRow(row)
}

func (r *Repository[T, R]) FindOne(ctx context.Context, cond query.Condition) (T, error) {
	var zero T
	row := new(R)
	err := xray.Capture(ctx, r.segment("Get"), func(ctx context.Context) error {
		q, err := applySelect(r.db.NewSelect().Model(row), cond)
		if err != nil {
			return err
		}
		return q.Limit(1).Scan(ctx)
	})
	if err != nil {
		return zero, mapError(err)
	}
	return r.fromRow(row)
}

func (r *Repository[T, R]) FindMany(ctx context.Context, cond query.Condition, page query.Pagination) ([]T, error) {
	var rows []R
	err := xray.Capture(ctx, r.segment("Query"), func(ctx context.Context) error {
		q, err := applySelect(r.db.NewSelect().Model(&rows), cond)
		if err != nil {
			return err
		}
		return q.OrderExpr("?TableAlias.created_at DESC").
			Offset(page.Offset).
			Limit(page.Limit).
			Scan(ctx)
	})
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]T, 0, len(rows))
	for i := range rows {
		item, err := r.fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *Repository[T, R]) Count(ctx context.Context, cond query.Condition) (int64, error) {
	var n int
	err := xray.Capture(ctx, r.segment("Count"), func(ctx context.Context) error {
		q, err := applySelect(r.db.NewSelect().Model((*R)(nil)), cond)
		if err != nil {
			return err
		}
		n, err = q.Count(ctx)
		return err
	})
	if err != nil {
		return 0, mapError(err)
	}
	return int64(n), nil
}

func (r *Repository[T, R]) Update(ctx context.Context, entity T) (T, error) {
	var zero T
	row, err := r.toRow(entity)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	var affected int64
	err = xray.Capture(ctx, r.segment("Update"), func(ctx context.Context) error {
		res, err := r.db.NewUpdate().
			Model(row).
			Column(r.updateColumns...).
			WherePK().
			Returning("*").
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return zero, mapError(err)
	}
	if affected == 0 {
		return zero, domain.ErrNotFound
	}
	return r.fromRow(row)
}

// SoftDelete flags every matching row deleted and reports how many changed.
func (r *Repository[T, R]) SoftDelete(ctx context.Context, cond query.Condition) (int64, error) {
	return r.exec(ctx, "SoftDelete", func() (execQuery, error) {
		if cond.IsEmpty() {
			return nil, errNoCondition
		}
		q := r.db.NewUpdate().
			Model((*R)(nil)).
			Set("is_deleted = TRUE").
			Set("updated_at = ?", time.Now().UTC())
		return applyMutation(q, cond.And("is_deleted", query.Eq, false))
	})
}

func (r *Repository[T, R]) Delete(ctx context.Context, cond query.Condition) (int64, error) {
	return r.exec(ctx, "Delete", func() (execQuery, error) {
		return applyMutation(r.db.NewDelete().Model((*R)(nil)), cond)
	})
}

func (r *Repository[T, R]) exec(ctx context.Context, op string, build func() (execQuery, error)) (int64, error) {
	var affected int64
	err := xray.Capture(ctx, r.segment(op), func(ctx context.Context) error {
		q, err := build()
		if err != nil {
			return err
		}
		res, err := q.Exec(ctx)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, mapError(err)
	}
	return affected, nil
}
