package docstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"go-gin-resource-api/internal/domain"
	"go-gin-resource-api/pkg/utils"
)

// Gorm stores each resource type in its own table. Field names used in
// filters, ordering and patches are the JSON names of the model and are
// resolved to columns through the gorm schema; unknown names are rejected.
type Gorm[T domain.Entity] struct {
	db      *gorm.DB
	newFn   func() T
	idGen   func() string
	schema  *schema.Schema
	columns map[string]string // json 字段名 -> 列名
	pk      string
}

func NewGorm[T domain.Entity](db *gorm.DB, newFn func() T) (*Gorm[T], error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(newFn()); err != nil {
		return nil, fmt.Errorf("parse model schema: %w", err)
	}
	s := stmt.Schema
	cols := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		if f.DBName == "" {
			continue
		}
		name := strings.Split(f.StructField.Tag.Get("json"), ",")[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		cols[name] = f.DBName
	}
	pk := "id"
	if s.PrioritizedPrimaryField != nil {
		pk = s.PrioritizedPrimaryField.DBName
	}
	return &Gorm[T]{db: db, newFn: newFn, idGen: utils.NewID, schema: s, columns: cols, pk: pk}, nil
}

func (g *Gorm[T]) Create(ctx context.Context, data T) (T, error) {
	data.SetID(g.idGen())
	if err := g.db.WithContext(ctx).Create(data).Error; err != nil {
		var zero T
		return zero, mapGormErr(err)
	}
	return data, nil
}

// CreateWithID writes data under id, replacing an existing row.
func (g *Gorm[T]) CreateWithID(ctx context.Context, id string, data T) (T, error) {
	data.SetID(id)
	if err := g.db.WithContext(ctx).Save(data).Error; err != nil {
		var zero T
		return zero, mapGormErr(err)
	}
	return data, nil
}

func (g *Gorm[T]) FindByID(ctx context.Context, id string) (T, error) {
	m := g.newFn()
	if err := g.db.WithContext(ctx).Where(g.idEq(id)).Take(m).Error; err != nil {
		var zero T
		return zero, mapGormErr(err)
	}
	return m, nil
}

func (g *Gorm[T]) FindAll(ctx context.Context) ([]T, error) {
	return g.Query(ctx, Query{})
}

func (g *Gorm[T]) Update(ctx context.Context, id string, patch map[string]any) (T, error) {
	var zero T
	values := make(map[string]any, len(patch))
	for k, v := range patch {
		if k == domain.FieldID {
			continue
		}
		col, err := g.column(k)
		if err != nil {
			return zero, err
		}
		values[col] = v
	}
	if len(values) > 0 {
		res := g.db.WithContext(ctx).Model(g.newFn()).Where(g.idEq(id)).Updates(values)
		if res.Error != nil {
			return zero, mapGormErr(res.Error)
		}
	}
	return g.FindByID(ctx, id)
}

func (g *Gorm[T]) Delete(ctx context.Context, id string) (bool, error) {
	res := g.db.WithContext(ctx).Where(g.idEq(id)).Delete(g.newFn())
	if res.Error != nil {
		return false, mapGormErr(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (g *Gorm[T]) Query(ctx context.Context, q Query) ([]T, error) {
	tx, err := g.filtered(ctx, q.Filters)
	if err != nil {
		return nil, err
	}

	var orderCol string
	desc := false
	if q.OrderBy != nil && q.OrderBy.Field != "" {
		if orderCol, err = g.column(q.OrderBy.Field); err != nil {
			return nil, err
		}
		desc = q.OrderBy.Direction == Desc
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: orderCol}, Desc: desc})
	}
	// 主键兜底排序，保证游标位置稳定
	if orderCol != g.pk {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: g.pk}, Desc: desc})
	}

	switch {
	case q.Cursor != "":
		after, err := g.afterCursor(ctx, q.Cursor, orderCol, desc)
		if err != nil {
			return nil, err
		}
		tx = tx.Where(after)
	case q.Offset > 0:
		tx = tx.Offset(q.Offset)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var out []T
	if err := tx.Find(&out).Error; err != nil {
		return nil, mapGormErr(err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (g *Gorm[T]) Count(ctx context.Context, filters []Filter) (int64, error) {
	tx, err := g.filtered(ctx, filters)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, mapGormErr(err)
	}
	return n, nil
}

func (g *Gorm[T]) filtered(ctx context.Context, filters []Filter) (*gorm.DB, error) {
	tx := g.db.WithContext(ctx).Model(g.newFn())
	for _, f := range filters {
		expr, err := g.expr(f)
		if err != nil {
			return nil, err
		}
		tx = tx.Where(expr)
	}
	return tx, nil
}

func (g *Gorm[T]) expr(f Filter) (clause.Expression, error) {
	col, err := g.column(f.Key)
	if err != nil {
		return nil, err
	}
	c := clause.Column{Name: col}
	switch f.Op {
	case OpEq:
		return clause.Eq{Column: c, Value: f.Value}, nil
	case OpNeq:
		return clause.Neq{Column: c, Value: f.Value}, nil
	case OpGt:
		return clause.Gt{Column: c, Value: f.Value}, nil
	case OpGte:
		return clause.Gte{Column: c, Value: f.Value}, nil
	case OpLt:
		return clause.Lt{Column: c, Value: f.Value}, nil
	case OpLte:
		return clause.Lte{Column: c, Value: f.Value}, nil
	case OpLike:
		return clause.Like{Column: c, Value: f.Value}, nil
	}
	return nil, fmt.Errorf("%w: unsupported operator %q", ErrInvalidQuery, f.Op)
}

// afterCursor builds the keyset predicate that starts strictly after the
// cursor row under the active ordering.
func (g *Gorm[T]) afterCursor(ctx context.Context, cursor, orderCol string, desc bool) (clause.Expression, error) {
	pkCol := clause.Column{Name: g.pk}
	past := func(col clause.Column, v any) clause.Expression {
		if desc {
			return clause.Lt{Column: col, Value: v}
		}
		return clause.Gt{Column: col, Value: v}
	}
	if orderCol == "" || orderCol == g.pk {
		if _, err := g.FindByID(ctx, cursor); err != nil {
			return nil, fmt.Errorf("cursor %s: %w", cursor, err)
		}
		return past(pkCol, cursor), nil
	}

	row, err := g.FindByID(ctx, cursor)
	if err != nil {
		return nil, fmt.Errorf("cursor %s: %w", cursor, err)
	}
	field := g.schema.LookUpField(orderCol)
	if field == nil {
		return nil, fmt.Errorf("unknown order column %q", orderCol)
	}
	v, _ := field.ValueOf(ctx, reflect.Indirect(reflect.ValueOf(row)))
	col := clause.Column{Name: orderCol}
	return clause.Or(
		past(col, v),
		clause.And(clause.Eq{Column: col, Value: v}, past(pkCol, cursor)),
	), nil
}

func (g *Gorm[T]) idEq(id string) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: g.pk}, Value: id}
}

func (g *Gorm[T]) column(key string) (string, error) {
	if col, ok := g.columns[key]; ok {
		return col, nil
	}
	return "", fmt.Errorf("%w: unknown field %q", ErrInvalidQuery, key)
}

// mysql: 1044/1142/1143 拒绝访问；postgres: 42501 insufficient_privilege
func mapGormErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1044, 1142, 1143:
			return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) && pe.Code == "42501" {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return err
}
