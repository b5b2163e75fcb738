package docstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-gin-resource-api/internal/domain"
)

type gitem struct {
	domain.Base
	Name  string  `json:"name"`
	Tag   string  `json:"tag"`
	Price float64 `json:"price"`
	Note  string  `gorm:"-" json:"note"`
}

func (gitem) TableName() string { return "gitems" }

func newGitem() *gitem { return &gitem{} }

var gitemCols = []string{"id", "created_at", "updated_at", "name", "tag", "price"}

func newMockStore(t *testing.T) (*Gorm[*gitem], sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	st, err := NewGorm(db, newGitem)
	require.NoError(t, err)
	return st, mock
}

func TestGormColumnsFollowJSONNames(t *testing.T) {
	st, _ := newMockStore(t)
	for key, col := range map[string]string{
		"id":        "id",
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"price":     "price",
	} {
		got, err := st.column(key)
		require.NoError(t, err)
		assert.Equal(t, col, got)
	}
	_, err := st.column("note")
	assert.ErrorIs(t, err, ErrInvalidQuery, "gorm:\"-\" fields are not addressable")
}

func TestGormFindByID(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "gitems" WHERE "id" = \$1`).
		WillReturnRows(sqlmock.NewRows(gitemCols).AddRow("a", now, now, "apple", "fruit", 1.5))
	got, err := st.FindByID(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "apple", got.Name)
	assert.Equal(t, 1.5, got.Price)

	mock.ExpectQuery(`SELECT \* FROM "gitems" WHERE "id" = \$1`).
		WillReturnRows(sqlmock.NewRows(gitemCols))
	_, err = st.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormQueryBuildsFiltersOrderAndWindow(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "gitems" WHERE "tag" = \$1 AND "name" LIKE \$2 ORDER BY "price" DESC,"id" DESC`).
		WillReturnRows(sqlmock.NewRows(gitemCols).
			AddRow("b", now, now, "apricot", "fruit", 3.0).
			AddRow("a", now, now, "apple", "fruit", 1.5))

	got, err := st.Query(context.Background(), Query{
		Filters: []Filter{{Key: "tag", Op: OpEq, Value: "fruit"}, {Key: "name", Op: OpLike, Value: "a%"}},
		OrderBy: &OrderBy{Field: "price", Direction: Desc},
		Offset:  10,
		Limit:   5,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "apricot", got[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCount(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "gitems" WHERE "price" > \$1`).
		WithArgs(1.2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := st.Count(context.Background(), []Filter{{Key: "price", Op: OpGt, Value: 1.2}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRejectsUnknownField(t *testing.T) {
	st, mock := newMockStore(t)
	_, err := st.Query(context.Background(), Query{Filters: []Filter{{Key: "nope", Op: OpEq, Value: 1}}})
	assert.ErrorIs(t, err, ErrInvalidQuery)
	_, err = st.Query(context.Background(), Query{OrderBy: &OrderBy{Field: "nope"}})
	assert.ErrorIs(t, err, ErrInvalidQuery)
	_, err = st.Update(context.Background(), "a", map[string]any{"nope": 1})
	assert.ErrorIs(t, err, ErrInvalidQuery)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUpdateThenReload(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now()
	mock.ExpectExec(`UPDATE "gitems" SET .*"name"=\$\d.* WHERE "id" = \$\d`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "gitems" WHERE "id" = \$1`).
		WillReturnRows(sqlmock.NewRows(gitemCols).AddRow("a", now, now, "renamed", "fruit", 1.5))

	got, err := st.Update(context.Background(), "a", map[string]any{"name": "renamed", "updatedAt": now})
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormDelete(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectExec(`DELETE FROM "gitems" WHERE "id" = \$1`).WithArgs("a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "gitems" WHERE "id" = \$1`).WithArgs("a").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := st.Delete(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = st.Delete(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormMapsPermissionErrors(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT count`).WillReturnError(&pgconn.PgError{Code: "42501", Message: "permission denied for table gitems"})
	_, err := st.Count(context.Background(), nil)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	mock.ExpectQuery(`SELECT count`).WillReturnError(errors.New("connection reset"))
	_, err = st.Count(context.Background(), nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrPermissionDenied))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestMapGormErr(t *testing.T) {
	assert.ErrorIs(t, mapGormErr(gorm.ErrRecordNotFound), ErrNotFound)
	for _, n := range []uint16{1044, 1142, 1143} {
		assert.ErrorIs(t, mapGormErr(&mysql.MySQLError{Number: n}), ErrPermissionDenied, n)
	}
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	assert.Same(t, error(dup), mapGormErr(dup))
}
