package data

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"feed/internal/data/postgres/sqlc"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// fakeDB is a sqlc.DBTX holding at most one recommendation_cache row. Other
// queries record their arguments and return no rows.
type fakeDB struct {
	row       *sqlc.RecommendationCache
	queryArgs [][]any
	deletes   int
	rowReads  int

	// onRowRead runs after a row lookup has taken its snapshot
	onRowRead func(n int)
}

func newFakeData(db *fakeDB) *Data {
	return &Data{Queries: sqlc.New(db)}
}

func (db *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	switch {
	case strings.Contains(sql, "name: DeleteRecommendationCaches "):
		db.deletes++
		if db.row == nil {
			return pgconn.NewCommandTag("DELETE 0"), nil
		}
		db.row = nil
		return pgconn.NewCommandTag("DELETE 1"), nil
	case strings.Contains(sql, "name: UpsertRecommendationCache "):
		db.row = &sqlc.RecommendationCache{
			ID:              args[0].(uuid.UUID),
			UserID:          args[1].(int64),
			Algorithm:       args[2].(string),
			Recommendations: args[3].([]byte),
			CreatedAt:       args[4].(pgtype.Timestamptz),
			ExpiresAt:       args[5].(pgtype.Timestamptz),
			Version:         args[6].(string),
		}
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	return pgconn.CommandTag{}, errors.New("unexpected exec: " + sql)
}

func (db *fakeDB) Query(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
	db.queryArgs = append(db.queryArgs, args)
	return &emptyRows{}, nil
}

func (db *fakeDB) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	db.rowReads++
	snapshot := db.row
	if db.onRowRead != nil {
		db.onRowRead(db.rowReads)
	}
	if snapshot == nil {
		return fakeRow{err: pgx.ErrNoRows}
	}
	r := *snapshot
	return fakeRow{values: []any{r.ID, r.UserID, r.Algorithm, r.Recommendations, r.CreatedAt, r.ExpiresAt, r.Version}}
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

type emptyRows struct{}

func (*emptyRows) Close()                                       {}
func (*emptyRows) Err() error                                   { return nil }
func (*emptyRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT 0") }
func (*emptyRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (*emptyRows) Next() bool                                   { return false }
func (*emptyRows) Scan(...any) error                            { return pgx.ErrNoRows }
func (*emptyRows) Values() ([]any, error)                       { return nil, nil }
func (*emptyRows) RawValues() [][]byte                          { return nil }
func (*emptyRows) Conn() *pgx.Conn                              { return nil }
