package databases

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gateway is the only path from feature code to the relational store. Every
// primitive takes `?` bind parameters; values are never interpolated into SQL.
// Errors from the driver are returned unchanged.
type Gateway struct {
	db *gorm.DB
}

type ExecResult struct {
	RowsAffected int64
}

func NewGateway(db *gorm.DB) *Gateway {
	return &Gateway{db: db}
}

// DB exposes the context-bound GORM handle for model accessors.
func (g *Gateway) DB(ctx context.Context) *gorm.DB {
	return g.db.WithContext(ctx)
}

// Dialect returns the dialector name ("postgres", "sqlite").
func (g *Gateway) Dialect() string {
	return g.db.Dialector.Name()
}

// Exec runs a mutating statement.
func (g *Gateway) Exec(ctx context.Context, query string, args ...any) (ExecResult, error) {
	res := g.db.WithContext(ctx).Exec(query, args...)
	return ExecResult{RowsAffected: res.RowsAffected}, res.Error
}

// InsertReturningID runs an INSERT ... RETURNING id and returns the generated key.
func (g *Gateway) InsertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := g.db.WithContext(ctx).Raw(query, args...).Scan(&id).Error; err != nil {
		return 0, err
	}
	return id, nil
}

// FetchOne scans zero-or-one row into dest and reports whether a row was found.
func (g *Gateway) FetchOne(ctx context.Context, dest any, query string, args ...any) (bool, error) {
	res := g.db.WithContext(ctx).Raw(query, args...).Scan(dest)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FetchMany scans zero-or-many rows into the slice pointed to by dest.
func (g *Gateway) FetchMany(ctx context.Context, dest any, query string, args ...any) error {
	return g.db.WithContext(ctx).Raw(query, args...).Scan(dest).Error
}

// Transaction runs fn inside BEGIN/COMMIT; any error or panic rolls back.
func (g *Gateway) Transaction(ctx context.Context, fn func(tx *Gateway) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Gateway{db: tx})
	})
}

// ForUpdate adds a row lock where the dialect supports it.
func (g *Gateway) ForUpdate(ctx context.Context) *gorm.DB {
	q := g.db.WithContext(ctx)
	if g.Dialect() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}
