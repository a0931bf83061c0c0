// Package pool narrows pgx connection pools, connections and transactions
// to interfaces, so that storage code can be written once for each of them.
package pool

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Queryer sends SQL.
//
// Subset of pgxpool.Pool, pgxpool.Conn and pgx.Tx.
type Queryer interface {
	// Exec sends SQL which does not have result rows.
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)

	// Query sends SQL which has result rows.
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)

	// QueryRow sends SQL which has just a single result row.
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Begin begins a transaction.
type Begin interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a subset of pgx.Tx.
//
// pgx.Tx does not implement Tx, since Begin of pgx.Tx returns pgx.Tx, not Tx.
type Tx interface {
	Queryer
	Begin

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Conn is a subset of *pgxpool.Conn.
type Conn interface {
	Queryer
	Begin

	Release()
	Ping(ctx context.Context) error
}

// Pool is a subset of *pgxpool.Pool.
type Pool interface {
	Begin

	Acquire(ctx context.Context) (Conn, error)
	Ping(ctx context.Context) error
	Close()
}

type pgxTx struct {
	base pgx.Tx
}

var _ Tx = &pgxTx{}

func (tx *pgxTx) Begin(ctx context.Context) (Tx, error) {
	nested, err := tx.base.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxTx{nested}, nil
}
func (tx *pgxTx) Commit(ctx context.Context) error   { return tx.base.Commit(ctx) }
func (tx *pgxTx) Rollback(ctx context.Context) error { return tx.base.Rollback(ctx) }
func (tx *pgxTx) Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error) {
	return tx.base.Exec(ctx, sql, arguments...)
}
func (tx *pgxTx) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return tx.base.Query(ctx, sql, args...)
}
func (tx *pgxTx) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return tx.base.QueryRow(ctx, sql, args...)
}

type pgxConn struct {
	base *pgxpool.Conn
}

var _ Conn = &pgxConn{}

func (c *pgxConn) Begin(ctx context.Context) (Tx, error) {
	tx, err := c.base.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxTx{tx}, nil
}
func (c *pgxConn) Release()                       { c.base.Release() }
func (c *pgxConn) Ping(ctx context.Context) error { return c.base.Ping(ctx) }
func (c *pgxConn) Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error) {
	return c.base.Exec(ctx, sql, arguments...)
}
func (c *pgxConn) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return c.base.Query(ctx, sql, args...)
}
func (c *pgxConn) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return c.base.QueryRow(ctx, sql, args...)
}

type pgxPool struct {
	base *pgxpool.Pool
}

var _ Pool = &pgxPool{}

func (p *pgxPool) Begin(ctx context.Context) (Tx, error) {
	tx, err := p.base.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxTx{tx}, nil
}
func (p *pgxPool) Acquire(ctx context.Context) (Conn, error) {
	conn, err := p.base.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxConn{conn}, nil
}
func (p *pgxPool) Ping(ctx context.Context) error { return p.base.Ping(ctx) }
func (p *pgxPool) Close()                         { p.base.Close() }

// Wrap makes *pgxpool.Pool a Pool.
func Wrap(p *pgxpool.Pool) Pool {
	return &pgxPool{p}
}

// Connect connects to the database and wraps the pool.
func Connect(ctx context.Context, url string) (Pool, error) {
	p, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, err
	}
	return Wrap(p), nil
}
