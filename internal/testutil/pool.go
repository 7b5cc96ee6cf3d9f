package testutil

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
)

// ErrPoolUnavailable is returned by a CountingPool with Fail set.
var ErrPoolUnavailable = errors.New("pool unavailable")

// CountingPool wraps a *sql.DB and counts connection acquisitions.
//
// Tests use it to check that rejected requests never touch the pool and
// that accepted requests take exactly one connection.
type CountingPool struct {
	DB *sql.DB
	// Fail makes every Conn call return ErrPoolUnavailable (still counted).
	Fail bool

	acquired atomic.Int64
}

// NewCountingPool wraps db.
func NewCountingPool(db *sql.DB) *CountingPool {
	return &CountingPool{DB: db}
}

// Conn acquires a connection from the wrapped database.
func (p *CountingPool) Conn(ctx context.Context) (*sql.Conn, error) {
	p.acquired.Add(1)
	if p.Fail || p.DB == nil {
		return nil, ErrPoolUnavailable
	}
	return p.DB.Conn(ctx)
}

// Acquired returns the number of Conn calls so far.
func (p *CountingPool) Acquired() int64 {
	return p.acquired.Load()
}

// InUse returns the number of connections currently checked out of the
// wrapped database.
func (p *CountingPool) InUse() int {
	if p.DB == nil {
		return 0
	}
	return p.DB.Stats().InUse
}
