// Package lock provides per-group advisory locks over Postgres.
// Clustering rebuilds delete and recreate a group's cluster state, so
// two concurrent runs for the same group would race on deletes and
// creates; the advisory lock makes at-most-one-run-per-group explicit
// instead of trusting the job scheduler.
package lock

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GroupLock struct {
	pool *pgxpool.Pool
}

func NewGroupLock(pool *pgxpool.Pool) *GroupLock {
	return &GroupLock{pool: pool}
}

// lockKey folds a group UUID into the bigint keyspace Postgres
// advisory locks use.
func lockKey(groupID uuid.UUID) int64 {
	hi := binary.BigEndian.Uint64(groupID[:8])
	lo := binary.BigEndian.Uint64(groupID[8:])
	return int64(hi ^ lo) // #nosec G115 - wraparound is fine for a lock key
}

// TryAcquire attempts to take the group's advisory lock without
// blocking. On success it returns a release function that must be
// called when the clustering run finishes; the dedicated connection is
// held until then because advisory locks are session scoped.
func (l *GroupLock) TryAcquire(ctx context.Context, groupID uuid.UUID) (release func(), acquired bool, err error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	key := lockKey(groupID)

	var locked bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, key).Scan(&locked); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}

	if !locked {
		conn.Release()
		return nil, false, nil
	}

	release = func() {
		// Unlock on a background context so a cancelled run still
		// releases the lock.
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, key)
		conn.Release()
	}
	return release, true, nil
}
