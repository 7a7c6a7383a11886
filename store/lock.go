package store

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrLockReleased is returned by Lock.Check once the lock is no longer held.
var ErrLockReleased = errors.New("pgjobq: lock released")

// Locker hands out named, process-exclusive locks. At most one Lock per name
// exists across every process sharing the store.
type Locker interface {
	// TryLock returns (nil, nil) when another holder has the lock.
	TryLock(ctx context.Context, name string) (Lock, error)
}

type Lock interface {
	// Check reports an error once the lock can no longer be trusted.
	Check(ctx context.Context) error
	Unlock(ctx context.Context) error
}

var (
	_ Locker = (*PostgresStore)(nil)
	_ Locker = (*MemoryStore)(nil)
)

// lockKey maps a lock name onto the bigint advisory lock space.
func lockKey(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64())
}

// pgLock is a session advisory lock pinned to one pooled connection. The lock
// lives exactly as long as that session.
type pgLock struct {
	conn *pgxpool.Conn
	key  int64
	once sync.Once
}

func (s *PostgresStore) TryLock(ctx context.Context, name string) (Lock, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("lock %q: acquire connection: %w", name, err)
	}

	key := lockKey(name)
	var ok bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1::bigint)`, key).Scan(&ok); err != nil {
		conn.Release()
		return nil, fmt.Errorf("lock %q: %w", name, err)
	}
	if !ok {
		conn.Release()
		return nil, nil
	}
	return &pgLock{conn: conn, key: key}, nil
}

func (l *pgLock) Check(ctx context.Context) error {
	var held bool
	err := l.conn.QueryRow(ctx, `
		SELECT EXISTS (
		  SELECT 1 FROM pg_locks
		  WHERE locktype = 'advisory' AND granted AND pid = pg_backend_pid()
		    AND classid = $1::bigint::oid AND objid = $2::bigint::oid AND objsubid = 1
		)`, int64(uint64(l.key)>>32), int64(uint32(l.key))).Scan(&held)
	if err != nil {
		return fmt.Errorf("check lock: %w", err)
	}
	if !held {
		return ErrLockReleased
	}
	return nil
}

// Unlock releases the lock and returns the connection to the pool. If the
// session is already gone the lock went with it, so errors are only reported.
func (l *pgLock) Unlock(ctx context.Context) error {
	var err error
	l.once.Do(func() {
		var ok bool
		err = l.conn.QueryRow(ctx, `SELECT pg_advisory_unlock($1::bigint)`, l.key).Scan(&ok)
		if err != nil {
			// Don't hand a session that may still hold the lock back to the pool.
			_ = l.conn.Conn().Close(ctx)
		}
		l.conn.Release()
	})
	return err
}

type memoryLock struct {
	s     *MemoryStore
	name  string
	token uint64
}

func (s *MemoryStore) TryLock(_ context.Context, name string) (Lock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, held := s.locks[name]; held {
		return nil, nil
	}
	s.lockSeq++
	s.locks[name] = s.lockSeq
	return &memoryLock{s: s, name: name, token: s.lockSeq}, nil
}

// DropLocks forgets every held lock, the way a lost database session would.
func (s *MemoryStore) DropLocks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.locks)
}

func (l *memoryLock) Check(context.Context) error {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	if l.s.locks[l.name] != l.token {
		return ErrLockReleased
	}
	return nil
}

func (l *memoryLock) Unlock(context.Context) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if l.s.locks[l.name] == l.token {
		delete(l.s.locks, l.name)
	}
	return nil
}
