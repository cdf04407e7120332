package database

import "context"

// DB is the narrow query surface the repositories run on. All mutation goes
// through idempotent upserts keyed by natural keys, so no transaction support
// is exposed.
type DB interface {
	Ping(ctx context.Context) error
	Close() error

	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
}

// Session is a single pinned connection. Advisory locks live on the session
// that took them, so lock-scoped work must stay on one Session rather than
// bouncing across pooled connections.
type Session interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Release()
}

// SessionProvider is implemented by pool-backed DBs that can pin a
// connection for session-scoped work.
type SessionProvider interface {
	AcquireSession(ctx context.Context) (Session, error)
}

type Rows interface {
	Close()
	Next() bool
	Scan(dest ...any) error
	Err() error
}

type Row interface {
	Scan(dest ...any) error
}
