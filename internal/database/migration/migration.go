// Package migration applies the SQL files in migrations/ in version order.
// Applied versions are tracked in schema_migrations with a content checksum
// so an edited migration fails loudly instead of silently diverging.
package migration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"assignment-scanner/internal/database"
)

const lockKey = 583104729

type Runner struct {
	Dir string
}

type migrationFile struct {
	Version  int
	Name     string
	SQL      string
	Checksum string
}

// executor is the statement surface the runner needs; satisfied by both
// database.DB and a pinned database.Session.
type executor interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (database.Rows, error)
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return errors.New("nil db")
	}

	dir := r.Dir
	if dir == "" {
		dir = "migrations"
	}

	migs, err := loadMigrations(dir)
	if err != nil {
		return err
	}
	if len(migs) == 0 {
		return nil
	}

	// pg_advisory_lock is held by the session that took it, so the whole
	// lock scope must run on one pinned connection. Through a pool the lock
	// and unlock could otherwise land on different connections.
	exec := executor(db)
	if sp, ok := db.(database.SessionProvider); ok {
		sess, err := sp.AcquireSession(ctx)
		if err != nil {
			return fmt.Errorf("acquire session: %w", err)
		}
		defer sess.Release()
		exec = sess
	}

	if _, err := exec.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INT PRIMARY KEY,
		name TEXT NOT NULL,
		checksum TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	if _, err := exec.Exec(ctx, `SELECT pg_advisory_lock($1)`, lockKey); err != nil {
		return fmt.Errorf("advisory lock: %w", err)
	}
	defer func() {
		_, _ = exec.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey)
	}()

	applied, err := appliedVersions(ctx, exec)
	if err != nil {
		return err
	}

	for _, m := range migs {
		if sum, ok := applied[m.Version]; ok {
			if sum != m.Checksum {
				return fmt.Errorf("migration %03d %s: checksum mismatch with applied version", m.Version, m.Name)
			}
			continue
		}
		if _, err := exec.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("apply migration %03d %s: %w", m.Version, m.Name, err)
		}
		if _, err := exec.Exec(ctx,
			`INSERT INTO schema_migrations (version, name, checksum, applied_at) VALUES ($1,$2,$3,$4)`,
			m.Version, m.Name, m.Checksum, time.Now().UTC()); err != nil {
			return fmt.Errorf("record migration %03d: %w", m.Version, err)
		}
	}
	return nil
}

var migrationNameRE = regexp.MustCompile(`^(\d+)_(.+)\.sql$`)

func loadMigrations(dir string) ([]migrationFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	out := make([]migrationFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := migrationNameRE.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		version, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		sql := strings.TrimSpace(string(raw))
		if sql == "" {
			continue
		}
		sum := sha256.Sum256([]byte(sql))
		out = append(out, migrationFile{
			Version:  version,
			Name:     m[2],
			SQL:      sql,
			Checksum: hex.EncodeToString(sum[:]),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	for i := 1; i < len(out); i++ {
		if out[i].Version == out[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", out[i].Version)
		}
	}
	return out, nil
}

func appliedVersions(ctx context.Context, db executor) (map[int]string, error) {
	rows, err := db.Query(ctx, `SELECT version, checksum FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int]string{}
	for rows.Next() {
		var version int
		var checksum string
		if err := rows.Scan(&version, &checksum); err != nil {
			return nil, err
		}
		out[version] = checksum
	}
	return out, rows.Err()
}
