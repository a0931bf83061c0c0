// Package schema applies SQL schemata kept in a schema repository.
//
// A schema repository is a directory which has subdirectories named by version numbers:
//
//	repository/
//	  1/
//	    001_tables.sql
//	  2/
//	    001_add_column.sql
//
// Each version is applied in ascending order, and SQL files in a version are applied in lexical order.
package schema

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
	kpool "github.com/helixlab/helix/pkg/conn/db/postgres/pool"
	kdb "github.com/helixlab/helix/pkg/db"
	xe "github.com/helixlab/helix/pkg/errors"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
)

type pgSchema struct {
	pool       kpool.Pool
	repository string
}

var _ kdb.SchemaInterface = &pgSchema{}

// New creates a schema backed by the schema repository directory.
func New(pool kpool.Pool, repository string) kdb.SchemaInterface {
	return &pgSchema{pool: pool, repository: repository}
}

type version struct {
	Version int
	Root    string
}

func (v version) apply(ctx context.Context, conn kpool.Queryer) error {
	return filepath.WalkDir(v.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".sql") {
			return nil
		}

		query, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := conn.Exec(ctx, string(query)); err != nil {
			return xe.WrapWithNote(path, err)
		}
		return nil
	})
}

func (s *pgSchema) Version(ctx context.Context) (int, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return -1, err
	}
	defer conn.Release()

	return currentVersion(ctx, conn)
}

func currentVersion(ctx context.Context, conn kpool.Queryer) (int, error) {
	var version int
	if err := conn.QueryRow(
		ctx, `SELECT coalesce(max("version"), 0) FROM "schema_version"`,
	).Scan(&version); err != nil {
		if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) && pgerr.Code == pgerrcode.UndefinedTable {
			return 0, nil
		}
		return -1, err
	}
	return version, nil
}

func (s *pgSchema) Upgrade(ctx context.Context) error {
	schemaVersions, err := s.versions()
	if err != nil {
		return err
	}

	// read version before the transaction begins.
	// A failed query (missing table) aborts the transaction.
	current, err := s.Version(ctx)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, v := range schemaVersions {
		if v.Version <= current {
			continue
		}
		if err := v.apply(ctx, tx); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM "schema_version"`); err != nil {
			return err
		}
		if _, err := tx.Exec(
			ctx, `INSERT INTO "schema_version" ("version") VALUES ($1)`, v.Version,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *pgSchema) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	cctx, can := context.WithCancelCause(ctx)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		can(err)
		return cctx, func() {}
	}
	if err := w.Add(s.repository); err != nil {
		w.Close()
		can(err)
		return cctx, func() {}
	}

	checkVersion := func() {
		vs, err := s.versions()
		if err != nil {
			can(fmt.Errorf("failed to read schema repository: %w", err))
			return
		}

		current, err := s.Version(ctx)
		if err != nil {
			can(fmt.Errorf("failed to get current schema version: %w", err))
			return
		}

		if len(vs) == 0 {
			return
		}
		if latest := vs[len(vs)-1]; current < latest.Version {
			can(fmt.Errorf(
				"schema is outdated: %d (in db) < %d (in repository)", current, latest.Version,
			))
		}
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-cctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) {
					continue
				}
				if filepath.Clean(s.repository) != filepath.Dir(ev.Name) {
					continue
				}
				checkVersion()
			}
		}
	}()

	checkVersion()
	return cctx, func() { can(nil) }
}

// versions lists schema versions in the repository, in ascending order.
func (s *pgSchema) versions() ([]version, error) {
	dir, err := os.ReadDir(s.repository)
	if err != nil {
		return nil, err
	}

	vs := make([]version, 0, len(dir))
	for _, entry := range dir {
		if !entry.IsDir() {
			continue
		}
		v, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		vs = append(vs, version{Version: v, Root: filepath.Join(s.repository, entry.Name())})
	}
	slices.SortFunc(vs, func(a, b version) int { return cmp.Compare(a.Version, b.Version) })

	return vs, nil
}

// Null returns a schema which does nothing.
//
// It is used when no schema repository is configured.
func Null() kdb.SchemaInterface {
	return nullSchema{}
}

type nullSchema struct{}

func (nullSchema) Upgrade(context.Context) error {
	return errors.New("no schema repository available")
}

func (nullSchema) Version(context.Context) (int, error) {
	return -1, nil
}

func (nullSchema) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	return ctx, func() {}
}
