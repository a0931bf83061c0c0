// schema_upgrader applies the schema repository to the helix database.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	kdb "github.com/helixlab/helix/pkg/db"
	"github.com/helixlab/helix/pkg/db/postgres"
	"github.com/helixlab/helix/pkg/utils/retry"
	"github.com/helixlab/helix/pkg/utils/try"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Host     string `flag:"host" help:"The host of the database."`
	Port     int    `flag:"port" help:"The port of the database."`
	User     string `flag:"user" help:"The user of the database."`
	Password string `flag:"pass" help:"The password of the database."`
	Database string `flag:"database" help:"The name of the database."`

	Schema string `flag:"schema" help:"The path to the schema repository directory."`
	Wait   int    `flag:"wait" help:"Seconds to wait for the database to accept connections. 0 tries only once."`
}

// DSN builds the connection url of the database.
func (f Flag) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(f.User, f.Password),
		Host:   f.Host + ":" + strconv.Itoa(f.Port),
		Path:   "/" + f.Database,
	}
	return u.String()
}

// connect opens the database.
//
// Connection failures are retried until wait passes.
func connect(ctx context.Context, dsn string, schema string, wait time.Duration) (kdb.HelixDatabase, error) {
	if wait <= 0 {
		return postgres.New(ctx, dsn, postgres.WithSchemaRepository(schema))
	}

	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	first := true
	backoff := retry.ExponentialBackoff(500*time.Millisecond, 1.5)
	return retry.Blocking(
		ctx,
		func(ctx context.Context) error {
			if first {
				first = false
				return nil
			}
			return backoff(ctx)
		},
		func() (kdb.HelixDatabase, error) {
			db, err := postgres.New(ctx, dsn, postgres.WithSchemaRepository(schema))
			if err != nil {
				log.Printf("database is not ready: %s", err)
				return nil, errors.Join(retry.ErrRetry, err)
			}
			return db, nil
		},
	)
}

func envOr(key string, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

func main() {
	logger := log.Default()
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()

	port := 5432
	if p, err := strconv.Atoi(os.Getenv("HELIX_DB_PORT")); err == nil {
		port = p
	}

	cmd := try.To(flarc.NewCommand(
		"database schema upgrader",
		Flag{
			Host:     envOr("HELIX_DB_HOST", "localhost"),
			Port:     port,
			User:     os.Getenv("HELIX_DB_USER"),
			Password: os.Getenv("HELIX_DB_PASSWORD"),
			Database: envOr("HELIX_DB_NAME", "helix"),

			Schema: os.Getenv("HELIX_SCHEMA"),
			Wait:   30,
		},
		flarc.Args{},
		func(ctx context.Context, c flarc.Commandline[Flag], a []any) error {
			flags := c.Flags()
			if flags.Schema == "" {
				return errors.Join(flarc.ErrUsage, errors.New("--schema is required"))
			}

			db, err := connect(ctx, flags.DSN(), flags.Schema, time.Duration(flags.Wait)*time.Second)
			if err != nil {
				return err
			}
			defer db.Close()

			before, err := db.Schema().Version(ctx)
			if err != nil {
				return err
			}
			if err := db.Schema().Upgrade(ctx); err != nil {
				return err
			}
			after, err := db.Schema().Version(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Stdout(), "schema version: %d -> %d\n", before, after)
			return nil
		},
	)).OrFatal(logger)

	os.Exit(flarc.Run(ctx, cmd))
}
