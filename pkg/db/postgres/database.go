package postgres

import (
	"context"

	kpool "github.com/helixlab/helix/pkg/conn/db/postgres/pool"
	kdb "github.com/helixlab/helix/pkg/db"
	kpgdataset "github.com/helixlab/helix/pkg/db/postgres/dataset"
	kpgmodel "github.com/helixlab/helix/pkg/db/postgres/model"
	kpgschema "github.com/helixlab/helix/pkg/db/postgres/schema"
	xe "github.com/helixlab/helix/pkg/errors"
)

type helixDBPostgres struct {
	pool     kpool.Pool
	datasets kdb.DatasetInterface
	models   kdb.ModelInterface
	schema   kdb.SchemaInterface
}

type Config struct {
	SchemaRepository string
}

type Option func(*Config) *Config

// WithSchemaRepository sets the directory of versioned schemata.
//
// Without this, Schema() does nothing.
func WithSchemaRepository(repository string) Option {
	return func(c *Config) *Config {
		c.SchemaRepository = repository
		return c
	}
}

func New(
	ctx context.Context,
	url string,
	options ...Option,
) (kdb.HelixDatabase, error) {
	pool, err := kpool.Connect(ctx, url)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return FromPool(pool, options...), nil
}

// FromPool builds HelixDatabase on an established pool.
func FromPool(pool kpool.Pool, options ...Option) kdb.HelixDatabase {
	c := Config{}
	for _, option := range options {
		c = *option(&c)
	}

	var schema kdb.SchemaInterface = kpgschema.Null()
	if c.SchemaRepository != "" {
		schema = kpgschema.New(pool, c.SchemaRepository)
	}

	return &helixDBPostgres{
		pool:     pool,
		datasets: kpgdataset.New(pool),
		models:   kpgmodel.New(pool),
		schema:   schema,
	}
}

func (h *helixDBPostgres) Datasets() kdb.DatasetInterface {
	return h.datasets
}

func (h *helixDBPostgres) Models() kdb.ModelInterface {
	return h.models
}

func (h *helixDBPostgres) Schema() kdb.SchemaInterface {
	return h.schema
}

func (h *helixDBPostgres) Close() error {
	h.pool.Close()
	return nil
}
