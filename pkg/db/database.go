package db

import "context"

type HelixDatabase interface {
	Datasets() DatasetInterface
	Models() ModelInterface
	Schema() SchemaInterface
	Close() error
}

type SchemaInterface interface {
	// Version returns the schema version applied to the database.
	//
	// When no schema is applied yet, it returns 0.
	Version(ctx context.Context) (int, error)

	// Upgrade applies schemata newer than the current version.
	Upgrade(ctx context.Context) error

	// Context returns a context which is canceled when the schema repository
	// has a newer version than the database.
	Context(ctx context.Context) (context.Context, context.CancelFunc)
}

// queryAll reports the filter value means "no filter".
func queryAll(v string) bool {
	return v == "" || v == "all"
}
