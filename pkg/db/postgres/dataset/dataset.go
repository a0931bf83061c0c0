package dataset

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	kpool "github.com/helixlab/helix/pkg/conn/db/postgres/pool"
	kdb "github.com/helixlab/helix/pkg/db"
	kpgerr "github.com/helixlab/helix/pkg/db/postgres/errors"
	xe "github.com/helixlab/helix/pkg/errors"
	"github.com/jackc/pgx/v4"
)

type datasetPG struct { // implements kdb.DatasetInterface
	pool  kpool.Pool
	newId func() string
}

var _ kdb.DatasetInterface = &datasetPG{}

type Option func(*datasetPG) *datasetPG

// WithIdGenerator replaces the generator of dataset ids.
//
// By default, ids are random UUIDs.
func WithIdGenerator(gen func() string) Option {
	return func(d *datasetPG) *datasetPG {
		d.newId = gen
		return d
	}
}

func New(pool kpool.Pool, options ...Option) kdb.DatasetInterface {
	d := &datasetPG{
		pool:  pool,
		newId: func() string { return uuid.New().String() },
	}
	for _, opt := range options {
		d = opt(d)
	}
	return d
}

const columns = `
	"id", "name", "type", "size", "size_bytes", "records", "status",
	"file_path", "blob_url", "created_at", "updated_at"
`

func scan(row pgx.Row) (kdb.Dataset, error) {
	d := kdb.Dataset{}
	var status string
	if err := row.Scan(
		&d.Id, &d.Name, &d.Type, &d.Size, &d.SizeBytes, &d.Records, &status,
		&d.FilePath, &d.BlobURL, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return kdb.Dataset{}, err
	}
	d.Status = kdb.DatasetStatus(status)
	return d, nil
}

func (d *datasetPG) Find(ctx context.Context, query kdb.DatasetQuery) ([]kdb.Dataset, error) {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer conn.Release()

	var typ, status, search *string
	if !query.TypeAll() {
		typ = &query.Type
	}
	if !query.StatusAll() {
		status = &query.Status
	}
	if query.Search != "" {
		s := "%" + escapeLike(query.Search) + "%"
		search = &s
	}

	rows, err := conn.Query(
		ctx,
		`
		select `+columns+`
		from "dataset"
		where
			($1::varchar is null or "type" = $1)
			and ($2::varchar is null or "status" = $2)
			and ($3::varchar is null or "name" ilike $3)
		order by "created_at" desc, "id" desc
		`,
		typ, status, search,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	found := []kdb.Dataset{}
	for rows.Next() {
		ds, err := scan(rows)
		if err != nil {
			return nil, xe.Wrap(err)
		}
		found = append(found, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, xe.Wrap(err)
	}
	return found, nil
}

func (d *datasetPG) Get(ctx context.Context, id string) (kdb.Dataset, error) {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return kdb.Dataset{}, xe.Wrap(err)
	}
	defer conn.Release()

	ds, err := scan(conn.QueryRow(
		ctx, `select `+columns+` from "dataset" where "id" = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return kdb.Dataset{}, kpgerr.Missing{Table: "dataset", Identity: id}
	} else if err != nil {
		return kdb.Dataset{}, xe.Wrap(err)
	}
	return ds, nil
}

func (d *datasetPG) Create(ctx context.Context, spec kdb.NewDataset) (kdb.Dataset, error) {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return kdb.Dataset{}, xe.Wrap(err)
	}
	defer conn.Release()

	status := spec.Status
	if status == "" {
		status = kdb.DatasetProcessing
	}
	records := spec.Records
	if records == "" {
		records = "0"
	}

	ds, err := scan(conn.QueryRow(
		ctx,
		`
		insert into "dataset"
			("id", "name", "type", "size", "size_bytes", "records", "status", "file_path", "blob_url")
		values ($1, $2, upper($3), $4, $5, $6, $7, $8, $9)
		returning `+columns,
		d.newId(), strings.TrimSpace(spec.Name), spec.Type, spec.Size, spec.SizeBytes,
		records, string(status), spec.FilePath, spec.BlobURL,
	))
	if err != nil {
		return kdb.Dataset{}, xe.Wrap(err)
	}
	return ds, nil
}

func (d *datasetPG) Update(ctx context.Context, id string, change kdb.DatasetChange) (kdb.Dataset, error) {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return kdb.Dataset{}, xe.Wrap(err)
	}
	defer conn.Release()

	var name, status *string
	if change.Name != nil {
		n := strings.TrimSpace(*change.Name)
		name = &n
	}
	if change.Status != nil {
		s := change.Status.String()
		status = &s
	}

	ds, err := scan(conn.QueryRow(
		ctx,
		`
		update "dataset" set
			"name" = coalesce($2, "name"),
			"type" = coalesce(upper($3), "type"),
			"records" = coalesce($4, "records"),
			"status" = coalesce($5, "status"),
			"updated_at" = now()
		where "id" = $1
		returning `+columns,
		id, name, change.Type, change.Records, status,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return kdb.Dataset{}, kpgerr.Missing{Table: "dataset", Identity: id}
	} else if err != nil {
		return kdb.Dataset{}, xe.Wrap(err)
	}
	return ds, nil
}

func (d *datasetPG) SetStatus(ctx context.Context, id string, status kdb.DatasetStatus) error {
	_, err := d.Update(ctx, id, kdb.DatasetChange{Status: &status})
	return err
}

func (d *datasetPG) Delete(ctx context.Context, id string) (kdb.Dataset, error) {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return kdb.Dataset{}, xe.Wrap(err)
	}
	defer conn.Release()

	ds, err := scan(conn.QueryRow(
		ctx, `delete from "dataset" where "id" = $1 returning `+columns, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return kdb.Dataset{}, kpgerr.Missing{Table: "dataset", Identity: id}
	} else if err != nil {
		return kdb.Dataset{}, xe.Wrap(err)
	}
	return ds, nil
}

// escape wildcards of LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
