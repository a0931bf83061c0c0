package model

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

type modelPG struct { // implements kdb.ModelInterface
	pool  kpool.Pool
	newId func() string
}

var _ kdb.ModelInterface = &modelPG{}

type Option func(*modelPG) *modelPG

// WithIdGenerator replaces the generator of model ids.
//
// By default, ids are random UUIDs.
func WithIdGenerator(gen func() string) Option {
	return func(m *modelPG) *modelPG {
		m.newId = gen
		return m
	}
}

func New(pool kpool.Pool, options ...Option) kdb.ModelInterface {
	m := &modelPG{
		pool:  pool,
		newId: func() string { return uuid.New().String() },
	}
	for _, opt := range options {
		m = opt(m)
	}
	return m
}

const columns = `
	"id", "name", "type", "architecture", "activation", "optimizer", "learning_rate",
	"accuracy", "status",
	"total_parameters", "trainable_parameters", "model_size_mb", "layer_count",
	"created_at", "updated_at"
`

func scan(row pgx.Row) (kdb.Model, error) {
	m := kdb.Model{}
	var status string
	if err := row.Scan(
		&m.Id, &m.Name, &m.Type, &m.Architecture, &m.Activation, &m.Optimizer, &m.LearningRate,
		&m.Accuracy, &status,
		&m.Metrics.TotalParameters, &m.Metrics.TrainableParameters,
		&m.Metrics.ModelSizeMB, &m.Metrics.LayerCount,
		&m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return kdb.Model{}, err
	}
	m.Status = kdb.ModelStatus(status)
	return m, nil
}

func (m *modelPG) Find(ctx context.Context, query kdb.ModelQuery) ([]kdb.Model, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer conn.Release()

	var typ, status *string
	if !query.TypeAll() {
		typ = &query.Type
	}
	if !query.StatusAll() {
		status = &query.Status
	}

	rows, err := conn.Query(
		ctx,
		`
		select `+columns+`
		from "model"
		where
			($1::varchar is null or "type" = $1)
			and ($2::varchar is null or "status" = $2)
		order by "created_at" desc, "id" desc
		`,
		typ, status,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	found := []kdb.Model{}
	for rows.Next() {
		model, err := scan(rows)
		if err != nil {
			return nil, xe.Wrap(err)
		}
		found = append(found, model)
	}
	if err := rows.Err(); err != nil {
		return nil, xe.Wrap(err)
	}
	return found, nil
}

func (m *modelPG) Get(ctx context.Context, id string) (kdb.Model, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return kdb.Model{}, xe.Wrap(err)
	}
	defer conn.Release()

	model, err := scan(conn.QueryRow(
		ctx, `select `+columns+` from "model" where "id" = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return kdb.Model{}, kpgerr.Missing{Table: "model", Identity: id}
	} else if err != nil {
		return kdb.Model{}, xe.Wrap(err)
	}
	return model, nil
}

func (m *modelPG) Create(ctx context.Context, spec kdb.NewModel) (kdb.Model, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return kdb.Model{}, xe.Wrap(err)
	}
	defer conn.Release()

	status := spec.Status
	if status == "" {
		status = kdb.ModelDraft
	}
	accuracy := spec.Accuracy
	if accuracy == "" {
		accuracy = "0%"
	}

	model, err := scan(conn.QueryRow(
		ctx,
		`
		insert into "model" (
			"id", "name", "type", "architecture", "activation", "optimizer", "learning_rate",
			"accuracy", "status",
			"total_parameters", "trainable_parameters", "model_size_mb", "layer_count"
		)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		returning `+columns,
		m.newId(), strings.TrimSpace(spec.Name), spec.Type, spec.Architecture,
		spec.Activation, spec.Optimizer, spec.LearningRate,
		accuracy, string(status),
		spec.Metrics.TotalParameters, spec.Metrics.TrainableParameters,
		spec.Metrics.ModelSizeMB, spec.Metrics.LayerCount,
	))
	if err != nil {
		return kdb.Model{}, xe.Wrap(err)
	}
	return model, nil
}

func (m *modelPG) Update(ctx context.Context, id string, change kdb.ModelChange) (kdb.Model, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return kdb.Model{}, xe.Wrap(err)
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
	var total, trainable *int64
	var size *float64
	var layers *int
	if mt := change.Metrics; mt != nil {
		total, trainable = &mt.TotalParameters, &mt.TrainableParameters
		size, layers = &mt.ModelSizeMB, &mt.LayerCount
	}

	model, err := scan(conn.QueryRow(
		ctx,
		`
		update "model" set
			"name" = coalesce($2, "name"),
			"type" = coalesce($3, "type"),
			"architecture" = coalesce($4, "architecture"),
			"activation" = coalesce($5, "activation"),
			"optimizer" = coalesce($6, "optimizer"),
			"learning_rate" = coalesce($7, "learning_rate"),
			"accuracy" = coalesce($8, "accuracy"),
			"status" = coalesce($9, "status"),
			"total_parameters" = coalesce($10, "total_parameters"),
			"trainable_parameters" = coalesce($11, "trainable_parameters"),
			"model_size_mb" = coalesce($12, "model_size_mb"),
			"layer_count" = coalesce($13, "layer_count"),
			"updated_at" = now()
		where "id" = $1
		returning `+columns,
		id, name, change.Type, change.Architecture, change.Activation, change.Optimizer,
		change.LearningRate, change.Accuracy, status,
		total, trainable, size, layers,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return kdb.Model{}, kpgerr.Missing{Table: "model", Identity: id}
	} else if err != nil {
		return kdb.Model{}, xe.Wrap(err)
	}
	return model, nil
}

func (m *modelPG) Delete(ctx context.Context, id string) (kdb.Model, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return kdb.Model{}, xe.Wrap(err)
	}
	defer conn.Release()

	model, err := scan(conn.QueryRow(
		ctx, `delete from "model" where "id" = $1 returning `+columns, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return kdb.Model{}, kpgerr.Missing{Table: "model", Identity: id}
	} else if err != nil {
		return kdb.Model{}, xe.Wrap(err)
	}
	return model, nil
}

func (m *modelPG) Count(ctx context.Context) (int, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return 0, xe.Wrap(err)
	}
	defer conn.Release()

	var count int
	if err := conn.QueryRow(ctx, `select count(*) from "model"`).Scan(&count); err != nil {
		return 0, xe.Wrap(err)
	}
	return count, nil
}
