package db

import (
	"context"
	"fmt"
	"time"

	"github.com/helixlab/helix/pkg/architecture"
)

type ModelStatus string

const (
	ModelDraft    ModelStatus = "draft"
	ModelReady    ModelStatus = "ready"
	ModelTraining ModelStatus = "training"
	ModelTrained  ModelStatus = "trained"
)

func (s ModelStatus) String() string {
	return string(s)
}

func AsModelStatus(s string) (ModelStatus, error) {
	switch st := ModelStatus(s); st {
	case ModelDraft, ModelReady, ModelTraining, ModelTrained:
		return st, nil
	default:
		return st, fmt.Errorf("%w: model: %s", ErrInvalidStatus, s)
	}
}

type Model struct {
	Id   string
	Name string

	// kind of task, like "classification" or "regression".
	Type string

	// architecture text, like "[64, 128, 1]".
	Architecture string
	Activation   string
	Optimizer    string
	LearningRate float64

	// accuracy in text, like "96.4%".
	Accuracy string
	Status   ModelStatus

	Metrics architecture.Metrics

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (m *Model) Equal(o *Model) bool {
	if m == nil || o == nil {
		return m == nil && o == nil
	}
	return m.Id == o.Id &&
		m.Name == o.Name &&
		m.Type == o.Type &&
		m.Architecture == o.Architecture &&
		m.Activation == o.Activation &&
		m.Optimizer == o.Optimizer &&
		m.LearningRate == o.LearningRate &&
		m.Accuracy == o.Accuracy &&
		m.Status == o.Status &&
		m.Metrics == o.Metrics &&
		m.CreatedAt.Equal(o.CreatedAt) &&
		m.UpdatedAt.Equal(o.UpdatedAt)
}

type NewModel struct {
	Name         string
	Type         string
	Architecture string
	Activation   string
	Optimizer    string
	LearningRate float64
	Accuracy     string
	Status       ModelStatus
	Metrics      architecture.Metrics
}

// ModelQuery is a filter for Find.
//
// Empty or "all" means no filter for each field.
type ModelQuery struct {
	Type   string
	Status string
}

func (q ModelQuery) TypeAll() bool   { return queryAll(q.Type) }
func (q ModelQuery) StatusAll() bool { return queryAll(q.Status) }

// ModelChange is a partial update of Model.
//
// nil fields are not changed.
//
// Architecture and Metrics should be changed together.
type ModelChange struct {
	Name         *string
	Type         *string
	Architecture *string
	Activation   *string
	Optimizer    *string
	LearningRate *float64
	Accuracy     *string
	Status       *ModelStatus
	Metrics      *architecture.Metrics
}

func (c ModelChange) Empty() bool {
	return c.Name == nil && c.Type == nil && c.Architecture == nil &&
		c.Activation == nil && c.Optimizer == nil && c.LearningRate == nil &&
		c.Accuracy == nil && c.Status == nil && c.Metrics == nil
}

type ModelInterface interface {
	// Find models matching the query, newest first.
	Find(ctx context.Context, query ModelQuery) ([]Model, error)

	// Get a model.
	//
	// If it is missing, ErrMissing is returned.
	Get(ctx context.Context, id string) (Model, error)

	// Create a new model.
	Create(ctx context.Context, spec NewModel) (Model, error)

	// Update a model partially.
	//
	// Returns updated model. If it is missing, ErrMissing is returned.
	Update(ctx context.Context, id string, change ModelChange) (Model, error)

	// Delete a model.
	//
	// Returns the model just deleted. If it is missing, ErrMissing is returned.
	Delete(ctx context.Context, id string) (Model, error)

	// Count returns the number of models. It is used for default model names.
	Count(ctx context.Context) (int, error)
}
