package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/helixlab/helix/pkg/architecture"
	kdb "github.com/helixlab/helix/pkg/db"
	"github.com/helixlab/helix/pkg/utils/rfctime"
)

type Detail struct {
	Id           string  `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Architecture string  `json:"architecture"`
	Activation   string  `json:"activation"`
	Optimizer    string  `json:"optimizer"`
	LearningRate float64 `json:"learningRate"`
	Accuracy     string  `json:"accuracy"`
	Status       string  `json:"status"`

	// flattened metrics for the dashboard's model table.
	TotalParams     int64  `json:"totalParams"`
	TrainableParams int64  `json:"trainableParams"`
	ModelSize       string `json:"modelSize"`

	Metrics architecture.Metrics `json:"metrics"`

	CreatedAt rfctime.RFC3339 `json:"createdAt"`
	UpdatedAt rfctime.RFC3339 `json:"updatedAt"`
}

func (m *Detail) Equal(o *Detail) bool {
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
		m.TotalParams == o.TotalParams &&
		m.TrainableParams == o.TrainableParams &&
		m.ModelSize == o.ModelSize &&
		m.Metrics == o.Metrics &&
		m.CreatedAt.Equal(&o.CreatedAt) &&
		m.UpdatedAt.Equal(&o.UpdatedAt)
}

func ComposeDetail(m kdb.Model) Detail {
	return Detail{
		Id:              m.Id,
		Name:            m.Name,
		Type:            m.Type,
		Architecture:    m.Architecture,
		Activation:      m.Activation,
		Optimizer:       m.Optimizer,
		LearningRate:    m.LearningRate,
		Accuracy:        m.Accuracy,
		Status:          m.Status.String(),
		TotalParams:     m.Metrics.TotalParameters,
		TrainableParams: m.Metrics.TrainableParameters,
		ModelSize:       strconv.FormatFloat(m.Metrics.ModelSizeMB, 'f', -1, 64) + " MB",
		Metrics:         m.Metrics,
		CreatedAt:       rfctime.RFC3339(m.CreatedAt),
		UpdatedAt:       rfctime.RFC3339(m.UpdatedAt),
	}
}

// ArchitectureText is architecture in request bodies.
//
// Both of a string ("[64, 128, 1]") and a bare array ([64, 128, 1]) are accepted.
// An array is kept as its JSON text, to be parsed by package architecture later.
type ArchitectureText string

func (a *ArchitectureText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		return nil
	case len(b) != 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = ArchitectureText(s)
		return nil
	case len(b) != 0 && b[0] == '[':
		*a = ArchitectureText(b)
		return nil
	default:
		return fmt.Errorf("architecture should be a string or an array: %s", b)
	}
}

// Spec is a request body to create a draft model.
//
// Absent fields are filled with defaults.
type Spec struct {
	Name         string           `json:"name"`
	Type         string           `json:"type"`
	Architecture ArchitectureText `json:"architecture"`
	Activation   string           `json:"activation"`
	Optimizer    string           `json:"optimizer"`
	LearningRate float64          `json:"learningRate"`
}

// BuildSpec is a request body to build a model ready to be trained.
type BuildSpec struct {
	// optional. When empty, it is named as "Model N".
	ModelName string `json:"modelName"`

	ModelType          string           `json:"modelType"`
	Architecture       ArchitectureText `json:"architecture"`
	ActivationFunction string           `json:"activationFunction"`
	Optimizer          string           `json:"optimizer"`
	LearningRate       float64          `json:"learningRate"`
}

// Change is a request body to update a model.
//
// Absent fields are not changed.
type Change struct {
	Name         *string           `json:"name,omitempty"`
	Type         *string           `json:"type,omitempty"`
	Architecture *ArchitectureText `json:"architecture,omitempty"`
	Activation   *string           `json:"activation,omitempty"`
	Optimizer    *string           `json:"optimizer,omitempty"`
	LearningRate *float64          `json:"learningRate,omitempty"`
	Accuracy     *string           `json:"accuracy,omitempty"`
	Status       *string           `json:"status,omitempty"`
}

// MetricsRequest is a request body of the architecture metrics calculator.
type MetricsRequest struct {
	Architecture ArchitectureText `json:"architecture"`
}
