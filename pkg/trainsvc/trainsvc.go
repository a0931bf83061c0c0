// Package trainsvc talks to the training service, the Python process which
// trains models on uploaded datasets.
package trainsvc

import (
	"context"
	"errors"
)

// transport-level failure on the way to the training service.
//
// Error responses from the service itself are not ErrUnavailable.
var ErrUnavailable = errors.New("training service unavailable")

const (
	DefaultEpochs          = 100
	DefaultBatchSize       = 32
	DefaultValidationSplit = 0.2
	DefaultLearningRate    = 0.001
)

// StartRequest is the request body of training from dashboard.
//
// Zero values mean "use default".
type StartRequest struct {
	DatasetId       string  `json:"datasetId"`
	DatasetURL      string  `json:"dataset_url"`
	Epochs          int     `json:"epochs"`
	BatchSize       int     `json:"batchSize"`
	ValidationSplit float64 `json:"validationSplit"`
	GpuEnabled      bool    `json:"gpuEnabled"`
}

// TrainPayload is the request body which the training service accepts at /train.
type TrainPayload struct {
	DatasetId       string  `json:"dataset_id"`
	DatasetURL      string  `json:"dataset_url"`
	Epochs          int     `json:"epochs"`
	BatchSize       int     `json:"batch_size"`
	ValidationSplit float64 `json:"validation_split"`
	GpuEnabled      bool    `json:"gpu_enabled"`
	LearningRate    float64 `json:"learning_rate"`
}

// Payload translates the request with defaults.
func (r StartRequest) Payload() TrainPayload {
	p := TrainPayload{
		DatasetId:       r.DatasetId,
		DatasetURL:      r.DatasetURL,
		Epochs:          r.Epochs,
		BatchSize:       r.BatchSize,
		ValidationSplit: r.ValidationSplit,
		GpuEnabled:      r.GpuEnabled,
		LearningRate:    DefaultLearningRate,
	}
	if p.Epochs == 0 {
		p.Epochs = DefaultEpochs
	}
	if p.BatchSize == 0 {
		p.BatchSize = DefaultBatchSize
	}
	if p.ValidationSplit == 0 {
		p.ValidationSplit = DefaultValidationSplit
	}
	return p
}

// Response is a response from the training service, as it is.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

type Client interface {
	// StartTraining posts the translated request to /train.
	//
	// Non-2xx responses are returned as Response, not error.
	// When the service cannot be reached, ErrUnavailable is returned.
	StartTraining(ctx context.Context, req StartRequest) (Response, error)

	// Endpoint returns the URL of the service for the path elements.
	//
	// Each element is escaped as a path segment.
	Endpoint(elem ...string) string
}
