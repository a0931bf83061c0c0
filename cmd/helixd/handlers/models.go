package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/helixlab/helix/pkg/api/types/envelope"
	apierr "github.com/helixlab/helix/pkg/api/types/errors"
	apimodels "github.com/helixlab/helix/pkg/api/types/models"
	"github.com/helixlab/helix/pkg/architecture"
	kdb "github.com/helixlab/helix/pkg/db"
	"github.com/labstack/echo/v4"
)

// defaults of draft models.
const (
	DefaultModelType    = "classification"
	DefaultArchitecture = "[64, 128, 1]"
	DefaultActivation   = "ReLU"
	DefaultOptimizer    = "Adam"
	DefaultLearningRate = 0.001
)

const adviceArchitecture = "architecture should be a JSON array of positive integers, like [64, 128, 1]"

const adviceLearningRate = "learning rate must be between 0 and 1 (0 exclusive)"

// computeMetrics runs the calculator, translating parse errors into 400.
func computeMetrics(text string) (architecture.Metrics, error) {
	metrics, err := architecture.ComputeText(text)
	if errors.Is(err, architecture.ErrParse) {
		return architecture.Metrics{}, apierr.BadRequest(adviceArchitecture, err)
	} else if err != nil {
		return architecture.Metrics{}, apierr.InternalServerError(err)
	}
	return metrics, nil
}

func validLearningRate(lr float64) bool {
	return 0 < lr && lr <= 1
}

func decodeBody(c echo.Context, v any) error {
	err := json.NewDecoder(c.Request().Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apierr.NewErrorMessage(
		http.StatusBadRequest,
		"format error",
		apierr.WithAdvice(err.Error()),
		apierr.WithError(err),
	)
}

// nextModelName names a model as "Model N", where N is the number of models including the new one.
func nextModelName(c echo.Context, dbModels kdb.ModelInterface) (string, error) {
	n, err := dbModels.Count(c.Request().Context())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Model %d", n+1), nil
}

func FindModelsHandler(dbModels kdb.ModelInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		found, err := dbModels.Find(ctx, kdb.ModelQuery{
			Type:   c.QueryParam("type"),
			Status: c.QueryParam("status"),
		})
		if err != nil {
			return apierr.InternalServerError(err)
		}

		resp := make([]apimodels.Detail, 0, len(found))
		for _, m := range found {
			resp = append(resp, apimodels.ComposeDetail(m))
		}
		return c.JSON(http.StatusOK, envelope.List(resp))
	}
}

// PostModelHandler creates a draft model. Absent fields are filled with defaults.
func PostModelHandler(dbModels kdb.ModelInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		spec := apimodels.Spec{}
		if err := decodeBody(c, &spec); err != nil {
			return err
		}

		nm := kdb.NewModel{
			Name:         strings.TrimSpace(spec.Name),
			Type:         spec.Type,
			Architecture: string(spec.Architecture),
			Activation:   spec.Activation,
			Optimizer:    spec.Optimizer,
			LearningRate: spec.LearningRate,
			Status:       kdb.ModelDraft,
		}
		if nm.Name == "" {
			name, err := nextModelName(c, dbModels)
			if err != nil {
				return apierr.InternalServerError(err)
			}
			nm.Name = name
		}
		if nm.Type == "" {
			nm.Type = DefaultModelType
		}
		if nm.Architecture == "" {
			nm.Architecture = DefaultArchitecture
		}
		if nm.Activation == "" {
			nm.Activation = DefaultActivation
		}
		if nm.Optimizer == "" {
			nm.Optimizer = DefaultOptimizer
		}
		if nm.LearningRate == 0 {
			nm.LearningRate = DefaultLearningRate
		}
		if !validLearningRate(nm.LearningRate) {
			return apierr.BadRequest(adviceLearningRate, nil)
		}

		metrics, err := computeMetrics(nm.Architecture)
		if err != nil {
			return err
		}
		nm.Metrics = metrics

		m, err := dbModels.Create(ctx, nm)
		if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(
			http.StatusCreated,
			envelope.WithMessage("Model created successfully", apimodels.ComposeDetail(m)),
		)
	}
}

// BuildModelHandler creates a model ready to be trained.
//
// Unlike PostModelHandler, all of the configuration fields are required.
func BuildModelHandler(dbModels kdb.ModelInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		spec := apimodels.BuildSpec{}
		if err := decodeBody(c, &spec); err != nil {
			return err
		}

		missing := []string{}
		if spec.ModelType == "" {
			missing = append(missing, "modelType")
		}
		if spec.Architecture == "" {
			missing = append(missing, "architecture")
		}
		if spec.ActivationFunction == "" {
			missing = append(missing, "activationFunction")
		}
		if spec.Optimizer == "" {
			missing = append(missing, "optimizer")
		}
		if spec.LearningRate == 0 {
			missing = append(missing, "learningRate")
		}
		if len(missing) != 0 {
			return apierr.BadRequest(
				"missing required fields: "+strings.Join(missing, ", "), nil,
			)
		}
		if !validLearningRate(spec.LearningRate) {
			return apierr.BadRequest(adviceLearningRate, nil)
		}

		metrics, err := computeMetrics(string(spec.Architecture))
		if err != nil {
			return err
		}

		name := strings.TrimSpace(spec.ModelName)
		if name == "" {
			if name, err = nextModelName(c, dbModels); err != nil {
				return apierr.InternalServerError(err)
			}
		}

		m, err := dbModels.Create(ctx, kdb.NewModel{
			Name:         name,
			Type:         spec.ModelType,
			Architecture: string(spec.Architecture),
			Activation:   spec.ActivationFunction,
			Optimizer:    spec.Optimizer,
			LearningRate: spec.LearningRate,
			Status:       kdb.ModelReady,
			Metrics:      metrics,
		})
		if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(
			http.StatusCreated,
			envelope.WithMessage("Model built successfully", apimodels.ComposeDetail(m)),
		)
	}
}

func GetModelHandler(dbModels kdb.ModelInterface, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		m, err := dbModels.Get(ctx, c.Param(paramKey))
		if errors.Is(err, kdb.ErrMissing) {
			return apierr.NotFound("model")
		} else if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, envelope.Of(apimodels.ComposeDetail(m)))
	}
}

// PutModelHandler updates a model partially.
//
// When architecture is changed, metrics are recomputed.
func PutModelHandler(dbModels kdb.ModelInterface, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		modelId := c.Param(paramKey)

		req := apimodels.Change{}
		if err := decodeBody(c, &req); err != nil {
			return err
		}

		change := kdb.ModelChange{
			Name:         req.Name,
			Type:         req.Type,
			Activation:   req.Activation,
			Optimizer:    req.Optimizer,
			LearningRate: req.LearningRate,
			Accuracy:     req.Accuracy,
		}
		if req.LearningRate != nil && !validLearningRate(*req.LearningRate) {
			return apierr.BadRequest(adviceLearningRate, nil)
		}
		if req.Status != nil {
			st, err := kdb.AsModelStatus(*req.Status)
			if err != nil {
				return apierr.BadRequest(
					"status should be one of draft, ready, training or trained", err,
				)
			}
			change.Status = &st
		}
		if req.Architecture != nil {
			arch := string(*req.Architecture)
			metrics, err := computeMetrics(arch)
			if err != nil {
				return err
			}
			change.Architecture = &arch
			change.Metrics = &metrics
		}
		if change.Empty() {
			return apierr.BadRequest("nothing to update", nil)
		}

		m, err := dbModels.Update(ctx, modelId, change)
		if errors.Is(err, kdb.ErrMissing) {
			return apierr.NotFound("model")
		} else if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(
			http.StatusOK,
			envelope.WithMessage("Model updated successfully", apimodels.ComposeDetail(m)),
		)
	}
}

func DeleteModelHandler(dbModels kdb.ModelInterface, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		m, err := dbModels.Delete(ctx, c.Param(paramKey))
		if errors.Is(err, kdb.ErrMissing) {
			return apierr.NotFound("model")
		} else if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(
			http.StatusOK,
			envelope.WithMessage("Model deleted successfully", apimodels.ComposeDetail(m)),
		)
	}
}

// ArchitectureMetricsHandler computes metrics of the architecture in the request body.
//
// Nothing is stored.
func ArchitectureMetricsHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		req := apimodels.MetricsRequest{}
		if err := decodeBody(c, &req); err != nil {
			return err
		}
		metrics, err := computeMetrics(string(req.Architecture))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, envelope.Of(metrics))
	}
}
