package main

import (
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/helixlab/helix/cmd/helixd/handlers"
	"github.com/helixlab/helix/pkg/blob"
	kcx "github.com/helixlab/helix/pkg/configs/extras"
	kdb "github.com/helixlab/helix/pkg/db"
	"github.com/helixlab/helix/pkg/echoutil"
	"github.com/helixlab/helix/pkg/trainsvc"
	kstrings "github.com/helixlab/helix/pkg/utils/strings"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Deps are collaborators of the server.
type Deps struct {
	Datasets kdb.DatasetInterface
	Models   kdb.ModelInterface

	Blob blob.Store

	// BlobHandler serves blobs under BlobPrefix. Optional.
	BlobHandler http.Handler
	BlobPrefix  string

	Training trainsvc.Client

	// Proxy relays requests to the training service and extra endpoints.
	Proxy handlers.ProxyFunc

	Finisher          handlers.DatasetFinisher
	AllowedExtensions []string
	Clock             func() time.Time

	Extras kcx.Config
}

// api builds a route path under /api. Routes end with "/", since requests are.
func api(elem ...string) string {
	return kstrings.SupplySuffix(path.Join(append([]string{"/api"}, elem...)...), "/")
}

// NewServer returns echo server with logging set up, and without routes.
func NewServer(loglevel string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	echoutil.SetLevel(e, loglevel)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		e.DefaultHTTPErrorHandler(err, c)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)
	return e
}

// Mount registers routes of helixd to e.
//
// Paths of requests are normalized to end with "/", except ones of blobs.
func Mount(e *echo.Echo, deps Deps) error {
	blobPrefix := kstrings.SupplySuffix(deps.BlobPrefix, "/")
	e.Pre(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return deps.BlobHandler != nil && strings.HasPrefix(c.Request().URL.Path, blobPrefix)
		},
	}))

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	{
		datasetId := "datasetId"
		e.GET(api("datasets"), handlers.FindDatasetsHandler(deps.Datasets))
		e.POST(api("datasets"), handlers.PostDatasetHandler(
			deps.Datasets, deps.Blob, deps.Finisher, deps.AllowedExtensions, clock,
		))
		e.GET(api("datasets", ":"+datasetId), handlers.GetDatasetHandler(deps.Datasets, datasetId))
		e.PUT(api("datasets", ":"+datasetId), handlers.PutDatasetHandler(deps.Datasets, datasetId))
		e.DELETE(api("datasets", ":"+datasetId), handlers.DeleteDatasetHandler(deps.Datasets, deps.Blob, datasetId))
	}

	{
		modelId := "modelId"
		e.GET(api("models"), handlers.FindModelsHandler(deps.Models))
		e.POST(api("models"), handlers.PostModelHandler(deps.Models))
		e.POST(api("models", "build"), handlers.BuildModelHandler(deps.Models))
		e.GET(api("models", ":"+modelId), handlers.GetModelHandler(deps.Models, modelId))
		e.PUT(api("models", ":"+modelId), handlers.PutModelHandler(deps.Models, modelId))
		e.DELETE(api("models", ":"+modelId), handlers.DeleteModelHandler(deps.Models, modelId))
		e.GET(
			api("models", ":"+modelId, "info"),
			handlers.TrainingProxyHandler(deps.Training, deps.Proxy, "models", ":"+modelId),
		)
	}

	e.POST(api("architecture", "metrics"), handlers.ArchitectureMetricsHandler())

	{
		e.POST(api("training", "upload"), handlers.TrainingProxyHandler(deps.Training, deps.Proxy, "upload"))
		e.POST(api("training", "start"), handlers.StartTrainingHandler(deps.Training))
		e.GET(
			api("training", "progress", ":jobId"),
			handlers.TrainingProxyHandler(deps.Training, deps.Proxy, "progress", ":jobId"),
		)
		e.GET(api("training", "jobs"), handlers.TrainingProxyHandler(deps.Training, deps.Proxy, "jobs"))
	}

	e.POST(api("upload"), handlers.UploadHandler(deps.Blob))

	if deps.BlobHandler != nil {
		e.GET(blobPrefix+"*", echo.WrapHandler(deps.BlobHandler))
	}

	reserved := []string{"/api"}
	if deps.BlobHandler != nil {
		reserved = append(reserved, blobPrefix)
	}
	if err := deps.Extras.Check(reserved...); err != nil {
		return err
	}
	for _, ex := range deps.Extras.Endpoints {
		e.Logger.Infof("register extra api: %s => %s", ex.Path, ex.ProxyTo)
		if err := handlers.ExtraAPI(e, ex, deps.Proxy); err != nil {
			return err
		}
	}

	return nil
}
