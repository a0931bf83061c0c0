package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	apierr "github.com/helixlab/helix/pkg/api/types/errors"
	blobfs "github.com/helixlab/helix/pkg/blob/fs"
	kcx "github.com/helixlab/helix/pkg/configs/extras"
	kdb "github.com/helixlab/helix/pkg/db"
	dbmock "github.com/helixlab/helix/pkg/db/mocks"
	"github.com/helixlab/helix/pkg/echoutil"
	"github.com/helixlab/helix/pkg/trainsvc"
	"github.com/helixlab/helix/pkg/utils/try"
	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
)

type nopFinisher struct{}

func (nopFinisher) Schedule(string) {}

func setup(t *testing.T, extras kcx.Config) (*echo.Echo, *dbmock.DatasetInterface, *dbmock.ModelInterface, afero.Fs) {
	t.Helper()
	mem := afero.NewMemMapFs()
	store := blobfs.New(mem, "/blobs/")
	datasets := dbmock.NewDatasetInterface()
	models := dbmock.NewModelInterface()

	e := NewServer("off")
	err := Mount(e, Deps{
		Datasets:          datasets,
		Models:            models,
		Blob:              store,
		BlobHandler:       store.Handler(),
		BlobPrefix:        "/blobs/",
		Training:          trainsvc.NewMock("http://trainer.invalid"),
		Proxy:             echoutil.Proxy,
		Finisher:          nopFinisher{},
		AllowedExtensions: []string{"csv"},
		Clock:             func() time.Time { return time.UnixMilli(1700000000000) },
		Extras:            extras,
	})
	if err != nil {
		t.Fatal(err)
	}
	return e, datasets, models, mem
}

func TestMount(t *testing.T) {
	t.Run("paths without trailing slash are routed", func(t *testing.T) {
		e, _, models, _ := setup(t, kcx.Config{})
		models.Impl.Find = func(context.Context, kdb.ModelQuery) ([]kdb.Model, error) {
			return []kdb.Model{}, nil
		}

		resp := httptest.NewRecorder()
		e.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/models?type=regression", nil))

		if resp.Code != http.StatusOK {
			t.Fatalf("status: %d (%s)", resp.Code, resp.Body.String())
		}
		if models.Calls.Find.Times() != 1 || models.Calls.Find[0].Type != "regression" {
			t.Errorf("find: %+v", models.Calls.Find)
		}
	})

	t.Run("build is not taken as a model id", func(t *testing.T) {
		e, _, models, _ := setup(t, kcx.Config{})
		models.Impl.Count = func(context.Context) (int, error) { return 0, nil }
		models.Impl.Create = func(_ context.Context, spec kdb.NewModel) (kdb.Model, error) {
			return kdb.Model{Id: "model-1", Name: spec.Name, Status: spec.Status, Metrics: spec.Metrics}, nil
		}

		resp := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/models/build", strings.NewReader(`{
			"modelType": "classification", "architecture": "[4, 1]",
			"activationFunction": "ReLU", "optimizer": "Adam", "learningRate": 0.1
		}`))
		e.ServeHTTP(resp, req)

		if resp.Code != http.StatusCreated {
			t.Fatalf("status: %d (%s)", resp.Code, resp.Body.String())
		}
	})

	t.Run("errors are written as reason and advice", func(t *testing.T) {
		e, _, _, _ := setup(t, kcx.Config{})

		resp := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/architecture/metrics", strings.NewReader(`{"architecture": "[]"}`))
		e.ServeHTTP(resp, req)

		if resp.Code != http.StatusBadRequest {
			t.Fatalf("status: %d (%s)", resp.Code, resp.Body.String())
		}
		got := apierr.ErrorMessage{}
		if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
			t.Fatalf("not an error message: %s (%s)", err, resp.Body.String())
		}
		if got.Reason != "bad request" || !strings.Contains(got.Advice, "[64, 128, 1]") {
			t.Errorf("unexpected: %+v", got)
		}
	})

	t.Run("blobs are served as they are", func(t *testing.T) {
		e, _, _, mem := setup(t, kcx.Config{})
		if err := mem.MkdirAll("/datasets", 0o755); err != nil {
			t.Fatal(err)
		}
		if err := afero.WriteFile(mem, "/datasets/1_genome.csv", []byte("a,b\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		resp := httptest.NewRecorder()
		e.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/blobs/datasets/1_genome.csv", nil))

		if resp.Code != http.StatusOK || resp.Body.String() != "a,b\n" {
			t.Errorf("response: %d %q", resp.Code, resp.Body.String())
		}
	})

	t.Run("extra endpoints may not take /api", func(t *testing.T) {
		e := NewServer("off")
		err := Mount(e, Deps{
			Training: trainsvc.NewMock("http://trainer.invalid"),
			Proxy:    echoutil.Proxy,
			Extras: kcx.Config{Endpoints: []kcx.Endpoint{
				{Path: "/api/extra", ProxyTo: try.To(url.Parse("http://example.com")).OrFatal(t)},
			}},
		})
		if err == nil {
			t.Error("no error")
		}
	})
}
