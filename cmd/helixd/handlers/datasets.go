package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"slices"
	"strings"
	"time"

	apidatasets "github.com/helixlab/helix/pkg/api/types/datasets"
	"github.com/helixlab/helix/pkg/api/types/envelope"
	apierr "github.com/helixlab/helix/pkg/api/types/errors"
	"github.com/helixlab/helix/pkg/blob"
	kdb "github.com/helixlab/helix/pkg/db"
	kstrings "github.com/helixlab/helix/pkg/utils/strings"
	"github.com/labstack/echo/v4"
)

// DatasetFinisher takes datasets just uploaded, and activates them later.
type DatasetFinisher interface {
	Schedule(datasetId string)
}

func FindDatasetsHandler(dbDatasets kdb.DatasetInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		found, err := dbDatasets.Find(ctx, kdb.DatasetQuery{
			Type:   c.QueryParam("type"),
			Status: c.QueryParam("status"),
			Search: c.QueryParam("search"),
		})
		if err != nil {
			return apierr.InternalServerError(err)
		}

		resp := make([]apidatasets.Detail, 0, len(found))
		for _, d := range found {
			resp = append(resp, apidatasets.ComposeDetail(d))
		}
		return c.JSON(http.StatusOK, envelope.List(resp))
	}
}

// PostDatasetHandler accepts a dataset file in the multipart form field "file".
//
// The file is stored as blob "datasets/{unix millis}_{file name}", and
// a dataset record is created as Processing.
func PostDatasetHandler(
	dbDatasets kdb.DatasetInterface,
	store blob.Store,
	finisher DatasetFinisher,
	allowedExtensions []string,
	clock func() time.Time,
) echo.HandlerFunc {
	advice := fmt.Sprintf(
		"file type not supported. allowed: %s", strings.Join(allowedExtensions, ", "),
	)

	return func(c echo.Context) error {
		ctx := c.Request().Context()

		fh, err := c.FormFile("file")
		if err != nil {
			return apierr.BadRequest(`no file uploaded. put a file in the form field "file"`, err)
		}

		ext := kstrings.Ext(fh.Filename)
		if !slices.Contains(allowedExtensions, ext) {
			return apierr.BadRequest(advice, nil)
		}

		basename := kstrings.BaseName(fh.Filename)
		pathname := fmt.Sprintf("datasets/%d_%s", clock().UnixMilli(), basename)
		contentType := fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = echo.MIMEOctetStream
		}

		f, err := fh.Open()
		if err != nil {
			return apierr.InternalServerError(err)
		}
		defer f.Close()

		obj, err := store.Put(ctx, pathname, f, contentType)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		typ := strings.ToUpper(ext)
		if typ == "" {
			typ = "UNKNOWN"
		}
		ds, err := dbDatasets.Create(ctx, kdb.NewDataset{
			Name:      strings.TrimSuffix(basename, path.Ext(basename)),
			Type:      typ,
			Size:      FormatSize(obj.Size),
			SizeBytes: obj.Size,
			Status:    kdb.DatasetProcessing,
			FilePath:  obj.URL,
			BlobURL:   obj.URL,
		})
		if err != nil {
			if derr := store.Delete(ctx, obj.URL); derr != nil {
				c.Logger().Warnf("orphan blob is left: %s (%s)", obj.URL, derr)
			}
			return apierr.InternalServerError(err)
		}

		finisher.Schedule(ds.Id)

		return c.JSON(
			http.StatusCreated,
			envelope.WithMessage("Dataset uploaded successfully", apidatasets.ComposeDetail(ds)),
		)
	}
}

func GetDatasetHandler(dbDatasets kdb.DatasetInterface, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		ds, err := dbDatasets.Get(ctx, c.Param(paramKey))
		if errors.Is(err, kdb.ErrMissing) {
			return apierr.NotFound("dataset")
		} else if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, envelope.Of(apidatasets.ComposeDetail(ds)))
	}
}

func PutDatasetHandler(dbDatasets kdb.DatasetInterface, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		datasetId := c.Param(paramKey)

		req := apidatasets.Change{}
		if err := decodeBody(c, &req); err != nil {
			return err
		}

		change := kdb.DatasetChange{Name: req.Name, Type: req.Type, Records: req.Records}
		if req.Status != nil {
			st, err := kdb.AsDatasetStatus(*req.Status)
			if err != nil {
				return apierr.BadRequest(
					"status should be one of Processing, Active, Inactive or Error", err,
				)
			}
			change.Status = &st
		}
		if change.Empty() {
			return apierr.BadRequest("nothing to update. pass one of name, type, records or status", nil)
		}

		ds, err := dbDatasets.Update(ctx, datasetId, change)
		if errors.Is(err, kdb.ErrMissing) {
			return apierr.NotFound("dataset")
		} else if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(
			http.StatusOK,
			envelope.WithMessage("Dataset updated successfully", apidatasets.ComposeDetail(ds)),
		)
	}
}

// DeleteDatasetHandler removes the blob of the dataset, then the record.
//
// Failure on removing the blob is logged and ignored.
func DeleteDatasetHandler(dbDatasets kdb.DatasetInterface, store blob.Store, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		datasetId := c.Param(paramKey)

		ds, err := dbDatasets.Get(ctx, datasetId)
		if errors.Is(err, kdb.ErrMissing) {
			return apierr.NotFound("dataset")
		} else if err != nil {
			return apierr.InternalServerError(err)
		}

		if ds.BlobURL != "" {
			if err := store.Delete(ctx, ds.BlobURL); err != nil {
				c.Logger().Warnf("failed to delete blob of dataset %s: %s", datasetId, err)
			}
		}

		deleted, err := dbDatasets.Delete(ctx, datasetId)
		if errors.Is(err, kdb.ErrMissing) {
			return apierr.NotFound("dataset")
		} else if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(
			http.StatusOK,
			envelope.WithMessage("Dataset deleted successfully", apidatasets.ComposeDetail(deleted)),
		)
	}
}

const mb = 1024 * 1024

// FormatSize makes size human readable, like "1.20 MB" or "2.00 GB".
func FormatSize(bytes int64) string {
	m := float64(bytes) / mb
	if m < 1024 {
		return fmt.Sprintf("%.2f MB", m)
	}
	return fmt.Sprintf("%.2f GB", m/1024)
}
