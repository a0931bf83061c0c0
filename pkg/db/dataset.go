package db

import (
	"context"
	"fmt"
	"time"
)

type DatasetStatus string

const (
	// uploaded, and not ready to be used yet.
	DatasetProcessing DatasetStatus = "Processing"
	DatasetActive     DatasetStatus = "Active"
	DatasetInactive   DatasetStatus = "Inactive"
	DatasetError      DatasetStatus = "Error"
)

func (s DatasetStatus) String() string {
	return string(s)
}

// AsDatasetStatus converts string to DatasetStatus.
//
// When s is not a known status, it returns ErrInvalidStatus.
func AsDatasetStatus(s string) (DatasetStatus, error) {
	switch st := DatasetStatus(s); st {
	case DatasetProcessing, DatasetActive, DatasetInactive, DatasetError:
		return st, nil
	default:
		return st, fmt.Errorf("%w: dataset: %s", ErrInvalidStatus, s)
	}
}

type Dataset struct {
	Id   string
	Name string

	// file type in upper case, like "CSV"
	Type string

	// human readable size, like "1.20 MB"
	Size      string
	SizeBytes int64

	Records string
	Status  DatasetStatus

	FilePath string
	BlobURL  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d *Dataset) Equal(o *Dataset) bool {
	if d == nil || o == nil {
		return d == nil && o == nil
	}
	return d.Id == o.Id &&
		d.Name == o.Name &&
		d.Type == o.Type &&
		d.Size == o.Size &&
		d.SizeBytes == o.SizeBytes &&
		d.Records == o.Records &&
		d.Status == o.Status &&
		d.FilePath == o.FilePath &&
		d.BlobURL == o.BlobURL &&
		d.CreatedAt.Equal(o.CreatedAt) &&
		d.UpdatedAt.Equal(o.UpdatedAt)
}

// NewDataset is a spec of a Dataset to be created.
type NewDataset struct {
	Name      string
	Type      string
	Size      string
	SizeBytes int64
	Records   string
	Status    DatasetStatus
	FilePath  string
	BlobURL   string
}

// DatasetQuery is a filter for Find.
//
// Empty or "all" means no filter for each field.
type DatasetQuery struct {
	Type   string
	Status string

	// substring of name, case insensitive.
	Search string
}

func (q DatasetQuery) TypeAll() bool   { return queryAll(q.Type) }
func (q DatasetQuery) StatusAll() bool { return queryAll(q.Status) }

// DatasetChange is a partial update of Dataset.
//
// nil fields are not changed.
type DatasetChange struct {
	Name    *string
	Type    *string
	Records *string
	Status  *DatasetStatus
}

func (c DatasetChange) Empty() bool {
	return c.Name == nil && c.Type == nil && c.Records == nil && c.Status == nil
}

type DatasetInterface interface {
	// Find datasets matching the query, newest first.
	Find(ctx context.Context, query DatasetQuery) ([]Dataset, error)

	// Get a dataset.
	//
	// If it is missing, ErrMissing is returned.
	Get(ctx context.Context, id string) (Dataset, error)

	// Create a new dataset.
	//
	// Returns created dataset with its id and timestamps.
	Create(ctx context.Context, spec NewDataset) (Dataset, error)

	// Update a dataset partially.
	//
	// Returns updated dataset. If it is missing, ErrMissing is returned.
	Update(ctx context.Context, id string, change DatasetChange) (Dataset, error)

	// SetStatus is a shorthand of Update with status only.
	SetStatus(ctx context.Context, id string, status DatasetStatus) error

	// Delete a dataset.
	//
	// Returns the dataset just deleted. If it is missing, ErrMissing is returned.
	Delete(ctx context.Context, id string) (Dataset, error)
}
