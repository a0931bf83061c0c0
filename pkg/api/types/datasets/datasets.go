package datasets

import (
	kdb "github.com/helixlab/helix/pkg/db"
	"github.com/helixlab/helix/pkg/utils/rfctime"
)

type Detail struct {
	Id        string          `json:"id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Size      string          `json:"size"`
	SizeBytes int64           `json:"sizeBytes"`
	Records   string          `json:"records"`
	Status    string          `json:"status"`
	FilePath  string          `json:"filePath"`
	BlobURL   string          `json:"blobUrl"`
	CreatedAt rfctime.RFC3339 `json:"createdAt"`
	UpdatedAt rfctime.RFC3339 `json:"updatedAt"`
}

func (d *Detail) Equal(o *Detail) bool {
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
		d.CreatedAt.Equal(&o.CreatedAt) &&
		d.UpdatedAt.Equal(&o.UpdatedAt)
}

func ComposeDetail(d kdb.Dataset) Detail {
	return Detail{
		Id:        d.Id,
		Name:      d.Name,
		Type:      d.Type,
		Size:      d.Size,
		SizeBytes: d.SizeBytes,
		Records:   d.Records,
		Status:    d.Status.String(),
		FilePath:  d.FilePath,
		BlobURL:   d.BlobURL,
		CreatedAt: rfctime.RFC3339(d.CreatedAt),
		UpdatedAt: rfctime.RFC3339(d.UpdatedAt),
	}
}

// Change is a request body to update a dataset.
//
// Absent fields are not changed.
type Change struct {
	Name    *string `json:"name,omitempty"`
	Type    *string `json:"type,omitempty"`
	Records *string `json:"records,omitempty"`
	Status  *string `json:"status,omitempty"`
}
