// Package gcs is a blob store on a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/helixlab/helix/pkg/blob"
	xe "github.com/helixlab/helix/pkg/errors"
	kstrings "github.com/helixlab/helix/pkg/utils/strings"
	"google.golang.org/api/option"
)

type Store struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
}

var _ blob.Store = &Store{}

// New connects to the bucket.
//
// publicURL is the URL prefix where objects are served.
// If it is empty, "https://storage.googleapis.com/{bucket}/" is used.
//
// Credentials are searched as the default of cloud.google.com/go/storage
// unless opts say otherwise.
// When STORAGE_EMULATOR_HOST is set, the emulator there is used.
func New(ctx context.Context, bucket string, publicURL string, opts ...option.ClientOption) (*Store, error) {
	if bucket == "" {
		return nil, errors.New("gcs: bucket is not specified")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://storage.googleapis.com/%s/", bucket)
	}
	return &Store{
		client: client,
		bucket: client.Bucket(bucket),
		prefix: kstrings.SupplySuffix(publicURL, "/"),
	}, nil
}

func (s *Store) Put(ctx context.Context, pathname string, content io.Reader, contentType string) (blob.Object, error) {
	p, err := blob.CleanPathname(pathname)
	if err != nil {
		return blob.Object{}, err
	}

	w := s.bucket.Object(p).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, content); err != nil {
		w.CloseWithError(err)
		return blob.Object{}, xe.Wrap(err)
	}
	if err := w.Close(); err != nil {
		return blob.Object{}, xe.Wrap(err)
	}

	attrs := w.Attrs()
	return blob.Object{
		URL:         s.prefix + p,
		Pathname:    p,
		ContentType: attrs.ContentType,
		Size:        attrs.Size,
	}, nil
}

func (s *Store) Delete(ctx context.Context, url string) error {
	p, err := blob.PathnameOf(s.prefix, url)
	if err != nil {
		return err
	}
	if err := s.bucket.Object(p).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return xe.Wrap(err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
