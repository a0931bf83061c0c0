// Package fs is a blob store on a filesystem.
//
// Blobs are served over HTTP by Handler under the public URL prefix.
package fs

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path"

	"github.com/helixlab/helix/pkg/blob"
	xe "github.com/helixlab/helix/pkg/errors"
	kstrings "github.com/helixlab/helix/pkg/utils/strings"
	"github.com/spf13/afero"
)

type Store struct {
	fs     afero.Fs
	prefix string
}

var _ blob.Store = &Store{}

// New returns a blob store on fs.
//
// publicURL is the URL prefix where Handler is mounted, like "/blobs/".
func New(fs afero.Fs, publicURL string) *Store {
	return &Store{fs: fs, prefix: kstrings.SupplySuffix(publicURL, "/")}
}

// OnDisk returns a blob store in the directory root of the local filesystem.
func OnDisk(root string, publicURL string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, xe.Wrap(err)
	}
	return New(afero.NewBasePathFs(afero.NewOsFs(), root), publicURL), nil
}

func (s *Store) Put(ctx context.Context, pathname string, content io.Reader, contentType string) (blob.Object, error) {
	p, err := blob.CleanPathname(pathname)
	if err != nil {
		return blob.Object{}, err
	}
	if err := ctx.Err(); err != nil {
		return blob.Object{}, err
	}

	if err := s.fs.MkdirAll(path.Dir("/"+p), 0o755); err != nil {
		return blob.Object{}, xe.Wrap(err)
	}

	// write to a temporary file first, not to leave a broken blob.
	// Each writer has its own temporary file, and the last rename wins.
	f, err := afero.TempFile(s.fs, path.Dir("/"+p), path.Base(p)+".*.uploading")
	if err != nil {
		return blob.Object{}, xe.Wrap(err)
	}
	tmp := f.Name()
	size, err := io.Copy(f, content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = s.fs.Chmod(tmp, 0o644)
	}
	if err != nil {
		s.fs.Remove(tmp)
		return blob.Object{}, xe.Wrap(err)
	}
	if err := s.fs.Rename(tmp, "/"+p); err != nil {
		s.fs.Remove(tmp)
		return blob.Object{}, xe.Wrap(err)
	}

	return blob.Object{
		URL:         s.prefix + p,
		Pathname:    p,
		ContentType: contentType,
		Size:        size,
	}, nil
}

func (s *Store) Delete(ctx context.Context, url string) error {
	p, err := blob.PathnameOf(s.prefix, url)
	if err != nil {
		return err
	}
	if err := s.fs.Remove("/" + p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return xe.Wrap(err)
	}
	return nil
}

// Handler serves blobs. It should be mounted at the public URL prefix.
func (s *Store) Handler() http.Handler {
	return http.StripPrefix(
		s.prefix,
		http.FileServer(afero.NewHttpFs(s.fs).Dir("/")),
	)
}
