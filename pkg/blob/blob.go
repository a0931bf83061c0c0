// Package blob defines storage of uploaded files.
//
// Blobs are addressed by pathname (like "datasets/1700000000000_genome.csv") when stored,
// and by URL after that. Implementations are in subpackages.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	// pathname is empty, names a directory, or climbs out of the store with "..".
	ErrBadPathname = errors.New("bad pathname")

	// url is not served by the store.
	ErrForeignURL = errors.New("url is not in the store")
)

type Object struct {
	// URL where the blob is served.
	URL string `json:"url"`

	Pathname    string `json:"pathname"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type Store interface {
	// Put stores content at pathname.
	//
	// When pathname is already used, the blob there is overwritten.
	Put(ctx context.Context, pathname string, content io.Reader, contentType string) (Object, error)

	// Delete removes the blob served at url.
	//
	// Deleting a missing blob is not an error.
	// If url is not served by the store, ErrForeignURL is returned.
	Delete(ctx context.Context, url string) error
}

// CleanPathname normalizes pathname as a relative slash-separated path.
//
//	CleanPathname("/datasets//a.csv")  // -> "datasets/a.csv"
//	CleanPathname("a/../b.csv")        // -> "b.csv"
//	CleanPathname("../a.csv")          // -> ErrBadPathname
//	CleanPathname("datasets/")         // -> ErrBadPathname
func CleanPathname(pathname string) (string, error) {
	p := path.Clean(strings.TrimLeft(pathname, "/"))
	if p == "." || p == ".." || strings.HasPrefix(p, "../") || strings.HasSuffix(pathname, "/") {
		return "", fmt.Errorf("%w: %q", ErrBadPathname, pathname)
	}
	return p, nil
}

// PathnameOf resolves url served under prefix into the pathname.
func PathnameOf(prefix string, url string) (string, error) {
	rest, ok := strings.CutPrefix(url, prefix)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, url)
	}
	p, err := CleanPathname(rest)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, url)
	}
	return p, nil
}
