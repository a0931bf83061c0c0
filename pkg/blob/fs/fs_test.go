package fs_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/helixlab/helix/pkg/blob"
	blobfs "github.com/helixlab/helix/pkg/blob/fs"
	"github.com/helixlab/helix/pkg/utils/try"
	"github.com/spf13/afero"
)

func TestStore(t *testing.T) {
	t.Run("Put stores content and tells where it is served", func(t *testing.T) {
		ctx := context.Background()
		mem := afero.NewMemMapFs()
		testee := blobfs.New(mem, "/blobs")

		got := try.To(testee.Put(
			ctx, "datasets/1700000000000_genome.csv", strings.NewReader("a,b\n1,2\n"), "text/csv",
		)).OrFatal(t)

		expected := blob.Object{
			URL:         "/blobs/datasets/1700000000000_genome.csv",
			Pathname:    "datasets/1700000000000_genome.csv",
			ContentType: "text/csv",
			Size:        8,
		}
		if got != expected {
			t.Errorf("unmatch: (actual, expected) = (%+v, %+v)", got, expected)
		}

		content := try.To(afero.ReadFile(mem, "/datasets/1700000000000_genome.csv")).OrFatal(t)
		if string(content) != "a,b\n1,2\n" {
			t.Errorf("unexpected content: %q", content)
		}
		for _, fi := range try.To(afero.ReadDir(mem, "/datasets")).OrFatal(t) {
			if strings.HasSuffix(fi.Name(), ".uploading") {
				t.Errorf("temporary file remains: %s", fi.Name())
			}
		}
	})

	t.Run("Put overwrites the same pathname", func(t *testing.T) {
		ctx := context.Background()
		mem := afero.NewMemMapFs()
		testee := blobfs.New(mem, "/blobs/")

		try.To(testee.Put(ctx, "notes.txt", strings.NewReader("first version"), "text/plain")).OrFatal(t)
		got := try.To(testee.Put(ctx, "notes.txt", strings.NewReader("second"), "text/plain")).OrFatal(t)
		if got.Size != 6 {
			t.Errorf("size: %d", got.Size)
		}
		content := try.To(afero.ReadFile(mem, "/notes.txt")).OrFatal(t)
		if string(content) != "second" {
			t.Errorf("unexpected content: %q", content)
		}
	})

	t.Run("concurrent Puts to the same pathname leave one of them whole", func(t *testing.T) {
		ctx := context.Background()
		root := t.TempDir()
		testee := try.To(blobfs.OnDisk(root, "/blobs/")).OrFatal(t)

		contents := []string{strings.Repeat("A", 20000), strings.Repeat("B", 30000)}
		errs := make(chan error, len(contents))
		var wg sync.WaitGroup
		for _, c := range contents {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := testee.Put(ctx, "x.csv", iotest.OneByteReader(strings.NewReader(c)), "text/csv")
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Errorf("Put: %v", err)
			}
		}

		got := string(try.To(os.ReadFile(filepath.Join(root, "x.csv"))).OrFatal(t))
		if !slices.Contains(contents, got) {
			t.Errorf("blob is mixed: len=%d", len(got))
		}
		entries := try.To(os.ReadDir(root)).OrFatal(t)
		if len(entries) != 1 {
			names := []string{}
			for _, e := range entries {
				names = append(names, e.Name())
			}
			t.Errorf("unexpected files: %v", names)
		}
	})

	t.Run("Put rejects bad pathname", func(t *testing.T) {
		testee := blobfs.New(afero.NewMemMapFs(), "/blobs/")
		for _, pathname := range []string{"", "../outside.csv", "datasets/"} {
			if _, err := testee.Put(context.Background(), pathname, strings.NewReader("x"), ""); !errors.Is(err, blob.ErrBadPathname) {
				t.Errorf("Put(%q): unexpected error: %v", pathname, err)
			}
		}
	})

	t.Run("Delete removes the blob, and tolerates missing one", func(t *testing.T) {
		ctx := context.Background()
		mem := afero.NewMemMapFs()
		testee := blobfs.New(mem, "/blobs/")

		obj := try.To(testee.Put(ctx, "datasets/x.json", strings.NewReader("{}"), "application/json")).OrFatal(t)
		if err := testee.Delete(ctx, obj.URL); err != nil {
			t.Fatal(err)
		}
		if ok := try.To(afero.Exists(mem, "/datasets/x.json")).OrFatal(t); ok {
			t.Error("blob is not deleted")
		}
		if err := testee.Delete(ctx, obj.URL); err != nil {
			t.Errorf("deleting missing blob: %v", err)
		}
	})

	t.Run("Delete rejects foreign url", func(t *testing.T) {
		testee := blobfs.New(afero.NewMemMapFs(), "/blobs/")
		if err := testee.Delete(context.Background(), "https://example.com/x.csv"); !errors.Is(err, blob.ErrForeignURL) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("Handler serves stored blobs", func(t *testing.T) {
		ctx := context.Background()
		testee := blobfs.New(afero.NewMemMapFs(), "/blobs/")
		obj := try.To(testee.Put(ctx, "datasets/x.csv", strings.NewReader("a,b\n"), "text/csv")).OrFatal(t)

		server := httptest.NewServer(testee.Handler())
		defer server.Close()

		resp := try.To(http.Get(server.URL + obj.URL)).OrFatal(t)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status: %d", resp.StatusCode)
		}
		body := try.To(io.ReadAll(resp.Body)).OrFatal(t)
		if string(body) != "a,b\n" {
			t.Errorf("unexpected body: %q", body)
		}

		missing := try.To(http.Get(server.URL + "/blobs/datasets/nothing.csv")).OrFatal(t)
		defer missing.Body.Close()
		if missing.StatusCode != http.StatusNotFound {
			t.Errorf("status for missing blob: %d", missing.StatusCode)
		}
	})
}
