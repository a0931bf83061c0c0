package dataset_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	testutilctx "github.com/helixlab/helix/internal/testutils/context"
	"github.com/helixlab/helix/pkg/cmp"
	"github.com/helixlab/helix/pkg/conn/db/postgres/pool/testenv"
	kdb "github.com/helixlab/helix/pkg/db"
	kpgdataset "github.com/helixlab/helix/pkg/db/postgres/dataset"
	"github.com/helixlab/helix/pkg/utils/pointer"
	"github.com/helixlab/helix/pkg/utils/try"
)

func sequentialIds(prefix string) func() string {
	n := 0
	return func() string {
		n += 1
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func ids(ds []kdb.Dataset) []string {
	ret := make([]string, len(ds))
	for nth, d := range ds {
		ret[nth] = d.Id
	}
	return ret
}

func TestDataset(t *testing.T) {
	base, cancel := testutilctx.WithTest(context.Background(), t)
	defer cancel()
	poolBroaker := testenv.NewPoolBroaker(base, t)

	given := []kdb.NewDataset{
		{
			Name: "genome", Type: "csv", Size: "1.00 MB", SizeBytes: 1 << 20,
			FilePath: "/blobs/datasets/1_genome.csv", BlobURL: "/blobs/datasets/1_genome.csv",
		},
		{
			Name: "Protein_Fold", Type: "JSON", Size: "0.50 MB", SizeBytes: 1 << 19,
			Status:   kdb.DatasetActive,
			FilePath: "/blobs/datasets/2_protein.json", BlobURL: "/blobs/datasets/2_protein.json",
		},
		{
			Name: "variants 100%", Type: "vcf", Size: "2.00 GB", SizeBytes: 2 << 30, Records: "12",
			FilePath: "/blobs/datasets/3_variants.vcf", BlobURL: "/blobs/datasets/3_variants.vcf",
		},
	}

	setup := func(ctx context.Context, t *testing.T) kdb.DatasetInterface {
		t.Helper()
		pool := poolBroaker.GetPool(ctx, t)
		testee := kpgdataset.New(pool, kpgdataset.WithIdGenerator(sequentialIds("ds")))
		for _, g := range given {
			try.To(testee.Create(ctx, g)).OrFatal(t)
		}
		return testee
	}

	t.Run("Create fills defaults and upper-cases type", func(t *testing.T) {
		ctx := base
		testee := setup(ctx, t)

		got := try.To(testee.Get(ctx, "ds-1")).OrFatal(t)
		if got.Type != "CSV" {
			t.Errorf("type: %s", got.Type)
		}
		if got.Status != kdb.DatasetProcessing {
			t.Errorf("status: %s", got.Status)
		}
		if got.Records != "0" {
			t.Errorf("records: %s", got.Records)
		}
		if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
			t.Errorf("timestamps are not set: %+v", got)
		}

		got3 := try.To(testee.Get(ctx, "ds-3")).OrFatal(t)
		if got3.Records != "12" || got3.SizeBytes != 2<<30 {
			t.Errorf("unexpected: %+v", got3)
		}
	})

	t.Run("Find", func(t *testing.T) {
		ctx := base
		testee := setup(ctx, t)

		for name, testcase := range map[string]struct {
			query    kdb.DatasetQuery
			expected []string
		}{
			"no filter returns newest first": {
				query:    kdb.DatasetQuery{},
				expected: []string{"ds-3", "ds-2", "ds-1"},
			},
			"all is no filter": {
				query:    kdb.DatasetQuery{Type: "all", Status: "all"},
				expected: []string{"ds-3", "ds-2", "ds-1"},
			},
			"by type": {
				query:    kdb.DatasetQuery{Type: "JSON"},
				expected: []string{"ds-2"},
			},
			"by status": {
				query:    kdb.DatasetQuery{Status: "Processing"},
				expected: []string{"ds-3", "ds-1"},
			},
			"by search, case insensitive": {
				query:    kdb.DatasetQuery{Search: "protein"},
				expected: []string{"ds-2"},
			},
			"search escapes wildcards": {
				query:    kdb.DatasetQuery{Search: "100%"},
				expected: []string{"ds-3"},
			},
			"underscore is not a wildcard": {
				query:    kdb.DatasetQuery{Search: "n_f"},
				expected: []string{"ds-2"},
			},
			"nothing matches": {
				query:    kdb.DatasetQuery{Type: "CSV", Status: "Active"},
				expected: []string{},
			},
		} {
			t.Run(name, func(t *testing.T) {
				got := try.To(testee.Find(ctx, testcase.query)).OrFatal(t)
				if !cmp.SliceEq(ids(got), testcase.expected) {
					t.Errorf("unmatch: (actual, expected) = (%v, %v)", ids(got), testcase.expected)
				}
			})
		}
	})

	t.Run("Update changes given fields only", func(t *testing.T) {
		ctx := base
		testee := setup(ctx, t)

		before := try.To(testee.Get(ctx, "ds-1")).OrFatal(t)
		got := try.To(testee.Update(ctx, "ds-1", kdb.DatasetChange{
			Name:   pointer.Ref("  renamed  "),
			Status: pointer.Ref(kdb.DatasetInactive),
		})).OrFatal(t)

		if got.Name != "renamed" || got.Status != kdb.DatasetInactive {
			t.Errorf("not updated: %+v", got)
		}
		if got.Type != before.Type || got.Records != before.Records || got.BlobURL != before.BlobURL {
			t.Errorf("unexpected change: %+v -> %+v", before, got)
		}
		if got.UpdatedAt.Before(before.UpdatedAt) {
			t.Errorf("updated_at goes back: %v -> %v", before.UpdatedAt, got.UpdatedAt)
		}
		if !got.CreatedAt.Equal(before.CreatedAt) {
			t.Errorf("created_at is changed: %v -> %v", before.CreatedAt, got.CreatedAt)
		}
	})

	t.Run("SetStatus", func(t *testing.T) {
		ctx := base
		testee := setup(ctx, t)

		if err := testee.SetStatus(ctx, "ds-1", kdb.DatasetActive); err != nil {
			t.Fatal(err)
		}
		got := try.To(testee.Get(ctx, "ds-1")).OrFatal(t)
		if got.Status != kdb.DatasetActive {
			t.Errorf("status: %s", got.Status)
		}
	})

	t.Run("Delete returns the deleted dataset", func(t *testing.T) {
		ctx := base
		testee := setup(ctx, t)

		before := try.To(testee.Get(ctx, "ds-2")).OrFatal(t)
		got := try.To(testee.Delete(ctx, "ds-2")).OrFatal(t)
		if !got.Equal(&before) {
			t.Errorf("unmatch: (actual, expected) = (%+v, %+v)", got, before)
		}

		if _, err := testee.Get(ctx, "ds-2"); !errors.Is(err, kdb.ErrMissing) {
			t.Errorf("dataset is not deleted: %v", err)
		}
	})

	t.Run("missing dataset causes ErrMissing", func(t *testing.T) {
		ctx := base
		testee := setup(ctx, t)

		if _, err := testee.Get(ctx, "no-such-dataset"); !errors.Is(err, kdb.ErrMissing) {
			t.Errorf("Get: %v", err)
		}
		if _, err := testee.Update(ctx, "no-such-dataset", kdb.DatasetChange{Name: pointer.Ref("x")}); !errors.Is(err, kdb.ErrMissing) {
			t.Errorf("Update: %v", err)
		}
		if err := testee.SetStatus(ctx, "no-such-dataset", kdb.DatasetActive); !errors.Is(err, kdb.ErrMissing) {
			t.Errorf("SetStatus: %v", err)
		}
		if _, err := testee.Delete(ctx, "no-such-dataset"); !errors.Is(err, kdb.ErrMissing) {
			t.Errorf("Delete: %v", err)
		}
	})
}
