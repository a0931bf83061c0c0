package frontend_test

import (
	"errors"
	"testing"
	"time"

	kcf "github.com/helixlab/helix/pkg/configs/frontend"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/stretchr/testify/require"
)

func TestLoadFrontendConfig(t *testing.T) {
	t.Run("it can be created from a config file", func(t *testing.T) {
		result, err := kcf.LoadFrontendConfig("./testdata/config.yaml")
		require.NoError(t, err)

		require.Equal(t, "9090", result.ServerPort)
		require.Equal(t, "postgres://helix-test-pgdb:5432/helix", result.DBURI)
		require.Equal(t, "/schema/postgres", result.SchemaRepository)
		require.Equal(t, "http://trainer:8000", result.Training.URL)
		require.Equal(t, 45*time.Second, result.Training.Timeout)
		require.Equal(t, "/var/lib/helix/blobs", result.Blob.Root)
		require.Equal(t, 500*time.Millisecond, result.Datasets.ProcessingDelay)
		require.Equal(t, []string{"csv", "json"}, result.Datasets.AllowedExtensions)
	})

	t.Run("missing file causes error", func(t *testing.T) {
		_, err := kcf.LoadFrontendConfig("./testdata/no-such-file.yaml")
		require.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	minimal := `
db_uri: postgres://localhost/helix
training:
  url: http://localhost:8000
`

	t.Run("missing values are filled with defaults", func(t *testing.T) {
		result, err := kcf.Load(rawbytes.Provider([]byte(minimal)))
		require.NoError(t, err)

		def := kcf.Default()
		require.Equal(t, "8080", result.ServerPort)
		require.Equal(t, def.Training.Timeout, result.Training.Timeout)
		expectedBlob := def.Blob
		expectedBlob.PublicURL = kcf.DefaultFSPublicURL
		require.Equal(t, expectedBlob, result.Blob)
		require.Equal(t, def.Datasets, result.Datasets)
	})

	t.Run("environment variables override the file", func(t *testing.T) {
		t.Setenv("HELIX_PORT", "18080")
		t.Setenv("HELIX_TRAINING__URL", "http://override:8000")
		t.Setenv("HELIX_BLOB__DRIVER", "gcs")
		t.Setenv("HELIX_BLOB__BUCKET", "helix-blobs")
		t.Setenv("HELIX_DATASETS__PROCESSING_DELAY", "1m")

		result, err := kcf.Load(rawbytes.Provider([]byte(minimal)))
		require.NoError(t, err)

		require.Equal(t, "18080", result.ServerPort)
		require.Equal(t, "http://override:8000", result.Training.URL)
		require.Equal(t, kcf.BlobDriverGCS, result.Blob.Driver)
		require.Equal(t, "helix-blobs", result.Blob.Bucket)
		require.Empty(t, result.Blob.PublicURL)
		require.Equal(t, time.Minute, result.Datasets.ProcessingDelay)
	})

	for name, content := range map[string]string{
		"db_uri is required": `
training: {url: http://localhost:8000}
`,
		"training.url is required": `
db_uri: postgres://localhost/helix
`,
		"unknown blob driver": minimal + `
blob: {driver: s3}
`,
		"gcs requires bucket": minimal + `
blob: {driver: gcs}
`,
		"fs serves blobs at a path": minimal + `
blob: {driver: fs, public_url: "https://cdn.example.com/blobs/"}
`,
		"negative delay": minimal + `
datasets: {processing_delay: -1s}
`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := kcf.Load(rawbytes.Provider([]byte(content)))
			if !errors.Is(err, kcf.ErrInvalidConfig) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
