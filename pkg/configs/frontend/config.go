// Package frontend is the configuration of helixd, the API server.
//
// It is read from a YAML file, and each value can be overridden by
// an environment variable with prefix HELIX_. Nested keys are separated by "__" in
// variable names, like HELIX_TRAINING__URL for training.url .
package frontend

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const EnvPrefix = "HELIX_"

const (
	BlobDriverFS  = "fs"
	BlobDriverGCS = "gcs"
)

type FrontendConfig struct {
	ServerPort       string `koanf:"port"`
	DBURI            string `koanf:"db_uri"`
	SchemaRepository string `koanf:"schema_repository"`

	Training TrainingConfig `koanf:"training"`
	Blob     BlobConfig     `koanf:"blob"`
	Datasets DatasetsConfig `koanf:"datasets"`
}

type TrainingConfig struct {
	// root URL of the training service, like "http://trainer:8000".
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

type BlobConfig struct {
	// "fs" or "gcs"
	Driver string `koanf:"driver"`

	// directory to store blobs. for "fs" only.
	Root string `koanf:"root"`

	// URL prefix where blobs are served.
	//
	// For "fs", it is a path served by helixd (default: DefaultFSPublicURL).
	// For "gcs", empty means the public URL of the bucket.
	PublicURL string `koanf:"public_url"`

	// bucket name. for "gcs" only.
	Bucket string `koanf:"bucket"`
}

type DatasetsConfig struct {
	// how long a dataset is Processing after upload.
	ProcessingDelay time.Duration `koanf:"processing_delay"`

	// acceptable file extensions, without dot.
	AllowedExtensions []string `koanf:"allowed_extensions"`
}

func Default() FrontendConfig {
	return FrontendConfig{
		ServerPort: "8080",
		Training: TrainingConfig{
			Timeout: 30 * time.Second,
		},
		Blob: BlobConfig{
			Driver: BlobDriverFS,
			Root:   "./blobs",
		},
		Datasets: DatasetsConfig{
			ProcessingDelay:   2 * time.Second,
			AllowedExtensions: []string{"csv", "json", "parquet", "vcf", "fastq"},
		},
	}
}

const DefaultFSPublicURL = "/blobs/"

var ErrInvalidConfig = errors.New("invalid config")

// LoadFrontendConfig reads config from the file, then from environment variables.
func LoadFrontendConfig(filepath string) (*FrontendConfig, error) {
	return Load(file.Provider(filepath))
}

// Load reads config from provider (in YAML), then from environment variables.
//
// Missing keys are filled with Default().
func Load(provider koanf.Provider) (*FrontendConfig, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, err
	}
	if err := k.Load(provider, yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".",
		)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var conf FrontendConfig
	if err := k.Unmarshal("", &conf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := conf.Verify(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Verify checks required values.
func (c *FrontendConfig) Verify() error {
	if c.DBURI == "" {
		return fmt.Errorf("%w: db_uri is required", ErrInvalidConfig)
	}
	if c.Training.URL == "" {
		return fmt.Errorf("%w: training.url is required", ErrInvalidConfig)
	}
	switch c.Blob.Driver {
	case BlobDriverFS:
		if c.Blob.Root == "" {
			return fmt.Errorf("%w: blob.root is required for fs driver", ErrInvalidConfig)
		}
		if c.Blob.PublicURL == "" {
			c.Blob.PublicURL = DefaultFSPublicURL
		}
		if !strings.HasPrefix(c.Blob.PublicURL, "/") {
			return fmt.Errorf("%w: blob.public_url should be a path for fs driver", ErrInvalidConfig)
		}
	case BlobDriverGCS:
		if c.Blob.Bucket == "" {
			return fmt.Errorf("%w: blob.bucket is required for gcs driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown blob.driver: %q", ErrInvalidConfig, c.Blob.Driver)
	}
	if c.Datasets.ProcessingDelay < 0 {
		return fmt.Errorf("%w: datasets.processing_delay should not be negative", ErrInvalidConfig)
	}
	for i, ext := range c.Datasets.AllowedExtensions {
		c.Datasets.AllowedExtensions[i] = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	}
	return nil
}
