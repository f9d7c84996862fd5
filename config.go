package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultConfigPath = "benchmark.yaml"

type QueryFiles struct {
	Flat       string `yaml:"flat" env:"BENCH_FLAT_QUERIES" validate:"required"`
	Normalized string `yaml:"normalized" env:"BENCH_NORMALIZED_QUERIES" validate:"required"`
}

type SnapshotFiles struct {
	Pre  string `yaml:"pre" env:"BENCH_PRE_SNAPSHOT" validate:"required"`
	Post string `yaml:"post" env:"BENCH_POST_SNAPSHOT" validate:"required"`
}

type ReportConfig struct {
	ComparisonDir string   `yaml:"comparison_dir" env:"BENCH_COMPARISON_DIR" validate:"required"`
	VariantDir    string   `yaml:"variant_dir" env:"BENCH_VARIANT_DIR"`
	Queries       []string `yaml:"queries" env:"BENCH_REPORT_QUERIES" validate:"required,min=1,dive,required"`
}

type Config struct {
	// Root is the directory dataset keys are made relative to, the working
	// directory when empty.
	Root                string        `yaml:"root" env:"BENCH_ROOT"`
	Datasets            []Dataset     `yaml:"datasets" validate:"required,min=1,dive"`
	Queries             QueryFiles    `yaml:"queries"`
	Store               StoreConfig   `yaml:"store"`
	Snapshots           SnapshotFiles `yaml:"snapshots"`
	Report              ReportConfig  `yaml:"report"`
	StripPrefixes       []string      `yaml:"strip_prefixes" env:"BENCH_STRIP_PREFIXES"`
	NormalizeBirthDates bool          `yaml:"normalize_birth_dates" env:"BENCH_NORMALIZE_BIRTH_DATES"`
	ClearCaches         bool          `yaml:"clear_caches" env:"BENCH_CLEAR_CACHES"`
	Corrections         []Correction  `yaml:"corrections" validate:"dive"`
}

func DefaultConfig() *Config {
	return &Config{
		Datasets: []Dataset{
			{Path: "datasets/salary_tracker_1MB.csv", Label: "1MB"},
			{Path: "datasets/salary_tracker_10MB.csv", Label: "10MB"},
			{Path: "datasets/salary_tracker_100MB.csv", Label: "100MB"},
		},
		Queries: QueryFiles{
			Flat:       "queries/queries.txt",
			Normalized: "queries/normalized_queries.txt",
		},
		Store: StoreConfig{Driver: DriverSqlite},
		Snapshots: SnapshotFiles{
			Pre:  "preNormalisation.json",
			Post: "postNormalisation.json",
		},
		Report: ReportConfig{
			ComparisonDir: "comparison",
			VariantDir:    "",
			Queries:       []string{"Query_1", "Query_2", "Query_3", "Query_4", "Query_5", "Query_6"},
		},
	}
}

// LoadConfig layers defaults, the yaml file, .env and the process environment,
// in that order. An explicit path (argument or BENCH_CONFIG) must exist, the
// default one is optional.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path, explicit = os.LookupEnv("BENCH_CONFIG")
	}
	if path == "" {
		path, explicit = DefaultConfigPath, false
	}

	config := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config %v: %w", path, err)
		}
		Logger.Debugf("loaded config from %v", path)
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		Logger.Debugf("no config at %v, using defaults", path)
	default:
		return nil, fmt.Errorf("failed to read config %v: %w", path, err)
	}

	if err := envdecode.Decode(config); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

func (c *Config) resolve(path string) string {
	if c.Root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Root, path)
}

func (c *Config) DatasetPath(dataset Dataset) string {
	return c.resolve(dataset.Path)
}

func (c *Config) Normalizer() KeyNormalizer {
	root := c.Root
	if root == "" {
		root, _ = os.Getwd()
	}
	if absolute, err := filepath.Abs(root); err == nil {
		root = absolute
	}
	return KeyNormalizer{Root: root, Prefixes: c.StripPrefixes}
}

// DatasetKey is the snapshot key of dataset.
func (c *Config) DatasetKey(dataset Dataset) string {
	path := c.DatasetPath(dataset)
	if absolute, err := filepath.Abs(path); err == nil {
		path = absolute
	}
	return c.Normalizer().Normalize(path)
}

func (c *Config) DatasetKeys() []string {
	keys := make([]string, len(c.Datasets))
	for i, dataset := range c.Datasets {
		keys[i] = c.DatasetKey(dataset)
	}
	return keys
}

func (c *Config) QueryFile(variant Variant) string {
	if variant == VariantNormalized {
		return c.resolve(c.Queries.Normalized)
	}
	return c.resolve(c.Queries.Flat)
}

func (c *Config) SnapshotFile(variant Variant) string {
	if variant == VariantNormalized {
		return c.Snapshots.Post
	}
	return c.Snapshots.Pre
}
