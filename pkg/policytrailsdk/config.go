package policytrailsdk

import (
	"path/filepath"
	"strings"
	"time"
)

type StreamLayout string

const (
	StreamLayoutFlat    StreamLayout = "flat"
	StreamLayoutSharded StreamLayout = "sharded"
)

type HashAlgorithm string

const (
	HashAlgorithmSHA256 HashAlgorithm = "sha256"
	HashAlgorithmBLAKE3 HashAlgorithm = "blake3"
)

// Config defines the SDK behavior for direct core access.
type Config struct {
	RepoPath      string
	AutoWatch     bool
	SignCommits   bool
	SignKey       string
	StreamLayout  StreamLayout
	HashAlgorithm HashAlgorithm
	Index         IndexConfig
}

// IndexConfig configures the SQLite mirror and watch behavior.
type IndexConfig struct {
	DBPath      string
	Interval    time.Duration
	Jitter      time.Duration
	Fast        bool
	OnlyChanges bool
	EmitResults bool
}

// DefaultConfig returns opinionated defaults for near real-time mirroring.
func DefaultConfig(repoPath string) Config {
	return Config{
		RepoPath:  repoPath,
		AutoWatch: false,
		Index: IndexConfig{
			DBPath:      filepath.Join(repoPath, "index.db"),
			Interval:    1 * time.Second,
			Fast:        true,
			OnlyChanges: true,
			EmitResults: true,
		},
	}
}

func normalizeConfig(cfg Config) (Config, error) {
	if strings.TrimSpace(cfg.RepoPath) == "" {
		return cfg, ErrRepoPathRequired
	}
	if cfg.Index.DBPath == "" {
		cfg.Index.DBPath = filepath.Join(cfg.RepoPath, "index.db")
	}
	if cfg.Index.Interval == 0 {
		cfg.Index.Interval = 5 * time.Second
	}
	return cfg, nil
}
