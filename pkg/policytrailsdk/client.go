package policytrailsdk

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/attestly/policytrail/internal/domain"
	"github.com/attestly/policytrail/internal/infra/gitvault"
	"github.com/attestly/policytrail/internal/infra/hash"
	"github.com/attestly/policytrail/internal/infra/sqliteindex"
)

// Client provides direct access to PolicyTrail core services.
type Client struct {
	cfg      Config
	manifest domain.Manifest
	layout   domain.StreamLayout
	hashAlg  domain.HashAlgorithm
	store    *gitvault.Store
	hasher   hash.Hasher

	mu         sync.Mutex
	indexStore *sqliteindex.Store
	db         *sql.DB

	watchMu      sync.Mutex
	watchCancel  context.CancelFunc
	watchErr     chan error
	watchResults chan IndexSyncResult
}

// New creates a client without opening the SQLite mirror or starting a watch.
func New(cfg Config) (*Client, error) {
	normalized, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}
	manifest, manifestExists, err := loadManifest(normalized.RepoPath)
	if err != nil {
		return nil, err
	}

	layout, hashAlg, err := resolveManifestOverrides(normalized, manifest, manifestExists)
	if err != nil {
		return nil, err
	}
	normalized.StreamLayout = StreamLayout(layout)
	normalized.HashAlgorithm = HashAlgorithm(hashAlg)

	store := gitvault.NewStoreWithOptions(gitvault.StoreOptions{
		SignCommits:   normalized.SignCommits,
		SignKey:       normalized.SignKey,
		HashAlgorithm: hashAlg,
	})

	return &Client{
		cfg:      normalized,
		manifest: manifest,
		layout:   layout,
		hashAlg:  hashAlg,
		store:    store,
		hasher:   hash.ForAlgorithm(hashAlg),
	}, nil
}

// Open creates a client, opens the SQLite mirror, and starts watch if enabled.
func Open(ctx context.Context, cfg Config) (*Client, error) {
	client, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if err := client.OpenIndex(ctx); err != nil {
		return nil, err
	}
	if client.cfg.AutoWatch {
		if err := client.StartIndexWatch(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
	}
	return client, nil
}

// Close stops the index watch (if running) and closes SQLite.
func (c *Client) Close() error {
	_ = c.StopIndexWatch()

	c.mu.Lock()
	indexStore := c.indexStore
	c.indexStore = nil
	c.db = nil
	c.mu.Unlock()

	if indexStore != nil {
		return indexStore.Close()
	}
	return nil
}

// RepoPath returns the configured ledger path.
func (c *Client) RepoPath() string {
	return c.cfg.RepoPath
}

func (c *Client) indexDB() (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil, ErrIndexNotOpen
	}
	return c.db, nil
}

func (c *Client) ensureIndexStore() (*sqliteindex.Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexStore == nil {
		return nil, ErrIndexNotOpen
	}
	return c.indexStore, nil
}

func loadManifest(repoPath string) (domain.Manifest, bool, error) {
	manifestPath := filepath.Join(repoPath, "ledger.yaml")
	_, err := os.Stat(manifestPath)
	manifestExists := err == nil
	manifest, err := gitvault.LoadManifest(repoPath)
	if err != nil {
		return domain.Manifest{}, false, err
	}
	return manifest, manifestExists, nil
}

func resolveManifestOverrides(cfg Config, manifest domain.Manifest, manifestExists bool) (domain.StreamLayout, domain.HashAlgorithm, error) {
	layout := manifest.StreamLayout
	hashAlg := manifest.HashAlgorithm

	if cfg.StreamLayout != "" {
		parsed, err := toDomainStreamLayout(cfg.StreamLayout)
		if err != nil {
			return "", "", err
		}
		if manifestExists && parsed != manifest.StreamLayout {
			return "", "", fmt.Errorf("%w: stream layout", ErrManifestMismatch)
		}
		layout = parsed
	}
	if cfg.HashAlgorithm != "" {
		parsed, err := toDomainHashAlgorithm(cfg.HashAlgorithm)
		if err != nil {
			return "", "", err
		}
		if manifestExists && parsed != manifest.HashAlgorithm {
			return "", "", fmt.Errorf("%w: hash algorithm", ErrManifestMismatch)
		}
		hashAlg = parsed
	}

	return domain.NormalizeStreamLayout(layout), domain.NormalizeHashAlgorithm(hashAlg), nil
}

func toDomainStreamLayout(layout StreamLayout) (domain.StreamLayout, error) {
	switch layout {
	case StreamLayoutFlat:
		return domain.StreamLayoutFlat, nil
	case StreamLayoutSharded:
		return domain.StreamLayoutSharded, nil
	default:
		return "", fmt.Errorf("invalid stream layout: %s", layout)
	}
}

func toDomainHashAlgorithm(alg HashAlgorithm) (domain.HashAlgorithm, error) {
	switch alg {
	case HashAlgorithmSHA256:
		return domain.HashAlgorithmSHA256, nil
	case HashAlgorithmBLAKE3:
		return domain.HashAlgorithmBLAKE3, nil
	default:
		return "", fmt.Errorf("invalid hash algorithm: %s", alg)
	}
}
