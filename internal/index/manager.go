// File path: internal/index/manager.go
package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/wolfthemes/supportkb/internal/common"
	"github.com/wolfthemes/supportkb/internal/kb"
)

// ErrUnavailable marks every failure that leaves the manager without a
// usable index: empty corpus, unreachable embedding backend, unreadable
// data root. Callers detect it with errors.Is and surface the degenerate
// "error" answer instead of treating it as "no results".
var ErrUnavailable = errors.New("search index unavailable")

const (
	snapshotFileName    = "index.json"
	fingerprintFileName = "fingerprint.json"
)

// Embedder is the minimal contract the manager needs from the embedding
// backend.
type Embedder interface {
	Embed(ctx context.Context, input []string) ([][]float32, error)
}

// Manager owns the persisted index artifact: a directory holding the
// serialized snapshot plus a fingerprint sidecar recording the corpus state
// it was built from. Rebuilds are serialized behind a mutex while readers
// keep serving the previous snapshot until the new one is swapped in.
type Manager struct {
	cfg      Config
	embedder Embedder

	mu      sync.Mutex // serializes rebuilds and persisted-artifact access
	current atomic.Pointer[Snapshot]
}

// NewManager constructs a manager; no I/O happens until LoadOrBuild.
func NewManager(cfg Config, embedder Embedder) *Manager {
	return &Manager{cfg: cfg, embedder: embedder}
}

// Current returns the live snapshot, or nil when no index has been built or
// loaded yet. Safe for concurrent use.
func (m *Manager) Current() *Snapshot {
	return m.current.Load()
}

// LoadOrBuild fingerprints the data root and either reloads the persisted
// index (fingerprints match: zero embedding calls) or rebuilds it from the
// given records. Any single file change under the data root invalidates the
// whole artifact; rebuilds are all-or-nothing, never incremental.
func (m *Manager) LoadOrBuild(ctx context.Context, records []kb.Record) (*Snapshot, error) {
	logger := common.Logger()
	fingerprint, err := m.fingerprintCorpus()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if snapshot, ok := m.loadPersisted(fingerprint); ok {
		logger.Info("index: loaded persisted index", "records", snapshot.Len(), "dir", m.cfg.IndexDir)
		m.current.Store(snapshot)
		return snapshot, nil
	}
	logger.Info("index: rebuilding", "records", len(records), "dir", m.cfg.IndexDir)
	return m.rebuildLocked(ctx, records, fingerprint)
}

// Rebuild forces a fresh build regardless of fingerprint state.
func (m *Manager) Rebuild(ctx context.Context, records []kb.Record) (*Snapshot, error) {
	fingerprint, err := m.fingerprintCorpus()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rebuildLocked(ctx, records, fingerprint)
}

// fingerprintCorpus hashes the data root. The index artifact may live under
// the data root (the default layout nests it there), so the artifact
// directory and its rename-aside sibling are excluded from the walk —
// otherwise every persist would change the fingerprint it was keyed on.
func (m *Manager) fingerprintCorpus() (kb.Fingerprint, error) {
	return kb.ComputeFingerprint(m.cfg.DataDir, m.cfg.IndexDir, m.asidePath())
}

func (m *Manager) asidePath() string {
	return m.cfg.IndexDir + ".old"
}

// loadPersisted returns the persisted snapshot when both artifact files
// exist and the stored fingerprint equals the current one.
func (m *Manager) loadPersisted(current kb.Fingerprint) (*Snapshot, bool) {
	logger := common.Logger()
	stored, err := readFingerprint(filepath.Join(m.cfg.IndexDir, fingerprintFileName))
	if err != nil {
		return nil, false
	}
	if kb.Changed(stored, current) {
		logger.Info("index: corpus fingerprint changed, persisted index is stale")
		return nil, false
	}
	snapshot, err := loadSnapshot(filepath.Join(m.cfg.IndexDir, snapshotFileName))
	if err != nil {
		logger.Warn("index: persisted index unreadable", "error", err)
		return nil, false
	}
	return snapshot, true
}

func (m *Manager) rebuildLocked(ctx context.Context, records []kb.Record, fingerprint kb.Fingerprint) (*Snapshot, error) {
	logger := common.Logger()
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records to index", ErrUnavailable)
	}
	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Text
	}
	vectors, err := m.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: embed corpus: %v", ErrUnavailable, err)
	}
	snapshot, err := NewSnapshot(records, vectors)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	// Persist failures degrade to in-memory serving: the snapshot is sound,
	// only the cache for the next process start is lost.
	if err := m.persist(snapshot, fingerprint); err != nil {
		logger.Warn("index: persist failed, serving in-memory only", "error", err)
	}
	m.current.Store(snapshot)
	logger.Info("index: rebuild complete", "records", snapshot.Len())
	return snapshot, nil
}

// persist writes the snapshot and fingerprint sidecar to a staging directory
// and swaps it into place. The previous artifact is renamed aside before the
// swap and deleted only after the new one is live, so an interruption at any
// point leaves either the old or the new index on disk, never neither.
func (m *Manager) persist(snapshot *Snapshot, fingerprint kb.Fingerprint) error {
	parent := filepath.Dir(m.cfg.IndexDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("prepare index parent: %w", err)
	}
	staging, err := os.MkdirTemp(parent, ".index-staging-")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := snapshot.save(filepath.Join(staging, snapshotFileName)); err != nil {
		return err
	}
	if err := writeFingerprint(filepath.Join(staging, fingerprintFileName), fingerprint); err != nil {
		return err
	}

	aside := m.asidePath()
	if err := os.RemoveAll(aside); err != nil {
		return fmt.Errorf("clear aside dir: %w", err)
	}
	moved := false
	if _, err := os.Stat(m.cfg.IndexDir); err == nil {
		if err := os.Rename(m.cfg.IndexDir, aside); err != nil {
			return fmt.Errorf("move old index aside: %w", err)
		}
		moved = true
	}
	if err := os.Rename(staging, m.cfg.IndexDir); err != nil {
		if moved {
			if restoreErr := os.Rename(aside, m.cfg.IndexDir); restoreErr != nil {
				common.Logger().Error("index: restore of old artifact failed", "error", restoreErr)
			}
		}
		return fmt.Errorf("swap index into place: %w", err)
	}
	if moved {
		if err := os.RemoveAll(aside); err != nil {
			common.Logger().Warn("index: old artifact cleanup failed", "error", err)
		}
	}
	return nil
}
