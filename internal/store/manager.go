package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"overdub/internal/logging"
	"overdub/internal/project"
)

const (
	indexFileName = "projects_index.json"
	lockFileName  = "store.lock"
	dataDirName   = "data"
)

// Manager owns a project store directory: the index document, the per-project
// payload files under data/, and the advisory lock that keeps a second
// process out. All methods are safe for concurrent use within one process.
type Manager struct {
	dir       string
	dataDir   string
	indexPath string
	lock      *flock.Flock
	logger    *slog.Logger

	mu    sync.RWMutex
	index *indexDocument
}

// Open acquires the store at dir, creating its layout on first use. The
// on-disk state is checked and repaired before the manager is returned, so a
// crash during a previous save never surfaces to callers.
func Open(dir string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "store")

	dataDir := filepath.Join(dir, dataDirName)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create store layout: %w", ErrIOFailure, err)
	}

	lock := flock.New(filepath.Join(dir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: acquire store lock: %w", ErrIOFailure, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: store %s is locked by another process", ErrIOFailure, dir)
	}

	index, err := loadIndex(filepath.Join(dir, indexFileName))
	if err != nil {
		lock.Unlock()
		return nil, err
	}

	m := &Manager{
		dir:       dir,
		dataDir:   dataDir,
		indexPath: filepath.Join(dir, indexFileName),
		lock:      lock,
		logger:    logger,
		index:     index,
	}

	stats, err := m.CheckAndRepair()
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	if stats.Dirty() {
		logger.Info("store repaired on open",
			logging.Int("orphaned_entries", stats.OrphanedEntries),
			logging.Int("orphaned_payloads", stats.OrphanedPayloads),
			logging.Int("temp_files", stats.TempFiles))
	}
	return m, nil
}

// Close releases the store lock. The manager must not be used afterwards.
func (m *Manager) Close() error {
	if err := m.lock.Unlock(); err != nil {
		return fmt.Errorf("%w: release store lock: %w", ErrIOFailure, err)
	}
	return nil
}

// Dir returns the store's root directory.
func (m *Manager) Dir() string { return m.dir }

func (m *Manager) payloadPath(id string) string {
	return filepath.Join(m.dataDir, id+".json")
}

// Create persists a brand-new project and returns it.
func (m *Manager) Create(p *project.Project) (*project.Project, error) {
	if err := m.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Save writes the project payload and index entry as a single logical
// operation. The payload lands first via temp-write-and-rename; if the index
// cannot be updated afterwards the payload change is rolled back, so the
// index and data directory never disagree.
func (m *Manager) Save(p *project.Project) error {
	if p == nil || strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: project has no id", ErrValidation)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(p)
}

func (m *Manager) saveLocked(p *project.Project) error {
	p.RefreshStatistics()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal project %s: %w", ErrIOFailure, p.ID, err)
	}

	path := m.payloadPath(p.ID)
	prevEntry, existed := m.index.Projects[p.ID]

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("%w: write payload temp file for %s: %w", ErrIOFailure, p.ID, err)
	}
	// Read the temp file back and round-trip it before it replaces the
	// payload. Bytes that cannot be parsed again never reach the store.
	written, err := os.ReadFile(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: read back payload temp file for %s: %w", ErrIOFailure, p.ID, err)
	}
	var check project.Project
	if err := json.Unmarshal(written, &check); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: project %s does not round-trip: %w", ErrValidation, p.ID, err)
	}
	if check.ID != p.ID {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: project %s round-trip id mismatch", ErrValidation, p.ID)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: replace payload for %s: %w", ErrIOFailure, p.ID, err)
	}

	m.index.Projects[p.ID] = entryFromProject(p, int64(len(data)))
	if err := m.writeIndexLocked(); err != nil {
		// Roll back so index and payloads stay consistent. A project that
		// existed before the save keeps its (now newer) payload and its old
		// index entry; a new project is removed entirely.
		if existed {
			m.index.Projects[p.ID] = prevEntry
		} else {
			delete(m.index.Projects, p.ID)
			os.Remove(path)
		}
		return err
	}

	m.logger.Info("project saved",
		logging.String(logging.FieldProjectID, p.ID),
		logging.String(logging.FieldStage, string(p.ProcessingStage)),
		logging.Int("payload_bytes", len(data)))
	return nil
}

func (m *Manager) writeIndexLocked() error {
	return writeIndex(m.indexPath, m.index)
}

// Load reads a project payload by id and touches its last-accessed time. An
// index entry whose payload has gone missing is removed and reported as
// ErrNotFound.
func (m *Manager) Load(id string) (*project.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(id)
}

func (m *Manager) loadLocked(id string) (*project.Project, error) {
	entry, ok := m.index.Projects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	data, err := os.ReadFile(m.payloadPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			delete(m.index.Projects, id)
			if werr := m.writeIndexLocked(); werr != nil {
				m.logger.Warn("failed to drop orphaned index entry", logging.String(logging.FieldProjectID, id), logging.Error(werr))
			}
			m.logger.Warn("payload missing for indexed project", logging.String(logging.FieldProjectID, id))
			return nil, fmt.Errorf("%w: %s payload missing", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: read payload for %s: %w", ErrIOFailure, id, err)
	}

	var p project.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: payload for %s: %w", ErrCorrupted, id, err)
	}
	if p.ID != id {
		return nil, fmt.Errorf("%w: payload for %s declares id %s", ErrCorrupted, id, p.ID)
	}

	now := time.Now().UTC()
	entry.LastAccessed = &now
	m.index.Projects[id] = entry
	if err := m.writeIndexLocked(); err != nil {
		m.logger.Warn("failed to record access time", logging.String(logging.FieldProjectID, id), logging.Error(err))
	}
	return &p, nil
}

// List returns index entries sorted by most recently updated. Entries whose
// payload file has vanished are skipped. When includeShared is false, shared
// projects are filtered out.
func (m *Manager) List(includeShared bool) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]Entry, 0, len(m.index.Projects))
	for id, entry := range m.index.Projects {
		if !includeShared && entry.IsShared {
			continue
		}
		if _, err := os.Stat(m.payloadPath(id)); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries
}

// Delete removes a project's payload and index entry. Deleting an unknown id
// returns ErrNotFound.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteLocked(id)
}

func (m *Manager) deleteLocked(id string) error {
	if _, ok := m.index.Projects[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := os.Remove(m.payloadPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove payload for %s: %w", ErrIOFailure, id, err)
	}
	delete(m.index.Projects, id)
	if err := m.writeIndexLocked(); err != nil {
		return err
	}
	m.logger.Info("project deleted", logging.String(logging.FieldProjectID, id))
	return nil
}

// Duplicate deep-copies a stored project under a new name. The copy gets a
// fresh identity with sharing cleared. When newName is empty the copy is
// named "<original> (Copy)".
func (m *Manager) Duplicate(id, newName string) (*project.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	src, err := m.loadLocked(id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(newName) == "" {
		newName = src.Name + " (Copy)"
	}

	copyProj := src.Clone()
	copyProj.Reidentify(newName)
	for copyProj.ID == src.ID {
		copyProj.Reidentify(newName)
	}
	if err := m.saveLocked(copyProj); err != nil {
		return nil, err
	}
	return copyProj, nil
}

// Search returns entries whose name, description, or tags contain the query,
// case-insensitively. An empty query matches everything.
func (m *Manager) Search(query string) []Entry {
	query = strings.ToLower(strings.TrimSpace(query))
	entries := m.List(true)
	if query == "" {
		return entries
	}

	matched := entries[:0]
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.Name), query) ||
			strings.Contains(strings.ToLower(entry.Description), query) ||
			tagsMatch(entry.Tags, query) {
			matched = append(matched, entry)
		}
	}
	return matched
}

func tagsMatch(tags []string, query string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// FindByFileHash returns the entry for a project derived from the same
// source content, if one exists.
func (m *Manager) FindByFileHash(hash string) (Entry, bool) {
	if hash == "" {
		return Entry{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, entry := range m.index.Projects {
		if entry.FileHash == hash {
			return entry, true
		}
	}
	return Entry{}, false
}

// Statistics summarizes the store for status displays.
type Statistics struct {
	TotalProjects int
	TotalBytes    int64
	ByStage       map[project.Stage]int
	ByLanguage    map[string]int
	LastCleanup   *time.Time
}

// Stats computes aggregate store statistics from the index.
func (m *Manager) Stats() Statistics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Statistics{
		ByStage:     make(map[project.Stage]int),
		ByLanguage:  make(map[string]int),
		LastCleanup: m.index.Statistics.LastCleanup,
	}
	for _, entry := range m.index.Projects {
		stats.TotalProjects++
		stats.TotalBytes += entry.PayloadSize
		stats.ByStage[entry.ProcessingStage]++
		if entry.TargetLanguage != "" {
			stats.ByLanguage[entry.TargetLanguage]++
		}
	}
	return stats
}
