package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"overdub/internal/logging"
	"overdub/internal/project"
)

// RepairStats reports what a consistency pass changed.
type RepairStats struct {
	// OrphanedEntries counts index entries dropped because their payload file
	// was missing.
	OrphanedEntries int
	// OrphanedPayloads counts payload files adopted back into the index after
	// being found without an entry.
	OrphanedPayloads int
	// CorruptedPayloads counts unreadable payload files that were removed.
	CorruptedPayloads int
	// TempFiles counts leftover temp files swept from interrupted writes.
	TempFiles int
}

// Dirty reports whether the pass changed anything.
func (s RepairStats) Dirty() bool {
	return s.OrphanedEntries > 0 || s.OrphanedPayloads > 0 || s.CorruptedPayloads > 0 || s.TempFiles > 0
}

// CheckAndRepair restores the index⇔payload invariant in both directions:
// index entries without a payload are dropped, every indexed payload is
// parsed and removed together with its entry when unreadable, payload files
// without an entry are re-adopted from their own contents, and temp files
// from interrupted writes are swept. The pass is idempotent.
func (m *Manager) CheckAndRepair() (RepairStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var stats RepairStats

	for id := range m.index.Projects {
		path := m.payloadPath(id)
		if _, err := os.Stat(path); err != nil {
			delete(m.index.Projects, id)
			stats.OrphanedEntries++
			m.logger.Warn("dropped index entry without payload", logging.String(logging.FieldProjectID, id))
			continue
		}
		entry, err := m.adoptPayload(id, path)
		if err != nil {
			if removeErr := os.Remove(path); removeErr == nil {
				delete(m.index.Projects, id)
				stats.CorruptedPayloads++
				m.logger.Warn("removed corrupted payload", logging.String(logging.FieldProjectID, id), logging.Error(err))
			}
			continue
		}
		// The payload is authoritative; refresh the entry from it.
		entry.LastAccessed = m.index.Projects[id].LastAccessed
		m.index.Projects[id] = entry
	}

	dirEntries, err := os.ReadDir(m.dataDir)
	if err != nil {
		return stats, fmt.Errorf("%w: scan data directory: %w", ErrIOFailure, err)
	}
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() {
			continue
		}
		path := filepath.Join(m.dataDir, name)
		if strings.HasSuffix(name, ".tmp") {
			if err := os.Remove(path); err == nil {
				stats.TempFiles++
			}
			continue
		}
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		if _, ok := m.index.Projects[id]; ok {
			continue
		}

		adopted, err := m.adoptPayload(id, path)
		if err != nil {
			if removeErr := os.Remove(path); removeErr == nil {
				stats.CorruptedPayloads++
				m.logger.Warn("removed unreadable payload", logging.String(logging.FieldProjectID, id), logging.Error(err))
			}
			continue
		}
		m.index.Projects[id] = adopted
		stats.OrphanedPayloads++
		m.logger.Info("re-adopted orphaned payload", logging.String(logging.FieldProjectID, id))
	}

	if stats.Dirty() {
		if err := m.writeIndexLocked(); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// adoptPayload rebuilds an index entry from a payload file found on disk
// without one.
func (m *Manager) adoptPayload(id, path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: read payload for %s: %w", ErrIOFailure, id, err)
	}
	var p project.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return Entry{}, fmt.Errorf("%w: payload for %s: %w", ErrCorrupted, id, err)
	}
	if p.ID != id {
		return Entry{}, fmt.Errorf("%w: payload for %s declares id %s", ErrCorrupted, id, p.ID)
	}
	return entryFromProject(&p, int64(len(data))), nil
}
