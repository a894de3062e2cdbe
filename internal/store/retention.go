package store

import (
	"sort"
	"time"

	"overdub/internal/logging"
)

// RetentionSweep removes stale projects: first everything not updated within
// maxAgeDays, then the oldest remainder beyond maxCount. A zero or negative
// limit disables that dimension. Shared projects are never swept. Returns the
// ids removed.
func (m *Manager) RetentionSweep(maxAgeDays, maxCount int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []string

	if maxAgeDays > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -maxAgeDays)
		for id, entry := range m.index.Projects {
			if entry.IsShared {
				continue
			}
			if entry.UpdatedAt.Before(cutoff) {
				if err := m.deleteLocked(id); err != nil {
					return removed, err
				}
				removed = append(removed, id)
			}
		}
	}

	if maxCount > 0 && len(m.index.Projects) > maxCount {
		type candidate struct {
			id      string
			updated time.Time
		}
		candidates := make([]candidate, 0, len(m.index.Projects))
		for id, entry := range m.index.Projects {
			if entry.IsShared {
				continue
			}
			candidates = append(candidates, candidate{id: id, updated: entry.UpdatedAt})
		}
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].updated.Before(candidates[j].updated)
		})
		excess := len(m.index.Projects) - maxCount
		for i := 0; i < excess && i < len(candidates); i++ {
			if err := m.deleteLocked(candidates[i].id); err != nil {
				return removed, err
			}
			removed = append(removed, candidates[i].id)
		}
	}

	now := time.Now().UTC()
	m.index.Statistics.LastCleanup = &now
	if err := m.writeIndexLocked(); err != nil {
		return removed, err
	}

	if len(removed) > 0 {
		m.logger.Info("retention sweep removed projects", logging.Int("count", len(removed)))
	}
	return removed, nil
}
