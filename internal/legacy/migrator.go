package legacy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"overdub/internal/logging"
	"overdub/internal/project"
	"overdub/internal/store"
)

const (
	indexFileName = "cache_index.json"
	dataDirName   = "data"
)

// Cache types written by the old keyed-cache store, in pipeline order.
const (
	cacheTypeSegmentation = "segmentation"
	cacheTypeTranslation  = "translation"
	cacheTypeConfirmation = "confirmation"
)

// cacheIndex mirrors the old store's cache_index.json.
type cacheIndex struct {
	CacheEntries map[string]cacheEntry `json:"cache_entries"`
}

type cacheEntry struct {
	CacheKey   string `json:"cache_key"`
	FilePath   string `json:"file_path"`
	CacheType  string `json:"cache_type"`
	FileHash   string `json:"file_hash"`
	FileSize   int64  `json:"file_size,omitempty"`
	TargetLang string `json:"target_lang,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// cachePayload mirrors the per-key data/<key>.json payload. Each cache type
// populated only its own collections; the rest stay nil.
type cachePayload struct {
	OriginalSegments   []*project.Segment `json:"original_segments,omitempty"`
	ConfirmedSegments  []*project.Segment `json:"confirmed_segments,omitempty"`
	TranslatedSegments []*project.Segment `json:"translated_segments,omitempty"`
	OptimizedSegments  []*project.Segment `json:"optimized_segments,omitempty"`
	TargetLang         string             `json:"target_lang,omitempty"`
}

// Result summarizes one migration run.
type Result struct {
	// Migrated counts projects created from legacy cache groups.
	Migrated int
	// Skipped counts groups left alone because a project with the same
	// file hash already exists.
	Skipped int
	// Failed counts groups whose payloads could not be read.
	Failed int
}

// Migrator folds the old per-stage keyed cache into store projects. One
// source file (identified by its content hash) becomes at most one project.
type Migrator struct {
	cacheDir string
	manager  *store.Manager
	logger   *slog.Logger
}

// New constructs a migrator reading from cacheDir and writing through manager.
func New(cacheDir string, manager *store.Manager, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Migrator{
		cacheDir: cacheDir,
		manager:  manager,
		logger:   logging.NewComponentLogger(logger, "legacy"),
	}
}

// Run migrates every legacy cache group that does not already have a project
// with the same file hash. Re-running over the same cache is a no-op for
// groups migrated earlier. A missing cache directory migrates nothing.
func (m *Migrator) Run() (Result, error) {
	var result Result

	index, err := m.loadCacheIndex()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			m.logger.Info("no legacy cache found", logging.String("dir", m.cacheDir))
			return result, nil
		}
		return result, err
	}

	groups := groupByFileHash(index)
	for _, group := range groups {
		hash := group[0].FileHash
		if _, exists := m.manager.FindByFileHash(hash); exists {
			result.Skipped++
			m.logger.Info("legacy cache group already migrated", logging.String("file_hash", hash))
			continue
		}

		snap, name, ok := m.assembleSnapshot(group)
		if !ok {
			result.Failed++
			continue
		}

		p := project.FromLegacySnapshot(snap, name)
		p.FileHash = hash
		p.OriginalFilename = filepath.Base(group[0].FilePath)
		p.FileSize = group[0].FileSize
		p.AttachTags("migrated")
		p.RefreshStatistics()

		if err := m.manager.Save(p); err != nil {
			return result, fmt.Errorf("persist migrated project for %s: %w", hash, err)
		}
		result.Migrated++
		m.logger.Info("migrated legacy cache group",
			logging.String(logging.FieldProjectID, p.ID),
			logging.String("file_hash", hash),
			logging.String(logging.FieldStage, string(p.ProcessingStage)))
	}

	return result, nil
}

func (m *Migrator) loadCacheIndex() (*cacheIndex, error) {
	data, err := os.ReadFile(filepath.Join(m.cacheDir, indexFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: read legacy cache index: %w", store.ErrIOFailure, err)
	}
	var index cacheIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("%w: legacy cache index: %w", store.ErrCorrupted, err)
	}
	return &index, nil
}

// groupByFileHash buckets index entries by source-file hash, each bucket
// sorted in pipeline order so later stages override earlier ones. Entries
// without a hash cannot be grouped and are dropped.
func groupByFileHash(index *cacheIndex) [][]cacheEntry {
	buckets := make(map[string][]cacheEntry)
	for key, entry := range index.CacheEntries {
		if entry.FileHash == "" {
			continue
		}
		if entry.CacheKey == "" {
			entry.CacheKey = key
		}
		buckets[entry.FileHash] = append(buckets[entry.FileHash], entry)
	}

	hashes := make([]string, 0, len(buckets))
	for hash := range buckets {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)

	groups := make([][]cacheEntry, 0, len(buckets))
	for _, hash := range hashes {
		group := buckets[hash]
		sort.Slice(group, func(i, j int) bool {
			return stageRank(group[i].CacheType) < stageRank(group[j].CacheType)
		})
		groups = append(groups, group)
	}
	return groups
}

func stageRank(cacheType string) int {
	switch cacheType {
	case cacheTypeSegmentation:
		return 0
	case cacheTypeTranslation:
		return 1
	case cacheTypeConfirmation:
		return 2
	default:
		return 3
	}
}

// assembleSnapshot merges a group's per-stage payloads into one snapshot and
// derives a project name from the source file. Groups whose payloads are all
// unreadable are reported as failed.
func (m *Migrator) assembleSnapshot(group []cacheEntry) (project.LegacySnapshot, string, bool) {
	var snap project.LegacySnapshot
	loaded := 0

	for _, entry := range group {
		payload, err := m.loadPayload(entry.CacheKey)
		if err != nil {
			m.logger.Warn("skipping unreadable legacy payload",
				logging.String("cache_key", entry.CacheKey),
				logging.String("cache_type", entry.CacheType),
				logging.Error(err))
			continue
		}
		loaded++

		if payload.OriginalSegments != nil {
			snap.OriginalSegments = payload.OriginalSegments
		}
		if payload.ConfirmedSegments != nil {
			snap.ConfirmedSegments = payload.ConfirmedSegments
		}
		if payload.TranslatedSegments != nil {
			snap.TranslatedSegments = payload.TranslatedSegments
		}
		if payload.OptimizedSegments != nil {
			snap.OptimizedSegments = payload.OptimizedSegments
		}
		if payload.TargetLang != "" {
			snap.TargetLanguage = payload.TargetLang
		}
		if entry.TargetLang != "" && snap.TargetLanguage == "" {
			snap.TargetLanguage = entry.TargetLang
		}
	}

	if loaded == 0 {
		return snap, "", false
	}

	name := ""
	if group[0].FilePath != "" {
		name = project.NameFromFilename(group[0].FilePath)
	}
	return snap, name, true
}

func (m *Migrator) loadPayload(key string) (*cachePayload, error) {
	data, err := os.ReadFile(filepath.Join(m.cacheDir, dataDirName, key+".json"))
	if err != nil {
		return nil, fmt.Errorf("%w: read legacy payload: %w", store.ErrIOFailure, err)
	}
	var payload cachePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: legacy payload %s: %w", store.ErrCorrupted, key, err)
	}
	return &payload, nil
}
