package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"overdub/internal/project"
)

const indexVersion = "1.0"

// Entry is the denormalized project summary kept in the index document. The
// index exists so listing and search never have to deserialize full payloads.
type Entry struct {
	ID                   string        `json:"id"`
	Name                 string        `json:"name"`
	Description          string        `json:"description,omitempty"`
	ProcessingStage      project.Stage `json:"processing_stage"`
	CompletionPercentage float64       `json:"completion_percentage"`
	TargetLanguage       string        `json:"target_language,omitempty"`
	TotalSegments        int           `json:"total_segments"`
	TotalDuration        float64       `json:"total_duration"`
	OriginalFilename     string        `json:"original_filename,omitempty"`
	FileHash             string        `json:"file_hash,omitempty"`
	FileSize             int64         `json:"file_size,omitempty"`
	PayloadSize          int64         `json:"payload_size"`
	Tags                 []string      `json:"tags,omitempty"`
	Category             string        `json:"category,omitempty"`
	IsShared             bool          `json:"is_shared"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
	LastAccessed         *time.Time    `json:"last_accessed,omitempty"`
}

type indexStatistics struct {
	TotalProjects int        `json:"total_projects"`
	TotalBytes    int64      `json:"total_bytes"`
	LastCleanup   *time.Time `json:"last_cleanup,omitempty"`
}

type indexDocument struct {
	Version    string           `json:"version"`
	CreatedAt  time.Time        `json:"created_at"`
	Projects   map[string]Entry `json:"projects"`
	Statistics indexStatistics  `json:"statistics"`
}

func newIndexDocument() *indexDocument {
	return &indexDocument{
		Version:   indexVersion,
		CreatedAt: time.Now().UTC(),
		Projects:  make(map[string]Entry),
	}
}

// loadIndex reads the index document, tolerating a missing or empty file
// (fresh store) by returning a new document.
func loadIndex(path string) (*indexDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newIndexDocument(), nil
		}
		return nil, fmt.Errorf("%w: read index: %w", ErrIOFailure, err)
	}
	if len(data) == 0 {
		return newIndexDocument(), nil
	}

	var doc indexDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse index: %w", ErrCorrupted, err)
	}
	if doc.Projects == nil {
		doc.Projects = make(map[string]Entry)
	}
	if doc.Version == "" {
		doc.Version = indexVersion
	}
	return &doc, nil
}

// writeIndex persists the document atomically via the temp-suffix convention.
func writeIndex(path string, doc *indexDocument) error {
	doc.Statistics.TotalProjects = len(doc.Projects)
	var total int64
	for _, entry := range doc.Projects {
		total += entry.PayloadSize
	}
	doc.Statistics.TotalBytes = total

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal index: %w", ErrIndexWrite, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("%w: write index temp file: %w", ErrIndexWrite, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: replace index: %w", ErrIndexWrite, err)
	}
	return nil
}

// entryFromProject builds the index summary for a just-persisted project.
func entryFromProject(p *project.Project, payloadSize int64) Entry {
	return Entry{
		ID:                   p.ID,
		Name:                 p.Name,
		Description:          p.Description,
		ProcessingStage:      p.ProcessingStage,
		CompletionPercentage: p.CompletionPercentage,
		TargetLanguage:       p.TargetLanguage,
		TotalSegments:        p.TotalSegments,
		TotalDuration:        p.TotalDuration,
		OriginalFilename:     p.OriginalFilename,
		FileHash:             p.FileHash,
		FileSize:             p.FileSize,
		PayloadSize:          payloadSize,
		Tags:                 append([]string(nil), p.Tags...),
		Category:             p.Category,
		IsShared:             p.IsShared,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}
