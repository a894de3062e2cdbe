package bundle

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"overdub/internal/audio"
	"overdub/internal/logging"
	"overdub/internal/project"
	"overdub/internal/store"
)

// FormatVersion identifies the archive layout this build reads and writes.
const FormatVersion = "2.0"

// DefaultMinAudioBytes is the smallest encoded audio artifact accepted into
// an archive. Anything below it cannot be a playable clip.
const DefaultMinAudioBytes = 100

const (
	projectEntryName  = "project.json"
	metadataEntryName = "metadata.json"
	audioDirName      = "audio"
)

// Metadata is the archive manifest written alongside the project payload.
type Metadata struct {
	FormatVersion  string    `json:"format_version"`
	ExportTime     time.Time `json:"export_time"`
	ProjectID      string    `json:"project_id"`
	ProjectName    string    `json:"project_name"`
	ContainsAudio  bool      `json:"contains_audio"`
	AudioFileCount int       `json:"audio_file_count"`
	AudioFormat    string    `json:"audio_format"`
}

// Codec exports projects to self-contained zip archives and imports them
// back. Export reads a live project because segment audio buffers are
// transient and only exist in memory; Import persists through the store so
// the incoming project gets a fresh identity.
type Codec struct {
	manager       *store.Manager
	logger        *slog.Logger
	minAudioBytes int
}

// New constructs a codec backed by the given store. minAudioBytes <= 0
// selects the default threshold.
func New(manager *store.Manager, minAudioBytes int, logger *slog.Logger) *Codec {
	if logger == nil {
		logger = logging.NewNop()
	}
	if minAudioBytes <= 0 {
		minAudioBytes = DefaultMinAudioBytes
	}
	return &Codec{
		manager:       manager,
		logger:        logging.NewComponentLogger(logger, "bundle"),
		minAudioBytes: minAudioBytes,
	}
}

// Export packages the project and every attached audio buffer into a zip
// archive. Audio entries that encode below the minimum size are skipped with
// a warning; the rest of the archive is still produced.
func (c *Codec) Export(p *project.Project) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: no project to export", store.ErrValidation)
	}

	snapshot := p.Clone()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	// Walk every stage collection, not just the active one; audio may be
	// attached at any stage. Segments sharing an id across collections share
	// one archive entry.
	audioCount := 0
	entrySizes := make(map[string]int64)
	for _, collection := range snapshot.SegmentCollections() {
		for _, seg := range collection.Segments {
			clip := seg.Audio()
			if clip == nil {
				continue
			}
			entryName := path.Join(audioDirName, seg.ID+".wav")
			size, seen := entrySizes[entryName]
			if !seen {
				encoded, err := audio.EncodeWAV(clip)
				if err != nil {
					c.logger.Warn("skipping segment audio",
						logging.String("segment_id", seg.ID), logging.Error(err))
					entrySizes[entryName] = 0
					clearAudioReference(seg)
					continue
				}
				if len(encoded) < c.minAudioBytes {
					c.logger.Warn("skipping implausibly small segment audio",
						logging.String("segment_id", seg.ID),
						logging.Int("bytes", len(encoded)),
						logging.Error(store.ErrValidation))
					entrySizes[entryName] = 0
					clearAudioReference(seg)
					continue
				}

				w, err := zw.Create(entryName)
				if err != nil {
					return nil, fmt.Errorf("%w: create archive entry %s: %w", store.ErrIOFailure, entryName, err)
				}
				if _, err := w.Write(encoded); err != nil {
					return nil, fmt.Errorf("%w: write archive entry %s: %w", store.ErrIOFailure, entryName, err)
				}
				size = int64(len(encoded))
				entrySizes[entryName] = size
				audioCount++
			}
			if size == 0 {
				clearAudioReference(seg)
				continue
			}
			seg.AudioPath = entryName
			seg.HasAudioFile = true
			seg.AudioFileSize = size
		}
	}

	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: marshal project %s: %w", store.ErrIOFailure, snapshot.ID, err)
	}
	if err := writeEntry(zw, projectEntryName, payload); err != nil {
		return nil, err
	}

	meta := Metadata{
		FormatVersion:  FormatVersion,
		ExportTime:     time.Now().UTC(),
		ProjectID:      snapshot.ID,
		ProjectName:    snapshot.Name,
		ContainsAudio:  audioCount > 0,
		AudioFileCount: audioCount,
		AudioFormat:    "wav",
	}
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: marshal archive metadata: %w", store.ErrIOFailure, err)
	}
	if err := writeEntry(zw, metadataEntryName, metaBytes); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: finalize archive: %w", store.ErrIOFailure, err)
	}

	c.logger.Info("project exported",
		logging.String(logging.FieldProjectID, snapshot.ID),
		logging.Int("audio_files", audioCount),
		logging.Int("archive_bytes", buf.Len()))
	return buf.Bytes(), nil
}

// clearAudioReference drops a snapshot segment's durable audio fields when
// its artifact was not written, so the archived payload never points at an
// entry that is not there.
func clearAudioReference(seg *project.Segment) {
	seg.AudioPath = ""
	seg.HasAudioFile = false
	seg.AudioFileSize = 0
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("%w: create archive entry %s: %w", store.ErrIOFailure, name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: write archive entry %s: %w", store.ErrIOFailure, name, err)
	}
	return nil
}

// Import reads an archive produced by Export, gives the project a fresh
// identity under newName (empty keeps the archived name), reattaches audio,
// and persists it. The archived project's sharing state is discarded.
func (c *Codec) Import(data []byte, newName string) (*project.Project, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip archive: %w", store.ErrCorrupted, err)
	}

	// The manifest is optional; only a present, unrecognized version rejects
	// the archive.
	meta, hasMeta, err := readMetadata(zr)
	if err != nil {
		return nil, err
	}
	if hasMeta && meta.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: archive declares %q, this build reads %q",
			store.ErrVersionMismatch, meta.FormatVersion, FormatVersion)
	}

	payload, err := readEntry(zr, projectEntryName)
	if err != nil {
		return nil, err
	}
	var p project.Project
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("%w: archived project payload: %w", store.ErrCorrupted, err)
	}
	if strings.TrimSpace(p.ID) == "" {
		return nil, fmt.Errorf("%w: archived project has no id", store.ErrCorrupted)
	}

	audioEntries, err := c.attachAudio(zr, &p)
	if err != nil {
		return nil, err
	}

	p.Reidentify(newName)
	p.RefreshStatistics()

	if err := c.manager.Save(&p); err != nil {
		return nil, err
	}

	c.logger.Info("project imported",
		logging.String(logging.FieldProjectID, p.ID),
		logging.String("source_project_id", meta.ProjectID),
		logging.Int("audio_files", audioEntries))
	return &p, nil
}

func readMetadata(zr *zip.Reader) (Metadata, bool, error) {
	f := findEntry(zr, metadataEntryName)
	if f == nil {
		return Metadata{}, false, nil
	}
	data, err := readFile(f)
	if err != nil {
		return Metadata{}, false, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, false, fmt.Errorf("%w: archive metadata: %w", store.ErrCorrupted, err)
	}
	return meta, true, nil
}

func findEntry(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func readEntry(zr *zip.Reader, name string) ([]byte, error) {
	f := findEntry(zr, name)
	if f == nil {
		return nil, fmt.Errorf("%w: archive missing %s", store.ErrCorrupted, name)
	}
	return readFile(f)
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open archive entry %s: %w", store.ErrCorrupted, f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read archive entry %s: %w", store.ErrCorrupted, f.Name, err)
	}
	return data, nil
}

// attachAudio decodes every audio/<segment_id>.wav entry and attaches it to
// the matching segment across all stage collections. Entries without a
// matching segment are logged and skipped.
func (c *Codec) attachAudio(zr *zip.Reader, p *project.Project) (int, error) {
	segmentsByID := make(map[string][]*project.Segment)
	for _, collection := range p.SegmentCollections() {
		for _, seg := range collection.Segments {
			segmentsByID[seg.ID] = append(segmentsByID[seg.ID], seg)
		}
	}

	attached := 0
	for _, f := range zr.File {
		dir, file := path.Split(f.Name)
		if path.Clean(dir) != audioDirName || !strings.HasSuffix(file, ".wav") {
			continue
		}
		segID := strings.TrimSuffix(file, ".wav")
		targets, ok := segmentsByID[segID]
		if !ok {
			c.logger.Warn("archive audio references unknown segment",
				logging.String("segment_id", segID))
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return attached, fmt.Errorf("%w: open archive entry %s: %w", store.ErrCorrupted, f.Name, err)
		}
		encoded, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return attached, fmt.Errorf("%w: read archive entry %s: %w", store.ErrCorrupted, f.Name, err)
		}

		clip, err := audio.DecodeWAV(encoded)
		if err != nil {
			if errors.Is(err, audio.ErrInvalidWAV) {
				c.logger.Warn("archive audio is not valid wav",
					logging.String("segment_id", segID), logging.Error(err))
				continue
			}
			return attached, fmt.Errorf("%w: decode %s: %w", store.ErrCorrupted, f.Name, err)
		}

		for _, seg := range targets {
			seg.SetAudio(clip)
			seg.AudioPath = f.Name
			seg.HasAudioFile = true
			seg.AudioFileSize = int64(len(encoded))
		}
		attached++
	}
	return attached, nil
}
