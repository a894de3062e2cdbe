package project

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PayloadVersion tags the serialized project schema.
const PayloadVersion = "1.0"

// Project is the aggregate root of one dubbing job: six per-stage segment
// collections, configuration, accumulators, and derived statistics. Mutations
// go through the named operations below, each of which refreshes statistics
// and advances UpdatedAt.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   string    `json:"version"`

	OriginalFilename string `json:"original_filename,omitempty"`
	FileHash         string `json:"file_hash,omitempty"`
	FileSize         int64  `json:"file_size,omitempty"`

	ProcessingStage      Stage   `json:"processing_stage"`
	CompletionPercentage float64 `json:"completion_percentage"`

	TargetLanguage     string         `json:"target_language,omitempty"`
	TranslationService string         `json:"translation_service"`
	VoiceSettings      map[string]any `json:"voice_settings,omitempty"`

	Segments           []*Segment `json:"segments,omitempty"`
	SegmentedSegments  []*Segment `json:"segmented_segments,omitempty"`
	ConfirmedSegments  []*Segment `json:"confirmed_segments,omitempty"`
	TranslatedSegments []*Segment `json:"translated_segments,omitempty"`
	OptimizedSegments  []*Segment `json:"optimized_segments,omitempty"`
	FinalSegments      []*Segment `json:"final_segments,omitempty"`

	TotalSegments  int     `json:"total_segments"`
	TotalDuration  float64 `json:"total_duration"`
	ProcessingTime float64 `json:"processing_time,omitempty"`

	APIUsage     map[string]map[string]any `json:"api_usage,omitempty"`
	QualityStats map[string]any            `json:"quality_stats,omitempty"`

	Tags     []string `json:"tags,omitempty"`
	Category string   `json:"category,omitempty"`

	IsShared  bool   `json:"is_shared"`
	ShareURL  string `json:"share_url,omitempty"`
	CreatedBy string `json:"created_by,omitempty"`
}

// New constructs an empty project at the file-upload stage. The id is derived
// once from the name, creation timestamp, and source filename plus a random
// component, and is stable for the project's lifetime.
func New(name, description string) *Project {
	now := time.Now().UTC()
	p := &Project{
		Name:               name,
		Description:        description,
		CreatedAt:          now,
		UpdatedAt:          now,
		Version:            PayloadVersion,
		ProcessingStage:    StageFileUpload,
		TranslationService: "gpt",
	}
	p.ID = deriveID(p.Name, p.CreatedAt, p.OriginalFilename)
	p.refreshStatistics()
	return p
}

// NewFromFile constructs a project seeded with uploaded subtitle content.
// When name is empty it is derived from the filename.
func NewFromFile(filename string, content []byte, name, description string) *Project {
	if strings.TrimSpace(name) == "" {
		name = NameFromFilename(filename)
	}
	p := New(name, description)
	p.SetSourceFile(filename, content)
	return p
}

func deriveID(name string, createdAt time.Time, filename string) string {
	seed := fmt.Sprintf("%s|%s|%s|%s", name, createdAt.Format(time.RFC3339Nano), filename, uuid.NewString())
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])[:12]
}

// NameFromFilename derives a display name from an uploaded file's name:
// extension stripped, separators collapsed to spaces, title-cased.
func NameFromFilename(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	name := strings.TrimSpace(cleaned.String())
	if name == "" {
		return "Untitled Project"
	}
	return cases.Title(language.Und).String(name)
}

// ActiveSegments returns the authoritative "current" collection: the one
// belonging to the most advanced non-empty stage. This, not ProcessingStage,
// is what statistics are computed from.
func (p *Project) ActiveSegments() []*Segment {
	switch {
	case len(p.FinalSegments) > 0:
		return p.FinalSegments
	case len(p.OptimizedSegments) > 0:
		return p.OptimizedSegments
	case len(p.TranslatedSegments) > 0:
		return p.TranslatedSegments
	case len(p.ConfirmedSegments) > 0:
		return p.ConfirmedSegments
	case len(p.SegmentedSegments) > 0:
		return p.SegmentedSegments
	default:
		return p.Segments
	}
}

// AdvanceStage moves the workflow to stage and, when segments are supplied,
// stores them in the collection that stage owns. Statistics are refreshed.
func (p *Project) AdvanceStage(stage Stage, segments []*Segment) error {
	if !stage.Known() {
		return fmt.Errorf("unknown processing stage %q", stage)
	}
	p.ProcessingStage = stage

	if segments != nil {
		switch stage {
		case StageSegmentation:
			p.SegmentedSegments = segments
		case StageConfirmSegmentation:
			p.ConfirmedSegments = segments
		case StageTranslating:
			p.TranslatedSegments = segments
		case StageUserConfirmation:
			p.OptimizedSegments = segments
		case StageCompletion:
			p.FinalSegments = segments
		}
	}

	p.refreshStatistics()
	return nil
}

// SetSourceFile records provenance of the uploaded subtitle source. The hash
// and size are recorded once at upload time and never recomputed.
func (p *Project) SetSourceFile(filename string, content []byte) {
	p.OriginalFilename = filename
	sum := sha256.Sum256(content)
	p.FileHash = hex.EncodeToString(sum[:])
	p.FileSize = int64(len(content))
	p.touch()
}

// SetTranslationConfig sets the translation target and service, merging any
// supplied voice settings.
func (p *Project) SetTranslationConfig(targetLanguage, service string, voiceSettings map[string]any) {
	p.TargetLanguage = targetLanguage
	if service != "" {
		p.TranslationService = service
	}
	if len(voiceSettings) > 0 {
		if p.VoiceSettings == nil {
			p.VoiceSettings = make(map[string]any, len(voiceSettings))
		}
		for key, value := range voiceSettings {
			p.VoiceSettings[key] = value
		}
	}
	p.refreshStatistics()
}

// RecordAPIUsage folds usage deltas into the per-service accumulator: numeric
// fields add, everything else overwrites.
func (p *Project) RecordAPIUsage(service string, deltas map[string]any) {
	if p.APIUsage == nil {
		p.APIUsage = make(map[string]map[string]any)
	}
	usage := p.APIUsage[service]
	if usage == nil {
		usage = make(map[string]any, len(deltas))
		p.APIUsage[service] = usage
	}
	for key, value := range deltas {
		if delta, ok := toFloat(value); ok {
			prior, _ := toFloat(usage[key])
			usage[key] = prior + delta
			continue
		}
		usage[key] = value
	}
	p.touch()
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	default:
		return 0, false
	}
}

// UpdateQualityStats merges quality data shallowly into the accumulator.
func (p *Project) UpdateQualityStats(stats map[string]any) {
	if p.QualityStats == nil {
		p.QualityStats = make(map[string]any, len(stats))
	}
	for key, value := range stats {
		p.QualityStats[key] = value
	}
	p.touch()
}

// AttachTags adds tags with set semantics, preserving first-insertion order.
func (p *Project) AttachTags(tags ...string) {
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		exists := false
		for _, have := range p.Tags {
			if have == tag {
				exists = true
				break
			}
		}
		if !exists {
			p.Tags = append(p.Tags, tag)
		}
	}
	p.touch()
}

// SetShareInfo sets the sharing fields as a unit. IsShared is true exactly
// when a share URL is present.
func (p *Project) SetShareInfo(shareURL, createdBy string) {
	p.IsShared = shareURL != ""
	p.ShareURL = shareURL
	if createdBy != "" {
		p.CreatedBy = createdBy
	}
	p.touch()
}

// AddProcessingTime accumulates pipeline wall-clock seconds.
func (p *Project) AddProcessingTime(seconds float64) {
	if seconds > 0 {
		p.ProcessingTime += seconds
	}
	p.touch()
}

// DisplayName combines the project name with its target language when set.
func (p *Project) DisplayName() string {
	if p.TargetLanguage != "" {
		return fmt.Sprintf("%s (%s)", p.Name, p.TargetLanguage)
	}
	return p.Name
}

// StageLabel returns the human-readable name of the current stage.
func (p *Project) StageLabel() string {
	return p.ProcessingStage.Label()
}

// IsCompleted reports whether the workflow reached its final stage.
func (p *Project) IsCompleted() bool {
	return p.ProcessingStage == StageCompletion
}

// CanResume reports whether the project has in-flight work to pick up.
func (p *Project) CanResume() bool {
	return p.ProcessingStage != StageFileUpload && p.ProcessingStage != StageCompletion
}

// RefreshStatistics recomputes derived statistics. Callers normally never
// need this directly; every mutating operation runs it. It exists for code
// paths that assemble a project field by field, such as import and migration.
func (p *Project) RefreshStatistics() {
	p.refreshStatistics()
}

func (p *Project) refreshStatistics() {
	active := p.ActiveSegments()
	p.TotalSegments = len(active)

	total := 0.0
	for _, seg := range active {
		if seg.End > total {
			total = seg.End
		}
	}
	p.TotalDuration = total

	p.CompletionPercentage = p.ProcessingStage.CompletionWeight()
	p.touch()
}

func (p *Project) touch() {
	p.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy of the project. Segment audio buffers are shared
// between original and clone; everything else is copied.
func (p *Project) Clone() *Project {
	clone := *p
	clone.Segments = cloneSegments(p.Segments)
	clone.SegmentedSegments = cloneSegments(p.SegmentedSegments)
	clone.ConfirmedSegments = cloneSegments(p.ConfirmedSegments)
	clone.TranslatedSegments = cloneSegments(p.TranslatedSegments)
	clone.OptimizedSegments = cloneSegments(p.OptimizedSegments)
	clone.FinalSegments = cloneSegments(p.FinalSegments)
	clone.VoiceSettings = copyAnyMap(p.VoiceSettings)
	clone.QualityStats = copyAnyMap(p.QualityStats)
	if p.APIUsage != nil {
		clone.APIUsage = make(map[string]map[string]any, len(p.APIUsage))
		for service, usage := range p.APIUsage {
			clone.APIUsage[service] = copyAnyMap(usage)
		}
	}
	if p.Tags != nil {
		clone.Tags = append([]string(nil), p.Tags...)
	}
	return &clone
}

// Reidentify gives the project a fresh identity: new id, reset timestamps,
// sharing cleared. Duplicated and imported projects pass through here so a
// copy can never collide with its source.
func (p *Project) Reidentify(newName string) {
	if strings.TrimSpace(newName) != "" {
		p.Name = newName
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.ID = deriveID(p.Name, now, p.OriginalFilename)
	p.IsShared = false
	p.ShareURL = ""
}

// SegmentCollections returns named views of all six per-stage collections in
// pipeline order. The slices alias the project's own collections.
func (p *Project) SegmentCollections() []SegmentCollection {
	return []SegmentCollection{
		{Name: "segments", Segments: p.Segments},
		{Name: "segmented_segments", Segments: p.SegmentedSegments},
		{Name: "confirmed_segments", Segments: p.ConfirmedSegments},
		{Name: "translated_segments", Segments: p.TranslatedSegments},
		{Name: "optimized_segments", Segments: p.OptimizedSegments},
		{Name: "final_segments", Segments: p.FinalSegments},
	}
}

// SegmentCollection pairs a stage collection with its payload field name.
type SegmentCollection struct {
	Name     string
	Segments []*Segment
}

func copyAnyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = copyAnyValue(value)
	}
	return dst
}

func copyAnyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return copyAnyMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = copyAnyValue(item)
		}
		return out
	default:
		return value
	}
}
