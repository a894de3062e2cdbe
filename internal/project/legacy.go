package project

// LegacySnapshot holds the per-stage payloads recovered from the old keyed
// cache for one source file. Collections that the cache did not contain stay
// nil.
type LegacySnapshot struct {
	OriginalSegments   []*Segment
	ConfirmedSegments  []*Segment
	TranslatedSegments []*Segment
	OptimizedSegments  []*Segment
	TargetLanguage     string
}

// FromLegacySnapshot folds an old keyed-cache snapshot into a fresh project.
// The processing stage is set to the most advanced stage the snapshot covers.
func FromLegacySnapshot(snap LegacySnapshot, name string) *Project {
	if name == "" {
		name = "Imported Project"
	}
	p := New(name, "Imported from the legacy cache store")

	p.Segments = snap.OriginalSegments
	if len(snap.ConfirmedSegments) > 0 {
		p.ConfirmedSegments = snap.ConfirmedSegments
		p.ProcessingStage = StageConfirmSegmentation
	}
	if len(snap.TranslatedSegments) > 0 {
		p.TranslatedSegments = snap.TranslatedSegments
		p.ProcessingStage = StageTranslating
	}
	if len(snap.OptimizedSegments) > 0 {
		p.OptimizedSegments = snap.OptimizedSegments
		p.ProcessingStage = StageUserConfirmation
	}
	p.TargetLanguage = snap.TargetLanguage

	p.refreshStatistics()
	return p
}
