package project

import (
	"testing"
	"time"
)

func makeSegments(count int, secondsEach float64) []*Segment {
	segments := make([]*Segment, 0, count)
	for i := 0; i < count; i++ {
		start := float64(i) * secondsEach
		segments = append(segments, NewSegment(
			segID(i), start, start+secondsEach, "line"))
	}
	return segments
}

func segID(i int) string {
	return string(rune('a'+i)) + "_seg"
}

func TestNewAssignsStableID(t *testing.T) {
	p := New("Demo", "")
	if len(p.ID) != 12 {
		t.Errorf("id length = %d, want 12", len(p.ID))
	}
	if p.ProcessingStage != StageFileUpload {
		t.Errorf("stage = %q, want file_upload", p.ProcessingStage)
	}
	if p.CompletionPercentage != 0 {
		t.Errorf("completion = %f, want 0", p.CompletionPercentage)
	}

	q := New("Demo", "")
	if q.ID == p.ID {
		t.Error("two projects with the same name must not collide on id")
	}
}

func TestNewFromFileDerivesNameAndProvenance(t *testing.T) {
	content := []byte("1\n00:00:01,000 --> 00:00:02,000\nhello\n")
	p := NewFromFile("my_cool-movie.srt", content, "", "")

	if p.Name != "My Cool Movie" {
		t.Errorf("Name = %q, want title-cased stem", p.Name)
	}
	if p.OriginalFilename != "my_cool-movie.srt" {
		t.Errorf("OriginalFilename = %q", p.OriginalFilename)
	}
	if p.FileHash == "" {
		t.Error("FileHash should be set")
	}
	if p.FileSize != int64(len(content)) {
		t.Errorf("FileSize = %d, want %d", p.FileSize, len(content))
	}
}

func TestActiveSegmentsPrecedence(t *testing.T) {
	p := New("Demo", "")
	p.Segments = makeSegments(10, 1)
	p.TranslatedSegments = makeSegments(8, 1)

	active := p.ActiveSegments()
	if len(active) != 8 {
		t.Fatalf("active count = %d, want translated collection (8)", len(active))
	}

	p.FinalSegments = makeSegments(3, 1)
	if got := len(p.ActiveSegments()); got != 3 {
		t.Errorf("active count = %d, want final collection (3)", got)
	}
}

func TestAdvanceStageWritesMatchingCollection(t *testing.T) {
	p := New("Demo", "")

	if err := p.AdvanceStage(StageSegmentation, makeSegments(10, 2)); err != nil {
		t.Fatalf("AdvanceStage: %v", err)
	}
	if len(p.SegmentedSegments) != 10 {
		t.Errorf("segmented = %d, want 10", len(p.SegmentedSegments))
	}
	if p.CompletionPercentage != 10 {
		t.Errorf("completion = %f, want 10", p.CompletionPercentage)
	}

	if err := p.AdvanceStage(StageConfirmSegmentation, makeSegments(8, 2.5)); err != nil {
		t.Fatalf("AdvanceStage: %v", err)
	}
	if len(p.ConfirmedSegments) != 8 {
		t.Errorf("confirmed = %d, want 8", len(p.ConfirmedSegments))
	}
	if p.TotalSegments != 8 {
		t.Errorf("TotalSegments = %d, want 8", p.TotalSegments)
	}
	if p.CompletionPercentage != 20 {
		t.Errorf("completion = %f, want 20", p.CompletionPercentage)
	}
	if got := p.ActiveSegments(); len(got) != 8 {
		t.Errorf("active = %d segments, want confirmed collection", len(got))
	}
	// max End of 8 segments at 2.5s each
	if p.TotalDuration != 20 {
		t.Errorf("TotalDuration = %f, want 20", p.TotalDuration)
	}
}

func TestAdvanceStageRejectsUnknown(t *testing.T) {
	p := New("Demo", "")
	if err := p.AdvanceStage(Stage("rendering"), nil); err == nil {
		t.Error("expected error for unknown stage")
	}
}

func TestCompletionWeightMonotonicity(t *testing.T) {
	p := New("Demo", "")
	_ = p.AdvanceStage(StageConfirmSegmentation, nil)
	confirm := p.CompletionPercentage
	_ = p.AdvanceStage(StageTranslating, nil)
	translating := p.CompletionPercentage

	if translating <= confirm {
		t.Errorf("translating weight %f must exceed confirm_segmentation weight %f", translating, confirm)
	}
	if confirm != 20 || translating != 50 {
		t.Errorf("weights = %f/%f, want 20/50", confirm, translating)
	}
}

func TestRecordAPIUsageSumsNumericFields(t *testing.T) {
	p := New("Demo", "")
	p.RecordAPIUsage("gpt", map[string]any{"tokens": 100, "cost": 0.5, "model": "gpt-4o"})
	p.RecordAPIUsage("gpt", map[string]any{"tokens": 50, "cost": 0.25, "model": "gpt-4o-mini"})

	usage := p.APIUsage["gpt"]
	if usage["tokens"] != 150.0 {
		t.Errorf("tokens = %v, want 150", usage["tokens"])
	}
	if usage["cost"] != 0.75 {
		t.Errorf("cost = %v, want 0.75", usage["cost"])
	}
	if usage["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v, non-numeric fields must overwrite", usage["model"])
	}
}

func TestAttachTagsSetSemantics(t *testing.T) {
	p := New("Demo", "")
	p.AttachTags("anime", "drama")
	p.AttachTags("drama", "movie", "")

	want := []string{"anime", "drama", "movie"}
	if len(p.Tags) != len(want) {
		t.Fatalf("tags = %v, want %v", p.Tags, want)
	}
	for i := range want {
		if p.Tags[i] != want[i] {
			t.Errorf("tags[%d] = %q, want %q", i, p.Tags[i], want[i])
		}
	}
}

func TestSetShareInfoUnit(t *testing.T) {
	p := New("Demo", "")
	p.SetShareInfo("https://example.com/s/abc", "alice")
	if !p.IsShared || p.ShareURL == "" || p.CreatedBy != "alice" {
		t.Errorf("share fields not set as a unit: %+v", p)
	}

	p.SetShareInfo("", "")
	if p.IsShared {
		t.Error("IsShared must be false when share URL is empty")
	}
	if p.CreatedBy != "alice" {
		t.Error("CreatedBy should persist when empty value passed")
	}
}

func TestMutationsAdvanceUpdatedAt(t *testing.T) {
	p := New("Demo", "")
	before := p.UpdatedAt
	time.Sleep(2 * time.Millisecond)
	p.AttachTags("x")
	if !p.UpdatedAt.After(before) {
		t.Error("UpdatedAt must advance on mutation")
	}
}

func TestCloneIsDeep(t *testing.T) {
	p := New("Demo", "")
	_ = p.AdvanceStage(StageSegmentation, makeSegments(3, 1))
	p.RecordAPIUsage("tts", map[string]any{"chars": 1000})
	p.AttachTags("anime")

	clone := p.Clone()
	clone.SegmentedSegments[0].OriginalText = "mutated"
	clone.APIUsage["tts"]["chars"] = 0.0
	clone.Tags[0] = "mutated"

	if p.SegmentedSegments[0].OriginalText == "mutated" {
		t.Error("clone shares segment pointers")
	}
	if p.APIUsage["tts"]["chars"] != 1000.0 {
		t.Error("clone shares api usage map")
	}
	if p.Tags[0] != "anime" {
		t.Error("clone shares tags slice")
	}
}

func TestFromLegacySnapshotPicksMostAdvancedStage(t *testing.T) {
	snap := LegacySnapshot{
		OriginalSegments:   makeSegments(10, 1),
		ConfirmedSegments:  makeSegments(8, 1),
		TranslatedSegments: makeSegments(8, 1),
		TargetLanguage:     "ja",
	}
	p := FromLegacySnapshot(snap, "Old Cache")

	if p.ProcessingStage != StageTranslating {
		t.Errorf("stage = %q, want translating", p.ProcessingStage)
	}
	if p.TotalSegments != 8 {
		t.Errorf("TotalSegments = %d, want 8 (translated collection)", p.TotalSegments)
	}
	if p.TargetLanguage != "ja" {
		t.Errorf("TargetLanguage = %q, want ja", p.TargetLanguage)
	}
}
