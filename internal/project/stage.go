package project

// Stage identifies one step of the dubbing workflow. Stages are not a strict
// linear automaton (the UI may skip or revisit them) but each carries a fixed
// completion weight.
type Stage string

const (
	StageFileUpload          Stage = "file_upload"
	StageSegmentation        Stage = "segmentation"
	StageConfirmSegmentation Stage = "confirm_segmentation"
	StageLanguageSelection   Stage = "language_selection"
	StageTranslating         Stage = "translating"
	StageUserConfirmation    Stage = "user_confirmation"
	StageCompletion          Stage = "completion"
)

var stageWeights = map[Stage]float64{
	StageFileUpload:          0,
	StageSegmentation:        10,
	StageConfirmSegmentation: 20,
	StageLanguageSelection:   30,
	StageTranslating:         50,
	StageUserConfirmation:    80,
	StageCompletion:          100,
}

var stageLabels = map[Stage]string{
	StageFileUpload:          "File Upload",
	StageSegmentation:        "Segmentation",
	StageConfirmSegmentation: "Segment Confirmation",
	StageLanguageSelection:   "Language Selection",
	StageTranslating:         "Translating",
	StageUserConfirmation:    "Audio Confirmation",
	StageCompletion:          "Completed",
}

// Known reports whether s is one of the defined workflow stages.
func (s Stage) Known() bool {
	_, ok := stageWeights[s]
	return ok
}

// CompletionWeight returns the fixed completion percentage for the stage.
// Unknown stages weigh zero.
func (s Stage) CompletionWeight() float64 {
	return stageWeights[s]
}

// Label returns a human-readable name for the stage.
func (s Stage) Label() string {
	if label, ok := stageLabels[s]; ok {
		return label
	}
	return string(s)
}

// Stages lists all workflow stages in pipeline order.
func Stages() []Stage {
	return []Stage{
		StageFileUpload,
		StageSegmentation,
		StageConfirmSegmentation,
		StageLanguageSelection,
		StageTranslating,
		StageUserConfirmation,
		StageCompletion,
	}
}
