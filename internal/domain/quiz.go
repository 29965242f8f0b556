package domain

// Mode is the coarse application state controlling panel visibility and click routing.
type Mode int

const (
	ModeInfo Mode = iota
	ModeQuiz
)

func (m Mode) String() string {
	if m == ModeQuiz {
		return "quiz"
	}
	return "info"
}

// Score holds the quiz counters.
type Score struct {
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
	Streak  int `json:"streak"`
}

// QuizState is a point-in-time copy of the controller state.
type QuizState struct {
	Mode     Mode
	Target   *ElementEntry
	Selected *ElementEntry
	Score    Score
	// AwaitingNext is set between an accepted answer and the next question.
	AwaitingNext bool
}

// AnswerResult summarizes one accepted quiz answer.
type AnswerResult struct {
	Correct bool         `json:"correct"`
	Clicked ElementEntry `json:"clicked"`
	Target  ElementEntry `json:"target"`
	Score   Score        `json:"score"`
}

// Labels is the fixed text set written into the presentation surface.
type Labels struct {
	StartQuiz    string `yaml:"start_quiz"`
	EndQuiz      string `yaml:"end_quiz"`
	NoSelection  string `yaml:"no_selection"`
	Placeholder  string `yaml:"placeholder"`
	MassUnit     string `yaml:"mass_unit"`
	Reset        string `yaml:"reset"`
	ResetConfirm string `yaml:"reset_confirm"`
}

// DefaultLabels returns the built-in label set.
func DefaultLabels() Labels {
	return Labels{
		StartQuiz:    "Start quiz",
		EndQuiz:      "End quiz",
		NoSelection:  "Select an element",
		Placeholder:  "-",
		MassUnit:     "u",
		Reset:        "Reset",
		ResetConfirm: "✓ Reset",
	}
}

// WithDefaults fills empty labels from DefaultLabels.
func (l Labels) WithDefaults() Labels {
	d := DefaultLabels()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&l.StartQuiz, d.StartQuiz)
	fill(&l.EndQuiz, d.EndQuiz)
	fill(&l.NoSelection, d.NoSelection)
	fill(&l.Placeholder, d.Placeholder)
	fill(&l.MassUnit, d.MassUnit)
	fill(&l.Reset, d.Reset)
	fill(&l.ResetConfirm, d.ResetConfirm)
	return l
}
