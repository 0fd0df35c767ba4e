package types

// MaturityLevel is one framework's rating of the dimension.
// Score is always within [1, 5].
type MaturityLevel struct {
	Framework           string   `json:"framework"`
	CurrentLevel        string   `json:"current_level"`
	Score               float64  `json:"score"`
	Gaps                []string `json:"gaps"`
	BestPractices       []string `json:"best_practices"`
	EvidenceQuestionIDs []string `json:"evidence_question_ids"`
}

// PriorityGap is one ranked gap across all evaluated frameworks.
type PriorityGap struct {
	Rank      int     `json:"rank"`
	Framework string  `json:"framework"`
	Gap       string  `json:"gap"`
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale,omitempty"`
}

// MaturityAssessment is the output of the maturity stage.
type MaturityAssessment struct {
	Dimension        string          `json:"dimension"`
	CompositeScore   float64         `json:"composite_score"`
	MaturityLevels   []MaturityLevel `json:"maturity_levels"`
	PriorityGaps     []PriorityGap   `json:"priority_gaps"`
	RetrievedContext string          `json:"retrieved_context,omitempty"`
}
