package types

// CritiqueScores is the output of the quality critique stage. Each dimension
// is scored 1–10. RevisionNotes is populated only when NeedsRevision is true.
type CritiqueScores struct {
	Clarity            float64  `json:"clarity"`
	Actionability      float64  `json:"actionability"`
	StandardsAlignment float64  `json:"standards_alignment"`
	Completeness       float64  `json:"completeness"`
	NeedsRevision      bool     `json:"needs_revision"`
	RevisionNotes      []string `json:"revision_notes,omitempty"`
}

// Average returns the mean of the four critique dimensions.
func (c CritiqueScores) Average() float64 {
	return (c.Clarity + c.Actionability + c.StandardsAlignment + c.Completeness) / 4
}
