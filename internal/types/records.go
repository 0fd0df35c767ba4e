package types

// SurveyRecord is one aggregated survey question row for a dimension.
// AverageScore is nil when the question received no scorable responses.
type SurveyRecord struct {
	QuestionID    string   `json:"question_id"`
	QuestionText  string   `json:"question_text,omitempty"`
	AverageScore  *float64 `json:"average_score"`
	ResponseCount int      `json:"response_count"`
	Category      string   `json:"category,omitempty"`
	Process       string   `json:"process,omitempty"`
	Lifecycle     string   `json:"lifecycle,omitempty"`
	Comments      []string `json:"comments,omitempty"`
}

// Score returns the record's average score and whether it is present.
func (r *SurveyRecord) Score() (float64, bool) {
	if r.AverageScore == nil {
		return 0, false
	}
	return *r.AverageScore, true
}
