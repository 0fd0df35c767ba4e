package types

// FacetStats holds the aggregate metrics for one facet value (a category,
// process, or lifecycle stage).
type FacetStats struct {
	Average       float64 `json:"average"`
	ResponseCount int     `json:"response_count"`
	HighCount     int     `json:"high_count"`
	MediumCount   int     `json:"medium_count"`
	LowCount      int     `json:"low_count"`
	HighPct       float64 `json:"high_pct"`
	MediumPct     float64 `json:"medium_pct"`
	LowPct        float64 `json:"low_pct"`
}

// SurveyStats is the output of the statistics stage.
type SurveyStats struct {
	Dimension     string  `json:"dimension"`
	AverageScore  float64 `json:"average_score"`
	MedianScore   float64 `json:"median_score"`
	MinScore      float64 `json:"min_score"`
	MaxScore      float64 `json:"max_score"`
	StdDev        float64 `json:"std_dev"`
	ResponseCount int     `json:"response_count"`
	QuestionCount int     `json:"question_count"`

	ByCategory  map[string]FacetStats `json:"by_category"`
	ByProcess   map[string]FacetStats `json:"by_process"`
	ByLifecycle map[string]FacetStats `json:"by_lifecycle"`

	// CommentThemes holds at most five themes, most prominent first.
	CommentThemes []string `json:"comment_themes"`

	// ScoreDistribution buckets question averages into fixed two-point bands.
	ScoreDistribution map[string]int `json:"score_distribution"`
}
