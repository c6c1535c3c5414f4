package model

type GradeDistribution struct {
	Premium int `json:"premium"`
	GradeA  int `json:"grade_a"`
	GradeB  int `json:"grade_b"`
	GradeC  int `json:"grade_c"`
}

type MonthlyTrend struct {
	Month          string  `json:"month"`
	Samples        int     `json:"samples"`
	AvgPrice       float64 `json:"avg_price"`
	PremiumPercent float64 `json:"premium_percent"`
}

// AnalyticsSummary is computed on demand over all of an owner's grading
// results. An owner with no stored results gets the zero summary, not
// an error.
type AnalyticsSummary struct {
	TotalSamples        int               `json:"total_samples"`
	GradeDistribution   GradeDistribution `json:"grade_distribution"`
	PremiumPercentage   float64           `json:"premium_percentage"`
	AverageQualityScore float64           `json:"average_quality_score"`
	AveragePrice        float64           `json:"average_price"`
	MonthlyTrends       []MonthlyTrend    `json:"monthly_trends"`
}
