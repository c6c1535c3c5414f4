package model

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	FarmName string `json:"farm_name"`
	Location string `json:"location"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type BatchSummary struct {
	TotalImages         int     `json:"total_images"`
	AverageQualityScore float64 `json:"average_quality_score"`
	AveragePrice        float64 `json:"average_price"`
}

type SubmitBatchResponse struct {
	Success bool            `json:"success"`
	BatchID string          `json:"batch_id"`
	Results []GradingResult `json:"results"`
	Summary BatchSummary    `json:"summary"`
}

type AnalyticsResponse struct {
	Success   bool             `json:"success"`
	Analytics AnalyticsSummary `json:"analytics"`
}

type HistoryResponse struct {
	Success bool            `json:"success"`
	Results []GradingResult `json:"results"`
}
