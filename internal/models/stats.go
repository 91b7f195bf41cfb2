package models

type DashboardStats struct {
	TotalQuestions int64 `json:"total_questions"`
	TotalAnswers   int64 `json:"total_answers"`
	ActiveUsers    int64 `json:"active_users"`
	TotalTags      int64 `json:"total_tags"`
}
