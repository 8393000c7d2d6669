package models

// DashboardStats представляет сводку для главной страницы пользователя.
type DashboardStats struct {
	Role             Role `json:"role"`
	ActiveJobs       int  `json:"activeJobs"`
	CompletedJobs    int  `json:"completedJobs"`
	PendingProposals int  `json:"pendingProposals"`
	TotalSpent       *int `json:"totalSpent,omitempty"`
	TotalEarnings    *int `json:"totalEarnings,omitempty"`
}
