package services

import "github.com/senyabanana/creator-marketplace/internal/models"

// ComputeClientStats считает сводку заказчика по его работам и предложениям к ним.
// Потраченная сумма учитывает только завершенные работы.
func ComputeClientStats(jobs []models.Job, proposals []models.Proposal) models.DashboardStats {
	stats := models.DashboardStats{Role: models.ClientRole}
	owned := make(map[string]struct{}, len(jobs))
	spent := 0

	for _, job := range jobs {
		owned[job.ID] = struct{}{}
		switch job.Status {
		case models.InProgressJob:
			stats.ActiveJobs++
		case models.CompletedJob:
			stats.CompletedJobs++
			spent += job.Budget
		}
	}
	for _, p := range proposals {
		if _, ok := owned[p.JobID]; ok && p.Status == models.PendingProposal {
			stats.PendingProposals++
		}
	}

	stats.TotalSpent = &spent
	return stats
}

// ComputeCreatorStats считает сводку исполнителя по его предложениям.
// Заработок учитывает только принятые предложения по завершенным работам.
func ComputeCreatorStats(proposals []models.CreatorProposal) models.DashboardStats {
	stats := models.DashboardStats{Role: models.CreatorRole}
	earned := 0

	for _, p := range proposals {
		switch p.Status {
		case models.PendingProposal:
			stats.PendingProposals++
		case models.AcceptedProposal:
			switch p.JobStatus {
			case models.InProgressJob:
				stats.ActiveJobs++
			case models.CompletedJob:
				stats.CompletedJobs++
				earned += p.Price
			}
		}
	}

	stats.TotalEarnings = &earned
	return stats
}
