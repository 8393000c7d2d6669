package services

import (
	"testing"

	"github.com/senyabanana/creator-marketplace/internal/models"
)

func TestComputeClientStats(t *testing.T) {
	jobs := []models.Job{
		{ID: "j1", Status: models.PublishedJob, Budget: 100},
		{ID: "j2", Status: models.InProgressJob, Budget: 300},
		{ID: "j3", Status: models.CompletedJob, Budget: 200},
		{ID: "j4", Status: models.CompletedJob, Budget: 50},
	}
	proposals := []models.Proposal{
		{JobID: "j1", Status: models.PendingProposal},
		{JobID: "j1", Status: models.PendingProposal},
		{JobID: "j2", Status: models.AcceptedProposal},
		{JobID: "j2", Status: models.RejectedProposal},
		{JobID: "foreign", Status: models.PendingProposal},
	}

	stats := ComputeClientStats(jobs, proposals)

	if stats.Role != models.ClientRole {
		t.Errorf("expected client role, got %s", stats.Role)
	}
	if stats.ActiveJobs != 1 {
		t.Errorf("expected 1 active job, got %d", stats.ActiveJobs)
	}
	if stats.CompletedJobs != 2 {
		t.Errorf("expected 2 completed jobs, got %d", stats.CompletedJobs)
	}
	if stats.PendingProposals != 2 {
		t.Errorf("expected 2 pending proposals, got %d", stats.PendingProposals)
	}
	if stats.TotalSpent == nil || *stats.TotalSpent != 250 {
		t.Errorf("expected total spent 250, got %v", stats.TotalSpent)
	}
}

func TestComputeClientStats_Empty(t *testing.T) {
	stats := ComputeClientStats(nil, nil)
	if stats.ActiveJobs != 0 || stats.CompletedJobs != 0 || stats.PendingProposals != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.TotalSpent == nil || *stats.TotalSpent != 0 {
		t.Errorf("expected zero total spent, got %v", stats.TotalSpent)
	}
}

func TestComputeCreatorStats(t *testing.T) {
	proposal := func(status models.ProposalStatus, jobStatus models.JobStatus, price int) models.CreatorProposal {
		return models.CreatorProposal{
			Proposal:  models.Proposal{Status: status, Price: price},
			JobStatus: jobStatus,
		}
	}
	proposals := []models.CreatorProposal{
		proposal(models.PendingProposal, models.PublishedJob, 10),
		proposal(models.AcceptedProposal, models.InProgressJob, 300),
		proposal(models.AcceptedProposal, models.CompletedJob, 150),
		proposal(models.AcceptedProposal, models.CompletedJob, 70),
		proposal(models.RejectedProposal, models.InProgressJob, 999),
	}

	stats := ComputeCreatorStats(proposals)

	if stats.Role != models.CreatorRole {
		t.Errorf("expected creator role, got %s", stats.Role)
	}
	if stats.ActiveJobs != 1 || stats.CompletedJobs != 2 || stats.PendingProposals != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.TotalEarnings == nil || *stats.TotalEarnings != 220 {
		t.Errorf("expected earnings 220, got %v", stats.TotalEarnings)
	}
	if stats.TotalSpent != nil {
		t.Errorf("creator stats must not carry spending")
	}
}
