package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/senyabanana/creator-marketplace/internal/models"
)

type fixture struct {
	store   *MemoryStore
	client  *models.Profile
	creator *models.Profile
	rival   *models.Profile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := NewMemoryStore()
	mk := func(email string, role models.Role) *models.Profile {
		_, profile, err := store.CreateUserWithProfile(context.Background(), models.User{Email: email, PasswordHash: "h"}, role, email)
		if err != nil {
			t.Fatalf("create user: %v", err)
		}
		return profile
	}
	return &fixture{
		store:   store,
		client:  mk("client@example.com", models.ClientRole),
		creator: mk("creator@example.com", models.CreatorRole),
		rival:   mk("rival@example.com", models.CreatorRole),
	}
}

func (f *fixture) job(t *testing.T, category string) *models.Job {
	t.Helper()
	job, err := f.store.CreateJob(context.Background(), models.Job{
		ClientID: f.client.ID, Title: "t", Description: "d", Budget: 100, Category: category, Status: models.PublishedJob,
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

func (f *fixture) proposal(t *testing.T, jobID string, creator *models.Profile) *models.Proposal {
	t.Helper()
	p, err := f.store.CreateProposal(context.Background(), models.Proposal{JobID: jobID, CreatorID: creator.ID, Price: 50})
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}
	return p
}

func TestMemoryStore_EmailIsUnique(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.store.CreateUserWithProfile(context.Background(), models.User{Email: "client@example.com"}, models.CreatorRole, "x")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	_, _, err = f.store.CreateUserWithProfile(context.Background(), models.User{Email: "new@example.com"}, "admin", "x")
	if err == nil {
		t.Fatal("expected unknown role to be refused")
	}
}

func TestMemoryStore_AcceptProposal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.job(t, "Design")
	winner := f.proposal(t, job.ID, f.creator)
	loser := f.proposal(t, job.ID, f.rival)

	if _, err := f.store.AcceptProposal(ctx, winner.ID, job.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if p, _ := f.store.GetProposalByID(ctx, loser.ID); p.Status != models.RejectedProposal {
		t.Errorf("expected sibling rejected, got %s", p.Status)
	}
	if j, _ := f.store.GetJobByID(ctx, job.ID); j.Status != models.InProgressJob {
		t.Errorf("expected in_progress, got %s", j.Status)
	}

	if _, err := f.store.AcceptProposal(ctx, loser.ID, job.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
	if _, err := f.store.RejectProposal(ctx, winner.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("expected accepted proposal to stay accepted, got %v", err)
	}
	if _, err := f.store.CreateProposal(ctx, models.Proposal{JobID: job.ID, CreatorID: f.rival.ID}); !errors.Is(err, ErrConflict) {
		t.Errorf("expected proposals to be closed, got %v", err)
	}
}

func TestMemoryStore_SubmitDeliverable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.job(t, "Design")
	p := f.proposal(t, job.ID, f.creator)
	submission := models.DeliverableSubmission{ProposalID: p.ID, JobID: job.ID, Content: "files"}

	if _, err := f.store.SubmitDeliverable(ctx, submission); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict for pending proposal, got %v", err)
	}
	if _, err := f.store.AcceptProposal(ctx, p.ID, job.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	f.store.FailOn("SubmitDeliverable", errors.New("boom"))
	if _, err := f.store.SubmitDeliverable(ctx, submission); err == nil {
		t.Fatal("expected injected failure")
	}
	if j, _ := f.store.GetJobByID(ctx, job.ID); j.Status != models.InProgressJob {
		t.Errorf("failed submission must not complete the job, got %s", j.Status)
	}

	d, err := f.store.SubmitDeliverable(ctx, submission)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if j, _ := f.store.GetJobByID(ctx, job.ID); j.Status != models.CompletedJob {
		t.Errorf("expected completed, got %s", j.Status)
	}
	if _, err = f.store.SubmitDeliverable(ctx, submission); !errors.Is(err, ErrConflict) {
		t.Errorf("expected conflict while review is pending, got %v", err)
	}

	notes := "darker"
	if _, err = f.store.ReviewDeliverable(ctx, d.ID, models.NeedsRevisionDeliverable, &notes); err != nil {
		t.Fatalf("review: %v", err)
	}
	if _, err = f.store.ReviewDeliverable(ctx, d.ID, models.ApprovedDeliverable, nil); !errors.Is(err, ErrConflict) {
		t.Errorf("expected single review, got %v", err)
	}

	second, err := f.store.SubmitDeliverable(ctx, submission)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	latest, err := f.store.GetLatestDeliverable(ctx, p.ID)
	if err != nil || latest.ID != second.ID {
		t.Errorf("expected latest to be the resubmission, got %+v, %v", latest, err)
	}
}

func TestMemoryStore_ListJobs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	design := f.job(t, "Design")
	f.job(t, "Writing")
	video := f.job(t, "Video")
	f.proposal(t, design.ID, f.creator)

	all, _ := f.store.ListJobs(ctx, models.JobFilter{})
	if len(all) != 3 || all[0].ID != video.ID {
		t.Fatalf("expected newest first, got %+v", all)
	}

	byCategory, _ := f.store.ListJobs(ctx, models.JobFilter{Categories: []string{"Design", "Video"}})
	if len(byCategory) != 2 {
		t.Errorf("expected two jobs, got %d", len(byCategory))
	}

	byCreator, _ := f.store.ListJobs(ctx, models.JobFilter{CreatorID: f.creator.ID})
	if len(byCreator) != 1 || byCreator[0].ID != design.ID {
		t.Errorf("unexpected creator jobs %+v", byCreator)
	}

	page, _ := f.store.ListJobs(ctx, models.JobFilter{Limit: 2, Offset: 2})
	if len(page) != 1 || page[0].ID != design.ID {
		t.Errorf("unexpected page %+v", page)
	}
	empty, _ := f.store.ListJobs(ctx, models.JobFilter{Limit: 2, Offset: 10})
	if len(empty) != 0 {
		t.Errorf("expected empty page, got %d", len(empty))
	}
}

func TestMemoryStore_DeleteJobCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.job(t, "Design")
	p := f.proposal(t, job.ID, f.creator)

	if err := f.store.DeleteJob(ctx, job.ID, f.creator.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected foreign delete to miss, got %v", err)
	}
	if err := f.store.DeleteJob(ctx, job.ID, f.client.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.store.GetProposalByID(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected proposal to be deleted, got %v", err)
	}
}

func TestMemoryStore_NegativeAmountsViolateChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.store.CreateJob(ctx, models.Job{ClientID: f.client.ID, Budget: -1, Status: models.PublishedJob}); err == nil {
		t.Error("expected negative budget to be refused")
	}
	job := f.job(t, "Design")
	if _, err := f.store.CreateProposal(ctx, models.Proposal{JobID: job.ID, CreatorID: f.creator.ID, Price: -1}); err == nil {
		t.Error("expected negative price to be refused")
	}
}

func TestMemoryStore_RevokedTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.store.Now = func() time.Time { return now }

	if err := f.store.RevokeToken(ctx, "old", now.Add(time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked, _ := f.store.IsTokenRevoked(ctx, "old"); !revoked {
		t.Error("expected token to be revoked")
	}

	now = now.Add(time.Hour)
	if err := f.store.RevokeToken(ctx, "new", now.Add(time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked, _ := f.store.IsTokenRevoked(ctx, "old"); revoked {
		t.Error("expected expired entry to be purged")
	}
	if revoked, _ := f.store.IsTokenRevoked(ctx, "new"); !revoked {
		t.Error("expected new token to be revoked")
	}
}

func TestMemoryStore_UpdateProfileKeepsRole(t *testing.T) {
	f := newFixture(t)
	updated, err := f.store.UpdateProfile(context.Background(), f.creator.ID, models.ProfileUpdateRequest{FullName: "Carol", Bio: "Illustrator"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Role != models.CreatorRole || updated.FullName != "Carol" || updated.Bio == nil || *updated.Bio != "Illustrator" || updated.AvatarURL != nil {
		t.Errorf("unexpected profile %+v", updated)
	}
}
