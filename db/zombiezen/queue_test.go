package zombiezen

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/quillhq/quill/db"
)

func TestJobQueueLifecycle(t *testing.T) {
	testDB := newTestDB(t)

	payload := json.RawMessage(`{"email":"alice@example.com","cooldown_bucket":123}`)
	if err := testDB.InsertJob(db.Job{
		JobType: "job_type_email_verification",
		Payload: payload,
	}); err != nil {
		t.Fatalf("InsertJob failed: %v", err)
	}

	t.Run("DuplicatePayloadIsRejected", func(t *testing.T) {
		err := testDB.InsertJob(db.Job{
			JobType: "job_type_email_verification",
			Payload: payload,
		})
		if !errors.Is(err, db.ErrConstraintUnique) {
			t.Errorf("InsertJob error = %v, want ErrConstraintUnique", err)
		}
	})

	t.Run("ClaimMarksProcessing", func(t *testing.T) {
		jobs, err := testDB.Claim(10)
		if err != nil {
			t.Fatalf("Claim failed: %v", err)
		}
		if len(jobs) != 1 {
			t.Fatalf("expected 1 claimed job, got %d", len(jobs))
		}
		job := jobs[0]
		if job.Status != db.JobStatusProcessing {
			t.Errorf("claimed job status = %q, want %q", job.Status, db.JobStatusProcessing)
		}
		if job.Attempts != 1 {
			t.Errorf("claimed job attempts = %d, want 1", job.Attempts)
		}
		if string(job.Payload) != string(payload) {
			t.Errorf("claimed job payload = %s, want %s", job.Payload, payload)
		}

		// A second claim finds nothing while the job is processing.
		again, err := testDB.Claim(10)
		if err != nil {
			t.Fatalf("second Claim failed: %v", err)
		}
		if len(again) != 0 {
			t.Fatalf("expected no claimable jobs, got %d", len(again))
		}

		if err := testDB.MarkCompleted(job.ID); err != nil {
			t.Fatalf("MarkCompleted failed: %v", err)
		}
	})
}

func TestMarkFailedRetriesUntilMaxAttempts(t *testing.T) {
	testDB := newTestDB(t)

	if err := testDB.InsertJob(db.Job{
		JobType:     "job_type_password_reset",
		Payload:     json.RawMessage(`{"email":"bob@example.com"}`),
		MaxAttempts: 2,
	}); err != nil {
		t.Fatalf("InsertJob failed: %v", err)
	}

	// First attempt fails and the job goes back to pending.
	jobs, err := testDB.Claim(1)
	if err != nil || len(jobs) != 1 {
		t.Fatalf("Claim returned %v jobs, err %v", len(jobs), err)
	}
	if err := testDB.MarkFailed(jobs[0].ID, "smtp timeout"); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}

	jobs, err = testDB.Claim(1)
	if err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected job to be claimable again, got %d jobs", len(jobs))
	}
	if jobs[0].Attempts != 2 {
		t.Errorf("attempts = %d, want 2", jobs[0].Attempts)
	}

	// Second failure exhausts max_attempts; the job stays failed.
	if err := testDB.MarkFailed(jobs[0].ID, "smtp timeout"); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}
	jobs, err = testDB.Claim(1)
	if err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected exhausted job to stay failed, claimed %d", len(jobs))
	}
}
