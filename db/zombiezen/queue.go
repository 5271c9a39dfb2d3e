package zombiezen

import (
	"context"
	"fmt"

	"github.com/quillhq/quill/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

func newJobFromStmt(stmt *sqlite.Stmt) (*db.Job, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}
	updated, err := db.TimeParse(stmt.GetText("updated"))
	if err != nil {
		return nil, fmt.Errorf("error parsing updated time: %w", err)
	}

	return &db.Job{
		ID:          stmt.GetInt64("id"),
		JobType:     stmt.GetText("job_type"),
		Payload:     []byte(stmt.GetText("payload")),
		Status:      stmt.GetText("status"),
		Attempts:    int(stmt.GetInt64("attempts")),
		MaxAttempts: int(stmt.GetInt64("max_attempts")),
		CreatedAt:   created,
		UpdatedAt:   updated,
		LastError:   stmt.GetText("last_error"),
	}, nil
}

// InsertJob enqueues a job. The UNIQUE(job_type, payload) constraint makes
// identical pending jobs collapse into one; the cooldown bucket inside the
// payload turns that into time-boxed rate limiting.
func (d *Db) InsertJob(job db.Job) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("queue insert failed to get connection: %w", err)
	}
	defer d.pool.Put(conn)

	maxAttempts := job.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 3
	}

	err = sqlitex.Execute(conn, `INSERT INTO job_queue
		(job_type, payload, attempts, max_attempts)
		VALUES (?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []interface{}{
				job.JobType,
				string(job.Payload),
				job.Attempts,
				maxAttempts,
			},
		})
	if err != nil {
		if sqlite.ErrCode(err) == sqlite.ResultConstraintUnique {
			return db.ErrConstraintUnique
		}
		return fmt.Errorf("queue insert failed: %w", err)
	}
	return nil
}

// Claim marks up to limit pending jobs as processing and returns them.
// SQLite serializes writers, so two scheduler ticks can never claim the same
// job.
func (d *Db) Claim(limit int) ([]*db.Job, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("failed to get connection for claim: %w", err)
	}
	defer d.pool.Put(conn)

	var jobs []*db.Job
	err = sqlitex.Execute(conn,
		`UPDATE job_queue
		SET status = 'processing',
			attempts = attempts + 1,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id IN (
			SELECT id FROM job_queue
			WHERE status = 'pending' AND attempts < max_attempts
			ORDER BY created
			LIMIT ?
		)
		RETURNING id, job_type, payload, status, attempts, max_attempts, created, updated, last_error`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				job, err := newJobFromStmt(stmt)
				if err != nil {
					return err
				}
				jobs = append(jobs, job)
				return nil
			},
			Args: []interface{}{limit},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to claim jobs: %w", err)
	}
	return jobs, nil
}

func (d *Db) MarkCompleted(jobID int64) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE job_queue
		SET status = 'completed',
			completed_at = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{jobID},
		})
	if err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}
	return nil
}

// MarkFailed records the error. Jobs that still have attempts left go back
// to pending for the next scheduler tick.
func (d *Db) MarkFailed(jobID int64, errMsg string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE job_queue
		SET status = CASE WHEN attempts >= max_attempts THEN 'failed' ELSE 'pending' END,
			last_error = ?,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{errMsg, jobID},
		})
	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}
	return nil
}
