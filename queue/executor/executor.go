package executor

import (
	"context"
	"fmt"

	"github.com/quillhq/quill/db"
)

// JobHandler processes a specific type of job.
type JobHandler interface {
	Handle(ctx context.Context, job db.Job) error
}

// JobExecutor dispatches claimed jobs to their handlers.
type JobExecutor interface {
	Execute(ctx context.Context, job db.Job) error
}

// DefaultExecutor maps job types to registered handlers.
type DefaultExecutor struct {
	registry map[string]JobHandler
}

func NewExecutor(handlers map[string]JobHandler) *DefaultExecutor {
	return &DefaultExecutor{registry: handlers}
}

func (e *DefaultExecutor) Execute(ctx context.Context, job db.Job) error {
	handler, exists := e.registry[job.JobType]
	if !exists {
		return fmt.Errorf("no handler registered for job type: %s", job.JobType)
	}
	return handler.Handle(ctx, job)
}
