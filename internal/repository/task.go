package repository

import (
	"context"

	"taskdeck/internal/domain"
)

// TaskFilter narrows a task listing. Completed filters by completion state
// when non-nil. Page is 1-based; PerPage is the page size.
type TaskFilter struct {
	Completed *bool
	Page      int
	PerPage   int
}

// TaskRepository exposes persistence operations for Task aggregates. Every
// accessor takes the owning user's id and never returns or touches a task
// belonging to anyone else.
type TaskRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, task *domain.Task) (int64, error)
	Get(ctx context.Context, userID, id int64) (*domain.Task, error)
	List(ctx context.Context, userID int64, filter TaskFilter) ([]domain.Task, int, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, userID, id int64) error
	Toggle(ctx context.Context, userID, id int64) (*domain.Task, error)
}
