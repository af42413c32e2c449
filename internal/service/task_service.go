package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"taskdeck/internal/domain"
	"taskdeck/internal/repository"
)

const (
	maxTitleLength = 100
	maxPerPage     = 100
)

// Page describes the slice of a listing that was returned.
type Page struct {
	Total   int
	Pages   int
	Page    int
	PerPage int
	HasNext bool
	HasPrev bool
}

// TaskUpdate carries the mutable task fields for an update. Title is always
// replaced; Description and Completed only when non-nil.
type TaskUpdate struct {
	Title       string
	Description *string
	Completed   *bool
}

// TaskService coordinates task operations. Every method takes the
// authenticated owner's id and operates only on that user's tasks.
type TaskService interface {
	Create(ctx context.Context, userID int64, title, description string, completed bool) (*domain.Task, error)
	List(ctx context.Context, userID int64, page, perPage int, completed *bool) ([]domain.Task, Page, error)
	Get(ctx context.Context, userID, taskID int64) (*domain.Task, error)
	Update(ctx context.Context, userID, taskID int64, update TaskUpdate) (*domain.Task, error)
	Delete(ctx context.Context, userID, taskID int64) error
	Toggle(ctx context.Context, userID, taskID int64) (*domain.Task, error)
}

type taskService struct {
	tasks repository.TaskRepository
}

func NewTaskService(tasks repository.TaskRepository) TaskService {
	return &taskService{tasks: tasks}
}

func validateTitle(title string) error {
	ve := ValidationError{}
	if title == "" {
		ve.add("title", "must not be empty")
	} else if utf8.RuneCountInString(title) > maxTitleLength {
		ve.add("title", "must be at most 100 characters")
	}
	if len(ve) > 0 {
		return ve
	}
	return nil
}

func (s *taskService) Create(ctx context.Context, userID int64, title, description string, completed bool) (*domain.Task, error) {
	title = strings.TrimSpace(title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	task := &domain.Task{
		Title:       title,
		Description: description,
		Completed:   completed,
		UserID:      userID,
	}
	if _, err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) List(ctx context.Context, userID int64, page, perPage int, completed *bool) ([]domain.Task, Page, error) {
	ve := ValidationError{}
	if page < 1 {
		ve.add("page", "must be at least 1")
	}
	if perPage < 1 || perPage > maxPerPage {
		ve.add("per_page", "must be between 1 and 100")
	}
	if len(ve) > 0 {
		return nil, Page{}, ve
	}

	tasks, total, err := s.tasks.List(ctx, userID, repository.TaskFilter{
		Completed: completed,
		Page:      page,
		PerPage:   perPage,
	})
	if err != nil {
		return nil, Page{}, err
	}

	pages := (total + perPage - 1) / perPage
	info := Page{
		Total:   total,
		Pages:   pages,
		Page:    page,
		PerPage: perPage,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
	return tasks, info, nil
}

func (s *taskService) Get(ctx context.Context, userID, taskID int64) (*domain.Task, error) {
	return s.tasks.Get(ctx, userID, taskID)
}

func (s *taskService) Update(ctx context.Context, userID, taskID int64, update TaskUpdate) (*domain.Task, error) {
	// ownership check first: an update of someone else's task must be
	// indistinguishable from updating a missing one
	task, err := s.tasks.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(update.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	task.Title = title
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Completed != nil {
		task.Completed = *update.Completed
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, userID, taskID int64) error {
	return s.tasks.Delete(ctx, userID, taskID)
}

func (s *taskService) Toggle(ctx context.Context, userID, taskID int64) (*domain.Task, error) {
	return s.tasks.Toggle(ctx, userID, taskID)
}
