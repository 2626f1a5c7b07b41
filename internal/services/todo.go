package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/leaf-oneplus/todolist/internal/database"
	"github.com/leaf-oneplus/todolist/internal/models"
)

// TodoService is CRUD over todos, always scoped through the access service.
// A todo outside the actor's visible set behaves as if it did not exist.
type TodoService struct {
	db            *database.DB
	access        *AccessService
	textMaxLength int
}

func NewTodoService(db *database.DB, access *AccessService, textMaxLength int) *TodoService {
	return &TodoService{db: db, access: access, textMaxLength: textMaxLength}
}

const todoColumns = `
	SELECT t.id, t.text, t.completed, t.completed_at,
	       t.created_by, u1.username,
	       t.assigned_to, u2.username,
	       t.created_at
	FROM todos t
	JOIN users u1 ON t.created_by = u1.id
	LEFT JOIN users u2 ON t.assigned_to = u2.id
`

// List returns the actor's visible todos, newest first.
func (s *TodoService) List(ctx context.Context, actor *models.User) ([]models.Todo, error) {
	if actor.Role == models.RoleSuperAdmin {
		return s.queryTodos(ctx, todoColumns+` ORDER BY t.id DESC`)
	}

	visible, err := s.access.VisibleUserIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.queryTodos(ctx, todoColumns+`
		WHERE t.created_by = ANY($1) OR t.assigned_to = ANY($1)
		ORDER BY t.id DESC
	`, visible)
}

func (s *TodoService) queryTodos(ctx context.Context, sql string, args ...any) ([]models.Todo, error) {
	rows, err := s.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(
			&t.ID, &t.Text, &t.Completed, &t.CompletedAt,
			&t.CreatedBy, &t.CreatedByName,
			&t.AssignedTo, &t.AssignedToName,
			&t.CreatedAt,
		); err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// Create inserts a todo owned by the actor, optionally assigned by username.
func (s *TodoService) Create(ctx context.Context, actor *models.User, text, assignedTo string) (*models.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if utf8.RuneCountInString(text) > s.textMaxLength {
		return nil, ErrTextTooLong
	}

	var assigneeID *int64
	var assigneeName *string
	if assignedTo != "" {
		id, err := s.resolveUsername(ctx, assignedTo)
		if err != nil {
			return nil, err
		}
		assigneeID = &id
		assigneeName = &assignedTo
	}

	todo := models.Todo{
		Text:           text,
		CreatedBy:      actor.ID,
		CreatedByName:  actor.Username,
		AssignedTo:     assigneeID,
		AssignedToName: assigneeName,
	}
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO todos (text, created_by, assigned_to)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, text, actor.ID, assigneeID).Scan(&todo.ID, &todo.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return &todo, nil
}

// SetCompleted flips the completion flag; completed_at is set and cleared in
// the same statement as the flip.
func (s *TodoService) SetCompleted(ctx context.Context, actor *models.User, id int64, completed bool) error {
	if _, _, err := s.visibleTodo(ctx, actor, id); err != nil {
		return err
	}

	var err error
	if completed {
		_, err = s.db.Pool.Exec(ctx, `
			UPDATE todos SET completed = TRUE, completed_at = NOW() WHERE id = $1
		`, id)
	} else {
		_, err = s.db.Pool.Exec(ctx, `
			UPDATE todos SET completed = FALSE, completed_at = NULL WHERE id = $1
		`, id)
	}
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	return nil
}

// Reassign points a visible todo at a different assignee. Plain users cannot
// reassign at all, and admins can only assign within their visible set.
func (s *TodoService) Reassign(ctx context.Context, actor *models.User, id int64, assignedTo string) error {
	if actor.Role == models.RoleUser {
		return ErrForbidden
	}

	_, visible, err := s.visibleTodo(ctx, actor, id)
	if err != nil {
		return err
	}

	assigneeID, err := s.resolveUsername(ctx, assignedTo)
	if err != nil {
		return err
	}
	if actor.Role == models.RoleAdmin && !containsID(visible, assigneeID) {
		return ErrForbidden
	}

	if _, err := s.db.Pool.Exec(ctx, `
		UPDATE todos SET assigned_to = $1 WHERE id = $2
	`, assigneeID, id); err != nil {
		return fmt.Errorf("failed to reassign todo: %w", err)
	}
	return nil
}

func (s *TodoService) Delete(ctx context.Context, actor *models.User, id int64) error {
	if _, _, err := s.visibleTodo(ctx, actor, id); err != nil {
		return err
	}

	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTodoNotFound
	}
	return nil
}

// visibleTodo loads a todo and re-checks visibility. A todo outside the
// actor's scope reports not-found rather than forbidden so its existence does
// not leak.
func (s *TodoService) visibleTodo(ctx context.Context, actor *models.User, id int64) (*models.Todo, []int64, error) {
	var t models.Todo
	err := s.db.Pool.QueryRow(ctx, todoColumns+` WHERE t.id = $1`, id).Scan(
		&t.ID, &t.Text, &t.Completed, &t.CompletedAt,
		&t.CreatedBy, &t.CreatedByName,
		&t.AssignedTo, &t.AssignedToName,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrTodoNotFound
		}
		return nil, nil, fmt.Errorf("failed to get todo: %w", err)
	}

	if actor.Role == models.RoleSuperAdmin {
		return &t, nil, nil
	}

	visible, err := s.access.VisibleUserIDs(ctx, actor)
	if err != nil {
		return nil, nil, err
	}
	if containsID(visible, t.CreatedBy) || (t.AssignedTo != nil && containsID(visible, *t.AssignedTo)) {
		return &t, visible, nil
	}
	return nil, nil, ErrTodoNotFound
}

func (s *TodoService) resolveUsername(ctx context.Context, username string) (int64, error) {
	var id int64
	err := s.db.Pool.QueryRow(ctx, `SELECT id FROM users WHERE username = $1 LIMIT 1`, username).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrAssigneeNotFound
		}
		return 0, fmt.Errorf("failed to resolve assignee: %w", err)
	}
	return id, nil
}
