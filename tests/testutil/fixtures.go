package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leaf-oneplus/todolist/internal/database"
	"github.com/leaf-oneplus/todolist/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the password every fixture user is created with.
const DefaultPassword = "secret1"

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	loginName := fmt.Sprintf("user%d", f.counter)
	user := &models.User{
		Username:  fmt.Sprintf("Test User %d", f.counter),
		LoginName: &loginName,
		Role:      models.RoleUser,
	}

	for _, opt := range opts {
		opt(user)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	ctx := context.Background()
	err = f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (username, login_name, password_hash, role, manager_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, username, login_name, role, manager_id, created_at, updated_at
	`, user.Username, user.LoginName, string(hash), user.Role, user.ManagerID).Scan(
		&user.ID, &user.Username, &user.LoginName,
		&user.Role, &user.ManagerID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithUsername sets the user's display name
func WithUsername(username string) UserOption {
	return func(u *models.User) {
		u.Username = username
	}
}

// WithLoginName sets the user's login handle
func WithLoginName(loginName string) UserOption {
	return func(u *models.User) {
		u.LoginName = &loginName
	}
}

// WithRole sets the user's role
func WithRole(role string) UserOption {
	return func(u *models.User) {
		u.Role = role
	}
}

// WithManager sets the user's primary manager
func WithManager(manager *models.User) UserOption {
	return func(u *models.User) {
		u.ManagerID = &manager.ID
	}
}

// AddManagerEdge assigns a supplementary manager to a user
func (f *Fixtures) AddManagerEdge(t *testing.T, user, manager *models.User) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO user_managers (user_id, manager_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, manager_id) DO NOTHING
	`, user.ID, manager.ID)
	if err != nil {
		t.Fatalf("failed to add manager edge: %v", err)
	}
}

// CreateTodo creates a test todo owned by the given user
func (f *Fixtures) CreateTodo(t *testing.T, creator *models.User, opts ...TodoOption) *models.Todo {
	t.Helper()
	f.counter++

	todo := &models.Todo{
		Text:          fmt.Sprintf("Test Todo %d", f.counter),
		CreatedBy:     creator.ID,
		CreatedByName: creator.Username,
	}

	for _, opt := range opts {
		opt(todo)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO todos (text, completed, created_by, assigned_to)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, todo.Text, todo.Completed, todo.CreatedBy, todo.AssignedTo).Scan(&todo.ID, &todo.CreatedAt)
	if err != nil {
		t.Fatalf("failed to create todo: %v", err)
	}

	return todo
}

// TodoOption configures a test todo
type TodoOption func(*models.Todo)

// WithText sets the todo text
func WithText(text string) TodoOption {
	return func(td *models.Todo) {
		td.Text = text
	}
}

// WithAssignee assigns the todo to the given user
func WithAssignee(user *models.User) TodoOption {
	return func(td *models.Todo) {
		td.AssignedTo = &user.ID
		td.AssignedToName = &user.Username
	}
}

// Completed marks the todo as completed
func Completed() TodoOption {
	return func(td *models.Todo) {
		td.Completed = true
	}
}

// CreateRefreshToken creates a test refresh token
func (f *Fixtures) CreateRefreshToken(t *testing.T, userID int64, tokenHash string, expiresAt time.Time) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.New(), userID, tokenHash, expiresAt)
	if err != nil {
		t.Fatalf("failed to create refresh token: %v", err)
	}
}
