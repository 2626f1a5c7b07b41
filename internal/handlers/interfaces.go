package handlers

import (
	"context"
	"time"

	"github.com/leaf-oneplus/todolist/internal/models"
	"github.com/leaf-oneplus/todolist/internal/services"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	Authenticate(ctx context.Context, handle, password string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ListVisible(ctx context.Context, actor *models.User) ([]models.UserSummary, error)
	ListManagers(ctx context.Context) ([]models.UserSummary, error)
	ListAll(ctx context.Context, actor *models.User) ([]models.DirectoryEntry, error)
	Create(ctx context.Context, actor *models.User, p services.CreateUserParams) (*models.User, error)
	Update(ctx context.Context, actor *models.User, targetID int64, p services.UpdateUserParams) error
	Delete(ctx context.Context, actor *models.User, targetID int64) error
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
	ResetPassword(ctx context.Context, actor *models.User, targetID int64, password string) error
}

// TodoServiceInterface defines the methods used by handlers from TodoService
type TodoServiceInterface interface {
	List(ctx context.Context, actor *models.User) ([]models.Todo, error)
	Create(ctx context.Context, actor *models.User, text, assignedTo string) (*models.Todo, error)
	SetCompleted(ctx context.Context, actor *models.User, id int64, completed bool) error
	Reassign(ctx context.Context, actor *models.User, id int64, assignedTo string) error
	Delete(ctx context.Context, actor *models.User, id int64) error
}

// HierarchyServiceInterface defines the methods used by handlers from HierarchyService
type HierarchyServiceInterface interface {
	ManagersOf(ctx context.Context, userID int64) ([]models.ManagerRef, error)
	AddManagerEdge(ctx context.Context, userID, managerID int64) error
	RemoveManagerEdge(ctx context.Context, userID, managerID int64) error
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, tokenHash string) (int64, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID int64, username, role string) (*services.TokenPair, error)
	ValidateRefreshToken(token string) (int64, error)
	RefreshExpiry() time.Duration
}
