package testutil

import (
	"context"
	"time"

	"github.com/leaf-oneplus/todolist/internal/models"
	"github.com/leaf-oneplus/todolist/internal/services"
	"github.com/stretchr/testify/mock"
)

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Authenticate(ctx context.Context, handle, password string) (*models.User, error) {
	args := m.Called(ctx, handle, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) ListVisible(ctx context.Context, actor *models.User) ([]models.UserSummary, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserSummary), args.Error(1)
}

func (m *MockUserService) ListManagers(ctx context.Context) ([]models.UserSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserSummary), args.Error(1)
}

func (m *MockUserService) ListAll(ctx context.Context, actor *models.User) ([]models.DirectoryEntry, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DirectoryEntry), args.Error(1)
}

func (m *MockUserService) Create(ctx context.Context, actor *models.User, p services.CreateUserParams) (*models.User, error) {
	args := m.Called(ctx, actor, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, actor *models.User, targetID int64, p services.UpdateUserParams) error {
	args := m.Called(ctx, actor, targetID, p)
	return args.Error(0)
}

func (m *MockUserService) Delete(ctx context.Context, actor *models.User, targetID int64) error {
	args := m.Called(ctx, actor, targetID)
	return args.Error(0)
}

func (m *MockUserService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	args := m.Called(ctx, userID, oldPassword, newPassword)
	return args.Error(0)
}

func (m *MockUserService) ResetPassword(ctx context.Context, actor *models.User, targetID int64, password string) error {
	args := m.Called(ctx, actor, targetID, password)
	return args.Error(0)
}

// MockTodoService mocks the TodoService
type MockTodoService struct {
	mock.Mock
}

func (m *MockTodoService) List(ctx context.Context, actor *models.User) ([]models.Todo, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Todo), args.Error(1)
}

func (m *MockTodoService) Create(ctx context.Context, actor *models.User, text, assignedTo string) (*models.Todo, error) {
	args := m.Called(ctx, actor, text, assignedTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Todo), args.Error(1)
}

func (m *MockTodoService) SetCompleted(ctx context.Context, actor *models.User, id int64, completed bool) error {
	args := m.Called(ctx, actor, id, completed)
	return args.Error(0)
}

func (m *MockTodoService) Reassign(ctx context.Context, actor *models.User, id int64, assignedTo string) error {
	args := m.Called(ctx, actor, id, assignedTo)
	return args.Error(0)
}

func (m *MockTodoService) Delete(ctx context.Context, actor *models.User, id int64) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

// MockHierarchyService mocks the HierarchyService
type MockHierarchyService struct {
	mock.Mock
}

func (m *MockHierarchyService) ManagersOf(ctx context.Context, userID int64) ([]models.ManagerRef, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ManagerRef), args.Error(1)
}

func (m *MockHierarchyService) AddManagerEdge(ctx context.Context, userID, managerID int64) error {
	args := m.Called(ctx, userID, managerID)
	return args.Error(0)
}

func (m *MockHierarchyService) RemoveManagerEdge(ctx context.Context, userID, managerID int64) error {
	args := m.Called(ctx, userID, managerID)
	return args.Error(0)
}

// MockTokenService mocks the TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) StoreRefreshToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockTokenService) ValidateRefreshToken(ctx context.Context, tokenHash string) (int64, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTokenService) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockTokenService) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
