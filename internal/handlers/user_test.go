package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leaf-oneplus/todolist/internal/middleware"
	"github.com/leaf-oneplus/todolist/internal/models"
	"github.com/leaf-oneplus/todolist/internal/services"
	"github.com/leaf-oneplus/todolist/pkg/dto"
	"github.com/leaf-oneplus/todolist/tests/testutil"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type userTestEnv struct {
	app              http.Handler
	userService      *testutil.MockUserService
	hierarchyService *testutil.MockHierarchyService
	jwtService       *services.JWTService
}

func newUserTestEnv() *userTestEnv {
	env := &userTestEnv{
		userService:      new(testutil.MockUserService),
		hierarchyService: new(testutil.MockHierarchyService),
		jwtService:       newTestJWTService(),
	}
	handler := NewUserHandler(env.userService, env.hierarchyService)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(env.jwtService))
	app.Get("/users", handler.List)
	app.Get("/admin/users", handler.ListAll)
	app.Get("/managers", handler.ListManagers)
	app.Post("/users", handler.Create)
	app.Patch("/users/:id", handler.Update)
	app.Delete("/users/:id", handler.Delete)
	app.Post("/users/:id/password", handler.ResetPassword)
	app.Get("/users/:id/managers", handler.GetManagers)
	app.Post("/users/:id/managers", handler.AddManager)
	app.Delete("/users/:id/managers/:managerId", handler.RemoveManager)
	env.app = app
	return env
}

func (env *userTestEnv) authed(t *testing.T, req *http.Request, user *models.User) *http.Request {
	t.Helper()
	env.userService.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	token := generateTestToken(t, env.jwtService, user.ID, user.Username, user.Role)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUserHandler_List_Success(t *testing.T) {
	env := newUserTestEnv()
	user := &models.User{ID: 9, Username: "carol", Role: "user"}

	summaries := []models.UserSummary{{ID: 9, Username: "carol", Role: "user"}}
	env.userService.On("ListVisible", mock.Anything, user).Return(summaries, nil)

	req := env.authed(t, httptest.NewRequest(http.MethodGet, "/users", nil), user)
	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response []models.UserSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, "carol", response[0].Username)
	env.userService.AssertExpectations(t)
}

func TestUserHandler_ListAll_ForbiddenForUser(t *testing.T) {
	env := newUserTestEnv()
	user := &models.User{ID: 9, Username: "carol", Role: "user"}

	env.userService.On("ListAll", mock.Anything, user).Return(nil, services.ErrInsufficientRole)

	req := env.authed(t, httptest.NewRequest(http.MethodGet, "/admin/users", nil), user)
	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUserHandler_Create_Success(t *testing.T) {
	env := newUserTestEnv()
	admin := &models.User{ID: 1, Username: "alice", Role: "admin"}

	created := &models.User{ID: 7, Username: "Bob", Role: "user"}
	env.userService.On("Create", mock.Anything, admin, services.CreateUserParams{
		Username: "Bob", LoginName: "bob", Password: "secret1", Role: "user",
	}).Return(created, nil)

	req := env.authed(t, jsonRequest(t, http.MethodPost, "/users", dto.CreateUserRequest{
		Username: "Bob", LoginName: "bob", Password: "secret1", Role: "user",
	}), admin)
	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var response dto.CreatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, int64(7), response.ID)
	env.userService.AssertExpectations(t)
}

func TestUserHandler_Create_MissingFields(t *testing.T) {
	env := newUserTestEnv()
	admin := &models.User{ID: 1, Username: "alice", Role: "admin"}

	req := env.authed(t, jsonRequest(t, http.MethodPost, "/users", dto.CreateUserRequest{
		Username: "Bob",
	}), admin)
	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env.userService.AssertNotCalled(t, "Create")
}

func TestUserHandler_Create_RoleEscalation(t *testing.T) {
	env := newUserTestEnv()
	admin := &models.User{ID: 1, Username: "alice", Role: "admin"}

	env.userService.On("Create", mock.Anything, admin, mock.Anything).Return(nil, services.ErrRoleEscalation)

	req := env.authed(t, jsonRequest(t, http.MethodPost, "/users", dto.CreateUserRequest{
		Username: "Eve", LoginName: "eve", Password: "secret1", Role: "super_admin",
	}), admin)
	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUserHandler_Create_DuplicateHandle(t *testing.T) {
	env := newUserTestEnv()
	admin := &models.User{ID: 1, Username: "alice", Role: "admin"}

	env.userService.On("Create", mock.Anything, admin, mock.Anything).Return(nil, services.ErrDuplicateHandle)

	req := env.authed(t, jsonRequest(t, http.MethodPost, "/users", dto.CreateUserRequest{
		Username: "Bob", LoginName: "bob", Password: "secret1", Role: "user",
	}), admin)
	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserHandler_Update_Success(t *testing.T) {
	env := newUserTestEnv()
	admin := &models.User{ID: 1, Username: "alice", Role: "admin"}

	env.userService.On("Update", mock.Anything, admin, int64(5), services.UpdateUserParams{
		Role: "admin",
	}).Return(nil)

	req := env.authed(t, jsonRequest(t, http.MethodPatch, "/users/5", dto.UpdateUserRequest{Role: "admin"}), admin)
	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env.userService.AssertExpectations(t)
}

func TestUserHandler_Update_MissingRole(t *testing.T) {
	env := newUserTestEnv()
	admin := &models.User{ID: 1, Username: "alice", Role: "admin"}

	req := env.authed(t, jsonRequest(t, http.MethodPatch, "/users/5", dto.UpdateUserRequest{}), admin)
	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env.userService.AssertNotCalled(t, "Update")
}

func TestUserHandler_Delete_Success(t *testing.T) {
	env := newUserTestEnv()
	admin := &models.User{ID: 1, Username: "alice", Role: "admin"}

	env.userService.On("Delete", mock.Anything, admin, int64(5)).Return(nil)

	req := env.authed(t, httptest.NewRequest(http.MethodDelete, "/users/5", nil), admin)
	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env.userService.AssertExpectations(t)
}

func TestUserHandler_Delete_Self(t *testing.T) {
	env := newUserTestEnv()
	admin := &models.User{ID: 1, Username: "alice", Role: "admin"}

	env.userService.On("Delete", mock.Anything, admin, int64(1)).Return(services.ErrSelfDelete)

	req := env.authed(t, httptest.NewRequest(http.MethodDelete, "/users/1", nil), admin)
	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUserHandler_Delete_HasSubordinates(t *testing.T) {
	env := newUserTestEnv()
	admin := &models.User{ID: 1, Username: "alice", Role: "admin"}

	env.userService.On("Delete", mock.Anything, admin, int64(5)).Return(services.ErrHasSubordinates)

	req := env.authed(t, httptest.NewRequest(http.MethodDelete, "/users/5", nil), admin)
	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserHandler_ResetPassword_Success(t *testing.T) {
	env := newUserTestEnv()
	admin := &models.User{ID: 1, Username: "alice", Role: "admin"}

	env.userService.On("ResetPassword", mock.Anything, admin, int64(5), "newpass").Return(nil)

	req := env.authed(t, jsonRequest(t, http.MethodPost, "/users/5/password", dto.ResetPasswordRequest{Password: "newpass"}), admin)
	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env.userService.AssertExpectations(t)
}

func TestUserHandler_GetManagers_Success(t *testing.T) {
	env := newUserTestEnv()
	user := &models.User{ID: 9, Username: "carol", Role: "user"}

	refs := []models.ManagerRef{{ID: 1, Username: "alice", Role: "admin"}}
	env.hierarchyService.On("ManagersOf", mock.Anything, int64(9)).Return(refs, nil)

	req := env.authed(t, httptest.NewRequest(http.MethodGet, "/users/9/managers", nil), user)
	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response []models.ManagerRef
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, "alice", response[0].Username)
	env.hierarchyService.AssertExpectations(t)
}

func TestUserHandler_AddManager_Success(t *testing.T) {
	env := newUserTestEnv()
	admin := &models.User{ID: 1, Username: "alice", Role: "admin"}

	env.hierarchyService.On("AddManagerEdge", mock.Anything, int64(9), int64(2)).Return(nil)

	req := env.authed(t, jsonRequest(t, http.MethodPost, "/users/9/managers", dto.AddManagerRequest{ManagerID: 2}), admin)
	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env.hierarchyService.AssertExpectations(t)
}

func TestUserHandler_AddManager_ForbiddenForUser(t *testing.T) {
	env := newUserTestEnv()
	user := &models.User{ID: 9, Username: "carol", Role: "user"}

	req := env.authed(t, jsonRequest(t, http.MethodPost, "/users/9/managers", dto.AddManagerRequest{ManagerID: 2}), user)
	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	env.hierarchyService.AssertNotCalled(t, "AddManagerEdge")
}

func TestUserHandler_AddManager_Cycle(t *testing.T) {
	env := newUserTestEnv()
	admin := &models.User{ID: 1, Username: "alice", Role: "admin"}

	env.hierarchyService.On("AddManagerEdge", mock.Anything, int64(2), int64(9)).Return(services.ErrCyclicHierarchy)

	req := env.authed(t, jsonRequest(t, http.MethodPost, "/users/2/managers", dto.AddManagerRequest{ManagerID: 9}), admin)
	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserHandler_RemoveManager_Success(t *testing.T) {
	env := newUserTestEnv()
	admin := &models.User{ID: 1, Username: "alice", Role: "admin"}

	env.hierarchyService.On("RemoveManagerEdge", mock.Anything, int64(9), int64(2)).Return(nil)

	req := env.authed(t, httptest.NewRequest(http.MethodDelete, "/users/9/managers/2", nil), admin)
	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env.hierarchyService.AssertExpectations(t)
}

func TestUserHandler_RemoveManager_NotFound(t *testing.T) {
	env := newUserTestEnv()
	admin := &models.User{ID: 1, Username: "alice", Role: "admin"}

	env.hierarchyService.On("RemoveManagerEdge", mock.Anything, int64(9), int64(2)).Return(services.ErrManagerEdgeNotFound)

	req := env.authed(t, httptest.NewRequest(http.MethodDelete, "/users/9/managers/2", nil), admin)
	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
