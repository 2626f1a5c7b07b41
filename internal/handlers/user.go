package handlers

import (
	"context"
	"strings"

	"github.com/leaf-oneplus/todolist/internal/middleware"
	"github.com/leaf-oneplus/todolist/internal/models"
	"github.com/leaf-oneplus/todolist/internal/services"
	"github.com/leaf-oneplus/todolist/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type UserHandler struct {
	userService      UserServiceInterface
	hierarchyService HierarchyServiceInterface
}

func NewUserHandler(userService UserServiceInterface, hierarchyService HierarchyServiceInterface) *UserHandler {
	return &UserHandler{
		userService:      userService,
		hierarchyService: hierarchyService,
	}
}

// List returns the users visible to the actor, for assignment pickers.
func (h *UserHandler) List(c *drift.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	users, err := h.userService.ListVisible(context.Background(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	_ = c.JSON(200, users)
}

// ListAll returns the admin user directory.
func (h *UserHandler) ListAll(c *drift.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	entries, err := h.userService.ListAll(context.Background(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	_ = c.JSON(200, entries)
}

func (h *UserHandler) ListManagers(c *drift.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}

	managers, err := h.userService.ListManagers(context.Background())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	_ = c.JSON(200, managers)
}

func (h *UserHandler) Create(c *drift.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.LoginName = strings.TrimSpace(req.LoginName)
	if req.Username == "" || req.LoginName == "" || req.Password == "" || req.Role == "" {
		c.BadRequest("username, login_name, password and role are required")
		return
	}

	user, err := h.userService.Create(context.Background(), actor, services.CreateUserParams{
		Username:  req.Username,
		LoginName: req.LoginName,
		Password:  req.Password,
		Role:      req.Role,
		ManagerID: req.ManagerID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	_ = c.JSON(201, dto.CreatedResponse{ID: user.ID})
}

func (h *UserHandler) Update(c *drift.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	targetID, err := parseID(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	var req dto.UpdateUserRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Role == "" {
		c.BadRequest("role is required")
		return
	}
	if req.Username != nil && strings.TrimSpace(*req.Username) == "" {
		c.BadRequest("username cannot be empty")
		return
	}

	err = h.userService.Update(context.Background(), actor, targetID, services.UpdateUserParams{
		Username:     req.Username,
		Role:         req.Role,
		ManagerID:    req.ManagerID,
		ClearManager: req.ClearManager,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	_ = c.JSON(200, map[string]bool{"success": true})
}

func (h *UserHandler) Delete(c *drift.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	targetID, err := parseID(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	if err := h.userService.Delete(context.Background(), actor, targetID); err != nil {
		respondServiceError(c, err)
		return
	}
	_ = c.JSON(200, map[string]bool{"success": true})
}

func (h *UserHandler) ResetPassword(c *drift.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	targetID, err := parseID(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	var req dto.ResetPasswordRequest
	if err := c.BindJSON(&req); err != nil || req.Password == "" {
		c.BadRequest("password is required")
		return
	}

	if err := h.userService.ResetPassword(context.Background(), actor, targetID, req.Password); err != nil {
		respondServiceError(c, err)
		return
	}
	_ = c.JSON(200, map[string]bool{"success": true})
}

func (h *UserHandler) GetManagers(c *drift.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}

	userID, err := parseID(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	managers, err := h.hierarchyService.ManagersOf(context.Background(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	_ = c.JSON(200, managers)
}

func (h *UserHandler) AddManager(c *drift.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if !actor.IsManager() {
		c.Forbidden(services.ErrInsufficientRole.Error())
		return
	}

	userID, err := parseID(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	var req dto.AddManagerRequest
	if err := c.BindJSON(&req); err != nil || req.ManagerID == 0 {
		c.BadRequest("manager_id is required")
		return
	}

	if err := h.hierarchyService.AddManagerEdge(context.Background(), userID, req.ManagerID); err != nil {
		respondServiceError(c, err)
		return
	}
	_ = c.JSON(200, map[string]bool{"success": true})
}

func (h *UserHandler) RemoveManager(c *drift.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if !actor.IsManager() {
		c.Forbidden(services.ErrInsufficientRole.Error())
		return
	}

	userID, err := parseID(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}
	managerID, err := parseID(c.Param("managerId"))
	if err != nil {
		c.BadRequest("invalid manager id")
		return
	}

	if err := h.hierarchyService.RemoveManagerEdge(context.Background(), userID, managerID); err != nil {
		respondServiceError(c, err)
		return
	}
	_ = c.JSON(200, map[string]bool{"success": true})
}

func (h *UserHandler) actor(c *drift.Context) (*models.User, bool) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.Unauthorized("not authenticated")
		return nil, false
	}

	actor, err := h.userService.GetByID(context.Background(), userID)
	if err != nil {
		c.Unauthorized("not authenticated")
		return nil, false
	}
	return actor, true
}
