package handlers

import (
	"context"
	"strconv"

	"github.com/leaf-oneplus/todolist/internal/middleware"
	"github.com/leaf-oneplus/todolist/internal/models"
	"github.com/leaf-oneplus/todolist/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type TodoHandler struct {
	todoService TodoServiceInterface
	userService UserServiceInterface
}

func NewTodoHandler(todoService TodoServiceInterface, userService UserServiceInterface) *TodoHandler {
	return &TodoHandler{
		todoService: todoService,
		userService: userService,
	}
}

func (h *TodoHandler) List(c *drift.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	todos, err := h.todoService.List(context.Background(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	_ = c.JSON(200, todos)
}

func (h *TodoHandler) Create(c *drift.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.CreateTodoRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	todo, err := h.todoService.Create(context.Background(), actor, req.Text, req.AssignedTo)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	_ = c.JSON(201, todo)
}

func (h *TodoHandler) SetCompleted(c *drift.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	todoID, err := parseID(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid todo id")
		return
	}

	var req dto.UpdateTodoRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if err := h.todoService.SetCompleted(context.Background(), actor, todoID, req.Completed); err != nil {
		respondServiceError(c, err)
		return
	}
	_ = c.JSON(200, map[string]bool{"success": true})
}

func (h *TodoHandler) Reassign(c *drift.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	todoID, err := parseID(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid todo id")
		return
	}

	var req dto.ReassignTodoRequest
	if err := c.BindJSON(&req); err != nil || req.AssignedTo == "" {
		c.BadRequest("assigned_to is required")
		return
	}

	if err := h.todoService.Reassign(context.Background(), actor, todoID, req.AssignedTo); err != nil {
		respondServiceError(c, err)
		return
	}
	_ = c.JSON(200, map[string]bool{"success": true})
}

func (h *TodoHandler) Delete(c *drift.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	todoID, err := parseID(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid todo id")
		return
	}

	if err := h.todoService.Delete(context.Background(), actor, todoID); err != nil {
		respondServiceError(c, err)
		return
	}
	_ = c.JSON(200, map[string]bool{"success": true})
}

// actor loads the authenticated user record so role changes take effect on
// the next request, not at the next login.
func (h *TodoHandler) actor(c *drift.Context) (*models.User, bool) {
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

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
