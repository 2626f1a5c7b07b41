package handlers

import (
	"errors"
	"log"

	"github.com/leaf-oneplus/todolist/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
)

// respondServiceError maps service sentinels onto stable HTTP responses.
// Anything unrecognized is a storage fault: logged, never leaked.
func respondServiceError(c *drift.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredential):
		c.Unauthorized(err.Error())
	case errors.Is(err, services.ErrInsufficientRole),
		errors.Is(err, services.ErrRoleEscalation),
		errors.Is(err, services.ErrForbiddenTarget),
		errors.Is(err, services.ErrSelfDelete),
		errors.Is(err, services.ErrForbidden):
		c.Forbidden(err.Error())
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTodoNotFound),
		errors.Is(err, services.ErrAssigneeNotFound),
		errors.Is(err, services.ErrManagerEdgeNotFound):
		c.NotFound(err.Error())
	case errors.Is(err, services.ErrHasSubordinates),
		errors.Is(err, services.ErrCyclicHierarchy),
		errors.Is(err, services.ErrManagerAlreadySet),
		errors.Is(err, services.ErrEmptyText),
		errors.Is(err, services.ErrTextTooLong),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrDuplicateHandle),
		errors.Is(err, services.ErrInvalidRole):
		c.BadRequest(err.Error())
	default:
		log.Printf("storage failure: %v", err)
		c.InternalServerError("internal error")
	}
}
