package services

import "errors"

// Authorization and validation failures are sentinel errors so handlers can map
// them to stable responses with errors.Is. Anything else bubbling out of a
// service is a storage fault.
var (
	ErrInvalidCredential = errors.New("invalid login name or password")
	ErrInsufficientRole  = errors.New("operation requires an admin role")
	ErrRoleEscalation    = errors.New("admins cannot grant the super admin role")
	ErrForbiddenTarget   = errors.New("admins cannot act on a super admin")
	ErrSelfDelete        = errors.New("users cannot delete themselves")
	ErrForbidden         = errors.New("operation not permitted")

	ErrUserNotFound     = errors.New("user not found")
	ErrHasSubordinates  = errors.New("user still has subordinates")
	ErrDuplicateHandle  = errors.New("login name already exists")
	ErrInvalidRole      = errors.New("invalid role")
	ErrPasswordTooShort = errors.New("password is too short")

	ErrCyclicHierarchy     = errors.New("manager assignment would create a cycle")
	ErrManagerAlreadySet   = errors.New("manager is already assigned to this user")
	ErrManagerEdgeNotFound = errors.New("manager assignment not found")

	ErrTodoNotFound     = errors.New("todo not found")
	ErrAssigneeNotFound = errors.New("assignee not found")
	ErrEmptyText        = errors.New("todo text cannot be empty")
	ErrTextTooLong      = errors.New("todo text is too long")
)
