package dto

import "github.com/leaf-oneplus/todolist/internal/models"

type UserResponse struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	LoginName *string `json:"login_name,omitempty"`
	Role      string  `json:"role"`
	ManagerID *int64  `json:"manager_id,omitempty"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		LoginName: u.LoginName,
		Role:      u.Role,
		ManagerID: u.ManagerID,
	}
}

type CreateUserRequest struct {
	Username  string `json:"username"`
	LoginName string `json:"login_name"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	ManagerID *int64 `json:"manager_id,omitempty"`
}

type CreatedResponse struct {
	ID int64 `json:"id"`
}

type UpdateUserRequest struct {
	Username *string `json:"username,omitempty"`
	Role     string  `json:"role"`
	// ManagerID replaces the primary manager when set; ClearManager removes it.
	ManagerID    *int64 `json:"manager_id,omitempty"`
	ClearManager bool   `json:"clear_manager,omitempty"`
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

type AddManagerRequest struct {
	ManagerID int64 `json:"manager_id"`
}
