package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leaf-oneplus/todolist/internal/database"
	"github.com/leaf-oneplus/todolist/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const uniqueViolation = "23505"

type UserService struct {
	db                *database.DB
	access            *AccessService
	passwordMinLength int
}

func NewUserService(db *database.DB, access *AccessService, passwordMinLength int) *UserService {
	return &UserService{db: db, access: access, passwordMinLength: passwordMinLength}
}

type CreateUserParams struct {
	Username  string
	LoginName string
	Password  string
	Role      string
	ManagerID *int64
}

type UpdateUserParams struct {
	Username     *string
	Role         string
	ManagerID    *int64
	ClearManager bool
}

// Authenticate resolves a login handle and verifies the password. Records
// created before login names existed fall back to the display name. A missing
// user and a wrong password are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, handle, password string) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, username, login_name, password_hash, role, manager_id, created_at, updated_at
		FROM users
		WHERE login_name = $1 OR (login_name IS NULL AND username = $1)
		LIMIT 1
	`, handle).Scan(
		&user.ID, &user.Username, &user.LoginName, &user.PasswordHash,
		&user.Role, &user.ManagerID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}
	return &user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, username, login_name, role, manager_id, created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(
		&user.ID, &user.Username, &user.LoginName,
		&user.Role, &user.ManagerID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// ListVisible returns the users the actor may assign todos to, scoped the
// same way as todo visibility.
func (s *UserService) ListVisible(ctx context.Context, actor *models.User) ([]models.UserSummary, error) {
	switch actor.Role {
	case models.RoleSuperAdmin:
		return s.listSummaries(ctx, `SELECT id, username, role FROM users ORDER BY id`)
	case models.RoleAdmin:
		visible, err := s.access.VisibleUserIDs(ctx, actor)
		if err != nil {
			return nil, err
		}
		return s.listSummaries(ctx, `
			SELECT id, username, role FROM users WHERE id = ANY($1) ORDER BY id
		`, visible)
	default:
		return []models.UserSummary{{ID: actor.ID, Username: actor.Username, Role: actor.Role}}, nil
	}
}

func (s *UserService) listSummaries(ctx context.Context, sql string, args ...any) ([]models.UserSummary, error) {
	rows, err := s.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.UserSummary{}
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListManagers returns the accounts that can appear as a manager choice.
func (s *UserService) ListManagers(ctx context.Context) ([]models.UserSummary, error) {
	return s.listSummaries(ctx, `
		SELECT id, username, role
		FROM users
		WHERE role IN ('super_admin', 'admin')
		ORDER BY username
	`)
}

// ListAll returns the admin user directory with each user's supplementary
// managers attached. Admins never see super admin accounts in it.
func (s *UserService) ListAll(ctx context.Context, actor *models.User) ([]models.DirectoryEntry, error) {
	if !s.access.CanManageUsers(actor) {
		return nil, ErrInsufficientRole
	}

	query := `
		SELECT u.id, u.username, u.login_name, u.role, u.manager_id, m.username, u.created_at
		FROM users u
		LEFT JOIN users m ON u.manager_id = m.id
	`
	if actor.Role == models.RoleAdmin {
		query += ` WHERE u.role != 'super_admin'`
	}
	query += ` ORDER BY u.id`

	rows, err := s.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	entries := []models.DirectoryEntry{}
	byID := make(map[int64]int)
	for rows.Next() {
		var e models.DirectoryEntry
		if err := rows.Scan(&e.ID, &e.Username, &e.LoginName, &e.Role, &e.ManagerID, &e.ManagerName, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Managers = []models.ManagerRef{}
		byID[e.ID] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Pool.Query(ctx, `
		SELECT um.user_id, um.manager_id, u.username, u.role
		FROM user_managers um
		JOIN users u ON um.manager_id = u.id
		ORDER BY u.username
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list manager assignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID int64
		var ref models.ManagerRef
		if err := rows.Scan(&userID, &ref.ID, &ref.Username, &ref.Role); err != nil {
			return nil, err
		}
		if i, ok := byID[userID]; ok {
			entries[i].Managers = append(entries[i].Managers, ref)
		}
	}
	return entries, rows.Err()
}

func (s *UserService) Create(ctx context.Context, actor *models.User, p CreateUserParams) (*models.User, error) {
	if !s.access.CanManageUsers(actor) {
		return nil, ErrInsufficientRole
	}
	if !models.ValidRole(p.Role) {
		return nil, ErrInvalidRole
	}
	if err := s.access.CanGrantRole(actor, p.Role); err != nil {
		return nil, err
	}
	if len(p.Password) < s.passwordMinLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user models.User
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO users (username, login_name, password_hash, role, manager_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, username, login_name, role, manager_id, created_at, updated_at
	`, p.Username, p.LoginName, string(hash), p.Role, p.ManagerID).Scan(
		&user.ID, &user.Username, &user.LoginName,
		&user.Role, &user.ManagerID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateHandle
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, actor *models.User, targetID int64, p UpdateUserParams) error {
	if !s.access.CanManageUsers(actor) {
		return ErrInsufficientRole
	}
	if !models.ValidRole(p.Role) {
		return ErrInvalidRole
	}
	if err := s.access.CanGrantRole(actor, p.Role); err != nil {
		return err
	}

	target, err := s.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.access.CanTargetUser(actor, target); err != nil {
		return err
	}

	setManager := p.ManagerID != nil || p.ClearManager
	var managerID *int64
	if !p.ClearManager {
		managerID = p.ManagerID
	}

	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE users
		SET role = $1,
		    username = COALESCE($2, username),
		    manager_id = CASE WHEN $3::boolean THEN $4 ELSE manager_id END,
		    updated_at = NOW()
		WHERE id = $5
	`, p.Role, p.Username, setManager, managerID, targetID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes a user and everything tied to them. The subordinate check
// and the cascade run in one transaction with the target row locked, so the
// target cannot gain a subordinate between the check and the delete.
func (s *UserService) Delete(ctx context.Context, actor *models.User, targetID int64) error {
	if !s.access.CanManageUsers(actor) {
		return ErrInsufficientRole
	}
	if actor.ID == targetID {
		return ErrSelfDelete
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var targetRole string
	err = tx.QueryRow(ctx, `SELECT role FROM users WHERE id = $1 FOR UPDATE`, targetID).Scan(&targetRole)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load target user: %w", err)
	}
	if actor.Role == models.RoleAdmin && targetRole == models.RoleSuperAdmin {
		return ErrForbiddenTarget
	}

	var subordinates int
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE manager_id = $1`, targetID).Scan(&subordinates)
	if err != nil {
		return fmt.Errorf("failed to count subordinates: %w", err)
	}
	if subordinates > 0 {
		return ErrHasSubordinates
	}

	if _, err := tx.Exec(ctx, `DELETE FROM todos WHERE created_by = $1 OR assigned_to = $1`, targetID); err != nil {
		return fmt.Errorf("failed to delete todos: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM user_managers WHERE user_id = $1 OR manager_id = $1`, targetID); err != nil {
		return fmt.Errorf("failed to delete manager edges: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, targetID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ChangePassword verifies the current credential before accepting a new one.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if len(newPassword) < s.passwordMinLength {
		return ErrPasswordTooShort
	}

	var currentHash string
	err := s.db.Pool.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1`, userID).Scan(&currentHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(currentHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredential
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.db.Pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, string(hash), userID); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// ResetPassword sets a new password on another account without knowing the
// old one. Admins cannot reset a super admin's password.
func (s *UserService) ResetPassword(ctx context.Context, actor *models.User, targetID int64, password string) error {
	if !s.access.CanManageUsers(actor) {
		return ErrInsufficientRole
	}
	if len(password) < s.passwordMinLength {
		return ErrPasswordTooShort
	}

	if actor.Role == models.RoleAdmin {
		target, err := s.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if err := s.access.CanTargetUser(actor, target); err != nil {
			return err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, string(hash), targetID)
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
