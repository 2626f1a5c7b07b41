package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/leaf-oneplus/todolist/internal/middleware"
	"github.com/leaf-oneplus/todolist/internal/services"
	"github.com/leaf-oneplus/todolist/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type AuthHandler struct {
	userService  UserServiceInterface
	tokenService TokenServiceInterface
	jwtService   JWTServiceInterface
}

func NewAuthHandler(userService UserServiceInterface, tokenService TokenServiceInterface, jwtService JWTServiceInterface) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		tokenService: tokenService,
		jwtService:   jwtService,
	}
}

func (h *AuthHandler) Login(c *drift.Context) {
	var req dto.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		c.BadRequest("username and password are required")
		return
	}

	user, err := h.userService.Authenticate(context.Background(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredential) {
			c.Unauthorized(err.Error())
			return
		}
		respondServiceError(c, err)
		return
	}

	pair, err := h.issueTokens(user.ID, user.Username, user.Role)
	if err != nil {
		c.InternalServerError("failed to create session")
		return
	}

	_ = c.JSON(200, dto.LoginResponse{
		User: dto.NewUserResponse(user),
		Tokens: dto.TokenResponse{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			ExpiresIn:    pair.ExpiresIn,
		},
	})
}

func (h *AuthHandler) RefreshToken(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil || req.RefreshToken == "" {
		c.BadRequest("refresh_token is required")
		return
	}

	if _, err := h.jwtService.ValidateRefreshToken(req.RefreshToken); err != nil {
		c.Unauthorized("invalid or expired refresh token")
		return
	}

	tokenHash := services.HashToken(req.RefreshToken)
	userID, err := h.tokenService.ValidateRefreshToken(context.Background(), tokenHash)
	if err != nil {
		c.Unauthorized("invalid or expired refresh token")
		return
	}

	user, err := h.userService.GetByID(context.Background(), userID)
	if err != nil {
		c.Unauthorized("invalid or expired refresh token")
		return
	}

	// Rotate: the presented token is single use.
	_ = h.tokenService.RevokeRefreshToken(context.Background(), tokenHash)

	pair, err := h.issueTokens(user.ID, user.Username, user.Role)
	if err != nil {
		c.InternalServerError("failed to refresh session")
		return
	}

	_ = c.JSON(200, dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

func (h *AuthHandler) Logout(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil || req.RefreshToken == "" {
		c.BadRequest("refresh_token is required")
		return
	}

	if err := h.tokenService.RevokeRefreshToken(context.Background(), services.HashToken(req.RefreshToken)); err != nil {
		c.InternalServerError("failed to log out")
		return
	}
	_ = c.JSON(200, map[string]bool{"success": true})
}

func (h *AuthHandler) LogoutAll(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.Unauthorized("not authenticated")
		return
	}

	if err := h.tokenService.RevokeAllUserTokens(context.Background(), userID); err != nil {
		c.InternalServerError("failed to log out")
		return
	}
	_ = c.JSON(200, map[string]bool{"success": true})
}

func (h *AuthHandler) Me(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.Unauthorized("not authenticated")
		return
	}

	user, err := h.userService.GetByID(context.Background(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	_ = c.JSON(200, dto.NewUserResponse(user))
}

func (h *AuthHandler) ChangePassword(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		c.BadRequest("old_password and new_password are required")
		return
	}

	if err := h.userService.ChangePassword(context.Background(), userID, req.OldPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}
	_ = c.JSON(200, map[string]bool{"success": true})
}

func (h *AuthHandler) issueTokens(userID int64, username, role string) (*services.TokenPair, error) {
	pair, err := h.jwtService.GenerateTokenPair(userID, username, role)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(h.jwtService.RefreshExpiry())
	if err := h.tokenService.StoreRefreshToken(context.Background(), userID, services.HashToken(pair.RefreshToken), expiresAt); err != nil {
		return nil, err
	}
	return pair, nil
}
