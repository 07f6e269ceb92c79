package handler

import (
	"errors"
	"net/http"

	"app/internal/middleware"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// usecaseのHTTPErrorをそのままJSONに落とす共通処理
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}
	if errors.Is(err, validator.ErrValidation) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

type AuthHandler struct {
	authUC *usecase.AuthUsecase
}

// DI
func NewAuthHandler(authUC *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{authUC: authUC}
}

// /auth/register のリクエストボディ。
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// /auth/refresh のリクエストボディ。
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RegisterはPOST /auth/registerのハンドラ
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	out, err := h.authUC.Register(c.Request().Context(), usecase.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, validator.ErrValidation):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, usecase.ErrDuplicateUsername):
			return c.JSON(http.StatusConflict, ErrorResponse{Error: "username already in use"})
		case errors.Is(err, usecase.ErrDuplicateEmail):
			return c.JSON(http.StatusConflict, ErrorResponse{Error: "email already in use"})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "error registering user"})
		}
	}

	return c.JSON(http.StatusCreated, out)
}

// LoginはPOST /auth/login のハンドラ。
// 存在しないユーザーとパスワード違いは同じ401になる。
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	out, err := h.authUC.Login(c.Request().Context(), usecase.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, validator.ErrValidation):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, usecase.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
		case errors.Is(err, usecase.ErrInactiveAccount):
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "account is inactive"})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		}
	}

	return c.JSON(http.StatusOK, out)
}

// RefreshはPOST /auth/refresh のハンドラ。
// 失敗理由（不正・失効・期限切れ・停止）は外向きには全部同じ401に潰す。
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	out, err := h.authUC.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidRefreshToken),
			errors.Is(err, usecase.ErrRefreshTokenRevoked),
			errors.Is(err, usecase.ErrRefreshTokenExpired),
			errors.Is(err, usecase.ErrInactiveAccount):
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		}
	}

	return c.JSON(http.StatusOK, out)
}

// LogoutはPOST /auth/logout のハンドラ（要認証）。
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, ok := c.Get(middleware.CtxUserIDKey).(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.authUC.Logout(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	return c.JSON(http.StatusOK, out)
}
