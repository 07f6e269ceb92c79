package handler

import (
	"net/http"

	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /onboarding の認証必須API
type OnboardingHandler struct {
	uc *usecase.OnboardingUsecase
}

// DI
func NewOnboardingHandler(uc *usecase.OnboardingUsecase) *OnboardingHandler {
	return &OnboardingHandler{uc: uc}
}

// 申込ルートを登録（authMWで全ルート保護）
func (h *OnboardingHandler) RegisterRoutes(e *echo.Echo, authMW echo.MiddlewareFunc) {
	g := e.Group("/onboarding", authMW)
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.PATCH("/:id/status", h.updateStatus)
	g.DELETE("/:id", h.remove)
}

type createOnboardingRequest struct {
	Name          string  `json:"name"`
	Document      string  `json:"document"`
	Email         string  `json:"email"`
	InitialAmount float64 `json:"initial_amount"`
}

type updateStatusRequest struct {
	Status model.OnboardingStatus `json:"status"`
}

func currentUserID(c echo.Context) (string, bool) {
	userID, ok := c.Get(middleware.CtxUserIDKey).(string)
	return userID, ok && userID != ""
}

func (h *OnboardingHandler) create(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req createOnboardingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	out, err := h.uc.Create(c.Request().Context(), userID, usecase.CreateOnboardingInput{
		Name:          req.Name,
		Document:      req.Document,
		Email:         req.Email,
		InitialAmount: req.InitialAmount,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *OnboardingHandler) list(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.FindAllByUser(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *OnboardingHandler) detail(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.FindOne(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *OnboardingHandler) updateStatus(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	out, err := h.uc.UpdateStatus(c.Request().Context(), c.Param("id"), userID, req.Status)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *OnboardingHandler) remove(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.Remove(c.Request().Context(), c.Param("id"), userID); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
