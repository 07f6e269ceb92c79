package middleware

import (
	"net/http"
	"strings"

	"app/internal/token"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey   = "user_id"   // string (uuid)
	CtxUsernameKey = "username"  // string
	CtxEmailKey    = "email"     // string
)

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// bearerAuth用のJWT検証ミドルウェア。
// 署名・期限の検証に加えて、毎回アカウントの生存（存在・有効）を再確認する。
// tokenが有効でも停止済み・削除済みユーザーは401。
func AuthJWT(issuer *token.Issuer, authUC *usecase.AuthUsecase) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//署名と期限を検証（期限切れか署名不正かは外向きには区別しない）
			claims, err := issuer.Verify(rawToken)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//アカウントの生存を再確認
			user, err := authUC.ValidateUser(c.Request().Context(), claims.Subject)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}
			if user == nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, user.ID)
			c.Set(CtxUsernameKey, user.Username)
			c.Set(CtxEmailKey, user.Email)

			return next(c)
		}
	}
}
