package server

import (
	"time"

	"app/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// loginのレート制限（3回/60秒）。コア側では制限しない約束なのでルート層に置く。
func loginRateLimiter() echo.MiddlewareFunc {
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(3.0 / 60.0),
			Burst:     3,
			ExpiresIn: 3 * time.Minute,
		}),
	})
}

func RegisterRoutes(
	e *echo.Echo,
	authH *handler.AuthHandler,
	onboardingH *handler.OnboardingHandler,
	productH *handler.ProductHandler,
	authMW echo.MiddlewareFunc,
) {
	e.POST("/auth/register", authH.Register)
	e.POST("/auth/login", authH.Login, loginRateLimiter())
	e.POST("/auth/refresh", authH.Refresh)
	e.POST("/auth/logout", authH.Logout, authMW)

	onboardingH.RegisterRoutes(e, authMW)
	productH.RegisterRoutes(e)
}
