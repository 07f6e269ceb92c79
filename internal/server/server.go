package server

import (
	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Newはechoを組み立てて返す。起動はmain側。
func New(
	cfg config.Config,
	authH *handler.AuthHandler,
	onboardingH *handler.OnboardingHandler,
	productH *handler.ProductHandler,
	authMW echo.MiddlewareFunc,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FEURL},
		AllowCredentials: true,
	}))

	RegisterRoutes(e, authH, onboardingH, productH, authMW)

	return e
}
