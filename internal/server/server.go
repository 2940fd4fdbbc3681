package server

import (
	"marketplace/internal/config"
	"marketplace/internal/handler"
	mw "marketplace/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Address  *handler.AddressHandler
	Category *handler.CategoryHandler
	Product  *handler.ProductHandler
	Order    *handler.OrderHandler
	Support  *handler.SupportHandler
}

// ルーティングを組み立てる。認証必須グループと管理者グループをここで分ける
func New(cfg config.Config, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	feURL := cfg.FEURL
	if feURL == "" {
		feURL = "http://localhost:3000"
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{feURL},
		AllowMethods:     []string{echo.GET, echo.POST, echo.PATCH, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-Idempotency-Key"},
		AllowCredentials: true,
	}))

	authed := e.Group("", mw.AuthJWT(cfg))
	admin := e.Group("/admin", mw.AuthJWT(cfg), mw.AdminRoleGuard())

	h.Auth.RegisterRoutes(e, cfg)
	h.Address.RegisterRoutes(authed)
	h.Category.RegisterRoutes(e, authed)
	h.Product.RegisterRoutes(e, authed)
	h.Order.RegisterRoutes(authed, admin)
	h.Support.RegisterRoutes(authed, admin)

	return e
}

func Start(addr string, cfg config.Config, h Handlers) error {
	e := New(cfg, h)
	return e.Start(addr)
}
