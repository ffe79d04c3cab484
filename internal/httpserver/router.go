package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/food_delivery/internal/service"
	middleware "github.com/Skotchmaster/food_delivery/pkg/middleware/auth"
)

type Deps struct {
	DB        *gorm.DB
	JWTSecret []byte

	Auth     *AuthHTTP
	Menu     *MenuHTTP
	Cart     *CartHTTP
	Order    *OrderHTTP
	Customer *CustomerHTTP
	Admin    *AdminHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		sqlDB, err := d.DB.DB()
		if err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := middleware.NewAutoRefreshMiddleware(d.JWTSecret, RefreshFunc(d.Auth.Svc))

	e.POST("/register", d.Auth.Register)
	e.POST("/login", d.Auth.Login)
	e.POST("/refresh", d.Auth.Refresh)
	e.GET("/menu", d.Menu.List)
	e.GET("/menu/search", d.Menu.Search)

	private := e.Group("")
	private.Use(authMW.RequireAuth)

	private.POST("/logout", d.Auth.LogOut)
	private.POST("/cart/add", d.Cart.AddToCart)
	private.GET("/cart/:username", d.Cart.GetCart)
	private.DELETE("/cart/remove", d.Cart.RemoveFromCart)
	private.POST("/checkout/:username", d.Order.CheckoutCart)
	private.GET("/orders/:username", d.Order.PendingSummary)
	private.GET("/orders/:username/history", d.Order.History)
	private.POST("/pay_order/:user_id", d.Order.PayOrder)
	private.GET("/payments/:username", d.Order.PaymentHistory)
	private.POST("/reviews/add", d.Customer.AddReview)
	private.POST("/address/save", d.Customer.SaveAddress)

	admin := e.Group("/admin")
	admin.Use(authMW.RequireAdmin)

	admin.POST("/menu", d.Menu.Create)
	admin.PATCH("/menu/:id", d.Menu.Patch)
	admin.DELETE("/menu/:id", d.Menu.Delete)
	admin.GET("/payments", d.Admin.Payments)
	admin.GET("/payments/export", d.Admin.ExportPayments)
	admin.GET("/reviews", d.Admin.Reviews)
	admin.GET("/addresses", d.Admin.Addresses)
	admin.POST("/backup", d.Admin.Backup)
	admin.POST("/restore", d.Admin.Restore)
}

// RefreshFunc lets the auth middleware rotate expired cookie sessions in-process.
func RefreshFunc(svc *service.AuthService) middleware.RefreshFunc {
	return func(ctx context.Context, refreshToken string) (*middleware.Refreshed, error) {
		res, err := svc.Refresh(ctx, refreshToken)
		if err != nil {
			return nil, err
		}
		return &middleware.Refreshed{
			AccessToken:  res.AccessToken,
			RefreshToken: res.RefreshToken,
			AccessExp:    res.AccessExp,
			RefreshExp:   res.RefreshExp,
		}, nil
	}
}
