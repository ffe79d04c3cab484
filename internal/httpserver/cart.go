package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_delivery/internal/service"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
	middleware "github.com/Skotchmaster/food_delivery/pkg/middleware/auth"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req transport.CartAddRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_to_cart_error", "invalid body", err)
	}
	if !middleware.SameUser(c, req.Username) {
		return forbidden(l, "add_to_cart_error")
	}

	if _, err := h.Svc.AddToCart(ctx, req.Username, req.ItemName, req.Quantity); err != nil {
		return fail(l, "add_to_cart_error", err)
	}

	l.Info("item added to cart", "item", req.ItemName, "quantity", req.Quantity)
	return c.JSON(http.StatusOK, transport.StatusResponse{
		Status:  service.StatusSuccess,
		Message: "item added to cart",
	})
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	username := c.Param("username")
	if !middleware.SameUser(c, username) {
		return forbidden(l, "get_cart_error")
	}

	lines, err := h.Svc.GetCart(ctx, username)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, lines)
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	username, itemName := c.QueryParam("username"), c.QueryParam("item_name")
	if !middleware.SameUser(c, username) {
		return forbidden(l, "remove_from_cart_error")
	}

	if err := h.Svc.RemoveFromCart(ctx, username, itemName); err != nil {
		return fail(l, "remove_from_cart_error", err)
	}

	l.Info("item removed from cart", "item", itemName)
	return c.JSON(http.StatusOK, transport.StatusResponse{
		Status:  service.StatusSuccess,
		Message: itemName + " removed from cart",
	})
}
