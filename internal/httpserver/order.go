package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_delivery/internal/service"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
	middleware "github.com/Skotchmaster/food_delivery/pkg/middleware/auth"
)

const msgNoPendingOrders = "no pending orders"

type OrderHTTP struct {
	Checkout *service.CheckoutService
	Orders   *service.OrderService
	Payments *service.PaymentService
}

func (h *OrderHTTP) CheckoutCart(c echo.Context) error {
	ctx := c.Request().Context()
	username := c.Param("username")
	l := logging.FromContext(ctx).With("handler", "order.checkout", "username", username)

	if !middleware.SameUser(c, username) {
		return forbidden(l, "checkout_error")
	}

	res, err := h.Checkout.Checkout(ctx, username)
	if err != nil {
		return fail(l, "checkout_error", err)
	}

	l.Info("checkout_done", "result", res.Status, "orders", len(res.Orders))
	return c.JSON(http.StatusOK, transport.StatusResponse{Status: res.Status, Message: res.Message})
}

func (h *OrderHTTP) PendingSummary(c echo.Context) error {
	ctx := c.Request().Context()
	username := c.Param("username")
	l := logging.FromContext(ctx).With("handler", "order.pending", "username", username)

	if !middleware.SameUser(c, username) {
		return forbidden(l, "pending_orders_error")
	}

	sum, err := h.Orders.PendingSummary(ctx, username)
	if err != nil {
		return fail(l, "pending_orders_error", err)
	}
	if sum == nil {
		return c.JSON(http.StatusOK, transport.MessageResponse{Message: msgNoPendingOrders})
	}

	return c.JSON(http.StatusOK, transport.PendingSummary{
		UserID:     sum.UserID,
		TotalPrice: sum.TotalPrice,
		OrderCount: sum.OrderCount,
		Status:     sum.Status,
	})
}

func (h *OrderHTTP) History(c echo.Context) error {
	ctx := c.Request().Context()
	username := c.Param("username")
	l := logging.FromContext(ctx).With("handler", "order.history", "username", username)

	if !middleware.SameUser(c, username) {
		return forbidden(l, "order_history_error")
	}

	lines, err := h.Orders.History(ctx, username)
	if err != nil {
		return fail(l, "order_history_error", err)
	}
	return c.JSON(http.StatusOK, lines)
}

func (h *OrderHTTP) PaymentHistory(c echo.Context) error {
	ctx := c.Request().Context()
	username := c.Param("username")
	l := logging.FromContext(ctx).With("handler", "order.payments", "username", username)

	if !middleware.SameUser(c, username) {
		return forbidden(l, "payment_history_error")
	}

	payments, err := h.Payments.History(ctx, username)
	if err != nil {
		return fail(l, "payment_history_error", err)
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *OrderHTTP) PayOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.pay")

	userID, err := pathID(c, "user_id")
	if err != nil || userID == 0 {
		return badRequest(l, "pay_order_error", "invalid user_id", err)
	}
	if !middleware.SameUserID(c, userID) {
		return forbidden(l, "pay_order_error")
	}

	var req transport.PayOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "pay_order_error", "invalid body", err)
	}

	res, err := h.Payments.PayOrder(ctx, userID, req.PaymentMethod, req.Amount)
	if err != nil {
		var ie *service.InsufficientAmountError
		if errors.As(err, &ie) {
			l.Warn("pay_order_error", "status", http.StatusBadRequest, "reason", "insufficient amount",
				"amount", ie.Amount.String(), "required", ie.Required.String())
			return c.JSON(http.StatusBadRequest, transport.InsufficientAmountResponse{
				Status:   service.StatusError,
				Message:  ie.Error(),
				Amount:   ie.Amount,
				Required: ie.Required,
			})
		}
		return fail(l, "pay_order_error", err)
	}

	l.Info("order_paid", "user_id", userID, "payment_id", res.Payment.ID, "orders", len(res.OrderIDs))
	return c.JSON(http.StatusOK, transport.StatusResponse{Status: res.Status, Message: res.Message})
}
