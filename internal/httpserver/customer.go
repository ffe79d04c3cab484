package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_delivery/internal/service"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
	middleware "github.com/Skotchmaster/food_delivery/pkg/middleware/auth"
)

type CustomerHTTP struct {
	Reviews   *service.ReviewService
	Addresses *service.AddressService
}

func (h *CustomerHTTP) AddReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.add")

	var req transport.ReviewRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_review_error", "invalid body", err)
	}
	if !middleware.SameUser(c, req.Username) {
		return forbidden(l, "add_review_error")
	}

	if _, err := h.Reviews.AddReview(ctx, req.Username, req.ItemName, req.Rating, req.Review); err != nil {
		return fail(l, "add_review_error", err)
	}
	return c.JSON(http.StatusOK, transport.StatusResponse{Status: service.StatusSuccess, Message: "review added"})
}

func (h *CustomerHTTP) SaveAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.save")

	var req transport.AddressRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "save_address_error", "invalid body", err)
	}
	if !middleware.SameUser(c, req.Username) {
		return forbidden(l, "save_address_error")
	}

	if _, err := h.Addresses.Save(ctx, req); err != nil {
		return fail(l, "save_address_error", err)
	}
	return c.JSON(http.StatusOK, transport.StatusResponse{Status: service.StatusSuccess, Message: "address saved"})
}
