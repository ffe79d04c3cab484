package httpserver

import (
	"bytes"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_delivery/internal/backup"
	"github.com/Skotchmaster/food_delivery/internal/service"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHTTP struct {
	Svc *service.AdminService
}

func (h *AdminHTTP) Payments(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.payments")

	payments, err := h.Svc.Payments(ctx)
	if err != nil {
		return fail(l, "admin_payments_error", err)
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *AdminHTTP) ExportPayments(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.payments.export")

	var buf bytes.Buffer
	if err := h.Svc.ExportPayments(ctx, &buf); err != nil {
		return fail(l, "admin_export_error", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="payments.xlsx"`)
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}

func (h *AdminHTTP) Reviews(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.reviews")

	reviews, err := h.Svc.Reviews(ctx)
	if err != nil {
		return fail(l, "admin_reviews_error", err)
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *AdminHTTP) Addresses(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.addresses")

	addrs, err := h.Svc.Addresses(ctx)
	if err != nil {
		return fail(l, "admin_addresses_error", err)
	}
	return c.JSON(http.StatusOK, addrs)
}

func (h *AdminHTTP) Backup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.backup")

	path, err := h.Svc.Dump(ctx)
	if err != nil {
		return fail(l, "backup_error", err)
	}
	defer os.Remove(path)

	l.Info("backup_created")
	return c.Attachment(path, backup.DumpFileName)
}

func (h *AdminHTTP) Restore(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.restore")

	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(l, "restore_error", "file is required", err)
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(l, "restore_error", "cannot read file", err)
	}
	defer f.Close()

	if err := h.Svc.Restore(ctx, f); err != nil {
		return fail(l, "restore_error", err)
	}

	l.Info("restore_done", "size", fh.Size)
	return c.JSON(http.StatusOK, transport.StatusResponse{Status: service.StatusSuccess, Message: "database restored from backup"})
}
