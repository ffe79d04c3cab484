package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_delivery/internal/service"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

type MenuHTTP struct {
	Svc *service.MenuService
}

func (h *MenuHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.list")

	items, err := h.Svc.List(ctx)
	if err != nil {
		return fail(l, "menu_list_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *MenuHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.search")

	limit := 0
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return badRequest(l, "menu_search_error", "invalid limit", err)
		}
		limit = n
	}

	items, err := h.Svc.Search(ctx, c.QueryParam("query"), limit)
	if err != nil {
		return fail(l, "menu_search_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *MenuHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.create")

	var req transport.CreateMenuItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "menu_create_error", "invalid body", err)
	}

	item, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(l, "menu_create_error", err)
	}
	l.Info("menu_item_created", "id", item.ID)
	return c.JSON(http.StatusCreated, item)
}

func (h *MenuHTTP) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.patch")

	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(l, "menu_patch_error", "invalid id", err)
	}
	var req transport.PatchMenuItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "menu_patch_error", "invalid body", err)
	}

	item, err := h.Svc.Patch(ctx, id, req)
	if err != nil {
		return fail(l, "menu_patch_error", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *MenuHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.delete")

	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(l, "menu_delete_error", "invalid id", err)
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(l, "menu_delete_error", err)
	}
	l.Info("menu_item_deleted", "id", id)
	return c.NoContent(http.StatusNoContent)
}

func pathID(c echo.Context, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}
