package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/food_delivery/internal/events"
	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/notify"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/internal/search"
	"github.com/Skotchmaster/food_delivery/internal/service"
	"github.com/Skotchmaster/food_delivery/internal/testenv"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	loggingmw "github.com/Skotchmaster/food_delivery/pkg/middleware/logging"
	"github.com/Skotchmaster/food_delivery/pkg/tokens"
)

type testEnv struct {
	E    *echo.Echo
	Repo *repo.GormRepo
	Auth *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	r := testenv.NewRepo(t)

	authSvc := &service.AuthService{
		Repo:          r,
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		Events:        events.Nop{},
	}

	e := echo.New()
	e.Use(loggingmw.RequestLogger(slog.New(slog.NewJSONHandler(io.Discard, nil))))
	Register(e, &Deps{
		DB:        r.DB,
		JWTSecret: authSvc.JWTSecret,
		Auth:      &AuthHTTP{Svc: authSvc},
		Menu:      &MenuHTTP{Svc: &service.MenuService{Repo: r, Index: search.NewSQL(r)}},
		Cart:      &CartHTTP{Svc: &service.CartService{Repo: r, Events: events.Nop{}}},
		Order: &OrderHTTP{
			Checkout: &service.CheckoutService{Repo: r, Events: events.Nop{}},
			Orders:   &service.OrderService{Repo: r},
			Payments: &service.PaymentService{Repo: r, Events: events.Nop{}, Notifier: notify.Nop{}},
		},
		Customer: &CustomerHTTP{
			Reviews:   &service.ReviewService{Repo: r},
			Addresses: &service.AddressService{Repo: r},
		},
		Admin: &AdminHTTP{Svc: &service.AdminService{Repo: r}},
	})

	return &testEnv{E: e, Repo: r, Auth: authSvc}
}

func (env *testEnv) token(t *testing.T, username, password string) string {
	t.Helper()
	res, err := env.Auth.Login(context.Background(), username, password)
	require.NoError(t, err)
	return res.AccessToken
}

func (env *testEnv) doJSONRequest(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.doJSONRequest(t, http.MethodGet, "/health/live", nil, "").Code)
	assert.Equal(t, http.StatusOK, env.doJSONRequest(t, http.MethodGet, "/health/ready", nil, "").Code)
}

func TestRegisterLoginLogout(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSONRequest(t, http.MethodPost, "/register", transport.RegisterRequest{Username: "alice", Password: "pw"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, service.StatusSuccess, decode[transport.StatusResponse](t, rec).Status)

	rec = env.doJSONRequest(t, http.MethodPost, "/register", transport.RegisterRequest{Username: "ALICE", Password: "pw"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.doJSONRequest(t, http.MethodPost, "/register", transport.RegisterRequest{Username: "eve", Password: "pw", Role: "admin"}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.doJSONRequest(t, http.MethodPost, "/login", transport.Credentials{Username: "alice", Password: "bad"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.doJSONRequest(t, http.MethodPost, "/login", transport.Credentials{Username: "alice", Password: "pw"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[transport.LoginResponse](t, rec)
	assert.Equal(t, models.RoleUser, login.Role)
	assert.NotEmpty(t, login.AccessToken)

	var refresh *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == tokens.RefreshCookie {
			refresh = ck
		}
	}
	require.NotNil(t, refresh)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+login.AccessToken)
	req.AddCookie(refresh)
	out := httptest.NewRecorder()
	env.E.ServeHTTP(out, req)
	require.Equal(t, http.StatusOK, out.Code)

	_, err := env.Auth.Refresh(context.Background(), refresh.Value)
	require.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestAuthorization(t *testing.T) {
	env := newTestEnv(t)
	testenv.SeedUser(t, env.Repo, "alice", "pw", models.RoleUser)
	testenv.SeedUser(t, env.Repo, "bob", "pw", models.RoleUser)
	bob := env.token(t, "bob", "pw")

	assert.Equal(t, http.StatusUnauthorized, env.doJSONRequest(t, http.MethodGet, "/cart/alice", nil, "").Code)
	assert.Equal(t, http.StatusForbidden, env.doJSONRequest(t, http.MethodGet, "/cart/alice", nil, bob).Code)
	assert.Equal(t, http.StatusForbidden, env.doJSONRequest(t, http.MethodPost, "/checkout/alice", nil, bob).Code)
	assert.Equal(t, http.StatusForbidden, env.doJSONRequest(t, http.MethodGet, "/admin/payments", nil, bob).Code)
	assert.Equal(t, http.StatusOK, env.doJSONRequest(t, http.MethodGet, "/cart/BOB", nil, bob).Code)
}

func TestOrderFlow(t *testing.T) {
	env := newTestEnv(t)
	alice := testenv.SeedUser(t, env.Repo, "alice", "pw", models.RoleUser)
	testenv.SeedUser(t, env.Repo, "root", "pw", models.RoleAdmin)
	admin := env.token(t, "root", "pw")
	user := env.token(t, "alice", "pw")

	for _, it := range []map[string]any{{"name": "Pizza", "price": 500}, {"name": "Cola", "price": 100}} {
		rec := env.doJSONRequest(t, http.MethodPost, "/admin/menu", it, admin)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := env.doJSONRequest(t, http.MethodGet, "/menu", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.MenuItem](t, rec), 2)

	rec = env.doJSONRequest(t, http.MethodPost, "/checkout/alice", nil, user)
	require.Equal(t, http.StatusOK, rec.Code)
	empty := decode[transport.StatusResponse](t, rec)
	assert.Equal(t, service.StatusError, empty.Status)
	assert.Equal(t, service.MsgCartEmpty, empty.Message)

	rec = env.doJSONRequest(t, http.MethodPost, "/cart/add", transport.CartAddRequest{Username: "alice", ItemName: "Pizza", Quantity: 2}, user)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = env.doJSONRequest(t, http.MethodPost, "/cart/add", transport.CartAddRequest{Username: "alice", ItemName: "Cola", Quantity: 1}, user)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.doJSONRequest(t, http.MethodPost, "/cart/add", transport.CartAddRequest{Username: "alice", ItemName: "Cola", Quantity: 0}, user)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSONRequest(t, http.MethodGet, "/cart/alice", nil, user)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]transport.CartLine](t, rec), 2)

	rec = env.doJSONRequest(t, http.MethodPost, "/checkout/alice", nil, user)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.StatusSuccess, decode[transport.StatusResponse](t, rec).Status)

	rec = env.doJSONRequest(t, http.MethodGet, "/orders/alice", nil, user)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[transport.PendingSummary](t, rec)
	assert.Equal(t, alice.ID, sum.UserID)
	assert.True(t, decimal.NewFromInt(1100).Equal(sum.TotalPrice))
	assert.Equal(t, 2, sum.OrderCount)
	assert.Equal(t, models.OrderStatusPending, sum.Status)

	payPath := "/pay_order/" + strconv.FormatUint(uint64(alice.ID), 10)
	rec = env.doJSONRequest(t, http.MethodPost, payPath, map[string]any{"payment_method": "card", "amount": 1000}, user)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	short := decode[transport.InsufficientAmountResponse](t, rec)
	assert.True(t, decimal.NewFromInt(1100).Equal(short.Required))
	assert.True(t, decimal.NewFromInt(1000).Equal(short.Amount))

	rec = env.doJSONRequest(t, http.MethodPost, payPath, map[string]any{"payment_method": "card", "amount": 1100}, user)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.doJSONRequest(t, http.MethodPost, payPath, map[string]any{"payment_method": "card", "amount": 1100}, user)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.doJSONRequest(t, http.MethodGet, "/orders/alice", nil, user)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, msgNoPendingOrders, decode[transport.MessageResponse](t, rec).Message)

	rec = env.doJSONRequest(t, http.MethodGet, "/orders/alice/history", nil, user)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]repo.OrderLine](t, rec), 2)

	rec = env.doJSONRequest(t, http.MethodGet, "/payments/alice", nil, user)
	require.Equal(t, http.StatusOK, rec.Code)
	own := decode[[]models.Payment](t, rec)
	require.Len(t, own, 1)
	assert.Equal(t, alice.ID, own[0].UserID)
	assert.True(t, decimal.NewFromInt(1100).Equal(own[0].Amount))
	assert.Equal(t, 2, own[0].OrderCount)

	rec = env.doJSONRequest(t, http.MethodGet, "/admin/payments", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	payments := decode[[]transport.PaymentView](t, rec)
	require.Len(t, payments, 1)
	assert.Len(t, payments[0].OrderIDs, 2)

	rec = env.doJSONRequest(t, http.MethodGet, "/admin/payments/export", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxMIME, rec.Header().Get(echo.HeaderContentType))
	assert.NotZero(t, rec.Body.Len())
}

func TestPayOrder_OtherUserForbidden(t *testing.T) {
	env := newTestEnv(t)
	alice := testenv.SeedUser(t, env.Repo, "alice", "pw", models.RoleUser)
	testenv.SeedUser(t, env.Repo, "bob", "pw", models.RoleUser)
	bob := env.token(t, "bob", "pw")

	path := "/pay_order/" + strconv.FormatUint(uint64(alice.ID), 10)
	rec := env.doJSONRequest(t, http.MethodPost, path, map[string]any{"payment_method": "card", "amount": 1}, bob)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.doJSONRequest(t, http.MethodPost, "/pay_order/abc", map[string]any{"payment_method": "card", "amount": 1}, bob)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSONRequest(t, http.MethodGet, "/payments/alice", nil, bob)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReviewsAndAddresses(t *testing.T) {
	env := newTestEnv(t)
	testenv.SeedUser(t, env.Repo, "alice", "pw", models.RoleUser)
	testenv.SeedUser(t, env.Repo, "root", "pw", models.RoleAdmin)
	testenv.SeedMenuItem(t, env.Repo, "Pizza", 500)
	user := env.token(t, "alice", "pw")
	admin := env.token(t, "root", "pw")

	rec := env.doJSONRequest(t, http.MethodPost, "/reviews/add", transport.ReviewRequest{Username: "alice", ItemName: "Pizza", Rating: 5, Review: "tasty"}, user)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = env.doJSONRequest(t, http.MethodPost, "/reviews/add", transport.ReviewRequest{Username: "alice", ItemName: "Pizza", Rating: 9}, user)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	addr := transport.AddressRequest{Username: "alice", Address: "1 Main St", City: "Springfield", PostalCode: "11111"}
	require.Equal(t, http.StatusOK, env.doJSONRequest(t, http.MethodPost, "/address/save", addr, user).Code)
	addr.Address = "2 Oak Ave"
	require.Equal(t, http.StatusOK, env.doJSONRequest(t, http.MethodPost, "/address/save", addr, user).Code)

	rec = env.doJSONRequest(t, http.MethodGet, "/admin/reviews", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Review](t, rec), 1)

	rec = env.doJSONRequest(t, http.MethodGet, "/admin/addresses", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	addrs := decode[[]models.DeliveryAddress](t, rec)
	require.Len(t, addrs, 1)
	assert.Equal(t, "2 Oak Ave", addrs[0].Address)
}

func TestMenuSearchAndAdminCRUD(t *testing.T) {
	env := newTestEnv(t)
	testenv.SeedUser(t, env.Repo, "root", "pw", models.RoleAdmin)
	admin := env.token(t, "root", "pw")
	item := testenv.SeedMenuItem(t, env.Repo, "Margherita Pizza", 500)
	testenv.SeedMenuItem(t, env.Repo, "Cola", 100)

	rec := env.doJSONRequest(t, http.MethodGet, "/menu/search?query=pizza", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[[]models.MenuItem](t, rec)
	require.Len(t, found, 1)
	assert.Equal(t, item.ID, found[0].ID)

	assert.Equal(t, http.StatusBadRequest, env.doJSONRequest(t, http.MethodGet, "/menu/search", nil, "").Code)

	id := strconv.FormatUint(uint64(item.ID), 10)
	rec = env.doJSONRequest(t, http.MethodPatch, "/admin/menu/"+id, map[string]any{"available": false}, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSONRequest(t, http.MethodGet, "/menu", nil, "")
	assert.Len(t, decode[[]models.MenuItem](t, rec), 1)

	assert.Equal(t, http.StatusNoContent, env.doJSONRequest(t, http.MethodDelete, "/admin/menu/"+id, nil, admin).Code)
	assert.Equal(t, http.StatusNoContent, env.doJSONRequest(t, http.MethodDelete, "/admin/menu/"+id, nil, admin).Code)
	assert.Equal(t, http.StatusNotFound, env.doJSONRequest(t, http.MethodDelete, "/admin/menu/9999", nil, admin).Code)
}

func TestBackupRestoreRequirePostgres(t *testing.T) {
	env := newTestEnv(t)
	testenv.SeedUser(t, env.Repo, "root", "pw", models.RoleAdmin)
	admin := env.token(t, "root", "pw")

	assert.Equal(t, http.StatusBadRequest, env.doJSONRequest(t, http.MethodPost, "/admin/backup", nil, admin).Code)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "db_backup.sql")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("SELECT 1;"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/restore", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+admin)
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/admin/restore", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+admin)
	rec = httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
