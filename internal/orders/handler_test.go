package orders

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optbazar/optbazar/internal/cart"
	"github.com/optbazar/optbazar/internal/catalog"
)

func newOrdersRouter(t *testing.T) (http.Handler, intakeFixture) {
	t.Helper()
	f := newIntakeFixture(t)
	r := chi.NewRouter()
	r.Route("/api/orders", NewHandler(nil, f.intake).MountRoutes)
	return r, f
}

const webOrderBody = `{
	"items":[{"productId":"p1","quantity":50},{"productId":"p2","quantity":40}],
	"customer":{"name":"Иван","phone":"+7 999 123-45-67","address":"Москва"},
	"comments":"после обеда"
}`

func TestHandlerSubmitWeb(t *testing.T) {
	router, _ := newOrdersRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(webOrderBody))
	req.Header.Set(IdempotencyHeader, "abc-1")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	var order Order
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &order))
	assert.Equal(t, StatusAccepted, order.Status)
	assert.True(t, order.TotalAmount.Equal(dec(7300)))

	dup := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(webOrderBody))
	dup.Header.Set(IdempotencyHeader, "abc-1")
	res = httptest.NewRecorder()
	router.ServeHTTP(res, dup)
	assert.Equal(t, http.StatusConflict, res.Code)
}

func TestHandlerSubmitAcceptsCartLines(t *testing.T) {
	router, f := newOrdersRouter(t)
	cucumbers := product("p1", "Огурцы свежие", 50, 10)
	cucumbers.Category = catalog.CategoryVegetables
	cucumbers.ImageURL = "https://cdn.example.com/cucumbers.jpg"
	c := cart.New(cart.Snapshot(cucumbers, dec(30)))

	body, err := json.Marshal(map[string]any{
		"items":    c.Lines(),
		"customer": validCustomer(),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(string(body)))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	var order Order
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &order))
	assert.True(t, order.TotalAmount.Equal(dec(1500)))
	assert.Equal(t, 1, f.metrics.submissions["web/accepted"])
}

func TestHandlerSubmitValidationError(t *testing.T) {
	router, _ := newOrdersRouter(t)
	body := `{"items":[{"productId":"p1","quantity":10}],"customer":{"phone":"abc","address":"x"}}`

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), `"field":"phone"`)
}

func TestHandlerSubmitExternal(t *testing.T) {
	router, f := newOrdersRouter(t)
	body := `{"source":"external-channel","externalUserId":"tg-1",
		"items":[{"productId":"p1","quantity":10}],
		"customer":{"phone":"+79991234567","address":"Казань"}}`

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	assert.Equal(t, 1, f.metrics.submissions["external-channel/accepted"])
}

func TestHandlerRejectsUnknownSource(t *testing.T) {
	router, _ := newOrdersRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"source":"fax"}`))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), `"field":"source"`)
}
