package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optbazar/optbazar/internal/catalog"
)

type staticProducts []catalog.Product

func (s staticProducts) List(ctx context.Context, filter catalog.Filter) ([]catalog.Product, error) {
	return s, nil
}

func newRouter() http.Handler {
	r := chi.NewRouter()
	r.Route("/api/cart", NewHandler(nil, staticProducts{cucumbers(), apples()}).MountRoutes)
	return r
}

func TestQuoteEndpoint(t *testing.T) {
	body := `{"lines":[
		{"productId":"p-cucumber","name":"Огурцы","unit":"кг","price":50,"minOrder":10,"quantity":50},
		{"productId":"p-apple","name":"Яблоки","unit":"кг","price":120,"minOrder":20,"quantity":40}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/api/cart/quote", strings.NewReader(body))
	res := httptest.NewRecorder()
	newRouter().ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	var q Quote
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &q))
	assert.True(t, q.TotalAmount.Equal(dec(7300)))
	assert.True(t, q.TotalQuantity.Equal(dec(90)))
	assert.False(t, q.OverLimit)
	assert.True(t, q.LinesValid)
}

func TestBulkEndpointRequiresText(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/cart/bulk", strings.NewReader(`{"text":""}`))
	res := httptest.NewRecorder()
	newRouter().ServeHTTP(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), `"field":"text"`)
}

func TestBulkEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/cart/bulk", strings.NewReader(`{"text":"огурцы:20\nслива:10"}`))
	res := httptest.NewRecorder()
	newRouter().ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	var out struct {
		Lines    []Line        `json:"lines"`
		Failures []BulkFailure `json:"failures"`
		Quote    Quote         `json:"quote"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	assert.Len(t, out.Lines, 1)
	assert.Len(t, out.Failures, 1)
	assert.True(t, out.Quote.TotalAmount.Equal(dec(1000)))
}
