package products

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templatecore/core/internal/platform/httpx"
	"github.com/templatecore/core/internal/shared"
)

type mockRepository struct {
	items  map[int64]Product
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{items: make(map[int64]Product)}
}

func (m *mockRepository) List(ctx context.Context, page shared.PageRequest) ([]Product, int64, error) {
	var out []Product
	for _, p := range m.items {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Product, error) {
	p, ok := m.items[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (m *mockRepository) Create(ctx context.Context, product Product) (Product, error) {
	for _, p := range m.items {
		if p.Description == product.Description {
			return Product{}, ErrDuplicate
		}
	}
	m.nextID++
	product.ID = m.nextID
	m.items[product.ID] = product
	return product, nil
}

func (m *mockRepository) Update(ctx context.Context, product Product) error {
	if _, ok := m.items[product.ID]; !ok {
		return ErrNotFound
	}
	m.items[product.ID] = product
	return nil
}

func (m *mockRepository) SetInactive(ctx context.Context, id int64) error {
	p, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	p.IsActive = false
	m.items[id] = p
	return nil
}

func TestCreateProduct(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	p, err := svc.Create(ctx, ProductForm{Description: "  Notebook  "})
	require.NoError(t, err)
	assert.Equal(t, "Notebook", p.Description)
	assert.True(t, p.IsActive)

	_, err = svc.Create(ctx, ProductForm{Description: "Notebook"})
	assert.ErrorIs(t, err, httpx.ErrDuplicate)

	_, err = svc.Create(ctx, ProductForm{ID: 5, Description: "Mouse"})
	assert.ErrorIs(t, err, httpx.ErrHasID)

	_, err = svc.Create(ctx, ProductForm{Description: "   "})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(ctx, ProductForm{Description: "two\nlines"})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()
	p, err := svc.Create(ctx, ProductForm{Description: "Teclado"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, ProductForm{ID: p.ID, Description: "Teclado ABNT2"})
	require.NoError(t, err)
	assert.Equal(t, "Teclado ABNT2", updated.Description)
	assert.True(t, updated.IsActive)

	_, err = svc.Update(ctx, ProductForm{ID: 99, Description: "x"})
	assert.ErrorIs(t, err, httpx.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, p.ID))
	stored, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	assert.ErrorIs(t, svc.Delete(ctx, 0), httpx.ErrValidation)
}

func TestHandlerRoutes(t *testing.T) {
	h := NewHandler(nil, NewService(newMockRepository()))
	assert.Equal(t, []string{
		"/api/produto/get/{id}",
		"/api/produto/find",
		"/api/produto/save",
		"/api/produto/update",
		"/api/produto/delete/{id}",
	}, h.Routes().Endpoints())

	r := chi.NewRouter()
	httpx.Mount(r, h.Routes(), nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/produto/save", strings.NewReader(`{"description":"Monitor"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/produto/update", strings.NewReader(`{"id":7,"description":"Monitor"}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/produto/save", strings.NewReader(`{"description":"Monitor","price":1}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
