package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "shopapi/internal/errors"
	"shopapi/internal/model"
	"shopapi/internal/patch"
	"shopapi/internal/repository"
)

// brokenStore fails every call with err.
type brokenStore struct {
	err error
}

func (b brokenStore) Create(context.Context, *model.Product) error { return b.err }
func (b brokenStore) Get(context.Context, string) (*model.Product, error) {
	return nil, b.err
}
func (b brokenStore) List(context.Context) ([]model.Product, error) { return nil, b.err }
func (b brokenStore) Patch(context.Context, string, []patch.Operation) (patch.UpdateResult, error) {
	return patch.UpdateResult{}, b.err
}
func (b brokenStore) Delete(context.Context, string) (repository.DeleteResult, error) {
	return repository.DeleteResult{}, b.err
}

func TestProductHandler_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"storage failure is hidden", apperrors.Storage(errors.New("dial tcp 10.0.0.5:3306: refused")), http.StatusInternalServerError, "internal server error"},
		{"missing record", apperrors.ErrNotFound, http.StatusNotFound, "No valid entry found for provided ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			h := NewProductHandler(brokenStore{err: tt.err}, slog.New(slog.NewJSONHandler(&logs, nil)))

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/products/p-1", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("productId")
			c.SetParamValues("p-1")

			err := h.Get(c)
			require.Error(t, err)

			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.Code)
			body, ok := httpErr.Message.(apperrors.ErrorResponse)
			require.True(t, ok)
			assert.Equal(t, tt.message, body.Message)
			assert.NotContains(t, body.Message, "10.0.0.5")

			if tt.status == http.StatusInternalServerError {
				assert.Contains(t, logs.String(), "10.0.0.5")
			} else {
				assert.Empty(t, logs.String())
			}
		})
	}
}

func TestProductHandler_PatchRejectsNonList(t *testing.T) {
	h := NewProductHandler(brokenStore{}, slog.Default())
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/products/p-1", bytes.NewBufferString(`{"propName":"name","value":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.Patch(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}
