package router

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"shopapi/internal/auth"
	apperrors "shopapi/internal/errors"
	"shopapi/internal/handler"
	"shopapi/internal/metrics"
	"shopapi/internal/model"
	"shopapi/internal/patch"
	"shopapi/internal/repository"
	"shopapi/internal/service"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func (m *memoryUsers) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperrors.ErrMailExists
		}
	}
	_ = user.BeforeCreate(nil)
	user.CreatedAt = time.Now()
	stored := *user
	m.users[user.ID.String()] = &stored
	return nil
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return u, nil
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memoryUsers) DeleteByID(_ context.Context, id string) (repository.DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.DeleteResult{Acknowledged: true}, nil
	}
	delete(m.users, id)
	return repository.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

// memoryCollection keeps records in a map. assign gives a new record its id;
// set writes one field.
type memoryCollection[T any] struct {
	mu     sync.Mutex
	items  map[string]T
	assign func(*T) string
	set    func(*T, string, string)
}

func (m *memoryCollection[T]) Create(_ context.Context, item *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[m.assign(item)] = *item
	return nil
}

func (m *memoryCollection[T]) FindByID(_ context.Context, id string) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &item, nil
}

func (m *memoryCollection[T]) List(_ context.Context) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	return out, nil
}

func (m *memoryCollection[T]) UpdateFields(_ context.Context, id string, fields patch.MergeSet) (patch.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return patch.UpdateResult{Acknowledged: true}, nil
	}
	before := item
	for name, value := range fields {
		m.set(&item, name, value)
	}
	m.items[id] = item
	res := patch.UpdateResult{Acknowledged: true, MatchedCount: 1}
	if !reflect.DeepEqual(before, item) {
		res.ModifiedCount = 1
	}
	return res, nil
}

func (m *memoryCollection[T]) DeleteByID(_ context.Context, id string) (repository.DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return repository.DeleteResult{Acknowledged: true}, nil
	}
	delete(m.items, id)
	return repository.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

func newProducts() *memoryCollection[model.Product] {
	return &memoryCollection[model.Product]{
		items: map[string]model.Product{},
		assign: func(p *model.Product) string {
			_ = p.BeforeCreate(nil)
			return p.ID.String()
		},
		set: func(p *model.Product, name, value string) {
			switch name {
			case "name":
				p.Name = value
			case "description":
				p.Description = value
			case "price":
				p.Price = decimal.RequireFromString(value)
			default:
				p.Extra = p.Extra.Merge(map[string]string{name: value})
			}
		},
	}
}

func newTodos() *memoryCollection[model.Todo] {
	return &memoryCollection[model.Todo]{
		items: map[string]model.Todo{},
		assign: func(t *model.Todo) string {
			_ = t.BeforeCreate(nil)
			return t.ID.String()
		},
		set: func(t *model.Todo, name, value string) {
			switch name {
			case "title":
				t.Title = value
			case "description":
				t.Description = value
			default:
				t.Extra = t.Extra.Merge(map[string]string{name: value})
			}
		},
	}
}

type testServer struct {
	e      *echo.Echo
	tokens *auth.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := &memoryUsers{users: map[string]*model.User{}}
	tokens := auth.NewJWTService("test-secret", time.Hour)
	applier := patch.NewApplier()

	authSvc := service.NewAuthService(users, auth.NewBcryptHasher(bcrypt.MinCost), tokens, log)
	productSvc := service.NewItemService[model.Product]("product", newProducts(), applier, nil, 0)
	todoSvc := service.NewItemService[model.Todo]("todo", newTodos(), applier, nil, 0)

	e := echo.New()
	Register(e, log, auth.Middleware(tokens, log), Handlers{
		Auth:     handler.NewAuthHandler(authSvc, log),
		Users:    handler.NewUserHandler(service.NewUserService(users, log), log),
		Products: handler.NewProductHandler(productSvc, log),
		Todos:    handler.NewTodoHandler(todoSvc, log),
		Metrics:  metrics.New(),
	})
	return &testServer{e: e, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

const signupBody = `{"email":"ada@example.com","password":"s3cret","firstName":"Ada","lastName":"Lovelace"}`

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	rec, _ := s.do(t, http.MethodPost, "/user/signup", signupBody, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	rec, body := s.do(t, http.MethodPost, "/user/login", `{"email":"ada@example.com","password":"s3cret"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	return body["token"].(string)
}

func TestSignup(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodPost, "/user/signup", signupBody, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "User created", body["message"])
	result := body["result"].(map[string]any)
	assert.Equal(t, "ada@example.com", result["email"])
	assert.NotContains(t, rec.Body.String(), "s3cret")
	assert.NotContains(t, rec.Body.String(), "$2a$")

	dup := strings.Replace(signupBody, "ada@example.com", "ADA@Example.com", 1)
	rec, body = s.do(t, http.MethodPost, "/user/signup", dup, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Mail exists", body["message"])

	rec, _ = s.do(t, http.MethodPost, "/user/signup", `{"email":"nope","password":"x","firstName":"A","lastName":"B"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/user/signup", `{"email":"b@example.com"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	claims, err := s.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims.Email)

	tests := []struct {
		name string
		body string
	}{
		{"wrong password", `{"email":"ada@example.com","password":"guess"}`},
		{"unknown email", `{"email":"bob@example.com","password":"s3cret"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := s.do(t, http.MethodPost, "/user/login", tt.body, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Auth failed", body["message"])
		})
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	rec, body := s.do(t, http.MethodGet, "/products", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Auth failed", body["message"])

	rec, _ = s.do(t, http.MethodGet, "/todos", "", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodDelete, "/user/"+uuid.NewString(), "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/products", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestProductLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	rec, body := s.do(t, http.MethodPost, "/products", `{"name":"Lamp","price":"19.99"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Created Product Successfully", body["message"])
	created := body["createdProduct"].(map[string]any)
	id := created["id"].(string)
	request := created["request"].(map[string]any)
	assert.Equal(t, "GET", request["type"])
	assert.True(t, strings.HasSuffix(request["url"].(string), "/products/"+id))

	ops := `[{"propName":"name","value":"X"},{"propName":"price","value":1},{"propName":"name","value":"Y"}]`
	rec, body = s.do(t, http.MethodPatch, "/products/"+id, ops, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["acknowledged"])
	assert.EqualValues(t, 1, body["matchedCount"])
	assert.EqualValues(t, 1, body["modifiedCount"])

	rec, body = s.do(t, http.MethodGet, "/products/"+id, "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Y", body["name"])
	assert.Equal(t, "1", body["price"])

	rec, body = s.do(t, http.MethodPatch, "/products/"+uuid.NewString(), `[{"propName":"name","value":"Z"}]`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, body["matchedCount"])
	assert.EqualValues(t, 0, body["modifiedCount"])

	rec, _ = s.do(t, http.MethodPatch, "/products/"+id, `{"propName":"name"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = s.do(t, http.MethodDelete, "/products/"+id, "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["deletedCount"])

	rec, body = s.do(t, http.MethodGet, "/products/"+id, "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No valid entry found for provided ID", body["message"])
}

func TestTodoCreateDefaultsDate(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	rec, body := s.do(t, http.MethodPost, "/todos", `{"title":"ship","description":"release"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := body["createdTodo"].(map[string]any)
	date, err := time.Parse(time.RFC3339Nano, created["date"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), date, time.Minute)

	rec, _ = s.do(t, http.MethodPost, "/todos", `{"title":"no description"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteUser(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)
	claims, err := s.tokens.Verify(token)
	require.NoError(t, err)

	rec, body := s.do(t, http.MethodDelete, "/user/"+claims.UserID, "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User deleted", body["message"])
	assert.EqualValues(t, 1, body["data"].(map[string]any)["deletedCount"])
}

func TestHealthzAndMetrics(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec, _ = s.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/healthz"`)
}

func TestMetricsCountPanics(t *testing.T) {
	s := newTestServer(t)
	s.e.GET("/boom", func(c echo.Context) error {
		panic("handler bug")
	})

	rec, _ := s.do(t, http.MethodGet, "/boom", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/boom",status="500"`)
}
