package delivery_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"user_service/internal/delivery"
	"user_service/internal/repository"
	"user_service/internal/usecase"
	"user_service/pkg/db/dbtest"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := repository.NewSQLUserRepository(dbtest.NewSQLite(t), logger)
	uc := usecase.NewUserUseCase(repo, logger)
	handler, err := delivery.NewUserHandler(uc, delivery.NewLinkBuilder("http://localhost:8080"), logger)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return delivery.NewRouter(delivery.RouterConfig{}, handler, logger)
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func createAlice(t *testing.T, router http.Handler) map[string]any {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/users", `{"name":"Alice","email":"a@x.com","age":30}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", w.Code, w.Body.String())
	}
	return decode[map[string]any](t, w)
}

func TestCreateUser_Created(t *testing.T) {
	router := newTestRouter(t)

	body := createAlice(t, router)

	if body["id"] != float64(1) {
		t.Fatalf("expected generated id 1, got %v", body["id"])
	}
	if body["name"] != "Alice" || body["email"] != "a@x.com" || body["age"] != float64(30) {
		t.Fatalf("input fields changed: %v", body)
	}
	created, ok := body["createdAt"].(string)
	if !ok {
		t.Fatalf("missing createdAt: %v", body)
	}
	if _, err := time.Parse(time.RFC3339Nano, created); err != nil {
		t.Fatalf("createdAt is not ISO-8601: %q", created)
	}

	links, ok := body["_links"].(map[string]any)
	if !ok {
		t.Fatalf("missing _links: %v", body)
	}
	self := links["self"].(map[string]any)["href"]
	if self != "http://localhost:8080/api/users/1" {
		t.Fatalf("unexpected self link %v", self)
	}
}

func TestCreateUser_ValidationErrors(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/users", `{"name":" ","email":"invalid-email","age":-1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	got := decode[map[string]string](t, w)
	want := map[string]string{
		"name":  "Name is required",
		"email": "Invalid email format",
		"age":   "Age must be positive",
	}
	for field, msg := range want {
		if got[field] != msg {
			t.Fatalf("field %s: got %q, want %q (body %v)", field, got[field], msg, got)
		}
	}
}

func TestCreateUser_MissingFields(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/users", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	got := decode[map[string]string](t, w)
	if got["name"] != "Name is required" || got["email"] != "Email is required" || got["age"] != "Age is required" {
		t.Fatalf("unexpected field errors: %v", got)
	}
}

func TestCreateUser_MalformedJSON(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/users", `{"name":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if decode[map[string]string](t, w)["error"] == "" {
		t.Fatalf("expected error message, got %s", w.Body.String())
	}
}

func TestGetUserByID_RoundTrip(t *testing.T) {
	router := newTestRouter(t)
	created := createAlice(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/users/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	got := decode[map[string]any](t, w)
	for _, field := range []string{"id", "name", "email", "age"} {
		if got[field] != created[field] {
			t.Fatalf("field %s: got %v, want %v", field, got[field], created[field])
		}
	}
	if got["createdAt"] == nil {
		t.Fatal("createdAt must be set")
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/users/999", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	msg := decode[map[string]string](t, w)["error"]
	if !strings.Contains(msg, "999") {
		t.Fatalf("error should mention the id, got %q", msg)
	}
}

func TestGetUserByID_BadID(t *testing.T) {
	router := newTestRouter(t)

	if w := doJSON(t, router, http.MethodGet, "/api/users/abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/api/users/0", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-positive id, got %d", w.Code)
	}
}

func TestGetAllUsers(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/users", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on empty store, got %d", w.Code)
	}
	if decode[map[string]string](t, w)["error"] == "" {
		t.Fatal("expected error body on empty store")
	}

	createAlice(t, router)
	doJSON(t, router, http.MethodPost, "/api/users", `{"name":"Bob","email":"b@x.com","age":41}`)

	w = doJSON(t, router, http.MethodGet, "/api/users", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	users := decode[[]map[string]any](t, w)
	if len(users) != 2 || users[0]["name"] != "Alice" || users[1]["name"] != "Bob" {
		t.Fatalf("unexpected list: %v", users)
	}
	for _, u := range users {
		if _, ok := u["_links"]; !ok {
			t.Fatalf("list element missing _links: %v", u)
		}
	}
}

func TestUpdateUser_Partial(t *testing.T) {
	router := newTestRouter(t)
	createAlice(t, router)

	w := doJSON(t, router, http.MethodPut, "/api/users/1", `{"name":"Alicia"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	got := decode[map[string]any](t, w)
	if got["name"] != "Alicia" || got["email"] != "a@x.com" || got["age"] != float64(30) {
		t.Fatalf("unexpected user after partial update: %v", got)
	}
}

func TestUpdateUser_NegativeAge(t *testing.T) {
	router := newTestRouter(t)
	createAlice(t, router)

	w := doJSON(t, router, http.MethodPut, "/api/users/1", `{"age": -1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if msg := decode[map[string]string](t, w)["age"]; msg != "Age must be positive" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestCreateUser_ZeroAge(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/users", `{"name":"Bob","email":"b@x.com","age":0}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if msg := decode[map[string]string](t, w)["age"]; msg != "Age must be positive" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestUpdateUser_ZeroAge(t *testing.T) {
	router := newTestRouter(t)
	createAlice(t, router)

	w := doJSON(t, router, http.MethodPut, "/api/users/1", `{"age":0}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if msg := decode[map[string]string](t, w)["age"]; msg != "Age must be positive" {
		t.Fatalf("unexpected message %q", msg)
	}

	got := decode[map[string]any](t, doJSON(t, router, http.MethodGet, "/api/users/1", ""))
	if got["age"] != float64(30) {
		t.Fatalf("age changed after rejected update: %v", got["age"])
	}
}

func TestUpdateUser_OmittedAgeKeepsValue(t *testing.T) {
	router := newTestRouter(t)
	createAlice(t, router)

	w := doJSON(t, router, http.MethodPut, "/api/users/1", `{"email":"alice@new.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	got := decode[map[string]any](t, w)
	if got["age"] != float64(30) || got["email"] != "alice@new.com" {
		t.Fatalf("unexpected user after update: %v", got)
	}
}

func TestCreateUser_KeepsNameAsGiven(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/users", `{"name":"  Alice  ","email":"a@x.com","age":30}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if name := decode[map[string]any](t, w)["name"]; name != "  Alice  " {
		t.Fatalf("name changed on the way through: %q", name)
	}

	got := decode[map[string]any](t, doJSON(t, router, http.MethodGet, "/api/users/1", ""))
	if got["name"] != "  Alice  " {
		t.Fatalf("stored name changed: %q", got["name"])
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/users/5", `{"name":"Nobody"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestDeleteUser_ThenGet(t *testing.T) {
	router := newTestRouter(t)
	createAlice(t, router)

	w := doJSON(t, router, http.MethodDelete, "/api/users/1", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", w.Body.String())
	}

	if w := doJSON(t, router, http.MethodGet, "/api/users/1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodDelete, "/api/users/1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}
}

func TestRequestID_Header(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/users", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected generated X-Request-ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") != "abc-123" {
		t.Fatalf("expected propagated request id, got %q", rec.Header().Get("X-Request-ID"))
	}
}
