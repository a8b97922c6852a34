package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Panjavaishnavi/news-app/internal/auth"
	"github.com/Panjavaishnavi/news-app/internal/repository/sqlite"
	"github.com/Panjavaishnavi/news-app/internal/service"
)

type apiFixture struct {
	router  *gin.Engine
	auth    service.AuthService
	content service.ContentService
	tokens  *auth.TokenManager
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	userRepo := sqlite.NewUserRepository(db)
	categoryRepo := sqlite.NewCategoryRepository(db)
	newsRepo := sqlite.NewNewsRepository(db)
	for _, init := range []func(context.Context) error{userRepo.Init, categoryRepo.Init, newsRepo.Init} {
		if err := init(ctx); err != nil {
			t.Fatalf("init repo: %v", err)
		}
	}

	authSvc := service.NewAuthService(userRepo)
	contentSvc := service.NewContentService(categoryRepo, newsRepo)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	logger := logrus.New()
	logger.SetOutput(new(bytes.Buffer))

	router := gin.New()
	NewHandler(authSvc, contentSvc, tokens, nil, logger).RegisterRoutes(router)

	return &apiFixture{
		router:  router,
		auth:    authSvc,
		content: contentSvc,
		tokens:  tokens,
	}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

// adminToken provisions an admin account and logs in over HTTP.
func (f *apiFixture) adminToken(t *testing.T) (string, int64) {
	t.Helper()
	if err := f.auth.EnsureAdmin(context.Background(), "root", "s3cret!"); err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}

	rec := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "root",
		"password": "s3cret!",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login: status %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	return body["token"].(string), int64(body["id"].(float64))
}

func (f *apiFixture) userToken(t *testing.T, username string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name":     username,
		"username": username,
		"email":    username + "@example.com",
		"password": "hunter22",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup %q: status %d, body %s", username, rec.Code, rec.Body.String())
	}
	return decodeBody(t, rec)["token"].(string)
}

func TestSignup(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name":     "Alice",
		"username": "alice",
		"email":    "alice@example.com",
		"password": "hunter22",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["role"] != "user" {
		t.Errorf("role = %v, want user", body["role"])
	}
	if body["token"] == nil || body["token"] == "" {
		t.Error("signup response has no token")
	}
	if _, ok := body["password"]; ok {
		t.Error("signup response contains password field")
	}

	// same username again conflicts regardless of the other fields
	rec = f.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name":     "Other",
		"username": "alice",
		"email":    "other@example.com",
		"password": "different",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate signup status = %d, want 400", rec.Code)
	}
	if decodeBody(t, rec)["message"] != "User already exists" {
		t.Errorf("duplicate signup body = %s", rec.Body.String())
	}
}

func TestSignupReportsAllViolations(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email":    "not-an-email",
		"password": "123",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	violations := decodeBody(t, rec)["errors"].([]any)
	if len(violations) != 4 {
		t.Errorf("got %d violations %v, want 4 (name, username, email, password)", len(violations), violations)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newAPIFixture(t)
	f.userToken(t, "alice")

	wrongPass := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	unknownUser := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "nobody",
		"password": "hunter22",
	})

	if wrongPass.Code != http.StatusUnauthorized || unknownUser.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d/%d, want 401/401", wrongPass.Code, unknownUser.Code)
	}
	if wrongPass.Body.String() != unknownUser.Body.String() {
		t.Errorf("bodies differ: %s vs %s", wrongPass.Body.String(), unknownUser.Body.String())
	}
}

func TestNewsWriteAccessControl(t *testing.T) {
	f := newAPIFixture(t)
	adminToken, adminID := f.adminToken(t)
	userToken := f.userToken(t, "civilian")

	category, err := f.content.CreateCategory(context.Background(), "Tech")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	article := map[string]any{
		"title":       "A",
		"description": "B",
		"category_id": category.ID,
	}

	if rec := f.do(t, http.MethodPost, "/api/news", "", article); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}
	if rec := f.do(t, http.MethodPost, "/api/news", "garbage-token", article); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", rec.Code)
	}
	if rec := f.do(t, http.MethodPost, "/api/news", userToken, article); rec.Code != http.StatusForbidden {
		t.Errorf("non-admin: status = %d, want 403", rec.Code)
	}

	rec := f.do(t, http.MethodPost, "/api/news", adminToken, article)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin create: status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := int64(decodeBody(t, rec)["user_id"].(float64)); got != adminID {
		t.Errorf("user_id = %d, want admin id %d", got, adminID)
	}
}

func TestCreateNewsIgnoresBodyUserID(t *testing.T) {
	f := newAPIFixture(t)
	adminToken, adminID := f.adminToken(t)

	category, err := f.content.CreateCategory(context.Background(), "Tech")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	// a client-supplied user_id must be overwritten by the caller identity
	raw := fmt.Sprintf(`{"title":"A","description":"B","category_id":%d,"user_id":999}`, category.ID)
	rec := f.do(t, http.MethodPost, "/api/news", adminToken, raw)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := int64(decodeBody(t, rec)["user_id"].(float64)); got != adminID {
		t.Errorf("user_id = %d, want %d", got, adminID)
	}
}

func TestNewsReadEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	adminToken, _ := f.adminToken(t)

	category, err := f.content.CreateCategory(context.Background(), "Tech")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	var lastID int64
	for i := 1; i <= 3; i++ {
		rec := f.do(t, http.MethodPost, "/api/news", adminToken, map[string]any{
			"title":       fmt.Sprintf("story %d", i),
			"description": "body",
			"category_id": category.ID,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create news %d: status %d", i, rec.Code)
		}
		lastID = int64(decodeBody(t, rec)["id"].(float64))
	}

	// public list, newest first
	rec := f.do(t, http.MethodGet, "/api/news", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	var list []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 3 || int64(list[0]["id"].(float64)) != lastID {
		t.Errorf("list order wrong: %v", list)
	}
	if list[0]["category_title"] != "Tech" {
		t.Errorf("category_title = %v, want Tech", list[0]["category_title"])
	}
	if list[0]["author"] != "root" {
		t.Errorf("author = %v, want root", list[0]["author"])
	}

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/news/%d", lastID), "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get by id: status = %d", rec.Code)
	}

	if rec := f.do(t, http.MethodGet, "/api/news/9999", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("get missing: status = %d, want 404", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/news/abc", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("get bad id: status = %d, want 400", rec.Code)
	}

	// unknown category is an empty 200, not a 404
	rec = f.do(t, http.MethodGet, "/api/news/category/999", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unknown category: status = %d, want 200", rec.Code)
	}
	var empty []any
	if err := json.Unmarshal(rec.Body.Bytes(), &empty); err != nil {
		t.Fatalf("decode empty list: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("unknown category returned %d items", len(empty))
	}
}

func TestNewsUpdateAndDelete(t *testing.T) {
	f := newAPIFixture(t)
	adminToken, _ := f.adminToken(t)

	category, err := f.content.CreateCategory(context.Background(), "Tech")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	rec := f.do(t, http.MethodPost, "/api/news", adminToken, map[string]any{
		"title":       "before",
		"description": "body",
		"category_id": category.ID,
	})
	id := int64(decodeBody(t, rec)["id"].(float64))

	rec = f.do(t, http.MethodPut, fmt.Sprintf("/api/news/%d", id), adminToken, map[string]any{
		"title":       "after",
		"description": "new body",
		"category_id": category.ID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["title"] != "after" {
		t.Errorf("update body = %s", rec.Body.String())
	}

	if rec := f.do(t, http.MethodPut, "/api/news/9999", adminToken, map[string]any{
		"title":       "x",
		"description": "y",
		"category_id": category.ID,
	}); rec.Code != http.StatusNotFound {
		t.Errorf("update missing: status = %d, want 404", rec.Code)
	}

	rec = f.do(t, http.MethodDelete, fmt.Sprintf("/api/news/%d", id), adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status = %d", rec.Code)
	}
	if decodeBody(t, rec)["message"] != "News removed" {
		t.Errorf("delete body = %s", rec.Body.String())
	}

	// delete of a nonexistent id is a 404, never a silent success
	if rec := f.do(t, http.MethodDelete, fmt.Sprintf("/api/news/%d", id), adminToken, nil); rec.Code != http.StatusNotFound {
		t.Errorf("delete again: status = %d, want 404", rec.Code)
	}
}

func TestCategoryEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	adminToken, _ := f.adminToken(t)
	userToken := f.userToken(t, "civilian")

	if rec := f.do(t, http.MethodPost, "/api/categories", userToken, map[string]string{"title": "Tech"}); rec.Code != http.StatusForbidden {
		t.Errorf("non-admin create: status = %d, want 403", rec.Code)
	}

	rec := f.do(t, http.MethodPost, "/api/categories", adminToken, map[string]string{"title": "Tech"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body %s", rec.Code, rec.Body.String())
	}
	id := int64(decodeBody(t, rec)["id"].(float64))

	rec = f.do(t, http.MethodPut, fmt.Sprintf("/api/categories/%d", id), adminToken, map[string]string{"title": "Technology"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/categories/%d", id), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}
	if decodeBody(t, rec)["title"] != "Technology" {
		t.Errorf("get after update = %s", rec.Body.String())
	}

	rec = f.do(t, http.MethodDelete, fmt.Sprintf("/api/categories/%d", id), adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodDelete, fmt.Sprintf("/api/categories/%d", id), adminToken, nil); rec.Code != http.StatusNotFound {
		t.Errorf("delete again: status = %d, want 404", rec.Code)
	}
}

func TestMe(t *testing.T) {
	f := newAPIFixture(t)
	token := f.userToken(t, "alice")

	rec := f.do(t, http.MethodGet, "/api/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["username"] != "alice" || body["role"] != "user" {
		t.Errorf("body = %s", rec.Body.String())
	}
	if _, ok := body["token"]; ok {
		t.Error("me response echoes a token")
	}

	if rec := f.do(t, http.MethodGet, "/api/auth/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}
}

func TestUploadWithoutStorage(t *testing.T) {
	f := newAPIFixture(t)
	adminToken, _ := f.adminToken(t)

	rec := f.do(t, http.MethodPost, "/api/upload", adminToken, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if decodeBody(t, rec)["message"] != "Storage service not configured" {
		t.Errorf("body = %s", rec.Body.String())
	}
}
