package api

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/RachanaRJadav/arecanut-ai/internal/config"
	"github.com/RachanaRJadav/arecanut-ai/internal/db"
	"github.com/RachanaRJadav/arecanut-ai/internal/grading"

	"github.com/gin-gonic/gin"
)

func setupTestServer(t *testing.T) (*gin.Engine, *db.MemoryRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.App.Name = "arecanut-grading"
	cfg.App.Version = "test"
	cfg.Grading.DefaultHistoryLimit = 50

	repo := db.NewMemoryRepository()
	grader := grading.NewGraderWithSource(rand.New(rand.NewSource(21)))
	svc := grading.NewService(repo, nil, nil, grader, cfg.Grading.DefaultHistoryLimit)

	engine := gin.New()
	engine.Use(RecoveryMiddleware())
	SetupRoutes(engine, NewHandler(svc, repo, cfg))

	return engine, repo
}

func analyzeRequest(t *testing.T, userID string, fileCount int) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if userID != "" {
		if err := writer.WriteField("user_id", userID); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for i := 0; i < fileCount; i++ {
		part, err := writer.CreateFormFile("files", "sample.jpg")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte{0xff, 0xd8, 0xff}); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/grading/analyze", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestHealthCheck(t *testing.T) {
	engine, _ := setupTestServer(t)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "healthy" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestAnalyzeBatch(t *testing.T) {
	engine, repo := setupTestServer(t)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, analyzeRequest(t, "u1", 3))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Fatalf("expected success, got %v", body)
	}
	if batchID, _ := body["batch_id"].(string); !strings.HasPrefix(batchID, "BATCH-") {
		t.Fatalf("unexpected batch id %v", body["batch_id"])
	}

	results, ok := body["results"].([]any)
	if !ok || len(results) != 3 {
		t.Fatalf("expected 3 results, got %v", body["results"])
	}

	summary, ok := body["summary"].(map[string]any)
	if !ok || summary["total_images"] != float64(3) {
		t.Fatalf("unexpected summary %v", body["summary"])
	}

	if repo.BatchCount() != 1 {
		t.Fatalf("expected one batch record, got %d", repo.BatchCount())
	}
}

func TestAnalyzeBatchMissingInput(t *testing.T) {
	engine, repo := setupTestServer(t)

	// No multipart body at all.
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/grading/analyze", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing form, got %d", rec.Code)
	}

	// Form with user but no files.
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, analyzeRequest(t, "u1", 0))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero files, got %d", rec.Code)
	}

	// Form with files but no user.
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, analyzeRequest(t, "", 2))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing user, got %d", rec.Code)
	}

	if repo.BatchCount() != 0 {
		t.Fatalf("rejected submissions must not create batches, got %d", repo.BatchCount())
	}
}

func TestAnalyticsEndpoint(t *testing.T) {
	engine, _ := setupTestServer(t)

	// Missing user id.
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/grading/analytics", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	// Never-seen owner gets the zero summary, not an error.
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/grading/analytics?user_id=nobody", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	analytics, ok := body["analytics"].(map[string]any)
	if !ok || analytics["total_samples"] != float64(0) {
		t.Fatalf("expected zero analytics, got %v", body)
	}

	// After a submission the aggregates reflect it.
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, analyzeRequest(t, "u1", 4))
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze failed: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/grading/analytics?user_id=u1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body = decodeBody(t, rec)
	analytics = body["analytics"].(map[string]any)
	if analytics["total_samples"] != float64(4) {
		t.Fatalf("expected 4 samples, got %v", analytics["total_samples"])
	}
}

func TestHistoryEndpoint(t *testing.T) {
	engine, _ := setupTestServer(t)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/grading/history", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing user, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, analyzeRequest(t, "u1", 3))
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze failed: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/grading/history?user_id=u1&limit=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	results, ok := body["results"].([]any)
	if !ok || len(results) != 2 {
		t.Fatalf("expected limit of 2 respected, got %v", body["results"])
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/grading/history?user_id=u1&limit=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}
}

func TestExportEndpoint(t *testing.T) {
	engine, _ := setupTestServer(t)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/grading/export", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing user, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, analyzeRequest(t, "u1", 2))
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze failed: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/grading/export?user_id=u1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("expected workbook bytes in response")
	}
}

func TestRegisterAndLogin(t *testing.T) {
	engine, _ := setupTestServer(t)

	post := func(path, payload string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		return rec
	}

	// Missing required fields.
	if rec := post("/api/v1/auth/register", `{"email":"a@b.com"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	reg := `{"email":"grower@example.com","password":"s3cret","name":"Grower","farm_name":"Hillside","location":"Shivamogga"}`
	rec := post("/api/v1/auth/register", reg)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["user_id"] == "" {
		t.Fatalf("expected user id, got %v", body)
	}

	// Duplicate email.
	if rec := post("/api/v1/auth/register", reg); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	// Valid login.
	rec = post("/api/v1/auth/login", `{"email":"grower@example.com","password":"s3cret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	user, ok := body["user"].(map[string]any)
	if !ok || user["email"] != "grower@example.com" {
		t.Fatalf("unexpected login body %v", body)
	}
	if _, leaked := user["password"]; leaked {
		t.Fatal("login response must not carry credential material")
	}

	// Wrong password and unknown email look identical.
	if rec := post("/api/v1/auth/login", `{"email":"grower@example.com","password":"wrong"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec := post("/api/v1/auth/login", `{"email":"ghost@example.com","password":"s3cret"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
