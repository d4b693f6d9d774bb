package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docvault/internal/apperr"
	"docvault/internal/auth"
	"docvault/internal/config"
	"docvault/internal/model"
	"docvault/internal/service"
	serviceMocks "docvault/internal/service/mocks"
)

const testUserID = "user-1"

// testUploadLimit mirrors the configured upload ceiling.
const testUploadLimit int64 = 10 * 1024 * 1024

// newApp builds a Fiber app with the global error handler and a stub session
// that authenticates every request as testUserID.
func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(testUploadLimit)})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.LocalUserID, testUserID)
		return c.Next()
	})
	return app
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Database: config.DatabaseConfig{Host: "localhost", Name: "docvault"},
		MinIO:    config.MinIOConfig{Endpoint: "localhost:9000"},
		Identity: config.IdentityConfig{
			BaseURL:     "https://id.example.com",
			JWTKey:      "test-secret",
			CookieName:  "dv_session",
			RedirectURL: "/",
		},
	}
}

func TestHealthCheck(t *testing.T) {
	t.Run("all dependencies configured", func(t *testing.T) {
		app := fiber.New()
		app.Get("/api/health", HealthCheck(testConfig()))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			Status    string          `json:"status"`
			Services  map[string]bool `json:"services"`
			Timestamp string          `json:"timestamp"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body.Status)
		assert.True(t, body.Services["database"])
		assert.True(t, body.Services["storage"])
		assert.True(t, body.Services["identity"])
		assert.NotEmpty(t, body.Timestamp)
	})

	t.Run("missing storage config degrades", func(t *testing.T) {
		cfg := testConfig()
		cfg.MinIO.Endpoint = ""

		app := fiber.New()
		app.Get("/api/health", HealthCheck(cfg))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		var body struct {
			Status   string          `json:"status"`
			Services map[string]bool `json:"services"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "degraded", body.Status)
		assert.False(t, body.Services["storage"])
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Get("/api/documents", ListDocuments(mockSvc))

	t.Run("success with search", func(t *testing.T) {
		expected := &service.DocumentListResult{
			Items: []model.Document{{ID: uuid.New().String(), Title: "Quarterly report"}},
			Total: 1,
		}
		mockSvc.On("List", mock.Anything, testUserID, "report", 10, 0).Return(expected, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/documents?q=report&limit=10&offset=0", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result service.DocumentListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/documents?limit=abc", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_INPUT", body.Error.Code)
	})

	t.Run("database failure", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, testUserID, "", 10, 0).
			Return(nil, apperr.Wrap(apperr.CodeDatabaseError, "Could not load documents", assert.AnError)).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/documents", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "DATABASE_ERROR", body.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func uploadBody(t *testing.T, filename, title, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if title != "" {
		require.NoError(t, writer.WriteField("title", title))
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	part.Write([]byte(content))
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestUploadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Post("/api/upload", UploadDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		body, ct := uploadBody(t, "notes.txt", "My Notes", "text/plain", "hello world")

		expected := &model.Document{ID: uuid.New().String(), Title: "My Notes"}
		mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
			return in.OwnerID == testUserID &&
				in.Filename == "notes.txt" &&
				in.Title == "My Notes" &&
				in.DeclaredType == "text/plain" &&
				in.Size == int64(len("hello world"))
		})).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var result struct {
			Document model.Document `json:"document"`
		}
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expected.ID, result.Document.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("octet-stream is blanked for sniffing", func(t *testing.T) {
		body, ct := uploadBody(t, "mystery.txt", "Mystery", "application/octet-stream", "plain text")

		mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
			return in.DeclaredType == ""
		})).Return(&model.Document{ID: uuid.New().String()}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/api/upload", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_INPUT", body.Error.Code)
	})

	t.Run("oversize rejection passes details through", func(t *testing.T) {
		body, ct := uploadBody(t, "big.pdf", "Big", "application/pdf", "pdf bytes")

		mockSvc.On("Upload", mock.Anything, mock.Anything).
			Return(nil, apperr.New(apperr.CodeFileTooLarge, "File exceeds the 10 MB limit").
				WithDetails(map[string]any{"limit_bytes": int64(10485760), "actual_bytes": int64(10485761)})).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_TOO_LARGE", res.Error.Code)
		assert.EqualValues(t, 10485760, res.Error.Details["limit_bytes"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("body limit rejection carries size details", func(t *testing.T) {
		// A request too large for Fiber's body limit never reaches the
		// handler; the global error handler still reports both sizes.
		limited := fiber.New(fiber.Config{
			ErrorHandler: ErrorHandler(testUploadLimit),
			BodyLimit:    1024,
		})
		limited.Post("/api/upload", UploadDocument(new(serviceMocks.MockDocumentService)))

		body, ct := uploadBody(t, "huge.txt", "Huge", "text/plain", strings.Repeat("x", 4096))
		sent := int64(body.Len())

		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := limited.Test(req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_TOO_LARGE", res.Error.Code)
		assert.EqualValues(t, testUploadLimit, res.Error.Details["limit_bytes"])
		assert.EqualValues(t, sent, res.Error.Details["actual_bytes"])
	})
}

func TestGetDocumentContent(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Get("/api/documents/:id/content", GetDocumentContent(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Content", mock.Anything, testUserID, id).Return(&service.ContentResult{
			Content:    "hello",
			Title:      "Notes",
			Extension:  "txt",
			Truncated:  false,
			TotalBytes: 5,
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/documents/"+id+"/content", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result service.ContentResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "hello", result.Content)
		assert.Equal(t, "txt", result.Extension)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Content", mock.Anything, testUserID, id).
			Return(nil, apperr.New(apperr.CodeNotFound, "Document not found")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/documents/"+id+"/content", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("non-previewable type", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Content", mock.Anything, testUserID, id).
			Return(nil, apperr.New(apperr.CodeInvalidInput, "Preview is only available for text and markdown files").
				WithDetails(map[string]any{"extension": "pdf"})).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/documents/"+id+"/content", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_INPUT", res.Error.Code)
		assert.Equal(t, "pdf", res.Error.Details["extension"])
		mockSvc.AssertExpectations(t)
	})
}

func TestGetDocumentText(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Get("/api/documents/:id/text", GetDocumentText(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Text", mock.Anything, testUserID, id).
			Return(&service.TextResult{Text: "# Heading", Title: "Notes", Truncated: false}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/documents/"+id+"/text", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result service.TextResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "# Heading", result.Text)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no text layer", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Text", mock.Anything, testUserID, id).
			Return(nil, apperr.New(apperr.CodeInvalidInput, "This document has no extractable text")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/documents/"+id+"/text", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDownloadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Get("/api/documents/:id/download", DownloadDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("DownloadURL", mock.Anything, testUserID, id).
			Return(&service.DownloadResult{URL: "https://store.example.com/signed", Title: "Report"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/documents/"+id+"/download", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result service.DownloadResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "https://store.example.com/signed", result.URL)
		assert.Equal(t, "Report", result.Title)
		mockSvc.AssertExpectations(t)
	})

	t.Run("foreign document", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("DownloadURL", mock.Anything, testUserID, id).
			Return(nil, apperr.New(apperr.CodeUnauthorized, "You do not have permission to download this document")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/documents/"+id+"/download", nil))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDeleteDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Delete("/api/documents/:id", DeleteDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, testUserID, id).Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/api/documents/"+id, nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]bool
		json.NewDecoder(resp.Body).Decode(&body)
		assert.True(t, body["success"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, testUserID, id).
			Return(apperr.New(apperr.CodeNotFound, "Document not found")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/api/documents/"+id, nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestBulkDeleteDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Post("/api/documents/bulk-delete", BulkDeleteDocuments(mockSvc))

	postJSON := func(payload string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/api/documents/bulk-delete", strings.NewReader(payload))
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("success", func(t *testing.T) {
		mockSvc.On("BulkDelete", mock.Anything, testUserID, []string{"a", "b"}).Return(2, nil).Once()

		resp := postJSON(`{"ids":["a","b"]}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			Success bool `json:"success"`
			Deleted int  `json:"deleted"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		assert.True(t, body.Success)
		assert.Equal(t, 2, body.Deleted)
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty id list rejected before the service", func(t *testing.T) {
		resp := postJSON(`{"ids":[]}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_INPUT", res.Error.Code)
		mockSvc.AssertNotCalled(t, "BulkDelete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp := postJSON(`not json`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("over the limit", func(t *testing.T) {
		ids := make([]string, 51)
		for i := range ids {
			ids[i] = uuid.New().String()
		}
		mockSvc.On("BulkDelete", mock.Anything, testUserID, ids).
			Return(0, apperr.New(apperr.CodeInvalidInput, "Cannot delete more than 50 documents at once").
				WithDetails(map[string]any{"max_ids": 50, "provided": 51})).Once()

		payload, _ := json.Marshal(map[string]any{"ids": ids})
		resp := postJSON(string(payload))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.EqualValues(t, 50, res.Error.Details["max_ids"])
		mockSvc.AssertExpectations(t)
	})
}

func TestAuthCallback(t *testing.T) {
	t.Run("exchanges code and sets session cookie", func(t *testing.T) {
		provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/token", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"session-token","token_type":"bearer","expires_in":3600}`))
		}))
		defer provider.Close()

		cfg := config.IdentityConfig{
			BaseURL:     provider.URL,
			CookieName:  "dv_session",
			RedirectURL: "/",
		}
		app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(testUploadLimit)})
		app.Get("/auth/callback", AuthCallback(auth.NewClient(cfg), cfg))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc", nil))

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))

		cookies := resp.Cookies()
		require.NotEmpty(t, cookies)
		assert.Equal(t, "dv_session", cookies[0].Name)
		assert.Equal(t, "session-token", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("relative next target is honored", func(t *testing.T) {
		provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"session-token"}`))
		}))
		defer provider.Close()

		cfg := config.IdentityConfig{BaseURL: provider.URL, CookieName: "dv_session", RedirectURL: "/"}
		app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(testUploadLimit)})
		app.Get("/auth/callback", AuthCallback(auth.NewClient(cfg), cfg))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&next=/documents", nil))
		assert.Equal(t, "/documents", resp.Header.Get("Location"))

		// Absolute and protocol-relative targets fall back to the default.
		resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&next=//evil.example.com", nil))
		assert.Equal(t, "/", resp.Header.Get("Location"))
	})

	t.Run("provider error redirects with auth_error", func(t *testing.T) {
		cfg := config.IdentityConfig{BaseURL: "https://id.example.com", CookieName: "dv_session", RedirectURL: "/"}
		app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(testUploadLimit)})
		app.Get("/auth/callback", AuthCallback(auth.NewClient(cfg), cfg))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/auth/callback?error=access_denied", nil))

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/?auth_error=access_denied", resp.Header.Get("Location"))
	})

	t.Run("missing code redirects with auth_error", func(t *testing.T) {
		cfg := config.IdentityConfig{BaseURL: "https://id.example.com", CookieName: "dv_session", RedirectURL: "/"}
		app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(testUploadLimit)})
		app.Get("/auth/callback", AuthCallback(auth.NewClient(cfg), cfg))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/auth/callback", nil))

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/?auth_error=missing_code", resp.Header.Get("Location"))
	})
}

func TestSignOut(t *testing.T) {
	t.Run("revokes at provider and clears cookie", func(t *testing.T) {
		var sawLogout bool
		provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sawLogout = r.URL.Path == "/logout"
			assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer provider.Close()

		cfg := config.IdentityConfig{BaseURL: provider.URL, CookieName: "dv_session"}
		app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(testUploadLimit)})
		app.Post("/auth/signout", SignOut(auth.NewClient(cfg), cfg.CookieName))

		req := httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
		req.AddCookie(&http.Cookie{Name: "dv_session", Value: "session-token"})
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, sawLogout)

		cookies := resp.Cookies()
		require.NotEmpty(t, cookies)
		assert.Equal(t, "dv_session", cookies[0].Name)
		assert.Empty(t, cookies[0].Value)
	})

	t.Run("no session still succeeds", func(t *testing.T) {
		cfg := config.IdentityConfig{BaseURL: "https://id.example.com", CookieName: "dv_session"}
		app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(testUploadLimit)})
		app.Post("/auth/signout", SignOut(auth.NewClient(cfg), cfg.CookieName))

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/auth/signout", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]bool
		json.NewDecoder(resp.Body).Decode(&body)
		assert.True(t, body["success"])
	})
}

func TestRouting(t *testing.T) {
	cfg := testConfig()
	verifier, err := auth.NewVerifier(cfg.Identity.JWTKey)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(testUploadLimit)})
	mockSvc := new(serviceMocks.MockDocumentService)
	RegisterRoutes(app, cfg, mockSvc, auth.NewClient(cfg.Identity), verifier)

	t.Run("not found route", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/healthz", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})

	t.Run("health needs no session", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("document routes require a session", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/documents", nil))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "AUTH_REQUIRED", res.Error.Code)
	})

	t.Run("upload requires a session", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/api/upload", nil))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
