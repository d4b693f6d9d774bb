package handler

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"docvault/internal/apperr"
	"docvault/internal/auth"
	"docvault/internal/config"
	"docvault/internal/service"
)

var validate = validator.New()

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers stay
// thin: parsing and response shaping here, business rules in the service.
func RegisterRoutes(app *fiber.App, cfg *config.AppConfig, docSvc service.DocumentService, idp *auth.Client, verifier *auth.Verifier) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	// Health stays outside the session-guarded group: probes carry no cookies.
	app.Get("/api/health", HealthCheck(cfg))
	app.Get("/healthz", LivenessProbe())

	authGroup := app.Group("/auth")
	authGroup.Get("/callback", AuthCallback(idp, cfg.Identity))
	authGroup.Post("/signout", SignOut(idp, cfg.Identity.CookieName))

	api := app.Group("/api", auth.RequireSession(verifier, cfg.Identity.CookieName))
	api.Post("/upload", UploadDocument(docSvc))
	api.Get("/documents", ListDocuments(docSvc))
	api.Get("/documents/:id/content", GetDocumentContent(docSvc))
	api.Get("/documents/:id/text", GetDocumentText(docSvc))
	api.Get("/documents/:id/download", DownloadDocument(docSvc))
	api.Delete("/documents/:id", DeleteDocument(docSvc))
	api.Post("/documents/bulk-delete", BulkDeleteDocuments(docSvc))
}

// HealthCheck reports whether each dependency is configured. It deliberately
// performs no network calls: a health probe that dials every dependency turns
// a slow dependency into a dead service.
func HealthCheck(cfg *config.AppConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		services := map[string]bool{
			"database": cfg.Database.Host != "" && cfg.Database.Name != "",
			"storage":  cfg.MinIO.Endpoint != "",
			"identity": cfg.Identity.BaseURL != "" && cfg.Identity.JWTKey != "",
		}
		status := "healthy"
		code := fiber.StatusOK
		for _, ok := range services {
			if !ok {
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			}
		}
		return c.Status(code).JSON(fiber.Map{
			"status":    status,
			"services":  services,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// LivenessProbe is the bare process-alive check.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListDocuments returns the caller's documents, optionally filtered by a
// title substring via ?q=.
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return apperr.New(apperr.CodeInvalidInput, "Invalid limit").WithSeverity(apperr.SeverityLow)
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return apperr.New(apperr.CodeInvalidInput, "Invalid offset").WithSeverity(apperr.SeverityLow)
		}

		res, err := docSvc.List(c.UserContext(), auth.UserID(c), c.Query("q"), limit, offset)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// UploadDocument accepts multipart/form-data with a "file" part and a "title"
// field and returns the stored document's metadata.
func UploadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return apperr.New(apperr.CodeInvalidInput, "File is required").WithSeverity(apperr.SeverityLow)
		}

		f, err := fh.Open()
		if err != nil {
			return apperr.Wrap(apperr.CodeServerError, "Could not read uploaded file", err)
		}
		defer f.Close()

		// Browsers fall back to octet-stream for unknown files; blank it out so
		// the service classifies from content instead.
		declared := fh.Header.Get(fiber.HeaderContentType)
		if declared == "application/octet-stream" {
			declared = ""
		}

		doc, err := docSvc.Upload(c.UserContext(), service.UploadInput{
			OwnerID:      auth.UserID(c),
			Reader:       f,
			Size:         fh.Size,
			DeclaredType: declared,
			Filename:     fh.Filename,
			Title:        c.FormValue("title"),
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"document": doc})
	}
}

// GetDocumentContent returns a capped text preview for txt/md documents.
func GetDocumentContent(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := docSvc.Content(c.UserContext(), auth.UserID(c), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// GetDocumentText returns the full extracted text layer of a pdf/txt/md
// document, for copy-out and client-side processing.
func GetDocumentText(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := docSvc.Text(c.UserContext(), auth.UserID(c), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// DownloadDocument returns a time-limited signed URL instead of proxying the
// object through the API.
func DownloadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := docSvc.DownloadURL(c.UserContext(), auth.UserID(c), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// DeleteDocument removes a single owned document.
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := docSvc.Delete(c.UserContext(), auth.UserID(c), c.Params("id")); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// BulkDeleteDocuments removes a batch of owned documents. IDs the caller does
// not own are dropped silently; the response reports how many were deleted.
func BulkDeleteDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req bulkDeleteRequest
		if err := c.BodyParser(&req); err != nil {
			return apperr.New(apperr.CodeInvalidInput, "Please provide a valid list of document IDs").
				WithSeverity(apperr.SeverityLow).WithCause(err)
		}
		if err := validate.Struct(&req); err != nil {
			return apperr.New(apperr.CodeInvalidInput, "Please provide a valid list of document IDs").
				WithSeverity(apperr.SeverityLow).WithCause(err)
		}

		deleted, err := docSvc.BulkDelete(c.UserContext(), auth.UserID(c), req.IDs)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "deleted": deleted})
	}
}

// AuthCallback completes the OAuth flow: it exchanges the authorization code
// for a session token, stores it in the session cookie and redirects back to
// the application. Provider-reported failures redirect with an auth_error
// query parameter instead of rendering an API error.
func AuthCallback(idp *auth.Client, cfg config.IdentityConfig) fiber.Handler {
	// Only same-site relative paths are honored as post-login targets.
	redirectTarget := func(c *fiber.Ctx) string {
		next := c.Query("next")
		if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
			return next
		}
		return cfg.RedirectURL
	}
	redirectWithError := func(c *fiber.Ctx, reason string) error {
		target := redirectTarget(c)
		if strings.Contains(target, "?") {
			target += "&auth_error=" + url.QueryEscape(reason)
		} else {
			target += "?auth_error=" + url.QueryEscape(reason)
		}
		return c.Redirect(target, fiber.StatusFound)
	}

	return func(c *fiber.Ctx) error {
		if reason := c.Query("error"); reason != "" {
			return redirectWithError(c, reason)
		}
		code := c.Query("code")
		if code == "" {
			return redirectWithError(c, "missing_code")
		}

		tok, err := idp.ExchangeCode(c.UserContext(), code)
		if err != nil {
			return redirectWithError(c, "exchange_failed")
		}

		cookie := &fiber.Cookie{
			Name:     cfg.CookieName,
			Value:    tok.AccessToken,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		}
		if tok.ExpiresIn > 0 {
			cookie.Expires = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
		}
		c.Cookie(cookie)

		return c.Redirect(redirectTarget(c), fiber.StatusFound)
	}
}

// SignOut revokes the session at the provider when possible and always clears
// the local cookie. It never fails the request over a provider error: the
// caller ends up signed out locally either way.
func SignOut(idp *auth.Client, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cookieName)
		if token == "" {
			if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			}
		}
		if token != "" {
			_ = idp.SignOut(c.UserContext(), token)
		}

		c.Cookie(&fiber.Cookie{
			Name:     cookieName,
			Value:    "",
			Path:     "/",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.JSON(fiber.Map{"success": true})
	}
}
