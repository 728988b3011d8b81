package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger serves a minimal OpenAPI description of the API.
// - GET /swagger/index.html -> HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json   -> machine-readable OpenAPI JSON
func RegisterSwagger(r *gin.Engine) {
	r.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	r.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>resumehub — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "resumehub", "version": "v0.1.0" },
  "paths": {
    "/api/auth/request-link": {
      "post": {
        "summary": "Request a one-time login link by email",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["email","name"],"properties":{"email":{"type":"string"},"name":{"type":"string"}}}}}},
        "responses": { "200": { "description": "link sent" }, "400": { "description": "missing fields" } }
      }
    },
    "/api/auth/verify": {
      "get": {
        "summary": "Redeem a one-time token for a session token",
        "parameters": [ { "name": "token", "in": "query", "required": true, "schema": {"type":"string"} } ],
        "responses": { "200": { "description": "session token and user" }, "400": { "description": "invalid or expired token" } }
      }
    },
    "/api/auth/me": {
      "get": { "summary": "Current authenticated user", "responses": { "200": { "description": "user" }, "401": { "description": "unauthenticated" }, "404": { "description": "account deleted" } } }
    },
    "/api/auth/logout": {
      "post": { "summary": "Revoke the current session", "responses": { "200": { "description": "logged out" } } }
    },
    "/api/resumes": {
      "post": { "summary": "Upload a resume PDF (multipart field: resume)", "responses": { "201": { "description": "created" }, "400": { "description": "invalid file" } } },
      "get": { "summary": "Admin: list all resumes (page, limit, status, search)", "responses": { "200": { "description": "paginated resumes" }, "403": { "description": "admin only" } } }
    },
    "/api/resumes/mine": {
      "get": { "summary": "List own resumes", "responses": { "200": { "description": "resumes" } } }
    },
    "/api/resumes/{id}": {
      "get": { "summary": "Resume detail (owner or admin)", "responses": { "200": { "description": "resume" }, "403": { "description": "not the owner" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Admin: delete a resume", "responses": { "200": { "description": "deleted" } } }
    },
    "/api/resumes/{id}/download": {
      "get": { "summary": "Download the stored PDF (owner or admin)", "responses": { "200": { "description": "file stream" } } }
    },
    "/api/resumes/{id}/review": {
      "put": {
        "summary": "Admin: record a review decision",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["status"],"properties":{"status":{"type":"string"},"score":{"type":"integer"},"notes":{"type":"string"},"tags":{"type":"array","items":{"type":"string"}}}}}}},
        "responses": { "200": { "description": "review saved" }, "400": { "description": "invalid status or score" } }
      }
    },
    "/api/admin/bootstrap": {
      "post": { "summary": "Create or promote an admin (disabled in production)", "responses": { "200": { "description": "admin ready" }, "403": { "description": "disabled" } } }
    },
    "/api/admin/users": {
      "get": { "summary": "Admin: list all users", "responses": { "200": { "description": "users" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
