package handlers

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/ikrishanaa/flowbit-analytics-dashboard/auth"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/httpx"
)

//go:embed openapi.yaml
var openAPIYAML []byte

var landingTmpl = template.Must(template.New("landing").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>Role: {{.Role}}</p>
<ul>
{{range .Links}}<li><a href="{{.Href}}">{{.Label}}</a></li>
{{end}}</ul>
</body>
</html>
`))

// docsTmpl renders Swagger UI over /openapi.json.
var docsTmpl = template.Must(template.New("docs").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<noscript><a href="{{.Spec}}">{{.Spec}}</a></noscript>
<script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>window.ui = SwaggerUIBundle({url: "{{.Spec}}", dom_id: "#swagger-ui"});</script>
</body>
</html>
`))

type landingLink struct {
	Href, Label string
}

// SystemHandler serves health, API description and the landing page.
type SystemHandler struct {
	ping        func(ctx context.Context) error
	openAPIJSON []byte
}

// NewSystemHandler converts the embedded YAML description to JSON once.
func NewSystemHandler(ping func(ctx context.Context) error) (*SystemHandler, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(openAPIYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi.yaml: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode openapi json: %w", err)
	}
	return &SystemHandler{ping: ping, openAPIJSON: raw}, nil
}

// GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.ping(r.Context()); err != nil {
		slog.Error("health check failed", "error", err)
		httpx.JSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true})
}

// GET /openapi.yaml
func (h *SystemHandler) OpenAPIYAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(openAPIYAML)
}

// GET /docs
func (h *SystemHandler) Docs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := map[string]string{"Title": "Flowbit Analytics API docs", "Spec": "/openapi.json"}
	if err := docsTmpl.Execute(w, data); err != nil {
		slog.Error("render docs", "error", err)
	}
}

// GET /openapi.json
func (h *SystemHandler) OpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	httpx.RawJSON(w, http.StatusOK, h.openAPIJSON)
}

// GET /
func (h *SystemHandler) Landing(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title": "Flowbit Analytics API",
		"Role":  auth.FromContext(r.Context()).Role,
		"Links": []landingLink{
			{"/health", "Health"},
			{"/docs", "API docs"},
			{"/openapi.json", "OpenAPI (JSON)"},
			{"/stats", "Stats"},
			{"/invoice-trends", "Invoice trends"},
		},
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := landingTmpl.Execute(w, data); err != nil {
		slog.Error("render landing", "error", err)
	}
}
