package gatewaydoc

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gopkg.in/yaml.v3"
)

const (
	Title       = "Movie Booking System API Gateway"
	Description = "Aggregated API documentation for all microservices through API Gateway"
	Version     = "1.0.0"

	BearerScheme = "Bearer Authentication"
)

type Document struct {
	OpenAPI    string                `json:"openapi" yaml:"openapi"`
	Info       Info                  `json:"info" yaml:"info"`
	Security   []map[string][]string `json:"security" yaml:"security"`
	Paths      map[string]PathItem   `json:"paths" yaml:"paths"`
	Components Components            `json:"components" yaml:"components"`
}

type Info struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Version     string `json:"version" yaml:"version"`
}

type PathItem map[string]Operation

type Operation struct {
	Summary    string              `json:"summary" yaml:"summary"`
	Tags       []string            `json:"tags,omitempty" yaml:"tags,omitempty"`
	Parameters []Parameter         `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Responses  map[string]Response `json:"responses" yaml:"responses"`
}

type Parameter struct {
	Name     string `json:"name" yaml:"name"`
	In       string `json:"in" yaml:"in"`
	Required bool   `json:"required" yaml:"required"`
	Schema   Schema `json:"schema" yaml:"schema"`
}

type Schema struct {
	Type string `json:"type" yaml:"type"`
}

type Response struct {
	Description string `json:"description" yaml:"description"`
}

type Components struct {
	SecuritySchemes map[string]SecurityScheme `json:"securitySchemes" yaml:"securitySchemes"`
}

type SecurityScheme struct {
	Type         string `json:"type" yaml:"type"`
	Scheme       string `json:"scheme" yaml:"scheme"`
	BearerFormat string `json:"bearerFormat" yaml:"bearerFormat"`
	Description  string `json:"description" yaml:"description"`
}

// Paths lists where the documented endpoints are mounted.
type Paths struct {
	UI            string
	SwaggerConfig string
}

func ok(description string) map[string]Response {
	return map[string]Response{"200": {Description: description}}
}

var serviceParam = Parameter{Name: "service", In: "path", Required: true, Schema: Schema{Type: "string"}}

// Build returns the gateway document for the given mount points.
func Build(p Paths) Document {
	return Document{
		OpenAPI: "3.0.1",
		Info: Info{
			Title:       Title,
			Description: Description,
			Version:     Version,
		},
		Security: []map[string][]string{{BearerScheme: {}}},
		Paths: map[string]PathItem{
			p.UI: {"get": {
				Summary:   "Swagger UI for every service",
				Tags:      []string{"documentation"},
				Responses: ok("HTML page"),
			}},
			p.SwaggerConfig: {"get": {
				Summary:   "Swagger UI configuration listing every service document",
				Tags:      []string{"documentation"},
				Responses: ok("swagger-config document"),
			}},
			"/api-docs": {"get": {
				Summary:   "This document",
				Tags:      []string{"documentation"},
				Responses: ok("OpenAPI document (JSON)"),
			}},
			"/api-docs.yaml": {"get": {
				Summary:   "This document as YAML",
				Tags:      []string{"documentation"},
				Responses: ok("OpenAPI document (YAML)"),
			}},
			"/{service}/api-docs": {"get": {
				Summary:    "OpenAPI document of a service",
				Tags:       []string{"documentation"},
				Parameters: []Parameter{serviceParam},
				Responses: map[string]Response{
					"200": {Description: "Live or cached service document"},
					"404": {Description: "Unknown service"},
					"429": {Description: "Rate limit exceeded"},
					"503": {Description: "Service unavailable, fallback body"},
				},
			}},
			"/fallback/{service}": {
				"get":  {Summary: "Fallback answer of a service", Tags: []string{"resilience"}, Parameters: []Parameter{serviceParam}, Responses: map[string]Response{"503": {Description: "Fallback body"}}},
				"post": {Summary: "Fallback answer of a service", Tags: []string{"resilience"}, Parameters: []Parameter{serviceParam}, Responses: map[string]Response{"503": {Description: "Fallback body"}}},
			},
			"/fallback/health": {"get": {
				Summary:   "Circuit breaker overview",
				Tags:      []string{"resilience"},
				Responses: ok("UP or DEGRADED"),
			}},
			"/health": {"get": {
				Summary:   "Gateway liveness",
				Tags:      []string{"operations"},
				Responses: ok("UP"),
			}},
			"/metrics": {"get": {
				Summary:   "Prometheus metrics",
				Tags:      []string{"operations"},
				Responses: ok("Prometheus text exposition"),
			}},
			"/metrics/snapshot": {"get": {
				Summary:   "Metrics snapshot",
				Tags:      []string{"operations"},
				Responses: ok("JSON snapshot"),
			}},
		},
		Components: Components{
			SecuritySchemes: map[string]SecurityScheme{
				BearerScheme: {
					Type:         "http",
					Scheme:       "bearer",
					BearerFormat: "JWT",
					Description:  "Enter JWT token (obtainable from /api/auth/login endpoint)",
				},
			},
		},
	}
}

// Rendered holds both encodings of a Document.
type Rendered struct {
	json []byte
	yaml []byte
}

func Render(doc Document) (*Rendered, error) {
	j, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal gateway document: %w", err)
	}

	y, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal gateway document as yaml: %w", err)
	}

	return &Rendered{json: j, yaml: y}, nil
}

func (d *Rendered) JSONHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(d.json)
}

func (d *Rendered) YAMLHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(d.yaml)
}
