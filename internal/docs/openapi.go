// Package docs builds the gateway's own OpenAPI document and serves
// it alongside a Swagger UI, the same pair of endpoints the teacher's
// internal/swagger package exposes — built here with kin-openapi's
// typed openapi3.T instead of a hand-rolled map[string]any, since the
// dependency exists precisely for this.
package docs

import (
	"encoding/json"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

// services is the fixed proxy prefix set RouteDispatcher recognizes
// (spec.md §4.7); kept in sync by hand since the set is compile-time
// constant on both sides.
var services = []string{"products", "orders", "cart", "users"}

// Build constructs the gateway's OpenAPI 3 document: one path per
// proxied service prefix, plus the operator-facing admin and metrics
// endpoints. The gateway exposes no health endpoint of its own, so the
// document lists none.
func Build(publicURL string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "Ecomm API Gateway",
			Version:     "1.0",
			Description: "Reverse proxy in front of the products, orders, cart and users services, with registry-backed discovery, retrying forwarding and a JWT-protected admin surface.",
		},
		Servers: openapi3.Servers{{URL: publicURL}},
		Paths:   openapi3.NewPaths(),
	}

	for _, svc := range services {
		op := &openapi3.Operation{
			Summary: "Proxy to the " + svc + " service",
			Tags:    []string{"proxy"},
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(200, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("backend response, re-wrapped in the gateway envelope")}),
				openapi3.WithStatus(502, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("gateway error: backend unreachable or registry returned no instances")}),
				openapi3.WithStatus(504, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("retry budget exhausted")}),
			),
		}
		item := &openapi3.PathItem{
			Get: op, Post: op, Put: op, Patch: op, Delete: op,
		}
		doc.Paths.Set("/"+svc+"/{tail}", item)
	}

	doc.Paths.Set("/admin/status", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Summary:    "Current gateway lifecycle status",
			Tags:       []string{"admin"},
			Security:   &openapi3.SecurityRequirements{{"BearerAuth": {}}},
			Responses:  openapi3.NewResponses(openapi3.WithStatus(200, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("status snapshot")})),
		},
	})
	doc.Paths.Set("/admin/reregister", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Summary:   "Force the gateway to re-register with the service registry",
			Tags:      []string{"admin"},
			Security:  &openapi3.SecurityRequirements{{"BearerAuth": {}}},
			Responses: openapi3.NewResponses(openapi3.WithStatus(202, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("re-registration started")})),
		},
	})
	doc.Paths.Set("/metrics", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Summary:   "Prometheus scrape endpoint",
			Tags:      []string{"system"},
			Responses: openapi3.NewResponses(openapi3.WithStatus(200, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("metrics in text exposition format")})),
		},
	})

	doc.Components = &openapi3.Components{
		SecuritySchemes: openapi3.SecuritySchemes{
			"BearerAuth": &openapi3.SecuritySchemeRef{
				Value: openapi3.NewSecurityScheme().WithType("http").WithScheme("bearer").WithBearerFormat("JWT"),
			},
		},
	}
	return doc
}

// Handler serves the built document as JSON at /swagger.json.
func Handler(doc *openapi3.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}
}
