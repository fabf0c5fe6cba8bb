// Package docs is generated by swaggo/swag from the handler annotations.
// Regenerate with: swag init -g cmd/catalog/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List products",
                "parameters": [
                    {"enum": ["wireless", "gaming", "anc"], "type": "string", "name": "type", "in": "query"},
                    {"type": "string", "name": "category", "in": "query"},
                    {"type": "string", "name": "brand", "in": "query"},
                    {"type": "boolean", "name": "featured", "in": "query"},
                    {"type": "string", "name": "slug", "in": "query"},
                    {"type": "integer", "name": "min_price", "in": "query"},
                    {"type": "integer", "name": "max_price", "in": "query"},
                    {"enum": ["newest", "price-asc", "price-desc", "popularity", "discount-desc"], "type": "string", "name": "sort", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpapi.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpapi.Envelope"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Create a product",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/httpapi.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpapi.Envelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/httpapi.Envelope"}}
                }
            }
        },
        "/products/{key}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Get a product by id or slug",
                "parameters": [{"type": "string", "name": "key", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpapi.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpapi.Envelope"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Update a product",
                "parameters": [{"type": "string", "name": "key", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpapi.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpapi.Envelope"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Delete a product",
                "parameters": [{"type": "string", "name": "key", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpapi.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpapi.Envelope"}}
                }
            }
        },
        "/products/generate-seo": {
            "post": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Regenerate SEO for one product or every product missing it",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httpapi.Envelope"}}}
            }
        },
        "/products/regenerate-slugs": {
            "post": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Recompute every product slug",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httpapi.Envelope"}}}
            }
        },
        "/categories": {
            "get": {
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "List categories",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httpapi.Envelope"}}}
            }
        },
        "/ai/generate-seo": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ai"],
                "summary": "Generate an SEO bundle for a draft product",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/ai/generate-description": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ai"],
                "summary": "Generate a product description",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/orders": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List orders",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httpapi.Envelope"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Place an order",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/httpapi.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpapi.Envelope"}}
                }
            }
        },
        "/orders/track": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Track an order by id and/or email",
                "parameters": [
                    {"type": "string", "name": "order_id", "in": "query"},
                    {"type": "string", "name": "email", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpapi.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpapi.Envelope"}}
                }
            }
        },
        "/orders/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Get an order",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpapi.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpapi.Envelope"}}
                }
            }
        },
        "/orders/{id}/status": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Change an order status",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpapi.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpapi.Envelope"}}
                }
            }
        }
    },
    "definitions": {
        "httpapi.Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "count": {"type": "integer"},
                "fallback": {"type": "boolean"},
                "message": {"type": "string"},
                "error": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "SonicPods Catalog API",
	Description:      "Product catalog with unique slugs, SEO generation, orders and a fallback store for database outages.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
