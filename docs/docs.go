// Package docs registers the OpenAPI document served under /swagger.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [{"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.LoginRequest"}}],
                "responses": {
                    "200": {"description": "token", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"},
                    "502": {"description": "Bad Gateway"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log out",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/api/v1/plants": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["plants"],
                "summary": "List plants",
                "responses": {"200": {"description": "count, plants"}, "401": {"description": "Unauthorized"}, "502": {"description": "Bad Gateway"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["plants"],
                "summary": "Register plant",
                "parameters": [
                    {"type": "string", "name": "name", "in": "formData", "required": true},
                    {"type": "string", "name": "description", "in": "formData", "required": true},
                    {"enum": [1, 2, 3], "type": "integer", "description": "1 minutes, 2 hours, 3 days", "name": "interval_type", "in": "formData", "required": true},
                    {"minimum": 1, "type": "integer", "name": "interval_time", "in": "formData", "required": true},
                    {"type": "file", "name": "image", "in": "formData"}
                ],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/api/v1/plants/{id}/status": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["plants"],
                "summary": "Set plant status",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SetStatusRequest"}}
                ],
                "responses": {"200": {"description": "status, plant"}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/api/v1/plants/{id}/telemetry": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["telemetry"],
                "summary": "Plant telemetry",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"enum": [3, 5, 10, 30], "type": "integer", "name": "days", "in": "query"}
                ],
                "responses": {"200": {"description": "dashboard state"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/plants/{id}/chart": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["image/png", "image/svg+xml"],
                "tags": ["telemetry"],
                "summary": "Plant chart",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"enum": [3, 5, 10, 30], "type": "integer", "name": "days", "in": "query"},
                    {"enum": ["png", "svg"], "type": "string", "name": "format", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "no data available"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/api/v1/dashboard/ws": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["telemetry"],
                "summary": "Live dashboard (WebSocket)",
                "parameters": [
                    {"type": "string", "name": "plant_id", "in": "query"},
                    {"enum": [3, 5, 10, 30], "type": "integer", "name": "days", "in": "query"},
                    {"type": "string", "name": "access_token", "in": "query"}
                ],
                "responses": {"101": {"description": "Switching Protocols"}}
            }
        },
        "/api/v1/activity": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["activity"],
                "summary": "List activity",
                "parameters": [
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"enum": ["LOGIN", "LOGOUT", "STATUS_CHANGE", "PLANT_CREATED"], "type": "string", "name": "type", "in": "query"},
                    {"type": "string", "name": "actor", "in": "query"},
                    {"type": "boolean", "name": "mine", "in": "query"}
                ],
                "responses": {"200": {"description": "count, events"}, "400": {"description": "Bad Request"}}
            }
        }
    },
    "definitions": {
        "handlers.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "ana@example.com"},
                "password": {"type": "string", "example": "secret123"}
            }
        },
        "handlers.SetStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "inactive"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Plant Monitor API",
	Description:      "Plant list, registration and telemetry dashboard over the plant backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
