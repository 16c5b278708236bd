// Package docs registers the OpenAPI description served at /swagger when
// SWAGGER_ENABLED is set. Regenerate with `swag init -g internal/http/router.go`
// after changing handler annotations.
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
        "/models": {
            "get": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "List profiles",
                "operationId": "listModels",
                "parameters": [
                    {"type": "string", "enum": ["modelo", "tradutora", "massagista"], "name": "category", "in": "query"},
                    {"type": "string", "name": "location", "in": "query"},
                    {"type": "boolean", "name": "hasLocation", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "maximum": 100, "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ModelListResponse"}},
                    "304": {"description": "Not Modified"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/models/search": {
            "get": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "Search profiles",
                "operationId": "searchModels",
                "parameters": [{"type": "string", "name": "q", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ModelSearchResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/models/categories": {
            "get": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "Profiles grouped by category",
                "operationId": "listCategories",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.CategoriesResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/models/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "Get a profile",
                "operationId": "getModel",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ModelDetailResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/chat/conversations": {
            "post": {
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Start a conversation",
                "operationId": "startConversation",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.ConversationResponse"}}
                }
            }
        },
        "/chat/conversations/{id}/messages": {
            "get": {
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "List messages after a cursor",
                "operationId": "listMessages",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "since", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.MessagesResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Send a message",
                "operationId": "sendMessage",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SendMessageRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.MessagesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handlers.SendFailedResponse"}}
                }
            }
        },
        "/chat/journey": {
            "get": {
                "produces": ["text/event-stream"],
                "tags": ["chat"],
                "summary": "Stream the scripted reveal",
                "operationId": "streamJourney",
                "parameters": [{"type": "string", "name": "conversation", "in": "query"}],
                "responses": {
                    "200": {"description": "event stream"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/auth/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Create an account",
                "operationId": "signup",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SignupRequest"}}],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Open a session",
                "operationId": "login",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Close the current session",
                "operationId": "logout",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current account",
                "operationId": "me",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Rename the current account",
                "operationId": "updateMe",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UpdateMeRequest"}}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "code": {"type": "string", "example": "not_found"},
                "message": {"type": "string", "example": "Perfil não encontrado."},
                "details": {"type": "array", "items": {"$ref": "#/definitions/validation.FieldError"}}
            }
        },
        "validation.FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "reason": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "domain.Profile": {"type": "object"},
        "domain.ListMeta": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "totalPages": {"type": "integer"}
            }
        },
        "domain.ChatMessage": {"type": "object"},
        "handlers.ModelListResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/domain.Profile"}},
                "meta": {"$ref": "#/definitions/domain.ListMeta"}
            }
        },
        "handlers.ModelSearchResponse": {
            "type": "object",
            "properties": {"data": {"type": "array", "items": {"$ref": "#/definitions/domain.Profile"}}}
        },
        "handlers.CategoriesResponse": {"type": "object"},
        "handlers.ModelDetailResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/domain.Profile"},
                "whatsappLink": {"type": "string"},
                "coverPhoto": {"type": "string"}
            }
        },
        "handlers.ConversationResponse": {"type": "object", "properties": {"id": {"type": "string"}}},
        "handlers.SendMessageRequest": {"type": "object", "properties": {"message": {"type": "string"}}},
        "handlers.MessagesResponse": {
            "type": "object",
            "properties": {"messages": {"type": "array", "items": {"$ref": "#/definitions/domain.ChatMessage"}}}
        },
        "handlers.SendFailedResponse": {"type": "object"},
        "handlers.SignupRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "name": {"type": "string"}, "password": {"type": "string"}}
        },
        "handlers.LoginRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "handlers.UpdateMeRequest": {"type": "object", "properties": {"name": {"type": "string"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Brasil Beauty API",
	Description:      "Profile directory, chat widget and visitor accounts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
