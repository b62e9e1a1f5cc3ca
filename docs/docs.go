// Package docs registers the OpenAPI description served at /v1/swagger.
// Regenerate with: swag init -g cmd/api/main.go
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
        "/health": {"get": {"tags": ["system"], "summary": "Health check", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}},
        "/ws": {"get": {"tags": ["realtime"], "summary": "Realtime channel", "parameters": [{"type": "string", "name": "access_token", "in": "query"}], "responses": {"101": {"description": "Switching Protocols"}, "401": {"description": "Unauthorized"}}}},
        "/swipes/job": {"post": {"security": [{"BearerAuth": []}], "tags": ["swipes"], "summary": "Swipe on a job", "responses": {"200": {"description": "OK"}, "201": {"description": "Created"}}}},
        "/swipes/applicant": {"post": {"security": [{"BearerAuth": []}], "tags": ["swipes"], "summary": "Swipe on an applicant", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/candidates/jobs/{jobId}/apply": {"post": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "Apply to a job", "parameters": [{"type": "integer", "name": "jobId", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}}}},
        "/candidates/applications": {"get": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "Get my applications", "responses": {"200": {"description": "OK"}}}},
        "/candidates/applications/views": {"get": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "Who viewed my profile", "responses": {"200": {"description": "OK"}}}},
        "/employers/jobs/{jobId}/applicants": {"get": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "Review applicants for a job", "parameters": [{"type": "integer", "name": "jobId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/employers/applications/{id}/view": {"post": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "Mark an application viewed", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/employers/applications/{id}": {"patch": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "Accept or reject an application", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/matches": {"get": {"security": [{"BearerAuth": []}], "tags": ["matches"], "summary": "List my matches", "responses": {"200": {"description": "OK"}}}},
        "/matches/export": {"get": {"security": [{"BearerAuth": []}], "tags": ["matches"], "summary": "Export matches to Excel", "responses": {"200": {"description": "OK"}}}},
        "/matches/{id}": {"get": {"security": [{"BearerAuth": []}], "tags": ["matches"], "summary": "Get a match", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/matches/{id}/chat": {"get": {"security": [{"BearerAuth": []}], "tags": ["matches"], "summary": "Open the chat for a match", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/chats": {"get": {"security": [{"BearerAuth": []}], "tags": ["chats"], "summary": "List my chats", "responses": {"200": {"description": "OK"}}}},
        "/chats/unread": {"get": {"security": [{"BearerAuth": []}], "tags": ["chats"], "summary": "Total unread messages", "responses": {"200": {"description": "OK"}}}},
        "/chats/online": {"get": {"security": [{"BearerAuth": []}], "tags": ["chats"], "summary": "Users currently online", "responses": {"200": {"description": "OK"}}}},
        "/chats/direct/{userId}": {"get": {"security": [{"BearerAuth": []}], "tags": ["chats"], "summary": "Open a direct chat", "parameters": [{"type": "string", "name": "userId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/chats/{roomId}": {"get": {"security": [{"BearerAuth": []}], "tags": ["chats"], "summary": "Get a chat room", "parameters": [{"type": "integer", "name": "roomId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/chats/{roomId}/messages": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["chats"], "summary": "Chat history", "parameters": [{"type": "integer", "name": "roomId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["chats"], "summary": "Send a message", "parameters": [{"type": "integer", "name": "roomId", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}, "429": {"description": "Too Many Requests"}}}
        },
        "/chats/{roomId}/read": {"put": {"security": [{"BearerAuth": []}], "tags": ["chats"], "summary": "Mark a chat read", "parameters": [{"type": "integer", "name": "roomId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/chats/{roomId}/unread": {"get": {"security": [{"BearerAuth": []}], "tags": ["chats"], "summary": "Unread messages in a room", "parameters": [{"type": "integer", "name": "roomId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/notifications": {"get": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "List my notifications", "parameters": [{"type": "integer", "name": "page", "in": "query"}, {"type": "integer", "name": "page_size", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/notifications/unread": {"get": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Unread notifications", "responses": {"200": {"description": "OK"}}}},
        "/notifications/read-all": {"put": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Mark every notification read", "responses": {"200": {"description": "OK"}}}},
        "/notifications/{id}/read": {"put": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Mark a notification read", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "JobSwipe Backend API",
	Description:      "Applications, matches, chat and realtime presence for JobSwipe.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
