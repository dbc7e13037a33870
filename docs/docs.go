// Package docs holds the OpenAPI document served by gin-swagger. It is
// maintained by hand alongside the handler annotations.
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
        "/admin/failed-deliveries": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns archived messages the email provider rejected, oldest first",
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "List undelivered contact emails",
                "parameters": [
                    {"type": "integer", "description": "Maximum items (default 50, max 500)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"allOf": [{"$ref": "#/definitions/response.Response"}, {"type": "object", "properties": {"data": {"type": "array", "items": {"$ref": "#/definitions/domain.FailedDelivery"}}}}]}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/admin/failed-deliveries/redeliver": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Sends each pending archived message once and reports the outcome",
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Resend undelivered contact emails",
                "parameters": [
                    {"type": "integer", "description": "Maximum items (default 50, max 500)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"allOf": [{"$ref": "#/definitions/response.Response"}, {"type": "object", "properties": {"data": {"$ref": "#/definitions/domain.RedeliveryReport"}}}]}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/config": {
            "get": {
                "description": "Bot-protection site key and banner display window for the contact form",
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Public client configuration",
                "responses": {
                    "200": {"description": "OK", "schema": {"allOf": [{"$ref": "#/definitions/response.Response"}, {"type": "object", "properties": {"data": {"$ref": "#/definitions/v1.PublicConfig"}}}]}}
                }
            }
        },
        "/contact": {
            "post": {
                "description": "Validates a contact submission and emails it to the agency inbox. Delivery is synchronous.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["contact"],
                "summary": "Submit Contact Form",
                "parameters": [
                    {"description": "Contact Form Data", "name": "contact", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.ContactRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"allOf": [{"$ref": "#/definitions/response.Response"}, {"type": "object", "properties": {"data": {"$ref": "#/definitions/domain.DeliveryReceipt"}}}]}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Liveness plus the status of optional dependencies",
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        }
    },
    "definitions": {
        "domain.ContactRequest": {
            "type": "object",
            "required": ["email", "message", "name", "subject"],
            "properties": {
                "email": {"type": "string"},
                "message": {"type": "string"},
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "recaptchaToken": {"type": "string"},
                "subject": {"type": "string"}
            }
        },
        "domain.DeliveryReceipt": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "provider": {"type": "string"}
            }
        },
        "domain.FailedDelivery": {
            "type": "object",
            "properties": {
                "attempts": {"type": "integer"},
                "created_at": {"type": "string"},
                "delivered_at": {"type": "string"},
                "from": {"type": "string"},
                "id": {"type": "string"},
                "last_error": {"type": "string"},
                "provider": {"type": "string"},
                "provider_message_id": {"type": "string"},
                "reply_to": {"type": "string"},
                "request_id": {"type": "string"},
                "subject": {"type": "string"},
                "to": {"type": "string"}
            }
        },
        "domain.RedeliveryReport": {
            "type": "object",
            "properties": {
                "attempted": {"type": "integer"},
                "delivered": {"type": "integer"},
                "failed": {"type": "integer"},
                "failed_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "details": {"type": "string"},
                "error": {"type": "string"},
                "request_id": {"type": "string"}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "data": {},
                "message": {"type": "string"},
                "request_id": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "v1.PublicConfig": {
            "type": "object",
            "properties": {
                "bannerDisplaySeconds": {"type": "integer"},
                "botProtection": {"type": "string"},
                "recaptchaSiteKey": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Agency Site Backend API",
	Description:      "Contact form delivery for the agency website.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
