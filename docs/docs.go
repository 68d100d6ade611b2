// Package docs holds the Swagger 2.0 document for the annotations in
// cmd/server/main.go and internal/http/handlers. The template follows the
// layout of swag init -g cmd/server/main.go -o docs; docs_test.go fails when
// a route, status code or header annotation is missing here.
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
                "description": "Returns the model catalog in display order.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Models"
                ],
                "summary": "List selectable models",
                "operationId": "getModels",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/llm.Model"
                            }
                        }
                    }
                }
            }
        },
        "/chats": {
            "get": {
                "description": "Returns the user's conversations. The main chat is always first.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Chats"
                ],
                "summary": "List conversations",
                "operationId": "getConversations",
                "parameters": [
                    {
                        "type": "integer",
                        "example": 123456789,
                        "description": "Telegram user id",
                        "name": "user_id",
                        "in": "query",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/storage.ConversationInfo"
                            }
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/chats/create": {
            "post": {
                "description": "Creates a named conversation. An empty title becomes \"New chat\".",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Chats"
                ],
                "summary": "Create a conversation",
                "operationId": "createConversation",
                "parameters": [
                    {
                        "description": "Create payload",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.CreateChatRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.CreateChatResponse"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/chats/delete": {
            "post": {
                "description": "Deletes a conversation and its messages.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Chats"
                ],
                "summary": "Delete a conversation",
                "operationId": "deleteConversation",
                "parameters": [
                    {
                        "description": "Conversation to delete",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.ConversationRef"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.SuccessResponse"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Conversation not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/chats/rename": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Chats"
                ],
                "summary": "Rename a conversation",
                "operationId": "renameConversation",
                "parameters": [
                    {
                        "description": "New title",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.RenameChatRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.SuccessResponse"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Conversation not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/history": {
            "get": {
                "description": "Returns up to 100 turns of one conversation, oldest first.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "History"
                ],
                "summary": "Conversation history",
                "operationId": "getHistory",
                "parameters": [
                    {
                        "type": "integer",
                        "example": 123456789,
                        "description": "Telegram user id",
                        "name": "user_id",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "Conversation id; omit for the main chat",
                        "name": "chat_id",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/storage.Turn"
                            }
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/history/clear": {
            "post": {
                "description": "Deletes the messages of one conversation; the conversation itself stays.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "History"
                ],
                "summary": "Clear conversation history",
                "operationId": "clearHistory",
                "parameters": [
                    {
                        "description": "Partition to clear",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.ConversationRef"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.SuccessResponse"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/chat": {
            "post": {
                "description": "Runs one conversation turn and returns the raw model answer.\nUpstream failures still answer 200 with success=false and a localized message.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Chat"
                ],
                "summary": "Ask the assistant",
                "operationId": "submitPrompt",
                "parameters": [
                    {
                        "description": "Prompt",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.ChatRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.ChatResponse"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Conversation not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "413": {
                        "description": "Prompt too long",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Unknown model",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/faq": {
            "get": {
                "description": "Without q, returns every entry for the language. With q, returns the best matches ranked by score.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "FAQ"
                ],
                "summary": "Search the FAQ",
                "operationId": "searchFAQ",
                "parameters": [
                    {
                        "type": "string",
                        "example": "how do I change the language",
                        "description": "Question to match",
                        "name": "q",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "example": "en",
                        "description": "Language code, unknown codes fall back to ru",
                        "name": "lang",
                        "in": "query"
                    },
                    {
                        "maximum": 20,
                        "minimum": 1,
                        "type": "integer",
                        "default": 3,
                        "description": "Max matches",
                        "name": "limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/faq.Match"
                            }
                        }
                    },
                    "503": {
                        "description": "FAQ disabled",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/tickets": {
            "get": {
                "description": "Returns tickets newest first.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Tickets"
                ],
                "summary": "List support tickets",
                "operationId": "listTickets",
                "parameters": [
                    {
                        "maximum": 200,
                        "minimum": 1,
                        "type": "integer",
                        "default": 50,
                        "description": "Max tickets",
                        "name": "limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/domain.Ticket"
                            }
                        }
                    },
                    "503": {
                        "description": "Support disabled",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/tickets/{id}/close": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Tickets"
                ],
                "summary": "Close a support ticket",
                "operationId": "closeTicket",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Ticket id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.SuccessResponse"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Ticket not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "domain.Ticket": {
            "type": "object",
            "properties": {
                "created_at": {
                    "type": "string"
                },
                "id": {
                    "type": "integer"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "user_id": {
                    "type": "integer"
                },
                "username": {
                    "type": "string"
                }
            }
        },
        "faq.Entry": {
            "type": "object",
            "properties": {
                "answer": {
                    "type": "string",
                    "example": "Send /lang with a language code, e.g. /lang en."
                },
                "question": {
                    "type": "string",
                    "example": "How do I change the language?"
                }
            }
        },
        "faq.Match": {
            "type": "object",
            "properties": {
                "answer": {
                    "type": "string",
                    "example": "Send /lang with a language code, e.g. /lang en."
                },
                "question": {
                    "type": "string",
                    "example": "How do I change the language?"
                },
                "score": {
                    "type": "number",
                    "example": 0.42
                }
            }
        },
        "handlers.ChatRequest": {
            "type": "object",
            "required": [
                "user_id"
            ],
            "properties": {
                "chat_id": {
                    "description": "ChatID addresses a named conversation; omit for the main chat.",
                    "type": "integer",
                    "example": 7
                },
                "model_id": {
                    "description": "ModelID selects a catalog model for this request only.",
                    "type": "string",
                    "example": "groq/compound"
                },
                "prompt": {
                    "type": "string",
                    "example": "Explain goroutines in two sentences"
                },
                "user_id": {
                    "type": "integer",
                    "example": 123456789
                }
            }
        },
        "handlers.ChatResponse": {
            "type": "object",
            "properties": {
                "model": {
                    "type": "string",
                    "example": "groq/compound"
                },
                "response": {
                    "type": "string",
                    "example": "Goroutines are lightweight threads..."
                },
                "success": {
                    "type": "boolean",
                    "example": true
                }
            }
        },
        "handlers.ConversationRef": {
            "type": "object",
            "required": [
                "user_id"
            ],
            "properties": {
                "chat_id": {
                    "type": "integer",
                    "example": 7
                },
                "user_id": {
                    "type": "integer",
                    "example": 123456789
                }
            }
        },
        "handlers.CreateChatRequest": {
            "type": "object",
            "required": [
                "user_id"
            ],
            "properties": {
                "title": {
                    "type": "string",
                    "example": "Trip to Kazan"
                },
                "user_id": {
                    "type": "integer",
                    "example": 123456789
                }
            }
        },
        "handlers.CreateChatResponse": {
            "type": "object",
            "properties": {
                "chat_id": {
                    "type": "integer",
                    "example": 7
                },
                "success": {
                    "type": "boolean",
                    "example": true
                }
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {
                    "description": "Stable, machine-readable code (see errors.go constants)",
                    "type": "string",
                    "example": "not_found"
                },
                "message": {
                    "description": "Human-readable message (safe to show to users)",
                    "type": "string",
                    "example": "conversation not found"
                },
                "request_id": {
                    "description": "Correlates server logs and client errors",
                    "type": "string",
                    "example": "123e4567-e89b-12d3-a456-426614174000"
                }
            }
        },
        "handlers.RenameChatRequest": {
            "type": "object",
            "required": [
                "chat_id",
                "title",
                "user_id"
            ],
            "properties": {
                "chat_id": {
                    "type": "integer",
                    "example": 7
                },
                "title": {
                    "type": "string",
                    "example": "Trip to Kazan, day 2"
                },
                "user_id": {
                    "type": "integer",
                    "example": 123456789
                }
            }
        },
        "handlers.SuccessResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean",
                    "example": true
                }
            }
        },
        "llm.Model": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "label": {
                    "type": "string"
                }
            }
        },
        "storage.ConversationInfo": {
            "type": "object",
            "properties": {
                "created_at": {
                    "type": "string"
                },
                "id": {
                    "type": "integer"
                },
                "is_main": {
                    "type": "boolean"
                },
                "title": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "storage.Turn": {
            "type": "object",
            "properties": {
                "content": {
                    "type": "string"
                },
                "role": {
                    "type": "string"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Assistant API",
	Description:      "Conversational assistant for PC, software and mobile OS questions.\nIdentity is the Telegram user id passed as user_id.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
