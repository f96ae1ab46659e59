// Package docs holds the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go --parseInternal --output ./cmd/api/docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/query": {
            "post": {
                "description": "Retrieves the top_k most similar chunks and answers from them. Repeated questions are served from the answer cache.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Query"],
                "summary": "Answer a question",
                "parameters": [
                    {
                        "description": "Question and optional top_k (default 5)",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/api.QueryRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.QueryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/query/stream": {
            "post": {
                "description": "Emits one {\"type\":\"sources\"} event, then {\"type\":\"text\"} fragments as the model produces them.",
                "consumes": ["application/json"],
                "produces": ["text/event-stream"],
                "tags": ["Query"],
                "summary": "Answer a question as a server-sent event stream",
                "parameters": [
                    {
                        "description": "Question and optional top_k (default 5)",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/api.QueryRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "data: {json}", "schema": {"type": "string"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/ingest": {
            "post": {
                "description": "Queues a scrape, chunk, embed and store run over the given sources, or all of them when none are named.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Ingestion"],
                "summary": "Start an ingestion run",
                "parameters": [
                    {
                        "description": "Sources to activate and parallel scraping",
                        "name": "request",
                        "in": "body",
                        "schema": {"$ref": "#/definitions/api.IngestRequest"}
                    }
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/api.InitJobResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/status/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Ingestion"],
                "summary": "Get ingestion job status",
                "parameters": [
                    {"type": "string", "description": "Job ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.JobResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string", "example": "vector store not connected"}}
        },
        "api.QueryRequest": {
            "type": "object",
            "required": ["question"],
            "properties": {
                "question": {"type": "string"},
                "top_k": {"type": "integer", "example": 5}
            }
        },
        "api.QueryResponse": {
            "type": "object",
            "properties": {
                "answer": {"type": "string"},
                "sources": {"type": "array", "items": {"$ref": "#/definitions/document.RetrievedDocument"}}
            }
        },
        "api.IngestRequest": {
            "type": "object",
            "properties": {
                "sources": {"type": "array", "items": {"type": "string"}, "example": ["medium", "github"]},
                "parallel": {"type": "boolean"}
            }
        },
        "api.InitJobResponse": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "status_url": {"type": "string"}}
        },
        "api.JobOutgoingError": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 500},
                "message": {"type": "string"},
                "can_retry": {"type": "boolean"}
            }
        },
        "api.JobResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "status": {"type": "string", "example": "RUNNING"},
                "current_step": {"type": "string"},
                "sources": {"type": "array", "items": {"type": "string"}},
                "parallel": {"type": "boolean"},
                "report": {"$ref": "#/definitions/ingest.Report"},
                "error": {"$ref": "#/definitions/api.JobOutgoingError"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"}
            }
        },
        "ingest.Report": {
            "type": "object",
            "properties": {
                "scraped": {"type": "object", "additionalProperties": {"type": "integer"}},
                "skipped": {"type": "array", "items": {"type": "string"}},
                "failed": {"type": "array", "items": {"type": "string"}},
                "documents": {"type": "integer"},
                "chunks": {"type": "integer"},
                "points": {"type": "integer"},
                "duration": {"type": "integer"}
            }
        },
        "document.RetrievedDocument": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "content": {"type": "string"},
                "source": {"type": "string", "example": "medium"},
                "url": {"type": "string"},
                "published_date": {"type": "string"},
                "similarity": {"type": "number", "example": 0.92}
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
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Profile RAG API",
	Description:      "Answers questions grounded in scraped profile content and runs ingestion jobs.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
