package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Viewer API",
        "description": "Course list with a single selection, live snapshot streams and exports.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Courses", "description": "Course list maintenance"},
        {"name": "Selection", "description": "Course shown in the details pane"},
        {"name": "Stream", "description": "Live course snapshots"},
        {"name": "Ops", "description": "Health and metrics"}
    ],
    "paths": {
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "Current course list and selection",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SnapshotEnvelope"}}
                }
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Add a course",
                "description": "Blank fields (after trimming) are ignored; meta.changed reports whether the course was added.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseInput"}}
                ],
                "responses": {
                    "201": {"description": "Added", "schema": {"$ref": "#/definitions/SnapshotEnvelope"}},
                    "200": {"description": "Ignored", "schema": {"$ref": "#/definitions/SnapshotEnvelope"}},
                    "400": {"description": "Malformed payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/export": {
            "get": {
                "tags": ["Courses"],
                "summary": "Download the course list",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Exports disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get course by id",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Courses"],
                "summary": "Update a course",
                "description": "The selection is refreshed from the list afterwards; an unknown id clears it.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SnapshotEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Delete a course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SnapshotEnvelope"}}
                }
            }
        },
        "/selection": {
            "get": {
                "tags": ["Selection"],
                "summary": "Current selection",
                "responses": {
                    "200": {"description": "OK, data is null when nothing is selected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Selection"],
                "summary": "Select a course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectCourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SnapshotEnvelope"}},
                    "400": {"description": "Missing id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Selection"],
                "summary": "Clear the selection",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SnapshotEnvelope"}}
                }
            }
        },
        "/courses/events": {
            "get": {
                "tags": ["Stream"],
                "summary": "Stream course snapshots (Server-Sent Events)",
                "produces": ["text/event-stream"],
                "responses": {
                    "200": {"description": "snapshot and heartbeat events"}
                }
            }
        },
        "/courses/ws": {
            "get": {
                "tags": ["Stream"],
                "summary": "Stream course snapshots and dispatch intents (WebSocket)",
                "description": "Client frames: {\"action\": \"add|update|delete|select|clear_selection\", \"id\": \"...\", \"course\": {...}}.",
                "responses": {
                    "101": {"description": "Switching Protocols"}
                }
            }
        }
    },
    "definitions": {
        "Course": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "department": {"type": "string"},
                "number": {"type": "string"},
                "location": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "CourseInput": {
            "type": "object",
            "properties": {
                "department": {"type": "string", "maxLength": 64},
                "number": {"type": "string", "maxLength": 32},
                "location": {"type": "string", "maxLength": 64}
            }
        },
        "SelectCourseRequest": {
            "type": "object",
            "required": ["id"],
            "properties": {
                "id": {"type": "string", "maxLength": 64}
            }
        },
        "CourseSnapshot": {
            "type": "object",
            "properties": {
                "version": {"type": "integer"},
                "courses": {"type": "array", "items": {"$ref": "#/definitions/Course"}},
                "selected": {"$ref": "#/definitions/Course"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        },
        "SnapshotEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/CourseSnapshot"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {
                    "type": "object",
                    "properties": {
                        "version": {"type": "integer"},
                        "changed": {"type": "boolean"}
                    }
                }
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
