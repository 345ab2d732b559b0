package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Registrar Progression API",
        "description": "Academic progression and enrollment eligibility engine",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Eligibility", "description": "Subject availability and prerequisite checks"},
        {"name": "Enrollments", "description": "Atomic enrollment validation and commit"},
        {"name": "Lifecycle", "description": "Incomplete-grade lifecycle jobs"},
        {"name": "Audit", "description": "Audit trail access"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/students/{id}/available-subjects": {
            "get": {
                "tags": ["Eligibility"],
                "summary": "List subjects a student may enroll in",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "termId", "in": "query", "type": "string"},
                    {"name": "includeIncomplete", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Student not found"},
                    "422": {"description": "No curriculum assigned or no active term"}
                }
            }
        },
        "/students/{id}/subjects/{subjectId}/prerequisites": {
            "get": {
                "tags": ["Eligibility"],
                "summary": "Check the prerequisite standing of one subject",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "subjectId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Student or subject not found"}
                }
            }
        },
        "/students/{id}/enrollments": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student in a batch of subjects",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate enrollment or section no longer open"},
                    "422": {"description": "Unit cap exceeded or prerequisites unmet"}
                }
            }
        },
        "/lifecycle/incomplete-sweep": {
            "post": {
                "tags": ["Lifecycle"],
                "summary": "Expire overdue incomplete grades now",
                "parameters": [
                    {"name": "asOf", "in": "query", "type": "string", "format": "date-time"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/audit/{entity}/{entityId}": {
            "get": {
                "tags": ["Audit"],
                "summary": "List audit events for one entity",
                "parameters": [
                    {"name": "entity", "in": "path", "required": true, "type": "string"},
                    {"name": "entityId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SubjectSelection": {
            "type": "object",
            "required": ["subject_id", "section_id"],
            "properties": {
                "subject_id": {"type": "string"},
                "section_id": {"type": "string"}
            }
        },
        "EnrollmentRequest": {
            "type": "object",
            "properties": {
                "selections": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/SubjectSelection"}
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
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
