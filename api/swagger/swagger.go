package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Aula API",
        "description": "Attendance and grading backend for course offerings",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Attendances", "description": "Class session attendance registration and reports"},
        {"name": "Grades", "description": "Evaluation grades and course score reports"},
        {"name": "Enrollments", "description": "Block rosters"},
        {"name": "System", "description": "Runtime diagnostics"}
    ],
    "paths": {
        "/attendances/bulk": {
            "post": {
                "tags": ["Attendances"],
                "summary": "Bulk register attendance for a class session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterBulkAttendanceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Outside registration window or invalid payload"},
                    "403": {"description": "No permission over the block"},
                    "404": {"description": "Class session not found"}
                }
            }
        },
        "/blocks/{id}/attendances": {
            "get": {
                "tags": ["Attendances"],
                "summary": "Weekly attendance report for a block",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "enrollmentId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "No permission over the block"}
                }
            }
        },
        "/blocks/{id}/students": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List students enrolled in a block",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "No permission over the block"}
                }
            }
        },
        "/blocks/{id}/class-sessions": {
            "get": {
                "tags": ["Attendances"],
                "summary": "Block schedule grouped by academic week",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "No permission over the block"}
                }
            }
        },
        "/class-sessions/{id}/window": {
            "get": {
                "tags": ["Attendances"],
                "summary": "Registration window state for a class session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "timezone", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Class session not found"}
                }
            }
        },
        "/grades/bulk": {
            "post": {
                "tags": ["Grades"],
                "summary": "Bulk register grades for an evaluation",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterBulkGradesRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Caller is not a teacher"},
                    "404": {"description": "Evaluation or enrollment not found"}
                }
            }
        },
        "/enrollments/{id}/blocks/{blockId}/grades": {
            "get": {
                "tags": ["Grades"],
                "summary": "Grades of one enrollment in a block",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "blockId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/course-offerings/{id}/scores": {
            "get": {
                "tags": ["Grades"],
                "summary": "Course-wide score report with statistics",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "No assignment in the course offering"}
                }
            }
        },
        "/course-offerings/{id}/scores/export": {
            "get": {
                "tags": ["Grades"],
                "summary": "Download the course score report",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "403": {"description": "No assignment in the course offering"}
                }
            }
        },
        "/system/metrics": {
            "get": {
                "tags": ["System"],
                "summary": "Aggregated runtime metrics snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "RegisterBulkAttendanceRequest": {
            "type": "object",
            "properties": {
                "class_session_id": {"type": "string"},
                "timezone": {"type": "string"},
                "records": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/AttendanceRecordInput"}
                }
            },
            "required": ["class_session_id", "records"]
        },
        "AttendanceRecordInput": {
            "type": "object",
            "properties": {
                "enrollment_id": {"type": "string"},
                "status": {"type": "string", "enum": ["PRESENT", "ABSENT", "LATE", "JUSTIFIED"]}
            },
            "required": ["enrollment_id", "status"]
        },
        "RegisterBulkGradesRequest": {
            "type": "object",
            "properties": {
                "evaluation_id": {"type": "string"},
                "records": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/GradeRecordInput"}
                }
            },
            "required": ["evaluation_id", "records"]
        },
        "GradeRecordInput": {
            "type": "object",
            "properties": {
                "enrollment_id": {"type": "string"},
                "score": {"type": "number"}
            },
            "required": ["enrollment_id", "score"]
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
