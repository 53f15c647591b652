package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Timetable API",
        "description": "Timetable generation, validation and manual editing for school classes.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Schedule", "description": "Template and semester entries, substitutions and exports"},
        {"name": "Scheduler", "description": "Automatic weekly and semester generation"}
    ],
    "paths": {
        "/schedule": {
            "get": {
                "tags": ["Schedule"],
                "summary": "List weekly template entries",
                "parameters": [
                    {"name": "academic_period_id", "in": "query", "type": "string"},
                    {"name": "class_id", "in": "query", "type": "string"},
                    {"name": "teacher_id", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Schedule"],
                "summary": "Create a schedule entry",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleEntryRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot already booked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Hygiene rules violated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/{id}": {
            "put": {
                "tags": ["Schedule"],
                "summary": "Move or reassign a schedule entry",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleEntryRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Schedule"],
                "summary": "Delete a schedule entry",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/schedule/lesson/{id}": {
            "put": {
                "tags": ["Schedule"],
                "summary": "Change subject, teacher or room of an entry",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateLessonRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/schedule/validate": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Check a schedule entry without storing it",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleEntryRequest"}}],
                "responses": {"200": {"description": "Verdict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/schedule/substitution": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Assign a substitute teacher",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubstitutionRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/schedule/substitution/{id}": {
            "delete": {
                "tags": ["Schedule"],
                "summary": "Remove a substitution",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Cleared"}}
            }
        },
        "/schedule/semester": {
            "get": {
                "tags": ["Schedule"],
                "summary": "List generated semester lessons",
                "parameters": [
                    {"name": "academic_period_id", "in": "query", "type": "string"},
                    {"name": "class_id", "in": "query", "type": "string"},
                    {"name": "teacher_id", "in": "query", "type": "string"},
                    {"name": "week", "in": "query", "type": "integer"},
                    {"name": "from", "in": "query", "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/schedule/semester/export": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Download a class semester timetable",
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"name": "academic_period_id", "in": "query", "required": true, "type": "string"},
                    {"name": "class_id", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf", "xlsx"]}
                ],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/schedule/generate": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Generate a weekly timetable template",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateScheduleRequest"}}],
                "responses": {
                    "200": {"description": "Generation report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Class or period not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/generate-semester": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Generate a semester timetable",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateSemesterRequest"}}],
                "responses": {
                    "200": {"description": "Generation report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Class or period not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/classes/{classId}/periods/{periodId}": {
            "delete": {
                "tags": ["Scheduler"],
                "summary": "Delete all lessons of a class in a period",
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"},
                    {"name": "periodId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "Deleted count", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/schedule/standard-curriculum/{grade}": {
            "get": {
                "tags": ["Scheduler"],
                "summary": "Preview the standard curriculum for a grade",
                "parameters": [
                    {"name": "grade", "in": "path", "required": true, "type": "integer", "minimum": 1, "maximum": 11},
                    {"name": "class_id", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "CurriculumItem": {
            "type": "object",
            "required": ["subject_id", "teacher_id", "hours_per_week"],
            "properties": {
                "subject_id": {"type": "string"},
                "teacher_id": {"type": "string"},
                "room_id": {"type": "string"},
                "hours_per_week": {"type": "integer", "minimum": 1}
            }
        },
        "GenerateScheduleRequest": {
            "type": "object",
            "required": ["class_id", "academic_period_id"],
            "properties": {
                "class_id": {"type": "string"},
                "academic_period_id": {"type": "string"},
                "curriculum": {"type": "array", "items": {"$ref": "#/definitions/CurriculumItem"}},
                "clear_existing": {"type": "boolean"}
            }
        },
        "GenerateSemesterRequest": {
            "type": "object",
            "required": ["class_id", "academic_period_id"],
            "properties": {
                "class_id": {"type": "string"},
                "academic_period_id": {"type": "string"},
                "curriculum": {"type": "array", "items": {"$ref": "#/definitions/CurriculumItem"}},
                "start_date": {"type": "string", "format": "date", "example": "2024-09-02"},
                "weeks": {"type": "integer", "minimum": 1}
            }
        },
        "ScheduleEntryRequest": {
            "type": "object",
            "required": ["class_id", "academic_period_id", "subject_id", "teacher_id", "day_of_week", "lesson_number"],
            "properties": {
                "class_id": {"type": "string"},
                "academic_period_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "teacher_id": {"type": "string"},
                "room_id": {"type": "string"},
                "day_of_week": {"type": "integer", "minimum": 1, "maximum": 5},
                "lesson_number": {"type": "integer", "minimum": 1, "maximum": 7}
            }
        },
        "UpdateLessonRequest": {
            "type": "object",
            "properties": {
                "subject_id": {"type": "string"},
                "teacher_id": {"type": "string"},
                "room_id": {"type": "string"}
            }
        },
        "SubstitutionRequest": {
            "type": "object",
            "required": ["schedule_id", "substitute_teacher_id"],
            "properties": {
                "schedule_id": {"type": "string"},
                "substitute_teacher_id": {"type": "string"},
                "reason": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
