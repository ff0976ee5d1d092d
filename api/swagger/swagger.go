package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Seasonal Allocation API",
        "description": "Allocation calendar and decision engine for seasonal application rounds",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Allocation", "description": "Allocation calendar, grid occupancy and decisions"},
        {"name": "Selection", "description": "Slot selection state machine"},
        {"name": "Reports", "description": "Asynchronous allocation results exports"}
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
                    "200": {"description": "Ready"}
                }
            }
        },
        "/application-rounds/{id}/status": {
            "get": {
                "tags": ["Allocation"],
                "summary": "Allocation run status for polling",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/application-rounds/{id}/reservation-units/{unitId}/events": {
            "get": {
                "tags": ["Allocation"],
                "summary": "Application events grouped by decision state",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "unitId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/application-rounds/{id}/reservation-units/{unitId}/grid": {
            "get": {
                "tags": ["Allocation"],
                "summary": "Weekly half-hour grid with per-slot occupancy",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "unitId", "in": "path", "required": true, "type": "integer"},
                    {"name": "activeEvent", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/selection/begin": {
            "post": {
                "tags": ["Selection"],
                "summary": "Start a fresh selection at one slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BeginSelectionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/selection/extend": {
            "post": {
                "tags": ["Selection"],
                "summary": "Grow the selection by one adjacent slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExtendSelectionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/selection/finish": {
            "post": {
                "tags": ["Selection"],
                "summary": "Freeze the selection and paint intersecting events",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FinishSelectionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/selection/range": {
            "post": {
                "tags": ["Selection"],
                "summary": "Replace the selection with a contiguous day/time range",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetRangeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/selection": {
            "delete": {
                "tags": ["Selection"],
                "summary": "Drop the selection back to idle",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClearSelectionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/allocations": {
            "post": {
                "tags": ["Allocation"],
                "summary": "Submit an accept decision for the selected slots",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AcceptAllocationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot already allocated"},
                    "412": {"description": "Precondition failed"}
                }
            }
        },
        "/allocations/decline": {
            "post": {
                "tags": ["Allocation"],
                "summary": "Decline one application event schedule",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DeclineAllocationRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/reports/allocations": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue an allocation results export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/download": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished report via signed token",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        }
    },
    "definitions": {
        "BeginSelectionRequest": {
            "type": "object",
            "properties": {
                "applicationRoundPk": {"type": "integer"},
                "reservationUnitPk": {"type": "integer"},
                "slotKey": {"type": "string"}
            },
            "required": ["applicationRoundPk", "reservationUnitPk", "slotKey"]
        },
        "ExtendSelectionRequest": {
            "type": "object",
            "properties": {
                "applicationRoundPk": {"type": "integer"},
                "reservationUnitPk": {"type": "integer"},
                "slotKey": {"type": "string"}
            },
            "required": ["applicationRoundPk", "reservationUnitPk", "slotKey"]
        },
        "FinishSelectionRequest": {
            "type": "object",
            "properties": {
                "applicationRoundPk": {"type": "integer"},
                "reservationUnitPk": {"type": "integer"}
            },
            "required": ["applicationRoundPk", "reservationUnitPk"]
        },
        "SetRangeRequest": {
            "type": "object",
            "properties": {
                "applicationRoundPk": {"type": "integer"},
                "reservationUnitPk": {"type": "integer"},
                "day": {"type": "integer"},
                "begin": {"type": "string"},
                "end": {"type": "string"}
            },
            "required": ["applicationRoundPk", "reservationUnitPk", "begin", "end"]
        },
        "ClearSelectionRequest": {
            "type": "object",
            "properties": {
                "applicationRoundPk": {"type": "integer"},
                "reservationUnitPk": {"type": "integer"}
            },
            "required": ["applicationRoundPk", "reservationUnitPk"]
        },
        "AcceptAllocationRequest": {
            "type": "object",
            "properties": {
                "applicationRoundPk": {"type": "integer"},
                "reservationUnitPk": {"type": "integer"},
                "applicationEventPk": {"type": "integer"},
                "slotKeys": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["applicationRoundPk", "reservationUnitPk", "applicationEventPk"]
        },
        "DeclineAllocationRequest": {
            "type": "object",
            "properties": {
                "applicationRoundPk": {"type": "integer"},
                "reservationUnitPk": {"type": "integer"},
                "applicationEventSchedulePk": {"type": "integer"}
            },
            "required": ["applicationRoundPk", "reservationUnitPk", "applicationEventSchedulePk"]
        },
        "CreateReportRequest": {
            "type": "object",
            "properties": {
                "applicationRoundPk": {"type": "integer"},
                "reservationUnitPk": {"type": "integer"},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            },
            "required": ["applicationRoundPk", "reservationUnitPk", "format"]
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
