package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Dermaplan Booking API",
        "description": "Clinic booking platform: public booking wizard endpoints and the admin console API.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Availability", "description": "Public slot listing"},
        {"name": "Appointments", "description": "Public booking and admin appointment management"},
        {"name": "Services", "description": "Service catalog"},
        {"name": "Staff", "description": "Staff roster"},
        {"name": "Customers", "description": "Customer directory"},
        {"name": "Settings", "description": "Business calendar configuration"},
        {"name": "Dashboard", "description": "Admin dashboard"},
        {"name": "Exports", "description": "Async CSV/PDF exports"},
        {"name": "Authentication", "description": "Admin console auth"},
        {"name": "Rollout", "description": "Legacy migration health"}
    ],
    "paths": {
        "/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "List bookable slots for a day",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "required": true, "description": "Target day (YYYY-MM-DD)"},
                    {"name": "serviceId", "in": "query", "type": "string", "required": true},
                    {"name": "staffId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Slot listing", "schema": {"$ref": "#/definitions/AvailabilityResponse"}},
                    "400": {"description": "Missing or malformed parameters", "schema": {"$ref": "#/definitions/PublicError"}},
                    "500": {"description": "Lookup failure (unknown service or unconfigured settings)", "schema": {"$ref": "#/definitions/PublicError"}}
                }
            }
        },
        "/appointments": {
            "post": {
                "tags": ["Appointments"],
                "summary": "Book an appointment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BookAppointmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/BookAppointmentResponse"}},
                    "400": {"description": "Validation failure", "schema": {"$ref": "#/definitions/PublicError"}},
                    "404": {"description": "Unknown service or staff", "schema": {"$ref": "#/definitions/PublicError"}},
                    "409": {"description": "Slot already taken", "schema": {"$ref": "#/definitions/PublicError"}}
                }
            }
        },
        "/services": {
            "get": {
                "tags": ["Services"],
                "summary": "List active services",
                "responses": {
                    "200": {"description": "Active catalog entries", "schema": {"type": "array", "items": {"$ref": "#/definitions/Service"}}}
                }
            }
        },
        "/staff": {
            "get": {
                "tags": ["Staff"],
                "summary": "List active staff",
                "responses": {
                    "200": {"description": "Active roster", "schema": {"type": "array", "items": {"$ref": "#/definitions/Staff"}}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "responses": {
                    "200": {"description": "Tokens", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/appointments": {
            "get": {
                "tags": ["Appointments"],
                "summary": "List appointments",
                "parameters": [
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Paginated listing", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/appointments/{id}/status": {
            "patch": {
                "tags": ["Appointments"],
                "summary": "Update appointment status",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Updated appointment", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Illegal transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/settings": {
            "get": {
                "tags": ["Settings"],
                "summary": "Get business settings",
                "responses": {
                    "200": {"description": "Settings", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Settings"],
                "summary": "Update business settings",
                "responses": {
                    "200": {"description": "Updated settings", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid opening hours or rules", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Admin dashboard summary",
                "responses": {
                    "200": {"description": "Summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Enqueue an export job",
                "responses": {
                    "202": {"description": "Job accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/exports/status/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Job progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/rollout/health": {
            "get": {
                "tags": ["Rollout"],
                "summary": "Probe both booking backends",
                "responses": {
                    "200": {"description": "Health comparison"},
                    "503": {"description": "This backend unreachable"}
                }
            }
        }
    },
    "definitions": {
        "SlotView": {
            "type": "object",
            "properties": {
                "start": {"type": "string", "format": "date-time"},
                "end": {"type": "string", "format": "date-time"},
                "available": {"type": "boolean"}
            }
        },
        "AvailabilityResponse": {
            "type": "object",
            "properties": {
                "timezone": {"type": "string"},
                "slots": {"type": "array", "items": {"$ref": "#/definitions/SlotView"}}
            }
        },
        "BookAppointmentRequest": {
            "type": "object",
            "required": ["serviceId", "startAt", "customer"],
            "properties": {
                "serviceId": {"type": "string"},
                "staffId": {"type": "string"},
                "startAt": {"type": "string", "format": "date-time"},
                "customer": {
                    "type": "object",
                    "properties": {
                        "fullName": {"type": "string"},
                        "email": {"type": "string"},
                        "phone": {"type": "string"}
                    }
                }
            }
        },
        "BookAppointmentResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "appointment": {"type": "object"}
            }
        },
        "Service": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "duration_min": {"type": "integer"},
                "price_cents": {"type": "integer"},
                "active": {"type": "boolean"}
            }
        },
        "Staff": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "full_name": {"type": "string"},
                "title": {"type": "string"},
                "active": {"type": "boolean"}
            }
        },
        "PublicError": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
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
