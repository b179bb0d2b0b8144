package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Biblioteca API",
        "description": "Administration backend for the faculty library and thesis repository",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Auth", "description": "Staff authentication"},
        {"name": "Catalogo", "description": "Books and theses"},
        {"name": "Estudiantes", "description": "Student roster"},
        {"name": "Prestamos", "description": "Loan register"},
        {"name": "Circulacion", "description": "Checkout desk sessions"},
        {"name": "Dashboard", "description": "Control panel"},
        {"name": "Historial", "description": "Audit history and restore"}
    ],
    "paths": {
        "/token": {
            "post": {
                "tags": ["Auth"],
                "summary": "Obtain a token pair",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/token/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate a refresh token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid or revoked token"}
                }
            }
        },
        "/perfil": {
            "get": {
                "tags": ["Auth"],
                "security": [{"BearerAuth": []}],
                "summary": "Current staff profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Auth"],
                "security": [{"BearerAuth": []}],
                "summary": "Update profile and optionally the password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/libros": {
            "get": {
                "tags": ["Catalogo"],
                "security": [{"BearerAuth": []}],
                "summary": "List books",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "estado", "in": "query", "type": "string"},
                    {"name": "seccion", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Catalogo"],
                "security": [{"BearerAuth": []}],
                "summary": "Register a book",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssetRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate catalog code"}
                }
            }
        },
        "/libros/{id}": {
            "get": {
                "tags": ["Catalogo"],
                "security": [{"BearerAuth": []}],
                "summary": "Fetch a book",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Catalogo"],
                "security": [{"BearerAuth": []}],
                "summary": "Update a book",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssetRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Catalogo"],
                "security": [{"BearerAuth": []}],
                "summary": "Delete a book (snapshot is kept in the history)",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/tesis": {
            "get": {
                "tags": ["Catalogo"],
                "security": [{"BearerAuth": []}],
                "summary": "List theses",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Catalogo"],
                "security": [{"BearerAuth": []}],
                "summary": "Register a thesis",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssetRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/activos": {
            "get": {
                "tags": ["Catalogo"],
                "security": [{"BearerAuth": []}],
                "summary": "Selector options for the checkout desk",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/siguiente-codigo": {
            "get": {
                "tags": ["Catalogo"],
                "security": [{"BearerAuth": []}],
                "summary": "Suggest the next free catalog code for a section",
                "parameters": [{"name": "seccion", "in": "query", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/secciones-disponibles": {
            "get": {
                "tags": ["Catalogo"],
                "security": [{"BearerAuth": []}],
                "summary": "Shelf sections currently in use",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/estudiantes": {
            "get": {
                "tags": ["Estudiantes"],
                "security": [{"BearerAuth": []}],
                "summary": "List students with active loan counts",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Estudiantes"],
                "security": [{"BearerAuth": []}],
                "summary": "Register a student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate CI"}
                }
            }
        },
        "/estudiantes/{id}": {
            "put": {
                "tags": ["Estudiantes"],
                "security": [{"BearerAuth": []}],
                "summary": "Update a student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Estudiantes"],
                "security": [{"BearerAuth": []}],
                "summary": "Delete a student without active loans",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "Student still has active loans"}
                }
            }
        },
        "/prestamos": {
            "get": {
                "tags": ["Prestamos"],
                "security": [{"BearerAuth": []}],
                "summary": "List loans",
                "parameters": [
                    {"name": "estado", "in": "query", "type": "string"},
                    {"name": "tipo", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Prestamos"],
                "security": [{"BearerAuth": []}],
                "summary": "Register a loan",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoanRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Item already on loan"}
                }
            }
        },
        "/prestamos/{id}/devolver": {
            "post": {
                "tags": ["Prestamos"],
                "security": [{"BearerAuth": []}],
                "summary": "Mark a loan as returned",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Loan already returned"}
                }
            }
        },
        "/prestamos/reporte": {
            "get": {
                "tags": ["Prestamos"],
                "security": [{"BearerAuth": []}],
                "summary": "Export the loan register as CSV or PDF",
                "parameters": [
                    {"name": "formato", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "estado", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/prestados-publico": {
            "get": {
                "tags": ["Prestamos"],
                "summary": "Public list of asset ids currently on loan",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/circulacion/sesiones": {
            "post": {
                "tags": ["Circulacion"],
                "security": [{"BearerAuth": []}],
                "summary": "Open a checkout desk session",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/circulacion/sesiones/{id}": {
            "get": {
                "tags": ["Circulacion"],
                "security": [{"BearerAuth": []}],
                "summary": "Fetch a session",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Session expired or unknown"}
                }
            },
            "delete": {
                "tags": ["Circulacion"],
                "security": [{"BearerAuth": []}],
                "summary": "Cancel a session",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Cancelled"}
                }
            }
        },
        "/circulacion/sesiones/{id}/items/{assetId}": {
            "post": {
                "tags": ["Circulacion"],
                "security": [{"BearerAuth": []}],
                "summary": "Toggle an asset in the session cart",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "assetId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Session no longer collecting"}
                }
            }
        },
        "/circulacion/sesiones/{id}/estudiante": {
            "put": {
                "tags": ["Circulacion"],
                "security": [{"BearerAuth": []}],
                "summary": "Set the borrower CI and name",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SessionStudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/circulacion/sesiones/{id}/tipo": {
            "put": {
                "tags": ["Circulacion"],
                "security": [{"BearerAuth": []}],
                "summary": "Set the loan type for the session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SessionTypeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Theses cannot leave the building"}
                }
            }
        },
        "/circulacion/sesiones/{id}/confirmar": {
            "post": {
                "tags": ["Circulacion"],
                "security": [{"BearerAuth": []}],
                "summary": "Submit the session, one loan per cart item",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SessionConfirmRequest"}}
                ],
                "responses": {
                    "200": {"description": "Settled with per-item outcomes", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Guard failed, session still collecting"}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "security": [{"BearerAuth": []}],
                "summary": "Aggregate control panel statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/historial": {
            "get": {
                "tags": ["Historial"],
                "security": [{"BearerAuth": []}],
                "summary": "List audit entries",
                "parameters": [
                    {"name": "modelo", "in": "query", "type": "string"},
                    {"name": "accion", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "desde", "in": "query", "type": "string"},
                    {"name": "hasta", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/restaurar/{modelo}/{historyId}": {
            "post": {
                "tags": ["Historial"],
                "security": [{"BearerAuth": []}],
                "summary": "Restore an asset from an audit snapshot",
                "parameters": [
                    {"name": "modelo", "in": "path", "required": true, "type": "string"},
                    {"name": "historyId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RefreshRequest": {
            "type": "object",
            "required": ["refresh"],
            "properties": {
                "refresh": {"type": "string"}
            }
        },
        "UpdateProfileRequest": {
            "type": "object",
            "required": ["full_name"],
            "properties": {
                "full_name": {"type": "string"},
                "old_password": {"type": "string"},
                "new_password": {"type": "string"}
            }
        },
        "AssetRequest": {
            "type": "object",
            "required": ["codigo_nuevo", "titulo"],
            "properties": {
                "codigo_nuevo": {"type": "string"},
                "codigo_antiguo": {"type": "string"},
                "titulo": {"type": "string"},
                "autor": {"type": "string"},
                "anio": {"type": "integer"},
                "facultad": {"type": "string"},
                "estado": {"type": "string", "enum": ["BUENO", "REGULAR", "MALO", "EN REPARACION"]},
                "observaciones": {"type": "string"},
                "ubicacion_seccion": {"type": "string"},
                "ubicacion_repisa": {"type": "string"},
                "materia": {"type": "string"},
                "editorial": {"type": "string"},
                "edicion": {"type": "string"},
                "modalidad": {"type": "string"},
                "tutor": {"type": "string"},
                "carrera": {"type": "string"}
            }
        },
        "StudentRequest": {
            "type": "object",
            "required": ["nombre_completo", "ci"],
            "properties": {
                "nombre_completo": {"type": "string"},
                "ci": {"type": "string"},
                "carrera": {"type": "string"},
                "telefono": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "LoanRequest": {
            "type": "object",
            "required": ["activo", "tipo", "estudiante"],
            "properties": {
                "activo": {"type": "string"},
                "tipo": {"type": "string", "enum": ["SALA", "DOMICILIO"]},
                "estudiante": {"$ref": "#/definitions/StudentRef"},
                "observaciones": {"type": "string"}
            }
        },
        "StudentRef": {
            "type": "object",
            "required": ["kind"],
            "properties": {
                "kind": {"type": "string", "enum": ["EXISTING", "NEW_INLINE"]},
                "id": {"type": "string"},
                "nombre_completo": {"type": "string"},
                "ci": {"type": "string"}
            }
        },
        "SessionStudentRequest": {
            "type": "object",
            "properties": {
                "ci": {"type": "string"},
                "nombre_completo": {"type": "string"}
            }
        },
        "SessionTypeRequest": {
            "type": "object",
            "required": ["tipo"],
            "properties": {
                "tipo": {"type": "string", "enum": ["SALA", "DOMICILIO"]}
            }
        },
        "SessionConfirmRequest": {
            "type": "object",
            "required": ["confirmado"],
            "properties": {
                "confirmado": {"type": "boolean"},
                "observaciones": {"type": "string"}
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
