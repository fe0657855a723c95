// Package docs registra la especificación OpenAPI del backend de desarrollo.
// Regenerar con: swag init -g cmd/api/main.go -o internal/docs
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
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Registrar usuario con email y contraseña",
                "parameters": [
                    {"description": "Datos de registro", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/users.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/users.authResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.DetailBody"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/respond.DetailBody"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login con email y contraseña",
                "parameters": [
                    {"description": "Credenciales", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/users.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/users.authResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/respond.DetailBody"}}
                }
            }
        },
        "/auth/google/callback": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login con id_token de Google",
                "parameters": [
                    {"description": "id_token", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/users.googleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/users.authResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/respond.DetailBody"}},
                    "501": {"description": "Not Implemented", "schema": {"$ref": "#/definitions/respond.DetailBody"}}
                }
            }
        },
        "/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Perfil del usuario autenticado con sus mascotas",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/users.profileResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/respond.DetailBody"}}
                }
            }
        },
        "/users/me/settings": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Preferencias del usuario",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/users.Settings"}}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Actualizar preferencias (parcial)",
                "parameters": [
                    {"description": "Campos a modificar", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/users.Settings"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/users.Settings"}}}
            }
        },
        "/users/me/address": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Dirección del usuario",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/users.Address"}}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Actualizar dirección (parcial)",
                "parameters": [
                    {"description": "Campos a modificar", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/users.Address"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/users.Address"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.DetailBody"}}
                }
            }
        },
        "/pets": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Listar mascotas del usuario",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/pets.PetResponse"}}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Crear mascota",
                "parameters": [
                    {"description": "Datos de la mascota", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/pets.petRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/pets.PetResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.DetailBody"}}
                }
            }
        },
        "/pets/upload-image": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Subir imagen de perfil",
                "parameters": [
                    {"type": "integer", "description": "ID de la mascota", "name": "pet_id", "in": "query", "required": true},
                    {"type": "file", "description": "Imagen", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pets.uploadImageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.DetailBody"}}
                }
            }
        },
        "/pets/{petID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Obtener mascota",
                "parameters": [{"type": "integer", "description": "ID de la mascota", "name": "petID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pets.PetResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.DetailBody"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Actualizar mascota (parcial)",
                "parameters": [
                    {"type": "integer", "description": "ID de la mascota", "name": "petID", "in": "path", "required": true},
                    {"description": "Campos a modificar", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/pets.updatePetRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pets.PetResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.DetailBody"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["pets"],
                "summary": "Borrar mascota",
                "parameters": [{"type": "integer", "description": "ID de la mascota", "name": "petID", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.DetailBody"}}
                }
            }
        },
        "/pets/{petID}/{kind}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Listar registros de historial",
                "parameters": [
                    {"type": "integer", "description": "ID de la mascota", "name": "petID", "in": "path", "required": true},
                    {"type": "string", "description": "Tipo de registro", "name": "kind", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object"}}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Crear registro de historial",
                "parameters": [
                    {"type": "integer", "description": "ID de la mascota", "name": "petID", "in": "path", "required": true},
                    {"type": "string", "description": "Tipo de registro", "name": "kind", "in": "path", "required": true},
                    {"description": "Campos del registro", "name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.DetailBody"}}
                }
            }
        },
        "/pets/{petID}/{kind}/{recordID}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Actualizar registro de historial",
                "parameters": [
                    {"type": "integer", "description": "ID de la mascota", "name": "petID", "in": "path", "required": true},
                    {"type": "string", "description": "Tipo de registro", "name": "kind", "in": "path", "required": true},
                    {"type": "integer", "description": "ID del registro", "name": "recordID", "in": "path", "required": true},
                    {"description": "Campos a modificar", "name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["records"],
                "summary": "Borrar registro de historial",
                "parameters": [
                    {"type": "integer", "description": "ID de la mascota", "name": "petID", "in": "path", "required": true},
                    {"type": "string", "description": "Tipo de registro", "name": "kind", "in": "path", "required": true},
                    {"type": "integer", "description": "ID del registro", "name": "recordID", "in": "path", "required": true}
                ],
                "responses": {"204": {"description": "No Content"}}
            }
        }
    },
    "definitions": {
        "respond.DetailBody": {
            "type": "object",
            "properties": {"detail": {"type": "string"}}
        },
        "users.registerRequest": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"}}
        },
        "users.loginRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "users.googleRequest": {
            "type": "object",
            "properties": {"id_token": {"type": "string"}}
        },
        "users.UserSummary": {
            "type": "object",
            "properties": {"id": {"type": "integer"}, "name": {"type": "string"}, "email": {"type": "string"}, "role": {"type": "string"}}
        },
        "users.authResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "user": {"$ref": "#/definitions/users.UserSummary"}
            }
        },
        "users.profileResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"},
                "pets": {"type": "array", "items": {"$ref": "#/definitions/pets.PetResponse"}}
            }
        },
        "users.Settings": {
            "type": "object",
            "properties": {
                "notifications_enabled": {"type": "boolean"},
                "privacy_level": {"type": "string"},
                "language": {"type": "string"},
                "timezone": {"type": "string"}
            }
        },
        "users.Address": {
            "type": "object",
            "properties": {
                "country": {"type": "string"},
                "city": {"type": "string"},
                "address": {"type": "string"},
                "lat": {"type": "number"},
                "lng": {"type": "number"}
            }
        },
        "pets.petRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "species": {"type": "string"},
                "breed": {"type": "string"},
                "sex": {"type": "string"},
                "birthdate": {"type": "string"},
                "weight": {"type": "number"},
                "avatar_url": {"type": "string"}
            }
        },
        "pets.updatePetRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "species": {"type": "string"},
                "breed": {"type": "string"},
                "sex": {"type": "string"},
                "birthdate": {"type": "string"},
                "weight": {"type": "number"},
                "avatar_url": {"type": "string"}
            }
        },
        "pets.PetResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "owner_id": {"type": "integer"},
                "name": {"type": "string"},
                "species": {"type": "string"},
                "breed": {"type": "string"},
                "sex": {"type": "string"},
                "birthdate": {"type": "string"},
                "weight": {"type": "number"},
                "avatar_url": {"type": "string"}
            }
        },
        "pets.uploadImageResponse": {
            "type": "object",
            "properties": {"avatar_url": {"type": "string"}}
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
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "PetVerse dev API",
	Description:      "Backend local que emula la API REST consumida por el cliente PetVerse.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
