// Package docs registers the Swagger document for the verifier API.
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
        "/leaderboard": {
            "get": {
                "description": "Creators ordered by accuracy score, then by number of verified predictions",
                "produces": ["application/json"],
                "tags": ["leaderboard"],
                "summary": "Get the creator leaderboard",
                "parameters": [
                    {"type": "integer", "description": "Maximum number of creators", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.LeaderboardEntry"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/predictions/{id}/verify": {
            "post": {
                "description": "Grade one stored prediction against market data, persist the result and refresh creator scores",
                "produces": ["application/json"],
                "tags": ["verifications"],
                "summary": "Verify a prediction",
                "parameters": [
                    {"type": "integer", "description": "Prediction ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.VerificationResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/verifications/batch": {
            "post": {
                "description": "Verify up to limit unverified predictions in creation order and refresh creator scores once",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["verifications"],
                "summary": "Run a verification batch",
                "parameters": [
                    {"description": "Batch size", "name": "batch", "in": "body", "schema": {"$ref": "#/definitions/dto.BatchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.BatchSummary"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.BatchRequest": {
            "type": "object",
            "properties": {"limit": {"type": "integer"}}
        },
        "dto.BatchSummary": {
            "type": "object",
            "properties": {
                "run_id": {"type": "string"},
                "processed": {"type": "integer"},
                "verified": {"type": "integer"},
                "pending": {"type": "integer"},
                "errors": {"type": "integer"},
                "average_score": {"type": "number"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "dto.LeaderboardEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "slug": {"type": "string"},
                "channel_url": {"type": "string"},
                "description": {"type": "string"},
                "total_predictions": {"type": "integer"},
                "accuracy_score": {"type": "number"},
                "video_count": {"type": "integer"}
            }
        },
        "dto.ScoreResult": {
            "type": "object",
            "properties": {
                "direction_correct": {"type": "boolean"},
                "direction_score": {"type": "number"},
                "target_score": {"type": "number"},
                "timing_score": {"type": "number"},
                "overall_score": {"type": "number"},
                "explanation": {"type": "string"},
                "ai_judged": {"type": "boolean"}
            }
        },
        "dto.VerificationResult": {
            "type": "object",
            "properties": {
                "prediction_id": {"type": "integer"},
                "status": {"type": "string", "enum": ["verified", "pending", "error"]},
                "message": {"type": "string"},
                "score": {"$ref": "#/definitions/dto.ScoreResult"},
                "market_outcome": {"type": "object"},
                "evidence": {"type": "object"},
                "data_source": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Finfluencer Verifier API",
	Description:      "Grades finance creators' market predictions against actual outcomes.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
