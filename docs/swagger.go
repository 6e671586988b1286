package docs

import "github.com/swaggo/swag"

// @title           SprintHub API
// @version         1.0
// @description     Sprint lifecycle management: creation, transitions, soft delete and restore, and task migration between sprints and the backlog.

// @host      localhost:8084
// @BasePath  /

// @securityDefinitions.apikey ServiceToken
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a service token

// @tag.name Sprints
// @tag.description Sprint CRUD and lifecycle transitions

// @tag.name Task Migration
// @tag.description Moving tasks between sprints and the backlog

// @tag.name Audit
// @tag.description Deleted and cancelled sprint listings

// Register swagger info
func SwaggerInfo() *swag.Spec {
	spec, _ := swag.GetSwagger(swag.Name).(*swag.Spec)
	return spec
}
