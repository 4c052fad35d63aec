package server

import (
	"github.com/gin-gonic/gin"

	"github.com/rosterhq/roster/engine/infra/server/routes"
	userrouter "github.com/rosterhq/roster/engine/user/router"
)

// RegisterRoutes mounts the versioned API surface: the health probe and the
// user resource routes.
func RegisterRoutes(r *gin.Engine, deps *dependencies) {
	apiBase := r.Group(routes.Base())
	apiBase.GET("/health", CreateHealthHandler(deps.healthSource(), deps.startedAt))
	userrouter.RegisterRoutes(apiBase, deps.factory)
}
