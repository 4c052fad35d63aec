package router

import (
	"github.com/gin-gonic/gin"

	"github.com/rosterhq/roster/engine/user/uc"
)

// RegisterRoutes registers all user routes
func RegisterRoutes(apiBase *gin.RouterGroup, factory *uc.Factory) {
	handler := NewHandler(factory)

	users := apiBase.Group("/users")
	{
		users.GET("", handler.ListUsers)
		users.POST("", handler.CreateUser)
		users.GET("/:id", handler.GetUser)
		users.PUT("/:id", handler.UpdateUser)
		users.DELETE("/:id", handler.DeleteUser)
	}
}
