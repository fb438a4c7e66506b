package v1

import (
	"github.com/gin-gonic/gin"

	"responses-api/internal/interfaces/httpserver/handlers"
)

func registerResponseRoutes(router gin.IRoutes, handler *handlers.ResponseHandler) {
	router.POST("/responses", handler.Create)
	router.GET("/responses/:response_id", handler.Get)
	router.DELETE("/responses/:response_id", handler.Delete)
	router.GET("/responses/:response_id/input_items", handler.ListInputItems)
}
