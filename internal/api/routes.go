package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler, allowedOrigins []string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		api.GET("/properties", handler.SearchProperties)
		api.GET("/properties/map", handler.GetPropertiesMap)
		api.GET("/properties/:id", handler.GetProperty)
		api.POST("/properties/:id/quote", handler.QuoteProperty)
		api.GET("/properties/:id/reviews", handler.GetPropertyReviews)
		api.POST("/properties/:id/reviews", handler.CreatePropertyReviews)
		api.GET("/bookings", handler.SearchBookings)
		api.POST("/bookings/import", handler.ImportBookings)
		api.POST("/listings/import", handler.ImportListings)
		api.GET("/destinations", handler.GetDestinations)
	}
}
