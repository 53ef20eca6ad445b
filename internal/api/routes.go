package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the presentation API on router. An empty
// allowedOrigins list allows every origin.
func SetupRoutes(router *gin.Engine, handler *Handler, allowedOrigins []string) {
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", handler.Health)

	session := handler.RequireSession()

	api := router.Group("/api")
	{
		api.POST("/auth/register", handler.Register)
		api.POST("/auth/login", handler.Login)
		api.POST("/auth/logout", handler.Logout)
		api.GET("/auth/me", session, handler.Me)

		api.GET("/listings", handler.GetListings)
		api.GET("/listings/featured", handler.GetFeaturedListings)
		api.GET("/listings/nearby", handler.GetNearbyListings)
		api.GET("/listings/geojson", handler.GetListingsGeoJSON)
		api.GET("/listings/coverage", handler.GetListingsCoverage)
		api.GET("/listings/:id", handler.GetListing)
		api.POST("/listings/refresh", handler.RefreshListings)

		api.GET("/procurement", handler.GetProcurement)
		api.POST("/procurement", handler.AddToProcurement)
		api.DELETE("/procurement/:id", handler.RemoveFromProcurement)
		api.DELETE("/procurement", handler.ClearProcurement)
		api.POST("/checkout/procurement", session, handler.CheckoutProcurement)

		api.GET("/relocation/vehicles", handler.GetVehicles)
		api.POST("/relocation/bookings", handler.BookRelocation)

		api.GET("/payment", handler.GetPayment)
		api.DELETE("/payment", handler.ClearPayment)
		api.GET("/payment/methods", handler.GetPaymentMethods)
		api.POST("/payment/mobile-money", session, handler.PayMobileMoney)
		api.POST("/payment/reset", handler.ResetPayment)

		api.GET("/chat/messages", handler.GetChatMessages)
		api.POST("/chat/messages", handler.SendChatMessage)
		api.DELETE("/chat/messages", handler.ClearChat)
		api.DELETE("/chat/messages/:id", handler.DeleteChatMessage)
		api.PUT("/chat/messages/:id", handler.EditChatMessage)
		api.POST("/chat/messages/:id/edit", handler.StartEditing)
		api.PATCH("/chat/messages/:id/edit", handler.StageEdit)
		api.POST("/chat/messages/:id/edit/commit", handler.CommitEdit)
		api.DELETE("/chat/messages/:id/edit", handler.CancelEditing)
		api.GET("/chat/selection", handler.GetChatSelection)
		api.POST("/chat/selection/delete", handler.DeleteSelectedChatMessages)
		api.POST("/chat/selection/:id", handler.ToggleChatSelection)
		api.DELETE("/chat/selection", handler.ClearChatSelection)
	}
}
