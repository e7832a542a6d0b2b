package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medscan/medscan-golang/internal/auth"
	"github.com/medscan/medscan-golang/internal/handlers"
	"github.com/medscan/medscan-golang/internal/middleware"
)

// CORSMiddleware allows the local frontend to call the API with its JWT.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "http://localhost:5173")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight OPTIONS requests get an empty 204.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers, tokens *auth.TokenManager) *gin.Engine {
	router := gin.Default()
	router.Use(CORSMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		// --- Auth Routes (Public) ---
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)

		// --- Public Catalog Routes ---
		api.GET("/medicines", h.ListMedicines)
		api.GET("/medicines/stats", h.MedicineStats)
		api.GET("/medicines/:id", h.GetMedicine)

		// Catalog ingestion shares the public path but needs an admin token.
		api.POST("/medicines", middleware.Auth(tokens, h.Users), middleware.AdminOnly(), h.CreateMedicine)

		// --- Protected Routes (Login Required) ---
		authed := api.Group("/")
		authed.Use(middleware.Auth(tokens, h.Users))
		{
			authed.GET("/auth/me", h.Me)

			// --- Cart Routes ---
			authed.GET("/cart", h.GetCart)
			authed.POST("/cart/add", h.AddToCart)
			authed.PUT("/cart/update", h.UpdateCartItem)
			authed.DELETE("/cart/remove/:medicineId", h.RemoveCartItem)
			authed.DELETE("/cart/clear", h.ClearCart)

			// --- Order Routes ---
			authed.POST("/orders/create", h.CreateOrder)
			authed.GET("/orders/my-orders", h.ListMyOrders)
			authed.GET("/orders/my-medicines", h.DeliveredMedicines)
			authed.GET("/orders/medicine-history/:medicineId", h.MedicineHistory)
			authed.GET("/orders/:orderId", h.GetOrder)

			// --- Notification Routes ---
			authed.GET("/notifications", h.ListNotifications)
			authed.GET("/notifications/unread-count", h.UnreadCount)
			authed.PUT("/notifications/mark-all-read", h.MarkAllNotificationsRead)
			authed.PUT("/notifications/:notificationId/read", h.MarkNotificationRead)
			authed.DELETE("/notifications/:notificationId", h.DeleteNotification)

			// --- Prescription Scan Routes ---
			authed.POST("/scan-prescription", h.ScanPrescription)
			authed.POST("/suggest-schedule", h.SuggestSchedule)

			// --- Admin-Only Order Routes ---
			admin := authed.Group("/orders/admin")
			admin.Use(middleware.AdminOnly())
			{
				admin.GET("/all", h.ListAllOrders)
				admin.PUT("/:orderId/status", h.UpdateOrderStatus)
			}
		}
	}

	return router
}
