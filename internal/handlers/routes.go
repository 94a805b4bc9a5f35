package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the storefront API under /api.
func RegisterRoutes(router *gin.Engine, h *Handler) {
	api := router.Group("/api")
	{
		api.GET("/products", h.ListProducts)
		api.GET("/featured", h.FeaturedProducts)
		api.GET("/products/:id", h.GetProduct)

		api.GET("/cart", h.GetCart)
		api.GET("/cart/count", h.GetCartCount)
		api.POST("/cart/add", h.AddToCart)
		api.POST("/cart/update", h.UpdateCartItem)
		api.POST("/cart/remove", h.RemoveFromCart)

		api.POST("/checkout", h.BeginCheckout)
		api.GET("/checkout", h.CheckoutSummary)
		api.POST("/checkout/method", h.SelectPaymentMethod)
		api.POST("/checkout/close", h.CloseCheckout)
		api.POST("/checkout/pay", h.ProcessPayment)
		api.POST("/checkout/format", h.FormatPaymentField)

		api.GET("/session", h.GetSession)
		api.POST("/login", h.HandleLogin)
		api.POST("/register", h.HandleRegister)
		api.POST("/logout", h.UserLogout)

		api.POST("/newsletter", h.Subscribe)
		api.POST("/contact", h.Contact)
		api.GET("/support", h.SupportWidget)
		api.POST("/support/ask", h.SupportAsk)
	}
}
