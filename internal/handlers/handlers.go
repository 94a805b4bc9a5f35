package handlers

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"

	"lunara/internal/models"
	"lunara/internal/services"
	"lunara/internal/view"

	"github.com/gin-gonic/gin"
)

// Handler serves the storefront API to the browser.
type Handler struct {
	sessions *SessionRegistry
	catalog  *services.Catalog
	// secureCookie marks the session cookie Secure when serving over TLS.
	secureCookie bool
}

func NewHandler(sessions *SessionRegistry, catalog *services.Catalog, secureCookie bool) *Handler {
	return &Handler{sessions: sessions, catalog: catalog, secureCookie: secureCookie}
}

// session resolves the caller's page session and refreshes its cookie.
func (h *Handler) session(c *gin.Context) *Session {
	id, _ := c.Cookie(sessionCookie)
	s := h.sessions.Get(id)
	if s.ID != id {
		log.Printf("session - Issued session ID: %s", s.ID)
	}
	h.setSessionCookie(c, s)
	return s
}

func (h *Handler) setSessionCookie(c *gin.Context, s *Session) {
	c.SetCookie(sessionCookie, s.ID, 3600*24*30, "/", "", h.secureCookie, true)
}

// rotateSession gives a freshly logged in session a new id.
func (h *Handler) rotateSession(c *gin.Context, s *Session) {
	h.setSessionCookie(c, h.sessions.Rotate(s))
}

// fail writes the JSON error reply for err.
func fail(c *gin.Context, err error) {
	se, ok := services.AsError(err)
	if !ok {
		log.Printf("fail - Unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Something went wrong. Please try again."})
		return
	}
	body := gin.H{
		"success":      false,
		"error":        se.Message,
		"notification": se.Notification(),
	}
	if se.Field != "" {
		body["field"] = se.Field
	}
	c.JSON(errorStatus(se), body)
}

func errorStatus(se *services.Error) int {
	switch se.Kind {
	case services.KindValidation:
		if errors.Is(se, services.ErrUnknownProduct) {
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	case services.KindRejected:
		return http.StatusConflict
	case services.KindTransport:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success":      false,
		"error":        msg,
		"notification": models.Notification{Message: msg, Type: models.NotifyError},
	})
}

// Catalog

func (h *Handler) ListProducts(c *gin.Context) {
	var products []models.Product
	if q := c.Query("q"); q != "" {
		products = h.catalog.Search(q)
	} else {
		products = h.catalog.ByCategory(models.Category(c.DefaultQuery("category", string(models.CategoryAll))))
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"products": view.ProductCards(products),
		"fallback": h.catalog.UsingFallback(),
	})
}

func (h *Handler) FeaturedProducts(c *gin.Context) {
	products := h.catalog.Featured(models.Category(c.DefaultQuery("category", string(models.CategoryAll))))
	c.JSON(http.StatusOK, gin.H{"success": true, "products": view.ProductCards(products)})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid product")
		return
	}
	p, ok := h.catalog.Product(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": view.NewProductCard(p)})
}

// Cart

func (h *Handler) GetCart(c *gin.Context) {
	s := h.session(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "cart": s.Cart.Current()})
}

func (h *Handler) GetCartCount(c *gin.Context) {
	s := h.session(c)
	count := s.Cart.Current().Count
	log.Printf("GetCartCount - SessionID: %s, Count: %d", s.ID, count)
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *Handler) AddToCart(c *gin.Context) {
	s := h.session(c)

	var req struct {
		ProductID int `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("AddToCart - JSON bind error: %v", err)
		badRequest(c, "Invalid request")
		return
	}

	log.Printf("AddToCart - Adding product %d to session %s", req.ProductID, s.ID)
	note, err := s.Storefront.Cart.AddToCart(req.ProductID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notification": note, "cart": s.Cart.Current()})
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	s := h.session(c)

	var req struct {
		ProductID int `json:"product_id" binding:"required"`
		Delta     int `json:"delta"`
		// Quantity is the typed value of the quantity input, a number or
		// the raw string.
		Quantity interface{} `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("UpdateCartItem - JSON bind error: %v", err)
		badRequest(c, "Invalid request")
		return
	}

	log.Printf("UpdateCartItem - SessionID: %s, ProductID: %d, Delta: %d, Quantity: %v", s.ID, req.ProductID, req.Delta, req.Quantity)
	note, err := s.Storefront.Cart.UpdateQuantity(req.ProductID, req.Delta, explicitQuantity(req.Quantity))
	if err != nil {
		fail(c, err)
		return
	}
	body := gin.H{"success": true, "cart": s.Cart.Current()}
	if !note.IsZero() {
		body["notification"] = note
	}
	c.JSON(http.StatusOK, body)
}

// explicitQuantity turns the quantity field into an explicit value, or nil
// when the field was not sent.
func explicitQuantity(v interface{}) *int {
	var n int
	switch q := v.(type) {
	case nil:
		return nil
	case float64:
		// out of range float to int conversion is implementation defined
		q = math.Max(math.MinInt32, math.Min(math.MaxInt32, q))
		n = int(q)
		if n == 0 {
			n = 1
		}
	case string:
		n = services.ParseQuantity(q)
	default:
		n = 1
	}
	return &n
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	s := h.session(c)

	var req struct {
		ProductID int `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	note := s.Storefront.Cart.RemoveFromCart(req.ProductID)
	c.JSON(http.StatusOK, gin.H{"success": true, "notification": note, "cart": s.Cart.Current()})
}

// Checkout

func (h *Handler) BeginCheckout(c *gin.Context) {
	s := h.session(c)

	result, err := s.Storefront.Checkout.Begin()
	if err != nil {
		if result.Redirect != models.PageNone {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success":      false,
				"error":        result.Notification.Message,
				"notification": result.Notification,
				"redirect":     result.Redirect,
			})
			return
		}
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"state":   result.State.String(),
		"method":  s.Storefront.Checkout.Method(),
		"summary": h.paymentSummary(s),
	})
}

func (h *Handler) SelectPaymentMethod(c *gin.Context) {
	s := h.session(c)

	var req struct {
		Method models.PaymentMethod `json:"method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Please select a payment method")
		return
	}
	if err := s.Storefront.Checkout.SelectMethod(req.Method); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "method": req.Method})
}

func (h *Handler) CloseCheckout(c *gin.Context) {
	s := h.session(c)
	s.Storefront.Checkout.Close()
	c.JSON(http.StatusOK, gin.H{"success": true, "state": s.Storefront.Checkout.State().String()})
}

func (h *Handler) CheckoutSummary(c *gin.Context) {
	s := h.session(c)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"state":   s.Storefront.Checkout.State().String(),
		"method":  s.Storefront.Checkout.Method(),
		"summary": h.paymentSummary(s),
	})
}

func (h *Handler) paymentSummary(s *Session) view.PaymentSummary {
	return view.NewPaymentSummary(s.Storefront.Checkout.Summary())
}

func (h *Handler) ProcessPayment(c *gin.Context) {
	s := h.session(c)

	var details models.PaymentDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		log.Printf("ProcessPayment - JSON bind error: %v", err)
		badRequest(c, "Invalid request")
		return
	}

	result, err := s.Storefront.Checkout.Submit(c.Request.Context(), details)
	if err != nil {
		if result.Redirect != models.PageNone {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success":      false,
				"error":        result.Notification.Message,
				"notification": result.Notification,
				"redirect":     result.Redirect,
			})
			return
		}
		fail(c, err)
		return
	}

	log.Printf("ProcessPayment - Order %s placed for session %s", result.OrderID, s.ID)
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"notification": result.Notification,
		"order_id":     result.OrderID,
		"cart":         s.Cart.Current(),
	})
}

// FormatPaymentField applies the payment form input mask to one field.
func (h *Handler) FormatPaymentField(c *gin.Context) {
	var req struct {
		Field string `json:"field" binding:"required"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	var out string
	switch req.Field {
	case "card_number":
		out = services.FormatCardNumber(req.Value)
	case "expiry":
		out = services.FormatExpiry(req.Value)
	case "cvv":
		out = services.FormatCVV(req.Value)
	default:
		badRequest(c, "Unknown field")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "value": out})
}

// Account

func (h *Handler) GetSession(c *gin.Context) {
	s := h.session(c)
	user := s.Storefront.Auth.CurrentUser()
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"user":          user,
		"account_label": view.AccountLabel(user),
		"cart_count":    s.Cart.Current().Count,
	})
}

func (h *Handler) HandleLogin(c *gin.Context) {
	s := h.session(c)

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	result, err := s.Storefront.Auth.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		fail(c, err)
		return
	}
	h.rotateSession(c, s)
	authReply(c, result)
}

func (h *Handler) HandleRegister(c *gin.Context) {
	s := h.session(c)

	var form services.RegistrationForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	result, err := s.Storefront.Auth.Register(c.Request.Context(), form, c.ClientIP())
	if err != nil {
		fail(c, err)
		return
	}
	h.rotateSession(c, s)
	authReply(c, result)
}

func (h *Handler) UserLogout(c *gin.Context) {
	s := h.session(c)
	authReply(c, s.Storefront.Auth.Logout(c.Request.Context(), c.ClientIP()))
}

func authReply(c *gin.Context, result services.AuthResult) {
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"notification":  result.Notification,
		"redirect":      result.Redirect,
		"user":          result.User,
		"account_label": view.AccountLabel(result.User),
	})
}

// Newsletter, contact, support

func (h *Handler) Subscribe(c *gin.Context) {
	s := h.session(c)

	var req models.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Please enter a valid email address")
		return
	}

	result, err := s.Storefront.Newsletter.Subscribe(c.Request.Context(), req.Email)
	if err != nil {
		fail(c, err)
		return
	}
	body := gin.H{"success": true, "notification": result.Notification}
	if result.DiscountCode != "" {
		body["discount_code"] = result.DiscountCode
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) Contact(c *gin.Context) {
	s := h.session(c)

	var msg models.ContactMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		log.Printf("Contact - JSON bind error: %v", err)
		badRequest(c, "Please fill in all fields")
		return
	}

	note, err := s.Storefront.Contact.Submit(msg, c.ClientIP())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notification": note})
}

func (h *Handler) SupportWidget(c *gin.Context) {
	s := h.session(c)
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"greeting":    services.Greeting,
		"suggestions": s.Storefront.Support.Suggestions(c.Request.Context()),
	})
}

func (h *Handler) SupportAsk(c *gin.Context) {
	s := h.session(c)

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	answer, err := s.Storefront.Support.Ask(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reply": answer.Reply, "sentiment": answer.Sentiment})
}
