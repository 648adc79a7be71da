package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/emi"
	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const sessionHeader = "X-Session-ID"

// Handler contains HTTP handlers
type Handler struct {
	store    *store.Store
	cart     *cart.Store
	checkout *checkout.Service
	resolver *checkout.Resolver
}

// NewHandler creates a new HTTP handler
func NewHandler(st *store.Store, cartStore *cart.Store, checkoutSvc *checkout.Service, resolver *checkout.Resolver) *Handler {
	return &Handler{
		store:    st,
		cart:     cartStore,
		checkout: checkoutSvc,
		resolver: resolver,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// The gateway redirects the buyer's browser back here.
	router.GET("/payment/return", h.paymentReturn)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.PUT("/cart/items/:id", h.setCartQuantity)
		v1.DELETE("/cart/items/:id", h.removeCartItem)
		v1.DELETE("/cart", h.clearCart)
		v1.GET("/cart/totals", h.getCartTotals)

		v1.GET("/emi-plans", h.getEMIPlans)

		v1.PUT("/session/profile", h.saveProfile)
		v1.PUT("/session/emi-selection", h.saveEMISelection)

		v1.POST("/checkout", h.initiateCheckout)
		v1.GET("/orders/:ref", h.getOrder)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "time": time.Now().Unix()})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready", "time": time.Now().Unix()})
}

// sessionID extracts the shopper's session: the header on API calls, the
// cookie on browser navigations like the gateway redirect-back.
func sessionID(c *gin.Context) string {
	if sid := c.GetHeader(sessionHeader); sid != "" {
		return sid
	}
	if sid, err := c.Cookie("session_id"); err == nil {
		return sid
	}
	return ""
}

func requireSession(c *gin.Context) (string, bool) {
	sid := sessionID(c)
	if sid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing session id"})
		return "", false
	}
	return sid, true
}

// listProducts returns the catalog
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.store.GetProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// getProduct returns one catalog product
func (h *Handler) getProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, err := h.store.GetProductByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// getCart returns the session cart
func (h *Handler) getCart(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}

	items, err := h.cart.Items(c.Request.Context(), sid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type addItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
}

// addCartItem adds one unit of a product to the cart
func (h *Handler) addCartItem(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	product, err := h.store.GetProductByID(c.Request.Context(), req.ProductID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	items, err := h.cart.AddItem(c.Request.Context(), sid, product)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// setCartQuantity sets a line's quantity; zero or less removes it
func (h *Handler) setCartQuantity(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	items, err := h.cart.SetQuantity(c.Request.Context(), sid, productID, req.Quantity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update quantity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// removeCartItem removes a product line from the cart
func (h *Handler) removeCartItem(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	items, err := h.cart.RemoveItem(c.Request.Context(), sid, productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// clearCart empties the cart
func (h *Handler) clearCart(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}

	if err := h.cart.Clear(c.Request.Context(), sid); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": []models.CartItem{}})
}

// getCartTotals returns the derived order totals for the current cart
func (h *Handler) getCartTotals(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}

	items, err := h.cart.Items(c.Request.Context(), sid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read cart"})
		return
	}
	c.JSON(http.StatusOK, cart.Totals(items))
}

// getEMIPlans returns the installment menu. The principal defaults to the
// current cart's grand total; an explicit principal query parameter overrides
// it (product-page preview before anything is in the cart). The figures are
// display-only; checkout always charges the full total.
func (h *Handler) getEMIPlans(c *gin.Context) {
	if raw := c.Query("principal"); raw != "" {
		principal, err := decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid principal"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"principal": principal,
			"plans":     emi.Plans(principal),
		})
		return
	}

	sid, ok := requireSession(c)
	if !ok {
		return
	}

	items, err := h.cart.Items(c.Request.Context(), sid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read cart"})
		return
	}

	totals := cart.Totals(items)
	c.JSON(http.StatusOK, gin.H{
		"principal": totals.GrandTotal,
		"plans":     emi.Plans(totals.GrandTotal),
	})
}

// saveProfile stores the buyer's checkout details
func (h *Handler) saveProfile(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}

	var profile models.CustomerProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.checkout.SaveProfile(c.Request.Context(), sid, &profile); err != nil {
		if errors.Is(err, checkout.ErrProfileIncomplete) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name and email are required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
		return
	}
	c.Status(http.StatusNoContent)
}

// saveEMISelection stores the buyer's installment choice (display metadata)
func (h *Handler) saveEMISelection(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}

	var sel models.EMISelection
	if err := c.ShouldBindJSON(&sel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.checkout.SaveEMISelection(c.Request.Context(), sid, &sel); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save selection"})
		return
	}
	c.Status(http.StatusNoContent)
}

// initiateCheckout assembles the signed gateway request and returns the
// auto-submit form. On validation errors the buyer is pointed back to data
// entry; on assembly errors the cart stays untouched and retry is safe.
func (h *Handler) initiateCheckout(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}

	start := time.Now()
	result, err := h.checkout.Initiate(c.Request.Context(), sid)
	util.CheckoutInitiateLatency.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
	case errors.Is(err, checkout.ErrCheckoutInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "Checkout already in progress"})
		return
	case errors.Is(err, checkout.ErrProfileIncomplete):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Customer details required", "redirect": "/checkout"})
		return
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty", "redirect": "/"})
		return
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to prepare payment", "retry": true})
		return
	}

	c.Header("X-Order-ID", result.OrderID)
	c.Data(http.StatusOK, "text/html; charset=utf-8", result.Form)
}

// paymentReturn resolves the gateway redirect-back (or a bare navigation).
func (h *Handler) paymentReturn(c *gin.Context) {
	sid := sessionID(c)

	outcome, err := h.resolver.Resolve(c.Request.Context(), sid, c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve payment outcome"})
		return
	}

	switch outcome.Kind {
	case checkout.OutcomeSuccess:
		c.JSON(http.StatusOK, gin.H{
			"status":       "success",
			"order_id":     outcome.OrderID,
			"completed_at": outcome.CompletedAt,
		})
	case checkout.OutcomeFailed:
		c.JSON(http.StatusOK, gin.H{"status": "failed", "retry": true})
	case checkout.OutcomeAwaiting:
		c.JSON(http.StatusOK, gin.H{"status": "awaiting", "order_id": outcome.OrderID})
	default:
		// Lost-context arrival: a routing problem, not a payment problem.
		c.Redirect(http.StatusSeeOther, "/")
	}
}

// getOrder returns a recorded order with its lines
func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.store.GetOrderByRef(c.Request.Context(), c.Param("ref"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	items, err := h.store.GetOrderItems(c.Request.Context(), order.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order, "items": items})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
