package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"tableside/internal/domain"
	"tableside/internal/infra"
	"tableside/internal/repository"
	"tableside/internal/services"
)

const (
	guestScopePrefix = "guest-"
	menuCacheKey     = "menu:available"
)

type Handler struct {
	carts    *services.CartService
	watchers *services.WatcherRegistry
	menu     infra.MenuClientInterface
	orders   infra.OrderClientInterface
	rdb      *redis.Client
	menuTTL  time.Duration
	maxTable int
}

func NewHandler(carts *services.CartService, watchers *services.WatcherRegistry, menu infra.MenuClientInterface, orders infra.OrderClientInterface, rdb *redis.Client, menuTTL time.Duration, maxTable int) *Handler {
	return &Handler{
		carts:    carts,
		watchers: watchers,
		menu:     menu,
		orders:   orders,
		rdb:      rdb,
		menuTTL:  menuTTL,
		maxTable: maxTable,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/menu", h.GetMenu)
	r.POST("/sessions", h.CreateSession)

	t := r.Group("/tables/:tableId")
	t.GET("/cart", h.GetCart)
	t.POST("/cart/items", h.AddItem)
	t.PATCH("/cart/items/:index", h.UpdateQuantity)
	t.DELETE("/cart/items/:index", h.RemoveItem)
	t.POST("/checkout", h.Checkout)
	t.GET("/order", h.GetOrder)
}

// scope validates the tableId path param: a table number within the
// configured range, or a previously issued guest session id.
func (h *Handler) scope(c *gin.Context) (string, bool) {
	id := c.Param("tableId")
	if strings.HasPrefix(id, guestScopePrefix) {
		return id, true
	}
	n, err := strconv.Atoi(id)
	if err != nil || n < 1 || n > h.maxTable {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown table"})
		return "", false
	}
	return id, true
}

func (h *Handler) CreateSession(c *gin.Context) {
	c.JSON(http.StatusCreated, SessionResponse{SessionID: guestScopePrefix + uuid.NewString()})
}

// GetMenu serves the orderable menu, cache-aside through redis. Paused
// items are unavailable and excluded; ?category= filters the rest.
func (h *Handler) GetMenu(c *gin.Context) {
	ctx := c.Request.Context()
	category := c.Query("category")

	var items []infra.MenuItem
	if h.rdb != nil && category == "" {
		if b, err := h.rdb.Get(ctx, menuCacheKey).Result(); err == nil {
			if json.Unmarshal([]byte(b), &items) == nil {
				c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
				return
			}
		}
	}

	all, err := h.menu.GetMenu(ctx)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	items = make([]infra.MenuItem, 0, len(all))
	for _, it := range all {
		if it.Paused {
			continue
		}
		if category != "" && it.Category != category {
			continue
		}
		items = append(items, it)
	}

	if h.rdb != nil && category == "" {
		if data, err := json.Marshal(items); err == nil {
			h.rdb.Set(ctx, menuCacheKey, data, h.menuTTL)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}

func (h *Handler) GetCart(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	cart := h.carts.Get(c.Request.Context(), scope)
	c.JSON(http.StatusOK, CartResponse{Items: cart.Items, Total: cart.Total()})
}

func (h *Handler) AddItem(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := toCartItem(req)
	cart, err := h.carts.AddItem(c.Request.Context(), scope, item, req.Quantity)
	h.respondCart(c, cart, err)
}

func (h *Handler) UpdateQuantity(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cart, err := h.carts.UpdateQuantity(c.Request.Context(), scope, index, req.Quantity)
	h.respondCart(c, cart, err)
}

func (h *Handler) RemoveItem(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return
	}

	cart, err := h.carts.RemoveItem(c.Request.Context(), scope, index)
	h.respondCart(c, cart, err)
}

func (h *Handler) Checkout(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	order, err := h.carts.Checkout(c.Request.Context(), scope)
	if err != nil {
		if errors.Is(err, services.ErrEmptyCart) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	// Watch the placed order; cancellation rides on the server context,
	// not this request's.
	h.watchers.Watch(context.WithoutCancel(c.Request.Context()), scope)

	c.JSON(http.StatusCreated, CheckoutResponse{Success: true, OrderID: order.OrderID, Total: order.Total})
}

func (h *Handler) GetOrder(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	if w, found := h.watchers.Get(scope); found {
		c.JSON(http.StatusOK, gin.H{"success": true, "order": w.Order()})
		return
	}

	ord, err := h.orders.GetOrderByTable(c.Request.Context(), scope)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if ord == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "no order for table"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": ord})
}

func toCartItem(req AddItemRequest) domain.CartItem {
	return domain.CartItem{Name: req.Name, Price: req.Price, Quantity: req.Quantity}
}

// respondCart maps cart mutation outcomes: a capacity rejection is a
// conflict, a persist failure is a success with a warning the UI shows as
// a toast (the in-memory cart is still ahead and valid).
func (h *Handler) respondCart(c *gin.Context, cart domain.Cart, err error) {
	resp := CartResponse{Items: cart.Items, Total: cart.Total()}
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, repository.ErrCapacityExceeded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrPersistenceFailed):
		resp.Warning = "cart could not be saved; please complete your order"
		c.JSON(http.StatusOK, resp)
	default:
		resp.Warning = err.Error()
		c.JSON(http.StatusOK, resp)
	}
}
