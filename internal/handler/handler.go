// Package handler exposes the HTTP/JSON API.
package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"mealtrack/internal/identity"
	"mealtrack/internal/meals"
	"mealtrack/internal/queue"
)

var mealUpdates = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mealtrack_meal_updates_total",
		Help: "Accepted meal flag writes by meal type.",
	},
	[]string{"meal_type"},
)

func init() {
	prometheus.MustRegister(mealUpdates)
}

// Handler wires the API routes to the identity and meals layers.
type Handler struct {
	users *identity.Repository
	meals *meals.Service
	queue queue.Queue
}

// New creates a handler. q may be nil when no worker is deployed.
func New(users *identity.Repository, svc *meals.Service, q queue.Queue) *Handler {
	return &Handler{users: users, meals: svc, queue: q}
}

// Register mounts the API under /api on r.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")
	api.GET("/users", h.listUsers)
	api.GET("/users/:id", h.getUser)
	api.POST("/users", h.createUser)
	api.GET("/meals/:userId", h.getMeals)
	api.POST("/meals", h.updateMeal)
	api.GET("/dates", h.getDates)
	api.GET("/summary/:date", h.getSummary)
}

func (h *Handler) getUser(c *gin.Context) {
	user, err := h.users.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if users == nil {
		users = []identity.User{}
	}
	c.JSON(http.StatusOK, users)
}

type createUserRequest struct {
	ID    string `json:"id" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u := identity.User{ID: req.ID, Name: req.Name}
	if req.Email != "" {
		u.Email = &req.Email
	}
	if req.Phone != "" {
		u.Phone = &req.Phone
	}
	if err := h.users.Create(c.Request.Context(), u); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": req.ID})
}

func (h *Handler) getMeals(c *gin.Context) {
	win, err := h.meals.Window(c.Request.Context(), c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, win)
}

type updateMealRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Date     string `json:"date" binding:"required"`
	MealType string `json:"mealType" binding:"required"`
	Status   *bool  `json:"status" binding:"required"`
}

func (h *Handler) updateMeal(c *gin.Context) {
	var req updateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.meals.SetFlag(c.Request.Context(), req.UserID, req.Date, req.MealType, *req.Status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mealUpdates.WithLabelValues(req.MealType).Inc()
	h.publishUpdate(c.Request.Context(), req)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// publishUpdate feeds the headcount worker. Losing an event only delays the
// summary, so failures are logged and the write still succeeds.
func (h *Handler) publishUpdate(ctx context.Context, req updateMealRequest) {
	if h.queue == nil {
		return
	}
	msg, err := queue.NewMealUpdate(queue.MealUpdate{
		UserID:   req.UserID,
		Date:     req.Date,
		MealType: req.MealType,
		Status:   *req.Status,
	})
	if err != nil {
		log.Printf("encode meal update failed: %v", err)
		return
	}
	if err := h.queue.Publish(ctx, msg); err != nil {
		log.Printf("queue publish failed: %v", err)
	}
}

func (h *Handler) getDates(c *gin.Context) {
	c.JSON(http.StatusOK, h.meals.Dates())
}

func (h *Handler) getSummary(c *gin.Context) {
	counts, err := h.meals.Summary(c.Request.Context(), c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, counts)
}
