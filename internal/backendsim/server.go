package backendsim

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/rentalwizard/internal/backend"
	"github.com/mark3labs/rentalwizard/internal/logger"
	"github.com/mark3labs/rentalwizard/internal/rental"
)

var log = logger.Named("backendsim")

// Handler serves the rental-object API over a Repository.
type Handler struct {
	repo *Repository
}

// NewRouter builds the gin engine for the simulator.
//
//	GET  /api/rental-objects          list
//	GET  /api/rental-objects/:slug    fetch by slug
//	POST /api/rental-objects          create
//	PUT  /api/rental-objects/:id      update
func NewRouter(repo *Repository) *gin.Engine {
	h := &Handler{repo: repo}

	r := gin.New()
	r.Use(gin.Recovery(), requestLog())

	api := r.Group("/api")
	{
		objects := api.Group("/rental-objects")
		objects.GET("", h.List)
		objects.GET("/:slug", h.Get)
		objects.POST("", h.Create)
		objects.PUT("/:id", h.Update)
	}
	return r
}

func (h *Handler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.repo.List()})
}

func (h *Handler) Get(c *gin.Context) {
	obj, err := h.repo.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, obj)
}

func (h *Handler) Create(c *gin.Context) {
	var dto rental.DTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, backend.APIError{Status: http.StatusBadRequest, Message: err.Error()})
		return
	}

	obj, err := h.repo.Create(c.Request.Context(), &dto)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, obj)
}

func (h *Handler) Update(c *gin.Context) {
	var dto rental.DTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, backend.APIError{Status: http.StatusBadRequest, Message: err.Error()})
		return
	}

	obj, err := h.repo.Update(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, obj)
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, backend.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, backend.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, backend.ErrInvalid):
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, backend.APIError{Status: status, Message: err.Error()})
}

func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Info("%s %s -> %d", c.Request.Method, c.Request.URL.Path, c.Writer.Status())
	}
}
