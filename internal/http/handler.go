package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"bi-service/internal/http/middleware"
	"bi-service/internal/repository"
	"bi-service/internal/service"
)

type Handler struct {
	query     *service.QueryService
	dashboard *service.DashboardService
	log       zerolog.Logger
}

func NewHandler(query *service.QueryService, dashboard *service.DashboardService, log zerolog.Logger) *Handler {
	return &Handler{query: query, dashboard: dashboard, log: log}
}

type queryRequest struct {
	Query string `json:"query"`
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := r.Group("/bi")
	protected.Use(authMiddleware)

	protected.GET("/dashboard", h.getDashboard)
	protected.GET("/inspections/recent", h.listRecentInspections)
	protected.POST("/query", h.postQuery)
	protected.GET("/history", h.getHistory)
	protected.DELETE("/history", h.deleteHistory)
	protected.GET("/notifications", h.getNotification)
	protected.DELETE("/notifications", h.deleteNotification)
	protected.DELETE("/cache", h.deleteCache)
}

func (h *Handler) getDashboard(c *gin.Context) {
	if _, ok := middleware.MustPrincipal(c); !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	overview, err := h.dashboard.Overview(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(overview))
}

func (h *Handler) listRecentInspections(c *gin.Context) {
	if _, ok := middleware.MustPrincipal(c); !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	limit := repository.DefaultRecentLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, errorResponse("invalid limit"))
			return
		}
		limit = parsed
	}

	records, err := h.dashboard.RecentInspections(c.Request.Context(), limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(records))
}

func (h *Handler) postQuery(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	resp, err := h.query.Ask(c.Request.Context(), principal, req.Query)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(resp))
}

func (h *Handler) getHistory(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	c.JSON(http.StatusOK, successResponse(h.query.History(principal)))
}

func (h *Handler) deleteHistory(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	h.query.ResetHistory(principal)
	c.Status(http.StatusNoContent)
}

func (h *Handler) getNotification(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	c.JSON(http.StatusOK, successResponse(h.query.Notice(principal)))
}

func (h *Handler) deleteNotification(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	h.query.DismissNotice(principal)
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteCache(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	if err := h.dashboard.ClearCache(principal); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var userErr *service.UserError
	switch {
	case errors.As(err, &userErr):
		c.JSON(http.StatusUnprocessableEntity, errorResponse(userErr.Message))
	case errors.Is(err, service.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrSuperseded):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{"data": data}
}

func errorResponse(message string) gin.H {
	return gin.H{"error": message}
}
