package handler

import (
	"net/http"

	"simplegest/internal/middleware"
	"simplegest/internal/service"
	"simplegest/internal/session"
	"simplegest/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	base
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(sessions *session.Manager, statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{base: newBase(sessions), statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", middleware.RequireAdmin(), h.Dashboard)
	router.GET("/categorias", h.Categories)
	router.GET("/ui/api/dashboard", middleware.RequireAdminJSON(), h.GetDashboard)
}

// Dashboard renders the summary counts and the low-stock table. A failed half is
// shown empty with an error notice.
func (h *StatisticsHandler) Dashboard(c *gin.Context) {
	dash, err := h.statisticsService.GetDashboard(c.Request.Context())
	data := gin.H{"Dashboard": dash}
	if err != nil {
		data["Error"] = service.UserMessage(err, "No se pudieron cargar los datos del dashboard")
	}
	h.render(c, "dashboard", "/dashboard", data)
}

// Categories shows article count and stock per record type
func (h *StatisticsHandler) Categories(c *gin.Context) {
	cats, err := h.statisticsService.GetCategories(c.Request.Context())
	data := gin.H{"Categories": cats}
	if err != nil {
		data["Error"] = service.UserMessage(err, "No se pudieron cargar los artículos")
	}
	h.render(c, "categorias", "/categorias", data)
}

// GetDashboard returns the dashboard data for live refresh
// @Summary      Get dashboard
// @Description  Summary counts and articles with stock at or below 5
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  response.Response{data=service.Dashboard}
// @Failure      401  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /ui/api/dashboard [get]
func (h *StatisticsHandler) GetDashboard(c *gin.Context) {
	dash, err := h.statisticsService.GetDashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, response.Error(http.StatusBadGateway, service.UserMessage(err, "Error al cargar el dashboard")))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, dash))
}
