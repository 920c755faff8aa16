package handler

import (
	"net/http"
	"strconv"

	"simplegest/internal/middleware"
	"simplegest/internal/service"
	"simplegest/internal/session"
	"simplegest/pkg/pagination"
	"simplegest/pkg/response"

	"github.com/gin-gonic/gin"
)

const actividadPageSize = 10

type AuditHandler struct {
	base
	auditService service.AuditService
}

func NewAuditHandler(sessions *session.Manager, auditService service.AuditService) *AuditHandler {
	return &AuditHandler{base: newBase(sessions), auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/actividad", middleware.RequireAdmin(), h.Activity)
	router.GET("/ui/api/actividad", middleware.RequireAdminJSON(), h.GetAuditLogs)
}

type activityView struct {
	Logs    []service.AuditLogResponse
	Pager   Pager
	Enabled bool
	Error   string
}

// Activity lists recorded UI mutations, newest first
func (h *AuditHandler) Activity(c *gin.Context) {
	params := pagination.Parse(c)
	view := activityView{Enabled: h.auditService.Enabled()}

	if view.Enabled {
		logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), params.Query, params.Page, actividadPageSize)
		if err != nil {
			view.Error = "No se pudo cargar la actividad"
		}
		view.Logs = logs
		totalPages := int((total + actividadPageSize - 1) / actividadPageSize)
		view.Pager = Pager{
			Path:       "/actividad",
			Query:      params.Query,
			Number:     params.Page,
			TotalPages: totalPages,
			TotalItems: int(total),
			HasPrev:    params.Page > 1,
			HasNext:    params.Page < totalPages,
			Prev:       max(params.Page-1, 1),
			Next:       min(params.Page+1, max(totalPages, 1)),
		}
		for i := 1; i <= totalPages; i++ {
			view.Pager.Numbers = append(view.Pager.Numbers, i)
		}
	}
	h.render(c, "actividad", "/actividad", view)
}

// GetAuditLogs returns one page of the activity log
// @Summary      Get activity log
// @Description  Mutations performed through the UI, newest first
// @Tags         actividad
// @Produce      json
// @Param        q      query     string  false  "Search username, action or entity"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Number of items per page (default 10)"
// @Success      200    {object}  response.Response{data=response.PageData}
// @Failure      401    {object}  response.Response
// @Failure      503    {object}  response.Response
// @Router       /ui/api/actividad [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(actividadPageSize)))
	if limit <= 0 {
		limit = actividadPageSize
	}

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), params.Query, params.Page, limit)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, response.Error(http.StatusServiceUnavailable, "No se pudo cargar la actividad: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, response.PageData{
		Items:      logs,
		Total:      int(total),
		Page:       params.Page,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}))
}
