package handler

import (
	"bytes"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"simplegest/internal/middleware"
	"simplegest/internal/model"
	"simplegest/internal/service"
	"simplegest/internal/session"
	"simplegest/pkg/pagination"
	"simplegest/pkg/response"

	"github.com/gin-gonic/gin"
)

const autorizacionPageSize = 10

// ApprovalHandler serves the Autorización panel and its printable report
type ApprovalHandler struct {
	base
	approvalService service.ApprovalService
	templates       *template.Template
}

// NewApprovalHandler needs the parsed templates to render reports for archiving
func NewApprovalHandler(sessions *session.Manager, approvalService service.ApprovalService, templates *template.Template) *ApprovalHandler {
	return &ApprovalHandler{base: newBase(sessions), approvalService: approvalService, templates: templates}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/autorizacion")
	group.Use(middleware.RequireAdmin())
	{
		group.GET("", h.Board)
		group.GET("/reporte", h.Report)
		group.POST("/reporte/archivar", h.ArchiveReport)
		group.POST("/:id/estado", h.Advance)
		group.POST("/:id/materiales/:index/disponible", h.ToggleAvailability)
		group.POST("/:id/materiales/:index/cantidad", h.EditQuantity)
	}
	router.GET("/ui/api/autorizaciones", middleware.RequireAdminJSON(), h.GetApprovals)
}

type approvalView struct {
	Requests   pagination.Page[service.AnnotatedRequest]
	Pager      Pager
	CanArchive bool
	Error      string
}

// Board lists every request annotated with stock availability
func (h *ApprovalHandler) Board(c *gin.Context) {
	params := pagination.Parse(c)
	view := approvalView{CanArchive: h.approvalService.CanArchive()}

	board, err := h.approvalService.Board(c.Request.Context(), h.sessions.Availability(c))
	if err != nil {
		view.Error = service.UserMessage(err, "No se pudieron cargar las solicitudes")
	}

	view.Requests = pagination.Paginate(service.FilterAnnotated(board.Requests, params.Query), params.Page, autorizacionPageSize)
	view.Pager = newPager("/autorizacion", params, view.Requests)
	h.render(c, "autorizacion", "/autorizacion", view)
}

// ToggleAvailability records the reviewer's Si/No for one line in the session
func (h *ApprovalHandler) ToggleAvailability(c *gin.Context) {
	id := c.Param("id")
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.failure(c, "Material no encontrado")
		h.back(c, "/autorizacion")
		return
	}

	board, err := h.approvalService.Board(c.Request.Context(), nil)
	if err == nil {
		err = service.CheckAvailabilityToggle(board, id, index)
	}
	if err != nil {
		h.failure(c, service.UserMessage(err, "No se pudo actualizar la disponibilidad"))
		h.back(c, "/autorizacion")
		return
	}

	h.sessions.SetAvailability(c, id, index, c.PostForm("hayMaterial") == "si")
	h.back(c, "/autorizacion")
}

// EditQuantity changes a line's quantity and moves the article's stock by the difference
func (h *ApprovalHandler) EditQuantity(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.failure(c, "Material no encontrado")
		h.back(c, "/autorizacion")
		return
	}
	qty, err := strconv.Atoi(c.PostForm("cantidad"))
	if err != nil {
		h.failure(c, "Ingrese una cantidad válida")
		h.back(c, "/autorizacion")
		return
	}

	edit, err := h.approvalService.EditQuantity(c.Request.Context(), h.actor(c), c.Param("id"), index, qty)
	if err != nil {
		h.failure(c, service.UserMessage(err, "Error al actualizar la cantidad"))
		h.back(c, "/autorizacion")
		return
	}
	h.success(c, "Cantidad de "+edit.ArticleName+" actualizada a "+strconv.Itoa(edit.NewQuantity))
	h.back(c, "/autorizacion")
}

// Advance moves a request to its next status
func (h *ApprovalHandler) Advance(c *gin.Context) {
	target := model.RequestStatus(c.PostForm("estado"))
	next, err := h.approvalService.Advance(c.Request.Context(), h.actor(c), c.Param("id"), target)
	if err != nil {
		h.failure(c, service.UserMessage(err, "Error al actualizar el estado"))
		h.back(c, "/autorizacion")
		return
	}
	h.success(c, "Solicitud marcada como "+string(next))
	h.back(c, "/autorizacion")
}

// Report renders the printable list of all requests
func (h *ApprovalHandler) Report(c *gin.Context) {
	rep, err := h.approvalService.Report(c.Request.Context())
	if err != nil {
		h.failure(c, service.UserMessage(err, "No se pudo generar el reporte"))
		c.Redirect(http.StatusSeeOther, "/autorizacion")
		return
	}
	c.HTML(http.StatusOK, "reporte", rep)
}

// ArchiveReport renders the report and uploads it
func (h *ApprovalHandler) ArchiveReport(c *gin.Context) {
	rep, err := h.approvalService.Report(c.Request.Context())
	if err != nil {
		h.failure(c, service.UserMessage(err, "No se pudo generar el reporte"))
		c.Redirect(http.StatusSeeOther, "/autorizacion")
		return
	}

	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, "reporte", rep); err != nil {
		log.Printf("approval: render report: %v", err)
		h.failure(c, "No se pudo generar el reporte")
		c.Redirect(http.StatusSeeOther, "/autorizacion")
		return
	}

	url, err := h.approvalService.ArchiveReport(c.Request.Context(), h.actor(c), buf.Bytes())
	if err != nil {
		h.failure(c, service.UserMessage(err, "No se pudo archivar el reporte"))
		c.Redirect(http.StatusSeeOther, "/autorizacion")
		return
	}
	h.success(c, "Reporte archivado en "+url)
	c.Redirect(http.StatusSeeOther, "/autorizacion")
}

// GetApprovals returns one page of annotated requests
// @Summary      Get approvals
// @Description  Requests annotated with stock availability (10 per page)
// @Tags         autorizacion
// @Produce      json
// @Param        q     query     string  false  "Search article code or name, requester, area or status"
// @Param        page  query     int     false  "Page number (default 1)"
// @Success      200   {object}  response.Response{data=response.PageData}
// @Failure      401   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      502   {object}  response.Response
// @Router       /ui/api/autorizaciones [get]
func (h *ApprovalHandler) GetApprovals(c *gin.Context) {
	params := pagination.Parse(c)

	board, err := h.approvalService.Board(c.Request.Context(), h.sessions.Availability(c))
	if err != nil {
		c.JSON(http.StatusBadGateway, response.Error(http.StatusBadGateway, service.UserMessage(err, "Error al cargar las solicitudes")))
		return
	}

	p := pagination.Paginate(service.FilterAnnotated(board.Requests, params.Query), params.Page, autorizacionPageSize)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, response.PageData{
		Items:      p.Items,
		Total:      p.TotalItems,
		Page:       p.Number,
		TotalPages: p.TotalPages,
	}))
}
