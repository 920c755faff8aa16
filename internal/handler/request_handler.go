package handler

import (
	"strconv"
	"strings"

	"simplegest/internal/middleware"
	"simplegest/internal/model"
	"simplegest/internal/service"
	"simplegest/internal/session"
	"simplegest/pkg/pagination"

	"github.com/gin-gonic/gin"
)

const listaPageSize = 5

// Form actions of the new-request screen. Every post saves the draft first.
const (
	actionSave   = "guardar"
	actionAdd    = "agregar"
	actionRemove = "quitar"
	actionSubmit = "enviar"
)

// RequestHandler serves NuevaSolicitud and ListaSolicitudes
type RequestHandler struct {
	base
	requestService service.RequestService
	articleService service.ArticleService
}

func NewRequestHandler(sessions *session.Manager, requestService service.RequestService, articleService service.ArticleService) *RequestHandler {
	return &RequestHandler{base: newBase(sessions), requestService: requestService, articleService: articleService}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/nueva-solicitud", h.NewRequest)
	router.POST("/nueva-solicitud", h.PostNewRequest)
	router.GET("/lista-solicitudes", h.ListRequests)
	router.POST("/lista-solicitudes/:id/eliminar", middleware.RequireAdmin(), h.DeleteRequest)
}

type requestForm struct {
	RequesterName      string   `form:"nombreSolicitante"`
	RequesterArea      string   `form:"areaSolicitante"`
	RequestDate        string   `form:"fechaSolicitud"`
	Tower              string   `form:"torre"`
	Floor              string   `form:"piso"`
	Space              string   `form:"espacio"`
	AlternateSite      string   `form:"sedeAlterna"`
	OtherService       string   `form:"otroServicio"`
	WhichService       string   `form:"cualServicio"`
	Services           []string `form:"servicios"`
	OtherServiceText   string   `form:"cual"`
	ProblemDescription string   `form:"descripcionProblema"`

	Action   string `form:"accion"`
	Material string `form:"material"`
	Quantity string `form:"cantidad"`
}

func (f requestForm) draft() model.NewRequest {
	return model.NewRequest{
		RequesterName:      f.RequesterName,
		RequesterArea:      f.RequesterArea,
		RequestDate:        f.RequestDate,
		Tower:              f.Tower,
		Floor:              f.Floor,
		Space:              f.Space,
		AlternateSite:      f.AlternateSite,
		OtherService:       f.OtherService,
		WhichService:       f.WhichService,
		Services:           f.Services,
		OtherServiceText:   f.OtherServiceText,
		ProblemDescription: f.ProblemDescription,
	}
}

type newRequestView struct {
	Draft     model.NewRequest
	Checked   map[string]bool
	Pending   []model.PendingMaterial
	Articles  []model.Article
	Catalogue []string
	Error     string
}

// NewRequest renders the request form with the saved draft and pending materials
func (h *RequestHandler) NewRequest(c *gin.Context) {
	draft := h.sessions.Draft(c)
	view := newRequestView{
		Draft:     draft,
		Checked:   make(map[string]bool, len(draft.Services)),
		Pending:   h.sessions.PendingMaterials(c),
		Catalogue: model.ServiceCatalogue,
	}
	for _, s := range draft.Services {
		view.Checked[s] = true
	}

	articles, err := h.articleService.List(c.Request.Context())
	if err != nil {
		view.Error = service.UserMessage(err, "No se pudieron cargar los materiales")
	}
	view.Articles = articles

	h.render(c, "nueva_solicitud", "/nueva-solicitud", view)
}

// PostNewRequest saves the draft and then runs the requested action
func (h *RequestHandler) PostNewRequest(c *gin.Context) {
	var form requestForm
	if err := c.ShouldBind(&form); err != nil {
		h.failure(c, "Datos de la solicitud inválidos")
		h.back(c, "/nueva-solicitud")
		return
	}
	h.sessions.SetDraft(c, form.draft())

	action, arg, _ := strings.Cut(form.Action, ":")
	switch action {
	case actionAdd:
		h.addMaterial(c, form)
	case actionRemove:
		h.removeMaterial(c, arg)
	case actionSubmit:
		h.submit(c, form.draft())
	case actionSave, "":
		h.success(c, "Borrador guardado")
	default:
		h.failure(c, "Acción no reconocida")
	}
	h.back(c, "/nueva-solicitud")
}

func (h *RequestHandler) addMaterial(c *gin.Context, form requestForm) {
	qty, err := strconv.Atoi(strings.TrimSpace(form.Quantity))
	if err != nil {
		h.failure(c, "Ingrese una cantidad válida")
		return
	}
	articles, err := h.articleService.List(c.Request.Context())
	if err != nil {
		h.failure(c, service.UserMessage(err, "No se pudieron cargar los materiales"))
		return
	}

	pending, line, err := service.AddMaterial(h.sessions.PendingMaterials(c), articles, form.Material, qty)
	if err != nil {
		h.failure(c, service.UserMessage(err, "No se pudo agregar el material"))
		return
	}
	h.sessions.SetPendingMaterials(c, pending)
	h.success(c, "Material "+line.Name+" agregado")
}

func (h *RequestHandler) removeMaterial(c *gin.Context, arg string) {
	idx, err := strconv.Atoi(arg)
	if err != nil {
		return
	}
	if pending, ok := service.RemoveMaterial(h.sessions.PendingMaterials(c), idx); ok {
		h.sessions.SetPendingMaterials(c, pending)
	}
}

func (h *RequestHandler) submit(c *gin.Context, draft model.NewRequest) {
	_, err := h.requestService.Submit(c.Request.Context(), h.actor(c), draft, h.sessions.PendingMaterials(c))
	if err != nil {
		h.failure(c, service.UserMessage(err, "Error al enviar la solicitud"))
		return
	}
	h.sessions.ClearDraft(c)
	h.success(c, "Solicitud enviada correctamente")
}

type listaView struct {
	Lines     pagination.Page[service.RequestLine]
	Pager     Pager
	ConfirmID string
	Error     string
}

// ListRequests shows one row per material line
func (h *RequestHandler) ListRequests(c *gin.Context) {
	params := pagination.Parse(c)
	view := listaView{ConfirmID: c.Query("confirmar")}

	requests, err := h.requestService.List(c.Request.Context())
	if err != nil {
		view.Error = service.UserMessage(err, "No se pudieron cargar las solicitudes")
	}

	lines := service.FilterRequestLines(service.FlattenRequests(requests), params.Query)
	view.Lines = pagination.Paginate(lines, params.Page, listaPageSize)
	view.Pager = newPager("/lista-solicitudes", params, view.Lines)
	h.render(c, "lista_solicitudes", "/lista-solicitudes", view)
}

func (h *RequestHandler) DeleteRequest(c *gin.Context) {
	if !confirmed(c) {
		h.back(c, "/lista-solicitudes")
		return
	}
	if err := h.requestService.Delete(c.Request.Context(), h.actor(c), c.Param("id")); err != nil {
		h.failure(c, service.UserMessage(err, "Error al eliminar la solicitud"))
		h.back(c, "/lista-solicitudes")
		return
	}
	h.success(c, "Solicitud eliminada correctamente")
	h.back(c, "/lista-solicitudes")
}
