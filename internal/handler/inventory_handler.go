package handler

import (
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

const registroPageSize = 5

// InventoryHandler serves the Registro screen: the article catalogue
type InventoryHandler struct {
	base
	articleService service.ArticleService
}

func NewInventoryHandler(sessions *session.Manager, articleService service.ArticleService) *InventoryHandler {
	return &InventoryHandler{base: newBase(sessions), articleService: articleService}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/registro", h.Registro)
	router.POST("/registro", h.CreateArticle)
	router.POST("/registro/:id", h.UpdateArticle)
	router.POST("/registro/:id/eliminar", h.DeleteArticle)
	router.GET("/ui/api/articulos", middleware.RequireLoginJSON(), h.GetArticles)
}

type registroView struct {
	Articles    pagination.Page[model.Article]
	Pager       Pager
	RecordTypes []string
	Form        articleForm
	Editing     bool
	ConfirmID   string
	Error       string
}

// articleForm is what the create/edit form shows. ID is set while editing.
type articleForm struct {
	ID          string
	RecordType  string
	Code        string
	Name        string
	Description string
	Stock       string
}

func articleFormOf(a model.Article) articleForm {
	return articleForm{
		ID:          a.ID,
		RecordType:  a.RecordType,
		Code:        a.Code,
		Name:        a.Name,
		Description: a.Description,
		Stock:       strconv.Itoa(a.Stock),
	}
}

func keptArticleForm(kept session.KeptForm) articleForm {
	return articleForm{
		ID:          kept.ID,
		RecordType:  kept.Get("tipoRegistro"),
		Code:        kept.Get("codigoArticulo"),
		Name:        kept.Get("nombreArticulo"),
		Description: kept.Get("descripcion"),
		Stock:       kept.Get("stock"),
	}
}

// Registro lists articles with search and pagination next to the create/edit form
func (h *InventoryHandler) Registro(c *gin.Context) {
	params := pagination.Parse(c)
	view := registroView{RecordTypes: model.RecordTypes(), ConfirmID: c.Query("confirmar")}

	articles, err := h.articleService.List(c.Request.Context())
	if err != nil {
		view.Error = service.UserMessage(err, "No se pudieron cargar los artículos")
	}

	if kept, ok := h.sessions.TakeForm(c, "registro"); ok {
		view.Form, view.Editing = keptArticleForm(kept), kept.ID != ""
	} else if id := c.Query("editar"); id != "" {
		for _, a := range articles {
			if a.ID == id {
				view.Form, view.Editing = articleFormOf(a), true
				break
			}
		}
	}

	view.Articles = pagination.Paginate(service.FilterArticles(articles, params.Query), params.Page, registroPageSize)
	view.Pager = newPager("/registro", params, view.Articles)
	h.render(c, "registro", "/registro", view)
}

func (h *InventoryHandler) CreateArticle(c *gin.Context) {
	var in service.ArticleInput
	if err := c.ShouldBind(&in); err != nil {
		h.keep(c, "registro", "")
		h.failure(c, "Datos del artículo inválidos")
		h.back(c, "/registro")
		return
	}

	created, err := h.articleService.Create(c.Request.Context(), h.actor(c), in)
	if err != nil {
		h.keep(c, "registro", "")
		h.failure(c, service.UserMessage(err, "Error al registrar el artículo"))
		h.back(c, "/registro")
		return
	}
	h.success(c, "Artículo "+created.Name+" registrado correctamente")
	h.back(c, "/registro")
}

func (h *InventoryHandler) UpdateArticle(c *gin.Context) {
	var in service.ArticleInput
	if err := c.ShouldBind(&in); err != nil {
		h.keep(c, "registro", c.Param("id"))
		h.failure(c, "Datos del artículo inválidos")
		h.back(c, "/registro")
		return
	}

	if _, err := h.articleService.Update(c.Request.Context(), h.actor(c), c.Param("id"), in); err != nil {
		h.keep(c, "registro", c.Param("id"))
		h.failure(c, service.UserMessage(err, "Error al actualizar el artículo"))
		h.back(c, "/registro")
		return
	}
	h.success(c, "Artículo actualizado correctamente")
	h.back(c, "/registro")
}

// DeleteArticle only acts on a confirmed form; anything else returns to the list
func (h *InventoryHandler) DeleteArticle(c *gin.Context) {
	if !confirmed(c) {
		h.back(c, "/registro")
		return
	}
	if err := h.articleService.Delete(c.Request.Context(), h.actor(c), c.Param("id")); err != nil {
		h.failure(c, service.UserMessage(err, "Error al eliminar el artículo"))
		h.back(c, "/registro")
		return
	}
	h.success(c, "Artículo eliminado correctamente")
	h.back(c, "/registro")
}

// GetArticles returns one page of the filtered catalogue
// @Summary      Get articles
// @Description  Filtered, paginated article catalogue (5 per page)
// @Tags         articulos
// @Produce      json
// @Param        q     query     string  false  "Search code, name, description or record type"
// @Param        page  query     int     false  "Page number (default 1)"
// @Success      200   {object}  response.Response{data=response.PageData}
// @Failure      401   {object}  response.Response
// @Failure      502   {object}  response.Response
// @Router       /ui/api/articulos [get]
func (h *InventoryHandler) GetArticles(c *gin.Context) {
	params := pagination.Parse(c)

	articles, err := h.articleService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, response.Error(http.StatusBadGateway, service.UserMessage(err, "Error al cargar los artículos")))
		return
	}

	p := pagination.Paginate(service.FilterArticles(articles, params.Query), params.Page, registroPageSize)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, response.PageData{
		Items:      p.Items,
		Total:      p.TotalItems,
		Page:       p.Number,
		TotalPages: p.TotalPages,
	}))
}
