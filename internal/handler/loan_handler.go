package handler

import (
	"simplegest/internal/model"
	"simplegest/internal/service"
	"simplegest/internal/session"
	"simplegest/pkg/pagination"

	"github.com/gin-gonic/gin"
)

const prestamosPageSize = 5

// LoanHandler serves the Préstamos screen
type LoanHandler struct {
	base
	loanService service.LoanService
}

func NewLoanHandler(sessions *session.Manager, loanService service.LoanService) *LoanHandler {
	return &LoanHandler{base: newBase(sessions), loanService: loanService}
}

func (h *LoanHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/prestamos", h.Loans)
	router.POST("/prestamos", h.CreateLoan)
	router.POST("/prestamos/:id/entregado", h.MarkDelivered)
}

type loanView struct {
	Loans pagination.Page[model.Loan]
	Pager Pager
	Form  loanForm
	Error string
}

// loanForm refills the create form after a rejected submission
type loanForm struct {
	Code      string
	Article   string
	Quantity  string
	Requester string
	LoanDate  string
}

// Loans lists loans newest first
func (h *LoanHandler) Loans(c *gin.Context) {
	params := pagination.Parse(c)
	view := loanView{Form: loanForm{LoanDate: h.now().Format(service.ReturnDateLayout)}}
	if kept, ok := h.sessions.TakeForm(c, "prestamos"); ok {
		view.Form = loanForm{
			Code:      kept.Get("codigoPrestamo"),
			Article:   kept.Get("articulo"),
			Quantity:  kept.Get("cantidad"),
			Requester: kept.Get("nombre"),
			LoanDate:  kept.Get("fechaPrestamo"),
		}
	}

	loans, err := h.loanService.List(c.Request.Context())
	if err != nil {
		view.Error = service.UserMessage(err, "No se pudieron cargar los préstamos")
	}

	view.Loans = pagination.Paginate(service.FilterLoans(loans, params.Query), params.Page, prestamosPageSize)
	view.Pager = newPager("/prestamos", params, view.Loans)
	h.render(c, "prestamos", "/prestamos", view)
}

func (h *LoanHandler) CreateLoan(c *gin.Context) {
	var in service.LoanInput
	if err := c.ShouldBind(&in); err != nil {
		h.keep(c, "prestamos", "")
		h.failure(c, "Datos del préstamo inválidos")
		h.back(c, "/prestamos")
		return
	}

	created, err := h.loanService.Create(c.Request.Context(), h.actor(c), in)
	if err != nil {
		h.keep(c, "prestamos", "")
		h.failure(c, service.UserMessage(err, "Error al registrar el préstamo"))
		h.back(c, "/prestamos")
		return
	}
	h.success(c, "Préstamo "+created.Code+" registrado correctamente")
	// the new loan is first in the list
	h.back(c, "/prestamos")
}

// MarkDelivered sets the loan as returned today. Only No to Si is offered.
func (h *LoanHandler) MarkDelivered(c *gin.Context) {
	if _, err := h.loanService.SetDelivered(c.Request.Context(), h.actor(c), c.Param("id"), true); err != nil {
		h.failure(c, service.UserMessage(err, "Error al actualizar el préstamo"))
		h.back(c, "/prestamos")
		return
	}
	h.success(c, "Préstamo marcado como entregado")
	h.back(c, "/prestamos")
}
