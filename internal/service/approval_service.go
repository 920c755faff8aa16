package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"simplegest/internal/apiclient"
	"simplegest/internal/model"
	"simplegest/internal/session"
	"simplegest/pkg/search"
)

// ApprovalAPI is the part of the backend client the approval panel drives
type ApprovalAPI interface {
	ListArticles(ctx context.Context) ([]model.Article, error)
	ListAllRequests(ctx context.Context) ([]model.Request, error)
	UpdateArticleStock(ctx context.Context, id string, stock int) (model.Article, error)
	UpdateRequestMaterial(ctx context.Context, id string, index, quantity int) (model.Request, error)
	UpdateRequestStatus(ctx context.Context, id string, status model.RequestStatus) (model.Request, error)
}

// ReportArchiver uploads a rendered report and returns where it can be fetched
type ReportArchiver interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// AnnotatedLine is a material line with its availability toggle. Available is nil
// until either the backend or the reviewer sets it.
type AnnotatedLine struct {
	Index     int                `json:"indice"`
	Line      model.MaterialLine `json:"material"`
	Available *bool              `json:"disponible"`
}

// AnnotatedRequest is a request as shown on the approval panel
type AnnotatedRequest struct {
	// Number is the 1-based position in the unfiltered list
	Number      int             `json:"numero"`
	Request     model.Request   `json:"solicitud"`
	HayMaterial bool            `json:"hayMaterial"`
	Lines       []AnnotatedLine `json:"lineas"`
}

func (r AnnotatedRequest) Editable() bool {
	return r.Request.Status.Editable()
}

// NextStatus is the status the panel's action button moves to, empty once delivered
func (r AnnotatedRequest) NextStatus() model.RequestStatus {
	next, _ := r.Request.Status.Next()
	return next
}

// Board is the approval panel state: every article and every annotated request
type Board struct {
	Articles []model.Article
	Requests []AnnotatedRequest
}

func (b Board) find(requestID string) (AnnotatedRequest, bool) {
	for _, r := range b.Requests {
		if r.Request.ID == requestID {
			return r, true
		}
	}
	return AnnotatedRequest{}, false
}

// Annotate cross-references requests against current stock. A request has material
// when at least one line points (by id or code) at an article with stock above zero.
// Line availability starts from the backend flag and is replaced by the overrides,
// keyed by session.AvailabilityKey.
func Annotate(requests []model.Request, articles []model.Article, overrides map[string]bool) []AnnotatedRequest {
	out := make([]AnnotatedRequest, 0, len(requests))
	for i, r := range requests {
		ar := AnnotatedRequest{Number: i + 1, Request: r}
		for j, m := range r.Materials {
			line := AnnotatedLine{Index: j, Line: m}
			if m.HayMaterial != nil {
				v := *m.HayMaterial
				line.Available = &v
			}
			if v, ok := overrides[session.AvailabilityKey(r.ID, j)]; ok {
				line.Available = &v
			}
			ar.Lines = append(ar.Lines, line)

			if !ar.HayMaterial {
				key := m.Article.Key()
				for _, a := range articles {
					if (a.ID == key || a.Code == key) && a.Stock > 0 {
						ar.HayMaterial = true
						break
					}
				}
			}
		}
		out = append(out, ar)
	}
	return out
}

// FilterAnnotated searches per-line article code and name, requester, area and status
func FilterAnnotated(requests []AnnotatedRequest, query string) []AnnotatedRequest {
	return search.Filter(requests, query, func(r AnnotatedRequest) []string {
		fields := []string{r.Request.RequesterName, r.Request.RequesterArea, string(r.Request.Status)}
		for _, m := range r.Request.Materials {
			fields = append(fields, m.Article.Code(), m.Article.Name())
		}
		return fields
	})
}

// CheckAvailabilityToggle allows toggling a line only while its request is in review
func CheckAvailabilityToggle(board Board, requestID string, index int) error {
	r, ok := board.find(requestID)
	if !ok {
		return &NotFoundError{What: "Solicitud"}
	}
	if !r.Editable() {
		return ErrNotEditable
	}
	if index < 0 || index >= len(r.Lines) {
		return &NotFoundError{What: "Material"}
	}
	return nil
}

// QuantityEdit is a validated change of one material line
type QuantityEdit struct {
	RequestID   string
	Index       int
	ArticleID   string
	ArticleName string
	OldQuantity int
	NewQuantity int
	NewStock    int
}

// PlanQuantityEdit validates a quantity change without touching the backend. The
// stock moves by the opposite of the quantity delta and may not go below zero.
func PlanQuantityEdit(board Board, requestID string, index, quantity int) (QuantityEdit, error) {
	r, ok := board.find(requestID)
	if !ok {
		return QuantityEdit{}, &NotFoundError{What: "Solicitud"}
	}
	if !r.Editable() {
		return QuantityEdit{}, ErrNotEditable
	}
	if index < 0 || index >= len(r.Request.Materials) {
		return QuantityEdit{}, &NotFoundError{What: "Material"}
	}
	if quantity < 1 {
		return QuantityEdit{}, invalid("La cantidad debe ser al menos 1")
	}

	line := r.Request.Materials[index]
	articleID := line.Article.Key()
	var article *model.Article
	for i := range board.Articles {
		if articleID != "" && board.Articles[i].ID == articleID {
			article = &board.Articles[i]
			break
		}
	}
	if article == nil {
		return QuantityEdit{}, &NotFoundError{What: "Artículo"}
	}

	diff := quantity - line.Quantity
	if article.Stock-diff < 0 {
		return QuantityEdit{}, ErrInsufficientStock
	}

	return QuantityEdit{
		RequestID:   requestID,
		Index:       index,
		ArticleID:   article.ID,
		ArticleName: article.Name,
		OldQuantity: line.Quantity,
		NewQuantity: quantity,
		NewStock:    article.Stock - diff,
	}, nil
}

// PartialUpdateError reports a quantity edit whose stock change was saved but whose
// line update failed. Nothing is rolled back.
type PartialUpdateError struct {
	Edit  QuantityEdit
	Cause error
}

func (e *PartialUpdateError) Error() string {
	return "El stock ya fue actualizado pero no se pudo guardar la cantidad: " +
		apiclient.UserMessage(e.Cause, "Error al guardar la cantidad")
}

func (e *PartialUpdateError) Unwrap() error {
	return e.Cause
}

// ReportRow is one request in the printable report
type ReportRow struct {
	Number       int
	Requester    string
	Area         string
	Articles     []string
	Descriptions []string
	Quantities   []int
	Date         string
	Status       model.RequestStatus
}

// Report is the printable list of every request
type Report struct {
	GeneratedAt time.Time
	Rows        []ReportRow
}

// BuildReport lays out all requests in backend order
func BuildReport(requests []model.Request, now time.Time) Report {
	rep := Report{GeneratedAt: now, Rows: make([]ReportRow, 0, len(requests))}
	for i, r := range requests {
		row := ReportRow{
			Number:    i + 1,
			Requester: r.RequesterName,
			Area:      r.RequesterArea,
			Date:      FormatDate(r.RequestDate),
			Status:    r.Status,
		}
		for _, m := range r.Materials {
			desc := m.Article.Description()
			if desc == "" {
				desc = "—"
			}
			row.Articles = append(row.Articles, m.Article.Label())
			row.Descriptions = append(row.Descriptions, desc)
			row.Quantities = append(row.Quantities, m.Quantity)
		}
		rep.Rows = append(rep.Rows, row)
	}
	return rep
}

type ApprovalService interface {
	Board(ctx context.Context, overrides map[string]bool) (Board, error)
	EditQuantity(ctx context.Context, actor, requestID string, index, quantity int) (QuantityEdit, error)
	Advance(ctx context.Context, actor, requestID string, target model.RequestStatus) (model.RequestStatus, error)
	Report(ctx context.Context) (Report, error)
	ArchiveReport(ctx context.Context, actor string, rendered []byte) (string, error)
	CanArchive() bool
}

type approvalService struct {
	api      ApprovalAPI
	audit    AuditService
	archiver ReportArchiver
	now      func() time.Time
}

// NewApprovalService wires the approval panel. archiver may be nil when reports are
// only printed.
func NewApprovalService(api ApprovalAPI, audit AuditService, archiver ReportArchiver) ApprovalService {
	return &approvalService{api: api, audit: audit, archiver: archiver, now: time.Now}
}

func (s *approvalService) Board(ctx context.Context, overrides map[string]bool) (Board, error) {
	articles, err := s.api.ListArticles(ctx)
	if err != nil {
		// without articles every request shows no material; the list is still usable
		log.Printf("approval: list articles: %v", err)
		articles = nil
	}

	requests, err := s.api.ListAllRequests(ctx)
	if err != nil {
		return Board{Articles: articles}, fmt.Errorf("list requests: %w", err)
	}

	return Board{
		Articles: articles,
		Requests: Annotate(requests, articles, overrides),
	}, nil
}

func (s *approvalService) EditQuantity(ctx context.Context, actor, requestID string, index, quantity int) (QuantityEdit, error) {
	board, err := s.Board(ctx, nil)
	if err != nil {
		return QuantityEdit{}, err
	}

	edit, err := PlanQuantityEdit(board, requestID, index, quantity)
	if err != nil {
		return QuantityEdit{}, err
	}

	if _, err := s.api.UpdateArticleStock(ctx, edit.ArticleID, edit.NewStock); err != nil {
		return QuantityEdit{}, fmt.Errorf("update stock: %w", err)
	}
	if _, err := s.api.UpdateRequestMaterial(ctx, edit.RequestID, edit.Index, edit.NewQuantity); err != nil {
		log.Printf("approval: stock of %s set to %d but line %s/%d failed: %v", edit.ArticleID, edit.NewStock, edit.RequestID, edit.Index, err)
		return edit, &PartialUpdateError{Edit: edit, Cause: err}
	}

	s.audit.Record(ctx, AuditEntry{
		Username:   actor,
		Action:     model.ActionEditMaterial,
		EntityID:   edit.RequestID,
		EntityName: edit.ArticleName,
		Details:    edit,
	})
	return edit, nil
}

func (s *approvalService) Advance(ctx context.Context, actor, requestID string, target model.RequestStatus) (model.RequestStatus, error) {
	requests, err := s.api.ListAllRequests(ctx)
	if err != nil {
		return "", fmt.Errorf("list requests: %w", err)
	}

	var current *model.Request
	for i := range requests {
		if requests[i].ID == requestID {
			current = &requests[i]
			break
		}
	}
	if current == nil {
		return "", &NotFoundError{What: "Solicitud"}
	}

	next, ok := current.Status.Next()
	if !ok || next != target {
		return "", ErrInvalidTransition
	}

	if _, err := s.api.UpdateRequestStatus(ctx, requestID, next); err != nil {
		return "", fmt.Errorf("update status: %w", err)
	}

	s.audit.Record(ctx, AuditEntry{
		Username:   actor,
		Action:     model.ActionAdvanceRequest,
		EntityID:   requestID,
		EntityName: current.RequesterName,
		Details:    map[string]model.RequestStatus{"from": current.Status, "to": next},
	})
	return next, nil
}

func (s *approvalService) Report(ctx context.Context) (Report, error) {
	requests, err := s.api.ListAllRequests(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list requests: %w", err)
	}
	return BuildReport(requests, s.now()), nil
}

func (s *approvalService) CanArchive() bool {
	return s.archiver != nil
}

func (s *approvalService) ArchiveReport(ctx context.Context, actor string, rendered []byte) (string, error) {
	if s.archiver == nil {
		return "", ErrArchiveDisabled
	}
	if len(rendered) == 0 {
		return "", invalid("El reporte está vacío")
	}

	key := fmt.Sprintf("reportes/autorizaciones-%s.html", s.now().Format("20060102-150405"))
	url, err := s.archiver.Upload(ctx, key, rendered, "text/html; charset=utf-8")
	if err != nil {
		return "", fmt.Errorf("archive report: %w", err)
	}

	s.audit.Record(ctx, AuditEntry{
		Username:   actor,
		Action:     model.ActionArchiveReport,
		EntityID:   key,
		EntityName: strings.TrimPrefix(key, "reportes/"),
		Details:    map[string]string{"url": url},
	})
	return url, nil
}
