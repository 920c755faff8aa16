package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"simplegest/internal/model"
	"simplegest/pkg/search"
)

// RequestAPI is the part of the backend client used to submit and list requests
type RequestAPI interface {
	ListRequests(ctx context.Context) ([]model.Request, error)
	CreateRequest(ctx context.Context, r model.NewRequest) (model.Request, error)
	DeleteRequest(ctx context.Context, id string) error
}

// AddMaterial validates a material line against the cached articles and returns the
// new pending list. The input slice is not modified.
func AddMaterial(pending []model.PendingMaterial, articles []model.Article, ref string, quantity int) ([]model.PendingMaterial, model.PendingMaterial, error) {
	if strings.TrimSpace(ref) == "" {
		return pending, model.PendingMaterial{}, invalid("Seleccione un material")
	}
	article, ok := FindArticle(articles, ref)
	if !ok {
		return pending, model.PendingMaterial{}, &NotFoundError{What: "Material"}
	}
	if quantity <= 0 {
		return pending, model.PendingMaterial{}, invalid("La cantidad debe ser mayor a 0")
	}
	if quantity > article.Stock {
		return pending, model.PendingMaterial{}, invalid(fmt.Sprintf("Solo hay %d unidades disponibles de %s", article.Stock, article.Name))
	}

	line := model.PendingMaterial{ArticleID: article.ID, Name: article.Name, Quantity: quantity}
	if line.ArticleID == "" {
		line.ArticleID = article.Code
	}
	out := append(slices.Clone(pending), line)
	return out, line, nil
}

// RemoveMaterial drops the line at index; an out-of-range index leaves the list as is
func RemoveMaterial(pending []model.PendingMaterial, index int) ([]model.PendingMaterial, bool) {
	if index < 0 || index >= len(pending) {
		return pending, false
	}
	return slices.Delete(slices.Clone(pending), index, index+1), true
}

// BuildNewRequest assembles the creation payload: the draft's site fields and services
// plus the pending lines, always starting in review.
func BuildNewRequest(draft model.NewRequest, pending []model.PendingMaterial) (model.NewRequest, error) {
	draft.RequesterName = strings.TrimSpace(draft.RequesterName)
	draft.RequesterArea = strings.TrimSpace(draft.RequesterArea)
	if draft.RequesterName == "" {
		return draft, invalid("El nombre del solicitante es obligatorio")
	}
	if draft.RequesterArea == "" {
		return draft, invalid("El área del solicitante es obligatoria")
	}

	services := make([]string, 0, len(draft.Services))
	for _, s := range draft.Services {
		if slices.Contains(model.ServiceCatalogue, s) && !slices.Contains(services, s) {
			services = append(services, s)
		}
	}
	draft.Services = services
	if !slices.Contains(services, model.ServiceOther) {
		draft.OtherServiceText = ""
	}

	draft.Materials = make([]model.NewMaterial, 0, len(pending))
	for _, p := range pending {
		draft.Materials = append(draft.Materials, model.NewMaterial{ArticleID: p.ArticleID, Quantity: p.Quantity})
	}
	draft.Status = model.StatusInReview
	return draft, nil
}

// RequestLine is one row of the request list: a request flattened per material line
type RequestLine struct {
	RequestID   string
	Code        string
	Material    string
	Quantity    int
	Requester   string
	Area        string
	Services    string
	Description string
	Date        string
	Status      model.RequestStatus
}

// FlattenRequests produces one row per material line. A request without lines still
// gets a single row.
func FlattenRequests(requests []model.Request) []RequestLine {
	var lines []RequestLine
	for _, r := range requests {
		base := RequestLine{
			RequestID:   r.ID,
			Requester:   r.RequesterName,
			Area:        r.RequesterArea,
			Services:    strings.Join(r.Services, ", "),
			Description: r.ProblemDescription,
			Date:        FormatDate(r.RequestDate),
			Status:      r.Status,
		}
		if len(r.Materials) == 0 {
			base.Code, base.Material = "—", "—"
			lines = append(lines, base)
			continue
		}
		for _, m := range r.Materials {
			line := base
			line.Code = m.Article.Code()
			line.Material = m.Article.Label()
			line.Quantity = m.Quantity
			lines = append(lines, line)
		}
	}
	return lines
}

// FilterRequestLines searches article code and name, requester and area
func FilterRequestLines(lines []RequestLine, query string) []RequestLine {
	return search.Filter(lines, query, func(l RequestLine) []string {
		return []string{l.Code, l.Material, l.Requester, l.Area}
	})
}

type RequestService interface {
	Submit(ctx context.Context, actor string, draft model.NewRequest, pending []model.PendingMaterial) (model.Request, error)
	List(ctx context.Context) ([]model.Request, error)
	Delete(ctx context.Context, actor, id string) error
}

type requestService struct {
	api   RequestAPI
	audit AuditService
}

func NewRequestService(api RequestAPI, audit AuditService) RequestService {
	return &requestService{api: api, audit: audit}
}

func (s *requestService) Submit(ctx context.Context, actor string, draft model.NewRequest, pending []model.PendingMaterial) (model.Request, error) {
	payload, err := BuildNewRequest(draft, pending)
	if err != nil {
		return model.Request{}, err
	}

	created, err := s.api.CreateRequest(ctx, payload)
	if err != nil {
		return model.Request{}, fmt.Errorf("create request: %w", err)
	}

	s.audit.Record(ctx, AuditEntry{
		Username:   actor,
		Action:     model.ActionCreateRequest,
		EntityID:   created.ID,
		EntityName: payload.RequesterName,
		Details:    payload,
	})
	return created, nil
}

func (s *requestService) List(ctx context.Context) ([]model.Request, error) {
	requests, err := s.api.ListRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

func (s *requestService) Delete(ctx context.Context, actor, id string) error {
	if id == "" {
		return &NotFoundError{What: "Solicitud"}
	}
	if err := s.api.DeleteRequest(ctx, id); err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	s.audit.Record(ctx, AuditEntry{
		Username: actor,
		Action:   model.ActionDeleteRequest,
		EntityID: id,
		Details:  map[string]bool{"deleted": true},
	})
	return nil
}
