package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"simplegest/internal/model"
	"simplegest/pkg/search"
)

// ArticleAPI is the part of the backend client the inventory needs
type ArticleAPI interface {
	ListArticles(ctx context.Context) ([]model.Article, error)
	CreateArticle(ctx context.Context, a model.Article) (model.Article, error)
	UpdateArticle(ctx context.Context, id string, a model.Article) (model.Article, error)
	DeleteArticle(ctx context.Context, id string) error
}

// ArticleInput is the Registro form
type ArticleInput struct {
	RecordType  string `form:"tipoRegistro" json:"tipoRegistro"`
	Code        string `form:"codigoArticulo" json:"codigoArticulo"`
	Name        string `form:"nombreArticulo" json:"nombreArticulo"`
	Description string `form:"descripcion" json:"descripcion"`
	Stock       int    `form:"stock" json:"stock"`
}

func (in ArticleInput) validate() (model.Article, error) {
	a := model.Article{
		RecordType:  strings.TrimSpace(in.RecordType),
		Code:        strings.TrimSpace(in.Code),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Stock:       in.Stock,
	}
	switch {
	case !slices.Contains(model.RecordTypes(), a.RecordType):
		return a, invalid("Seleccione el tipo de registro")
	case a.Code == "":
		return a, invalid("El código del artículo es obligatorio")
	case a.Name == "":
		return a, invalid("El nombre del artículo es obligatorio")
	case a.Stock < 0:
		return a, invalid("La cantidad no puede ser negativa")
	}
	return a, nil
}

type ArticleService interface {
	List(ctx context.Context) ([]model.Article, error)
	Create(ctx context.Context, actor string, in ArticleInput) (model.Article, error)
	Update(ctx context.Context, actor, id string, in ArticleInput) (model.Article, error)
	Delete(ctx context.Context, actor, id string) error
}

type articleService struct {
	api   ArticleAPI
	audit AuditService
	push  Publisher
}

func NewArticleService(api ArticleAPI, audit AuditService, push Publisher) ArticleService {
	return &articleService{api: api, audit: audit, push: publisherOrNoop(push)}
}

func (s *articleService) List(ctx context.Context) ([]model.Article, error) {
	articles, err := s.api.ListArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

func (s *articleService) Create(ctx context.Context, actor string, in ArticleInput) (model.Article, error) {
	article, err := in.validate()
	if err != nil {
		return model.Article{}, err
	}

	created, err := s.api.CreateArticle(ctx, article)
	if err != nil {
		return model.Article{}, fmt.Errorf("create article: %w", err)
	}

	s.audit.Record(ctx, AuditEntry{
		Username:   actor,
		Action:     model.ActionCreateArticle,
		EntityID:   created.ID,
		EntityName: created.Name,
		Details:    in,
	})
	s.push.Publish(EventArticleCreated, created)
	return created, nil
}

func (s *articleService) Update(ctx context.Context, actor, id string, in ArticleInput) (model.Article, error) {
	if id == "" {
		return model.Article{}, &NotFoundError{What: "Artículo"}
	}
	article, err := in.validate()
	if err != nil {
		return model.Article{}, err
	}

	updated, err := s.api.UpdateArticle(ctx, id, article)
	if err != nil {
		return model.Article{}, fmt.Errorf("update article: %w", err)
	}

	s.audit.Record(ctx, AuditEntry{
		Username:   actor,
		Action:     model.ActionUpdateArticle,
		EntityID:   id,
		EntityName: article.Name,
		Details:    in,
	})
	return updated, nil
}

func (s *articleService) Delete(ctx context.Context, actor, id string) error {
	if id == "" {
		return &NotFoundError{What: "Artículo"}
	}
	if err := s.api.DeleteArticle(ctx, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}

	s.audit.Record(ctx, AuditEntry{
		Username: actor,
		Action:   model.ActionDeleteArticle,
		EntityID: id,
		Details:  map[string]bool{"deleted": true},
	})
	s.push.Publish(EventArticleDeleted, id)
	return nil
}

// FilterArticles searches code, name, description and record type
func FilterArticles(articles []model.Article, query string) []model.Article {
	return search.Filter(articles, query, func(a model.Article) []string {
		return []string{a.Code, a.Name, a.Description, a.RecordType}
	})
}

// LowStock keeps the articles at or below the low-stock threshold
func LowStock(articles []model.Article) []model.Article {
	out := make([]model.Article, 0)
	for _, a := range articles {
		if a.LowStock() {
			out = append(out, a)
		}
	}
	return out
}

// CategorySummaries aggregates the article list per record type. Articles with an
// unknown record type are grouped under their own label after the known ones.
func CategorySummaries(articles []model.Article) []model.CategorySummary {
	index := make(map[string]int)
	var out []model.CategorySummary
	for _, rt := range model.RecordTypes() {
		index[rt] = len(out)
		out = append(out, model.CategorySummary{RecordType: rt})
	}

	for _, a := range articles {
		rt := a.RecordType
		if rt == "" {
			rt = "Sin tipo"
		}
		i, ok := index[rt]
		if !ok {
			i = len(out)
			index[rt] = i
			out = append(out, model.CategorySummary{RecordType: rt})
		}
		out[i].Articles++
		out[i].TotalStock += a.Stock
		if a.LowStock() {
			out[i].LowStock++
		}
	}
	return out
}

// FindArticle resolves what the user typed or selected: exact id, exact code,
// exact name ignoring case, then the first name containing the text.
func FindArticle(articles []model.Article, ref string) (model.Article, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Article{}, false
	}
	for _, a := range articles {
		if a.ID != "" && a.ID == ref {
			return a, true
		}
	}
	for _, a := range articles {
		if a.Code == ref {
			return a, true
		}
	}
	for _, a := range articles {
		if strings.EqualFold(a.Name, ref) {
			return a, true
		}
	}
	lower := strings.ToLower(ref)
	for _, a := range articles {
		if strings.Contains(strings.ToLower(a.Name), lower) {
			return a, true
		}
	}
	return model.Article{}, false
}
