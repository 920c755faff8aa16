package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"simplegest/internal/model"
)

func (c *Client) ListArticles(ctx context.Context) ([]model.Article, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, "/api/articulos", Options{}, &raw); err != nil {
		return nil, err
	}
	return decodeList[model.Article](raw)
}

func (c *Client) CreateArticle(ctx context.Context, a model.Article) (model.Article, error) {
	a.ID = ""
	var created model.Article
	err := c.Do(ctx, "/api/articulos", Options{Method: http.MethodPost, Body: a}, &created)
	return created, err
}

func (c *Client) UpdateArticle(ctx context.Context, id string, a model.Article) (model.Article, error) {
	a.ID = ""
	var updated model.Article
	err := c.Do(ctx, "/api/articulos/"+url.PathEscape(id), Options{Method: http.MethodPut, Body: a}, &updated)
	return updated, err
}

func (c *Client) UpdateArticleStock(ctx context.Context, id string, stock int) (model.Article, error) {
	var updated model.Article
	body := map[string]int{"stock": stock}
	err := c.Do(ctx, "/api/articulos/"+url.PathEscape(id)+"/stock", Options{Method: http.MethodPut, Body: body}, &updated)
	return updated, err
}

func (c *Client) DeleteArticle(ctx context.Context, id string) error {
	return c.Do(ctx, "/api/articulos/"+url.PathEscape(id), Options{Method: http.MethodDelete}, nil)
}
