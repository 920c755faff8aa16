package service

import (
	"context"
	"fmt"
	"sync"

	"simplegest/internal/apiclient"
	"simplegest/internal/model"
)

// fakeBackend stands in for *apiclient.Client in service tests
type fakeBackend struct {
	mu sync.Mutex

	articles []model.Article
	requests []model.Request
	loans    []model.Loan
	users    []model.User
	summary  model.DashboardSummary
	login    apiclient.LoginResponse

	created    []model.NewRequest
	registered []model.User
	calls      []string
	fail       map[string]error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{fail: make(map[string]error)}
}

func (f *fakeBackend) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	for prefix, err := range f.fail {
		if len(call) >= len(prefix) && call[:len(prefix)] == prefix {
			return err
		}
	}
	return nil
}

func (f *fakeBackend) ListArticles(context.Context) ([]model.Article, error) {
	if err := f.record("ListArticles"); err != nil {
		return nil, err
	}
	return append([]model.Article(nil), f.articles...), nil
}

func (f *fakeBackend) CreateArticle(_ context.Context, a model.Article) (model.Article, error) {
	if err := f.record("CreateArticle"); err != nil {
		return model.Article{}, err
	}
	a.ID = fmt.Sprintf("art-%d", len(f.articles)+1)
	f.articles = append(f.articles, a)
	return a, nil
}

func (f *fakeBackend) UpdateArticle(_ context.Context, id string, a model.Article) (model.Article, error) {
	if err := f.record("UpdateArticle " + id); err != nil {
		return model.Article{}, err
	}
	for i := range f.articles {
		if f.articles[i].ID == id {
			a.ID = id
			f.articles[i] = a
			return a, nil
		}
	}
	return model.Article{}, &apiclient.RequestError{StatusCode: 404, Body: `{"message":"Artículo no encontrado"}`}
}

func (f *fakeBackend) UpdateArticleStock(_ context.Context, id string, stock int) (model.Article, error) {
	if err := f.record(fmt.Sprintf("UpdateArticleStock %s %d", id, stock)); err != nil {
		return model.Article{}, err
	}
	for i := range f.articles {
		if f.articles[i].ID == id {
			f.articles[i].Stock = stock
			return f.articles[i], nil
		}
	}
	return model.Article{}, &apiclient.RequestError{StatusCode: 404}
}

func (f *fakeBackend) DeleteArticle(_ context.Context, id string) error {
	return f.record("DeleteArticle " + id)
}

func (f *fakeBackend) ListRequests(context.Context) ([]model.Request, error) {
	if err := f.record("ListRequests"); err != nil {
		return nil, err
	}
	return append([]model.Request(nil), f.requests...), nil
}

func (f *fakeBackend) ListAllRequests(context.Context) ([]model.Request, error) {
	if err := f.record("ListAllRequests"); err != nil {
		return nil, err
	}
	return append([]model.Request(nil), f.requests...), nil
}

func (f *fakeBackend) CreateRequest(_ context.Context, r model.NewRequest) (model.Request, error) {
	if err := f.record("CreateRequest"); err != nil {
		return model.Request{}, err
	}
	f.created = append(f.created, r)
	return model.Request{ID: "sol-1", RequesterName: r.RequesterName, Status: r.Status}, nil
}

func (f *fakeBackend) UpdateRequestStatus(_ context.Context, id string, status model.RequestStatus) (model.Request, error) {
	if err := f.record(fmt.Sprintf("UpdateRequestStatus %s %s", id, status)); err != nil {
		return model.Request{}, err
	}
	return model.Request{ID: id, Status: status}, nil
}

func (f *fakeBackend) UpdateRequestMaterial(_ context.Context, id string, index, quantity int) (model.Request, error) {
	if err := f.record(fmt.Sprintf("UpdateRequestMaterial %s %d %d", id, index, quantity)); err != nil {
		return model.Request{}, err
	}
	return model.Request{ID: id}, nil
}

func (f *fakeBackend) DeleteRequest(_ context.Context, id string) error {
	return f.record("DeleteRequest " + id)
}

func (f *fakeBackend) ListLoans(context.Context) ([]model.Loan, error) {
	if err := f.record("ListLoans"); err != nil {
		return nil, err
	}
	return append([]model.Loan(nil), f.loans...), nil
}

func (f *fakeBackend) CreateLoan(_ context.Context, l model.Loan) (model.Loan, error) {
	if err := f.record("CreateLoan"); err != nil {
		return model.Loan{}, err
	}
	l.ID = fmt.Sprintf("pre-%d", len(f.loans)+1)
	f.loans = append(f.loans, l)
	return l, nil
}

func (f *fakeBackend) UpdateLoan(_ context.Context, id string, d model.LoanDelivery) (model.Loan, error) {
	if err := f.record(fmt.Sprintf("UpdateLoan %s %s %s", id, d.Delivered, d.ReturnDate)); err != nil {
		return model.Loan{}, err
	}
	for i := range f.loans {
		if f.loans[i].ID == id {
			f.loans[i].Delivered = d.Delivered
			f.loans[i].ReturnDate = d.ReturnDate
			return f.loans[i], nil
		}
	}
	return model.Loan{}, &apiclient.RequestError{StatusCode: 404}
}

func (f *fakeBackend) Login(_ context.Context, creds apiclient.Credentials) (apiclient.LoginResponse, error) {
	if err := f.record("Login " + creds.Username); err != nil {
		return apiclient.LoginResponse{}, err
	}
	return f.login, nil
}

func (f *fakeBackend) Register(_ context.Context, u model.User) (apiclient.RegisterResponse, error) {
	if err := f.record("Register " + u.Username); err != nil {
		return apiclient.RegisterResponse{}, err
	}
	f.registered = append(f.registered, u)
	return apiclient.RegisterResponse{Message: "Usuario registrado"}, nil
}

func (f *fakeBackend) ListUsers(context.Context) ([]model.User, error) {
	if err := f.record("ListUsers"); err != nil {
		return nil, err
	}
	return append([]model.User(nil), f.users...), nil
}

func (f *fakeBackend) DeleteUser(_ context.Context, id string) (string, error) {
	if err := f.record("DeleteUser " + id); err != nil {
		return "", err
	}
	return "", nil
}

func (f *fakeBackend) DashboardSummary(context.Context) (model.DashboardSummary, error) {
	if err := f.record("DashboardSummary"); err != nil {
		return model.DashboardSummary{}, err
	}
	return f.summary, nil
}

// calledWith reports whether a call starting with prefix was issued
func (f *fakeBackend) calledWith(prefix string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

type fakeAudit struct {
	entries []AuditEntry
}

func (a *fakeAudit) Record(_ context.Context, e AuditEntry) { a.entries = append(a.entries, e) }

func (a *fakeAudit) GetAuditLogs(context.Context, string, int, int) ([]AuditLogResponse, int64, error) {
	return nil, 0, nil
}

func (a *fakeAudit) Enabled() bool { return true }

func (a *fakeAudit) actions() []string {
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

type published struct {
	event string
	data  any
}

type fakePublisher struct {
	events []published
}

func (p *fakePublisher) Publish(event string, data any) {
	p.events = append(p.events, published{event, data})
}

func boolPtr(b bool) *bool { return &b }
