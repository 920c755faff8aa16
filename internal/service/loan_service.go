package service

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"simplegest/internal/model"
	"simplegest/pkg/search"
)

// ReturnDateLayout is how return and loan dates are sent to the backend
const ReturnDateLayout = "2006-01-02"

type LoanAPI interface {
	ListLoans(ctx context.Context) ([]model.Loan, error)
	CreateLoan(ctx context.Context, l model.Loan) (model.Loan, error)
	UpdateLoan(ctx context.Context, id string, d model.LoanDelivery) (model.Loan, error)
}

// LoanInput is the Préstamos form
type LoanInput struct {
	Code      string `form:"codigoPrestamo" json:"codigoPrestamo"`
	Article   string `form:"articulo" json:"articulo"`
	Quantity  int    `form:"cantidad" json:"cantidad"`
	Requester string `form:"nombre" json:"nombre"`
	LoanDate  string `form:"fechaPrestamo" json:"fechaPrestamo"`
}

// NewestFirst returns the backend's chronological list reversed
func NewestFirst(loans []model.Loan) []model.Loan {
	out := slices.Clone(loans)
	slices.Reverse(out)
	return out
}

// FilterLoans searches loan code, loan date, article and requester
func FilterLoans(loans []model.Loan, query string) []model.Loan {
	return search.Filter(loans, query, func(l model.Loan) []string {
		return []string{l.Code, l.LoanDate, l.Article, l.Requester}
	})
}

// ApplyDelivery sets the delivered flag: Si stamps today's date, No clears it
func ApplyDelivery(loan model.Loan, delivered bool, now time.Time) model.Loan {
	if delivered {
		loan.Delivered = model.DeliveredYes
		loan.ReturnDate = now.Format(ReturnDateLayout)
	} else {
		loan.Delivered = model.DeliveredNo
		loan.ReturnDate = ""
	}
	return loan
}

type LoanService interface {
	// List returns loans newest first
	List(ctx context.Context) ([]model.Loan, error)
	Create(ctx context.Context, actor string, in LoanInput) (model.Loan, error)
	// SetDelivered patches the loan in the current list, persists it and, when the
	// update fails, returns the reloaded list alongside the error.
	SetDelivered(ctx context.Context, actor, id string, delivered bool) ([]model.Loan, error)
}

type loanService struct {
	api   LoanAPI
	audit AuditService
	now   func() time.Time
}

func NewLoanService(api LoanAPI, audit AuditService) LoanService {
	return &loanService{api: api, audit: audit, now: time.Now}
}

func (s *loanService) List(ctx context.Context) ([]model.Loan, error) {
	loans, err := s.api.ListLoans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return NewestFirst(loans), nil
}

func (s *loanService) Create(ctx context.Context, actor string, in LoanInput) (model.Loan, error) {
	loan := model.Loan{
		Code:      strings.TrimSpace(in.Code),
		Article:   strings.TrimSpace(in.Article),
		Quantity:  in.Quantity,
		Requester: strings.TrimSpace(in.Requester),
		LoanDate:  strings.TrimSpace(in.LoanDate),
		Delivered: model.DeliveredNo,
	}
	switch {
	case loan.Code == "":
		return model.Loan{}, invalid("El código de préstamo es obligatorio")
	case loan.Article == "":
		return model.Loan{}, invalid("El artículo es obligatorio")
	case loan.Quantity < 1:
		return model.Loan{}, invalid("La cantidad debe ser mayor a 0")
	case loan.Requester == "":
		return model.Loan{}, invalid("El nombre es obligatorio")
	}
	if loan.LoanDate == "" {
		loan.LoanDate = s.now().Format(ReturnDateLayout)
	}

	created, err := s.api.CreateLoan(ctx, loan)
	if err != nil {
		return model.Loan{}, fmt.Errorf("create loan: %w", err)
	}

	s.audit.Record(ctx, AuditEntry{
		Username:   actor,
		Action:     model.ActionCreateLoan,
		EntityID:   created.ID,
		EntityName: loan.Code,
		Details:    in,
	})
	return created, nil
}

func (s *loanService) SetDelivered(ctx context.Context, actor, id string, delivered bool) ([]model.Loan, error) {
	loans, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(loans, func(l model.Loan) bool { return l.ID == id })
	if idx < 0 {
		return loans, &NotFoundError{What: "Préstamo"}
	}
	if loans[idx].IsDelivered() == delivered {
		return loans, nil
	}

	patched := ApplyDelivery(loans[idx], delivered, s.now())
	loans[idx] = patched

	_, err = s.api.UpdateLoan(ctx, id, model.LoanDelivery{Delivered: patched.Delivered, ReturnDate: patched.ReturnDate})
	if err != nil {
		updateErr := fmt.Errorf("update loan: %w", err)
		reloaded, reloadErr := s.List(ctx)
		if reloadErr != nil {
			log.Printf("loans: reload after failed update: %v", reloadErr)
			return nil, updateErr
		}
		return reloaded, updateErr
	}

	s.audit.Record(ctx, AuditEntry{
		Username:   actor,
		Action:     model.ActionUpdateLoanDelivery,
		EntityID:   id,
		EntityName: patched.Code,
		Details:    map[string]string{"entregado": patched.Delivered, "fechaDevolucion": patched.ReturnDate},
	})
	return loans, nil
}
