package service

import (
	"context"
	"testing"
	"time"

	"simplegest/internal/apiclient"
	"simplegest/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loanClock = time.Date(2024, 7, 15, 16, 45, 0, 0, time.UTC)

func newTestLoanService(api *fakeBackend, audit AuditService) *loanService {
	svc := NewLoanService(api, audit).(*loanService)
	svc.now = func() time.Time { return loanClock }
	return svc
}

func TestApplyDelivery(t *testing.T) {
	loan := model.Loan{Code: "P1", Delivered: model.DeliveredNo}

	got := ApplyDelivery(loan, true, loanClock)
	assert.Equal(t, model.DeliveredYes, got.Delivered)
	assert.Equal(t, "2024-07-15", got.ReturnDate)

	got = ApplyDelivery(got, false, loanClock)
	assert.Equal(t, model.DeliveredNo, got.Delivered)
	assert.Empty(t, got.ReturnDate)
}

func TestLoansListedNewestFirst(t *testing.T) {
	api := newFakeBackend()
	api.loans = []model.Loan{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	svc := newTestLoanService(api, &fakeAudit{})

	loans, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2", "1"}, []string{loans[0].ID, loans[1].ID, loans[2].ID})
	assert.Equal(t, "1", api.loans[0].ID, "backend order untouched")
}

func TestCreateLoanAppearsFirst(t *testing.T) {
	api := newFakeBackend()
	api.loans = []model.Loan{{ID: "old", Code: "P0"}}
	audit := &fakeAudit{}
	svc := newTestLoanService(api, audit)

	created, err := svc.Create(context.Background(), "ana", LoanInput{Code: "P1", Article: "Taladro", Quantity: 1, Requester: "Luis"})
	require.NoError(t, err)
	assert.Equal(t, "2024-07-15", created.LoanDate)
	assert.Equal(t, model.DeliveredNo, created.Delivered)

	loans, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "P1", loans[0].Code)
	assert.Equal(t, []string{model.ActionCreateLoan}, audit.actions())
}

func TestCreateLoanValidation(t *testing.T) {
	api := newFakeBackend()
	svc := newTestLoanService(api, &fakeAudit{})

	for _, in := range []LoanInput{
		{Article: "a", Quantity: 1, Requester: "r"},
		{Code: "c", Quantity: 1, Requester: "r"},
		{Code: "c", Article: "a", Requester: "r"},
		{Code: "c", Article: "a", Quantity: 1},
	} {
		_, err := svc.Create(context.Background(), "ana", in)
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.False(t, api.calledWith("CreateLoan"))
}

func TestSetDeliveredStampsDate(t *testing.T) {
	api := newFakeBackend()
	api.loans = []model.Loan{{ID: "1", Code: "P1", Delivered: model.DeliveredNo}}
	audit := &fakeAudit{}
	svc := newTestLoanService(api, audit)

	loans, err := svc.SetDelivered(context.Background(), "ana", "1", true)
	require.NoError(t, err)
	assert.Equal(t, model.DeliveredYes, loans[0].Delivered)
	assert.Equal(t, "2024-07-15", loans[0].ReturnDate)
	assert.True(t, api.calledWith("UpdateLoan 1 Si 2024-07-15"))
	assert.Equal(t, []string{model.ActionUpdateLoanDelivery}, audit.actions())
}

func TestSetDeliveredReloadsOnFailure(t *testing.T) {
	api := newFakeBackend()
	api.loans = []model.Loan{{ID: "1", Code: "P1", Delivered: model.DeliveredNo}}
	api.fail["UpdateLoan"] = &apiclient.RequestError{StatusCode: 500, Body: "caído"}
	svc := newTestLoanService(api, &fakeAudit{})

	loans, err := svc.SetDelivered(context.Background(), "ana", "1", true)
	require.Error(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, model.DeliveredNo, loans[0].Delivered, "reconciled with the backend")
	assert.Empty(t, loans[0].ReturnDate)
	assert.Equal(t, "caído", UserMessage(err, "x"))
}

func TestSetDeliveredNoopAndMissing(t *testing.T) {
	api := newFakeBackend()
	api.loans = []model.Loan{{ID: "1", Delivered: model.DeliveredYes, ReturnDate: "2024-07-01"}}
	svc := newTestLoanService(api, &fakeAudit{})

	loans, err := svc.SetDelivered(context.Background(), "ana", "1", true)
	require.NoError(t, err)
	assert.Equal(t, "2024-07-01", loans[0].ReturnDate)
	assert.False(t, api.calledWith("UpdateLoan"))

	_, err = svc.SetDelivered(context.Background(), "ana", "9", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFilterLoans(t *testing.T) {
	loans := []model.Loan{
		{Code: "P1", Article: "Taladro", Requester: "Luis", LoanDate: "2024-07-01"},
		{Code: "P2", Article: "Escalera", Requester: "Ana", LoanDate: "2024-08-01"},
	}
	assert.Len(t, FilterLoans(loans, "tala"), 1)
	assert.Len(t, FilterLoans(loans, "2024-08"), 1)
	assert.Len(t, FilterLoans(loans, "p"), 2)
}
