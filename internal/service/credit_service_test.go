package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/apierror"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditLedger_BalanceAfterFoldsEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Atta 10kg", "450", "10", "2")
	c := f.customer(t, "Sunil")

	f.sell(t, "credit", &c.ID, line(p, "1"))
	f.sell(t, "credit", &c.ID, line(p, "2"))
	_, err := f.credit.AddCreditPayment(ctx, c.ID, dto.CreditPaymentRequest{Amount: dec("500")})
	require.NoError(t, err)

	ledger, err := f.credit.Ledger(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 3)
	want := []string{"450", "1350", "850"}
	for i, e := range ledger {
		assert.True(t, e.BalanceAfter.Equal(dec(want[i])), "entry %d: %s", i, e.BalanceAfter)
	}
	assert.Equal(t, model.EntryPayment, ledger[2].EntryType)

	owed, err := f.credit.GetOutstandingCredit(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, owed.Equal(dec("850")))

	resp, err := f.customers.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, resp.Outstanding.Equal(dec("850")))
}

func TestCreditPayment_OverpaymentGoesNegative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Kavita")

	e, err := f.credit.AddCreditPayment(ctx, c.ID, dto.CreditPaymentRequest{Amount: dec("75.5")})
	require.NoError(t, err)
	assert.True(t, e.BalanceAfter.Equal(dec("-75.5")))
}

func TestCreditPayment_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Farid")

	_, err := f.credit.AddCreditPayment(ctx, c.ID, dto.CreditPaymentRequest{Amount: dec("0")})
	assert.ErrorIs(t, err, apierror.ErrValidation)

	_, err = f.credit.AddCreditPayment(ctx, uuid.NewString(), dto.CreditPaymentRequest{Amount: dec("10")})
	assert.ErrorIs(t, err, apierror.ErrNotFound)

	_, err = f.credit.Ledger(ctx, uuid.NewString())
	assert.ErrorIs(t, err, apierror.ErrNotFound)

	owed, err := f.credit.GetOutstandingCredit(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, owed.IsZero())
}

func TestCustomers_ListWithOutstandingAndDeactivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Poha", "50", "10", "2")
	a := f.customer(t, "Anil")
	b := f.customer(t, "Bina")
	f.sell(t, "credit", &b.ID, line(p, "2"))

	list, err := f.customers.List(ctx, dto.CustomerFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Anil", list[0].Name, "ordered by name")
	assert.True(t, list[0].Outstanding.IsZero())
	assert.True(t, list[1].Outstanding.Equal(dec("100")))

	require.NoError(t, f.customers.Deactivate(ctx, a.ID))
	active, err := f.customers.List(ctx, dto.CustomerFilter{})
	require.NoError(t, err)
	require.Len(t, active, 1)

	all, err := f.customers.List(ctx, dto.CustomerFilter{Active: "all"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// inactive customers cannot take new bills
	_, err = f.bills.CreateBill(ctx, dto.CreateBillRequest{Items: []dto.CartItem{line(p, "1")}, PaymentMode: "cash", CustomerID: &a.ID})
	assert.ErrorIs(t, err, apierror.ErrInvalidState)

	require.NoError(t, f.customers.Reactivate(ctx, a.ID))
	name := "Anil Kumar"
	u, err := f.customers.Update(ctx, a.ID, dto.UpdateCustomerRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Anil Kumar", u.Name)

	found, err := f.customers.List(ctx, dto.CustomerFilter{Search: "kumar"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, a.ID, found[0].ID)
}
