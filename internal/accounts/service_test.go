package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billfold-dev/billfold/internal/model"
)

func TestNewService(t *testing.T) {
	svc := NewService(DefaultAccounts(model.BudgetHousehold))
	assert.Len(t, svc.All(), 3)
}

func TestGetExists(t *testing.T) {
	svc := NewService(DefaultAccounts(model.BudgetHousehold))

	acct, ok := svc.Get(101)
	assert.True(t, ok)
	assert.Equal(t, "Checking", acct.Name)

	_, ok = svc.Get(9999)
	assert.False(t, ok)

	assert.True(t, svc.Exists(101))
	assert.False(t, svc.Exists(9999))
}

func TestByBudgetType(t *testing.T) {
	all := append(DefaultAccounts(model.BudgetHousehold), DefaultAccounts(model.BudgetBusiness)...)
	svc := NewService(all)

	household := svc.ByBudgetType(model.BudgetHousehold)
	assert.Len(t, household, 3)
	for _, a := range household {
		assert.Equal(t, model.BudgetHousehold, a.BudgetType)
	}

	business := svc.ByBudgetType(model.BudgetBusiness)
	assert.Len(t, business, 2)
}

func TestByName(t *testing.T) {
	svc := NewService(DefaultAccounts(model.BudgetHousehold))

	acct, ok := svc.ByName("checking")
	assert.True(t, ok)
	assert.Equal(t, 101, acct.ID)

	_, ok = svc.ByName("nope")
	assert.False(t, ok)
}

func TestAdd(t *testing.T) {
	svc := NewService(DefaultAccounts(model.BudgetHousehold))

	acctID, err := svc.Add(model.Account{Name: "Brokerage", BudgetType: model.BudgetHousehold})
	require.NoError(t, err)
	assert.Equal(t, 202, acctID, "next ID after the default register")
	assert.True(t, svc.Exists(acctID))
}

func TestAdd_Invalid(t *testing.T) {
	svc := NewService(nil)

	_, err := svc.Add(model.Account{Name: "X", BudgetType: "retirement"})
	require.Error(t, err)

	_, err = svc.Add(model.Account{BudgetType: model.BudgetHousehold})
	require.Error(t, err)
}

func TestUpdate(t *testing.T) {
	svc := NewService(DefaultAccounts(model.BudgetHousehold))

	acct, _ := svc.Get(201)
	acct.PaymentDueDay = 22
	require.NoError(t, svc.Update(acct))

	got, _ := svc.Get(201)
	assert.Equal(t, 22, got.PaymentDueDay)

	acct.ID = 9999
	assert.Error(t, svc.Update(acct))
}

func TestAdjustBalance(t *testing.T) {
	svc := NewService(DefaultAccounts(model.BudgetHousehold))

	require.NoError(t, svc.AdjustBalance(101, dec("100.00")))
	require.NoError(t, svc.AdjustBalance(101, dec("-40.50")))

	acct, _ := svc.Get(101)
	assert.True(t, acct.Balance.Equal(dec("59.50")), "got %s", acct.Balance)

	assert.Error(t, svc.AdjustBalance(9999, dec("1.00")))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	svc := NewService(DefaultAccounts(model.BudgetHousehold))
	require.NoError(t, svc.AdjustBalance(101, dec("500.00")))

	dir := t.TempDir()
	require.NoError(t, svc.Save(dir))

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, got.All(), 3)

	acct, ok := got.Get(101)
	require.True(t, ok)
	assert.True(t, acct.Balance.Equal(dec("500.00")))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
}
