package ledger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billfold-dev/billfold/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// mockAccounts implements AccountStore for testing.
type mockAccounts struct {
	accts    map[int]model.Account
	balances map[int]decimal.Decimal
}

func newMockAccounts(accts ...model.Account) *mockAccounts {
	m := &mockAccounts{
		accts:    make(map[int]model.Account),
		balances: make(map[int]decimal.Decimal),
	}
	for _, a := range accts {
		m.accts[a.ID] = a
		m.balances[a.ID] = decimal.Zero
	}
	return m
}

func (m *mockAccounts) Exists(acctID int) bool {
	_, ok := m.accts[acctID]
	return ok
}

func (m *mockAccounts) Get(acctID int) (model.Account, bool) {
	a, ok := m.accts[acctID]
	return a, ok
}

func (m *mockAccounts) AdjustBalance(acctID int, delta decimal.Decimal) error {
	m.balances[acctID] = m.balances[acctID].Add(delta)
	return nil
}

// mockCategories implements CategoryChecker for testing.
type mockCategories map[int]bool

func (m mockCategories) Exists(catID int) bool { return m[catID] }

func testService(t *testing.T) (*Service, *mockAccounts, string) {
	t.Helper()
	dir := t.TempDir()
	accts := newMockAccounts(
		model.Account{ID: 1, Name: "Checking", BudgetType: model.BudgetHousehold},
		model.Account{ID: 2, Name: "Savings", BudgetType: model.BudgetHousehold},
		model.Account{ID: 3, Name: "Business Checking", BudgetType: model.BudgetBusiness},
	)
	cats := mockCategories{10: true, 11: true}
	return NewService(dir, accts, cats), accts, dir
}

func TestAdd_NewMonth(t *testing.T) {
	svc, accts, dir := testService(t)

	txnID, err := svc.Add(AddParams{
		Date:        date(2025, 6, 15),
		Description: "Groceries run",
		Amount:      dec("-82.50"),
		AccountID:   1,
		CategoryID:  10,
		BudgetType:  model.BudgetHousehold,
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-001", txnID)

	// Verify file was created.
	_, err = os.Stat(filepath.Join(dir, "2025", "06", "transactions.csv"))
	require.NoError(t, err)

	txns, err := svc.ReadMonth(2025, 6)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.True(t, txns[0].Amount.Equal(dec("-82.50")))

	assert.True(t, accts.balances[1].Equal(dec("-82.50")), "stored balance tracks the outflow")
}

func TestAdd_SequentialIDs(t *testing.T) {
	svc, _, _ := testService(t)

	first, err := svc.Add(AddParams{
		Date: date(2025, 6, 1), Description: "First", Amount: dec("-1.00"),
		AccountID: 1, CategoryID: 10, BudgetType: model.BudgetHousehold,
	})
	require.NoError(t, err)

	second, err := svc.Add(AddParams{
		Date: date(2025, 6, 2), Description: "Second", Amount: dec("-2.00"),
		AccountID: 1, CategoryID: 10, BudgetType: model.BudgetHousehold,
	})
	require.NoError(t, err)

	assert.Equal(t, "2025-06-001", first)
	assert.Equal(t, "2025-06-002", second)
}

func TestAdd_ValidationFailure(t *testing.T) {
	svc, _, _ := testService(t)

	_, err := svc.Add(AddParams{
		Date: date(2025, 6, 15), Description: "Bad", Amount: dec("-5.00"),
		AccountID: 99, CategoryID: 10, BudgetType: model.BudgetHousehold,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	// Nothing was written.
	txns, err := svc.ReadMonth(2025, 6)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestAdd_BudgetTypeMismatch(t *testing.T) {
	svc, _, _ := testService(t)

	_, err := svc.Add(AddParams{
		Date: date(2025, 6, 15), Description: "Wrong book", Amount: dec("-5.00"),
		AccountID: 1, CategoryID: 10, BudgetType: model.BudgetBusiness,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "budget type")
}

func TestAddTransfer_Pair(t *testing.T) {
	svc, accts, _ := testService(t)

	ids, err := svc.AddTransfer(TransferParams{
		Date:          date(2025, 6, 10),
		Description:   "To savings",
		Amount:        dec("500.00"),
		FromAccountID: 1,
		ToAccountID:   2,
		CategoryID:    11,
	}, LinkPair)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	source, err := svc.Get(ids[0])
	require.NoError(t, err)
	dest, err := svc.Get(ids[1])
	require.NoError(t, err)

	// The two legs sum to zero and reference each other.
	assert.True(t, source.Amount.Add(dest.Amount).IsZero())
	assert.Equal(t, dest.ID, source.LinkedID)
	assert.Equal(t, source.ID, dest.LinkedID)
	assert.True(t, source.MirrorsLink(dest))

	assert.True(t, source.Amount.Equal(dec("-500.00")))
	assert.Equal(t, 2, source.ToAccountID)
	assert.Equal(t, 2, dest.AccountID)

	assert.True(t, accts.balances[1].Equal(dec("-500.00")))
	assert.True(t, accts.balances[2].Equal(dec("500.00")))
}

func TestAddTransfer_CrossBook(t *testing.T) {
	svc, _, _ := testService(t)

	// Household -> business: each leg carries its own account's budget type.
	ids, err := svc.AddTransfer(TransferParams{
		Date:          date(2025, 6, 10),
		Description:   "Owner contribution",
		Amount:        dec("1000.00"),
		FromAccountID: 1,
		ToAccountID:   3,
		CategoryID:    11,
	}, LinkPair)
	require.NoError(t, err)

	source, _ := svc.Get(ids[0])
	dest, _ := svc.Get(ids[1])
	assert.Equal(t, model.BudgetHousehold, source.BudgetType)
	assert.Equal(t, model.BudgetBusiness, dest.BudgetType)
}

func TestAddTransfer_LinkExisting(t *testing.T) {
	svc, accts, _ := testService(t)

	// An unlinked deposit already sits in the destination account.
	existingID, err := svc.Add(AddParams{
		Date: date(2025, 6, 5), Description: "Deposit", Amount: dec("250.00"),
		AccountID: 2, CategoryID: 10, BudgetType: model.BudgetHousehold,
	})
	require.NoError(t, err)

	ids, err := svc.AddTransfer(TransferParams{
		Date:          date(2025, 6, 10),
		Description:   "To savings",
		Amount:        dec("250.00"),
		FromAccountID: 1,
		ToAccountID:   2,
		CategoryID:    11,
	}, LinkExisting)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, existingID, ids[1])

	source, _ := svc.Get(ids[0])
	dest, _ := svc.Get(existingID)
	assert.True(t, source.MirrorsLink(dest))

	// The existing deposit already moved the balance once.
	assert.True(t, accts.balances[1].Equal(dec("-250.00")))
	assert.True(t, accts.balances[2].Equal(dec("250.00")))
}

func TestAddTransfer_LinkExisting_NoMatch(t *testing.T) {
	svc, _, _ := testService(t)

	_, err := svc.AddTransfer(TransferParams{
		Date:          date(2025, 6, 10),
		Description:   "To savings",
		Amount:        dec("250.00"),
		FromAccountID: 1,
		ToAccountID:   2,
		CategoryID:    11,
	}, LinkExisting)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no unlinked transaction")
}

func TestAddTransfer_NoLink(t *testing.T) {
	svc, _, _ := testService(t)

	ids, err := svc.AddTransfer(TransferParams{
		Date:          date(2025, 6, 10),
		Description:   "To savings",
		Amount:        dec("100.00"),
		FromAccountID: 1,
		ToAccountID:   2,
		CategoryID:    11,
	}, LinkNone)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	source, _ := svc.Get(ids[0])
	assert.Equal(t, 2, source.ToAccountID)
	assert.False(t, source.IsLinked())
}

func TestAddTransfer_RejectsNonPositive(t *testing.T) {
	svc, _, _ := testService(t)

	for _, amt := range []string{"0", "-50.00"} {
		_, err := svc.AddTransfer(TransferParams{
			Date: date(2025, 6, 10), Amount: dec(amt),
			FromAccountID: 1, ToAccountID: 2, CategoryID: 11,
		}, LinkPair)
		assert.Error(t, err, "amount %s", amt)
	}
}

func transferPair(t *testing.T, svc *Service) (string, string) {
	t.Helper()
	ids, err := svc.AddTransfer(TransferParams{
		Date:          date(2025, 6, 10),
		Description:   "To savings",
		Amount:        dec("300.00"),
		FromAccountID: 1,
		ToAccountID:   2,
		CategoryID:    11,
	}, LinkPair)
	require.NoError(t, err)
	return ids[0], ids[1]
}

func TestDelete_BothLegs(t *testing.T) {
	svc, accts, _ := testService(t)
	sourceID, destID := transferPair(t, svc)

	require.NoError(t, svc.Delete(sourceID, true))

	_, err := svc.Get(sourceID)
	assert.Error(t, err)
	_, err = svc.Get(destID)
	assert.Error(t, err)

	assert.True(t, accts.balances[1].IsZero(), "balances restored")
	assert.True(t, accts.balances[2].IsZero())
}

func TestDelete_SeverSurvivor(t *testing.T) {
	svc, accts, _ := testService(t)
	sourceID, destID := transferPair(t, svc)

	require.NoError(t, svc.Delete(sourceID, false))

	_, err := svc.Get(sourceID)
	assert.Error(t, err)

	survivor, err := svc.Get(destID)
	require.NoError(t, err)
	assert.False(t, survivor.IsLinked(), "survivor's link is cleared")

	assert.True(t, accts.balances[1].IsZero())
	assert.True(t, accts.balances[2].Equal(dec("300.00")), "survivor still counts")
}

func TestDelete_Unlinked(t *testing.T) {
	svc, accts, _ := testService(t)

	txnID, err := svc.Add(AddParams{
		Date: date(2025, 6, 1), Description: "Coffee", Amount: dec("-4.50"),
		AccountID: 1, CategoryID: 10, BudgetType: model.BudgetHousehold,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(txnID, false))
	assert.True(t, accts.balances[1].IsZero())

	assert.Error(t, svc.Delete(txnID, false), "double delete fails")
}

func TestNextSeq_NotReusedAfterDelete(t *testing.T) {
	svc, _, _ := testService(t)

	first, err := svc.Add(AddParams{
		Date: date(2025, 6, 1), Description: "First", Amount: dec("-1.00"),
		AccountID: 1, CategoryID: 10, BudgetType: model.BudgetHousehold,
	})
	require.NoError(t, err)
	_, err = svc.Add(AddParams{
		Date: date(2025, 6, 2), Description: "Second", Amount: dec("-2.00"),
		AccountID: 1, CategoryID: 10, BudgetType: model.BudgetHousehold,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(first, false))

	third, err := svc.Add(AddParams{
		Date: date(2025, 6, 3), Description: "Third", Amount: dec("-3.00"),
		AccountID: 1, CategoryID: 10, BudgetType: model.BudgetHousehold,
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-003", third, "sequence numbers are never reused")
}

func TestUpdate_Propagate(t *testing.T) {
	svc, accts, _ := testService(t)
	sourceID, destID := transferPair(t, svc)

	newAmount := dec("-350.00")
	newDesc := "To savings (corrected)"
	newDate := date(2025, 6, 12)
	taxFlag := true
	require.NoError(t, svc.Update(sourceID, UpdateParams{
		Date:          &newDate,
		Description:   &newDesc,
		Amount:        &newAmount,
		TaxDeductible: &taxFlag,
	}, true))

	source, err := svc.Get(sourceID)
	require.NoError(t, err)
	dest, err := svc.Get(destID)
	require.NoError(t, err)

	assert.True(t, source.MirrorsLink(dest), "pair stays mutual and negated")
	assert.True(t, dest.Amount.Equal(dec("350.00")))
	assert.Equal(t, newDesc, dest.Description)
	assert.Equal(t, newDate, dest.Date)
	assert.True(t, dest.TaxDeductible)

	assert.True(t, accts.balances[1].Equal(dec("-350.00")))
	assert.True(t, accts.balances[2].Equal(dec("350.00")))
}

func TestUpdate_UnilateralSevers(t *testing.T) {
	svc, _, _ := testService(t)
	sourceID, destID := transferPair(t, svc)

	newDesc := "Not a transfer after all"
	require.NoError(t, svc.Update(sourceID, UpdateParams{Description: &newDesc}, false))

	source, _ := svc.Get(sourceID)
	dest, _ := svc.Get(destID)
	assert.False(t, source.IsLinked())
	assert.False(t, dest.IsLinked())
	assert.Equal(t, newDesc, source.Description)
	assert.NotEqual(t, newDesc, dest.Description, "unilateral edit leaves the pair alone")
}

func TestUpdate_RejectsMonthMove(t *testing.T) {
	svc, _, _ := testService(t)

	txnID, err := svc.Add(AddParams{
		Date: date(2025, 6, 1), Description: "Coffee", Amount: dec("-4.50"),
		AccountID: 1, CategoryID: 10, BudgetType: model.BudgetHousehold,
	})
	require.NoError(t, err)

	july := date(2025, 7, 1)
	err = svc.Update(txnID, UpdateParams{Date: &july}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different month")
}

func TestUnlink(t *testing.T) {
	svc, _, _ := testService(t)
	sourceID, destID := transferPair(t, svc)

	require.NoError(t, svc.Unlink(sourceID))

	source, _ := svc.Get(sourceID)
	dest, _ := svc.Get(destID)
	assert.False(t, source.IsLinked())
	assert.False(t, dest.IsLinked())

	assert.Error(t, svc.Unlink(sourceID), "already unlinked")
}

func TestList_Filters(t *testing.T) {
	svc, _, _ := testService(t)

	mustAdd := func(d time.Time, desc, amount string, acctID int, bt model.BudgetType) {
		t.Helper()
		_, err := svc.Add(AddParams{
			Date: d, Description: desc, Amount: dec(amount),
			AccountID: acctID, CategoryID: 10, BudgetType: bt,
		})
		require.NoError(t, err)
	}

	mustAdd(date(2025, 5, 20), "May groceries", "-50.00", 1, model.BudgetHousehold)
	mustAdd(date(2025, 6, 1), "June groceries", "-60.00", 1, model.BudgetHousehold)
	mustAdd(date(2025, 6, 2), "Client payment", "800.00", 3, model.BudgetBusiness)

	all, err := svc.List(Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "May groceries", all[0].Description, "sorted by date")

	june, err := svc.List(Filter{From: date(2025, 6, 1), To: date(2025, 6, 30)})
	require.NoError(t, err)
	assert.Len(t, june, 2)

	business, err := svc.List(Filter{BudgetType: model.BudgetBusiness})
	require.NoError(t, err)
	require.Len(t, business, 1)
	assert.Equal(t, "Client payment", business[0].Description)

	checking, err := svc.List(Filter{AccountID: 1})
	require.NoError(t, err)
	assert.Len(t, checking, 2)
}

func TestDescriptions_Dedupes(t *testing.T) {
	svc, _, _ := testService(t)

	for _, desc := range []string{"Spotify", "spotify", "Netflix"} {
		_, err := svc.Add(AddParams{
			Date: date(2025, 6, 1), Description: desc, Amount: dec("-10.00"),
			AccountID: 1, CategoryID: 10, BudgetType: model.BudgetHousehold,
		})
		require.NoError(t, err)
	}

	descs, err := svc.Descriptions()
	require.NoError(t, err)
	assert.Equal(t, []string{"Spotify", "Netflix"}, descs)
}

func TestReadMonth_NonExistent(t *testing.T) {
	svc, _, _ := testService(t)

	txns, err := svc.ReadMonth(2025, 6)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestReadYear(t *testing.T) {
	svc, _, _ := testService(t)

	mustAdd := func(d time.Time, desc string) {
		t.Helper()
		_, err := svc.Add(AddParams{
			Date: d, Description: desc, Amount: dec("-5.00"),
			AccountID: 1, CategoryID: 10, BudgetType: model.BudgetHousehold,
		})
		require.NoError(t, err)
	}

	mustAdd(date(2025, 2, 10), "February")
	mustAdd(date(2025, 11, 3), "November")
	mustAdd(date(2024, 12, 31), "Prior year")

	txns, err := svc.ReadYear(2025)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "February", txns[0].Description, "months come back in order")
	assert.Equal(t, "November", txns[1].Description)
}
