package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billfold-dev/billfold/internal/model"
)

var (
	testAccounts = newMockAccounts(
		model.Account{ID: 1, Name: "Checking", BudgetType: model.BudgetHousehold},
		model.Account{ID: 2, Name: "Savings", BudgetType: model.BudgetHousehold},
	)
	testCategories = mockCategories{10: true, 11: true}
)

func validTxn(seq int) model.Transaction {
	return model.Transaction{
		ID:          "2025-06-00" + string(rune('0'+seq)),
		Date:        date(2025, 6, 15),
		Description: "Test",
		Amount:      dec("-10.00"),
		AccountID:   1,
		CategoryID:  10,
		BudgetType:  model.BudgetHousehold,
	}
}

func singleError(t *testing.T, txns []model.Transaction, wantInvariant int) ValidationError {
	t.Helper()
	errs := ValidateTxns(txns, testAccounts, testCategories, 2025, 6)
	require.NotEmpty(t, errs)
	assert.Equal(t, wantInvariant, errs[0].Invariant)
	return errs[0]
}

func TestValidate_CleanMonth(t *testing.T) {
	errs := ValidateTxns([]model.Transaction{validTxn(1), validTxn(2)}, testAccounts, testCategories, 2025, 6)
	assert.Empty(t, errs)
}

func TestValidate_EmptyMonth(t *testing.T) {
	errs := ValidateTxns(nil, testAccounts, testCategories, 2025, 6)
	assert.Empty(t, errs)
}

func TestValidate_Invariant1_UnknownAccount(t *testing.T) {
	txn := validTxn(1)
	txn.AccountID = 99
	ve := singleError(t, []model.Transaction{txn}, 1)
	assert.Contains(t, ve.Description, "unknown account")
}

func TestValidate_Invariant1_UnknownCategory(t *testing.T) {
	txn := validTxn(1)
	txn.CategoryID = 99
	singleError(t, []model.Transaction{txn}, 1)
}

func TestValidate_Invariant1_SelfTransfer(t *testing.T) {
	txn := validTxn(1)
	txn.ToAccountID = txn.AccountID
	ve := singleError(t, []model.Transaction{txn}, 1)
	assert.Contains(t, ve.Description, "destination equals source")
}

func TestValidate_Invariant2_BudgetType(t *testing.T) {
	txn := validTxn(1)
	txn.BudgetType = "retirement"
	singleError(t, []model.Transaction{txn}, 2)

	txn = validTxn(1)
	txn.BudgetType = model.BudgetBusiness // account 1 is household
	singleError(t, []model.Transaction{txn}, 2)
}

func TestValidate_Invariant3_DateOutsideMonth(t *testing.T) {
	txn := validTxn(1)
	txn.Date = date(2025, 7, 1)
	singleError(t, []model.Transaction{txn}, 3)
}

func TestValidate_Invariant4_Amount(t *testing.T) {
	txn := validTxn(1)
	txn.Amount = dec("0")
	singleError(t, []model.Transaction{txn}, 4)

	txn = validTxn(1)
	txn.Amount = dec("-10.999")
	ve := singleError(t, []model.Transaction{txn}, 4)
	assert.Contains(t, ve.Description, "decimal places")
}

func TestValidate_Invariant5_IDs(t *testing.T) {
	txn := validTxn(1)
	txn.ID = "garbage"
	singleError(t, []model.Transaction{txn}, 5)

	// ID from a different month than the file.
	txn = validTxn(1)
	txn.ID = "2025-05-001"
	singleError(t, []model.Transaction{txn}, 5)

	// Duplicate IDs.
	errs := ValidateTxns([]model.Transaction{validTxn(1), validTxn(1)}, testAccounts, testCategories, 2025, 6)
	require.NotEmpty(t, errs)
	assert.Equal(t, 5, errs[0].Invariant)
	assert.Contains(t, errs[0].Description, "duplicate")
}

func linkedPair() (model.Transaction, model.Transaction) {
	a := validTxn(1)
	a.Amount = dec("-300.00")
	a.LinkedID = "2025-06-002"
	a.ToAccountID = 2

	b := validTxn(2)
	b.AccountID = 2
	b.Amount = dec("300.00")
	b.LinkedID = "2025-06-001"
	return a, b
}

func TestValidate_Invariant6_CleanPair(t *testing.T) {
	a, b := linkedPair()
	errs := ValidateTxns([]model.Transaction{a, b}, testAccounts, testCategories, 2025, 6)
	assert.Empty(t, errs)
}

func TestValidate_Invariant6_MissingPair(t *testing.T) {
	a, _ := linkedPair()
	ve := singleError(t, []model.Transaction{a}, 6)
	assert.Contains(t, ve.Description, "not found")
}

func TestValidate_Invariant6_NotMutual(t *testing.T) {
	a, b := linkedPair()
	b.LinkedID = ""
	errs := ValidateTxns([]model.Transaction{a, b}, testAccounts, testCategories, 2025, 6)
	require.NotEmpty(t, errs)
	assert.Equal(t, 6, errs[0].Invariant)
	assert.Contains(t, errs[0].Description, "not mutual")
}

func TestValidate_Invariant6_AmountsDoNotNegate(t *testing.T) {
	a, b := linkedPair()
	b.Amount = dec("299.00")
	errs := ValidateTxns([]model.Transaction{a, b}, testAccounts, testCategories, 2025, 6)
	require.NotEmpty(t, errs)
	assert.Equal(t, 6, errs[0].Invariant)
	assert.Contains(t, errs[0].Description, "do not negate")
}

func TestValidate_Invariant6_CrossMonthLinkSkipped(t *testing.T) {
	a := validTxn(1)
	a.LinkedID = "2025-05-009"
	errs := ValidateTxns([]model.Transaction{a}, testAccounts, testCategories, 2025, 6)
	assert.Empty(t, errs, "cross-month links are checked at link time, not per file")
}
