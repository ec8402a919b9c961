package accounts

import (
	"github.com/shopspring/decimal"

	"github.com/billfold-dev/billfold/internal/model"
)

// DefaultAccounts returns the starter account register for a budget type.
// Unknown budget types fall back to the household set.
func DefaultAccounts(bt model.BudgetType) []model.Account {
	switch bt {
	case model.BudgetBusiness:
		return businessAccounts()
	default:
		return householdAccounts()
	}
}

func householdAccounts() []model.Account {
	return []model.Account{
		{ID: 101, Name: "Checking", BudgetType: model.BudgetHousehold, Notes: "Primary checking account"},
		{ID: 102, Name: "Savings", BudgetType: model.BudgetHousehold},
		{ID: 201, Name: "Credit Card", BudgetType: model.BudgetHousehold,
			CreditLimit: decimal.NewFromInt(5000), PaymentDueDay: 15,
			MinimumPayment: decimal.NewFromInt(35)},
	}
}

func businessAccounts() []model.Account {
	return []model.Account{
		{ID: 111, Name: "Business Checking", BudgetType: model.BudgetBusiness, Notes: "Primary business checking"},
		{ID: 211, Name: "Business Credit Card", BudgetType: model.BudgetBusiness,
			CreditLimit: decimal.NewFromInt(10000), PaymentDueDay: 20,
			MinimumPayment: decimal.NewFromInt(50)},
	}
}
