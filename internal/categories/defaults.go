package categories

import "github.com/billfold-dev/billfold/internal/model"

// DefaultSet returns the starter categories for a budget type. Unknown
// budget types fall back to the household set.
func DefaultSet(bt model.BudgetType) []model.Category {
	switch bt {
	case model.BudgetBusiness:
		return businessSet()
	default:
		return householdSet()
	}
}

func householdSet() []model.Category {
	return []model.Category{
		{ID: 100, Name: "Salary", BudgetType: model.BudgetHousehold, Group: "Income", IsIncome: true, Active: true},
		{ID: 101, Name: "Groceries", BudgetType: model.BudgetHousehold, Group: "Food", Active: true},
		{ID: 102, Name: "Dining Out", BudgetType: model.BudgetHousehold, Group: "Food", Active: true},
		{ID: 103, Name: "Rent/Mortgage", BudgetType: model.BudgetHousehold, Group: "Housing", Active: true},
		{ID: 104, Name: "Utilities", BudgetType: model.BudgetHousehold, Group: "Housing", Active: true},
		{ID: 105, Name: "Transportation", BudgetType: model.BudgetHousehold, Group: "Transport", Active: true},
		{ID: 106, Name: "Entertainment", BudgetType: model.BudgetHousehold, Group: "Lifestyle", Active: true},
		{ID: 107, Name: "Transfer", BudgetType: model.BudgetHousehold, Group: "Transfers", Active: true},
		{ID: 199, Name: UncategorizedName, BudgetType: model.BudgetHousehold, Group: "Other", Active: true},
	}
}

func businessSet() []model.Category {
	return []model.Category{
		{ID: 200, Name: "Revenue", BudgetType: model.BudgetBusiness, Group: "Income", IsIncome: true, Active: true},
		{ID: 201, Name: "Software & SaaS", BudgetType: model.BudgetBusiness, Group: "Operations", Active: true},
		{ID: 202, Name: "Office Supplies", BudgetType: model.BudgetBusiness, Group: "Operations", Active: true},
		{ID: 203, Name: "Professional Services", BudgetType: model.BudgetBusiness, Group: "Services", Active: true},
		{ID: 204, Name: "Travel", BudgetType: model.BudgetBusiness, Group: "Travel", Active: true},
		{ID: 205, Name: "Transfer", BudgetType: model.BudgetBusiness, Group: "Transfers", Active: true},
		{ID: 299, Name: UncategorizedName, BudgetType: model.BudgetBusiness, Group: "Other", Active: true},
	}
}
