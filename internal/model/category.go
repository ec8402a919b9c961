package model

// Category represents a row in categories.csv.
type Category struct {
	ID         int
	Name       string
	BudgetType BudgetType
	Group      string // bucket used to group categories in reports
	IsIncome   bool
	Active     bool
}
