package categories

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/billfold-dev/billfold/internal/model"
)

const (
	numFields     = 6
	colID         = 0
	colName       = 1
	colBudgetType = 2
	colGroup      = 3
	colIsIncome   = 4
	colActive     = 5
)

// ReadCategories reads categories.csv.
func ReadCategories(r io.Reader) ([]model.Category, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading categories CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var cats []model.Category
	for i, rec := range records[1:] {
		cat, err := UnmarshalCategory(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		cats = append(cats, cat)
	}
	return cats, nil
}

// WriteCategories writes categories.csv.
func WriteCategories(w io.Writer, cats []model.Category) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"category_id", "name", "budget_type", "category_group", "is_income", "active"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, cat := range cats {
		if err := cw.Write(MarshalCategory(cat)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalCategory converts a Category to a CSV row.
func MarshalCategory(cat model.Category) []string {
	row := make([]string, numFields)
	row[colID] = strconv.Itoa(cat.ID)
	row[colName] = cat.Name
	row[colBudgetType] = string(cat.BudgetType)
	row[colGroup] = cat.Group
	row[colIsIncome] = strconv.FormatBool(cat.IsIncome)
	row[colActive] = strconv.FormatBool(cat.Active)
	return row
}

// UnmarshalCategory converts a CSV row to a Category.
func UnmarshalCategory(record []string) (model.Category, error) {
	if len(record) != numFields {
		return model.Category{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	catID, err := strconv.Atoi(record[colID])
	if err != nil {
		return model.Category{}, fmt.Errorf("parsing category_id %q: %w", record[colID], err)
	}

	isIncome, err := strconv.ParseBool(record[colIsIncome])
	if err != nil {
		return model.Category{}, fmt.Errorf("parsing is_income %q: %w", record[colIsIncome], err)
	}

	active, err := strconv.ParseBool(record[colActive])
	if err != nil {
		return model.Category{}, fmt.Errorf("parsing active %q: %w", record[colActive], err)
	}

	return model.Category{
		ID:         catID,
		Name:       record[colName],
		BudgetType: model.BudgetType(record[colBudgetType]),
		Group:      record[colGroup],
		IsIncome:   isIncome,
		Active:     active,
	}, nil
}
