package importer

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnMapping maps CSV column indexes to transaction fields. -1 marks an
// unmapped column. Date, Description, and Amount are required; the rest are
// optional and fall back to defaults at import time.
type ColumnMapping struct {
	Date        int
	Description int
	Amount      int
	Category    int
	Account     int
	Notes       int
}

// NewMapping returns a mapping with every column unmapped.
func NewMapping() ColumnMapping {
	return ColumnMapping{Date: -1, Description: -1, Amount: -1, Category: -1, Account: -1, Notes: -1}
}

// Validate checks that the required columns are mapped.
func (m ColumnMapping) Validate() error {
	if m.Date < 0 {
		return fmt.Errorf("date column is required")
	}
	if m.Description < 0 {
		return fmt.Errorf("description column is required")
	}
	if m.Amount < 0 {
		return fmt.Errorf("amount column is required")
	}
	return nil
}

// ParseMapping parses a mapping spec like "date=0,description=1,amount=2".
// "desc" is accepted as shorthand for "description".
func ParseMapping(spec string) (ColumnMapping, error) {
	m := NewMapping()
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return m, fmt.Errorf("invalid mapping entry %q", part)
		}
		col, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil || col < 0 {
			return m, fmt.Errorf("invalid column index %q for %q", val, key)
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "date":
			m.Date = col
		case "description", "desc":
			m.Description = col
		case "amount":
			m.Amount = col
		case "category":
			m.Category = col
		case "account":
			m.Account = col
		case "notes":
			m.Notes = col
		default:
			return m, fmt.Errorf("unknown mapping field %q", key)
		}
	}
	if err := m.Validate(); err != nil {
		return m, err
	}
	return m, nil
}

// Preset returns a named built-in mapping, or false if unknown.
func Preset(name string) (ColumnMapping, bool) {
	switch strings.ToLower(name) {
	case "chase":
		// Chase checking exports: Details,Posting Date,Description,Amount,...
		m := NewMapping()
		m.Date = 1
		m.Description = 2
		m.Amount = 3
		return m, true
	case "basic":
		m := NewMapping()
		m.Date = 0
		m.Description = 1
		m.Amount = 2
		return m, true
	default:
		return ColumnMapping{}, false
	}
}
