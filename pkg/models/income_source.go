package models

import (
	"fmt"
	"strings"

	"github.com/envelope-zero/ledger/internal/types"
	"github.com/shopspring/decimal"
)

// IncomeSource is a named income entry scoped to one month.
type IncomeSource struct {
	DefaultModel
	Owned
	Name   string          `json:"name" example:"Salary"`   // Name of the income source
	Amount decimal.Decimal `json:"amount" example:"3500"`   // Amount of income
	Month  types.Month     `json:"month" example:"2026-02"` // Month the income is available for budgeting in
}

func (i IncomeSource) Self() string {
	return "Income Source"
}

func (i IncomeSource) Collection() string {
	return CollectionIncomeSources
}

func (i *IncomeSource) Normalize() {
	i.DefaultModel.Normalize()
	i.Name = strings.TrimSpace(i.Name)
}

func (i IncomeSource) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("income source: %w", ErrNameEmpty)
	}

	if i.Month.IsZero() {
		return ErrMonthEmpty
	}

	if err := ValidateAmount(i.Amount); err != nil {
		return fmt.Errorf("income source: %w", err)
	}

	return nil
}
