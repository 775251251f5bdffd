package models

import (
	"fmt"
	"strings"
)

// PaymentMethod is a card, account or wallet a transaction was paid with.
type PaymentMethod struct {
	DefaultModel
	Owned
	Name string `json:"name" example:"Credit Card"`
}

func (p PaymentMethod) Self() string {
	return "Payment Method"
}

func (p PaymentMethod) Collection() string {
	return CollectionPaymentMethods
}

func (p *PaymentMethod) Normalize() {
	p.DefaultModel.Normalize()
	p.Name = strings.TrimSpace(p.Name)
}

func (p PaymentMethod) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("payment method: %w", ErrNameEmpty)
	}

	return nil
}
