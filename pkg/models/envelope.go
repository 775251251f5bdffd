package models

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hexColor = regexp.MustCompile("^#[0-9a-fA-F]{6}$")

// Envelope represents an envelope in the ledger.
//
// An envelope is either a regular spending envelope or a piggybank, never both.
type Envelope struct {
	DefaultModel
	Owned
	Name       string     `json:"name" example:"Groceries"`                                  // Name of the envelope
	Active     bool       `json:"active" example:"true"`                                     // Inactive envelopes are hidden and do not count towards the allocated sum
	Index      int        `json:"index" example:"3"`                                         // Display position, has no semantic meaning
	CategoryID *uuid.UUID `json:"categoryId" example:"878c831f-af99-4a71-b3ca-80deb7d793c1"` // ID of the category the envelope belongs to
	Piggybank  *Piggybank `json:"piggybank,omitempty"`                                       // Savings goal configuration. Only set for piggybanks
}

// Piggybank is the configuration of a savings-goal envelope.
type Piggybank struct {
	TargetAmount        *decimal.Decimal `json:"targetAmount,omitempty" example:"1500"` // Optional amount to save up to
	MonthlyContribution decimal.Decimal  `json:"monthlyContribution" example:"50"`      // Amount contributed automatically every month
	Color               string           `json:"color" example:"#f5a623"`               // Accent color
	Paused              bool             `json:"paused" example:"false"`                // Paused piggybanks receive no contributions and allocate nothing
}

func (e Envelope) Self() string {
	return "Envelope"
}

func (e Envelope) Collection() string {
	return CollectionEnvelopes
}

// IsPiggybank reports if the envelope is a piggybank.
func (e Envelope) IsPiggybank() bool {
	return e.Piggybank != nil
}

// Contributing reports if the envelope is an active piggybank that is not paused.
func (e Envelope) Contributing() bool {
	return e.Active && e.IsPiggybank() && !e.Piggybank.Paused
}

// Normalize trims whitespace from string fields and sets timestamps to UTC.
func (e *Envelope) Normalize() {
	e.DefaultModel.Normalize()
	e.Name = strings.TrimSpace(e.Name)

	// Ensure that the Category ID is nil and not a pointer to a nil UUID
	if e.CategoryID != nil && *e.CategoryID == uuid.Nil {
		e.CategoryID = nil
	}

	if e.Piggybank != nil {
		e.Piggybank.Color = strings.TrimSpace(e.Piggybank.Color)
	}
}

func (e Envelope) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("envelope: %w", ErrNameEmpty)
	}

	if e.Piggybank == nil {
		return nil
	}

	return e.Piggybank.Validate()
}

func (p Piggybank) Validate() error {
	if err := ValidateAmount(p.MonthlyContribution); err != nil {
		return fmt.Errorf("monthly contribution: %w", err)
	}

	if p.TargetAmount != nil {
		if err := ValidatePositiveAmount(*p.TargetAmount); err != nil {
			return fmt.Errorf("target amount: %w", err)
		}
	}

	if p.Color != "" && !hexColor.MatchString(p.Color) {
		return ErrPiggybankColor
	}

	return nil
}

// CheckPiggybankTransition verifies that an update does not change
// whether an envelope is a piggybank.
func CheckPiggybankTransition(before, after Envelope) error {
	if before.IsPiggybank() != after.IsPiggybank() {
		return ErrPiggybankImmutable
	}

	return nil
}
