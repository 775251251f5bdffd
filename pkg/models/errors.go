package models

import (
	"errors"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")
)

// Validation errors. None of them ever alter the ledger.
var (
	ErrNameEmpty              = errors.New("the name must not be empty")
	ErrAmountNegative         = errors.New("the amount must not be negative")
	ErrAmountNotPositive      = errors.New("the amount must be positive")
	ErrAmountNotFinite        = errors.New("the amount must be a finite number")
	ErrAmountPrecision        = errors.New("the amount must not have more than two decimal places")
	ErrTransactionTypeInvalid = errors.New("the transaction type must be one of 'INCOME' or 'EXPENSE'")
	ErrEnvelopeIDEmpty        = errors.New("the envelope ID must be set")
	ErrMonthEmpty             = errors.New("the month must be set")
	ErrPiggybankImmutable     = errors.New("an envelope can not be converted from or to a piggybank")
	ErrPiggybankColor         = errors.New("the piggybank color must be a hex color in the format #rrggbb")
)
