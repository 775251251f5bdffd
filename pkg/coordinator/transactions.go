package coordinator

import (
	"time"

	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/envelope-zero/ledger/pkg/remote"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// checkReferences verifies that the envelope and payment method of a
// transaction exist.
func (c *Coordinator) checkReferences(t models.Transaction) error {
	if _, ok := c.replica.envelopes.get(t.EnvelopeID); !ok {
		return notFound(models.Envelope{}, t.EnvelopeID)
	}

	if t.PaymentMethodID != nil {
		if _, ok := c.replica.paymentMethods.get(*t.PaymentMethodID); !ok {
			return notFound(models.PaymentMethod{}, *t.PaymentMethodID)
		}
	}

	return nil
}

// CreateTransaction creates a transaction.
func (c *Coordinator) CreateTransaction(t models.Transaction) (models.Transaction, error) {
	t.Normalize()
	if err := t.Validate(); err != nil {
		return models.Transaction{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkReferences(t); err != nil {
		return models.Transaction{}, err
	}

	if err := c.stamp(&t.DefaultModel, &t.Owned); err != nil {
		return models.Transaction{}, err
	}

	doc, err := c.encode(t)
	if err != nil {
		return models.Transaction{}, err
	}

	c.put(t)
	c.write(doc)

	return t, nil
}

// UpdateTransaction replaces a transaction. Links to split groups and
// transfers are kept.
func (c *Coordinator) UpdateTransaction(t models.Transaction) (models.Transaction, error) {
	t.Normalize()
	if err := t.Validate(); err != nil {
		return models.Transaction{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	before, ok := c.replica.transactions.get(t.ID)
	if !ok {
		return models.Transaction{}, notFound(t, t.ID)
	}

	if err := c.checkReferences(t); err != nil {
		return models.Transaction{}, err
	}

	c.restamp(&t.DefaultModel, &t.Owned, before.DefaultModel)
	t.SplitGroupID = before.SplitGroupID
	t.TransferID = before.TransferID

	doc, err := c.encode(t)
	if err != nil {
		return models.Transaction{}, err
	}

	c.put(t)
	c.write(doc)

	return t, nil
}

// DeleteTransaction deletes a transaction. Deleting one half of a transfer
// deletes both halves.
func (c *Coordinator) DeleteTransaction(id uuid.UUID) (Tombstone, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.replica.transactions.get(id)
	if !ok {
		return Tombstone{}, notFound(t, id)
	}

	tombstone := c.newTombstone(TombstoneTransaction)
	c.bury(tombstone, models.CollectionTransactions, id)

	if t.TransferID != nil {
		for _, other := range c.replica.transactions.all() {
			if other.TransferID != nil && *other.TransferID == *t.TransferID {
				c.bury(tombstone, models.CollectionTransactions, other.ID)
			}
		}
	}

	return c.keep(tombstone), nil
}

// CreateSplit creates a transaction split into multiple parts, each against
// its own envelope. All parts must have the same date and share a split group.
func (c *Coordinator) CreateSplit(parts []models.Transaction) ([]models.Transaction, error) {
	if len(parts) < 2 {
		return nil, ErrSplitParts
	}

	split := make([]models.Transaction, len(parts))
	for i, p := range parts {
		p.Normalize()
		if err := p.Validate(); err != nil {
			return nil, err
		}

		if i > 0 && !p.Date.Equal(split[0].Date) {
			return nil, ErrSplitDate
		}

		split[i] = p
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	group := uuid.New()
	docs := make([]remote.Document, 0, len(split))
	for i := range split {
		if err := c.checkReferences(split[i]); err != nil {
			return nil, err
		}

		if err := c.stamp(&split[i].DefaultModel, &split[i].Owned); err != nil {
			return nil, err
		}

		g := group
		split[i].SplitGroupID = &g

		doc, err := c.encode(split[i])
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	for _, p := range split {
		c.put(p)
	}
	c.enqueue(OperationBatch, docs...)

	return split, nil
}

// Transfer moves money between two envelopes. It creates an expense on the
// source and an income on the destination, linked by a transfer ID.
func (c *Coordinator) Transfer(from, to uuid.UUID, amount decimal.Decimal, date time.Time, description string) ([]models.Transaction, error) {
	if from == to {
		return nil, ErrTransferSelf
	}

	if err := models.ValidatePositiveAmount(amount); err != nil {
		return nil, err
	}

	transfer := uuid.New()
	halves := []models.Transaction{
		{EnvelopeID: from, Amount: amount, Type: models.TransactionTypeExpense, Date: date, Description: description},
		{EnvelopeID: to, Amount: amount, Type: models.TransactionTypeIncome, Date: date, Description: description},
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	docs := make([]remote.Document, 0, len(halves))
	for i := range halves {
		id := transfer
		halves[i].TransferID = &id
		halves[i].Normalize()

		if err := c.checkReferences(halves[i]); err != nil {
			return nil, err
		}

		if err := c.stamp(&halves[i].DefaultModel, &halves[i].Owned); err != nil {
			return nil, err
		}

		doc, err := c.encode(halves[i])
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	for _, h := range halves {
		c.put(h)
	}
	c.enqueue(OperationBatch, docs...)

	return halves, nil
}
