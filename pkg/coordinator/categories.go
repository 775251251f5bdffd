package coordinator

import (
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/google/uuid"
)

// stamp prepares a new resource for the replica. The caller must hold the lock.
func (c *Coordinator) stamp(m *models.DefaultModel, o *models.Owned) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	} else if c.exists(m.ID) {
		return ErrDuplicateID
	}

	now := c.clock.Next()
	m.CreatedAt = now
	m.UpdatedAt = now
	o.OwnerID = c.config.Owner

	return nil
}

// restamp prepares a new version of an existing resource. The caller must hold the lock.
func (c *Coordinator) restamp(m *models.DefaultModel, o *models.Owned, before models.DefaultModel) {
	m.CreatedAt = before.CreatedAt
	m.UpdatedAt = c.clock.Next()
	o.OwnerID = c.config.Owner
}

// exists reports if any resource with the ID is in the replica or held by a tombstone.
func (c *Coordinator) exists(id uuid.UUID) bool {
	for _, collection := range []string{
		models.CollectionCategories,
		models.CollectionEnvelopes,
		models.CollectionTransactions,
		models.CollectionIncomeSources,
		models.CollectionAllocations,
		models.CollectionPaymentMethods,
	} {
		if _, ok := c.replica.version(collection, id); ok {
			return true
		}
	}

	return c.tombstoned(id)
}

// CreateCategory creates a category at the end of the category list.
func (c *Coordinator) CreateCategory(category models.Category) (models.Category, error) {
	category.Normalize()
	if err := category.Validate(); err != nil {
		return models.Category{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.stamp(&category.DefaultModel, &category.Owned); err != nil {
		return models.Category{}, err
	}
	category.Index = c.replica.nextCategoryIndex()

	doc, err := c.encode(category)
	if err != nil {
		return models.Category{}, err
	}

	c.put(category)
	c.write(doc)

	return category, nil
}

// UpdateCategory replaces a category.
func (c *Coordinator) UpdateCategory(category models.Category) (models.Category, error) {
	category.Normalize()
	if err := category.Validate(); err != nil {
		return models.Category{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	before, ok := c.replica.categories.get(category.ID)
	if !ok {
		return models.Category{}, notFound(category, category.ID)
	}
	c.restamp(&category.DefaultModel, &category.Owned, before.DefaultModel)

	doc, err := c.encode(category)
	if err != nil {
		return models.Category{}, err
	}

	c.put(category)
	c.replica.sortByIndex()
	c.write(doc)

	return category, nil
}

// DeleteCategory deletes a category. Its envelopes stay and are shown without
// category. When the tombstone is finalized, the envelopes are removed from the
// category.
func (c *Coordinator) DeleteCategory(id uuid.UUID) (Tombstone, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.newTombstone(TombstoneCategory)
	if !c.bury(t, models.CollectionCategories, id) {
		return Tombstone{}, notFound(models.Category{}, id)
	}

	return c.keep(t), nil
}

// CreatePaymentMethod creates a payment method.
func (c *Coordinator) CreatePaymentMethod(method models.PaymentMethod) (models.PaymentMethod, error) {
	method.Normalize()
	if err := method.Validate(); err != nil {
		return models.PaymentMethod{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.stamp(&method.DefaultModel, &method.Owned); err != nil {
		return models.PaymentMethod{}, err
	}

	doc, err := c.encode(method)
	if err != nil {
		return models.PaymentMethod{}, err
	}

	c.put(method)
	c.write(doc)

	return method, nil
}
