package coordinator_test

import (
	"context"
	"time"

	"github.com/envelope-zero/ledger/pkg/coordinator"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/envelope-zero/ledger/pkg/remote"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (suite *CoordinatorSuite) TestFlushInOrder() {
	e := suite.envelope("Groceries")

	e.Name = "Food"
	_, err := suite.c.UpdateEnvelope(e)
	suite.Require().Nil(err)

	e.Name = "Food & Drinks"
	_, err = suite.c.UpdateEnvelope(e)
	suite.Require().Nil(err)

	suite.Assert().Equal(3, suite.c.Status().Pending)
	suite.Assert().Equal(models.SyncStatusPendingWrite, suite.c.SyncState(e.ID).Status)

	suite.Assert().Equal(3, suite.flush())
	suite.Assert().Equal(3, suite.store.Writes())
	suite.Assert().Equal(0, suite.c.Status().Pending)
	suite.Assert().Equal(models.Synced(), suite.c.SyncState(e.ID))

	stored, ok := suite.remoteEnvelope(e.ID)
	suite.Require().True(ok)
	suite.Assert().Equal("Food & Drinks", stored.Name)
}

func (suite *CoordinatorSuite) TestOfflineQueuesAndRecovers() {
	suite.store.SetOffline(true)

	e := suite.envelope("Groceries")
	_, err := suite.c.Envelope(e.ID)
	suite.Require().Nil(err, "mutations are applied locally while offline")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- suite.c.Run(ctx)
	}()

	suite.Assert().Eventually(func() bool {
		return !suite.c.Status().Online
	}, time.Second, time.Millisecond)

	status := suite.c.Status()
	suite.Assert().Equal(1, status.Pending)
	suite.Assert().Equal(remote.ErrUnavailable.Error(), status.LastError)
	suite.Assert().Equal(models.SyncStatusPendingWrite, suite.c.SyncState(e.ID).Status)

	suite.store.SetOffline(false)
	suite.Assert().Eventually(func() bool {
		status := suite.c.Status()
		return status.Online && status.Pending == 0
	}, time.Second, time.Millisecond)
	suite.Assert().Equal(models.Synced(), suite.c.SyncState(e.ID))

	cancel()
	suite.Assert().Nil(<-done)
}

func (suite *CoordinatorSuite) TestRejectedWritesRetryWithBackoff() {
	suite.store.FailNext(remote.ErrRejected, remote.ErrRateLimited)
	e := suite.envelope("Groceries")

	suite.Assert().Equal(0, suite.flush())
	status := suite.c.Status()
	suite.Assert().True(status.Online, "rejections do not mark the store offline")
	suite.Assert().Equal(1, status.Pending)
	suite.Assert().Equal(remote.ErrRejected.Error(), status.LastError)
	suite.Assert().Equal(models.SyncStatusPendingWrite, suite.c.SyncState(e.ID).Status)

	ops := suite.c.Operations()
	suite.Require().Len(ops, 1)
	suite.Assert().Equal(coordinator.StateRetrying, ops[0].State)
	suite.Assert().Equal(1, ops[0].Attempts)

	// The operation waits for its backoff
	suite.Assert().Equal(0, suite.flush())
	suite.Assert().Equal(1, suite.c.Operations()[0].Attempts)

	suite.clock.Advance(time.Second)
	suite.Assert().Equal(0, suite.flush())
	suite.Assert().Equal(remote.ErrRateLimited.Error(), suite.c.Status().LastError)

	// The second backoff is twice as long
	suite.clock.Advance(time.Second)
	suite.Assert().Equal(0, suite.flush())

	suite.clock.Advance(time.Second)
	suite.Assert().Equal(1, suite.flush())
	suite.Assert().Equal(models.Synced(), suite.c.SyncState(e.ID))
}

func (suite *CoordinatorSuite) TestExhaustedWritesFail() {
	suite.store.FailNext(remote.ErrRejected, remote.ErrRejected, remote.ErrRejected)
	e := suite.envelope("Groceries")
	other := suite.envelope("Rent")

	suite.flush()
	suite.clock.Advance(time.Second)
	suite.flush()
	suite.clock.Advance(2 * time.Second)

	// The failed write no longer blocks the queue
	suite.Assert().Equal(1, suite.flush())

	status := suite.c.Status()
	suite.Assert().Equal(0, status.Pending)
	suite.Assert().Equal(1, status.Failed)
	suite.Assert().Equal(models.Failed(remote.ErrRejected.Error()), suite.c.SyncState(e.ID))
	suite.Assert().Equal(models.Synced(), suite.c.SyncState(other.ID))

	_, err := suite.c.Envelope(e.ID)
	suite.Assert().Nil(err, "failed writes are not rolled back")

	suite.Assert().Equal(1, suite.c.RetryFailed())
	suite.Assert().Equal(1, suite.c.Status().Pending)
	suite.Assert().Equal(models.SyncStatusPendingWrite, suite.c.SyncState(e.ID).Status)

	suite.Assert().Equal(1, suite.flush())
	suite.Assert().Equal(models.Synced(), suite.c.SyncState(e.ID))
	suite.Assert().Equal(0, suite.c.Status().Failed)
	suite.Assert().Equal(0, suite.c.RetryFailed())
}

func (suite *CoordinatorSuite) TestWriteTimeoutMarksOffline() {
	config := suite.config()
	config.WriteTimeout = 10 * time.Millisecond
	c := coordinator.New(suite.store, config)

	suite.store.SetDelay(time.Second)
	_, err := c.CreateEnvelope(models.Envelope{Name: "Groceries"})
	suite.Require().Nil(err)

	suite.Assert().Equal(0, c.Flush(context.Background()))

	status := c.Status()
	suite.Assert().False(status.Online, "a hanging store is reported as offline")
	suite.Assert().Equal(1, status.Pending)
}

func (suite *CoordinatorSuite) TestSupersedingWriteQueuedBehindInFlight() {
	suite.store.SetDelay(50 * time.Millisecond)
	e := suite.envelope("Groceries")

	done := make(chan int)
	go func() {
		done <- suite.flush()
	}()

	time.Sleep(10 * time.Millisecond)
	e.Name = "Food"
	_, err := suite.c.UpdateEnvelope(e)
	suite.Require().Nil(err)

	synced := <-done
	synced += suite.flush()
	suite.Assert().Equal(2, synced)

	stored, ok := suite.remoteEnvelope(e.ID)
	suite.Require().True(ok)
	suite.Assert().Equal("Food", stored.Name, "the later write wins")
}

func (suite *CoordinatorSuite) TestStaleWritesCountAsSynced() {
	e := suite.envelope("Groceries")
	suite.flush()

	// Another device wrote a newer version
	newer := e
	newer.Name = "Remote"
	newer.UpdatedAt = e.UpdatedAt.Add(time.Hour)
	doc, err := remote.Encode(suite.owner, newer, newer.UpdatedAt)
	suite.Require().Nil(err)
	suite.Require().Nil(suite.store.Put(context.Background(), doc))

	e.Name = "Local"
	_, err = suite.c.UpdateEnvelope(e)
	suite.Require().Nil(err)

	suite.Assert().Equal(1, suite.flush())
	suite.Assert().Equal(models.Synced(), suite.c.SyncState(e.ID))

	stored, _ := suite.remoteEnvelope(e.ID)
	suite.Assert().Equal("Remote", stored.Name)
}

func (suite *CoordinatorSuite) TestApplyRemote() {
	e := suite.envelope("Groceries")
	suite.flush()

	newer := e
	newer.Name = "Remote"
	newer.UpdatedAt = e.UpdatedAt.Add(time.Minute)
	doc, err := remote.Encode(suite.owner, newer, newer.UpdatedAt)
	suite.Require().Nil(err)
	suite.Require().Nil(suite.c.ApplyRemote(remote.Change{Kind: remote.ChangeUpsert, Document: doc}))

	got, _ := suite.c.Envelope(e.ID)
	suite.Assert().Equal("Remote", got.Name)

	// Older versions are ignored
	older := e
	older.Name = "Old"
	doc, err = remote.Encode(suite.owner, older, older.UpdatedAt)
	suite.Require().Nil(err)
	suite.Require().Nil(suite.c.ApplyRemote(remote.Change{Kind: remote.ChangeUpsert, Document: doc}))

	got, _ = suite.c.Envelope(e.ID)
	suite.Assert().Equal("Remote", got.Name)

	// A deletion older than the local version is ignored
	key := remote.Document{Owner: suite.owner, Collection: models.CollectionEnvelopes, ID: e.ID, UpdatedAt: e.UpdatedAt}
	suite.Require().Nil(suite.c.ApplyRemote(remote.Change{Kind: remote.ChangeDelete, Document: key}))
	_, err = suite.c.Envelope(e.ID)
	suite.Assert().Nil(err)

	deletedAt := newer.UpdatedAt.Add(time.Minute)
	key.UpdatedAt = deletedAt
	suite.Require().Nil(suite.c.ApplyRemote(remote.Change{Kind: remote.ChangeDelete, Document: key}))
	_, err = suite.c.Envelope(e.ID)
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)

	// Local writes after a remote change are newer than it
	category, err := suite.c.CreateCategory(models.Category{Name: "Living"})
	suite.Require().Nil(err)
	suite.Assert().True(category.UpdatedAt.After(deletedAt))

	// Changes of other owners are ignored
	foreign := newer
	foreign.ID = uuid.New()
	doc, err = remote.Encode(uuid.New(), foreign, foreign.UpdatedAt)
	suite.Require().Nil(err)
	suite.Require().Nil(suite.c.ApplyRemote(remote.Change{Kind: remote.ChangeUpsert, Document: doc}))
	_, err = suite.c.Envelope(foreign.ID)
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (suite *CoordinatorSuite) TestApplyRemoteIgnoresTombstoned() {
	e := suite.envelope("Groceries")
	t := suite.transaction(e, "10", day(february, 2), models.TransactionTypeExpense)

	tombstone, err := suite.c.DeleteTransaction(t.ID)
	suite.Require().Nil(err)

	newer := t
	newer.Amount = t.Amount.Mul(t.Amount)
	newer.UpdatedAt = t.UpdatedAt.Add(time.Minute)
	doc, err := remote.Encode(suite.owner, newer, newer.UpdatedAt)
	suite.Require().Nil(err)
	suite.Require().Nil(suite.c.ApplyRemote(remote.Change{Kind: remote.ChangeUpsert, Document: doc}))

	_, err = suite.c.Transaction(t.ID)
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound, "deleted resources are not resurrected by remote changes")

	suite.Require().Nil(suite.c.Undo(tombstone.ID))
	got, err := suite.c.Transaction(t.ID)
	suite.Require().Nil(err)
	suite.Assert().Equal(t, got)
}

func (suite *CoordinatorSuite) TestHydrate() {
	// A second device writes the ledger
	other := coordinator.New(suite.store, suite.config())
	category, err := other.CreateCategory(models.Category{Name: "Living"})
	suite.Require().Nil(err)
	rent, err := other.CreateEnvelope(models.Envelope{Name: "Rent", CategoryID: &category.ID})
	suite.Require().Nil(err)
	groceries, err := other.CreateEnvelope(models.Envelope{Name: "Groceries"})
	suite.Require().Nil(err)
	_, err = other.CreateTransaction(models.Transaction{EnvelopeID: groceries.ID, Amount: decimal.RequireFromString("42.10"), Type: models.TransactionTypeExpense, Date: day(february, 5)})
	suite.Require().Nil(err)
	suite.Require().Equal(4, other.Flush(context.Background()))

	suite.Require().Nil(suite.c.Hydrate(context.Background()))

	snapshot := suite.c.Snapshot()
	suite.Require().Len(snapshot.Envelopes, 2)
	suite.Assert().Equal(rent.ID, snapshot.Envelopes[0].ID)
	suite.Assert().Equal(groceries.ID, snapshot.Envelopes[1].ID)
	suite.Assert().Len(snapshot.Categories, 1)
	suite.Assert().Len(snapshot.Transactions, 1)
	suite.Assert().Equal(0, suite.c.Status().Pending, "hydrated resources are synced")

	balance, err := suite.c.EnvelopeBalance(groceries.ID, february)
	suite.Require().Nil(err)
	suite.Assert().Equal("-42.1", balance.String())

	suite.store.SetOffline(true)
	suite.Assert().ErrorIs(suite.c.Hydrate(context.Background()), remote.ErrUnavailable)
	suite.Assert().False(suite.c.Status().Online)
}

func (suite *CoordinatorSuite) TestListen() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- suite.c.Listen(ctx)
	}()

	other := coordinator.New(suite.store, suite.config())

	// Write until the subscription is established and the change arrives
	suite.Assert().Eventually(func() bool {
		_, err := other.CreatePaymentMethod(models.PaymentMethod{Name: "Credit Card"})
		if err != nil {
			return false
		}
		other.Flush(context.Background())

		return len(suite.c.Snapshot().PaymentMethods) > 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	suite.Assert().Nil(<-done)
}

func (suite *CoordinatorSuite) TestRunStopsWithPendingWrites() {
	suite.store.SetOffline(true)
	suite.envelope("Groceries")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- suite.c.Run(ctx)
	}()

	cancel()
	suite.Assert().Nil(<-done)
	suite.Assert().Equal(1, suite.c.Status().Pending)
}
