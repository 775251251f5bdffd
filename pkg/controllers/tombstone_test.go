package controllers_test

import (
	"net/http"
	"time"

	"github.com/envelope-zero/ledger/pkg/controllers"
	"github.com/envelope-zero/ledger/pkg/coordinator"
	"github.com/envelope-zero/ledger/pkg/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestTombstonesUndo() {
	transaction := suite.createTestTransaction(suite.T(), controllers.TransactionEditable{Description: "Coffee"})

	r := suite.request(suite.T(), http.MethodDelete, transaction.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var tombstone controllers.TombstoneResponse
	test.DecodeResponse(suite.T(), &r, &tombstone)
	suite.Assert().True(tombstone.Data.ExpiresAt.Equal(suite.now.Add(30 * time.Second)))

	r = suite.request(suite.T(), http.MethodGet, "http://example.com/v1/tombstones", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list controllers.TombstoneListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	suite.Require().Len(list.Data, 1)
	suite.Assert().Equal(tombstone.Data.ID, list.Data[0].Data.ID)

	r = suite.request(suite.T(), http.MethodPost, tombstone.Links.Undo, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = suite.request(suite.T(), http.MethodGet, transaction.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var restored controllers.TransactionResponse
	test.DecodeResponse(suite.T(), &r, &restored)
	suite.Assert().Equal("Coffee", restored.Data.Description)

	// The tombstone is consumed by the undo
	r = suite.request(suite.T(), http.MethodPost, tombstone.Links.Undo, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestTombstonesUndoExpired() {
	category := suite.createTestCategory(suite.T(), controllers.CategoryEditable{})

	r := suite.request(suite.T(), http.MethodDelete, category.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var tombstone controllers.TombstoneResponse
	test.DecodeResponse(suite.T(), &r, &tombstone)

	suite.now = suite.now.Add(31 * time.Second)

	r = suite.request(suite.T(), http.MethodPost, tombstone.Links.Undo, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusConflict)
	suite.Assert().Equal(coordinator.ErrUndoExpired.Error(), test.DecodeError(suite.T(), r.Body.Bytes()))

	r = suite.request(suite.T(), http.MethodGet, category.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestTombstonesUndoConflict() {
	envelope := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{})
	allocation := suite.setTestAllocation(suite.T(), controllers.AllocationEditable{EnvelopeID: envelope.Data.ID, Amount: decimal.NewFromInt(100)})

	r := suite.request(suite.T(), http.MethodDelete, allocation.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var tombstone controllers.TombstoneResponse
	test.DecodeResponse(suite.T(), &r, &tombstone)

	replacement := suite.setTestAllocation(suite.T(), controllers.AllocationEditable{EnvelopeID: envelope.Data.ID, Amount: decimal.NewFromInt(120)})

	r = suite.request(suite.T(), http.MethodPost, tombstone.Links.Undo, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusConflict)
	suite.Assert().Contains(test.DecodeError(suite.T(), r.Body.Bytes()), coordinator.ErrUndoConflict.Error())

	r = suite.request(suite.T(), http.MethodGet, "http://example.com/v1/allocations", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list controllers.AllocationListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	suite.Require().Len(list.Data, 1)
	suite.Assert().Equal(replacement.Data.ID, list.Data[0].ID)
}

func (suite *TestSuiteStandard) TestTombstonesUndoErrors() {
	r := suite.request(suite.T(), http.MethodPost, "http://example.com/v1/tombstones/"+uuid.NewString()+"/undo", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	r = suite.request(suite.T(), http.MethodPost, "http://example.com/v1/tombstones/not-a-uuid/undo", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}
