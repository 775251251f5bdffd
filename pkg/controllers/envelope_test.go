package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/envelope-zero/ledger/pkg/controllers"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/envelope-zero/ledger/pkg/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestEnvelopesCreate() {
	category := suite.createTestCategory(suite.T(), controllers.CategoryEditable{})

	first := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{Name: "Groceries", CategoryID: &category.Data.ID})
	second := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{Name: "Rent", Active: false})

	suite.Assert().True(first.Data.Active)
	suite.Assert().True(second.Data.Active, "New envelopes must always be active")
	suite.Assert().Equal(0, first.Data.Index)
	suite.Assert().Equal(1, second.Data.Index)
	suite.Assert().Equal(category.Data.ID, *first.Data.CategoryID)
	suite.Assert().Nil(second.Data.CategoryID)
	suite.Assert().Equal(fmt.Sprintf("http://example.com/v1/transactions?envelope=%s", first.Data.ID), first.Data.Links.Transactions)
}

func (suite *TestSuiteStandard) TestEnvelopesCreatePiggybank() {
	target := decimal.NewFromInt(1500)
	piggybank := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{
		Name: "Vacation",
		Piggybank: &models.Piggybank{
			TargetAmount:        &target,
			MonthlyContribution: decimal.NewFromInt(50),
			Color:               "#f5a623",
		},
	})

	suite.Require().NotNil(piggybank.Data.Piggybank)
	suite.Assert().True(piggybank.Data.Piggybank.MonthlyContribution.Equal(decimal.NewFromInt(50)))
	suite.Assert().True(piggybank.Data.Piggybank.TargetAmount.Equal(target))
}

func (suite *TestSuiteStandard) TestEnvelopesCreateErrors() {
	tests := []struct {
		name     string
		envelope controllers.EnvelopeEditable
		status   int
	}{
		{"Unknown category", controllers.EnvelopeEditable{CategoryID: &uuid.UUID{1}}, http.StatusNotFound},
		{"Invalid color", controllers.EnvelopeEditable{Piggybank: &models.Piggybank{Color: "red"}}, http.StatusBadRequest},
		{"Negative contribution", controllers.EnvelopeEditable{Piggybank: &models.Piggybank{MonthlyContribution: decimal.NewFromInt(-5)}}, http.StatusBadRequest},
		{"Contribution precision", controllers.EnvelopeEditable{Piggybank: &models.Piggybank{MonthlyContribution: decimal.RequireFromString("5.001")}}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			suite.createTestEnvelope(t, tt.envelope, tt.status)
		})
	}

	r := suite.request(suite.T(), http.MethodPost, "http://example.com/v1/envelopes", []controllers.EnvelopeEditable{{Name: ""}})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestEnvelopesGetFilter() {
	category := suite.createTestCategory(suite.T(), controllers.CategoryEditable{})
	groceries := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{Name: "Groceries", CategoryID: &category.Data.ID})
	rent := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{Name: "Rent"})

	r := suite.request(suite.T(), http.MethodPost, fmt.Sprintf("http://example.com/v1/envelopes/%s/archive", rent.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	tests := []struct {
		query    string
		expected []uuid.UUID
	}{
		{"", []uuid.UUID{groceries.Data.ID, rent.Data.ID}},
		{"active=true", []uuid.UUID{groceries.Data.ID}},
		{"active=false", []uuid.UUID{rent.Data.ID}},
		{fmt.Sprintf("category=%s", category.Data.ID), []uuid.UUID{groceries.Data.ID}},
	}

	for _, tt := range tests {
		suite.T().Run(tt.query, func(t *testing.T) {
			r := suite.request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/envelopes?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response controllers.EnvelopeListResponse
			test.DecodeResponse(t, &r, &response)

			ids := make([]uuid.UUID, 0, len(response.Data))
			for _, e := range response.Data {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}

	r = suite.request(suite.T(), http.MethodGet, "http://example.com/v1/envelopes?category=nope", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = suite.request(suite.T(), http.MethodGet, "http://example.com/v1/envelopes?active=maybe", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestEnvelopesUpdate() {
	category := suite.createTestCategory(suite.T(), controllers.CategoryEditable{})
	envelope := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{Name: "Groceries", CategoryID: &category.Data.ID})

	r := suite.request(suite.T(), http.MethodPatch, envelope.Data.Links.Self, map[string]any{"name": "Food"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var updated controllers.EnvelopeResponse
	test.DecodeResponse(suite.T(), &r, &updated)
	suite.Assert().Equal("Food", updated.Data.Name)
	suite.Assert().Equal(category.Data.ID, *updated.Data.CategoryID, "Fields not in the body must keep their value")
	suite.Assert().True(updated.Data.Active)

	r = suite.request(suite.T(), http.MethodPatch, envelope.Data.Links.Self, map[string]any{"categoryId": nil})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &updated)
	suite.Assert().Nil(updated.Data.CategoryID)

	r = suite.request(suite.T(), http.MethodPatch, envelope.Data.Links.Self, map[string]any{"piggybank": map[string]any{"monthlyContribution": "10"}})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
	suite.Assert().Contains(test.DecodeError(suite.T(), r.Body.Bytes()), models.ErrPiggybankImmutable.Error())
}

func (suite *TestSuiteStandard) TestEnvelopesMonth() {
	envelope := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{Name: "Groceries"})
	suite.setTestAllocation(suite.T(), controllers.AllocationEditable{EnvelopeID: envelope.Data.ID, Amount: decimal.NewFromInt(100)})
	suite.createTestTransaction(suite.T(), controllers.TransactionEditable{EnvelopeID: envelope.Data.ID, Amount: decimal.NewFromInt(30)})

	r := suite.request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/envelopes/%s/months/2026-02", envelope.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response controllers.EnvelopeMonthResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal("Groceries", response.Data.Name)
	suite.Assert().Equal("100", response.Data.Allocation.String())
	suite.Assert().Equal("30", response.Data.Spent.String())
	suite.Assert().Equal("-30", response.Data.Balance.String())
	suite.Assert().Equal("70", response.Data.Remaining.String())

	r = suite.request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/envelopes/%s/months/2026-03", envelope.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().True(response.Data.Spent.IsZero(), "Spending of other months must not count")

	r = suite.request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/envelopes/%s/months/february", envelope.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = suite.request(suite.T(), http.MethodGet, "http://example.com/v1/envelopes/e2fdcb78-bf59-4bce-b8e2-1b7c0d6c5a1e/months/2026-02", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestEnvelopesDeleteWithoutHistory() {
	envelope := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{})
	allocation := suite.setTestAllocation(suite.T(), controllers.AllocationEditable{EnvelopeID: envelope.Data.ID, Amount: decimal.NewFromInt(20)})

	r := suite.request(suite.T(), http.MethodDelete, envelope.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = suite.request(suite.T(), http.MethodDelete, envelope.Data.Links.Self+"?month=2026-02", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var tombstone controllers.TombstoneResponse
	test.DecodeResponse(suite.T(), &r, &tombstone)
	suite.Assert().ElementsMatch([]uuid.UUID{envelope.Data.ID, allocation.Data.ID}, tombstone.Data.Resources)

	r = suite.request(suite.T(), http.MethodGet, envelope.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestEnvelopesDeleteWithHistory() {
	envelope := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{})
	suite.createTestTransaction(suite.T(), controllers.TransactionEditable{EnvelopeID: envelope.Data.ID})

	r := suite.request(suite.T(), http.MethodDelete, envelope.Data.Links.Self+"?month=2026-02", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = suite.request(suite.T(), http.MethodGet, envelope.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response controllers.EnvelopeResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().False(response.Data.Active, "Envelopes with history must be archived")
}

func (suite *TestSuiteStandard) TestEnvelopeOrder() {
	first := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{})
	second := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{})
	third := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{})

	r := suite.request(suite.T(), http.MethodPost, "http://example.com/v1/envelope-order/move", controllers.EnvelopeMove{From: 2, To: 0})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var order controllers.EnvelopeOrderResponse
	test.DecodeResponse(suite.T(), &r, &order)
	suite.Assert().Equal([]uuid.UUID{third.Data.ID, first.Data.ID, second.Data.ID}, order.Data)

	r = suite.request(suite.T(), http.MethodGet, "http://example.com/v1/envelope-order", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &order)
	suite.Assert().Equal([]uuid.UUID{third.Data.ID, first.Data.ID, second.Data.ID}, order.Data)

	r = suite.request(suite.T(), http.MethodPost, "http://example.com/v1/envelope-order/move", controllers.EnvelopeMove{From: 0, To: 3})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = suite.request(suite.T(), http.MethodPost, "http://example.com/v1/envelope-order/commit", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var commit controllers.EnvelopeOrderCommitResponse
	test.DecodeResponse(suite.T(), &r, &commit)
	suite.Assert().Equal(3, commit.Committed)

	r = suite.request(suite.T(), http.MethodPost, "http://example.com/v1/envelope-order/commit", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &commit)
	suite.Assert().Equal(0, commit.Committed, "Nothing changed since the last commit")
}
