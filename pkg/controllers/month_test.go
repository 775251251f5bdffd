package controllers_test

import (
	"net/http"

	"github.com/envelope-zero/ledger/pkg/controllers"
	"github.com/envelope-zero/ledger/pkg/coordinator"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/envelope-zero/ledger/pkg/test"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestMonthsGet() {
	envelope := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{Name: "Groceries"})
	suite.createTestIncomeSource(suite.T(), controllers.IncomeSourceEditable{Name: "Salary", Amount: decimal.NewFromInt(3000)})
	suite.setTestAllocation(suite.T(), controllers.AllocationEditable{EnvelopeID: envelope.Data.ID, Amount: decimal.NewFromInt(100)})
	suite.createTestTransaction(suite.T(), controllers.TransactionEditable{EnvelopeID: envelope.Data.ID, Amount: decimal.NewFromInt(30)})

	r := suite.request(suite.T(), http.MethodGet, "http://example.com/v1/months/2026-02", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var month controllers.MonthResponse
	test.DecodeResponse(suite.T(), &r, &month)
	suite.Assert().Equal(february, month.Data.Month)
	suite.Assert().Equal("3000", month.Data.Income.String())
	suite.Assert().Equal("100", month.Data.Allocation.String())
	suite.Assert().Equal("2900", month.Data.Available.String())
	suite.Assert().Equal("30", month.Data.Spent.String())
	suite.Assert().False(month.Data.FullyAllocated)
	suite.Assert().Equal("http://example.com/v1/months/2026-02/copy-forward", month.Links.CopyForward)
	suite.Assert().Equal("http://example.com/v1/export?from=2026-02&to=2026-02&format=csv", month.Links.Export)

	r = suite.request(suite.T(), http.MethodGet, "http://example.com/v1/months/2026-13", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestMonthsStartFresh() {
	envelope := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{})
	transaction := suite.createTestTransaction(suite.T(), controllers.TransactionEditable{EnvelopeID: envelope.Data.ID})
	suite.createTestIncomeSource(suite.T(), controllers.IncomeSourceEditable{Amount: decimal.NewFromInt(1000)})
	suite.setTestAllocation(suite.T(), controllers.AllocationEditable{EnvelopeID: envelope.Data.ID, Amount: decimal.NewFromInt(400)})

	r := suite.request(suite.T(), http.MethodDelete, "http://example.com/v1/months/2026-02", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
	suite.Assert().Equal(coordinator.ErrConfirmation.Error(), test.DecodeError(suite.T(), r.Body.Bytes()))

	r = suite.request(suite.T(), http.MethodDelete, "http://example.com/v1/months/2026-02?confirm="+coordinator.StartFreshConfirmation, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var tombstone controllers.TombstoneResponse
	test.DecodeResponse(suite.T(), &r, &tombstone)
	suite.Assert().Len(tombstone.Data.Resources, 2)

	var month controllers.MonthResponse
	r = suite.request(suite.T(), http.MethodGet, "http://example.com/v1/months/2026-02", "")
	test.DecodeResponse(suite.T(), &r, &month)
	suite.Assert().True(month.Data.Income.IsZero())
	suite.Assert().True(month.Data.Allocation.IsZero())

	// Transactions are kept
	r = suite.request(suite.T(), http.MethodGet, transaction.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = suite.request(suite.T(), http.MethodPost, tombstone.Links.Undo, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = suite.request(suite.T(), http.MethodGet, "http://example.com/v1/months/2026-02", "")
	test.DecodeResponse(suite.T(), &r, &month)
	suite.Assert().Equal("1000", month.Data.Income.String())
	suite.Assert().Equal("400", month.Data.Allocation.String())
}

func (suite *TestSuiteStandard) TestMonthsCopyForward() {
	envelope := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{})
	suite.createTestIncomeSource(suite.T(), controllers.IncomeSourceEditable{Name: "Salary", Amount: decimal.NewFromInt(2500)})
	suite.setTestAllocation(suite.T(), controllers.AllocationEditable{EnvelopeID: envelope.Data.ID, Amount: decimal.NewFromInt(120)})

	r := suite.request(suite.T(), http.MethodPost, "http://example.com/v1/months/2026-03/copy-forward", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var result controllers.CopyForwardResponse
	test.DecodeResponse(suite.T(), &r, &result)
	suite.Assert().Equal(february, result.Data.Source)
	suite.Assert().Equal(1, result.Data.IncomeSources)
	suite.Assert().Equal(1, result.Data.Allocations)

	var month controllers.MonthResponse
	r = suite.request(suite.T(), http.MethodGet, "http://example.com/v1/months/2026-03", "")
	test.DecodeResponse(suite.T(), &r, &month)
	suite.Assert().Equal("2500", month.Data.Income.String())
	suite.Assert().Equal("120", month.Data.Allocation.String())

	// March has data now and is not copied into again
	r = suite.request(suite.T(), http.MethodPost, "http://example.com/v1/months/2026-03/copy-forward", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &result)
	suite.Assert().Equal(0, result.Data.IncomeSources)
	suite.Assert().Equal(0, result.Data.Allocations)

	r = suite.request(suite.T(), http.MethodPost, "http://example.com/v1/months/March/copy-forward", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestMonthsContributions() {
	piggybank := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{
		Name: "Vacation",
		Piggybank: &models.Piggybank{
			MonthlyContribution: decimal.NewFromInt(50),
			Color:               "#f5a623",
		},
	})

	r := suite.request(suite.T(), http.MethodPost, "http://example.com/v1/months/2026-03/contributions", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var contributions controllers.ContributionsResponse
	test.DecodeResponse(suite.T(), &r, &contributions)
	suite.Assert().Equal(1, contributions.Created)

	r = suite.request(suite.T(), http.MethodGet, "http://example.com/v1/transactions?month=2026-03&envelope="+piggybank.Data.ID.String(), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list controllers.TransactionListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	suite.Require().Len(list.Data, 1)
	suite.Assert().True(list.Data[0].Automatic)
	suite.Assert().Equal(models.TransactionTypeIncome, list.Data[0].Type)
	suite.Assert().Equal("50", list.Data[0].Amount.String())

	r = suite.request(suite.T(), http.MethodPost, "http://example.com/v1/months/2026-03/contributions", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &contributions)
	suite.Assert().Equal(0, contributions.Created)
}
