package controllers_test

import (
	"net/http"

	"github.com/envelope-zero/ledger/pkg/controllers"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/envelope-zero/ledger/pkg/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestIncomeSourcesCreate() {
	source := suite.createTestIncomeSource(suite.T(), controllers.IncomeSourceEditable{Name: "Salary", Amount: decimal.NewFromInt(3500)})

	suite.Assert().Equal("Salary", source.Data.Name)
	suite.Assert().Equal("3500", source.Data.Amount.String())
	suite.Assert().Equal(february, source.Data.Month)
	suite.Assert().Equal("http://example.com/v1/months/2026-02", source.Data.Links.Month)

	r := suite.request(suite.T(), http.MethodPost, "http://example.com/v1/income-sources", []map[string]any{{"name": "Salary", "amount": "10"}})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response controllers.IncomeSourceCreateResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Require().Len(response.Data, 1)
	suite.Assert().Contains(*response.Data[0].Error, models.ErrMonthEmpty.Error())

	suite.createTestIncomeSource(suite.T(), controllers.IncomeSourceEditable{Amount: decimal.NewFromInt(-1)}, http.StatusBadRequest)
	suite.createTestIncomeSource(suite.T(), controllers.IncomeSourceEditable{Amount: decimal.RequireFromString("0.001")}, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestIncomeSourcesGet() {
	salary := suite.createTestIncomeSource(suite.T(), controllers.IncomeSourceEditable{Name: "Salary"})
	bonus := suite.createTestIncomeSource(suite.T(), controllers.IncomeSourceEditable{Name: "Bonus", Month: march})

	r := suite.request(suite.T(), http.MethodGet, "http://example.com/v1/income-sources", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list controllers.IncomeSourceListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	suite.Assert().Len(list.Data, 2)

	r = suite.request(suite.T(), http.MethodGet, "http://example.com/v1/income-sources?month=2026-03", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &list)
	suite.Require().Len(list.Data, 1)
	suite.Assert().Equal(bonus.Data.ID, list.Data[0].ID)

	r = suite.request(suite.T(), http.MethodGet, "http://example.com/v1/income-sources?month=March", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = suite.request(suite.T(), http.MethodGet, salary.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var detail controllers.IncomeSourceResponse
	test.DecodeResponse(suite.T(), &r, &detail)
	suite.Assert().Equal("Salary", detail.Data.Name)

	r = suite.request(suite.T(), http.MethodGet, "http://example.com/v1/income-sources/"+uuid.NewString(), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestIncomeSourcesUpdate() {
	source := suite.createTestIncomeSource(suite.T(), controllers.IncomeSourceEditable{Name: "Salary", Amount: decimal.NewFromInt(3000)})

	r := suite.request(suite.T(), http.MethodPatch, source.Data.Links.Self, map[string]any{"amount": "3100"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var updated controllers.IncomeSourceResponse
	test.DecodeResponse(suite.T(), &r, &updated)
	suite.Assert().Equal("3100", updated.Data.Amount.String())
	suite.Assert().Equal("Salary", updated.Data.Name)
	suite.Assert().Equal(february, updated.Data.Month)

	r = suite.request(suite.T(), http.MethodPatch, source.Data.Links.Self, map[string]any{"name": " "})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestIncomeSourcesDelete() {
	source := suite.createTestIncomeSource(suite.T(), controllers.IncomeSourceEditable{})

	r := suite.request(suite.T(), http.MethodDelete, source.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = suite.request(suite.T(), http.MethodGet, source.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}
