package controllers_test

import (
	"net/http"

	"github.com/envelope-zero/ledger/pkg/controllers"
	"github.com/envelope-zero/ledger/pkg/draft"
	"github.com/envelope-zero/ledger/pkg/test"
)

func (suite *TestSuiteStandard) TestDrafts() {
	envelope := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{Name: "Groceries"})
	card := suite.createTestPaymentMethod(suite.T(), "Credit Card")

	// Invalid requests are rejected before they count against the limit
	r := suite.request(suite.T(), http.MethodPost, "http://example.com/v1/drafts", controllers.DraftRequest{})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = suite.request(suite.T(), http.MethodPost, "http://example.com/v1/drafts", controllers.DraftRequest{Text: "14.03 for groceries at tante emma"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response controllers.DraftResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal("Groceries", response.Data.Envelope)
	suite.Assert().Equal("Tante Emma", response.Data.Merchant)
	suite.Require().NotNil(response.Data.Amount)
	suite.Assert().Equal("14.03", response.Data.Amount.String())
	suite.Assert().Equal(2, response.Remaining)
	suite.Assert().Nil(response.Transaction)

	r = suite.request(suite.T(), http.MethodPost, "http://example.com/v1/drafts", controllers.DraftRequest{Text: "paid 20 for groceries with the credit card", Create: true})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	response = controllers.DraftResponse{}
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Require().NotNil(response.Transaction)
	suite.Assert().Equal(envelope.Data.ID, response.Transaction.EnvelopeID)
	suite.Assert().Equal("20", response.Transaction.Amount.String())
	suite.Require().NotNil(response.Transaction.PaymentMethodID)
	suite.Assert().Equal(card.Data.ID, *response.Transaction.PaymentMethodID)
	suite.Assert().Equal(1, response.Remaining)

	r = suite.request(suite.T(), http.MethodPost, "http://example.com/v1/drafts", controllers.DraftRequest{Text: "12 for parking", Create: true})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = suite.request(suite.T(), http.MethodPost, "http://example.com/v1/drafts", controllers.DraftRequest{Text: "5 for groceries"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusTooManyRequests)
	suite.Assert().Equal(draft.ErrExhausted.Error(), test.DecodeError(suite.T(), r.Body.Bytes()))
}
