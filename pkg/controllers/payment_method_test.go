package controllers_test

import (
	"net/http"

	"github.com/envelope-zero/ledger/pkg/controllers"
	"github.com/envelope-zero/ledger/pkg/test"
	"github.com/google/uuid"
)

func (suite *TestSuiteStandard) TestPaymentMethods() {
	card := suite.createTestPaymentMethod(suite.T(), "Credit Card")
	suite.Assert().Equal("Credit Card", card.Data.Name)

	r := suite.request(suite.T(), http.MethodGet, "http://example.com/v1/payment-methods", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list controllers.PaymentMethodListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	suite.Require().Len(list.Data, 1)
	suite.Assert().Equal(card.Data.ID, list.Data[0].ID)

	r = suite.request(suite.T(), http.MethodGet, card.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = suite.request(suite.T(), http.MethodGet, "http://example.com/v1/payment-methods/"+uuid.NewString(), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	r = suite.request(suite.T(), http.MethodPost, "http://example.com/v1/payment-methods", []controllers.PaymentMethodEditable{{Name: ""}})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = suite.request(suite.T(), http.MethodDelete, card.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusMethodNotAllowed)
}
