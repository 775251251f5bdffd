package controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/envelope-zero/ledger/pkg/controllers"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/envelope-zero/ledger/pkg/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestTransactionsCreate() {
	envelope := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{})

	transaction := suite.createTestTransaction(suite.T(), controllers.TransactionEditable{
		EnvelopeID:  envelope.Data.ID,
		Amount:      decimal.RequireFromString("14.03"),
		Description: " Weekly groceries ",
		Merchant:    "Tante Emma",
	})

	suite.Assert().Equal("14.03", transaction.Data.Amount.String())
	suite.Assert().Equal(models.TransactionTypeExpense, transaction.Data.Type)
	suite.Assert().Equal("Weekly groceries", transaction.Data.Description)
	suite.Assert().True(suite.now.Equal(transaction.Data.Date), "Transactions without a date must be dated now")
	suite.Assert().Equal(february, transaction.Data.Month)
	suite.Assert().False(transaction.Data.Automatic)
	suite.Assert().Equal(models.SyncStatusPendingWrite, transaction.Data.Sync.Status)
	suite.Assert().Equal(envelope.Data.Links.Self, transaction.Data.Links.Envelope)

	dated := suite.createTestTransaction(suite.T(), controllers.TransactionEditable{
		EnvelopeID: envelope.Data.ID,
		Date:       time.Date(2026, time.March, 31, 23, 0, 0, 0, time.FixedZone("UTC-2", -2*60*60)),
	})
	suite.Assert().True(time.Date(2026, time.April, 1, 1, 0, 0, 0, time.UTC).Equal(dated.Data.Date))
	suite.Assert().Equal("2026-04", dated.Data.Month.String(), "The month must be derived from the date in UTC")
}

func (suite *TestSuiteStandard) TestTransactionsCreateErrors() {
	envelope := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{})
	unknown := uuid.New()

	tests := []struct {
		name        string
		transaction map[string]any
		status      int
		err         error
	}{
		{"No envelope", map[string]any{"amount": "10", "type": "EXPENSE"}, http.StatusBadRequest, models.ErrEnvelopeIDEmpty},
		{"Unknown envelope", map[string]any{"envelopeId": unknown, "amount": "10", "type": "EXPENSE"}, http.StatusNotFound, models.ErrResourceNotFound},
		{"Invalid type", map[string]any{"envelopeId": envelope.Data.ID, "amount": "10", "type": "TRANSFER"}, http.StatusBadRequest, models.ErrTransactionTypeInvalid},
		{"Zero amount", map[string]any{"envelopeId": envelope.Data.ID, "amount": "0", "type": "INCOME"}, http.StatusBadRequest, models.ErrAmountNotPositive},
		{"Negative amount", map[string]any{"envelopeId": envelope.Data.ID, "amount": "-3", "type": "INCOME"}, http.StatusBadRequest, models.ErrAmountNotPositive},
		{"Too precise", map[string]any{"envelopeId": envelope.Data.ID, "amount": "1.005", "type": "INCOME"}, http.StatusBadRequest, models.ErrAmountPrecision},
		{"Unknown payment method", map[string]any{"envelopeId": envelope.Data.ID, "amount": "5", "type": "EXPENSE", "paymentMethodId": unknown}, http.StatusNotFound, models.ErrResourceNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := suite.request(t, http.MethodPost, "http://example.com/v1/transactions", []map[string]any{tt.transaction})
			test.AssertHTTPStatus(t, &r, tt.status)

			var response controllers.TransactionCreateResponse
			test.DecodeResponse(t, &r, &response)
			if assert.Len(t, response.Data, 1) && assert.NotNil(t, response.Data[0].Error) {
				assert.Contains(t, *response.Data[0].Error, tt.err.Error())
			}
		})
	}

	r := suite.request(suite.T(), http.MethodGet, "http://example.com/v1/transactions", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list controllers.TransactionListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	suite.Assert().Len(list.Data, 0, "Failed creations must not change the ledger")
}

func (suite *TestSuiteStandard) TestTransactionsGetFilter() {
	groceries := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{Name: "Groceries"})
	rent := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{Name: "Rent"})
	card := suite.createTestPaymentMethod(suite.T(), "Credit Card")

	shopping := suite.createTestTransaction(suite.T(), controllers.TransactionEditable{
		EnvelopeID:      groceries.Data.ID,
		Merchant:        "Tante Emma",
		PaymentMethodID: &card.Data.ID,
		Date:            time.Date(2026, time.February, 3, 0, 0, 0, 0, time.UTC),
	})
	payment := suite.createTestTransaction(suite.T(), controllers.TransactionEditable{
		EnvelopeID:  rent.Data.ID,
		Description: "Rent for February",
		Reconciled:  true,
		Date:        time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
	})
	refund := suite.createTestTransaction(suite.T(), controllers.TransactionEditable{
		EnvelopeID: groceries.Data.ID,
		Type:       models.TransactionTypeIncome,
		Date:       time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
	})

	tests := []struct {
		query    string
		expected []uuid.UUID
	}{
		{"", []uuid.UUID{refund.Data.ID, shopping.Data.ID, payment.Data.ID}},
		{fmt.Sprintf("envelope=%s", groceries.Data.ID), []uuid.UUID{refund.Data.ID, shopping.Data.ID}},
		{fmt.Sprintf("paymentMethod=%s", card.Data.ID), []uuid.UUID{shopping.Data.ID}},
		{"month=2026-02", []uuid.UUID{shopping.Data.ID, payment.Data.ID}},
		{"type=INCOME", []uuid.UUID{refund.Data.ID}},
		{"reconciled=true", []uuid.UUID{payment.Data.ID}},
		{"reconciled=false", []uuid.UUID{refund.Data.ID, shopping.Data.ID}},
		{"search=TANTE", []uuid.UUID{shopping.Data.ID}},
		{"search=february", []uuid.UUID{payment.Data.ID}},
		{"month=2026-02&envelope=" + rent.Data.ID.String(), []uuid.UUID{payment.Data.ID}},
	}

	for _, tt := range tests {
		suite.T().Run(tt.query, func(t *testing.T) {
			r := suite.request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/transactions?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response controllers.TransactionListResponse
			test.DecodeResponse(t, &r, &response)

			ids := make([]uuid.UUID, 0, len(response.Data))
			for _, transaction := range response.Data {
				ids = append(ids, transaction.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}

	for _, query := range []string{"envelope=nope", "month=2026-13", "type=TRANSFER", "reconciled=sometimes"} {
		suite.T().Run(query, func(t *testing.T) {
			r := suite.request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/transactions?%s", query), "")
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
		})
	}
}

func (suite *TestSuiteStandard) TestTransactionsUpdate() {
	groceries := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{})
	rent := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{})
	transaction := suite.createTestTransaction(suite.T(), controllers.TransactionEditable{EnvelopeID: groceries.Data.ID, Merchant: "Tante Emma"})

	r := suite.request(suite.T(), http.MethodPatch, transaction.Data.Links.Self, map[string]any{"amount": "22.50", "envelopeId": rent.Data.ID})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var updated controllers.TransactionResponse
	test.DecodeResponse(suite.T(), &r, &updated)
	suite.Assert().Equal("22.5", updated.Data.Amount.String())
	suite.Assert().Equal(rent.Data.ID, updated.Data.EnvelopeID)
	suite.Assert().Equal("Tante Emma", updated.Data.Merchant, "Fields not in the body must keep their value")

	r = suite.request(suite.T(), http.MethodPatch, transaction.Data.Links.Self, map[string]any{"date": "2026-03-05T12:00:00Z"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &updated)
	suite.Assert().Equal(march, updated.Data.Month, "The month must follow the date")

	r = suite.request(suite.T(), http.MethodPatch, transaction.Data.Links.Self, map[string]any{"amount": "0"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = suite.request(suite.T(), http.MethodPatch, transaction.Data.Links.Self, map[string]any{"envelopeId": uuid.New()})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	r = suite.request(suite.T(), http.MethodGet, transaction.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &updated)
	suite.Assert().Equal("22.5", updated.Data.Amount.String(), "Rejected updates must not change the transaction")
}

func (suite *TestSuiteStandard) TestTransactionsDelete() {
	transaction := suite.createTestTransaction(suite.T(), controllers.TransactionEditable{})

	r := suite.request(suite.T(), http.MethodDelete, transaction.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var tombstone controllers.TombstoneResponse
	test.DecodeResponse(suite.T(), &r, &tombstone)
	suite.Assert().Equal([]uuid.UUID{transaction.Data.ID}, tombstone.Data.Resources)

	r = suite.request(suite.T(), http.MethodGet, transaction.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	r = suite.request(suite.T(), http.MethodDelete, "http://example.com/v1/transactions/not-a-uuid", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestSplits() {
	groceries := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{})
	household := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{})

	split := controllers.SplitCreate{
		Description: "Drugstore",
		Parts: []controllers.SplitPart{
			{EnvelopeID: groceries.Data.ID, Amount: decimal.NewFromInt(40), Type: models.TransactionTypeExpense},
			{EnvelopeID: household.Data.ID, Amount: decimal.NewFromInt(15), Type: models.TransactionTypeExpense},
		},
	}

	r := suite.request(suite.T(), http.MethodPost, "http://example.com/v1/splits", split)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response controllers.TransactionListResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Require().Len(response.Data, 2)
	suite.Require().NotNil(response.Data[0].SplitGroupID)
	suite.Assert().Equal(*response.Data[0].SplitGroupID, *response.Data[1].SplitGroupID)
	suite.Assert().Equal("Drugstore", response.Data[1].Description)
	suite.Assert().True(suite.now.Equal(response.Data[0].Date))

	r = suite.request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/transactions?splitGroup=%s", response.Data[0].SplitGroupID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list controllers.TransactionListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	suite.Assert().Len(list.Data, 2)

	split.Parts = split.Parts[:1]
	r = suite.request(suite.T(), http.MethodPost, "http://example.com/v1/splits", split)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	split.Parts = append(split.Parts, controllers.SplitPart{EnvelopeID: uuid.New(), Amount: decimal.NewFromInt(1), Type: models.TransactionTypeExpense})
	r = suite.request(suite.T(), http.MethodPost, "http://example.com/v1/splits", split)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestTransfers() {
	from := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{})
	to := suite.createTestEnvelope(suite.T(), controllers.EnvelopeEditable{})

	r := suite.request(suite.T(), http.MethodPost, "http://example.com/v1/transfers", controllers.TransferCreate{
		From:        from.Data.ID,
		To:          to.Data.ID,
		Amount:      decimal.NewFromInt(25),
		Description: "Cover overspending",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response controllers.TransactionListResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Require().Len(response.Data, 2)
	suite.Assert().Equal(models.TransactionTypeExpense, response.Data[0].Type)
	suite.Assert().Equal(from.Data.ID, response.Data[0].EnvelopeID)
	suite.Assert().Equal(models.TransactionTypeIncome, response.Data[1].Type)
	suite.Assert().Equal(to.Data.ID, response.Data[1].EnvelopeID)
	suite.Require().NotNil(response.Data[0].TransferID)
	suite.Assert().Equal(*response.Data[0].TransferID, *response.Data[1].TransferID)

	// Deleting one half deletes both
	r = suite.request(suite.T(), http.MethodDelete, response.Data[1].Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var tombstone controllers.TombstoneResponse
	test.DecodeResponse(suite.T(), &r, &tombstone)
	suite.Assert().ElementsMatch([]uuid.UUID{response.Data[0].ID, response.Data[1].ID}, tombstone.Data.Resources)

	r = suite.request(suite.T(), http.MethodPost, "http://example.com/v1/transfers", controllers.TransferCreate{From: from.Data.ID, To: from.Data.ID, Amount: decimal.NewFromInt(5)})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = suite.request(suite.T(), http.MethodPost, "http://example.com/v1/transfers", controllers.TransferCreate{From: from.Data.ID, To: to.Data.ID})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}
