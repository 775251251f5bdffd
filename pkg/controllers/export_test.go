package controllers_test

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/envelope-zero/ledger/pkg/controllers"
	"github.com/envelope-zero/ledger/pkg/export"
	"github.com/envelope-zero/ledger/pkg/test"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func (suite *TestSuiteStandard) TestExportCSV() {
	suite.createTestTransaction(suite.T(), controllers.TransactionEditable{Amount: decimal.RequireFromString("12.5"), Description: "Lunch"})

	r := suite.request(suite.T(), http.MethodGet, "http://example.com/v1/export", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	suite.Assert().Equal("text/csv; charset=utf-8", r.Header().Get("Content-Type"))
	suite.Assert().Equal(`attachment; filename="transactions-2026-02-2026-02.csv"`, r.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(r.Body.String()), "\n")
	suite.Require().Len(lines, 2)
	suite.Assert().Equal("Date,Month,Type,Amount,Envelopes,Description,Merchant,Payment Method,Reconciled,Automatic", strings.TrimSpace(lines[0]))
	suite.Assert().Contains(lines[1], "Lunch")

	// March has no transactions
	r = suite.request(suite.T(), http.MethodGet, "http://example.com/v1/export?from=2026-03", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	suite.Assert().Len(strings.Split(strings.TrimSpace(r.Body.String()), "\n"), 1)
}

func (suite *TestSuiteStandard) TestExportXLSX() {
	suite.createTestTransaction(suite.T(), controllers.TransactionEditable{Description: "Lunch"})

	r := suite.request(suite.T(), http.MethodGet, "http://example.com/v1/export?format=xlsx", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	suite.Assert().Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", r.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(r.Body.Bytes()))
	suite.Require().Nil(err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetName)
	suite.Require().Nil(err)
	suite.Require().Len(rows, 2)
	suite.Assert().Equal("Date", rows[0][0])
}

func (suite *TestSuiteStandard) TestExportErrors() {
	tests := []struct {
		name string
		url  string
	}{
		{"Unknown format", "http://example.com/v1/export?format=pdf"},
		{"Invalid month", "http://example.com/v1/export?from=February"},
		{"Reversed range", "http://example.com/v1/export?from=2026-03&to=2026-02"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := suite.request(t, http.MethodGet, tt.url, "")
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
		})
	}
}
