package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/envelope-zero/ledger/internal/types"
	"github.com/envelope-zero/ledger/pkg/httputil"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"
	"golang.org/x/text/cases"
)

// RegisterTransactionRoutes registers the routes for transactions with
// the RouterGroup that is passed.
func (co Controller) RegisterTransactionRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", co.OptionsTransactionList)
		r.GET("", co.GetTransactions)
		r.POST("", co.CreateTransactions)
	}

	// Transaction with ID
	{
		r.OPTIONS("/:id", co.OptionsTransactionDetail)
		r.GET("/:id", co.GetTransaction)
		r.PATCH("/:id", co.UpdateTransaction)
		r.DELETE("/:id", co.DeleteTransaction)
	}
}

// RegisterSplitRoutes registers the routes for split transactions with
// the RouterGroup that is passed.
func (co Controller) RegisterSplitRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", co.OptionsSplit)
	r.POST("", co.CreateSplit)
}

// RegisterTransferRoutes registers the routes for transfers between
// envelopes with the RouterGroup that is passed.
func (co Controller) RegisterTransferRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", co.OptionsTransfer)
	r.POST("", co.CreateTransfer)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transactions [options]
func (co Controller) OptionsTransactionList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/transactions/{id} [options]
func (co Controller) OptionsTransactionDetail(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	if _, err := co.Ledger.Transaction(id); err != nil {
		abort(c, err)
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/splits [options]
func (co Controller) OptionsSplit(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transfers [options]
func (co Controller) OptionsTransfer(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Create transactions
// @Description	Creates transactions. Transactions without a date are dated now.
// @Tags			Transactions
// @Produce		json
// @Success		201				{object}	TransactionCreateResponse
// @Failure		400				{object}	TransactionCreateResponse
// @Failure		404				{object}	TransactionCreateResponse
// @Param			transactions	body		[]controllers.TransactionEditable	true	"Transactions"
// @Router			/v1/transactions [post]
func (co Controller) CreateTransactions(c *gin.Context) {
	var transactions []TransactionEditable

	if err := httputil.BindData(c, &transactions); err != nil {
		abort(c, err)
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := TransactionCreateResponse{}

	for _, editable := range transactions {
		model := editable.model()
		if model.Date.IsZero() {
			model.Date = co.Ledger.Config().Now()
		}

		transaction, err := co.Ledger.CreateTransaction(model)
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := co.newTransaction(c, transaction)
		r.Data = append(r.Data, TransactionResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get transactions
// @Description	Returns transactions, newest first
// @Tags			Transactions
// @Produce		json
// @Success		200				{object}	TransactionListResponse
// @Failure		400				{object}	httpError
// @Param			envelope		query		string	false	"Filter by envelope ID"
// @Param			paymentMethod	query		string	false	"Filter by payment method ID"
// @Param			splitGroup		query		string	false	"Filter by split group ID"
// @Param			month			query		string	false	"Filter by month in YYYY-MM format"
// @Param			type			query		string	false	"Filter by type"
// @Param			reconciled		query		bool	false	"Reconcilation state"
// @Param			search			query		string	false	"Search for this text in description and merchant"
// @Router			/v1/transactions [get]
func (co Controller) GetTransactions(c *gin.Context) {
	var filter TransactionQueryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		abort(c, fmt.Errorf("%w: %w", httputil.ErrInvalidQuery, err))
		return
	}

	if filter.Type != "" && !slices.Contains([]models.TransactionType{models.TransactionTypeIncome, models.TransactionTypeExpense}, filter.Type) {
		abort(c, fmt.Errorf("%w, got '%s'", models.ErrTransactionTypeInvalid, filter.Type))
		return
	}

	var month types.Month
	if filter.Month != "" {
		m, err := httputil.MonthFromString(filter.Month)
		if err != nil {
			abort(c, err)
			return
		}
		month = m
	}

	fold := cases.Fold()
	search := fold.String(filter.Search)

	transactions := co.Ledger.Snapshot().Transactions
	data := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		if !filter.Envelope.IsNil() && t.EnvelopeID != filter.Envelope.UUID {
			continue
		}

		if !filter.PaymentMethod.IsNil() && (t.PaymentMethodID == nil || *t.PaymentMethodID != filter.PaymentMethod.UUID) {
			continue
		}

		if !filter.SplitGroup.IsNil() && (t.SplitGroupID == nil || *t.SplitGroupID != filter.SplitGroup.UUID) {
			continue
		}

		if !month.IsZero() && !t.Month.Equal(month) {
			continue
		}

		if filter.Type != "" && t.Type != filter.Type {
			continue
		}

		if filter.Reconciled != nil && t.Reconciled != *filter.Reconciled {
			continue
		}

		if search != "" && !strings.Contains(fold.String(t.Description), search) && !strings.Contains(fold.String(t.Merchant), search) {
			continue
		}

		data = append(data, co.newTransaction(c, t))
	}

	slices.SortStableFunc(data, func(a, b Transaction) int {
		if d := b.Date.Compare(a.Date); d != 0 {
			return d
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	c.JSON(http.StatusOK, TransactionListResponse{Data: data})
}

// @Summary		Get transaction
// @Description	Returns a specific transaction
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/transactions/{id} [get]
func (co Controller) GetTransaction(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	transaction, err := co.Ledger.Transaction(id)
	if err != nil {
		abort(c, err)
		return
	}

	data := co.newTransaction(c, transaction)
	c.JSON(http.StatusOK, TransactionResponse{Data: &data})
}

// @Summary		Update transaction
// @Description	Updates an existing transaction. Only values to be updated need to be specified.
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		200			{object}	TransactionResponse
// @Failure		400			{object}	httpError
// @Failure		404			{object}	httpError
// @Param			id			path		string							true	"ID formatted as string"
// @Param			transaction	body		controllers.TransactionEditable	true	"Transaction"
// @Router			/v1/transactions/{id} [patch]
func (co Controller) UpdateTransaction(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	transaction, err := co.Ledger.Transaction(id)
	if err != nil {
		abort(c, err)
		return
	}

	// Fields not in the body keep their current value
	data := newTransactionEditable(transaction)
	if err := httputil.BindData(c, &data); err != nil {
		abort(c, err)
		return
	}

	update := data.model()
	update.DefaultModel = transaction.DefaultModel
	update.Automatic = transaction.Automatic
	transaction, err = co.Ledger.UpdateTransaction(update)
	if err != nil {
		abort(c, err)
		return
	}

	apiResource := co.newTransaction(c, transaction)
	c.JSON(http.StatusOK, TransactionResponse{Data: &apiResource})
}

// @Summary		Delete transaction
// @Description	Deletes a transaction. Deleting one half of a transfer deletes both halves.
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TombstoneResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/transactions/{id} [delete]
func (co Controller) DeleteTransaction(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	tombstone, err := co.Ledger.DeleteTransaction(id)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, newTombstoneResponse(c, tombstone))
}

// @Summary		Create split transaction
// @Description	Creates a transaction split into parts against different envelopes. All parts share the date, description, merchant and payment method.
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		201		{object}	TransactionListResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Param			split	body		controllers.SplitCreate	true	"Split"
// @Router			/v1/splits [post]
func (co Controller) CreateSplit(c *gin.Context) {
	var split SplitCreate
	if err := httputil.BindData(c, &split); err != nil {
		abort(c, err)
		return
	}

	date := split.Date
	if date.IsZero() {
		date = co.Ledger.Config().Now()
	}

	parts, err := co.Ledger.CreateSplit(split.models(date))
	if err != nil {
		abort(c, err)
		return
	}

	data := make([]Transaction, 0, len(parts))
	for _, p := range parts {
		data = append(data, co.newTransaction(c, p))
	}

	c.JSON(http.StatusCreated, TransactionListResponse{Data: data})
}

// @Summary		Create transfer
// @Description	Moves money between envelopes. Creates an expense on the source and an income on the destination.
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		201			{object}	TransactionListResponse
// @Failure		400			{object}	httpError
// @Failure		404			{object}	httpError
// @Param			transfer	body		controllers.TransferCreate	true	"Transfer"
// @Router			/v1/transfers [post]
func (co Controller) CreateTransfer(c *gin.Context) {
	var transfer TransferCreate
	if err := httputil.BindData(c, &transfer); err != nil {
		abort(c, err)
		return
	}

	date := transfer.Date
	if date.IsZero() {
		date = co.Ledger.Config().Now()
	}

	halves, err := co.Ledger.Transfer(transfer.From, transfer.To, transfer.Amount, date, transfer.Description)
	if err != nil {
		abort(c, err)
		return
	}

	data := make([]Transaction, 0, len(halves))
	for _, h := range halves {
		data = append(data, co.newTransaction(c, h))
	}

	c.JSON(http.StatusCreated, TransactionListResponse{Data: data})
}
