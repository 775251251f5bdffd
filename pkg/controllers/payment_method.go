package controllers

import (
	"net/http"

	"github.com/envelope-zero/ledger/pkg/httputil"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/gin-gonic/gin"
)

// PaymentMethodEditable represents all user configurable parameters
type PaymentMethodEditable struct {
	Name string `json:"name" example:"Credit Card"` // Name of the payment method
}

func (e PaymentMethodEditable) model() models.PaymentMethod {
	return models.PaymentMethod{
		Name: e.Name,
	}
}

type PaymentMethodLinks struct {
	Self         string `json:"self" example:"https://example.com/api/v1/payment-methods/3b1ea324-d438-4419-882a-2fc91d71772f"`                    // The payment method itself
	Transactions string `json:"transactions" example:"https://example.com/api/v1/transactions?paymentMethod=3b1ea324-d438-4419-882a-2fc91d71772f"` // Transactions paid with the payment method
}

type PaymentMethod struct {
	models.PaymentMethod
	Sync  models.SyncState   `json:"sync"`  // Sync state of the payment method
	Links PaymentMethodLinks `json:"links"` // Links to related resources
}

func (co Controller) newPaymentMethod(c *gin.Context, model models.PaymentMethod) PaymentMethod {
	return PaymentMethod{
		PaymentMethod: model,
		Sync:          co.Ledger.SyncState(model.ID),
		Links: PaymentMethodLinks{
			Self:         link(c, "payment-methods/%s", model.ID),
			Transactions: link(c, "transactions?paymentMethod=%s", model.ID),
		},
	}
}

type PaymentMethodListResponse struct {
	Data []PaymentMethod `json:"data"` // List of payment methods
}

type PaymentMethodResponse struct {
	Data  *PaymentMethod `json:"data"`                                                          // Data for the payment method
	Error *string        `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type PaymentMethodCreateResponse struct {
	Data []PaymentMethodResponse `json:"data"` // Data for the payment methods
}

// appendError appends a PaymentMethodResponse with the error and returns the updated HTTP status
func (r *PaymentMethodCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, PaymentMethodResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

// RegisterPaymentMethodRoutes registers the routes for payment methods with
// the RouterGroup that is passed.
func (co Controller) RegisterPaymentMethodRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", co.OptionsPaymentMethodList)
		r.GET("", co.GetPaymentMethods)
		r.POST("", co.CreatePaymentMethods)
	}

	// Payment method with ID
	{
		r.OPTIONS("/:id", co.OptionsPaymentMethodDetail)
		r.GET("/:id", co.GetPaymentMethod)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Payment Methods
// @Success		204
// @Router			/v1/payment-methods [options]
func (co Controller) OptionsPaymentMethodList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Payment Methods
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/payment-methods/{id} [options]
func (co Controller) OptionsPaymentMethodDetail(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	if _, err := co.Ledger.PaymentMethod(id); err != nil {
		abort(c, err)
		return
	}

	httputil.OptionsGet(c)
}

// @Summary		Create payment methods
// @Description	Creates new payment methods
// @Tags			Payment Methods
// @Produce		json
// @Success		201				{object}	PaymentMethodCreateResponse
// @Failure		400				{object}	PaymentMethodCreateResponse
// @Param			paymentMethods	body		[]controllers.PaymentMethodEditable	true	"Payment methods"
// @Router			/v1/payment-methods [post]
func (co Controller) CreatePaymentMethods(c *gin.Context) {
	var methods []PaymentMethodEditable

	if err := httputil.BindData(c, &methods); err != nil {
		abort(c, err)
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := PaymentMethodCreateResponse{}

	for _, editable := range methods {
		method, err := co.Ledger.CreatePaymentMethod(editable.model())
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := co.newPaymentMethod(c, method)
		r.Data = append(r.Data, PaymentMethodResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get payment methods
// @Description	Returns all payment methods
// @Tags			Payment Methods
// @Produce		json
// @Success		200	{object}	PaymentMethodListResponse
// @Router			/v1/payment-methods [get]
func (co Controller) GetPaymentMethods(c *gin.Context) {
	methods := co.Ledger.Snapshot().PaymentMethods

	data := make([]PaymentMethod, 0, len(methods))
	for _, method := range methods {
		data = append(data, co.newPaymentMethod(c, method))
	}

	c.JSON(http.StatusOK, PaymentMethodListResponse{Data: data})
}

// @Summary		Get payment method
// @Description	Returns a specific payment method
// @Tags			Payment Methods
// @Produce		json
// @Success		200	{object}	PaymentMethodResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/payment-methods/{id} [get]
func (co Controller) GetPaymentMethod(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	method, err := co.Ledger.PaymentMethod(id)
	if err != nil {
		abort(c, err)
		return
	}

	data := co.newPaymentMethod(c, method)
	c.JSON(http.StatusOK, PaymentMethodResponse{Data: &data})
}
