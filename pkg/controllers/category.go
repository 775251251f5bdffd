package controllers

import (
	"net/http"

	"github.com/envelope-zero/ledger/pkg/httputil"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/gin-gonic/gin"
)

// CategoryEditable represents all user configurable parameters
type CategoryEditable struct {
	Name string `json:"name" example:"Saving"` // Name of the category
}

func (e CategoryEditable) model() models.Category {
	return models.Category{
		Name: e.Name,
	}
}

type CategoryLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/categories/3b1ea324-d438-4419-882a-2fc91d71772f"` // The category itself
}

type Category struct {
	models.Category
	Sync  models.SyncState `json:"sync"`  // Sync state of the category
	Links CategoryLinks    `json:"links"` // Links to related resources
}

func (co Controller) newCategory(c *gin.Context, model models.Category) Category {
	return Category{
		Category: model,
		Sync:     co.Ledger.SyncState(model.ID),
		Links: CategoryLinks{
			Self: link(c, "categories/%s", model.ID),
		},
	}
}

type CategoryListResponse struct {
	Data []Category `json:"data"` // List of categories
}

type CategoryResponse struct {
	Data  *Category `json:"data"`                                                          // Data for the category
	Error *string   `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type CategoryCreateResponse struct {
	Data []CategoryResponse `json:"data"` // Data for the categories
}

// appendError appends a CategoryResponse with the error and returns the updated HTTP status
func (r *CategoryCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, CategoryResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

// RegisterCategoryRoutes registers the routes for categories with
// the RouterGroup that is passed.
func (co Controller) RegisterCategoryRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", co.OptionsCategoryList)
		r.GET("", co.GetCategories)
		r.POST("", co.CreateCategories)
	}

	// Category with ID
	{
		r.OPTIONS("/:id", co.OptionsCategoryDetail)
		r.GET("/:id", co.GetCategory)
		r.PATCH("/:id", co.UpdateCategory)
		r.DELETE("/:id", co.DeleteCategory)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Categories
// @Success		204
// @Router			/v1/categories [options]
func (co Controller) OptionsCategoryList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Categories
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/categories/{id} [options]
func (co Controller) OptionsCategoryDetail(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	if _, err := co.Ledger.Category(id); err != nil {
		abort(c, err)
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create categories
// @Description	Creates new categories
// @Tags			Categories
// @Produce		json
// @Success		201			{object}	CategoryCreateResponse
// @Failure		400			{object}	CategoryCreateResponse
// @Param			categories	body		[]controllers.CategoryEditable	true	"Categories"
// @Router			/v1/categories [post]
func (co Controller) CreateCategories(c *gin.Context) {
	var categories []CategoryEditable

	if err := httputil.BindData(c, &categories); err != nil {
		abort(c, err)
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := CategoryCreateResponse{}

	for _, editable := range categories {
		category, err := co.Ledger.CreateCategory(editable.model())
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := co.newCategory(c, category)
		r.Data = append(r.Data, CategoryResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get categories
// @Description	Returns all categories in display order
// @Tags			Categories
// @Produce		json
// @Success		200	{object}	CategoryListResponse
// @Router			/v1/categories [get]
func (co Controller) GetCategories(c *gin.Context) {
	categories := co.Ledger.Snapshot().Categories

	data := make([]Category, 0, len(categories))
	for _, category := range categories {
		data = append(data, co.newCategory(c, category))
	}

	c.JSON(http.StatusOK, CategoryListResponse{Data: data})
}

// @Summary		Get category
// @Description	Returns a specific category
// @Tags			Categories
// @Produce		json
// @Success		200	{object}	CategoryResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/categories/{id} [get]
func (co Controller) GetCategory(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	category, err := co.Ledger.Category(id)
	if err != nil {
		abort(c, err)
		return
	}

	data := co.newCategory(c, category)
	c.JSON(http.StatusOK, CategoryResponse{Data: &data})
}

// @Summary		Update category
// @Description	Updates an existing category. Only values to be updated need to be specified.
// @Tags			Categories
// @Accept			json
// @Produce		json
// @Success		200			{object}	CategoryResponse
// @Failure		400			{object}	httpError
// @Failure		404			{object}	httpError
// @Param			id			path		string						true	"ID formatted as string"
// @Param			category	body		controllers.CategoryEditable	true	"Category"
// @Router			/v1/categories/{id} [patch]
func (co Controller) UpdateCategory(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	category, err := co.Ledger.Category(id)
	if err != nil {
		abort(c, err)
		return
	}

	// Fields not in the body keep their current value
	data := CategoryEditable{Name: category.Name}
	if err := httputil.BindData(c, &data); err != nil {
		abort(c, err)
		return
	}

	category.Name = data.Name
	category, err = co.Ledger.UpdateCategory(category)
	if err != nil {
		abort(c, err)
		return
	}

	apiResource := co.newCategory(c, category)
	c.JSON(http.StatusOK, CategoryResponse{Data: &apiResource})
}

// @Summary		Delete category
// @Description	Deletes a category. Its envelopes are kept without category.
// @Tags			Categories
// @Produce		json
// @Success		200	{object}	TombstoneResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/categories/{id} [delete]
func (co Controller) DeleteCategory(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		abort(c, err)
		return
	}

	tombstone, err := co.Ledger.DeleteCategory(id)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, newTombstoneResponse(c, tombstone))
}
