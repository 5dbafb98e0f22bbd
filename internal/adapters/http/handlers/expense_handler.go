package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"expense-insight/internal/adapters/http/middleware"
	"expense-insight/internal/adapters/persistence/models"
	"expense-insight/internal/core/domain"
	"expense-insight/internal/core/services"
	"expense-insight/internal/pkg/pagination"
	"expense-insight/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ExpenseHandler handles expense endpoints
type ExpenseHandler struct {
	expenseService   *services.ExpenseService
	analyticsService *services.AnalyticsService
	receiptService   *services.ReceiptService
	maxUploadBytes   int64
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(
	expenseService *services.ExpenseService,
	analyticsService *services.AnalyticsService,
	receiptService *services.ReceiptService,
	maxUploadMB int,
) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService:   expenseService,
		analyticsService: analyticsService,
		receiptService:   receiptService,
		maxUploadBytes:   int64(maxUploadMB) << 20,
	}
}

// ExpenseRequest represents the add expense body.
// Amount accepts a JSON number or a numeric string.
type ExpenseRequest struct {
	Category string      `json:"category" example:"Rent"`
	Amount   json.Number `json:"amount" swaggertype:"number" example:"500"`
	Date     string      `json:"date" example:"2024-01-15"`
	Notes    string      `json:"notes" example:"January rent"`
}

// UpdateExpenseRequest represents the update expense body.
// Omitted fields keep their stored value.
type UpdateExpenseRequest struct {
	Category *string      `json:"category" example:"Rent"`
	Amount   *json.Number `json:"amount" swaggertype:"number" example:"550"`
	Date     *string      `json:"date" example:"2024-02-01"`
	Notes    *string      `json:"notes"`
}

// ExpenseListResponse is the body of a list page
type ExpenseListResponse struct {
	Expenses []*models.ExpenseResponse `json:"expenses"`
	Meta     *pagination.Meta          `json:"meta"`
}

// Add creates an expense
// @Summary Add expense
// @Description Validate, score and store a new expense for the current user
// @Tags Expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ExpenseRequest true "Expense data"
// @Success 201 {object} response.Response{data=models.ExpenseResponse}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /expense/add [post]
func (h *ExpenseHandler) Add(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	expense, err := h.expenseService.Add(c.Context(), userID, middleware.CurrentToken(c), services.ExpenseInput{
		Category: req.Category,
		Amount:   req.Amount.String(),
		Date:     req.Date,
		Notes:    req.Notes,
	})
	if err != nil {
		return h.handleError(c, err, "Failed to add expense")
	}

	return response.Created(c, "Expense added successfully", expense.ToResponse())
}

// Update replaces an expense
// @Summary Update expense
// @Description Merge the given fields over a stored expense, then re-validate and re-score it
// @Tags Expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Param body body UpdateExpenseRequest true "Fields to change"
// @Success 200 {object} response.Response{data=models.ExpenseResponse}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /expense/update/{id} [put]
func (h *ExpenseHandler) Update(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, ok := expenseID(c)
	if !ok {
		return response.NotFound(c, "Expense not found")
	}

	var req UpdateExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := services.UpdateExpenseInput{
		Category: req.Category,
		Date:     req.Date,
		Notes:    req.Notes,
	}
	if req.Amount != nil {
		amount := req.Amount.String()
		input.Amount = &amount
	}

	expense, err := h.expenseService.Update(c.Context(), userID, id, middleware.CurrentToken(c), input)
	if err != nil {
		return h.handleError(c, err, "Failed to update expense")
	}

	return response.Success(c, "Expense updated successfully", expense.ToResponse())
}

// Delete removes an expense
// @Summary Delete expense
// @Description Delete an expense owned by the current user
// @Tags Expenses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /expense/delete/{id} [delete]
func (h *ExpenseHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, ok := expenseID(c)
	if !ok {
		return response.NotFound(c, "Expense not found")
	}

	if err := h.expenseService.Delete(c.Context(), userID, id); err != nil {
		return h.handleError(c, err, "Failed to delete expense")
	}

	return response.Success(c, "Expense deleted successfully", nil)
}

// Get returns one expense
// @Summary Get expense
// @Description Get an expense owned by the current user
// @Tags Expenses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Success 200 {object} response.Response{data=models.ExpenseResponse}
// @Failure 404 {object} response.Response
// @Router /expense/{id} [get]
func (h *ExpenseHandler) Get(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, ok := expenseID(c)
	if !ok {
		return response.NotFound(c, "Expense not found")
	}

	expense, err := h.expenseService.Get(c.Context(), userID, id)
	if err != nil {
		return h.handleError(c, err, "Failed to get expense")
	}

	return response.Success(c, "Expense retrieved successfully", expense.ToResponse())
}

// List returns a page of expenses
// @Summary List expenses
// @Description List the current user's expenses, newest date first
// @Tags Expenses
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response{data=ExpenseListResponse}
// @Router /expense/list [get]
func (h *ExpenseHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	expenses, total, err := h.expenseService.List(c.Context(), userID, params)
	if err != nil {
		return h.handleError(c, err, "Failed to list expenses")
	}

	return response.Success(c, "Expenses retrieved successfully", ExpenseListResponse{
		Expenses: models.ToExpenseResponses(expenses),
		Meta:     pagination.GetMeta(params, total),
	})
}

// Analysis summarizes every expense of the current user
// @Summary Expense analysis
// @Description Totals per category and per month (UTC) plus anomaly count
// @Tags Expenses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=services.Analysis}
// @Router /expense/analysis [get]
func (h *ExpenseHandler) Analysis(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	analysis, err := h.analyticsService.Analyze(c.Context(), userID)
	if err != nil {
		return h.handleError(c, err, "Failed to analyze expenses")
	}

	return response.Success(c, "Analysis retrieved successfully", analysis)
}

// UploadBill creates an expense from a receipt image
// @Summary Upload bill
// @Description Extract amount and date from a receipt image and store it as an expense
// @Tags Expenses
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param billImage formData file true "Receipt image"
// @Param category formData string false "Category" default(Miscellaneous)
// @Success 201 {object} response.Response{data=models.ExpenseResponse}
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /expense/upload-bill [post]
func (h *ExpenseHandler) UploadBill(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	file, err := c.FormFile("billImage")
	if err != nil {
		return response.BadRequest(c, "billImage is required")
	}
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		return response.BadRequest(c, "billImage must be an image")
	}
	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		return response.Error(c, fiber.StatusRequestEntityTooLarge, "billImage is too large")
	}

	src, err := file.Open()
	if err != nil {
		return response.BadRequest(c, "Failed to read billImage")
	}
	defer src.Close()

	expense, err := h.receiptService.Upload(c.Context(), userID, middleware.CurrentToken(c), services.ReceiptUpload{
		Filename: file.Filename,
		Image:    src,
		Category: c.FormValue("category"),
	})
	if err != nil {
		return h.handleError(c, err, "Failed to process bill")
	}

	return response.Created(c, "Bill processed successfully", expense.ToResponse())
}

func (h *ExpenseHandler) handleError(c *fiber.Ctx, err error, fallback string) error {
	if msg, ok := validationMessage(err); ok {
		return response.BadRequest(c, msg)
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, "Expense not found")
	case errors.Is(err, domain.ErrUpstreamDegraded):
		return response.BadGateway(c, "Receipt service is unavailable")
	default:
		return response.InternalServerError(c, fallback)
	}
}

// expenseID parses the :id parameter. Ids that cannot name a stored
// expense are reported as not found.
func expenseID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
