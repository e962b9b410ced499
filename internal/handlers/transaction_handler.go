package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "saldo/internal/errors"
	"saldo/internal/installment"
	"saldo/internal/models"
	"saldo/internal/money"
	"saldo/internal/pagination"
	"saldo/internal/services"
	"saldo/internal/uuid"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	installmentService services.InstallmentServicer
	auditService       services.AuditServicer
	now                func() time.Time
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(
	transactionService services.TransactionServicer,
	installmentService services.InstallmentServicer,
	auditService services.AuditServicer,
) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		installmentService: installmentService,
		auditService:       auditService,
		now:                time.Now,
	}
}

// CreateTransactionRequest represents the request payload for creating a
// transaction. Amount is a non-negative magnitude; the stored sign follows Type.
type CreateTransactionRequest struct {
	Description        string                  `json:"description" binding:"required,max=500"`
	Amount             *money.Amount           `json:"amount" binding:"required" swaggertype:"string" example:"12.50"`
	Type               models.TransactionType  `json:"type" binding:"required,transaction_type"`
	Date               string                  `json:"date" example:"2024-01-31"`
	Category           *string                 `json:"category" binding:"omitempty,max=100"`
	AccountID          *string                 `json:"account_id"`
	IsRecurring        bool                    `json:"is_recurring"`
	RecurringPeriod    *models.RecurringPeriod `json:"recurring_period" binding:"omitempty,recurring_period"`
	InstallmentCurrent *int                    `json:"installment_current" binding:"omitempty,min=1"`
	InstallmentTotal   *int                    `json:"installment_total" binding:"omitempty,min=2"`
	DueDate            string                  `json:"due_date" example:"2024-02-10"`
	PaymentStatus      models.PaymentStatus    `json:"payment_status" binding:"omitempty,payment_status"`
}

// UpdateTransactionRequest represents a partial edit. An empty category,
// account_id or due_date clears that field.
type UpdateTransactionRequest struct {
	Description     *string                 `json:"description" binding:"omitempty,min=1,max=500"`
	Amount          *money.Amount           `json:"amount" swaggertype:"string" example:"12.50"`
	Type            *models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
	Date            *string                 `json:"date"`
	Category        *string                 `json:"category" binding:"omitempty,max=100"`
	AccountID       *string                 `json:"account_id"`
	IsRecurring     *bool                   `json:"is_recurring"`
	RecurringPeriod *models.RecurringPeriod `json:"recurring_period" binding:"omitempty,recurring_period"`
	DueDate         *string                 `json:"due_date"`
	PaymentStatus   *models.PaymentStatus   `json:"payment_status" binding:"omitempty,payment_status"`
}

// CreateInstallmentsRequest represents a purchase split into monthly
// installments. TotalAmount is the positive magnitude of the whole purchase.
type CreateInstallmentsRequest struct {
	Description     string                  `json:"description" binding:"required,max=500"`
	TotalAmount     *money.Amount           `json:"total_amount" binding:"required" swaggertype:"string" example:"1200.00"`
	Type            models.TransactionType  `json:"type" binding:"required,transaction_type"`
	Installments    int                     `json:"installments" binding:"required,min=2,max=360"`
	StartDate       string                  `json:"start_date" binding:"required" example:"2024-01-31"`
	Category        *string                 `json:"category" binding:"omitempty,max=100"`
	AccountID       *string                 `json:"account_id"`
	IsRecurring     bool                    `json:"is_recurring"`
	RecurringPeriod *models.RecurringPeriod `json:"recurring_period" binding:"omitempty,recurring_period"`
	PaymentStatus   models.PaymentStatus    `json:"payment_status" binding:"omitempty,payment_status"`
}

// transactionQuery holds the list filters accepted in query strings.
type transactionQuery struct {
	FromDate  string `form:"from_date"`
	ToDate    string `form:"to_date"`
	Type      string `form:"type" binding:"omitempty,transaction_type"`
	Category  string `form:"category"`
	AccountID string `form:"account_id"`
}

// bindTransactionFilter reads the optional list filters from the query string.
func bindTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var q transactionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return services.TransactionFilter{}, bindError(err)
	}

	var (
		filter services.TransactionFilter
		err    error
	)
	if filter.FromDate, err = parseOptionalDate("from_date", q.FromDate); err != nil {
		return filter, err
	}
	if filter.ToDate, err = parseOptionalDate("to_date", q.ToDate); err != nil {
		return filter, err
	}
	if filter.FromDate != nil && filter.ToDate != nil && filter.FromDate.After(*filter.ToDate) {
		return filter, apperrors.ErrInvalidDateRange
	}
	if q.Type != "" {
		t := models.TransactionType(q.Type)
		filter.Type = &t
	}
	if category := strings.TrimSpace(q.Category); category != "" {
		filter.Category = &category
	}
	if q.AccountID != "" {
		id, err := uuid.Parse(q.AccountID)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid account_id")
		}
		filter.AccountID = &id
	}
	return filter, nil
}

// optionalAccountID validates a request account reference. Blank means none.
func optionalAccountID(id *string) (*string, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil, nil
	}
	canonical, err := uuid.Parse(strings.TrimSpace(*id))
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid account_id")
	}
	return &canonical, nil
}

func nonNegative(a *money.Amount, field string) error {
	if a != nil && a.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, field+" must not be negative")
	}
	return nil
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record an income or expense. When account_id is set the account balance moves by the signed amount in the same database transaction.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	if err := nonNegative(req.Amount, "amount"); err != nil {
		respondWithError(c, err)
		return
	}

	date := models.DateOnly(h.now())
	if req.Date != "" {
		if date, err = parseDate("date", req.Date); err != nil {
			respondWithError(c, err)
			return
		}
	}
	dueDate, err := parseOptionalDate("due_date", req.DueDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	accountID, err := optionalAccountID(req.AccountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request.Context(), userID, services.TransactionInput{
		Description:        req.Description,
		Amount:             money.Signed(req.Amount.Decimal, req.Type),
		Date:               date,
		Type:               req.Type,
		Category:           req.Category,
		AccountID:          accountID,
		IsRecurring:        req.IsRecurring,
		RecurringPeriod:    req.RecurringPeriod,
		InstallmentCurrent: req.InstallmentCurrent,
		InstallmentTotal:   req.InstallmentTotal,
		DueDate:            dueDate,
		PaymentStatus:      req.PaymentStatus,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]any{"type": transaction.Type, "amount": transaction.Amount.StringFixed(2), "account_id": transaction.AccountID})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// CreateInstallments handles splitting a purchase into monthly installments
// @Summary     Create installments
// @Description Split a purchase into monthly installments. Each installment is recorded independently; a failed one does not stop the rest.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateInstallmentsRequest true "Installment plan"
// @Success     201 {object} services.InstallmentResult "At least one installment created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "No installment created"
// @Router      /transactions/installments [post]
func (h *TransactionHandler) CreateInstallments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateInstallmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	if !req.TotalAmount.IsPositive() {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "total_amount must be positive"))
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	accountID, err := optionalAccountID(req.AccountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.installmentService.CreateInstallments(c.Request.Context(), userID, installment.Template{
		Description:     req.Description,
		TotalAmount:     req.TotalAmount.Decimal,
		Type:            req.Type,
		Category:        req.Category,
		AccountID:       accountID,
		StartDate:       start,
		Installments:    req.Installments,
		IsRecurring:     req.IsRecurring,
		RecurringPeriod: req.RecurringPeriod,
		PaymentStatus:   req.PaymentStatus,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	if result.SuccessCount == 0 {
		respondWithError(c, apperrors.ErrInstallmentsFailed)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "CREATE_INSTALLMENTS", "transaction", result.Created[0].ID, c.ClientIP(),
		map[string]any{"success_count": result.SuccessCount, "total": result.Total, "total_amount": req.TotalAmount.StringFixed(2)})

	c.JSON(http.StatusCreated, result)
}

// GetUserTransactions handles the retrieval of transactions for a user
// @Summary     Get user transactions
// @Description Get a paginated list of transactions, newest first, joined with their account name and color
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 20, max 100)"
// @Param       from_date  query string false "Earliest date (YYYY-MM-DD)"
// @Param       to_date    query string false "Latest date, inclusive (YYYY-MM-DD)"
// @Param       type       query string false "income or expense"
// @Param       category   query string false "Category label"
// @Param       account_id query string false "Account ID"
// @Success     200 {object} pagination.PageResponse[services.TransactionView] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	filter, err := bindTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(c.Request.Context(), userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Description Get a specific transaction. payment_status is derived from the due date as of today.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(c.Request.Context(), userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction handles editing a transaction
// @Summary     Update transaction
// @Description Edit a transaction. Account balances are corrected for the old and new amount and account in one database transaction.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Changed fields"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction or account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	if err := nonNegative(req.Amount, "amount"); err != nil {
		respondWithError(c, err)
		return
	}

	fields := services.TransactionUpdateFields{
		Description:     req.Description,
		Type:            req.Type,
		IsRecurring:     req.IsRecurring,
		RecurringPeriod: req.RecurringPeriod,
		PaymentStatus:   req.PaymentStatus,
	}
	if req.Amount != nil {
		fields.Amount = &req.Amount.Decimal
	}
	if req.Date != nil {
		date, err := parseDate("date", *req.Date)
		if err != nil {
			respondWithError(c, err)
			return
		}
		fields.Date = &date
	}
	if req.Category != nil {
		if strings.TrimSpace(*req.Category) == "" {
			fields.ClearCategory = true
		} else {
			fields.Category = req.Category
		}
	}
	if req.AccountID != nil {
		accountID, err := optionalAccountID(req.AccountID)
		if err != nil {
			respondWithError(c, err)
			return
		}
		fields.AccountID = accountID
		fields.ClearAccount = accountID == nil
	}
	if req.DueDate != nil {
		dueDate, err := parseOptionalDate("due_date", *req.DueDate)
		if err != nil {
			respondWithError(c, err)
			return
		}
		fields.DueDate = dueDate
		fields.ClearDueDate = dueDate == nil
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request.Context(), userID, transactionID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "UPDATE_TRANSACTION", "transaction", transactionID, c.ClientIP(),
		map[string]any{"amount": transaction.Amount.StringFixed(2), "account_id": transaction.AccountID})

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles deleting a transaction
// @Summary     Delete transaction
// @Description Delete a transaction and reverse its effect on its account balance
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Transaction deleted successfully"})
}
