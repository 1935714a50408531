package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"minibank/internal/api/handler/dto"
	"minibank/internal/domain/account"
	"minibank/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

type AccountHandler struct {
	service account.AccountService
	logger  *slog.Logger
}

func NewAccountHandler(s account.AccountService, l *slog.Logger) *AccountHandler {
	if s == nil {
		panic("account service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &AccountHandler{
		service: s,
		logger:  l.With("component", "AccountHandler"),
	}
}

func getAccountIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "accountID")
	if idStr == "" {
		return 0, fmt.Errorf("%w: accountID not found in URL path", apperrors.ErrInvalidArgument)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid accountID format in URL path: %s", apperrors.ErrInvalidArgument, idStr)
	}
	return id, nil
}

// movementErrorLevel keeps expected business rejections at Warn so the
// error log stays a signal, not an attempt counter.
func movementErrorLevel(err error) slog.Level {
	if errors.Is(err, apperrors.ErrNotAuthorized) ||
		errors.Is(err, apperrors.ErrInsufficientFunds) ||
		errors.Is(err, apperrors.ErrInvalidAmount) ||
		errors.Is(err, apperrors.ErrNotFound) {
		return slog.LevelWarn
	}
	return slog.LevelError
}

// OpenAccount handles POST /accounts
// @Summary Open a new account
// @Description Opens a zero-balance account for an existing customer. The password must be at least 9 characters.
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body dto.OpenAccountRequest true "Account opening request"
// @Success 201 {object} dto.AccountResponse "Account successfully opened"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or weak password"
// @Failure 404 {object} dto.ErrorResponse "Owning customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /accounts [post]
// @Security BearerAuth
func (h *AccountHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received open account request")

	var req dto.OpenAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Request validation failed", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	acct, err := h.service.OpenAccount(r.Context(), req.CustomerID, req.Password)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrWeakCredential) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to open account", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewAccountResponse(acct)
	h.logger.InfoContext(r.Context(), "Account opened successfully", slog.Int64("accountID", resp.AccountID))
	respondJSON(w, http.StatusCreated, resp)
}

// GetAccount handles POST /accounts/{accountID}/inquiry
// @Summary Retrieve account details
// @Description Retrieves account details. The account password is required; a wrong password and a missing account are indistinguishable to the caller.
// @Tags Accounts
// @Accept json
// @Produce json
// @Param accountID path int true "Account ID" Minimum(1)
// @Param request body dto.MoneyMovementRequest true "Credential payload (amount ignored)"
// @Success 200 {object} dto.AccountResponse "Account details retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid account ID or payload"
// @Failure 401 {object} dto.ErrorResponse "Authentication failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /accounts/{accountID}/inquiry [post]
// @Security BearerAuth
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := getAccountIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	acct, err := h.service.GetAccount(r.Context(), accountID, req.Password)
	if err != nil {
		h.logger.Log(r.Context(), movementErrorLevel(err), "Service failed to get account", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewAccountResponse(acct))
}

// Deposit handles POST /accounts/{accountID}/deposits
// @Summary Deposit into an account
// @Description Adds a positive amount to the account balance and returns the new balance.
// @Tags Accounts
// @Accept json
// @Produce json
// @Param accountID path int true "Account ID" Minimum(1)
// @Param request body dto.MoneyMovementRequest true "Deposit payload"
// @Success 200 {object} dto.BalanceResponse "New balance after the deposit"
// @Failure 400 {object} dto.ErrorResponse "Invalid account ID, payload or non-positive amount"
// @Failure 401 {object} dto.ErrorResponse "Authentication failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /accounts/{accountID}/deposits [post]
// @Security BearerAuth
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	accountID, err := getAccountIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Received deposit request", slog.Int64("accountID", accountID))

	var req dto.MoneyMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	newBalance, err := h.service.Deposit(r.Context(), accountID, req.Password, req.Amount)
	if err != nil {
		h.logger.Log(r.Context(), movementErrorLevel(err), "Service failed to process deposit", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Deposit processed successfully", slog.Int64("accountID", accountID))
	respondJSON(w, http.StatusOK, dto.BalanceResponse{AccountID: accountID, Credit: newBalance})
}

// Withdraw handles POST /accounts/{accountID}/withdrawals
// @Summary Withdraw from an account
// @Description Subtracts a positive amount from the account balance and returns the new balance. Amounts above the balance are rejected whole.
// @Tags Accounts
// @Accept json
// @Produce json
// @Param accountID path int true "Account ID" Minimum(1)
// @Param request body dto.MoneyMovementRequest true "Withdrawal payload"
// @Success 200 {object} dto.BalanceResponse "New balance after the withdrawal"
// @Failure 400 {object} dto.ErrorResponse "Invalid account ID, payload or non-positive amount"
// @Failure 401 {object} dto.ErrorResponse "Authentication failed"
// @Failure 422 {object} dto.ErrorResponse "Insufficient funds"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /accounts/{accountID}/withdrawals [post]
// @Security BearerAuth
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	accountID, err := getAccountIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Received withdrawal request", slog.Int64("accountID", accountID))

	var req dto.MoneyMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	newBalance, err := h.service.Withdraw(r.Context(), accountID, req.Password, req.Amount)
	if err != nil {
		h.logger.Log(r.Context(), movementErrorLevel(err), "Service failed to process withdrawal", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Withdrawal processed successfully", slog.Int64("accountID", accountID))
	respondJSON(w, http.StatusOK, dto.BalanceResponse{AccountID: accountID, Credit: newBalance})
}

// ListByCustomer handles GET /customers/{customerID}/accounts
// @Summary List a customer's accounts
// @Description Retrieves every account owned by the customer.
// @Tags Accounts
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {array} dto.AccountResponse "List of accounts"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/accounts [get]
// @Security BearerAuth
func (h *AccountHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	accounts, err := h.service.ListByCustomer(r.Context(), customerID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to list accounts", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := make([]dto.AccountResponse, len(accounts))
	for i, acct := range accounts {
		resp[i] = dto.NewAccountResponse(acct)
	}
	respondJSON(w, http.StatusOK, resp)
}

// CountByCustomer handles GET /customers/{customerID}/accounts/count
// @Summary Count a customer's accounts
// @Description Returns the number of accounts owned by the customer.
// @Tags Accounts
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.AccountCountResponse "Account count"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/accounts/count [get]
// @Security BearerAuth
func (h *AccountHandler) CountByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	count, err := h.service.CountByCustomer(r.Context(), customerID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to count accounts", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.AccountCountResponse{CustomerID: customerID, Count: count})
}
