package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"minibank/internal/api/handler/dto"
	"minibank/internal/domain/loan"
	"minibank/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

type LoanHandler struct {
	service loan.LoanService
	logger  *slog.Logger
}

func NewLoanHandler(s loan.LoanService, l *slog.Logger) *LoanHandler {
	if s == nil {
		panic("loan service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &LoanHandler{
		service: s,
		logger:  l.With("component", "LoanHandler"),
	}
}

func getLoanIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "loanID")
	if idStr == "" {
		return 0, fmt.Errorf("%w: loanID not found in URL path", apperrors.ErrInvalidArgument)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid loanID format in URL path: %s", apperrors.ErrInvalidArgument, idStr)
	}
	return id, nil
}

func issueErrorLevel(err error) slog.Level {
	if errors.Is(err, apperrors.ErrNotAuthorized) ||
		errors.Is(err, apperrors.ErrOwnerMismatch) ||
		errors.Is(err, apperrors.ErrAccountInactive) ||
		errors.Is(err, apperrors.ErrInsufficientCollateral) ||
		errors.Is(err, apperrors.ErrLoanTooLarge) ||
		errors.Is(err, apperrors.ErrInvalidInterestRate) ||
		errors.Is(err, apperrors.ErrInvalidExpiry) {
		return slog.LevelWarn
	}
	return slog.LevelError
}

// IssueLoan handles POST /accounts/{accountID}/loans
// @Summary Issue a loan against an account
// @Description Issues a loan after the eligibility chain passes: active account, credit of at least 1000, value at most half the credit, rate between 0 and 100, expiry in the future. Issuance records the terms and moves no funds.
// @Tags Loans
// @Accept json
// @Produce json
// @Param accountID path int true "Account ID" Minimum(1)
// @Param request body dto.IssueLoanRequest true "Loan issuance request"
// @Success 201 {object} dto.LoanResponse "Loan successfully issued"
// @Failure 400 {object} dto.ErrorResponse "Invalid payload, interest rate, expiry or owner mismatch"
// @Failure 401 {object} dto.ErrorResponse "Authentication failed"
// @Failure 422 {object} dto.ErrorResponse "Account inactive, insufficient collateral or loan too large"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /accounts/{accountID}/loans [post]
// @Security BearerAuth
func (h *LoanHandler) IssueLoan(w http.ResponseWriter, r *http.Request) {
	accountID, err := getAccountIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Received issue loan request", slog.Int64("accountID", accountID))

	var req dto.IssueLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	ln, err := h.service.IssueLoan(r.Context(), accountID, req.Password, req.CustomerID, req.Value, req.InterestRate, req.ExpiryDate)
	if err != nil {
		h.logger.Log(r.Context(), issueErrorLevel(err), "Service failed to issue loan", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewLoanResponse(ln)
	h.logger.InfoContext(r.Context(), "Loan issued successfully", slog.Int64("loanID", resp.LoanID))
	respondJSON(w, http.StatusCreated, resp)
}

// GetLoan handles GET /loans/{loanID}
// @Summary Retrieve loan details
// @Description Retrieves the details of a loan by its ID.
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID" Minimum(1)
// @Success 200 {object} dto.LoanResponse "Loan details retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID} [get]
// @Security BearerAuth
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	ln, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to get loan", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanResponse(ln))
}

// ListByAccount handles POST /accounts/{accountID}/loans/list
// @Summary List loans on an account
// @Description Retrieves every loan issued against the account. The account password is required.
// @Tags Loans
// @Accept json
// @Produce json
// @Param accountID path int true "Account ID" Minimum(1)
// @Param request body dto.ListLoansRequest true "Credential payload with optional customer filter"
// @Success 200 {array} dto.LoanResponse "List of loans"
// @Failure 400 {object} dto.ErrorResponse "Invalid account ID or payload"
// @Failure 401 {object} dto.ErrorResponse "Authentication failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /accounts/{accountID}/loans/list [post]
// @Security BearerAuth
func (h *LoanHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := getAccountIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.ListLoansRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var loans []*loan.Loan
	if req.CustomerID != 0 {
		loans, err = h.service.ListByCustomerAndAccount(r.Context(), req.CustomerID, accountID, req.Password)
	} else {
		loans, err = h.service.ListByAccount(r.Context(), accountID, req.Password)
	}
	if err != nil {
		h.logger.Log(r.Context(), issueErrorLevel(err), "Service failed to list loans by account", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanListResponse(loans))
}

// ListByCustomer handles GET /customers/{customerID}/loans
// @Summary List a customer's loans
// @Description Retrieves every loan borrowed by the customer, across all accounts.
// @Tags Loans
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {array} dto.LoanResponse "List of loans"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/loans [get]
// @Security BearerAuth
func (h *LoanHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	loans, err := h.service.ListByCustomer(r.Context(), customerID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to list loans by customer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanListResponse(loans))
}

// TotalBorrowed handles GET /customers/{customerID}/loans/total
// @Summary Total principal borrowed by a customer
// @Description Sums the principal of every loan the customer has borrowed. A customer with no loans totals zero.
// @Tags Loans
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.TotalBorrowedResponse "Total borrowed"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/loans/total [get]
// @Security BearerAuth
func (h *LoanHandler) TotalBorrowed(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	total, err := h.service.TotalBorrowed(r.Context(), customerID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to sum borrowed total", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.TotalBorrowedResponse{CustomerID: customerID, Total: total})
}

// CountByCustomer handles GET /customers/{customerID}/loans/count
// @Summary Count a customer's loans
// @Description Returns the number of loans the customer has borrowed.
// @Tags Loans
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.LoanCountResponse "Loan count"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/loans/count [get]
// @Security BearerAuth
func (h *LoanHandler) CountByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	count, err := h.service.CountByCustomer(r.Context(), customerID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to count loans", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.LoanCountResponse{CustomerID: customerID, Count: count})
}
