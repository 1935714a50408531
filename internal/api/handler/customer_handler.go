package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"minibank/internal/api/handler/dto"
	"minibank/internal/domain/customer"
	"minibank/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

type CustomerHandler struct {
	service customer.CustomerService
	logger  *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, l *slog.Logger) *CustomerHandler {
	if s == nil {
		panic("customer service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CustomerHandler{
		service: s,
		logger:  l.With("component", "CustomerHandler"),
	}
}

func getCustomerIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "customerID")
	if idStr == "" {
		return 0, fmt.Errorf("%w: customerID not found in URL path", apperrors.ErrInvalidArgument)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid customerID format in URL path: %s", apperrors.ErrInvalidArgument, idStr)
	}
	return id, nil
}

// RegisterCustomer handles POST /customers
// @Summary Register a new customer
// @Description Registers a new customer with a unique SSN, phone number and full name.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.RegisterCustomerRequest true "Customer registration request"
// @Success 201 {object} dto.CustomerResponse "Customer successfully registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload (e.g., malformed SSN or phone number)"
// @Failure 409 {object} dto.ErrorResponse "SSN, phone number or full name already registered"
// @Failure 500 {object} dto.ErrorResponse "Internal server error during registration"
// @Router /customers [post]
// @Security BearerAuth
func (h *CustomerHandler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received register customer request")

	var req dto.RegisterCustomerRequest
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
	birthDate, _ := req.ParseBirthDate()

	h.logger.DebugContext(r.Context(), "Calling customer service CreateCustomer")
	createdCustomer, err := h.service.CreateCustomer(r.Context(), req.FirstName, req.MiddleName, req.LastName, req.SSN, req.PhoneNumber, birthDate)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrDuplicateIdentity) && !errors.Is(err, apperrors.ErrValidation) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to register customer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewCustomerResponse(createdCustomer, time.Now())
	h.logger.InfoContext(r.Context(), "Customer registered successfully", slog.Int64("customerID", resp.CustomerID))
	respondJSON(w, http.StatusCreated, resp)
}

// GetCustomer handles GET /customers/{customerID}
// @Summary Retrieve customer details
// @Description Retrieves details for a specific customer by their ID, including a derived age.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.CustomerResponse "Customer details retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID format"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [get]
// @Security BearerAuth
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Received get customer request")

	domainCustomer, err := h.service.GetCustomer(r.Context(), customerID)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to get customer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewCustomerResponse(domainCustomer, time.Now())
	h.logger.InfoContext(r.Context(), "Customer retrieved successfully")
	respondJSON(w, http.StatusOK, resp)
}

// FindCustomerBySSN handles GET /customers/ssn/{ssn}
// @Summary Find a customer by SSN
// @Description Retrieves the customer registered under the given SSN.
// @Tags Customers
// @Produce json
// @Param ssn path string true "Customer SSN (9 digits)"
// @Success 200 {object} dto.CustomerResponse "Customer details retrieved"
// @Failure 404 {object} dto.ErrorResponse "No customer registered under this SSN"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/ssn/{ssn} [get]
// @Security BearerAuth
func (h *CustomerHandler) FindCustomerBySSN(w http.ResponseWriter, r *http.Request) {
	ssn := chi.URLParam(r, "ssn")
	h.logger.DebugContext(r.Context(), "Received find customer by SSN request")

	cust, err := h.service.GetCustomerBySSN(r.Context(), ssn)
	if err != nil {
		h.respondLookupError(w, r, "SSN", err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(cust, time.Now()))
}

// FindCustomerByPhone handles GET /customers/phone/{phone}
// @Summary Find a customer by phone number
// @Description Retrieves the customer registered under the given phone number.
// @Tags Customers
// @Produce json
// @Param phone path string true "Customer phone number (numeric string)"
// @Success 200 {object} dto.CustomerResponse "Customer details retrieved"
// @Failure 404 {object} dto.ErrorResponse "No customer registered under this phone number"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/phone/{phone} [get]
// @Security BearerAuth
func (h *CustomerHandler) FindCustomerByPhone(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	h.logger.DebugContext(r.Context(), "Received find customer by phone request")

	cust, err := h.service.GetCustomerByPhone(r.Context(), phone)
	if err != nil {
		h.respondLookupError(w, r, "phone", err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(cust, time.Now()))
}

// FindCustomerByName handles GET /customers/name
// @Summary Find a customer by full name
// @Description Retrieves the customer registered under the exact first/middle/last name triple.
// @Tags Customers
// @Produce json
// @Param first query string true "First name"
// @Param middle query string true "Middle name"
// @Param last query string true "Last name"
// @Success 200 {object} dto.CustomerResponse "Customer details retrieved"
// @Failure 400 {object} dto.ErrorResponse "Missing name query parameters"
// @Failure 404 {object} dto.ErrorResponse "No customer registered under this name"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/name [get]
// @Security BearerAuth
func (h *CustomerHandler) FindCustomerByName(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	first, middle, last := q.Get("first"), q.Get("middle"), q.Get("last")
	if first == "" || middle == "" || last == "" {
		respondError(w, fmt.Errorf("%w: first, middle and last query parameters are all required", apperrors.ErrInvalidArgument))
		return
	}
	h.logger.DebugContext(r.Context(), "Received find customer by name request")

	cust, err := h.service.GetCustomerByName(r.Context(), first, middle, last)
	if err != nil {
		h.respondLookupError(w, r, "name", err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(cust, time.Now()))
}

func (h *CustomerHandler) respondLookupError(w http.ResponseWriter, r *http.Request, field string, err error) {
	level := slog.LevelWarn
	if !errors.Is(err, apperrors.ErrNotFound) {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "Service failed customer lookup", slog.String("field", field), slog.Any("error", err))
	respondError(w, err)
}

// ListCustomerNames handles GET /customers
// @Summary List customer names
// @Description Retrieves the ID and full name of every registered customer.
// @Tags Customers
// @Produce json
// @Success 200 {array} dto.CustomerNameResponse "List of customer names"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers [get]
// @Security BearerAuth
func (h *CustomerHandler) ListCustomerNames(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received list customer names request")

	customers, err := h.service.ListCustomerNames(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to list customer names", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := make([]dto.CustomerNameResponse, len(customers))
	for i, cust := range customers {
		resp[i] = dto.NewCustomerNameResponse(cust)
	}

	h.logger.InfoContext(r.Context(), "Customer names listed successfully", slog.Int("count", len(resp)))
	respondJSON(w, http.StatusOK, resp)
}
