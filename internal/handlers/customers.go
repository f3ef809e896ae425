package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"kbr-silks-backend/internal/models"
)

type CustomerManager interface {
	List(ctx context.Context) ([]models.Customer, error)
	Get(ctx context.Context, phone string) (*models.Customer, error)
	Add(ctx context.Context, req models.CustomerRequest) (*models.Customer, error)
	Update(ctx context.Context, originalPhone string, req models.CustomerRequest) (*models.Customer, error)
}

type CustomersHandler struct {
	customers CustomerManager
}

func NewCustomersHandler(customers CustomerManager) *CustomersHandler {
	return &CustomersHandler{customers: customers}
}

// ListCustomers godoc
// @Summary     List customers
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.CustomerListResponse
// @Router      /admin/customers [get]
func (h *CustomersHandler) ListCustomers(c *gin.Context) {
	customers, err := h.customers.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CustomerListResponse{Customers: customers})
}

// GetCustomer godoc
// @Summary     Get a customer
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       phone path string true "Customer phone"
// @Success     200 {object} models.Customer
// @Failure     404 {object} models.ErrorResponse
// @Router      /admin/customers/{phone} [get]
func (h *CustomersHandler) GetCustomer(c *gin.Context) {
	customer, err := h.customers.Get(c.Request.Context(), c.Param("phone"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// CreateCustomer godoc
// @Summary     Add a customer
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CustomerRequest true "Customer"
// @Success     201 {object} models.Customer
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /admin/customers [post]
func (h *CustomersHandler) CreateCustomer(c *gin.Context) {
	var req models.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	customer, err := h.customers.Add(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer godoc
// @Summary     Update a customer
// @Description Updates the customer identified by the phone in the path. The phone itself cannot change.
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       phone   path string                 true "Customer phone"
// @Param       request body models.CustomerRequest true "Customer"
// @Success     200 {object} models.Customer
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /admin/customers/{phone} [put]
func (h *CustomersHandler) UpdateCustomer(c *gin.Context) {
	var req models.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	customer, err := h.customers.Update(c.Request.Context(), c.Param("phone"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}
