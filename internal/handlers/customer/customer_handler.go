// internal/handlers/customer/customer_handler.go
package customer

import (
	"net/http"

	"postsaathi-service/internal/domain/customer"
	"postsaathi-service/internal/middleware"
	xerrors "postsaathi-service/internal/pkg/errors"
	"postsaathi-service/internal/pkg/response"
	service "postsaathi-service/internal/service/customer"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	customerService *service.Service
}

func NewCustomerHandler(customerService *service.Service) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

// CreateCustomer creates a new customer under the authenticated agent.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	a := middleware.MustGetAgent(c)

	var req customer.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.customerService.Create(c.Request.Context(), a.ID, req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to create customer", nil)
		return
	}

	response.Success(c, http.StatusCreated, "customer created successfully", result)
}

// GetCustomer retrieves one of the agent's customers, decrypted.
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	callerID := ""
	if a, ok := middleware.GetAgent(c); ok {
		callerID = a.ID
	}

	result, err := h.customerService.Get(c.Request.Context(), callerID, c.Param("id"))
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "customer not found")
		case xerrors.Is(err, xerrors.ErrForbidden):
			response.Forbidden(c, "customer belongs to another agent")
		default:
			response.Error(c, http.StatusInternalServerError, "failed to retrieve customer", nil)
		}
		return
	}

	response.Success(c, http.StatusOK, "customer retrieved", result)
}

// ListCustomers lists the agent's customers, decrypted.
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	a := middleware.MustGetAgent(c)

	result, err := h.customerService.List(c.Request.Context(), a.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list customers", nil)
		return
	}

	response.Success(c, http.StatusOK, "customers retrieved", result)
}
