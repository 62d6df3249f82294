package controllers

import (
	"net/http"

	"github.com/kasirin/kasirin/app/models"
	"github.com/kasirin/kasirin/app/repositories"
	"github.com/kasirin/kasirin/pkg/ctx"
)

// CustomerController serves /api/customers.
type CustomerController struct {
	customers *repositories.CustomerRepository
}

// NewCustomerController creates the controller.
func NewCustomerController(customers *repositories.CustomerRepository) *CustomerController {
	return &CustomerController{customers: customers}
}

// CustomerInput is the create payload.
type CustomerInput struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"nullable,email"`
	Phone  string `json:"phone"`
	Status string `json:"status" validate:"nullable,in=active,inactive"`
}

// CustomerPatch is the partial-update payload.
type CustomerPatch struct {
	Name   *string `json:"name"`
	Email  *string `json:"email" validate:"nullable,email"`
	Phone  *string `json:"phone"`
	Status *string `json:"status" validate:"nullable,in=active,inactive"`
}

func (p CustomerPatch) changes() map[string]any {
	changes := map[string]any{}
	if p.Name != nil {
		changes["name"] = *p.Name
	}
	if p.Email != nil {
		changes["email"] = *p.Email
	}
	if p.Phone != nil {
		changes["phone"] = *p.Phone
	}
	if p.Status != nil {
		changes["status"] = *p.Status
	}
	return changes
}

// Index lists all customers sorted by name.
func (cc *CustomerController) Index(c *ctx.Context) {
	customers, err := cc.customers.List(c.Context())
	if err != nil {
		c.StoreError("Failed to fetch customers", err)
		return
	}
	c.OK(customers)
}

// Store creates a customer and returns the stored row.
func (cc *CustomerController) Store(c *ctx.Context) {
	var in CustomerInput
	if !c.BindJSON(&in) {
		return
	}

	customer := &models.Customer{
		Name:   in.Name,
		Email:  in.Email,
		Phone:  in.Phone,
		Status: in.Status,
	}
	if customer.Status == "" {
		customer.Status = "active"
	}

	if err := cc.customers.Create(c.Context(), customer); err != nil {
		c.StoreError("Failed to create customer", err)
		return
	}
	c.OK(customer)
}

// Update applies a partial update and returns the fresh row.
func (cc *CustomerController) Update(c *ctx.Context) {
	var patch CustomerPatch
	if !c.BindJSON(&patch) {
		return
	}

	changes := patch.changes()
	if len(changes) == 0 {
		c.Error(http.StatusBadRequest, "No fields to update")
		return
	}

	customer, err := cc.customers.Update(c.Context(), c.Param("id"), changes)
	if err != nil {
		c.StoreError("Failed to update customer", err)
		return
	}
	c.OK(customer)
}

// Destroy deletes a customer.
func (cc *CustomerController) Destroy(c *ctx.Context) {
	if err := cc.customers.Delete(c.Context(), c.Param("id")); err != nil {
		c.StoreError("Failed to delete customer", err)
		return
	}
	c.Deleted()
}
