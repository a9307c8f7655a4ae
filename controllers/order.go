// controllers/order.go
package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"urbancart/data"
	"urbancart/models"
	"urbancart/utils"
)

// OrderController handles order-related requests
type OrderController struct {
	Orders       *data.OrderStore
	Users        *data.UserStore
	EmailService *utils.EmailService
}

// NewOrderController creates a new OrderController
func NewOrderController(orders *data.OrderStore, users *data.UserStore, emailService *utils.EmailService) *OrderController {
	return &OrderController{
		Orders:       orders,
		Users:        users,
		EmailService: emailService,
	}
}

// CreateOrder normalizes the submitted payload and persists it as an order
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req data.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	draft := data.NormalizeOrderRequest(&req)
	order, err := oc.Orders.Create(r.Context(), userID, draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// GetOrders retrieves all orders for the authenticated user
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orders, err := oc.Orders.ListForUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if orders == nil {
		orders = []models.PopulatedOrder{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetOrderByID retrieves one of the user's orders
func (oc *OrderController) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	order, err := oc.Orders.GetByID(r.Context(), orderID, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// PayOrder marks an order as paid and records the payment identifier
func (oc *OrderController) PayOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body struct {
		PaymentID string `json:"paymentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := oc.Orders.MarkPaid(r.Context(), orderID, userID, body.PaymentID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if oc.EmailService != nil {
		go func(order models.Order) {
			// The request context is gone by the time this runs.
			user, err := oc.Users.ByID(context.Background(), userID)
			if err != nil {
				log.Warn().Err(err).Str("order", order.OrderNumber).Msg("payment email skipped")
				return
			}
			if err := oc.EmailService.SendPaymentConfirmationEmail(user.Email, user.Name, &order); err != nil {
				log.Warn().Err(err).Str("order", order.OrderNumber).Msg("payment email failed")
			}
		}(*order)
	}

	writeJSON(w, http.StatusOK, order)
}
