package order

import (
	"fmt"
	"net/http"

	"storefront-be/internal/auth"
	"storefront-be/internal/response"
	"storefront-be/internal/validation"

	"github.com/google/uuid"
)

const maxLines = 100

type ItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, auth.ErrNoIdentity)
		return
	}

	var req []ItemRequest
	if err := validation.DecodeJSON(w, r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if len(req) == 0 {
		response.Error(w, ErrEmptyOrder)
		return
	}
	if len(req) > maxLines {
		response.Error(w, validation.ErrValidation.WithDetails(fmt.Sprintf("Order cannot contain more than %d items", maxLines)))
		return
	}
	if err := validation.Each(req); err != nil {
		response.Error(w, err)
		return
	}

	lines := make([]LineItem, len(req))
	for i, item := range req {
		lines[i] = LineItem{ProductID: uuid.MustParse(item.ProductID), Quantity: item.Quantity}
	}

	o, err := h.svc.PlaceOrder(r.Context(), identity, lines)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Order placed successfully", o)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, auth.ErrNoIdentity)
		return
	}

	orders, err := h.svc.ListMyOrders(r.Context(), identity)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Orders retrieved successfully", orders)
}
