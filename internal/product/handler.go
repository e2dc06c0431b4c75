package product

import (
	"net/http"
	"strconv"

	"storefront-be/internal/auth"
	"storefront-be/internal/response"
	"storefront-be/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateRequest struct {
	Name        string          `json:"name" validate:"required,min=3,max=100"`
	Description string          `json:"description" validate:"required,min=10"`
	Price       decimal.Decimal `json:"price" validate:"gt=0,lte=99999999.99"`
	Stock       *int            `json:"stock" validate:"required,gte=0,lte=2147483647"`
	Category    string          `json:"category" validate:"required,max=100"`
}

type UpdateRequest struct {
	Name        *string          `json:"name" validate:"omitnil,min=3,max=100"`
	Description *string          `json:"description" validate:"omitnil,min=10"`
	Price       *decimal.Decimal `json:"price" validate:"omitnil,gt=0,lte=99999999.99"`
	Stock       *int             `json:"stock" validate:"omitnil,gte=0,lte=2147483647"`
	Category    *string          `json:"category" validate:"omitnil,min=1,max=100"`
}

// Page is bounded so the row offset stays well inside a PostgreSQL bigint.
type listQuery struct {
	Page     int    `json:"page" validate:"gte=1,lte=10000000"`
	PageSize int    `json:"pageSize" validate:"gte=1"`
	Search   string `json:"search" validate:"max=100"`
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := listQuery{Page: DefaultPage, PageSize: DefaultPageSize, Search: q.Get("search")}

	var bad []string
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			bad = append(bad, "Page must be a positive integer")
		}
		params.Page = n
	}
	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			bad = append(bad, "PageSize must be a positive integer")
		}
		params.PageSize = n
	}
	if len(bad) > 0 {
		response.Error(w, validation.ErrValidation.WithDetails(bad...))
		return
	}
	if err := validation.Struct(params); err != nil {
		response.Error(w, err)
		return
	}

	result, err := h.svc.List(r.Context(), ListOptions{
		Page:     params.Page,
		PageSize: params.PageSize,
		Search:   params.Search,
	})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Page(w, "Products retrieved successfully", result.Items, result.Page, result.PageSize, result.Total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.Error(w, ErrProductNotFound)
		return
	}

	p, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Product retrieved successfully", p)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, auth.ErrNoIdentity)
		return
	}

	var req CreateRequest
	if err := validation.Bind(w, r, &req); err != nil {
		response.Error(w, err)
		return
	}

	p, err := h.svc.Create(r.Context(), identity.UserID, CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       *req.Stock,
		Category:    req.Category,
	})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Product created successfully", p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.Error(w, ErrProductNotFound)
		return
	}

	var req UpdateRequest
	if err := validation.Bind(w, r, &req); err != nil {
		response.Error(w, err)
		return
	}

	p, err := h.svc.Update(r.Context(), id, UpdateInput(req))
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Product updated successfully", p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.Error(w, ErrProductNotFound)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Product deleted successfully", nil)
}

func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}
