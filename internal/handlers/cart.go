package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/storefront/internal/middleware"
	"github.com/vaughan-dsouza/storefront/internal/store"
	"github.com/vaughan-dsouza/storefront/internal/utils"
)

// CartHandler serves the cart of the user named by the request token. It is
// mounted behind middleware.AuthMiddleware.
type CartHandler struct {
	DB *sqlx.DB
}

func NewCartHandler(db *sqlx.DB) *CartHandler {
	return &CartHandler{DB: db}
}

func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims := middleware.ClaimsFrom(r.Context())
	if claims == nil {
		utils.JSONError(w, http.StatusUnauthorized, "not authorized")
		return "", false
	}
	return claims.UserID, true
}

// ---------------------- LIST ----------------------

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	items, err := store.ListCartItems(r.Context(), h.DB, uid)
	if err != nil {
		middleware.LoggerFrom(r.Context()).Error().Err(err).Str("user_id", uid).Msg("list cart failed")
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.JSON(w, http.StatusOK, items)
}

// ---------------------- ADD ----------------------

func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var body struct {
		ProductID string `json:"productId"`
		Token     string `json:"token"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}
	if body.ProductID == "" {
		utils.JSONError(w, http.StatusBadRequest, "productId required")
		return
	}

	item, err := store.AddToCart(r.Context(), h.DB, uid, body.ProductID)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusBadRequest, "product not found")
		return
	}
	if err != nil {
		middleware.LoggerFrom(r.Context()).Error().Err(err).Str("user_id", uid).Msg("add to cart failed")
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.JSON(w, http.StatusOK, item)
}

// ---------------------- UPDATE ----------------------

func (h *CartHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var body struct {
		ID    string `json:"id"`
		Add   bool   `json:"add"`
		Minus bool   `json:"minus"`
		Token string `json:"token"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}
	if body.ID == "" || (!body.Add && !body.Minus) {
		utils.JSONError(w, http.StatusBadRequest, "id and one of add/minus required")
		return
	}

	item, err := store.AdjustCartItem(r.Context(), h.DB, uid, body.ID, body.Add, body.Minus)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusBadRequest, "cart item not found")
		return
	}
	if err != nil {
		middleware.LoggerFrom(r.Context()).Error().Err(err).Str("user_id", uid).Msg("update cart item failed")
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.JSON(w, http.StatusOK, item)
}

// ---------------------- DELETE ----------------------

func (h *CartHandler) DeleteCartItem(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		utils.JSONError(w, http.StatusBadRequest, "id required")
		return
	}

	err := store.DeleteCartItem(r.Context(), h.DB, uid, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "cart item not found")
		return
	}
	if err != nil {
		middleware.LoggerFrom(r.Context()).Error().Err(err).Str("user_id", uid).Msg("delete cart item failed")
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
