package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/storefront/internal/cache"
	"github.com/vaughan-dsouza/storefront/internal/middleware"
	"github.com/vaughan-dsouza/storefront/internal/models"
	"github.com/vaughan-dsouza/storefront/internal/store"
	"github.com/vaughan-dsouza/storefront/internal/utils"
)

type CatalogHandler struct {
	DB    *sqlx.DB
	Cache cache.Cache

	secret string
}

func NewCatalogHandler(db *sqlx.DB, opts Options) *CatalogHandler {
	return &CatalogHandler{DB: db, Cache: opts.Cache, secret: opts.JWTSecret}
}

// cached serves key from the cache, or calls load and stores its result.
// Cache failures are logged and otherwise ignored.
func cached[T any](ctx context.Context, c cache.Cache, key string, load func() (T, error)) (T, error) {
	log := middleware.LoggerFrom(ctx)

	var v T
	ok, err := c.GetJSON(ctx, key, &v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	if ok {
		return v, nil
	}

	v, err = load()
	if err != nil {
		return v, err
	}
	if err := c.SetJSON(ctx, key, v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return v, nil
}

func (h *CatalogHandler) invalidate(ctx context.Context, keys ...string) {
	if err := h.Cache.Delete(ctx, keys...); err != nil {
		middleware.LoggerFrom(ctx).Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}

// authorized checks the token from the body, then from the headers.
func (h *CatalogHandler) authorized(r *http.Request, bodyToken string) bool {
	token := bodyToken
	if token == "" {
		token = middleware.TokenFromRequest(r)
	}
	if token == "" {
		return false
	}
	_, err := utils.VerifyToken(token, h.secret)
	return err == nil
}

func hasToken(r *http.Request, bodyToken string) bool {
	return bodyToken != "" || middleware.TokenFromRequest(r) != ""
}

// ---------------------- CATEGORIES ----------------------

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := cached(ctx, h.Cache, cache.CategoriesKey(), func() ([]models.Category, error) {
		return store.ListCategories(ctx, h.DB)
	})
	if err != nil {
		middleware.LoggerFrom(ctx).Error().Err(err).Msg("list categories failed")
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.JSON(w, http.StatusOK, categories)
}

// GetCategory answers null for an unknown name.
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	category, err := cached(ctx, h.Cache, cache.CategoryKey(name), func() (*models.Category, error) {
		c, err := store.FindCategoryByName(ctx, h.DB, name)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return c, err
	})
	if err != nil {
		middleware.LoggerFrom(ctx).Error().Err(err).Str("name", name).Msg("get category failed")
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.JSON(w, http.StatusOK, category)
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Token string `json:"token"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" || !hasToken(r, body.Token) {
		utils.JSONError(w, http.StatusBadRequest, "name and token required")
		return
	}
	if !h.authorized(r, body.Token) {
		utils.JSONError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	category, err := store.CreateCategory(r.Context(), h.DB, body.Name)
	if errors.Is(err, store.ErrConflict) {
		utils.JSONError(w, http.StatusConflict, "category already exists")
		return
	}
	if err != nil {
		middleware.LoggerFrom(r.Context()).Error().Err(err).Msg("create category failed")
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	h.invalidate(r.Context(), cache.CategoriesKey(), cache.CategoryKey(category.Name))
	utils.JSON(w, http.StatusCreated, category)
}

// ---------------------- PRODUCTS ----------------------

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	categoryID := chi.URLParam(r, "categoryId")

	products, err := cached(ctx, h.Cache, cache.ProductsKey(categoryID), func() ([]models.Product, error) {
		return store.ListProductsByCategory(ctx, h.DB, categoryID)
	})
	if err != nil {
		middleware.LoggerFrom(ctx).Error().Err(err).Str("category_id", categoryID).Msg("list products failed")
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.JSON(w, http.StatusOK, products)
}

// GetProductByName answers null for an unknown name.
func (h *CatalogHandler) GetProductByName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if name == "" {
		utils.JSONError(w, http.StatusBadRequest, "name required")
		return
	}

	product, err := cached(ctx, h.Cache, cache.ProductKey(name), func() (*models.Product, error) {
		p, err := store.FindProductByName(ctx, h.DB, name)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return p, err
	})
	if err != nil {
		middleware.LoggerFrom(ctx).Error().Err(err).Str("name", name).Msg("get product failed")
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.JSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string  `json:"name"`
		Price       float64 `json:"price"`
		Description string  `json:"description"`
		Image       string  `json:"image"`
		CategoryID  string  `json:"categoryId"`
		Category    string  `json:"category"`
		Token       string  `json:"token"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}
	if body.CategoryID == "" {
		body.CategoryID = body.Category
	}

	if body.Name == "" || body.Price <= 0 || body.Description == "" || body.Image == "" || body.CategoryID == "" || !hasToken(r, body.Token) {
		utils.JSONError(w, http.StatusBadRequest, "name, price, description, image, categoryId and token required")
		return
	}
	if !h.authorized(r, body.Token) {
		utils.JSONError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	product, err := store.CreateProduct(r.Context(), h.DB, store.NewProduct{
		Name:        body.Name,
		Price:       body.Price,
		Description: body.Description,
		Image:       body.Image,
		CategoryID:  body.CategoryID,
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		utils.JSONError(w, http.StatusBadRequest, "category not found")
		return
	case errors.Is(err, store.ErrConflict):
		utils.JSONError(w, http.StatusConflict, "product already exists")
		return
	case err != nil:
		middleware.LoggerFrom(r.Context()).Error().Err(err).Msg("create product failed")
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	h.invalidate(r.Context(), cache.ProductsKey(product.CategoryID), cache.ProductKey(product.Name))
	utils.JSON(w, http.StatusCreated, product)
}
