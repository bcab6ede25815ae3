package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/vaughan-dsouza/storefront/internal/cache"
	"github.com/vaughan-dsouza/storefront/internal/identity"
	"github.com/vaughan-dsouza/storefront/internal/middleware"
	"github.com/vaughan-dsouza/storefront/internal/utils"
)

type Options struct {
	JWTSecret      string
	TokenTTL       time.Duration
	CallbackSecret string
	Cache          cache.Cache
}

type Handler struct {
	DB      *sqlx.DB
	Auth    *AuthHandler
	Catalog *CatalogHandler
	Cart    *CartHandler

	secret   string
	callback bool
}

func NewHandler(db *sqlx.DB, ids *identity.Service, opts Options) *Handler {
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = utils.DefaultTokenTTL
	}

	return &Handler{
		DB:       db,
		Auth:     NewAuthHandler(ids, opts),
		Catalog:  NewCatalogHandler(db, opts),
		Cart:     NewCartHandler(db),
		secret:   opts.JWTSecret,
		callback: opts.CallbackSecret != "",
	}
}

// Routes builds the API router.
func (h *Handler) Routes(log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)
		// provider sign-ins only exist when a callback secret is configured
		if h.callback {
			r.Post("/auth/callback/{provider}", h.Auth.Callback)
		}

		r.Get("/category", h.Catalog.ListCategories)
		r.Get("/category/{name}", h.Catalog.GetCategory)
		r.Get("/product/{categoryId}", h.Catalog.ListProducts)
		r.Get("/product/name/{name}", h.Catalog.GetProductByName)

		// token checked against the body as well as the headers
		r.Post("/category", h.Catalog.CreateCategory)
		r.Post("/product", h.Catalog.CreateProduct)

		// Protected
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(h.secret))

			r.Get("/auth/session", h.Auth.Session)

			r.Get("/cart", h.Cart.GetCart)
			r.Post("/cart", h.Cart.AddToCart)
			r.Patch("/cart", h.Cart.UpdateCartItem)
			r.Delete("/cart/{id}", h.Cart.DeleteCartItem)
		})
	})

	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.PingContext(r.Context()); err != nil {
		middleware.LoggerFrom(r.Context()).Error().Err(err).Msg("health check failed")
		utils.JSONError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
