package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vaughan-dsouza/storefront/internal/identity"
	"github.com/vaughan-dsouza/storefront/internal/middleware"
	"github.com/vaughan-dsouza/storefront/internal/models"
	"github.com/vaughan-dsouza/storefront/internal/utils"
)

// CallbackSecretHeader carries the shared secret of the front end that runs
// the OAuth dance and reports the result to /api/auth/callback.
const CallbackSecretHeader = "X-Callback-Secret"

type AuthHandler struct {
	IDs *identity.Service

	secret         string
	ttl            time.Duration
	callbackSecret string
}

func NewAuthHandler(ids *identity.Service, opts Options) *AuthHandler {
	return &AuthHandler{
		IDs:            ids,
		secret:         opts.JWTSecret,
		ttl:            opts.TokenTTL,
		callbackSecret: opts.CallbackSecret,
	}
}

// ----------- Request/Response DTOs -------------

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type callbackReq struct {
	Email      string `json:"email"`
	ProviderID string `json:"providerId"`
}

type authResp struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

type sessionResp struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	JWT   string `json:"jwt"`
}

// -------------- REGISTER ----------------------

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	if req.Email == "" || req.Password == "" {
		utils.JSONError(w, http.StatusBadRequest, "email and password required")
		return
	}

	_, err := h.IDs.Register(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		utils.JSONError(w, http.StatusBadRequest, "invalid email or password")
		return
	case errors.Is(err, identity.ErrEmailTaken):
		utils.JSONError(w, http.StatusConflict, "email already exists")
		return
	case err != nil:
		middleware.LoggerFrom(r.Context()).Error().Err(err).Msg("register failed")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	utils.JSON(w, http.StatusCreated, map[string]string{
		"message": "user created",
	})
}

// -------------- LOGIN ------------------------

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	if req.Email == "" || req.Password == "" {
		utils.JSONError(w, http.StatusBadRequest, "email and password required")
		return
	}

	p, err := h.IDs.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, identity.ErrUnauthorized) {
		utils.JSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		middleware.LoggerFrom(r.Context()).Error().Err(err).Msg("login failed")
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	h.issue(w, r, p)
}

// -------------- OAUTH CALLBACK ---------------

// Callback reconciles a completed provider sign-in with the user table and
// answers with a token, like Login. The caller must present the configured
// callback secret; with no secret configured every request is refused.
// Credentials sign-ins go through Register and Login instead.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if !h.callbackAllowed(r) {
		utils.JSONError(w, http.StatusUnauthorized, "invalid callback secret")
		return
	}

	provider := chi.URLParam(r, "provider")
	if provider != models.ProviderGithub {
		utils.JSONError(w, http.StatusBadRequest, "unknown provider")
		return
	}

	var req callbackReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Email == "" || req.ProviderID == "" {
		utils.JSONError(w, http.StatusBadRequest, "email and providerId required")
		return
	}

	p, err := h.IDs.SignIn(r.Context(), identity.SignInEvent{
		Email:        req.Email,
		ProviderID:   req.ProviderID,
		ProviderType: provider,
	})
	if err != nil {
		utils.JSONError(w, http.StatusUnauthorized, "sign-in rejected")
		return
	}

	h.issue(w, r, p)
}

// -------------- SESSION (protected) ----------

func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r.Context())
	if claims == nil {
		utils.JSONError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	p, err := h.IDs.Profile(r.Context(), claims.UserID)
	if errors.Is(err, identity.ErrUnauthorized) {
		utils.JSONError(w, http.StatusUnauthorized, "not authorized")
		return
	}
	if err != nil {
		middleware.LoggerFrom(r.Context()).Error().Err(err).Msg("session lookup failed")
		utils.JSONError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.JSON(w, http.StatusOK, sessionResp{
		ID:    p.UserID,
		Email: p.Email,
		Role:  p.Role,
		JWT:   middleware.TokenFromRequest(r),
	})
}

func (h *AuthHandler) callbackAllowed(r *http.Request) bool {
	if h.callbackSecret == "" {
		return false
	}
	got := r.Header.Get(CallbackSecretHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.callbackSecret)) == 1
}

func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, p *identity.Principal) {
	token, _, err := utils.GenerateToken(p.UserID, p.Email, p.Role, h.secret, h.ttl)
	if err != nil {
		middleware.LoggerFrom(r.Context()).Error().Err(err).Msg("token signing failed")
		utils.JSONError(w, http.StatusInternalServerError, "token error")
		return
	}

	utils.JSON(w, http.StatusOK, authResp{
		ID:    p.UserID,
		Email: p.Email,
		Role:  p.Role,
		Token: token,
	})
}
