// Account HTTP handlers.
//
//   - POST /auth/signup
//   - POST /auth/login
//   - POST /auth/logout   (signed in)
//   - GET  /auth/me       (signed in)
//   - PUT  /auth/me       (signed in)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/brasil-beauty-backend/internal/http/middleware"
	"github.com/tbourn/brasil-beauty-backend/internal/i18n"
	"github.com/tbourn/brasil-beauty-backend/internal/validation"
)

// SignupRequest registers a visitor.
type SignupRequest struct {
	Email    string `json:"email" example:"ana@example.com"`
	Name     string `json:"name" example:"Ana Souza"`
	Password string `json:"password" example:"s3nha-forte"`
}

// LoginRequest opens a session.
type LoginRequest struct {
	Email    string `json:"email" example:"ana@example.com"`
	Password string `json:"password" example:"s3nha-forte"`
}

// UpdateMeRequest renames the signed-in account.
type UpdateMeRequest struct {
	Name string `json:"name" example:"Ana S."`
}

// Signup godoc
// @ID          signup
// @Summary     Create an account
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.SignupRequest  true  "Account"
// @Success     201  {object}  services.AuthResult
// @Failure     400  {object}  handlers.ErrorResponse "Invalid fields"
// @Failure     409  {object}  handlers.ErrorResponse "Email already registered"
// @Router      /auth/signup [post]
func (h *Handlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailKey(c, http.StatusBadRequest, ErrCodeBadRequest, i18n.KeyBadRequest)
		return
	}
	res, err := h.accounts.Signup(c.Request.Context(), validation.AccountInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, res)
}

// Login godoc
// @ID          login
// @Summary     Sign in
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
// @Success     200  {object}  services.AuthResult
// @Failure     401  {object}  handlers.ErrorResponse "Incorrect email or password"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailKey(c, http.StatusBadRequest, ErrCodeBadRequest, i18n.KeyBadRequest)
		return
	}
	res, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// Logout godoc
// @ID          logout
// @Summary     Sign out
// @Description Revokes the current session token.
// @Tags        Auth
// @Param       Authorization header string true "Bearer token"
// @Success     204  {string}  string "No Content"
// @Failure     401  {object}  handlers.ErrorResponse "Not signed in"
// @Router      /auth/logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	if err := h.accounts.Logout(c.Request.Context(), middleware.SessionFrom(c)); err != nil {
		h.respondError(c, err)
		return
	}
	noContent(c)
}

// Me godoc
// @ID          getMe
// @Summary     Current account
// @Tags        Auth
// @Produce     json
// @Param       Authorization header string true "Bearer token"
// @Success     200  {object}  domain.Account
// @Failure     401  {object}  handlers.ErrorResponse "Not signed in"
// @Router      /auth/me [get]
func (h *Handlers) Me(c *gin.Context) {
	acc, err := h.accounts.Me(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, acc)
}

// UpdateMe godoc
// @ID          updateMe
// @Summary     Rename the current account
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       Authorization header string true "Bearer token"
// @Param       body  body  handlers.UpdateMeRequest  true  "New name"
// @Success     200  {object}  domain.Account
// @Failure     400  {object}  handlers.ErrorResponse "Invalid name"
// @Failure     401  {object}  handlers.ErrorResponse "Not signed in"
// @Router      /auth/me [put]
func (h *Handlers) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailKey(c, http.StatusBadRequest, ErrCodeBadRequest, i18n.KeyBadRequest)
		return
	}
	acc, err := h.accounts.UpdateName(c.Request.Context(), middleware.SessionFrom(c), req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, acc)
}
