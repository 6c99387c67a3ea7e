package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

// AuthController signs admins in.
type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Login godoc
// POST /api/auth/login
func (ac *AuthController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}
	tokens, err := ac.service.Login(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(tokens)
}

// Refresh godoc
// POST /api/auth/refresh
func (ac *AuthController) Refresh(c *ctx.Context) {
	var in refreshRequest
	if !c.BindJSON(&in) {
		return
	}
	tokens, err := ac.service.Refresh(c.Context(), in.RefreshToken)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(tokens)
}

// Me godoc
// GET /api/auth/me
func (ac *AuthController) Me(c *ctx.Context) {
	claims, ok := c.Claims()
	if !ok {
		c.Unauthorized()
		return
	}
	user, err := ac.service.Me(c.Context(), claims.UserID)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(user)
}

// Logout godoc
// POST /api/auth/logout
//
// Tokens are stateless; the client forgets them.
func (ac *AuthController) Logout(c *ctx.Context) {
	c.Message("Logged out", nil)
}
