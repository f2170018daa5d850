package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/pkg/util"
)

type AuthController struct {
	authService service.AuthService
	cookie      util.CookieOptions
}

func NewAuthController(authService service.AuthService, cookie util.CookieOptions) *AuthController {
	return &AuthController{
		authService: authService,
		cookie:      cookie,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is the public user plus the session token.
type AuthResponse struct {
	model.PublicUser
	Token string `json:"token"`
}

// Register handles user registration
// POST /api/users/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid user data")
		return
	}

	user, token, err := ctrl.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			apperrors.BadRequest(c, apperrors.AuthEmailAlreadyExists, "User already exists")
			return
		}
		log.Error("Registration failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "register user")
		return
	}

	util.SetSessionCookie(c, token, ctrl.cookie)
	c.JSON(http.StatusCreated, AuthResponse{PublicUser: user.Public(), Token: token})
}

// Login authenticates by email and password
// POST /api/users/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Email and password are required")
		return
	}

	user, token, err := ctrl.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid email or password")
			return
		}
		log.Error("Login failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.InternalError(c, "")
		return
	}

	util.SetSessionCookie(c, token, ctrl.cookie)
	c.JSON(http.StatusOK, AuthResponse{PublicUser: user.Public(), Token: token})
}

// Logout expires the session cookie. Tokens already issued stay valid until
// they expire.
// POST /api/users/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	util.ClearSessionCookie(c, ctrl.cookie)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the session user
// GET /api/users/me
func (ctrl *AuthController) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	c.JSON(http.StatusOK, user.Public())
}
