package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"palette/api/v1/request"
	"palette/internal/metrics"
	"palette/middleware"
	"palette/service"
)

// UserAPI exposes HTTP handlers for the registration/login/profile flows.
// UserAPI 聚合了所有与用户相关的 HTTP Handler。
type UserAPI struct {
	service *service.UserService
}

// NewUserAPI wires the service layer into the HTTP handlers.
func NewUserAPI(s *service.UserService) *UserAPI {
	return &UserAPI{service: s}
}

// Register handles new account creation and returns the created user plus a
// fresh access token.
func (u *UserAPI) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.IncRegister("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, token, err := u.service.Register(c.Request.Context(), req.Email, req.Password, req.Username, req.Gender, req.Avatar)
	if err != nil {
		metrics.IncRegister("failed")
		writeError(c, err)
		return
	}
	metrics.IncRegister("success")
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

// Login validates credentials and returns the user plus a new token.
func (u *UserAPI) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.IncLogin("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, token, err := u.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// GetProfile returns one user record. A caller may only read their own
// record; the verified token identity is compared to the path id here.
func (u *UserAPI) GetProfile(c *gin.Context) {
	if c.GetString(middleware.ContextUserID) != c.Param("id") {
		writeError(c, service.ErrForbidden)
		return
	}
	user, err := u.service.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile applies a partial update to the caller's own record.
func (u *UserAPI) UpdateProfile(c *gin.Context) {
	if c.GetString(middleware.ContextUserID) != c.Param("id") {
		writeError(c, service.ErrForbidden)
		return
	}
	var req request.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := u.service.UpdateProfile(c.Request.Context(), c.Param("id"), service.ProfileUpdate{
		Email:    req.Email,
		Username: req.Username,
		Gender:   req.Gender,
		Avatar:   req.Avatar,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// writeError maps the service error taxonomy onto HTTP statuses. Internal
// failures were already logged with detail; the caller only sees an opaque
// message.
func writeError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	var lErr *service.LockedError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
	case errors.As(err, &lErr):
		c.JSON(http.StatusLocked, gin.H{"error": "account temporarily locked", "retry_after": lErr.RetryAfterSeconds})
	case errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
