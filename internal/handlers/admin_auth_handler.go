package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"shieldpool/internal/config"
	"shieldpool/internal/dto"
)

// AdminClaims are the JWT claims of an authority token.
type AdminClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// AdminAuthHandler issues authority tokens.
type AdminAuthHandler struct {
	logger *logrus.Logger
}

// NewAdminAuthHandler creates a new AdminAuthHandler instance.
func NewAdminAuthHandler(logger *logrus.Logger) *AdminAuthHandler {
	return &AdminAuthHandler{logger: logger}
}

// Login checks the configured admin credentials and issues a JWT.
func (h *AdminAuthHandler) Login(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
			"code":    "INVALID_REQUEST",
		})
		return
	}

	admin := config.AppConfig.Admin
	if req.Username != admin.Username ||
		bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) != nil {
		h.logger.WithField("username", req.Username).Warn("Admin login failed")
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Invalid credentials",
			"code":    "INVALID_CREDENTIALS",
		})
		return
	}

	token, err := GenerateAdminJWTToken(req.Username, admin.JWTSecret, time.Duration(admin.TokenTTL)*time.Second)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to sign admin token")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to issue token",
			"code":    "TOKEN_ISSUE_FAILED",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": dto.AdminLoginResponse{
			Token:     token,
			ExpiresIn: admin.TokenTTL,
		},
	})
}

// GenerateAdminJWTToken signs an admin token with HS256.
func GenerateAdminJWTToken(username, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		Username: username,
		Role:     "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "shieldpool",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ValidateAdminJWTToken parses and verifies an admin token.
func ValidateAdminJWTToken(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(config.AppConfig.Admin.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
