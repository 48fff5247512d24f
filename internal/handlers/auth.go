package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"web3radio/internal/eth"
	"web3radio/internal/models"
	"web3radio/internal/response"
	"web3radio/internal/storage"
)

var (
	AccessSecret  = []byte(os.Getenv("JWT_ACCESS_SECRET"))
	refreshSecret = []byte(os.Getenv("JWT_REFRESH_SECRET"))
)

type LoginRequest struct {
	// Wallet address of the caller. Supplied by the upstream identity layer
	// (wallet connector / Farcaster auth) and trusted as given; this service
	// performs no signature verification.
	Address string `json:"address" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func issueTokens(userID uint, address string) (string, string, error) {
	access := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"address": address,
		"exp":     time.Now().Add(15 * time.Minute).Unix(),
	})
	accessToken, err := access.SignedString(AccessSecret)
	if err != nil {
		return "", "", err
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"address": address,
		"exp":     time.Now().Add(7 * 24 * time.Hour).Unix(),
	})
	refreshToken, err := refresh.SignedString(refreshSecret)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// Login issues a wallet session
// @Summary		Wallet login
// @Description	Upserts the wallet profile and returns an access/refresh token pair
// @Tags			auth
// @Accept			json
// @Produce		json
// @Param			body	body		LoginRequest			true	"Wallet address"
// @Success		200		{object}	response.TokenResponse	"Token pair"
// @Failure		400		{object}	response.ErrorResponse	"Validation error (MISSING_FIELD, INVALID_ADDRESS)"
// @Failure		500		{object}	response.ErrorResponse	"Server error (DB_ERROR, TOKEN_ERROR)"
// @Router			/auth/login [post]
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:  "MISSING_FIELD",
			Error: "address is required",
		})
		return
	}
	if !eth.IsAddress(req.Address) {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:  "INVALID_ADDRESS",
			Error: "address is not a valid wallet address",
		})
		return
	}

	var user models.User
	if err := storage.DB.
		Where(models.User{Address: eth.Normalize(req.Address)}).
		FirstOrCreate(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Error:   "could not load wallet profile",
			Details: err.Error(),
		})
		return
	}

	accessToken, refreshToken, err := issueTokens(user.ID, user.Address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:  "TOKEN_ERROR",
			Error: "could not sign session tokens",
		})
		return
	}

	c.JSON(http.StatusOK, response.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// RefreshToken rotates a session
// @Summary		Refresh session tokens
// @Tags			auth
// @Accept			json
// @Produce		json
// @Param			body	body		RefreshRequest			true	"Refresh token"
// @Success		200		{object}	response.TokenResponse	"New token pair"
// @Failure		400		{object}	response.ErrorResponse	"Validation error (MISSING_FIELD)"
// @Failure		401		{object}	response.ErrorResponse	"Invalid refresh token (INVALID_TOKEN)"
// @Router			/auth/refresh [post]
func RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:  "MISSING_FIELD",
			Error: "refresh_token is required",
		})
		return
	}

	token, err := jwt.Parse(req.RefreshToken, func(token *jwt.Token) (interface{}, error) {
		return refreshSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{
			Code:  "INVALID_TOKEN",
			Error: "refresh token is invalid or expired",
		})
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{
			Code:  "INVALID_TOKEN",
			Error: "refresh token claims unreadable",
		})
		return
	}
	userID, okID := claims["user_id"].(float64)
	address, okAddr := claims["address"].(string)
	if !okID || !okAddr {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{
			Code:  "INVALID_TOKEN",
			Error: "refresh token claims unreadable",
		})
		return
	}

	accessToken, refreshToken, err := issueTokens(uint(userID), address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:  "TOKEN_ERROR",
			Error: "could not sign session tokens",
		})
		return
	}

	c.JSON(http.StatusOK, response.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}
