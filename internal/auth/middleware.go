package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"web3radio/internal/handlers"
	"web3radio/internal/response"
)

// AuthMiddleware validates the access token and stores the caller's wallet
// address and user id on the request context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:  "NO_AUTH_HEADER",
				Error: "authorization required",
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return handlers.AccessSecret, nil
		}, jwt.WithValidMethods([]string{"HS256"}))

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:  "INVALID_TOKEN",
				Error: "access token is invalid or expired",
			})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:  "INVALID_TOKEN",
				Error: "access token claims unreadable",
			})
			c.Abort()
			return
		}

		userID, okID := claims["user_id"].(float64)
		address, okAddr := claims["address"].(string)
		if !okID || !okAddr {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:  "INVALID_TOKEN",
				Error: "access token claims unreadable",
			})
			c.Abort()
			return
		}

		c.Set("userID", uint(userID))
		c.Set("walletAddress", address)
		c.Next()
	}
}
