package payment

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Requirements is the body of a 402 response, telling the client what to pay
// and where before retrying the request.
type Requirements struct {
	X402Version int      `json:"x402Version"`
	Error       string   `json:"error"`
	Accepts     []Accept `json:"accepts"`
}

type Accept struct {
	Scheme            string `json:"scheme"`
	Network           string `json:"network"`
	MaxAmountRequired string `json:"maxAmountRequired"`
	Asset             string `json:"asset"`
	PayTo             string `json:"payTo"`
	Resource          string `json:"resource"`
}

func requirements(resource string) Requirements {
	return Requirements{
		X402Version: 1,
		Error:       "payment required",
		Accepts: []Accept{{
			Scheme:            "exact",
			Network:           getenv("X402_NETWORK", "base"),
			MaxAmountRequired: getenv("X402_PRICE", "1000"),
			Asset:             os.Getenv("X402_ASSET"),
			PayTo:             os.Getenv("X402_PAY_TO"),
			Resource:          resource,
		}},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Required gates a route behind an x402 micropayment. The X-Payment header
// must carry a receipt JWT signed by the facilitator (shared secret in
// X402_SECRET). This service verifies receipts only; settlement happens at
// the facilitator. With no secret configured the gate is open, so local
// development and tests run without a facilitator.
func Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := os.Getenv("X402_SECRET")
		if secret == "" {
			c.Next()
			return
		}

		receipt := c.GetHeader("X-Payment")
		if receipt == "" {
			c.JSON(http.StatusPaymentRequired, requirements(c.FullPath()))
			c.Abort()
			return
		}

		// Receipts must expire; without the claim a single receipt would be
		// replayable forever.
		token, err := jwt.Parse(receipt, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			c.JSON(http.StatusPaymentRequired, requirements(c.FullPath()))
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusPaymentRequired, requirements(c.FullPath()))
			c.Abort()
			return
		}
		if scheme, _ := claims["scheme"].(string); scheme != "exact" {
			c.JSON(http.StatusPaymentRequired, requirements(c.FullPath()))
			c.Abort()
			return
		}

		if payer, ok := claims["payer"].(string); ok {
			c.Set("payerAddress", payer)
		}
		c.Next()
	}
}
