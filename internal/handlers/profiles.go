package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"web3radio/internal/eth"
	"web3radio/internal/response"
	"web3radio/internal/storage"
)

// Farcaster profile fields surfaced to the frontend.
type FarcasterProfile struct {
	FID         uint64 `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	PfpURL      string `json:"pfp_url"`
	Address     string `json:"address"`
}

type farcasterUserResponse struct {
	Users []struct {
		FID         uint64 `json:"fid"`
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		PfpURL      string `json:"pfp_url"`
	} `json:"users"`
}

// GetProfileHandler resolves a wallet's Farcaster profile
// @Summary		Farcaster profile lookup
// @Description	Fetches the profile behind a wallet address from the Farcaster API, cached in Redis for 6 hours
// @Tags			profiles
// @Produce		json
// @Param			address	path		string	true	"Wallet address"
// @Success		200		{object}	FarcasterProfile
// @Failure		400		{object}	response.ErrorResponse	"Invalid address (INVALID_ADDRESS)"
// @Failure		404		{object}	response.ErrorResponse	"No profile (PROFILE_NOT_FOUND)"
// @Failure		500		{object}	response.ErrorResponse	"Upstream error (UPSTREAM_ERROR)"
// @Router			/profiles/{address} [get]
func GetProfileHandler(c *gin.Context) {
	address := c.Param("address")
	if !eth.IsAddress(address) {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:  "INVALID_ADDRESS",
			Error: "address is not a valid wallet address",
		})
		return
	}
	address = eth.Normalize(address)

	cacheKey := "farcaster:profile:" + address
	if cached, err := storage.RedisClient.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
		var profile FarcasterProfile
		if err := json.Unmarshal([]byte(cached), &profile); err == nil {
			c.JSON(http.StatusOK, profile)
			return
		}
	}

	apiBase := os.Getenv("FARCASTER_API_URL")
	if apiBase == "" {
		apiBase = "https://api.farcaster.xyz"
	}
	apiURL := apiBase + "/v2/user-by-verification?address=" + url.QueryEscape(address)
	resp, err := http.Get(apiURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:  "UPSTREAM_ERROR",
			Error: "could not reach the Farcaster API",
		})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:  "UPSTREAM_ERROR",
			Error: "could not read the Farcaster API response",
		})
		return
	}

	var decoded farcasterUserResponse
	if err := json.Unmarshal(body, &decoded); err != nil || len(decoded.Users) == 0 {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:  "PROFILE_NOT_FOUND",
			Error: "no Farcaster profile for this wallet",
		})
		return
	}

	u := decoded.Users[0]
	profile := FarcasterProfile{
		FID:         u.FID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		PfpURL:      u.PfpURL,
		Address:     address,
	}

	if encoded, err := json.Marshal(profile); err == nil {
		storage.RedisClient.Set(ctx, cacheKey, encoded, 6*time.Hour)
	}

	c.JSON(http.StatusOK, profile)
}
