package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"web3radio/internal/models"
	"web3radio/internal/response"
	"web3radio/internal/storage"
)

var ctx = context.Background()

type CreateStationRequest struct {
	Name      string `json:"name" binding:"required"`
	Slug      string `json:"slug"`
	Genre     string `json:"genre"`
	StreamURL string `json:"streamUrl"`
}

type NowPlayingRequest struct {
	Title  string `json:"title" binding:"required"`
	Artist string `json:"artist"`
	Art    string `json:"art"`
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

// ListStationsHandler lists stations
// @Summary		List stations
// @Description	Returns all stations with their denormalized listener counts
// @Tags			stations
// @Produce		json
// @Success		200	{array}		models.Station
// @Failure		500	{object}	response.ErrorResponse	"Server error (DB_ERROR)"
// @Router			/api/stations [get]
func ListStationsHandler(c *gin.Context) {
	var stations []models.Station
	if err := storage.DB.Order("listener_count DESC, created_at ASC").Find(&stations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Error:   "could not load stations",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, stations)
}

// CreateStationHandler registers a station
// @Summary		Create a station
// @Description	Registers a new station owned by the authenticated wallet
// @Tags			stations
// @Accept			json
// @Produce		json
// @Param			body	body		CreateStationRequest	true	"Station data"
// @Security		BearerAuth
// @Success		201		{object}	models.Station
// @Failure		400		{object}	response.ErrorResponse	"Validation error (MISSING_FIELD, SLUG_EXISTS)"
// @Failure		500		{object}	response.ErrorResponse	"Server error (DB_ERROR)"
// @Router			/api/stations [post]
func CreateStationHandler(c *gin.Context) {
	var req CreateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "MISSING_FIELD",
			Error:   "name is required",
			Details: err.Error(),
		})
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name)
	}
	if slug == "" {
		slug = uuid.NewString()
	}

	var existing models.Station
	if err := storage.DB.Where("slug = ?", slug).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:  "SLUG_EXISTS",
			Error: "a station with this slug already exists",
		})
		return
	}

	station := models.Station{
		Slug:         slug,
		Name:         req.Name,
		Genre:        req.Genre,
		StreamURL:    req.StreamURL,
		OwnerAddress: c.GetString("walletAddress"),
	}
	if err := storage.DB.Create(&station).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Error:   "could not create station",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, station)
}

// GetStationHandler fetches one station
// @Summary		Get a station
// @Tags			stations
// @Produce		json
// @Param			slug	path		string	true	"Station slug"
// @Success		200		{object}	models.Station
// @Failure		404		{object}	response.ErrorResponse	"Station not found (STATION_NOT_FOUND)"
// @Router			/api/stations/{slug} [get]
func GetStationHandler(c *gin.Context) {
	var station models.Station
	if err := storage.DB.Where("slug = ?", c.Param("slug")).First(&station).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:  "STATION_NOT_FOUND",
			Error: "station not found",
		})
		return
	}
	c.JSON(http.StatusOK, station)
}

// GetNowPlayingHandler returns the station's current track
// @Summary		Now playing
// @Tags			stations
// @Produce		json
// @Param			slug	path		string	true	"Station slug"
// @Success		200		{object}	map[string]interface{}
// @Failure		404		{object}	response.ErrorResponse	"Nothing playing (NOTHING_PLAYING)"
// @Router			/api/stations/{slug}/now-playing [get]
func GetNowPlayingHandler(c *gin.Context) {
	key := "station:" + c.Param("slug") + ":now_playing"
	raw, err := storage.RedisClient.Get(ctx, key).Result()
	if err == redis.Nil || raw == "" {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:  "NOTHING_PLAYING",
			Error: "nothing is playing on this station",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "CACHE_ERROR",
			Error:   "could not read now playing",
			Details: err.Error(),
		})
		return
	}
	c.Data(http.StatusOK, "application/json", []byte(raw))
}

// SetNowPlayingHandler updates the station's current track
// @Summary		Set now playing
// @Description	Station owner pushes the current track metadata
// @Tags			stations
// @Accept			json
// @Produce		json
// @Param			slug	path		string				true	"Station slug"
// @Param			body	body		NowPlayingRequest	true	"Track metadata"
// @Security		BearerAuth
// @Success		200		{object}	response.SuccessResponse
// @Failure		400		{object}	response.ErrorResponse	"Validation error (MISSING_FIELD)"
// @Failure		403		{object}	response.ErrorResponse	"Not the station owner (NOT_OWNER)"
// @Failure		404		{object}	response.ErrorResponse	"Station not found (STATION_NOT_FOUND)"
// @Router			/api/stations/{slug}/now-playing [post]
func SetNowPlayingHandler(c *gin.Context) {
	var req NowPlayingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "MISSING_FIELD",
			Error:   "title is required",
			Details: err.Error(),
		})
		return
	}

	var station models.Station
	if err := storage.DB.Where("slug = ?", c.Param("slug")).First(&station).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:  "STATION_NOT_FOUND",
			Error: "station not found",
		})
		return
	}
	if station.OwnerAddress != c.GetString("walletAddress") {
		c.JSON(http.StatusForbidden, response.ErrorResponse{
			Code:  "NOT_OWNER",
			Error: "only the station owner can set now playing",
		})
		return
	}

	payload, err := json.Marshal(gin.H{
		"title":  req.Title,
		"artist": req.Artist,
		"art":    req.Art,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:  "INTERNAL_ERROR",
			Error: "unexpected error",
		})
		return
	}

	key := "station:" + station.Slug + ":now_playing"
	if err := storage.RedisClient.Set(ctx, key, payload, 0).Err(); err != nil {
		log.Error("now playing cache write failed: ", err)
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:  "CACHE_ERROR",
			Error: "could not store now playing",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
