package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"web3radio/internal/eth"
	"web3radio/internal/queue"
	"web3radio/internal/response"
	"web3radio/internal/subgraph"
	"web3radio/internal/ws"
)

// QueueStore is the process-wide membership store, wired from main.
var QueueStore *queue.Store

type JoinQueueRequest struct {
	RoomID      string `json:"roomId" binding:"required"`
	Identity    string `json:"identity" binding:"required"`
	DisplayName string `json:"displayName"`
	AvatarRef   string `json:"avatarRef"`
	// Optional caller-supplied balance; when empty the subgraph is asked once
	// at join time. Either way the hint is cached, never re-validated.
	BalanceHint string `json:"balanceHint"`
}

type LeaveQueueRequest struct {
	RoomID   string `json:"roomId" binding:"required"`
	Identity string `json:"identity" binding:"required"`
}

// JoinQueueHandler adds a wallet to a room's waiting list
// @Summary		Join a room queue
// @Description	Appends the wallet to the aux-pass/hotbox queue and notifies room listeners
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			body	body		JoinQueueRequest		true	"Room and identity"
// @Success		200		{object}	map[string]interface{}	"Created entry with assigned position"
// @Failure		400		{object}	response.ErrorResponse	"Validation error (MISSING_FIELD, INVALID_ADDRESS)"
// @Failure		402		{object}	payment.Requirements	"Payment required"
// @Failure		409		{object}	response.ErrorResponse	"Already in queue (ALREADY_IN_QUEUE)"
// @Failure		503		{object}	response.ErrorResponse	"Store unavailable (STORE_UNAVAILABLE)"
// @Router			/queue/join [post]
func JoinQueueHandler(c *gin.Context) {
	var req JoinQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "MISSING_FIELD",
			Error:   "roomId and identity are required",
			Details: err.Error(),
		})
		return
	}
	if !eth.IsAddress(req.Identity) {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:  "INVALID_ADDRESS",
			Error: "identity is not a valid wallet address",
		})
		return
	}

	display, err := eth.Checksum(req.Identity)
	if err != nil {
		display = req.Identity
	}

	// Resolve the balance hint before touching the room so no network call
	// ever runs under the room lock.
	hint := req.BalanceHint
	if hint == "" {
		hint = subgraph.BalanceHint(c.Request.Context(), eth.Normalize(req.Identity))
	}

	entry, err := QueueStore.Join(req.RoomID, display, req.DisplayName, req.AvatarRef, hint)
	if err != nil {
		switch {
		case errors.Is(err, queue.ErrAlreadyQueued):
			c.JSON(http.StatusConflict, response.ErrorResponse{
				Code:  "ALREADY_IN_QUEUE",
				Error: "Already in queue",
			})
		case errors.Is(err, queue.ErrStoreUnavailable):
			log.Error("queue join persistence failed: ", err)
			c.JSON(http.StatusServiceUnavailable, response.ErrorResponse{
				Code:  "STORE_UNAVAILABLE",
				Error: "queue store unavailable, try again",
			})
		default:
			log.Error("queue join failed: ", err)
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{
				Code:  "INTERNAL_ERROR",
				Error: "unexpected error",
			})
		}
		return
	}

	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		Event:  "member_joined",
		RoomID: req.RoomID,
		Data: map[string]interface{}{
			"address":  entry.Address,
			"position": entry.Position,
		},
	})

	c.JSON(http.StatusOK, gin.H{"success": true, "entry": entry})
}

// LeaveQueueHandler removes a wallet from a room's waiting list
// @Summary		Leave a room queue
// @Description	Removes the wallet and renumbers the remaining positions
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			body	body		LeaveQueueRequest		true	"Room and identity"
// @Success		200		{object}	response.SuccessResponse	"Removed"
// @Failure		400		{object}	response.ErrorResponse	"Validation error or not in queue (MISSING_FIELD, NOT_IN_QUEUE)"
// @Failure		503		{object}	response.ErrorResponse	"Store unavailable (STORE_UNAVAILABLE)"
// @Router			/queue/leave [post]
func LeaveQueueHandler(c *gin.Context) {
	var req LeaveQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "MISSING_FIELD",
			Error:   "roomId and identity are required",
			Details: err.Error(),
		})
		return
	}

	if err := QueueStore.Leave(req.RoomID, req.Identity); err != nil {
		switch {
		case errors.Is(err, queue.ErrNotQueued):
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:  "NOT_IN_QUEUE",
				Error: "Not in queue",
			})
		case errors.Is(err, queue.ErrStoreUnavailable):
			log.Error("queue leave persistence failed: ", err)
			c.JSON(http.StatusServiceUnavailable, response.ErrorResponse{
				Code:  "STORE_UNAVAILABLE",
				Error: "queue store unavailable, try again",
			})
		default:
			log.Error("queue leave failed: ", err)
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{
				Code:  "INTERNAL_ERROR",
				Error: "unexpected error",
			})
		}
		return
	}

	// Broadcast the same casing as member_joined so subscribers track one
	// spelling of the wallet across its lifecycle.
	display, err := eth.Checksum(req.Identity)
	if err != nil {
		display = req.Identity
	}
	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		Event:  "member_left",
		RoomID: req.RoomID,
		Data: map[string]interface{}{
			"address": display,
		},
	})

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HeartbeatHandler keeps a queued wallet alive
// @Summary		Queue heartbeat
// @Description	Refreshes the entry's last-seen time so the TTL sweep keeps it
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			body	body		LeaveQueueRequest		true	"Room and identity"
// @Success		200		{object}	response.SuccessResponse	"Refreshed"
// @Failure		400		{object}	response.ErrorResponse	"Not in queue (NOT_IN_QUEUE)"
// @Router			/queue/heartbeat [post]
func HeartbeatHandler(c *gin.Context) {
	var req LeaveQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "MISSING_FIELD",
			Error:   "roomId and identity are required",
			Details: err.Error(),
		})
		return
	}

	if err := QueueStore.Touch(req.RoomID, req.Identity); err != nil {
		switch {
		case errors.Is(err, queue.ErrNotQueued):
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:  "NOT_IN_QUEUE",
				Error: "Not in queue",
			})
		case errors.Is(err, queue.ErrStoreUnavailable):
			c.JSON(http.StatusServiceUnavailable, response.ErrorResponse{
				Code:  "STORE_UNAVAILABLE",
				Error: "queue store unavailable, try again",
			})
		default:
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{
				Code:  "INTERNAL_ERROR",
				Error: "unexpected error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetQueueHandler returns a room's ordered member list
// @Summary		Room queue snapshot
// @Tags			queue
// @Produce		json
// @Param			roomId	query		string	true	"Room id"
// @Success		200		{object}	map[string]interface{}	"Ordered members"
// @Failure		400		{object}	response.ErrorResponse	"Missing roomId (MISSING_FIELD)"
// @Router			/queue [get]
func GetQueueHandler(c *gin.Context) {
	roomID := c.Query("roomId")
	if roomID == "" {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:  "MISSING_FIELD",
			Error: "roomId is required",
		})
		return
	}

	members := QueueStore.List(roomID)
	c.JSON(http.StatusOK, gin.H{
		"roomId":  roomID,
		"count":   len(members),
		"members": members,
	})
}
