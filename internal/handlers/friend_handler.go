package handlers

import (
	"errors"
	"net/http"

	"chat-realtime-api/internal/logger"
	"chat-realtime-api/internal/models"
	"chat-realtime-api/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FriendRequestPayload names the user to befriend
type FriendRequestPayload struct {
	UserID string `json:"userId" binding:"required"`
}

// SendFriendRequest handles POST /api/friends/requests
func (h *Handler) SendFriendRequest(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req FriendRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UserID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot befriend yourself"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.FindUserByID(ctx, req.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		}
		return
	}

	f, err := h.store.CreateFriendRequest(ctx, userID, req.UserID)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Friend request already exists"})
			return
		}
		logger.FromContext(ctx).Error("create friend request", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create friend request"})
		return
	}

	c.JSON(http.StatusCreated, f)
}

// AcceptFriendRequest handles POST /api/friends/requests/:id/accept
func (h *Handler) AcceptFriendRequest(c *gin.Context) {
	h.respondFriendRequest(c, models.FriendshipAccepted)
}

// RejectFriendRequest handles POST /api/friends/requests/:id/reject
func (h *Handler) RejectFriendRequest(c *gin.Context) {
	h.respondFriendRequest(c, models.FriendshipRejected)
}

func (h *Handler) respondFriendRequest(c *gin.Context, status models.FriendshipStatus) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	f, err := h.store.RespondFriendRequest(c.Request.Context(), c.Param("id"), userID, status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Friend request not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update friend request"})
		}
		return
	}

	c.JSON(http.StatusOK, f)
}

// ListFriendRequests handles GET /api/friends/requests
// Returns pending requests addressed to the caller
func (h *Handler) ListFriendRequests(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	reqs, err := h.store.ListPendingRequests(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friend requests"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs, "count": len(reqs)})
}

// ListFriends handles GET /api/friends
func (h *Handler) ListFriends(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	friends, err := h.store.ListFriends(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friends"})
		return
	}

	online := make(map[string]bool)
	for _, id := range h.registry.Snapshot() {
		online[id] = true
	}

	type friend struct {
		UserResponse
		Online bool `json:"online"`
	}
	resp := make([]friend, 0, len(friends))
	for _, u := range friends {
		resp = append(resp, friend{UserResponse: UserResponse{ID: u.ID, Username: u.Username}, Online: online[u.ID]})
	}
	c.JSON(http.StatusOK, gin.H{"friends": resp, "count": len(resp)})
}
