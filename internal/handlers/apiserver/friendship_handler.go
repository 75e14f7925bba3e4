package apiserver

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"filmtrack/internal/errs"
	"filmtrack/internal/services"
)

// FriendshipHandler handles HTTP requests related to friend requests and friendships.
type FriendshipHandler struct {
	friendService services.FriendshipService
	logger        *zap.Logger
}

// NewFriendshipHandler creates a new FriendshipHandler.
func NewFriendshipHandler(fs services.FriendshipService, logger *zap.Logger) *FriendshipHandler {
	return &FriendshipHandler{friendService: fs, logger: logger.Named("friendship_handler")}
}

// SendFriendRequestPayload defines the expected JSON body for sending a friend request.
type SendFriendRequestPayload struct {
	ReceiverID uint `json:"receiverId"`
}

// MessageResponse is returned by operations that have nothing else to report.
type MessageResponse struct {
	Message string `json:"message"`
}

// SearchUsersHandler handles GET /api/friends/search?q=
func (h *FriendshipHandler) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if utf8.RuneCountInString(q) < services.MinSearchQueryLength {
		writeJSONError(w, errs.Message(services.ErrSearchQueryTooShort, ""), http.StatusBadRequest)
		return
	}
	users, err := h.friendService.SearchUsers(r.Context(), q, userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to search users")
		return
	}
	writeJSONResponse(w, http.StatusOK, users)
}

// SendFriendRequestHandler handles POST /api/friends/requests
func (h *FriendshipHandler) SendFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	senderID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var payload SendFriendRequestPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeServiceError(w, h.logger, err, "Invalid request body")
		return
	}
	if payload.ReceiverID == 0 {
		writeJSONError(w, "Receiver ID is required", http.StatusBadRequest)
		return
	}

	friendship, err := h.friendService.SendFriendRequest(r.Context(), senderID, payload.ReceiverID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to send friend request")
		return
	}
	writeJSONResponse(w, http.StatusCreated, friendship)
}

// AcceptFriendRequestHandler handles POST /api/friends/requests/{id}/accept
func (h *FriendshipHandler) AcceptFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, h.logger, err, "Invalid friendship ID")
		return
	}
	friendship, err := h.friendService.AcceptFriendRequest(r.Context(), id, userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to accept friend request")
		return
	}
	writeJSONResponse(w, http.StatusOK, friendship)
}

// RejectFriendRequestHandler handles POST /api/friends/requests/{id}/reject
func (h *FriendshipHandler) RejectFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, h.logger, err, "Invalid friendship ID")
		return
	}
	if err := h.friendService.RejectFriendRequest(r.Context(), id, userID); err != nil {
		writeServiceError(w, h.logger, err, "Failed to reject friend request")
		return
	}
	writeJSONResponse(w, http.StatusOK, MessageResponse{Message: "Friend request rejected"})
}

// RemoveFriendHandler handles DELETE /api/friends/{id}
func (h *FriendshipHandler) RemoveFriendHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, h.logger, err, "Invalid friendship ID")
		return
	}
	if err := h.friendService.RemoveFriend(r.Context(), id, userID); err != nil {
		writeServiceError(w, h.logger, err, "Failed to remove friend")
		return
	}
	writeJSONResponse(w, http.StatusOK, MessageResponse{Message: "Friend removed"})
}

// ListFriendsHandler handles GET /api/friends
func (h *FriendshipHandler) ListFriendsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	friends, err := h.friendService.GetFriends(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to get friends")
		return
	}
	writeJSONResponse(w, http.StatusOK, friends)
}

// ListPendingRequestsHandler handles GET /api/friends/requests/pending
func (h *FriendshipHandler) ListPendingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	requests, err := h.friendService.GetPendingRequests(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to get pending requests")
		return
	}
	writeJSONResponse(w, http.StatusOK, requests)
}

// ListSentRequestsHandler handles GET /api/friends/requests/sent
func (h *FriendshipHandler) ListSentRequestsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	requests, err := h.friendService.GetSentRequests(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to get sent requests")
		return
	}
	writeJSONResponse(w, http.StatusOK, requests)
}

// FriendshipStatusHandler handles GET /api/friends/status/{userId}
func (h *FriendshipHandler) FriendshipStatusHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	otherID, err := pathID(r, "userId")
	if err != nil {
		writeServiceError(w, h.logger, err, "Invalid user ID")
		return
	}
	status, err := h.friendService.GetFriendshipStatus(r.Context(), userID, otherID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to get friendship status")
		return
	}
	writeJSONResponse(w, http.StatusOK, status)
}
