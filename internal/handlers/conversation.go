package handlers

import (
	"net/http"

	"pet-adoption-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ConversationHandler handles conversation and message HTTP requests
type ConversationHandler struct {
	conversationService *services.ConversationService
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(conversationService *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
	}
}

// StartConversation handles POST /api/v1/user/conversations
func (h *ConversationHandler) StartConversation(w http.ResponseWriter, r *http.Request) {
	var req services.StartConversationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	conv, err := h.conversationService.Start(r.Context(), caller(r), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to start conversation")
		return
	}

	log.Info().
		Str("conversation_id", conv.ID).
		Strs("participants", conv.Participants).
		Msg("Conversation started")

	respondJSON(w, http.StatusCreated, conv)
}

// ListConversations handles GET /api/v1/user/conversations
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagingParams(r)
	convs, err := h.conversationService.List(r.Context(), caller(r), limit, offset)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list conversations")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"conversations": convs,
	})
}

// ApproveConversation handles PUT /api/v1/user/conversations/{conversation_id}/approve
func (h *ConversationHandler) ApproveConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := h.conversationService.Approve(r.Context(), chi.URLParam(r, "conversation_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to approve conversation")
		return
	}

	log.Info().Str("conversation_id", conv.ID).Msg("Conversation approved")
	respondJSON(w, http.StatusOK, conv)
}

// SendMessage handles POST /api/v1/user/conversations/{conversation_id}/messages
func (h *ConversationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req services.SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.conversationService.Send(r.Context(), caller(r), chi.URLParam(r, "conversation_id"), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to send message")
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}

// ListMessages handles GET /api/v1/user/conversations/{conversation_id}/messages
func (h *ConversationHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagingParams(r)
	msgs, err := h.conversationService.History(r.Context(), caller(r), chi.URLParam(r, "conversation_id"), limit, offset)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list messages")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"messages": msgs,
	})
}

// UploadAttachment handles POST /api/v1/user/conversations/{conversation_id}/attachments
func (h *ConversationHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	var req services.UploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	upload, err := h.conversationService.PresignAttachment(r.Context(), caller(r), chi.URLParam(r, "conversation_id"), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to generate pre-signed URL")
		return
	}
	respondJSON(w, http.StatusOK, upload)
}

// MarkDelivered handles PUT /api/v1/user/messages/{message_id}/delivered
func (h *ConversationHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	msg, err := h.conversationService.MarkDelivered(r.Context(), caller(r), chi.URLParam(r, "message_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to mark message delivered")
		return
	}
	respondJSON(w, http.StatusOK, msg)
}

// MarkRead handles PUT /api/v1/user/messages/{message_id}/read
func (h *ConversationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	msg, err := h.conversationService.MarkRead(r.Context(), caller(r), chi.URLParam(r, "message_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to mark message read")
		return
	}
	respondJSON(w, http.StatusOK, msg)
}
