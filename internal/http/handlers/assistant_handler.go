// Assistant HTTP handlers.
//
// Endpoints (relative to the API base path):
//   - GET  /models
//   - GET  /chats?user_id=
//   - POST /chats/create | /chats/delete | /chats/rename
//   - GET  /history?user_id=&chat_id=
//   - POST /history/clear
//   - POST /chat
//   - GET  /faq?q=&lang=&limit=
//
// Handlers validate input, call the orchestrator and translate its results.
// Identity is carried in user_id; the API does not authenticate callers.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-assistant-backend/internal/domain"
	"github.com/tbourn/go-assistant-backend/internal/faq"
	"github.com/tbourn/go-assistant-backend/internal/http/middleware"
	"github.com/tbourn/go-assistant-backend/internal/llm"
	"github.com/tbourn/go-assistant-backend/internal/services"
	"github.com/tbourn/go-assistant-backend/internal/storage"
	"github.com/tbourn/go-assistant-backend/internal/utils"
)

//
// Service contracts
//

// Assistant is the part of the orchestrator the API exposes.
type Assistant interface {
	Models() []llm.Model
	Conversations(ctx context.Context, userID int64) []storage.ConversationInfo
	CreateConversation(ctx context.Context, userID int64, title string) (int64, error)
	DeleteConversation(ctx context.Context, userID, id int64) error
	RenameConversation(ctx context.Context, userID, id int64, title string) error
	History(ctx context.Context, userID int64, conv *int64) []storage.Turn
	ClearHistory(ctx context.Context, userID int64, conv *int64)
	SubmitPrompt(ctx context.Context, userID int64, prompt, modelID string, conv *int64) (services.Result, error)
}

// Support lists and closes tickets for the admin view.
type Support interface {
	List(ctx context.Context, limit int) []domain.Ticket
	Close(ctx context.Context, ticketID int64) error
}

// FAQ answers common questions without a model call.
type FAQ interface {
	Entries(lang string) []faq.Entry
	Search(lang, query string, k int) []faq.Match
}

// Handlers groups the API endpoints.
type Handlers struct {
	assistant Assistant
	support   Support
	faq       FAQ
}

// New constructs Handlers bound to the given services. support and f may be
// nil, in which case the ticket and FAQ endpoints answer 503.
func New(a Assistant, s Support, f FAQ) *Handlers {
	return &Handlers{assistant: a, support: s, faq: f}
}

//
// DTOs
//

// ChatRequest is the JSON payload of POST /chat.
type ChatRequest struct {
	UserID int64  `json:"user_id" binding:"required" example:"123456789"`
	Prompt string `json:"prompt"  example:"Explain goroutines in two sentences"`
	// ModelID selects a catalog model for this request only.
	ModelID string `json:"model_id" example:"groq/compound"`
	// ChatID addresses a named conversation; omit for the main chat.
	ChatID *int64 `json:"chat_id,omitempty" example:"7"`
}

// ChatResponse is the reply to POST /chat.
type ChatResponse struct {
	Response string `json:"response" example:"Goroutines are lightweight threads..."`
	Success  bool   `json:"success"  example:"true"`
	Model    string `json:"model,omitempty" example:"groq/compound"`
}

// CreateChatRequest is the JSON payload of POST /chats/create.
type CreateChatRequest struct {
	UserID int64  `json:"user_id" binding:"required" example:"123456789"`
	Title  string `json:"title" example:"Trip to Kazan"`
}

// CreateChatResponse carries the new conversation id.
type CreateChatResponse struct {
	Success bool  `json:"success" example:"true"`
	ChatID  int64 `json:"chat_id" example:"7"`
}

// RenameChatRequest is the JSON payload of POST /chats/rename.
type RenameChatRequest struct {
	UserID int64  `json:"user_id" binding:"required" example:"123456789"`
	ChatID int64  `json:"chat_id" binding:"required" example:"7"`
	Title  string `json:"title"   binding:"required" example:"Trip to Kazan, day 2"`
}

// ConversationRef addresses a partition. It binds from a JSON body or from
// query parameters.
type ConversationRef struct {
	UserID int64  `json:"user_id" form:"user_id" binding:"required" example:"123456789"`
	ChatID *int64 `json:"chat_id" form:"chat_id" example:"7"`
}

//
// Helpers
//

// queryUser reads the mandatory user_id query parameter.
func queryUser(c *gin.Context) (int64, bool) {
	id, err := utils.OptionalID(c.Query("user_id"))
	if err != nil || id == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id must be an integer")
		return 0, false
	}
	middleware.SetUserID(c, *id)
	return *id, true
}

func bindRef(c *gin.Context) (ConversationRef, bool) {
	var ref ConversationRef
	if err := c.ShouldBind(&ref); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id is required")
		return ref, false
	}
	middleware.SetUserID(c, ref.UserID)
	return ref, true
}

//
// Handlers
//

// ListModels godoc
// @ID          getModels
// @Summary     List selectable models
// @Description Returns the model catalog in display order.
// @Tags        Models
// @Produce     json
// @Success     200  {array}  llm.Model
// @Router      /models [get]
func (h *Handlers) ListModels(c *gin.Context) {
	ok(c, http.StatusOK, h.assistant.Models())
}

// ListChats godoc
// @ID          getConversations
// @Summary     List conversations
// @Description Returns the user's conversations. The main chat is always first.
// @Tags        Chats
// @Produce     json
// @Param       user_id  query  int  true  "Telegram user id"  example(123456789)
// @Success     200  {array}   storage.ConversationInfo
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /chats [get]
func (h *Handlers) ListChats(c *gin.Context) {
	uid, good := queryUser(c)
	if !good {
		return
	}
	ok(c, http.StatusOK, h.assistant.Conversations(c.Request.Context(), uid))
}

// CreateChat godoc
// @ID          createConversation
// @Summary     Create a conversation
// @Description Creates a named conversation. An empty title becomes "New chat".
// @Tags        Chats
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.CreateChatRequest  true  "Create payload"
// @Success     200  {object}  handlers.CreateChatResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     503  {object}  handlers.ErrorResponse  "Store unavailable"
// @Router      /chats/create [post]
func (h *Handlers) CreateChat(c *gin.Context) {
	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	middleware.SetUserID(c, req.UserID)
	id, err := h.assistant.CreateConversation(c.Request.Context(), req.UserID, req.Title)
	if err != nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeCreateFailed, "could not create conversation")
		return
	}
	ok(c, http.StatusOK, CreateChatResponse{Success: true, ChatID: id})
}

// DeleteChat godoc
// @ID          deleteConversation
// @Summary     Delete a conversation
// @Description Deletes a conversation and its messages.
// @Tags        Chats
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.ConversationRef  true  "Conversation to delete"
// @Success     200  {object}  handlers.SuccessResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Conversation not found"
// @Router      /chats/delete [post]
func (h *Handlers) DeleteChat(c *gin.Context) {
	ref, good := bindRef(c)
	if !good {
		return
	}
	if ref.ChatID == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "chat_id is required")
		return
	}
	if err := h.assistant.DeleteConversation(c.Request.Context(), ref.UserID, *ref.ChatID); err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "conversation not found")
		return
	}
	done(c)
}

// RenameChat godoc
// @ID          renameConversation
// @Summary     Rename a conversation
// @Tags        Chats
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.RenameChatRequest  true  "New title"
// @Success     200  {object}  handlers.SuccessResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Conversation not found"
// @Router      /chats/rename [post]
func (h *Handlers) RenameChat(c *gin.Context) {
	var req RenameChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id, chat_id and title are required")
		return
	}
	middleware.SetUserID(c, req.UserID)
	if err := h.assistant.RenameConversation(c.Request.Context(), req.UserID, req.ChatID, req.Title); err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "conversation not found")
		return
	}
	done(c)
}

// GetHistory godoc
// @ID          getHistory
// @Summary     Conversation history
// @Description Returns up to 100 turns of one conversation, oldest first.
// @Tags        History
// @Produce     json
// @Param       user_id  query  int  true   "Telegram user id"  example(123456789)
// @Param       chat_id  query  int  false  "Conversation id; omit for the main chat"
// @Success     200  {array}   storage.Turn
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /history [get]
func (h *Handlers) GetHistory(c *gin.Context) {
	uid, good := queryUser(c)
	if !good {
		return
	}
	conv, err := utils.OptionalID(c.Query("chat_id"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "chat_id must be an integer")
		return
	}
	ok(c, http.StatusOK, h.assistant.History(c.Request.Context(), uid, conv))
}

// ClearHistory godoc
// @ID          clearHistory
// @Summary     Clear conversation history
// @Description Deletes the messages of one conversation; the conversation itself stays.
// @Tags        History
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.ConversationRef  true  "Partition to clear"
// @Success     200  {object}  handlers.SuccessResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /history/clear [post]
func (h *Handlers) ClearHistory(c *gin.Context) {
	ref, good := bindRef(c)
	if !good {
		return
	}
	h.assistant.ClearHistory(c.Request.Context(), ref.UserID, ref.ChatID)
	done(c)
}

// Chat godoc
// @ID          submitPrompt
// @Summary     Ask the assistant
// @Description Runs one conversation turn and returns the raw model answer.
// @Description Upstream failures still answer 200 with success=false and a localized message.
// @Tags        Chat
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.ChatRequest  true  "Prompt"
// @Success     200  {object}  handlers.ChatResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Conversation not found"
// @Failure     413  {object}  handlers.ErrorResponse  "Prompt too long"
// @Failure     422  {object}  handlers.ErrorResponse  "Unknown model"
// @Router      /chat [post]
func (h *Handlers) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	middleware.SetUserID(c, req.UserID)
	res, err := h.assistant.SubmitPrompt(c.Request.Context(), req.UserID, req.Prompt, req.ModelID, req.ChatID)
	switch {
	case errors.Is(err, services.ErrEmptyPrompt):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "prompt must not be empty")
		return
	case errors.Is(err, services.ErrTooLong):
		fail(c, http.StatusRequestEntityTooLarge, ErrCodePromptTooLong, "prompt too long")
		return
	case errors.Is(err, services.ErrUnknownModel):
		fail(c, http.StatusUnprocessableEntity, ErrCodeUnknownModel, "model is not in the catalog")
		return
	case errors.Is(err, services.ErrConversationNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "conversation not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ChatResponse{Response: res.Text, Success: res.Success, Model: res.Model})
}
