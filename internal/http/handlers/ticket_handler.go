package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-assistant-backend/internal/services"
	"github.com/tbourn/go-assistant-backend/internal/utils"
)

const (
	defaultTicketLimit = 50
	maxTicketLimit     = 200
)

// ListTickets godoc
// @ID          listTickets
// @Summary     List support tickets
// @Description Returns tickets newest first.
// @Tags        Tickets
// @Produce     json
// @Param       limit  query  int  false  "Max tickets"  minimum(1) maximum(200) default(50)
// @Success     200  {array}   domain.Ticket
// @Failure     503  {object}  handlers.ErrorResponse  "Support disabled"
// @Router      /tickets [get]
func (h *Handlers) ListTickets(c *gin.Context) {
	if h.support == nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "support is not configured")
		return
	}
	limit := utils.ClampLimit(utils.AtoiDefault(c.Query("limit"), defaultTicketLimit), defaultTicketLimit, maxTicketLimit)
	ok(c, http.StatusOK, h.support.List(c.Request.Context(), limit))
}

// CloseTicket godoc
// @ID          closeTicket
// @Summary     Close a support ticket
// @Tags        Tickets
// @Produce     json
// @Param       id  path  int  true  "Ticket id"
// @Success     200  {object}  handlers.SuccessResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Ticket not found"
// @Failure     503  {object}  handlers.ErrorResponse  "Store unavailable"
// @Router      /tickets/{id}/close [post]
func (h *Handlers) CloseTicket(c *gin.Context) {
	if h.support == nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "support is not configured")
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ticket id must be a positive integer")
		return
	}
	switch err := h.support.Close(c.Request.Context(), id); {
	case errors.Is(err, services.ErrTicketNotFound):
		fail(c, http.StatusNotFound, ErrCodeTicketNotFound, "ticket not found")
	case err != nil:
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "ticket store unavailable")
	default:
		done(c)
	}
}
