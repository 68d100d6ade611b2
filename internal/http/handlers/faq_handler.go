package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-assistant-backend/internal/faq"
	"github.com/tbourn/go-assistant-backend/internal/prompts"
	"github.com/tbourn/go-assistant-backend/internal/utils"
)

const (
	defaultFAQLimit = 3
	maxFAQLimit     = 20
)

// SearchFAQ godoc
// @ID          searchFAQ
// @Summary     Search the FAQ
// @Description Without q, returns every entry for the language. With q, returns the best matches ranked by score.
// @Tags        FAQ
// @Produce     json
// @Param       q      query  string  false  "Question to match"  example(how do I change the language)
// @Param       lang   query  string  false  "Language code, unknown codes fall back to ru"  example(en)
// @Param       limit  query  int     false  "Max matches"  minimum(1) maximum(20) default(3)
// @Success     200  {array}   faq.Match
// @Failure     503  {object}  handlers.ErrorResponse  "FAQ disabled"
// @Router      /faq [get]
func (h *Handlers) SearchFAQ(c *gin.Context) {
	if h.faq == nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "faq is not configured")
		return
	}
	lang := prompts.Resolve(c.Query("lang"))
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		ok(c, http.StatusOK, h.faq.Entries(lang))
		return
	}
	limit := utils.ClampLimit(utils.AtoiDefault(c.Query("limit"), defaultFAQLimit), defaultFAQLimit, maxFAQLimit)
	matches := h.faq.Search(lang, q, limit)
	if matches == nil {
		matches = []faq.Match{}
	}
	ok(c, http.StatusOK, matches)
}
