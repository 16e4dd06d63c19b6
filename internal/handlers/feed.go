package handlers

import (
	"net/http"

	"captionvote/internal/middleware"
	"captionvote/internal/services"
	"captionvote/internal/utils"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	feed    *services.FeedService
	perPage int
}

func NewFeedHandler(feed *services.FeedService, perPage int) *FeedHandler {
	return &FeedHandler{feed: feed, perPage: perPage}
}

// pageParams reads ?page= and ?per_page=; anything unparsable falls back to the defaults.
func (h *FeedHandler) pageParams(c *gin.Context) (int, int) {
	page := utils.PositiveIntOr(c.Query("page"), 1)
	perPage := utils.PositiveIntOr(c.Query("per_page"), h.perPage)
	if perPage > services.MaxPerPage {
		perPage = services.MaxPerPage
	}
	return page, perPage
}

// Index renders the caption grid with the viewer's votes highlighted.
func (h *FeedHandler) Index(c *gin.Context) {
	page, perPage := h.pageParams(c)

	feed, err := h.feed.Page(c.Request.Context(), middleware.CurrentUserID(c), page, perPage)
	if err != nil {
		RenderError(c, err)
		return
	}

	Render(c, http.StatusOK, "feed/list.html", gin.H{
		"Title":       "Captions",
		"Captions":    feed.Annotated(),
		"Shown":       len(feed.Captions),
		"Total":       feed.Total,
		"CurrentPage": feed.Page,
		"TotalPages":  feed.TotalPages,
		"PerPage":     feed.PerPage,
	})
}

// List is the JSON feed: items, total_count, votes.
func (h *FeedHandler) List(c *gin.Context) {
	page, perPage := h.pageParams(c)

	feed, err := h.feed.Page(c.Request.Context(), middleware.CurrentUserID(c), page, perPage)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}
