package handlers

import (
	"net/http"

	"captionvote/internal/middleware"
	"captionvote/internal/models"
	"captionvote/internal/services"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	votes *services.VoteService
}

func NewVoteHandler(votes *services.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

type voteRequest struct {
	Direction string `form:"direction" json:"direction"`
}

// Vote casts or changes the viewer's vote on a caption. HTMX callers get the
// re-rendered buttons, everyone else gets JSON.
func (h *VoteHandler) Vote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBind(&req); err != nil {
		RespondError(c, models.NewValidationError("malformed vote request"))
		return
	}

	vote, err := h.votes.Cast(c.Request.Context(), services.CastVoteInput{
		UserID:    middleware.CurrentUserID(c),
		CaptionID: c.Param("id"),
		Direction: req.Direction,
	})
	if err != nil {
		if isHTMX(c) && models.KindOf(err) == models.KindUnauthenticated {
			HtmxRedirect(c, "/login")
			return
		}
		RespondError(c, err)
		return
	}

	if isHTMX(c) {
		c.HTML(http.StatusOK, "feed/vote_buttons.html", services.AnnotatedCaption{
			Caption: models.Caption{ID: vote.CaptionID},
			Vote:    vote.Value,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "vote": vote})
}
