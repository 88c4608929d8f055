package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
)

const defaultLeaderboardLimit = 10

type LeaderboardService interface {
	Rank(ctx context.Context, seasonID *uint, limit int) ([]domain.RankedEntry, error)
}

type LeaderboardHandler struct {
	svc LeaderboardService
}

func NewLeaderboardHandler(svc LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{svc: svc}
}

// HandleGetLeaderboard godoc
// @Summary      Leaderboard
// @Description  Attendants ordered by total XP, ties broken by attendant id. Without season_id the all-time totals are ranked.
// @Tags         leaderboard
// @Produce      json
// @Param        season_id  query     int  false  "Season ID"
// @Param        limit      query     int  false  "Number of entries"
// @Success      200  {object}  response.Leaderboard
// @Failure      400  {object}  response.Err
// @Router       /leaderboard [get]
// @Security     BearerAuth
func (h *LeaderboardHandler) HandleGetLeaderboard(ctx *gin.Context) {
	seasonID, respErr := queryID(ctx, "season_id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	limit, respErr := queryInt(ctx, "limit", defaultLeaderboardLimit)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	entries, err := h.svc.Rank(ctx.Request.Context(), seasonID, limit)
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.Leaderboard{SeasonID: seasonID, Entries: entries})
}
