package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/api/handler/v1/request"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/service"
)

type AchievementService interface {
	GetUnlocked(ctx context.Context, attendantID uint, seasonID *uint) ([]domain.UnlockedAchievement, error)
	Get(ctx context.Context, id uint) (domain.AchievementConfig, error)
	List(ctx context.Context, activeOnly bool) ([]domain.AchievementConfig, error)
	Create(ctx context.Context, in service.AchievementInput) (domain.AchievementConfig, error)
	Update(ctx context.Context, id uint, in service.AchievementInput) (domain.AchievementConfig, error)
	SetActive(ctx context.Context, id uint, active bool) error
}

type AchievementHandler struct {
	svc AchievementService
}

func NewAchievementHandler(svc AchievementService) *AchievementHandler {
	return &AchievementHandler{svc: svc}
}

// HandleGetUnlocked godoc
// @Summary      Achievements unlocked by an attendant
// @Tags         attendants
// @Produce      json
// @Param        attendantID  path      int  true   "Attendant ID"
// @Param        season_id    query     int  false  "Only unlocks of this season"
// @Success      200  {object}  response.Unlocked
// @Failure      400  {object}  response.Err
// @Router       /attendants/{attendantID}/achievements [get]
// @Security     BearerAuth
func (h *AchievementHandler) HandleGetUnlocked(ctx *gin.Context) {
	id, respErr := pathID(ctx, "attendantID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	seasonID, respErr := queryID(ctx, "season_id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	unlocked, err := h.svc.GetUnlocked(ctx.Request.Context(), id, seasonID)
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.Unlocked{AttendantID: id, Achievements: unlocked})
}

// HandleListAchievements godoc
// @Summary      List achievements
// @Tags         achievements
// @Produce      json
// @Param        active_only  query     bool  false  "Only active achievements"
// @Success      200  {array}   domain.AchievementConfig
// @Router       /achievements [get]
// @Security     BearerAuth
func (h *AchievementHandler) HandleListAchievements(ctx *gin.Context) {
	activeOnly, respErr := queryBool(ctx, "active_only")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	achievements, err := h.svc.List(ctx.Request.Context(), activeOnly)
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, achievements)
}

// HandleGetAchievement godoc
// @Summary      Get an achievement
// @Tags         achievements
// @Produce      json
// @Param        achievementID  path      int  true  "Achievement ID"
// @Success      200  {object}  domain.AchievementConfig
// @Failure      404  {object}  response.Err
// @Router       /achievements/{achievementID} [get]
// @Security     BearerAuth
func (h *AchievementHandler) HandleGetAchievement(ctx *gin.Context) {
	id, respErr := pathID(ctx, "achievementID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	achievement, err := h.svc.Get(ctx.Request.Context(), id)
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, achievement)
}

// HandleCreateAchievement godoc
// @Summary      Create an achievement
// @Description  criteria is one of {"type":"xp_threshold","points"}, {"type":"five_star_streak","count"}, {"type":"high_average","rating","min_count"} or {"type":"ranking_position","position"}.
// @Tags         achievements
// @Accept       json
// @Produce      json
// @Param        request  body      request.AchievementRequest  true  "Achievement"
// @Success      201  {object}  domain.AchievementConfig
// @Failure      400  {object}  response.Err
// @Router       /achievements [post]
// @Security     BearerAuth
func (h *AchievementHandler) HandleCreateAchievement(ctx *gin.Context) {
	in, respErr := achievementInput(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	achievement, err := h.svc.Create(ctx.Request.Context(), in)
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusCreated, achievement)
}

// HandleUpdateAchievement godoc
// @Summary      Update an achievement
// @Description  Past unlocks are kept.
// @Tags         achievements
// @Accept       json
// @Produce      json
// @Param        achievementID  path      int                         true  "Achievement ID"
// @Param        request        body      request.AchievementRequest  true  "Achievement"
// @Success      200  {object}  domain.AchievementConfig
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /achievements/{achievementID} [put]
// @Security     BearerAuth
func (h *AchievementHandler) HandleUpdateAchievement(ctx *gin.Context) {
	id, respErr := pathID(ctx, "achievementID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	in, respErr := achievementInput(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	achievement, err := h.svc.Update(ctx.Request.Context(), id, in)
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, achievement)
}

// HandleSetAchievementActive godoc
// @Summary      Enable or disable an achievement
// @Tags         achievements
// @Accept       json
// @Param        achievementID  path      int                    true  "Achievement ID"
// @Param        request        body      request.ActiveRequest  true  "Active flag"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /achievements/{achievementID}/active [patch]
// @Security     BearerAuth
func (h *AchievementHandler) HandleSetAchievementActive(ctx *gin.Context) {
	id, respErr := pathID(ctx, "achievementID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	var req request.ActiveRequest
	if respErr := bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.SetActive(ctx.Request.Context(), id, *req.Active); err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

func achievementInput(ctx *gin.Context) (service.AchievementInput, *response.Err) {
	var req request.AchievementRequest
	if respErr := bindJSON(ctx, &req); respErr != nil {
		return service.AchievementInput{}, respErr
	}

	criteria, err := req.ParseCriteria()
	if err != nil {
		return service.AchievementInput{}, response.FromError(err)
	}

	return service.AchievementInput{
		Title:       req.Title,
		Description: req.Description,
		XpReward:    req.XpReward,
		Criteria:    criteria,
	}, nil
}
