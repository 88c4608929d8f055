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

type SeasonService interface {
	GetActive(ctx context.Context) (domain.Season, error)
	Get(ctx context.Context, id uint) (domain.Season, error)
	List(ctx context.Context) ([]domain.Season, error)
	Create(ctx context.Context, in service.SeasonInput) (domain.Season, error)
	Update(ctx context.Context, id uint, in service.SeasonInput) (domain.Season, error)
	SetMultiplier(ctx context.Context, id uint, multiplier float64) error
	Activate(ctx context.Context, id uint) (domain.Season, error)
	Deactivate(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

type SeasonHandler struct {
	svc SeasonService
}

func NewSeasonHandler(svc SeasonService) *SeasonHandler {
	return &SeasonHandler{svc: svc}
}

// HandleListSeasons godoc
// @Summary      List seasons
// @Tags         seasons
// @Produce      json
// @Success      200  {array}   domain.Season
// @Failure      503  {object}  response.Err
// @Router       /seasons [get]
// @Security     BearerAuth
func (h *SeasonHandler) HandleListSeasons(ctx *gin.Context) {
	seasons, err := h.svc.List(ctx.Request.Context())
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, seasons)
}

// HandleGetActiveSeason godoc
// @Summary      Get the active season
// @Tags         seasons
// @Produce      json
// @Success      200  {object}  domain.Season
// @Failure      422  {object}  response.Err
// @Router       /seasons/active [get]
// @Security     BearerAuth
func (h *SeasonHandler) HandleGetActiveSeason(ctx *gin.Context) {
	season, err := h.svc.GetActive(ctx.Request.Context())
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, season)
}

// HandleGetSeason godoc
// @Summary      Get a season
// @Tags         seasons
// @Produce      json
// @Param        seasonID  path      int  true  "Season ID"
// @Success      200  {object}  domain.Season
// @Failure      404  {object}  response.Err
// @Router       /seasons/{seasonID} [get]
// @Security     BearerAuth
func (h *SeasonHandler) HandleGetSeason(ctx *gin.Context) {
	id, respErr := pathID(ctx, "seasonID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	season, err := h.svc.Get(ctx.Request.Context(), id)
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, season)
}

// HandleCreateSeason godoc
// @Summary      Create a season
// @Description  Creates an inactive season. Its period must not overlap another season.
// @Tags         seasons
// @Accept       json
// @Produce      json
// @Param        request  body      request.SeasonRequest  true  "Season"
// @Success      201  {object}  domain.Season
// @Failure      400  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /seasons [post]
// @Security     BearerAuth
func (h *SeasonHandler) HandleCreateSeason(ctx *gin.Context) {
	in, respErr := seasonInput(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	season, err := h.svc.Create(ctx.Request.Context(), in)
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusCreated, season)
}

// HandleUpdateSeason godoc
// @Summary      Update a season
// @Tags         seasons
// @Accept       json
// @Produce      json
// @Param        seasonID  path      int                    true  "Season ID"
// @Param        request   body      request.SeasonRequest  true  "Season"
// @Success      200  {object}  domain.Season
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /seasons/{seasonID} [put]
// @Security     BearerAuth
func (h *SeasonHandler) HandleUpdateSeason(ctx *gin.Context) {
	id, respErr := pathID(ctx, "seasonID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	in, respErr := seasonInput(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	season, err := h.svc.Update(ctx.Request.Context(), id, in)
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, season)
}

// HandleSetMultiplier godoc
// @Summary      Change a season's multiplier
// @Description  Only events recorded afterwards use the new multiplier.
// @Tags         seasons
// @Accept       json
// @Param        seasonID  path      int                        true  "Season ID"
// @Param        request   body      request.MultiplierRequest  true  "Multiplier"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /seasons/{seasonID}/multiplier [patch]
// @Security     BearerAuth
func (h *SeasonHandler) HandleSetMultiplier(ctx *gin.Context) {
	id, respErr := pathID(ctx, "seasonID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	var req request.MultiplierRequest
	if respErr := bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.SetMultiplier(ctx.Request.Context(), id, req.Multiplier); err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleActivateSeason godoc
// @Summary      Activate a season
// @Description  Deactivates every other season in the same transaction.
// @Tags         seasons
// @Produce      json
// @Param        seasonID  path      int  true  "Season ID"
// @Success      200  {object}  domain.Season
// @Failure      404  {object}  response.Err
// @Router       /seasons/{seasonID}/activate [post]
// @Security     BearerAuth
func (h *SeasonHandler) HandleActivateSeason(ctx *gin.Context) {
	id, respErr := pathID(ctx, "seasonID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	season, err := h.svc.Activate(ctx.Request.Context(), id)
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, season)
}

// HandleDeactivateSeason godoc
// @Summary      Deactivate a season
// @Tags         seasons
// @Param        seasonID  path      int  true  "Season ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Router       /seasons/{seasonID}/deactivate [post]
// @Security     BearerAuth
func (h *SeasonHandler) HandleDeactivateSeason(ctx *gin.Context) {
	id, respErr := pathID(ctx, "seasonID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.Deactivate(ctx.Request.Context(), id); err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleDeleteSeason godoc
// @Summary      Delete a season
// @Description  Refused while the season is active or has recorded events.
// @Tags         seasons
// @Param        seasonID  path      int  true  "Season ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /seasons/{seasonID} [delete]
// @Security     BearerAuth
func (h *SeasonHandler) HandleDeleteSeason(ctx *gin.Context) {
	id, respErr := pathID(ctx, "seasonID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.Delete(ctx.Request.Context(), id); err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

func seasonInput(ctx *gin.Context) (service.SeasonInput, *response.Err) {
	var req request.SeasonRequest
	if respErr := bindJSON(ctx, &req); respErr != nil {
		return service.SeasonInput{}, respErr
	}

	start, end, err := req.Period()
	if err != nil {
		return service.SeasonInput{}, response.ErrBadRequest(err)
	}

	return service.SeasonInput{
		Name:       req.Name,
		StartDate:  start,
		EndDate:    end,
		Multiplier: req.Multiplier,
	}, nil
}
