package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/api/handler/v1/request"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/notify"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/progress"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/service"
)

const defaultGrantsLimit = 50

type GrantService interface {
	Grant(ctx context.Context, in service.GrantInput) (service.GrantResult, error)
	GrantMany(ctx context.Context, inputs []service.GrantInput, onResult func(i int, res service.GrantResult, err error))
	GrantsByAttendant(ctx context.Context, attendantID uint, limit int) ([]domain.XpGrant, error)
	DailyUsage(ctx context.Context, granterID *uint, date *time.Time) (domain.DailyUsage, error)
	GetLimits(ctx context.Context) (domain.GrantLimitConfig, error)
	UpdateLimits(ctx context.Context, limits domain.GrantLimitConfig, updatedBy uint) (domain.GrantLimitConfig, error)
	GetType(ctx context.Context, id uint) (domain.XpType, error)
	ListTypes(ctx context.Context, activeOnly bool) ([]domain.XpType, error)
	CreateType(ctx context.Context, in service.XpTypeInput, createdBy uint) (domain.XpType, error)
	UpdateType(ctx context.Context, id uint, in service.XpTypeInput) (domain.XpType, error)
	SetTypeActive(ctx context.Context, id uint, active bool) error
}

type GrantHandler struct {
	svc        GrantService
	tracker    *progress.Tracker
	dispatcher notify.Dispatcher
	logger     *zap.Logger
}

func NewGrantHandler(svc GrantService, tracker *progress.Tracker, dispatcher notify.Dispatcher, logger *zap.Logger) *GrantHandler {
	return &GrantHandler{
		svc:        svc,
		tracker:    tracker,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// HandleGrant godoc
// @Summary      Grant XP
// @Description  Issues a manual grant of a configured XP type on behalf of the caller. Every limit rule is checked atomically with the write.
// @Tags         grants
// @Accept       json
// @Produce      json
// @Param        request  body      request.GrantRequest  true  "Grant"
// @Success      201  {object}  service.GrantResult
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Failure      429  {object}  response.Err
// @Failure      503  {object}  response.Err
// @Router       /grants [post]
// @Security     BearerAuth
func (h *GrantHandler) HandleGrant(ctx *gin.Context) {
	granterID, respErr := callerID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	var req request.GrantRequest
	if respErr := bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	res, err := h.svc.Grant(ctx.Request.Context(), grantInput(req, granterID))
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	h.forward(ctx.Request.Context(), res)
	ctx.JSON(http.StatusCreated, res)
}

// HandleBulkGrant godoc
// @Summary      Grant XP in bulk
// @Description  Issues every grant independently in the background. Poll the returned operation for per-item outcomes.
// @Tags         grants
// @Accept       json
// @Produce      json
// @Param        request  body      request.BulkGrantRequest  true  "Grants"
// @Success      202  {object}  response.OperationAccepted
// @Failure      400  {object}  response.Err
// @Router       /grants/bulk [post]
// @Security     BearerAuth
func (h *GrantHandler) HandleBulkGrant(ctx *gin.Context) {
	granterID, respErr := callerID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	var req request.BulkGrantRequest
	if respErr := bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	inputs := make([]service.GrantInput, len(req.Grants))
	for i, g := range req.Grants {
		inputs[i] = grantInput(g, granterID)
	}

	op := h.tracker.Start(len(inputs))
	bg := context.WithoutCancel(ctx.Request.Context())
	go h.runBulk(bg, op.ID, inputs)

	ctx.JSON(http.StatusAccepted, response.OperationAccepted{
		OperationID: op.ID,
		State:       op.State,
		Total:       op.Total,
	})
}

// runBulk issues the grants of one operation. A panic fails the operation
// instead of leaving it running until it expires.
func (h *GrantHandler) runBulk(ctx context.Context, opID string, inputs []service.GrantInput) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("bulk grant aborted",
				zap.String("operation_id", opID),
				zap.Any("panic", r),
			)
			h.tracker.Fail(opID)
		}
	}()

	h.svc.GrantMany(ctx, inputs, func(i int, res service.GrantResult, err error) {
		item := progress.ItemResult{Index: i}
		if err != nil {
			item.Error = err.Error()
		} else {
			item.Ref = res.Grant.ID
			h.forward(ctx, res)
		}
		h.tracker.Record(opID, item)
	})
}

// HandleListAttendantGrants godoc
// @Summary      Grants received by an attendant
// @Tags         attendants
// @Produce      json
// @Param        attendantID  path      int  true   "Attendant ID"
// @Param        limit        query     int  false  "Maximum number of grants"
// @Success      200  {array}   domain.XpGrant
// @Failure      400  {object}  response.Err
// @Router       /attendants/{attendantID}/grants [get]
// @Security     BearerAuth
func (h *GrantHandler) HandleListAttendantGrants(ctx *gin.Context) {
	id, respErr := pathID(ctx, "attendantID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	limit, respErr := queryInt(ctx, "limit", defaultGrantsLimit)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	grants, err := h.svc.GrantsByAttendant(ctx.Request.Context(), id, limit)
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, grants)
}

// HandleGetDailyUsage godoc
// @Summary      Daily grant usage
// @Description  Usage of one granter, or of all granters without granter_id, on the given day (default today).
// @Tags         grants
// @Produce      json
// @Param        granter_id  query     int     false  "Granter ID"
// @Param        date        query     string  false  "Day, YYYY-MM-DD"
// @Success      200  {object}  domain.DailyUsage
// @Failure      400  {object}  response.Err
// @Router       /grants/usage [get]
// @Security     BearerAuth
func (h *GrantHandler) HandleGetDailyUsage(ctx *gin.Context) {
	granterID, respErr := queryID(ctx, "granter_id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	date, respErr := queryTime(ctx, "date")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	usage, err := h.svc.DailyUsage(ctx.Request.Context(), granterID, date)
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, usage)
}

// HandleGetLimits godoc
// @Summary      Grant limit configuration
// @Tags         grants
// @Produce      json
// @Success      200  {object}  domain.GrantLimitConfig
// @Router       /grant-limits [get]
// @Security     BearerAuth
func (h *GrantHandler) HandleGetLimits(ctx *gin.Context) {
	limits, err := h.svc.GetLimits(ctx.Request.Context())
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, limits)
}

// HandleUpdateLimits godoc
// @Summary      Replace the grant limit configuration
// @Tags         grants
// @Accept       json
// @Produce      json
// @Param        request  body      request.GrantLimitsRequest  true  "Limits"
// @Success      200  {object}  domain.GrantLimitConfig
// @Failure      400  {object}  response.Err
// @Router       /grant-limits [put]
// @Security     BearerAuth
func (h *GrantHandler) HandleUpdateLimits(ctx *gin.Context) {
	adminID, respErr := callerID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	var req request.GrantLimitsRequest
	if respErr := bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	limits, err := h.svc.UpdateLimits(ctx.Request.Context(), req.Config(), adminID)
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, limits)
}

// HandleListTypes godoc
// @Summary      List XP types
// @Tags         xp-types
// @Produce      json
// @Param        active_only  query     bool  false  "Only active types"
// @Success      200  {array}   domain.XpType
// @Router       /xp-types [get]
// @Security     BearerAuth
func (h *GrantHandler) HandleListTypes(ctx *gin.Context) {
	activeOnly, respErr := queryBool(ctx, "active_only")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	types, err := h.svc.ListTypes(ctx.Request.Context(), activeOnly)
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, types)
}

// HandleGetType godoc
// @Summary      Get an XP type
// @Tags         xp-types
// @Produce      json
// @Param        typeID  path      int  true  "XP type ID"
// @Success      200  {object}  domain.XpType
// @Failure      404  {object}  response.Err
// @Router       /xp-types/{typeID} [get]
// @Security     BearerAuth
func (h *GrantHandler) HandleGetType(ctx *gin.Context) {
	id, respErr := pathID(ctx, "typeID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	xpType, err := h.svc.GetType(ctx.Request.Context(), id)
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, xpType)
}

// HandleCreateType godoc
// @Summary      Create an XP type
// @Tags         xp-types
// @Accept       json
// @Produce      json
// @Param        request  body      request.XpTypeRequest  true  "XP type"
// @Success      201  {object}  domain.XpType
// @Failure      400  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /xp-types [post]
// @Security     BearerAuth
func (h *GrantHandler) HandleCreateType(ctx *gin.Context) {
	adminID, respErr := callerID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	var req request.XpTypeRequest
	if respErr := bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	xpType, err := h.svc.CreateType(ctx.Request.Context(), typeInput(req), adminID)
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusCreated, xpType)
}

// HandleUpdateType godoc
// @Summary      Update an XP type
// @Description  Existing grants keep the point value they were issued with.
// @Tags         xp-types
// @Accept       json
// @Produce      json
// @Param        typeID   path      int                    true  "XP type ID"
// @Param        request  body      request.XpTypeRequest  true  "XP type"
// @Success      200  {object}  domain.XpType
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /xp-types/{typeID} [put]
// @Security     BearerAuth
func (h *GrantHandler) HandleUpdateType(ctx *gin.Context) {
	id, respErr := pathID(ctx, "typeID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	var req request.XpTypeRequest
	if respErr := bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	xpType, err := h.svc.UpdateType(ctx.Request.Context(), id, typeInput(req))
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, xpType)
}

// HandleSetTypeActive godoc
// @Summary      Enable or disable an XP type
// @Tags         xp-types
// @Accept       json
// @Param        typeID   path      int                    true  "XP type ID"
// @Param        request  body      request.ActiveRequest  true  "Active flag"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /xp-types/{typeID}/active [patch]
// @Security     BearerAuth
func (h *GrantHandler) HandleSetTypeActive(ctx *gin.Context) {
	id, respErr := pathID(ctx, "typeID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	var req request.ActiveRequest
	if respErr := bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.SetTypeActive(ctx.Request.Context(), id, *req.Active); err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *GrantHandler) forward(ctx context.Context, res service.GrantResult) {
	notify.Forward(context.WithoutCancel(ctx), h.dispatcher, h.logger,
		notify.ForGrant(res.Grant, res.Event, res.Unlocked, res.LevelUp))
}

func grantInput(req request.GrantRequest, granterID uint) service.GrantInput {
	return service.GrantInput{
		AttendantID:   req.AttendantID,
		TypeID:        req.TypeID,
		GranterID:     granterID,
		Justification: req.Justification,
	}
}

func typeInput(req request.XpTypeRequest) service.XpTypeInput {
	return service.XpTypeInput{
		Name:        req.Name,
		Description: req.Description,
		Points:      req.Points,
		Category:    req.Category,
	}
}
