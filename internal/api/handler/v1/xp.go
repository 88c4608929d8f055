package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/api/handler/v1/request"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/notify"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/service"
)

const defaultEventsLimit = 50

type XpService interface {
	RecordXP(ctx context.Context, in service.RecordInput) (service.RecordResult, error)
	RecordEvaluationXP(ctx context.Context, evaluationID uint) (service.RecordResult, error)
	Compensate(ctx context.Context, eventID uint, reason string) (service.RecordResult, error)
	Summary(ctx context.Context, attendantID uint) (domain.XpSummary, error)
	Events(ctx context.Context, attendantID uint, q service.EventsQuery) ([]domain.XpEvent, error)
}

type XpHandler struct {
	svc        XpService
	dispatcher notify.Dispatcher
	logger     *zap.Logger
}

func NewXpHandler(svc XpService, dispatcher notify.Dispatcher, logger *zap.Logger) *XpHandler {
	return &XpHandler{
		svc:        svc,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// HandleRecordXP godoc
// @Summary      Record an XP event
// @Description  Appends an event scaled by the active season's multiplier and evaluates achievements.
// @Tags         xp
// @Accept       json
// @Produce      json
// @Param        request  body      request.RecordXPRequest  true  "Event"
// @Success      201  {object}  service.RecordResult
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Failure      503  {object}  response.Err
// @Router       /xp/events [post]
// @Security     BearerAuth
func (h *XpHandler) HandleRecordXP(ctx *gin.Context) {
	var req request.RecordXPRequest
	if respErr := bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	res, err := h.svc.RecordXP(ctx.Request.Context(), service.RecordInput{
		AttendantID: req.AttendantID,
		Points:      req.Points,
		Reason:      req.Reason,
		Type:        domain.XpEventType(req.Type),
		RelatedID:   req.RelatedID,
	})
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	h.forward(ctx, res)
	ctx.JSON(http.StatusCreated, res)
}

// HandleRecordEvaluationXP godoc
// @Summary      Credit XP for an evaluation
// @Description  Converts the evaluation's star rating into XP. An evaluation is credited once.
// @Tags         xp
// @Produce      json
// @Param        evaluationID  path      int  true  "Evaluation ID"
// @Success      201  {object}  service.RecordResult
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Router       /xp/evaluations/{evaluationID} [post]
// @Security     BearerAuth
func (h *XpHandler) HandleRecordEvaluationXP(ctx *gin.Context) {
	id, respErr := pathID(ctx, "evaluationID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	res, err := h.svc.RecordEvaluationXP(ctx.Request.Context(), id)
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	h.forward(ctx, res)
	ctx.JSON(http.StatusCreated, res)
}

// HandleCompensate godoc
// @Summary      Compensate an XP event
// @Description  Appends an adjustment cancelling the event's final points. Events are never edited.
// @Tags         xp
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                        true  "Event ID"
// @Param        request  body      request.CompensateRequest  true  "Reason"
// @Success      201  {object}  service.RecordResult
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /xp/events/{eventID}/compensate [post]
// @Security     BearerAuth
func (h *XpHandler) HandleCompensate(ctx *gin.Context) {
	id, respErr := pathID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	var req request.CompensateRequest
	if respErr := bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	res, err := h.svc.Compensate(ctx.Request.Context(), id, req.Reason)
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	h.forward(ctx, res)
	ctx.JSON(http.StatusCreated, res)
}

// HandleGetSummary godoc
// @Summary      XP summary of an attendant
// @Tags         attendants
// @Produce      json
// @Param        attendantID  path      int  true  "Attendant ID"
// @Success      200  {object}  domain.XpSummary
// @Failure      404  {object}  response.Err
// @Router       /attendants/{attendantID}/xp [get]
// @Security     BearerAuth
func (h *XpHandler) HandleGetSummary(ctx *gin.Context) {
	id, respErr := pathID(ctx, "attendantID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	summary, err := h.svc.Summary(ctx.Request.Context(), id)
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

// HandleListEvents godoc
// @Summary      Ledger events of an attendant
// @Tags         attendants
// @Produce      json
// @Param        attendantID  path      int     true   "Attendant ID"
// @Param        season_id    query     int     false  "Season ID"
// @Param        type         query     string  false  "Event type"
// @Param        from         query     string  false  "Lower bound, RFC 3339 or YYYY-MM-DD"
// @Param        to           query     string  false  "Upper bound, RFC 3339 or YYYY-MM-DD"
// @Param        limit        query     int     false  "Page size"
// @Param        offset       query     int     false  "Offset"
// @Success      200  {array}   domain.XpEvent
// @Failure      400  {object}  response.Err
// @Router       /attendants/{attendantID}/events [get]
// @Security     BearerAuth
func (h *XpHandler) HandleListEvents(ctx *gin.Context) {
	id, respErr := pathID(ctx, "attendantID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	q, respErr := eventsQuery(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	events, err := h.svc.Events(ctx.Request.Context(), id, q)
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

func (h *XpHandler) forward(ctx *gin.Context, res service.RecordResult) {
	notify.Forward(context.WithoutCancel(ctx.Request.Context()), h.dispatcher, h.logger,
		notify.ForEvent(res.Event, res.Unlocked, res.LevelUp))
}

func eventsQuery(ctx *gin.Context) (service.EventsQuery, *response.Err) {
	var (
		q       service.EventsQuery
		respErr *response.Err
	)

	if q.SeasonID, respErr = queryID(ctx, "season_id"); respErr != nil {
		return q, respErr
	}
	if q.From, respErr = queryTime(ctx, "from"); respErr != nil {
		return q, respErr
	}
	if q.To, respErr = queryTime(ctx, "to"); respErr != nil {
		return q, respErr
	}
	if q.Limit, respErr = queryInt(ctx, "limit", defaultEventsLimit); respErr != nil {
		return q, respErr
	}
	if q.Offset, respErr = queryInt(ctx, "offset", 0); respErr != nil {
		return q, respErr
	}

	if t := ctx.Query("type"); t != "" {
		q.Type = domain.XpEventType(t)
		if !q.Type.Valid() {
			return q, response.ErrBadRequest(domain.NewValidationError("type", "unknown event type"))
		}
	}

	return q, nil
}
