package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/progress"
)

type OperationHandler struct {
	tracker *progress.Tracker
}

func NewOperationHandler(tracker *progress.Tracker) *OperationHandler {
	return &OperationHandler{tracker: tracker}
}

// HandleGetOperation godoc
// @Summary      Poll a background operation
// @Description  Operations expire some time after their last update.
// @Tags         operations
// @Produce      json
// @Param        operationID  path      string  true  "Operation ID"
// @Success      200  {object}  progress.Status
// @Failure      404  {object}  response.Err
// @Router       /operations/{operationID} [get]
// @Security     BearerAuth
func (h *OperationHandler) HandleGetOperation(ctx *gin.Context) {
	id := ctx.Param("operationID")
	status, ok := h.tracker.Get(id)
	if !ok {
		response.RenderErr(ctx, response.ErrNotFound("operation", "id", fmt.Sprintf("%q", id)))
		return
	}

	ctx.JSON(http.StatusOK, status)
}
