package v1

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/api/middleware"
)

func pathID(ctx *gin.Context, name string) (uint, *response.Err) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %s %q", name, ctx.Param(name)))
	}
	return uint(id), nil
}

func queryID(ctx *gin.Context, name string) (*uint, *response.Err) {
	raw, ok := ctx.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, response.ErrBadRequest(fmt.Errorf("invalid %s %q", name, raw))
	}
	v := uint(id)
	return &v, nil
}

func queryInt(ctx *gin.Context, name string, def int) (int, *response.Err) {
	raw, ok := ctx.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %s %q", name, raw))
	}
	return n, nil
}

func queryBool(ctx *gin.Context, name string) (bool, *response.Err) {
	raw, ok := ctx.GetQuery(name)
	if !ok || raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, response.ErrBadRequest(fmt.Errorf("invalid %s %q", name, raw))
	}
	return b, nil
}

// queryTime accepts RFC 3339 timestamps and plain dates.
func queryTime(ctx *gin.Context, name string) (*time.Time, *response.Err) {
	raw, ok := ctx.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, response.ErrBadRequest(fmt.Errorf("invalid %s %q", name, raw))
}

func callerID(ctx *gin.Context) (uint, *response.Err) {
	id, ok := middleware.CallerID(ctx)
	if !ok {
		return 0, response.ErrInvalidToken(fmt.Errorf("no authenticated caller"))
	}
	return id, nil
}

// bindJSON binds and validates the request body.
func bindJSON(ctx *gin.Context, req interface{ Validate() error }) *response.Err {
	if err := ctx.ShouldBindJSON(req); err != nil {
		return response.ErrBadRequest(err)
	}
	if err := req.Validate(); err != nil {
		return response.ErrBadRequest(err)
	}
	return nil
}
