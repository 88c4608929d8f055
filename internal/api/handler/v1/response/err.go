package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
)

// Err is the JSON body of every failed request.
type Err struct {
	HTTPStatusCode int `json:"-"`

	StatusText string `json:"status"`
	ErrorText  string `json:"error,omitempty"`
	Field      string `json:"field,omitempty"`
	Rule       string `json:"rule,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

func (e *Err) Error() string {
	return e.ErrorText
}

func RenderErr(ctx *gin.Context, e *Err) {
	ctx.JSON(e.HTTPStatusCode, e)
}

func newErr(status int, err error) *Err {
	e := &Err{
		HTTPStatusCode: status,
		StatusText:     http.StatusText(status),
	}
	if err != nil {
		e.ErrorText = err.Error()
	}
	return e
}

func ErrBadRequest(err error) *Err {
	return newErr(http.StatusBadRequest, err)
}

func ErrInvalidToken(err error) *Err {
	return newErr(http.StatusUnauthorized, err)
}

func ErrPermissionDenied(err error) *Err {
	return newErr(http.StatusForbidden, err)
}

func ErrNotFound(entity, key string, value any) *Err {
	return newErr(http.StatusNotFound, fmt.Errorf("%s with %s %v not found", entity, key, value))
}

func ErrConflict(err error) *Err {
	return newErr(http.StatusConflict, err)
}

func ErrUnprocessable(err error) *Err {
	return newErr(http.StatusUnprocessableEntity, err)
}

func ErrTooManyRequests(err error) *Err {
	return newErr(http.StatusTooManyRequests, err)
}

func ErrServiceUnavailable(err error) *Err {
	zap.L().Warn("storage unavailable", zap.Error(err))
	return newErr(http.StatusServiceUnavailable, errors.New("storage temporarily unavailable, retry later"))
}

// ErrInternalServerError logs err and hides it from the client.
func ErrInternalServerError(err error) *Err {
	zap.L().Error("internal server error", zap.Error(err))
	return newErr(http.StatusInternalServerError, errors.New("internal server error"))
}

// FromError maps a service error onto its HTTP rendering.
func FromError(err error) *Err {
	var (
		validationErr *domain.ValidationError
		limitErr      *domain.LimitExceededError
		conflictErr   *domain.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		e := ErrBadRequest(err)
		e.Field = validationErr.Field
		return e
	case errors.As(err, &limitErr):
		e := ErrTooManyRequests(err)
		e.Rule = limitErr.Rule
		return e
	case errors.Is(err, domain.ErrNotFound):
		return newErr(http.StatusNotFound, err)
	case errors.As(err, &conflictErr):
		e := ErrConflict(err)
		e.Reason = conflictErr.Reason
		return e
	case errors.Is(err, domain.ErrNoActiveSeason):
		return ErrUnprocessable(err)
	case errors.Is(err, domain.ErrStorage):
		return ErrServiceUnavailable(err)
	default:
		return ErrInternalServerError(err)
	}
}
