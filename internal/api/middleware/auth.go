package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/pkg/jwthelper"
)

// CallerIDKey holds the authenticated user id in the gin context.
const CallerIDKey = "userID"

type Authenticator struct {
	signingKey []byte
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{signingKey: []byte(signingKey)}
}

func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			response.RenderErr(ctx, response.ErrInvalidToken(errors.New("missing bearer token")))
			ctx.Abort()
			return
		}

		claims, err := jwthelper.ParseToken(a.signingKey, tokenString)
		if err != nil {
			response.RenderErr(ctx, response.ErrInvalidToken(err))
			ctx.Abort()
			return
		}
		if claims.UserAgent != "" && claims.UserAgent != ctx.Request.UserAgent() {
			response.RenderErr(ctx, response.ErrInvalidToken(errors.New("user agent mismatch")))
			ctx.Abort()
			return
		}

		ctx.Set(CallerIDKey, claims.UserID)
		ctx.Next()
	}
}

// CallerID returns the id set by VerifyJWT.
func CallerID(ctx *gin.Context) (uint, bool) {
	id, ok := ctx.Get(CallerIDKey)
	if !ok {
		return 0, false
	}
	uid, ok := id.(uint)
	return uid, ok && uid != 0
}
