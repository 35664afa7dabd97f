package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/hertz-contrib/cors"

	"ballot-box/pkg/common/config"
	"ballot-box/pkg/core/voting"
)

// Logger records one structured line per request.
func Logger() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)
		latency := time.Since(start)

		hlog.CtxTracef(c, "| %3d | %13v | %15s | %-7s | %s",
			ctx.Response.StatusCode(),
			latency,
			ctx.ClientIP(),
			ctx.Method(),
			ctx.Path(),
		)
	}
}

// Recovery turns panics into 500 responses. Production hides the detail.
func Recovery(cfg *config.Config) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				stack := string(debug.Stack())
				hlog.CtxErrorf(c, "[PANIC RECOVERED] %v\n%s", err, stack)

				if cfg.IsProd() {
					ctx.AbortWithStatusJSON(500, utils.H{
						"error": "internal server error",
					})
				} else {
					ctx.AbortWithStatusJSON(500, utils.H{
						"error": fmt.Sprintf("%v", err),
						"stack": strings.Split(stack, "\n"),
					})
				}
			}
		}()
		ctx.Next(c)
	}
}

// CORS applies the configured cross-origin policy.
func CORS(corsConfig config.CORSConfig) app.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     corsConfig.AllowOrigins,
		AllowMethods:     corsConfig.AllowMethods,
		AllowHeaders:     corsConfig.AllowHeaders,
		AllowCredentials: corsConfig.AllowCredentials,
		MaxAge:           corsConfig.MaxAge,
	})
}

const bearerPrefix = "bearer "

// AuthContext resolves the bearer token, if any, into a current-user identity
// before any resolver runs. A missing header is not an error; some operations
// are anonymous. A token that fails verification rejects the whole request.
func AuthContext(svc *voting.Service) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		header := string(ctx.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), bearerPrefix) {
			ctx.Next(c)
			return
		}

		token := strings.TrimSpace(header[len(bearerPrefix):])
		user, err := svc.ResolveToken(c, token)
		if err != nil {
			hlog.CtxWarnf(c, "rejected bearer token: %v", err)
			ctx.AbortWithStatusJSON(401, utils.H{
				"error": "invalid authentication token",
			})
			return
		}

		ctx.Next(voting.WithCurrentUser(c, user))
	}
}
