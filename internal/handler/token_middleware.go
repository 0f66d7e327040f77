package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pinnacleapp/internal/db"
	"github.com/pinnacleapp/internal/service"
)

const (
	contextUserIDKey = "auth_user_id"
	contextRoleKey   = "auth_role"
)

// tokenFromHeader 从 Authorization 头提取令牌，兼容裸令牌与 Bearer 前缀。
func tokenFromHeader(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return ""
	}
	if fields := strings.Fields(header); len(fields) == 2 && strings.EqualFold(fields[0], "bearer") {
		return fields[1]
	}
	return header
}

func rejectBadToken(c *gin.Context, err error) {
	if errors.Is(err, service.ErrTokenExpired) {
		respondError(c, http.StatusForbidden, "token has expired")
	} else {
		respondError(c, http.StatusForbidden, "token is invalid")
	}
	c.Abort()
}

// OptionalAuth 解析可选令牌：未携带令牌按 guest 放行，
// 携带了格式错误或过期的令牌则直接拒绝，绝不静默降级为 guest。
func (a *API) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromHeader(c)
		if token == "" {
			c.Set(contextRoleKey, db.RoleGuest)
			c.Next()
			return
		}

		claims, err := a.tokens.Validate(token)
		if err != nil {
			rejectBadToken(c, err)
			return
		}

		c.Set(contextUserIDKey, claims.UserID)
		c.Set(contextRoleKey, claims.Role)
		c.Next()
	}
}

// RequireAuth 要求携带合法令牌，缺失与非法一律拒绝。
// 角色层面的授权由各操作自行判定。
func (a *API) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromHeader(c)
		if token == "" {
			respondError(c, http.StatusForbidden, "token is missing")
			c.Abort()
			return
		}

		claims, err := a.tokens.Validate(token)
		if err != nil {
			rejectBadToken(c, err)
			return
		}

		c.Set(contextUserIDKey, claims.UserID)
		c.Set(contextRoleKey, claims.Role)
		c.Next()
	}
}

// callerRole 返回当前请求的角色，未认证时为 guest。
func callerRole(c *gin.Context) string {
	if role, ok := c.Get(contextRoleKey); ok {
		if value, ok := role.(string); ok && value != "" {
			return value
		}
	}
	return db.RoleGuest
}
