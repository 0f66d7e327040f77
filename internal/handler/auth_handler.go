package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pinnacleapp/internal/service"
)

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// SignIn 处理登录：校验凭据并签发会话令牌
func (a *API) SignIn(c *gin.Context) {
	var payload credentialsPayload
	if !bindJSON(c, &payload, "username and password are required") {
		return
	}

	user, err := a.users.Authenticate(payload.Username, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserInvalidInput):
			respondError(c, http.StatusBadRequest, "username and password are required")
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, http.StatusUnauthorized, "invalid username or password")
		default:
			respondError(c, http.StatusInternalServerError, "database error")
		}
		return
	}

	token, err := a.tokens.Issue(user.ID, user.Role)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to issue token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "logged in successfully",
		"user":    userView{ID: user.ID, Username: user.Username, Role: user.Role},
		"token":   token,
	})
}

// SignUp 处理注册：新账号固定为普通用户角色
func (a *API) SignUp(c *gin.Context) {
	var payload credentialsPayload
	if !bindJSON(c, &payload, "username and password are required") {
		return
	}

	user, err := a.users.Register(payload.Username, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserInvalidInput):
			respondError(c, http.StatusBadRequest, "username and password are required")
		case errors.Is(err, service.ErrUserExists):
			respondError(c, http.StatusConflict, "user already exists")
		default:
			respondError(c, http.StatusInternalServerError, "database error")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "user successfully registered",
		"user":    userView{ID: user.ID, Username: user.Username, Role: user.Role},
	})
}
