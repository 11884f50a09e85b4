package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emr-platform/emr-api/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
	log  *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.log.Error("login failed", zap.String("username", req.Username), zap.Error(err))
		respondServiceError(c, err)
		return
	}

	if !res.Success {
		message := res.Message
		if message == "" {
			message = "Invalid username or password"
		}
		respondMessage(c, http.StatusUnauthorized, message)
		return
	}

	c.JSON(http.StatusOK, res)
}
