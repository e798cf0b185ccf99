package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bookstore/internal/models/request_models"
	"bookstore/pkg/freedompay"
	"bookstore/pkg/utils"
)

// currentUserID reads the caller set by JWTAuthMiddleware and writes a 401
// when it is missing.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "user_id is required")
		return uuid.Nil, false
	}
	return id, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func isAdmin(c *gin.Context) bool {
	return c.GetString("Role") == utils.RoleAdmin
}

// callbackParams flattens the query string and form body of a gateway
// callback. Body values win over query values with the same key.
func callbackParams(c *gin.Context) request_models.GatewayCallback {
	params := request_models.GatewayCallback{}
	if err := c.Request.ParseForm(); err != nil {
		zap.L().Warn("callback form parse failed", zap.Error(err), zap.String("trace_id", c.GetString("trace_id")))
	}
	for k, v := range c.Request.Form {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params
}

// writeReply answers a gateway callback. The gateway reads the XML status,
// so the HTTP status is always 200.
func writeReply(c *gin.Context, reply *freedompay.Reply) {
	body, err := reply.Marshal()
	if err != nil {
		zap.L().Error("marshal callback reply", zap.Error(err))
		body = []byte("<response><pg_status>error</pg_status></response>")
	}
	c.Data(http.StatusOK, freedompay.ContentType, body)
}
