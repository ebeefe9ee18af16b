package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kita-portal/kita-api/internal/middleware"
	"github.com/kita-portal/kita-api/internal/models"
	appErrors "github.com/kita-portal/kita-api/pkg/errors"
	"github.com/kita-portal/kita-api/pkg/response"
)

// idRequest carries the row id of edit and delete form actions.
type idRequest struct {
	ID string `form:"id" json:"id"`
}

func actorFromContext(c *gin.Context) models.Actor {
	actor := models.Actor{IPAddress: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	if session := middleware.SessionFrom(c); session != nil {
		actor.UserID = session.User.ID
	}
	return actor
}

// bindPayload decodes a form post or JSON body into req. Multiple binds of one request are only
// safe for forms, so every action binds exactly once.
func bindPayload(c *gin.Context, req interface{}, entity string) bool {
	if err := c.ShouldBind(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+entity+" payload"))
		return false
	}
	return true
}

// requireID rejects edit and delete actions without an id.
func requireID(c *gin.Context, id string) bool {
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id is required").WithDetails(map[string]string{"id": "id ist ein Pflichtfeld"}))
		return false
	}
	return true
}

// success answers a form action and exposes the touched id to the audit trail.
func success(c *gin.Context, status int, id string, data interface{}) {
	if id != "" {
		middleware.SetResourceID(c, id)
	}
	response.JSON(c, status, data, nil)
}
