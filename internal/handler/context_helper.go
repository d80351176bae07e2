package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/id-portal/internal/dto"
	"github.com/noah-isme/id-portal/internal/middleware"
	"github.com/noah-isme/id-portal/internal/models"
	appErrors "github.com/noah-isme/id-portal/pkg/errors"
	"github.com/noah-isme/id-portal/pkg/response"
)

func sessionFromContext(c *gin.Context) *models.Session {
	return middleware.SessionFromContext(c)
}

func noticeMeta(notice *dto.Notice) map[string]interface{} {
	if notice == nil {
		return nil
	}
	return map[string]interface{}{response.MetaNotice: notice}
}

// respondError writes err and, when it carries one, the notice the user should see.
func respondError(c *gin.Context, err error) {
	var withNotice interface{ Notice() *dto.Notice }
	if errors.As(err, &withNotice) {
		response.Error(c, err, noticeMeta(withNotice.Notice()))
		return
	}
	response.Error(c, err)
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid id"))
		return 0, false
	}
	return id, true
}

func requireSession(c *gin.Context) (*models.Session, bool) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return session, true
}

func unavailable(c *gin.Context, name string) {
	response.Error(c, appErrors.New("SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, name+" service unavailable"))
}
