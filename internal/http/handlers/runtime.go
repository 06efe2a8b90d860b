package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/yungbote/config-center/internal/domain"
	"github.com/yungbote/config-center/internal/http/response"
	"github.com/yungbote/config-center/internal/services"
)

type RuntimeHandler struct {
	runtime services.RuntimeService
}

func NewRuntimeHandler(runtime services.RuntimeService) *RuntimeHandler {
	return &RuntimeHandler{runtime: runtime}
}

// GET /runtime/packs/:businessLine?env=prod
func (h *RuntimeHandler) GetActive(c *gin.Context) {
	env := types.Environment(c.Query("env"))
	active, err := h.runtime.ResolveActive(c.Request.Context(), c.Param("businessLine"), env)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, active)
}

// GET /runtime/packs/:businessLine/:versionNo
func (h *RuntimeHandler) GetVersion(c *gin.Context) {
	versionNo, err := versionNoParam(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	v, err := h.runtime.ResolveVersion(c.Request.Context(), c.Param("businessLine"), versionNo)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, v)
}
