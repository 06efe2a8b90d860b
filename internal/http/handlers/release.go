package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/yungbote/config-center/internal/domain"
	"github.com/yungbote/config-center/internal/http/response"
	pkgerrors "github.com/yungbote/config-center/internal/pkg/errors"
	"github.com/yungbote/config-center/internal/services"
)

type ReleaseHandler struct {
	releases services.ReleaseService
}

func NewReleaseHandler(releases services.ReleaseService) *ReleaseHandler {
	return &ReleaseHandler{releases: releases}
}

// POST /packs/:packCode/versions/:versionNo/validate
//
// An invalid pack is a 400 carrying the validator issues.
func (h *ReleaseHandler) Validate(c *gin.Context) {
	versionNo, err := versionNoParam(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	res, err := h.releases.ValidateVersion(c.Request.Context(), c.Param("packCode"), versionNo)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if !res.Valid {
		response.RespondErr(c, pkgerrors.ValidationFailed(res.Issues))
		return
	}
	response.RespondOK(c, res)
}

type releaseRequest struct {
	Environment string `json:"environment"`
	ReleasedBy  string `json:"releasedBy"`
}

// POST /packs/:packCode/versions/:versionNo/release
func (h *ReleaseHandler) Release(c *gin.Context) {
	versionNo, err := versionNoParam(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	var req releaseRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondErr(c, err)
		return
	}
	binding, err := h.releases.ReleaseVersion(c.Request.Context(), types.ReleaseRequest{
		PackCode:    c.Param("packCode"),
		VersionNo:   versionNo,
		Environment: types.Environment(req.Environment),
		ReleasedBy:  req.ReleasedBy,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, binding)
}

// GET /packs/:packCode/releases
func (h *ReleaseHandler) ListBindings(c *gin.Context) {
	bindings, err := h.releases.ListReleaseBindings(c.Request.Context(), c.Param("packCode"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if bindings == nil {
		bindings = []*types.ReleaseBinding{}
	}
	response.RespondOK(c, bindings)
}
