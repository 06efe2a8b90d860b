package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/config-center/internal/domain"
	"github.com/yungbote/config-center/internal/http/response"
	"github.com/yungbote/config-center/internal/platform/apierr"
	"github.com/yungbote/config-center/internal/services"
)

type PackHandler struct {
	packs services.PackService
}

func NewPackHandler(packs services.PackService) *PackHandler {
	return &PackHandler{packs: packs}
}

type createPackRequest struct {
	PackCode string `json:"packCode"`
	Name     string `json:"name"`
}

// POST /packs
func (h *PackHandler) CreatePack(c *gin.Context) {
	var req createPackRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondErr(c, err)
		return
	}
	pack, err := h.packs.CreatePack(c.Request.Context(), types.NewPack{PackCode: req.PackCode, Name: req.Name})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, pack)
}

// GET /packs/:packCode
func (h *PackHandler) GetPack(c *gin.Context) {
	pack, err := h.packs.GetPack(c.Request.Context(), c.Param("packCode"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if pack == nil {
		response.RespondError(c, http.StatusNotFound, "pack_not_found", errors.New("pack not found"))
		return
	}
	response.RespondOK(c, pack)
}

type createVersionRequest struct {
	SchemaVersion string          `json:"schemaVersion"`
	ChangeNote    string          `json:"changeNote"`
	CreatedBy     string          `json:"createdBy"`
	ContentJSON   json.RawMessage `json:"contentJson"`
}

// POST /packs/:packCode/versions
func (h *PackHandler) CreateVersion(c *gin.Context) {
	var req createVersionRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondErr(c, err)
		return
	}
	v, err := h.packs.CreatePackVersion(c.Request.Context(), types.NewPackVersion{
		PackCode:      c.Param("packCode"),
		SchemaVersion: req.SchemaVersion,
		ChangeNote:    req.ChangeNote,
		CreatedBy:     req.CreatedBy,
		ContentJSON:   req.ContentJSON,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, v)
}

// GET /packs/:packCode/versions
func (h *PackHandler) ListVersions(c *gin.Context) {
	versions, err := h.packs.ListPackVersions(c.Request.Context(), c.Param("packCode"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if versions == nil {
		versions = []*types.PackVersion{}
	}
	response.RespondOK(c, versions)
}

// GET /packs/:packCode/versions/:versionNo
func (h *PackHandler) GetVersion(c *gin.Context) {
	versionNo, err := versionNoParam(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	v, err := h.packs.GetPackVersion(c.Request.Context(), c.Param("packCode"), versionNo)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if v == nil {
		response.RespondError(c, http.StatusNotFound, "version_not_found", errors.New("version not found"))
		return
	}
	response.RespondOK(c, v)
}

type submitRequest struct {
	SubmittedBy string `json:"submittedBy"`
}

// POST /packs/:packCode/versions/:versionNo/submit
func (h *PackHandler) Submit(c *gin.Context) {
	versionNo, err := versionNoParam(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	var req submitRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondErr(c, err)
		return
	}
	sub, err := h.packs.SubmitPackVersion(c.Request.Context(), c.Param("packCode"), versionNo, req.SubmittedBy)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, sub)
}

// GET /packs/:packCode/versions/:versionNo/submission
func (h *PackHandler) GetSubmission(c *gin.Context) {
	versionNo, err := versionNoParam(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	sub, err := h.packs.GetSubmission(c.Request.Context(), c.Param("packCode"), versionNo)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if sub == nil {
		response.RespondErr(c, apierr.New(http.StatusNotFound, "submission_not_found", errors.New("submission not found")))
		return
	}
	response.RespondOK(c, sub)
}
