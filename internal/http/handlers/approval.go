package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/yungbote/config-center/internal/domain"
	"github.com/yungbote/config-center/internal/http/response"
	"github.com/yungbote/config-center/internal/services"
)

type ApprovalHandler struct {
	approvals services.ApprovalService
	audit     services.AuditService
}

func NewApprovalHandler(approvals services.ApprovalService, audit services.AuditService) *ApprovalHandler {
	return &ApprovalHandler{approvals: approvals, audit: audit}
}

type createApprovalRequest struct {
	Stage    string `json:"stage"`
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
	Reviewer string `json:"reviewer"`
}

// POST /packs/:packCode/versions/:versionNo/approvals
func (h *ApprovalHandler) CreateApproval(c *gin.Context) {
	versionNo, err := versionNoParam(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	var req createApprovalRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondErr(c, err)
		return
	}
	rec, err := h.approvals.CreateApproval(c.Request.Context(), types.NewApproval{
		PackCode:  c.Param("packCode"),
		VersionNo: versionNo,
		Stage:     types.Stage(req.Stage),
		Decision:  types.Decision(req.Decision),
		Comment:   req.Comment,
		Reviewer:  req.Reviewer,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, rec)
}

// GET /packs/:packCode/versions/:versionNo/approvals
func (h *ApprovalHandler) ListApprovals(c *gin.Context) {
	versionNo, err := versionNoParam(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	records, err := h.approvals.ListApprovals(c.Request.Context(), c.Param("packCode"), versionNo)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if records == nil {
		records = []*types.ApprovalRecord{}
	}
	response.RespondOK(c, records)
}

// GET /audit-logs
func (h *ApprovalHandler) ListAuditLogs(c *gin.Context) {
	records, err := h.audit.List(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if records == nil {
		records = []*types.AuditLogRecord{}
	}
	response.RespondOK(c, records)
}
