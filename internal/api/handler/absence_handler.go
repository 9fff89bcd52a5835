package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"school-link/internal/dto"
	"school-link/internal/service"
	pkgerrors "school-link/pkg/errors"
	"school-link/pkg/response"
)

// AbsenceHandler 缺课报告模块 HTTP 处理器
type AbsenceHandler struct {
	absenceSvc service.AbsenceService
}

// NewAbsenceHandler 创建 AbsenceHandler
func NewAbsenceHandler(absenceSvc service.AbsenceService) *AbsenceHandler {
	return &AbsenceHandler{absenceSvc: absenceSvc}
}

// SubmitAbsence 教师提交缺课报告
// POST /api/v1/absences
func (h *AbsenceHandler) SubmitAbsence(c *gin.Context) {
	var req dto.SubmitAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	report, err := h.absenceSvc.Submit(c.Request.Context(), callerID, &req)
	if err != nil {
		h.handleAbsenceError(c, err)
		return
	}

	response.Created(c, report)
}

// GetAbsence 查询单条报告
// GET /api/v1/absences/:id
func (h *AbsenceHandler) GetAbsence(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "报告ID不能为空")
		return
	}

	callerID, role, ok := MustGetActor(c)
	if !ok {
		return
	}

	report, err := h.absenceSvc.GetByID(c.Request.Context(), id, callerID, role)
	if err != nil {
		h.handleAbsenceError(c, err)
		return
	}

	response.OK(c, report)
}

// ListAbsences 报告列表（按角色过滤）
// GET /api/v1/absences?status=pending&search=xxx
func (h *AbsenceHandler) ListAbsences(c *gin.Context) {
	callerID, role, ok := MustGetActor(c)
	if !ok {
		return
	}

	reports, err := h.absenceSvc.List(c.Request.Context(), callerID, role, c.Query("status"), c.Query("search"))
	if err != nil {
		h.handleAbsenceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": reports})
}

// ApproveAbsence 校方批准报告
// PUT /api/v1/absences/:id/approve
func (h *AbsenceHandler) ApproveAbsence(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "报告ID不能为空")
		return
	}

	callerID, role, ok := MustGetActor(c)
	if !ok {
		return
	}

	report, err := h.absenceSvc.Approve(c.Request.Context(), id, callerID, role)
	if err != nil {
		h.handleAbsenceError(c, err)
		return
	}

	response.OK(c, report)
}

// RejectAbsence 校方驳回报告
// PUT /api/v1/absences/:id/reject
func (h *AbsenceHandler) RejectAbsence(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "报告ID不能为空")
		return
	}

	var req dto.RejectAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, role, ok := MustGetActor(c)
	if !ok {
		return
	}

	report, err := h.absenceSvc.Reject(c.Request.Context(), id, callerID, role, req.Reason)
	if err != nil {
		h.handleAbsenceError(c, err)
		return
	}

	response.OK(c, report)
}

// handleAbsenceError 统一处理缺课报告模块业务错误
func (h *AbsenceHandler) handleAbsenceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReportNotFound):
		response.NotFound(c, 13001, "缺课报告不存在")
	case errors.Is(err, service.ErrStudentNotFound):
		response.BadRequest(c, 13002, "学生不存在")
	case errors.Is(err, service.ErrDateFormat):
		response.BadRequest(c, 13003, "日期格式不正确")
	case errors.Is(err, service.ErrMakeupBeforeAbsence):
		response.BadRequest(c, 13004, "补课时间不能早于缺课时间")
	case errors.Is(err, service.ErrRejectReasonRequired):
		response.BadRequest(c, 13005, "驳回必须填写理由")
	case errors.Is(err, service.ErrInvalidTransition):
		response.Conflict(c, 13006, "当前状态或角色不允许该操作")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 13007, "报告已被其他操作审批，请刷新")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, 10003, "无权限访问")
	default:
		response.InternalError(c)
	}
}
