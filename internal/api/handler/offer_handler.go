package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"school-link/internal/dto"
	"school-link/internal/service"
	pkgerrors "school-link/pkg/errors"
	"school-link/pkg/response"
)

// OfferHandler 市场需求模块 HTTP 处理器
type OfferHandler struct {
	offerSvc service.OfferService
}

// NewOfferHandler 创建 OfferHandler
func NewOfferHandler(offerSvc service.OfferService) *OfferHandler {
	return &OfferHandler{offerSvc: offerSvc}
}

// CreateOffer 校方发布需求
// POST /api/v1/offers
func (h *OfferHandler) CreateOffer(c *gin.Context) {
	var req dto.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	offer, err := h.offerSvc.Create(c.Request.Context(), callerID, &req)
	if err != nil {
		h.handleOfferError(c, err)
		return
	}

	response.Created(c, offer)
}

// GetOffer 查询单条需求
// GET /api/v1/offers/:id
func (h *OfferHandler) GetOffer(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "需求ID不能为空")
		return
	}

	offer, err := h.offerSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleOfferError(c, err)
		return
	}

	response.OK(c, offer)
}

// ListOffers 需求列表
// GET /api/v1/offers?status=available&search=xxx&mine=true
func (h *OfferHandler) ListOffers(c *gin.Context) {
	callerID, role, ok := MustGetActor(c)
	if !ok {
		return
	}

	mineOnly, _ := strconv.ParseBool(c.DefaultQuery("mine", "false"))

	offers, err := h.offerSvc.List(c.Request.Context(), callerID, role, c.Query("status"), c.Query("search"), mineOnly)
	if err != nil {
		h.handleOfferError(c, err)
		return
	}

	response.OK(c, gin.H{"list": offers})
}

// ExpressInterest 教师报名意向
// POST /api/v1/offers/:id/interest
func (h *OfferHandler) ExpressInterest(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "需求ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	offer, err := h.offerSvc.ExpressInterest(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleOfferError(c, err)
		return
	}

	response.OK(c, offer)
}

// WithdrawInterest 教师撤销意向
// DELETE /api/v1/offers/:id/interest
func (h *OfferHandler) WithdrawInterest(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "需求ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	offer, err := h.offerSvc.WithdrawInterest(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleOfferError(c, err)
		return
	}

	response.OK(c, offer)
}

// AssignOffer 校方从意向集中指派教师
// PUT /api/v1/offers/:id/assign
func (h *OfferHandler) AssignOffer(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "需求ID不能为空")
		return
	}

	var req dto.AssignOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	offer, err := h.offerSvc.Assign(c.Request.Context(), id, callerID, req.TeacherID)
	if err != nil {
		h.handleOfferError(c, err)
		return
	}

	response.OK(c, offer)
}

// MarkOfferTaken 校方直接标记成交
// PUT /api/v1/offers/:id/taken
func (h *OfferHandler) MarkOfferTaken(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "需求ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	offer, err := h.offerSvc.MarkTaken(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleOfferError(c, err)
		return
	}

	response.OK(c, offer)
}

// handleOfferError 统一处理市场需求模块业务错误
func (h *OfferHandler) handleOfferError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOfferNotFound):
		response.NotFound(c, 14001, "市场需求不存在")
	case errors.Is(err, service.ErrDateFormat):
		response.BadRequest(c, 14002, "日期格式不正确")
	case errors.Is(err, service.ErrTeacherNotInterested):
		response.BadRequest(c, 14003, "该教师未报名此需求")
	case errors.Is(err, service.ErrAlreadyResolved):
		response.Conflict(c, 14004, "需求已终结，不可再变更")
	case errors.Is(err, service.ErrDirectTakeBlocked):
		response.Conflict(c, 14005, "已有教师报名，请通过指派完成成交")
	case errors.Is(err, service.ErrInvalidTransition):
		response.Conflict(c, 14006, "当前状态或角色不允许该操作")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 14007, "需求已被其他操作终结，请刷新")
	default:
		response.InternalError(c)
	}
}
