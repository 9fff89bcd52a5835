package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"school-link/internal/service"
	"school-link/pkg/response"
)

// QueryHandler 查询/统计模块 HTTP 处理器
type QueryHandler struct {
	querySvc service.QueryService
}

// NewQueryHandler 创建 QueryHandler
func NewQueryHandler(querySvc service.QueryService) *QueryHandler {
	return &QueryHandler{querySvc: querySvc}
}

// GetStatusCounts 校方仪表盘状态计数
// GET /api/v1/dashboard/status-counts
func (h *QueryHandler) GetStatusCounts(c *gin.Context) {
	counts, err := h.querySvc.StatusCounts(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, counts)
}

// Search 跨实体关键字检索
// GET /api/v1/search?q=xxx
func (h *QueryHandler) Search(c *gin.Context) {
	callerID, role, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.querySvc.Search(c.Request.Context(), callerID, role, c.Query("q"))
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			response.Forbidden(c, 10003, "无权限访问")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
