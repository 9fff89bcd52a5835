package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"school-link/internal/service"
	"school-link/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportAbsences 导出缺课报告表
// GET /api/v1/export/absences?status=approved
func (h *ExportHandler) ExportAbsences(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportAbsenceReports(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	h.writeFile(c, filename, buf.Bytes())
}

// ExportOffers 导出市场需求表
// GET /api/v1/export/offers?status=taken
func (h *ExportHandler) ExportOffers(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportOffers(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	h.writeFile(c, filename, buf.Bytes())
}

// writeFile 设置下载响应头并写出文件内容
func (h *ExportHandler) writeFile(c *gin.Context, filename string, data []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", xlsxContentType)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoData):
		response.NotFound(c, 16001, "没有可导出的数据")
	default:
		response.InternalError(c)
	}
}
