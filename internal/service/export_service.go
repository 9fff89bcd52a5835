package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"school-link/internal/model"
	"school-link/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoData       = errors.New("没有可导出的数据")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 报表导出服务接口（仅校方）。
// 返回 xlsx 文件内容、建议文件名
type ExportService interface {
	ExportAbsenceReports(ctx context.Context, status string) (*bytes.Buffer, string, error)
	ExportOffers(ctx context.Context, status string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建导出服务
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ────────────── ExportAbsenceReports ──────────────

// ExportAbsenceReports 导出缺课报告明细表
func (s *exportService) ExportAbsenceReports(ctx context.Context, status string) (*bytes.Buffer, string, error) {
	reports, err := s.repo.AbsenceReport.List(ctx, repository.AbsenceFilter{Status: status})
	if err != nil {
		return nil, "", err
	}
	if len(reports) == 0 {
		return nil, "", ErrExportNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	f.SetSheetName(sheet, "缺课报告")

	headers := []string{"学生", "班级", "教师", "缺课日期", "缺课原因", "补课时间", "补课时长(分)", "补课状态", "科目", "地点", "审批状态", "驳回理由", "提交时间"}
	if err := s.writeSheet(f, "缺课报告", headers, func(row int) []interface{} {
		r := &reports[row]
		studentName, className, teacherName := "", "", ""
		if r.Student != nil {
			studentName, className = r.Student.Name, r.Student.ClassName
		}
		if r.Teacher != nil {
			teacherName = r.Teacher.Name
		}
		return []interface{}{
			studentName,
			className,
			teacherName,
			r.AbsenceDate.Format("2006-01-02"),
			r.Reason,
			r.MakeupDate.Format("2006-01-02 15:04"),
			r.MakeupMinutes,
			statusLabel(r.MakeupStatus),
			strings.Join(r.Subjects, "、"),
			r.Location,
			statusLabel(r.Status),
			r.RejectReason,
			r.SubmittedAt.Format("2006-01-02 15:04"),
		}
	}, len(reports)); err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("缺课报告导出失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("缺课报告_%s.xlsx", time.Now().Format("20060102"))
	s.logger.Info("缺课报告已导出", zap.Int("rows", len(reports)))
	return buf, filename, nil
}

// ────────────── ExportOffers ──────────────

// ExportOffers 导出市场需求明细表（含派生薪酬与报名人数）
func (s *exportService) ExportOffers(ctx context.Context, status string) (*bytes.Buffer, string, error) {
	offers, err := s.repo.MarketOffer.List(ctx, repository.OfferFilter{Status: status})
	if err != nil {
		return nil, "", err
	}
	if len(offers) == 0 {
		return nil, "", ErrExportNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "市场需求")

	headers := []string{"标题", "科目", "班级", "学生数", "每周次数", "每次时长(时)", "时薪", "周薪", "月薪", "开课日期", "状态", "报名人数", "成交时间"}
	if err := s.writeSheet(f, "市场需求", headers, func(row int) []interface{} {
		o := &offers[row]
		resolvedAt := ""
		if o.ResolvedAt != nil {
			resolvedAt = o.ResolvedAt.Format("2006-01-02 15:04")
		}
		return []interface{}{
			o.Title,
			strings.Join(o.Subjects, "、"),
			strings.Join(o.TargetClasses, "、"),
			o.StudentCount,
			o.SessionsPerWeek,
			o.HoursPerSession,
			o.HourlyRate,
			o.WeeklyPay(),
			o.MonthlyPay(),
			o.StartDate.Format("2006-01-02"),
			statusLabel(o.Status),
			len(o.Interests),
			resolvedAt,
		}
	}, len(offers)); err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("市场需求导出失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("市场需求_%s.xlsx", time.Now().Format("20060102"))
	s.logger.Info("市场需求已导出", zap.Int("rows", len(offers)))
	return buf, filename, nil
}

// ────────────── 内部辅助 ──────────────

// writeSheet 写入表头样式与数据行
func (s *exportService) writeSheet(f *excelize.File, sheet string, headers []string, rowValues func(row int) []interface{}, rowCount int) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return ErrExportGenerateFail
	}

	for i, h := range headers {
		if err := f.SetCellValue(sheet, cell(i, 1), h); err != nil {
			return ErrExportGenerateFail
		}
	}
	if err := f.SetCellStyle(sheet, cell(0, 1), cell(len(headers)-1, 1), headerStyle); err != nil {
		return ErrExportGenerateFail
	}
	if err := f.SetColWidth(sheet, "A", colName(len(headers)-1), 16); err != nil {
		return ErrExportGenerateFail
	}

	for row := 0; row < rowCount; row++ {
		for col, v := range rowValues(row) {
			if err := f.SetCellValue(sheet, cell(col, row+2), v); err != nil {
				return ErrExportGenerateFail
			}
		}
	}
	return nil
}

// statusLabel 状态英文值转中文展示
func statusLabel(status string) string {
	switch status {
	case model.AbsenceStatusPending:
		return "待审批"
	case model.AbsenceStatusApproved:
		return "已批准"
	case model.AbsenceStatusRejected:
		return "已驳回"
	case model.MakeupStatusPlanned:
		return "已计划"
	case model.MakeupStatusConfirmed:
		return "已确认"
	case model.MakeupStatusCancelled:
		return "已取消"
	case model.OfferStatusAvailable:
		return "招募中"
	case model.OfferStatusTaken:
		return "已成交"
	case model.OfferStatusExpired:
		return "已过期"
	default:
		return status
	}
}

// colName 0 基列号转 Excel 列名（0 → A）
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

// cell 0 基列号 + 1 基行号转单元格坐标
func cell(col, row int) string {
	return fmt.Sprintf("%s%d", colName(col), row)
}
