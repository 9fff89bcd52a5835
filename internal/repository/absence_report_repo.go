package repository

import (
	"context"

	"gorm.io/gorm"

	pkgerrors "school-link/pkg/errors"

	"school-link/internal/model"
)

// AbsenceFilter 缺课报告查询条件（字段为空则不过滤）
type AbsenceFilter struct {
	Status    string
	TeacherID string
	ParentID  string // 通过 students.parent_id 关联过滤
	StudentID string
	Search    string // 模糊匹配学生姓名 / 科目 / 地点
}

// AbsenceReportRepository 缺课报告数据访问接口
type AbsenceReportRepository interface {
	Create(ctx context.Context, report *model.AbsenceReport) error
	GetByID(ctx context.Context, id string) (*model.AbsenceReport, error)
	List(ctx context.Context, filter AbsenceFilter) ([]model.AbsenceReport, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	// UpdateDecision 以 status='pending' 为条件写入审批结果。
	// 零行受影响说明报告已被并发审批，返回 ErrOptimisticLock。
	UpdateDecision(ctx context.Context, report *model.AbsenceReport) error
}

type absenceReportRepo struct {
	db *gorm.DB
}

// NewAbsenceReportRepo 创建 AbsenceReportRepository 实例
func NewAbsenceReportRepo(db *gorm.DB) AbsenceReportRepository {
	return &absenceReportRepo{db: db}
}

func (r *absenceReportRepo) Create(ctx context.Context, report *model.AbsenceReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *absenceReportRepo) GetByID(ctx context.Context, id string) (*model.AbsenceReport, error) {
	var report model.AbsenceReport
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Student").
		Where("absence_report_id = ?", id).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *absenceReportRepo) List(ctx context.Context, filter AbsenceFilter) ([]model.AbsenceReport, error) {
	q := r.db.WithContext(ctx).
		Model(&model.AbsenceReport{}).
		Preload("Teacher").
		Preload("Student")

	if filter.Status != "" {
		q = q.Where("absence_reports.status = ?", filter.Status)
	}
	if filter.TeacherID != "" {
		q = q.Where("absence_reports.teacher_id = ?", filter.TeacherID)
	}
	if filter.StudentID != "" {
		q = q.Where("absence_reports.student_id = ?", filter.StudentID)
	}
	if filter.ParentID != "" {
		q = q.Joins("JOIN students ON students.student_id = absence_reports.student_id").
			Where("students.parent_id = ?", filter.ParentID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Joins("JOIN students s2 ON s2.student_id = absence_reports.student_id").
			Where("s2.name ILIKE ? OR absence_reports.location ILIKE ? OR array_to_string(absence_reports.subjects, ',') ILIKE ?",
				like, like, like)
	}

	var reports []model.AbsenceReport
	err := q.Order("absence_reports.submitted_at DESC").Find(&reports).Error
	return reports, err
}

func (r *absenceReportRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.AbsenceReport{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}

func (r *absenceReportRepo) UpdateDecision(ctx context.Context, report *model.AbsenceReport) error {
	res := r.db.WithContext(ctx).
		Model(&model.AbsenceReport{}).
		Where("absence_report_id = ? AND status = ?", report.AbsenceReportID, model.AbsenceStatusPending).
		Updates(map[string]interface{}{
			"status":        report.Status,
			"makeup_status": report.MakeupStatus,
			"decided_at":    report.DecidedAt,
			"decided_by":    report.DecidedBy,
			"reject_reason": report.RejectReason,
			"updated_by":    report.UpdatedBy,
			"updated_at":    gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}
