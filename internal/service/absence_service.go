package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"school-link/internal/dto"
	"school-link/internal/model"
	"school-link/internal/repository"
	"school-link/pkg/lock"
)

// ── 缺课报告模块业务错误 ──

var (
	ErrReportNotFound      = errors.New("缺课报告不存在")
	ErrStudentNotFound     = errors.New("学生不存在")
	ErrForbidden           = errors.New("无权访问该资源")
	ErrDateFormat          = errors.New("日期格式不正确")
	ErrMakeupBeforeAbsence = errors.New("补课时间不能早于缺课时间")
)

// AbsenceService 缺课报告服务接口
type AbsenceService interface {
	Submit(ctx context.Context, teacherID string, req *dto.SubmitAbsenceRequest) (*dto.AbsenceReportResponse, error)
	GetByID(ctx context.Context, reportID, actorID, actorRole string) (*dto.AbsenceReportResponse, error)
	List(ctx context.Context, actorID, actorRole, status, search string) ([]dto.AbsenceReportResponse, error)
	Approve(ctx context.Context, reportID, actorID, actorRole string) (*dto.AbsenceReportResponse, error)
	Reject(ctx context.Context, reportID, actorID, actorRole, reason string) (*dto.AbsenceReportResponse, error)
}

type absenceService struct {
	repo     *repository.Repository
	notifier Notifier
	locks    *lock.KeyedMutex
	logger   *zap.Logger
}

// NewAbsenceService 创建缺课报告服务
func NewAbsenceService(repo *repository.Repository, notifier Notifier, locks *lock.KeyedMutex, logger *zap.Logger) AbsenceService {
	return &absenceService{
		repo:     repo,
		notifier: notifier,
		locks:    locks,
		logger:   logger,
	}
}

// ────────────── Submit ──────────────

// Submit 教师提交缺课报告，初始状态 pending / 补课 planned
func (s *absenceService) Submit(ctx context.Context, teacherID string, req *dto.SubmitAbsenceRequest) (*dto.AbsenceReportResponse, error) {
	absenceDate, err := time.Parse(time.RFC3339, req.AbsenceDate)
	if err != nil {
		return nil, ErrDateFormat
	}
	makeupDate, err := time.Parse(time.RFC3339, req.MakeupDate)
	if err != nil {
		return nil, ErrDateFormat
	}
	if makeupDate.Before(absenceDate) {
		return nil, ErrMakeupBeforeAbsence
	}

	student, err := s.repo.Student.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	report := &model.AbsenceReport{
		TeacherID:     teacherID,
		StudentID:     student.StudentID,
		AbsenceDate:   absenceDate,
		Reason:        req.Reason,
		MakeupDate:    makeupDate,
		MakeupMinutes: req.MakeupMinutes,
		MakeupStatus:  model.MakeupStatusPlanned,
		Location:      req.Location,
		Subjects:      model.StringArray(req.Subjects),
		Notes:         req.Notes,
		Status:        model.AbsenceStatusPending,
		SubmittedAt:   time.Now(),
	}
	report.CreatedBy = &teacherID

	if err := s.repo.AbsenceReport.Create(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info("缺课报告已提交",
		zap.String("report_id", report.AbsenceReportID),
		zap.String("teacher_id", teacherID),
		zap.String("student_id", student.StudentID))

	report.Student = student
	return toAbsenceResponse(report), nil
}

// ────────────── GetByID ──────────────

// GetByID 查询单条报告。可见性：校方全部，教师本人提交的，家长本人孩子的
func (s *absenceService) GetByID(ctx context.Context, reportID, actorID, actorRole string) (*dto.AbsenceReportResponse, error) {
	report, err := s.loadReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !absenceVisible(report, actorID, actorRole) {
		return nil, ErrForbidden
	}
	return toAbsenceResponse(report), nil
}

// ────────────── List ──────────────

// List 按角色过滤报告列表
func (s *absenceService) List(ctx context.Context, actorID, actorRole, status, search string) ([]dto.AbsenceReportResponse, error) {
	filter := repository.AbsenceFilter{Status: status, Search: search}
	switch actorRole {
	case model.RoleDirection:
		// 全量
	case model.RoleTeacher:
		filter.TeacherID = actorID
	case model.RoleParent:
		filter.ParentID = actorID
	default:
		return nil, ErrForbidden
	}

	reports, err := s.repo.AbsenceReport.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.AbsenceReportResponse, 0, len(reports))
	for i := range reports {
		resp = append(resp, *toAbsenceResponse(&reports[i]))
	}
	return resp, nil
}

// ────────────── Approve / Reject ──────────────

// Approve 校方批准报告：pending → approved，补课 → confirmed，
// 通知提交教师与学生家长
func (s *absenceService) Approve(ctx context.Context, reportID, actorID, actorRole string) (*dto.AbsenceReportResponse, error) {
	return s.decide(ctx, reportID, actorID, actorRole, CmdApprove, "")
}

// Reject 校方驳回报告：pending → rejected，补课 → cancelled，理由必填
func (s *absenceService) Reject(ctx context.Context, reportID, actorID, actorRole, reason string) (*dto.AbsenceReportResponse, error) {
	return s.decide(ctx, reportID, actorID, actorRole, CmdReject, reason)
}

// decide 审批的唯一写路径：按报告 ID 串行化，先纯校验再带条件更新。
// 条件更新零行（并发审批竞争失败）由仓储层返回 ErrOptimisticLock。
func (s *absenceService) decide(ctx context.Context, reportID, actorID, actorRole, command, reason string) (*dto.AbsenceReportResponse, error) {
	unlock := s.locks.Lock("absence:" + reportID)
	defer unlock()

	report, err := s.loadReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	nextStatus, nextMakeup, err := absenceDecision(report, command, actorRole, reason)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	report.Status = nextStatus
	report.MakeupStatus = nextMakeup
	report.DecidedAt = &now
	report.DecidedBy = &actorID
	report.RejectReason = reason
	report.UpdatedBy = &actorID

	if err := s.repo.AbsenceReport.UpdateDecision(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info("缺课报告已审批",
		zap.String("report_id", report.AbsenceReportID),
		zap.String("decision", nextStatus),
		zap.String("decided_by", actorID))

	s.notifier.Dispatch(ctx, buildAbsenceDecisionEvent(report))

	return toAbsenceResponse(report), nil
}

// buildAbsenceDecisionEvent 审批结果通知：教师 + 家长各一条
func buildAbsenceDecisionEvent(report *model.AbsenceReport) NotificationEvent {
	studentName := ""
	parentID := ""
	if report.Student != nil {
		studentName = report.Student.Name
		parentID = report.Student.ParentID
	}

	var templateKey, title, teacherContent, parentContent string
	if report.Status == model.AbsenceStatusApproved {
		templateKey = model.TemplateAbsenceApproved
		title = "缺课报告已批准"
		teacherContent = fmt.Sprintf("您为学生 %s 提交的缺课报告已批准，补课安排在 %s。",
			studentName, report.MakeupDate.Format("2006-01-02 15:04"))
		parentContent = fmt.Sprintf("学生 %s 于 %s 的缺课已确认，补课安排在 %s。",
			studentName, report.AbsenceDate.Format("2006-01-02"), report.MakeupDate.Format("2006-01-02 15:04"))
	} else {
		templateKey = model.TemplateAbsenceRejected
		title = "缺课报告已驳回"
		teacherContent = fmt.Sprintf("您为学生 %s 提交的缺课报告已驳回：%s", studentName, report.RejectReason)
		parentContent = fmt.Sprintf("学生 %s 于 %s 的缺课报告未获批准。",
			studentName, report.AbsenceDate.Format("2006-01-02"))
	}

	ev := NotificationEvent{
		EventKey:    fmt.Sprintf("absence:%s:%s", report.AbsenceReportID, report.Status),
		TemplateKey: templateKey,
		RelatedType: "absence_report",
		RelatedID:   report.AbsenceReportID,
		Messages: []EventMessage{
			{UserID: report.TeacherID, Title: title, Content: teacherContent},
		},
	}
	if parentID != "" {
		ev.Messages = append(ev.Messages, EventMessage{UserID: parentID, Title: title, Content: parentContent})
	}
	return ev
}

// ────────────── 内部辅助 ──────────────

func (s *absenceService) loadReport(ctx context.Context, reportID string) (*model.AbsenceReport, error) {
	report, err := s.repo.AbsenceReport.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return report, nil
}

// absenceVisible 报告的角色可见性判断
func absenceVisible(report *model.AbsenceReport, actorID, actorRole string) bool {
	switch actorRole {
	case model.RoleDirection:
		return true
	case model.RoleTeacher:
		return report.TeacherID == actorID
	case model.RoleParent:
		return report.Student != nil && report.Student.ParentID == actorID
	default:
		return false
	}
}

// toAbsenceResponse 模型转响应 DTO
func toAbsenceResponse(report *model.AbsenceReport) *dto.AbsenceReportResponse {
	resp := &dto.AbsenceReportResponse{
		ID:            report.AbsenceReportID,
		TeacherID:     report.TeacherID,
		StudentID:     report.StudentID,
		AbsenceDate:   report.AbsenceDate.Format(time.RFC3339),
		Reason:        report.Reason,
		MakeupDate:    report.MakeupDate.Format(time.RFC3339),
		MakeupMinutes: report.MakeupMinutes,
		MakeupStatus:  report.MakeupStatus,
		Location:      report.Location,
		Subjects:      report.Subjects,
		Notes:         report.Notes,
		Status:        report.Status,
		SubmittedAt:   report.SubmittedAt.Format(time.RFC3339),
		RejectReason:  report.RejectReason,
	}
	if report.Teacher != nil {
		resp.TeacherName = report.Teacher.Name
	}
	if report.Student != nil {
		resp.StudentName = report.Student.Name
		resp.ClassName = report.Student.ClassName
	}
	if report.DecidedAt != nil {
		resp.DecidedAt = report.DecidedAt.Format(time.RFC3339)
	}
	if report.DecidedBy != nil {
		resp.DecidedBy = *report.DecidedBy
	}
	return resp
}
