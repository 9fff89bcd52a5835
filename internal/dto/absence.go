package dto

// ── 缺课报告模块 DTO ──

// SubmitAbsenceRequest 教师提交缺课报告请求
type SubmitAbsenceRequest struct {
	StudentID     string   `json:"student_id"     binding:"required,uuid"`
	AbsenceDate   string   `json:"absence_date"   binding:"required"` // RFC3339，如 "2026-09-10T14:00:00Z"
	Reason        string   `json:"reason"         binding:"required,min=2"`
	MakeupDate    string   `json:"makeup_date"    binding:"required"` // RFC3339
	MakeupMinutes int      `json:"makeup_minutes" binding:"required,min=15,max=480"`
	Location      string   `json:"location"       binding:"omitempty,max=200"`
	Subjects      []string `json:"subjects"       binding:"omitempty,dive,min=1"`
	Notes         string   `json:"notes"          binding:"omitempty,max=2000"`
}

// RejectAbsenceRequest 校方驳回请求（驳回理由必填在 Service 层校验，
// 这里不加 required 以便返回业务错误码而非通用参数错误）
type RejectAbsenceRequest struct {
	Reason string `json:"reason"`
}

// AbsenceReportResponse 缺课报告响应
type AbsenceReportResponse struct {
	ID            string   `json:"id"`
	TeacherID     string   `json:"teacher_id"`
	TeacherName   string   `json:"teacher_name,omitempty"`
	StudentID     string   `json:"student_id"`
	StudentName   string   `json:"student_name,omitempty"`
	ClassName     string   `json:"class_name,omitempty"`
	AbsenceDate   string   `json:"absence_date"`
	Reason        string   `json:"reason"`
	MakeupDate    string   `json:"makeup_date"`
	MakeupMinutes int      `json:"makeup_minutes"`
	MakeupStatus  string   `json:"makeup_status"`
	Location      string   `json:"location,omitempty"`
	Subjects      []string `json:"subjects,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	Status        string   `json:"status"`
	SubmittedAt   string   `json:"submitted_at"`
	DecidedAt     string   `json:"decided_at,omitempty"`
	DecidedBy     string   `json:"decided_by,omitempty"`
	RejectReason  string   `json:"reject_reason,omitempty"`
}
