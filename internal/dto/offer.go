package dto

// ── 市场需求模块 DTO ──

// CreateOfferRequest 校方发布需求请求
type CreateOfferRequest struct {
	Title           string   `json:"title"             binding:"required,min=2,max=200"`
	Subjects        []string `json:"subjects"          binding:"required,min=1,dive,min=1"`
	TargetClasses   []string `json:"target_classes"    binding:"omitempty,dive,min=1"`
	StudentCount    int      `json:"student_count"     binding:"required,min=1,max=100"`
	Location        string   `json:"location"          binding:"omitempty,max=200"`
	SessionsPerWeek int      `json:"sessions_per_week" binding:"required,min=1,max=14"`
	HoursPerSession float64  `json:"hours_per_session" binding:"required,gt=0,lte=8"`
	Days            []string `json:"days"              binding:"omitempty,dive,min=1"`
	TimeSlot        string   `json:"time_slot"         binding:"omitempty,max=50"`
	HourlyRate      float64  `json:"hourly_rate"       binding:"required,gt=0"`
	StartDate       string   `json:"start_date"        binding:"required"` // "2026-09-01"
	Description     string   `json:"description"       binding:"omitempty,max=2000"`
}

// AssignOfferRequest 校方指派请求
type AssignOfferRequest struct {
	TeacherID string `json:"teacher_id" binding:"required,uuid"`
}

// OfferInterestResponse 报名意向响应
type OfferInterestResponse struct {
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// MarketOfferResponse 市场需求响应
// WeeklyPay / MonthlyPay 由时薪与课时量派生
type MarketOfferResponse struct {
	ID                 string                  `json:"id"`
	Title              string                  `json:"title"`
	Subjects           []string                `json:"subjects,omitempty"`
	TargetClasses      []string                `json:"target_classes,omitempty"`
	StudentCount       int                     `json:"student_count"`
	Location           string                  `json:"location,omitempty"`
	SessionsPerWeek    int                     `json:"sessions_per_week"`
	HoursPerSession    float64                 `json:"hours_per_session"`
	Days               []string                `json:"days,omitempty"`
	TimeSlot           string                  `json:"time_slot,omitempty"`
	HourlyRate         float64                 `json:"hourly_rate"`
	WeeklyPay          float64                 `json:"weekly_pay"`
	MonthlyPay         float64                 `json:"monthly_pay"`
	StartDate          string                  `json:"start_date"`
	Description        string                  `json:"description,omitempty"`
	Status             string                  `json:"status"`
	AssignedTeacherID  string                  `json:"assigned_teacher_id,omitempty"`
	InterestedTeachers []OfferInterestResponse `json:"interested_teachers"`
	ResolvedAt         string                  `json:"resolved_at,omitempty"`
	CreatedBy          string                  `json:"created_by,omitempty"`
	CreatedAt          string                  `json:"created_at"`
}
