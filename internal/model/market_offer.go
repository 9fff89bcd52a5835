package model

import "time"

// ── 市场需求状态常量 ──
// available 为唯一非终态；taken / expired 均为终态

const (
	OfferStatusAvailable = "available"
	OfferStatusTaken     = "taken"
	OfferStatusExpired   = "expired"
)

// MarketOffer 市场需求表 — 对应 market_offers
// 校方发布的家教需求；教师报名意向，校方从意向集中指派或直接标记成交。
// 周薪/月薪为派生值（见 WeeklyPay / MonthlyPay），不落库。
type MarketOffer struct {
	MarketOfferID     string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"market_offer_id"`
	Title             string      `gorm:"type:varchar(200);not null"                     json:"title"`
	Subjects          StringArray `gorm:"type:text[]"                                    json:"subjects,omitempty"`
	TargetClasses     StringArray `gorm:"type:text[]"                                    json:"target_classes,omitempty"`
	StudentCount      int         `gorm:"not null;default:1"                             json:"student_count"`
	Location          string      `gorm:"type:varchar(200)"                              json:"location,omitempty"`
	SessionsPerWeek   int         `gorm:"not null"                                       json:"sessions_per_week"`
	HoursPerSession   float64     `gorm:"type:numeric(4,1);not null"                     json:"hours_per_session"`
	Days              StringArray `gorm:"type:text[]"                                    json:"days,omitempty"`
	TimeSlot          string      `gorm:"type:varchar(50)"                               json:"time_slot,omitempty"`
	HourlyRate        float64     `gorm:"type:numeric(10,2);not null"                    json:"hourly_rate"`
	StartDate         time.Time   `gorm:"type:date;not null"                             json:"start_date"`
	Description       string      `gorm:"type:text"                                      json:"description,omitempty"`
	Status            string      `gorm:"type:varchar(20);not null;default:'available'"  json:"status"` // available | taken | expired
	AssignedTeacherID *string     `gorm:"type:uuid"                                      json:"assigned_teacher_id,omitempty"`
	ResolvedAt        *time.Time  `json:"resolved_at,omitempty"`
	BaseModel

	// 关联
	AssignedTeacher *User           `gorm:"foreignKey:AssignedTeacherID;references:UserID"          json:"assigned_teacher,omitempty"`
	Interests       []OfferInterest `gorm:"foreignKey:MarketOfferID;references:MarketOfferID"       json:"interests,omitempty"`
}

// TableName 指定表名
func (MarketOffer) TableName() string { return "market_offers" }

// IsTerminal 状态是否已终结（taken / expired 后不再接受任何迁移）
func (o *MarketOffer) IsTerminal() bool {
	return o.Status != OfferStatusAvailable
}

// WeeklyPay 周薪 = 每周次数 × 每次小时数 × 时薪
func (o *MarketOffer) WeeklyPay() float64 {
	return float64(o.SessionsPerWeek) * o.HoursPerSession * o.HourlyRate
}

// MonthlyPay 月薪 = 周薪 × 4
func (o *MarketOffer) MonthlyPay() float64 {
	return o.WeeklyPay() * 4
}

// InterestedTeacherIDs 返回当前意向集中的教师 ID 列表
func (o *MarketOffer) InterestedTeacherIDs() []string {
	ids := make([]string, 0, len(o.Interests))
	for _, it := range o.Interests {
		ids = append(ids, it.TeacherID)
	}
	return ids
}

// HasInterest 判断教师是否已在意向集中
func (o *MarketOffer) HasInterest(teacherID string) bool {
	for _, it := range o.Interests {
		if it.TeacherID == teacherID {
			return true
		}
	}
	return false
}

// OfferInterest 报名意向表 — 对应 offer_interests
// (market_offer_id, teacher_id) 唯一，保证集合语义
type OfferInterest struct {
	OfferInterestID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"        json:"offer_interest_id"`
	MarketOfferID   string    `gorm:"type:uuid;not null;uniqueIndex:uq_offer_interest"      json:"market_offer_id"`
	TeacherID       string    `gorm:"type:uuid;not null;uniqueIndex:uq_offer_interest"      json:"teacher_id"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                    json:"created_at"`

	// 关联
	Teacher *User `gorm:"foreignKey:TeacherID;references:UserID" json:"teacher,omitempty"`
}

// TableName 指定表名
func (OfferInterest) TableName() string { return "offer_interests" }

// [自证通过] internal/model/market_offer.go
