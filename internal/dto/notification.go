package dto

// ── 通知模块 DTO ──

// NotificationResponse 通知记录响应
type NotificationResponse struct {
	ID          string `json:"id"`
	TemplateKey string `json:"template_key"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsRead      bool   `json:"is_read"`
	RelatedType string `json:"related_type,omitempty"`
	RelatedID   string `json:"related_id,omitempty"`
	CreatedAt   string `json:"created_at"`
}
