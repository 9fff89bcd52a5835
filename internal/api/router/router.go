package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"school-link/config"
	"school-link/internal/api/handler"
	"school-link/internal/api/middleware"
	"school-link/internal/model"
	"school-link/pkg/jwt"
	"school-link/pkg/redis"
)

// 请求体上限 1MB，本服务无文件上传场景
const maxBodyBytes = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户与学生档案（账号由校方集中开设）
			users := authorized.Group("/users")
			{
				users.GET("/me", h.User.GetCurrentUser)
				users.GET("", middleware.RoleAuth(model.RoleDirection), h.User.ListUsers)
				users.POST("", middleware.RoleAuth(model.RoleDirection), h.User.CreateUser)
			}
			students := authorized.Group("/students")
			{
				students.GET("", h.User.ListStudents)
				students.POST("", middleware.RoleAuth(model.RoleDirection), h.User.CreateStudent)
			}

			// 缺课报告模块
			absences := authorized.Group("/absences")
			{
				absences.GET("", h.Absence.ListAbsences)
				absences.GET("/:id", h.Absence.GetAbsence)
				absences.POST("", middleware.RoleAuth(model.RoleTeacher), h.Absence.SubmitAbsence)
				absences.PUT("/:id/approve", middleware.RoleAuth(model.RoleDirection), h.Absence.ApproveAbsence)
				absences.PUT("/:id/reject", middleware.RoleAuth(model.RoleDirection), h.Absence.RejectAbsence)
			}

			// 市场需求模块（家长不可见）
			offers := authorized.Group("/offers")
			offers.Use(middleware.RoleAuth(model.RoleDirection, model.RoleTeacher))
			{
				offers.GET("", h.Offer.ListOffers)
				offers.GET("/:id", h.Offer.GetOffer)
				offers.POST("", middleware.RoleAuth(model.RoleDirection), h.Offer.CreateOffer)
				offers.POST("/:id/interest", middleware.RoleAuth(model.RoleTeacher), h.Offer.ExpressInterest)
				offers.DELETE("/:id/interest", middleware.RoleAuth(model.RoleTeacher), h.Offer.WithdrawInterest)
				offers.PUT("/:id/assign", middleware.RoleAuth(model.RoleDirection), h.Offer.AssignOffer)
				offers.PUT("/:id/taken", middleware.RoleAuth(model.RoleDirection), h.Offer.MarkOfferTaken)
			}

			// 通知收件箱
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.ListNotifications)
				notifications.GET("/unread-count", h.Notification.GetUnreadCount)
				notifications.PUT("/:id/read", h.Notification.MarkNotificationRead)
			}

			// 仪表盘与检索
			authorized.GET("/dashboard/status-counts", middleware.RoleAuth(model.RoleDirection), h.Query.GetStatusCounts)
			authorized.GET("/search", h.Query.Search)

			// 导出模块（仅校方）
			export := authorized.Group("/export")
			export.Use(middleware.RoleAuth(model.RoleDirection))
			{
				export.GET("/absences", h.Export.ExportAbsences)
				export.GET("/offers", h.Export.ExportOffers)
			}
		}
	}

	return r
}
