package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"school-link/internal/dto"
	"school-link/internal/service"
	"school-link/pkg/response"
)

// UserHandler 用户与学生档案模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// CreateUser 校方开设账号
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.CreateUser(c.Request.Context(), callerID, &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.Created(c, user)
}

// GetCurrentUser 获取当前登录用户信息
// GET /api/v1/users/me
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.GetProfile(c.Request.Context(), callerID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// ListUsers 按角色筛选用户列表
// GET /api/v1/users?role=teacher
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userSvc.ListByRole(c.Request.Context(), c.Query("role"))
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": users})
}

// CreateStudent 创建学生档案
// POST /api/v1/students
func (h *UserHandler) CreateStudent(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	student, err := h.userSvc.CreateStudent(c.Request.Context(), callerID, &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.Created(c, student)
}

// ListStudents 学生列表（校方全量 / 家长本人孩子）
// GET /api/v1/students
func (h *UserHandler) ListStudents(c *gin.Context) {
	callerID, role, ok := MustGetActor(c)
	if !ok {
		return
	}

	students, err := h.userSvc.ListStudents(c.Request.Context(), callerID, role)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, gin.H{"list": students})
}

// handleUserError 统一处理用户模块业务错误
func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	case errors.Is(err, service.ErrEmailTaken):
		response.Conflict(c, 12002, "邮箱已被注册")
	case errors.Is(err, service.ErrParentNotFound):
		response.BadRequest(c, 12003, "家长账号不存在或角色不符")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, 10003, "无权限访问")
	default:
		response.InternalError(c)
	}
}
