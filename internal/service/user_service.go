package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"school-link/internal/dto"
	"school-link/internal/model"
	"school-link/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound   = errors.New("用户不存在")
	ErrEmailTaken     = errors.New("邮箱已被注册")
	ErrParentNotFound = errors.New("家长账号不存在或角色不符")
)

// UserService 用户与学生档案服务接口（账号由校方集中开设）
type UserService interface {
	CreateUser(ctx context.Context, operatorID string, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error)
	ListByRole(ctx context.Context, role string) ([]dto.UserResponse, error)
	CreateStudent(ctx context.Context, operatorID string, req *dto.CreateStudentRequest) (*dto.StudentResponse, error)
	ListStudents(ctx context.Context, actorID, actorRole string) ([]dto.StudentResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建用户服务
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────── CreateUser ──────────────

// CreateUser 校方开设账号（教师 / 家长 / 校方）
func (s *userService) CreateUser(ctx context.Context, operatorID string, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         req.Role,
		Subjects:     model.StringArray(req.Subjects),
		IsActive:     true,
	}
	user.CreatedBy = &operatorID

	if err := s.repo.User.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("账号已创建",
		zap.String("user_id", user.UserID),
		zap.String("role", user.Role),
		zap.String("created_by", operatorID))

	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────── GetProfile / ListByRole ──────────────

func (s *userService) GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) ListByRole(ctx context.Context, role string) ([]dto.UserResponse, error) {
	users, err := s.repo.User.ListByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	return resp, nil
}

// ────────────── CreateStudent / ListStudents ──────────────

// CreateStudent 建立学生档案并关联家长账号
func (s *userService) CreateStudent(ctx context.Context, operatorID string, req *dto.CreateStudentRequest) (*dto.StudentResponse, error) {
	parent, err := s.repo.User.GetByID(ctx, req.ParentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParentNotFound
		}
		return nil, err
	}
	if parent.Role != model.RoleParent {
		return nil, ErrParentNotFound
	}

	student := &model.Student{
		Name:      req.Name,
		ClassName: req.ClassName,
		ParentID:  parent.UserID,
	}
	student.CreatedBy = &operatorID

	if err := s.repo.Student.Create(ctx, student); err != nil {
		return nil, err
	}

	s.logger.Info("学生档案已创建",
		zap.String("student_id", student.StudentID),
		zap.String("parent_id", parent.UserID))

	return toStudentResponse(student), nil
}

// ListStudents 学生列表。校方全量，家长仅本人孩子
func (s *userService) ListStudents(ctx context.Context, actorID, actorRole string) ([]dto.StudentResponse, error) {
	var (
		students []model.Student
		err      error
	)
	switch actorRole {
	case model.RoleDirection, model.RoleTeacher:
		students, err = s.repo.Student.List(ctx)
	case model.RoleParent:
		students, err = s.repo.Student.ListByParent(ctx, actorID)
	default:
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}

	resp := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		resp = append(resp, *toStudentResponse(&students[i]))
	}
	return resp, nil
}

// ────────────── DTO 转换 ──────────────

func toUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       user.UserID,
		Name:     user.Name,
		Email:    user.Email,
		Phone:    user.Phone,
		Role:     user.Role,
		Subjects: user.Subjects,
		IsActive: user.IsActive,
	}
}

func toStudentResponse(student *model.Student) *dto.StudentResponse {
	return &dto.StudentResponse{
		ID:        student.StudentID,
		Name:      student.Name,
		ClassName: student.ClassName,
		ParentID:  student.ParentID,
	}
}
