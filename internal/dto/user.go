package dto

// ── 用户模块 DTO ──

// CreateUserRequest 创建账号请求（仅校方）
type CreateUserRequest struct {
	Name     string   `json:"name"     binding:"required,min=2,max=100"`
	Email    string   `json:"email"    binding:"required,email"`
	Phone    string   `json:"phone"    binding:"omitempty,max=30"`
	Password string   `json:"password" binding:"required,min=8"`
	Role     string   `json:"role"     binding:"required,oneof=direction teacher parent"`
	Subjects []string `json:"subjects" binding:"omitempty,dive,min=1"`
}

// UserResponse 用户信息响应
type UserResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone,omitempty"`
	Role     string   `json:"role"`
	Subjects []string `json:"subjects,omitempty"`
	IsActive bool     `json:"is_active"`
}

// CreateStudentRequest 创建学生档案请求（仅校方）
type CreateStudentRequest struct {
	Name      string `json:"name"       binding:"required,min=2,max=100"`
	ClassName string `json:"class_name" binding:"required,max=50"`
	ParentID  string `json:"parent_id"  binding:"required,uuid"`
}

// StudentResponse 学生信息响应
type StudentResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ClassName string `json:"class_name"`
	ParentID  string `json:"parent_id"`
}
