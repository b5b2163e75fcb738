package domain

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	Base
	Email        string `gorm:"uniqueIndex;size:191;not null" json:"email" binding:"required,email"`
	Name         string `gorm:"size:64;not null" json:"name" binding:"max=64"`
	PasswordHash string `gorm:"size:191;not null" json:"passwordHash,omitempty"` // 出接口前由 service 清空
	Role         string `gorm:"size:16;not null;default:user" json:"role"`       // "user"/"admin"

	// 仅用于创建时接收明文，不落库
	Password string `gorm:"-" json:"password,omitempty" binding:"required,min=8"`
}

func (User) TableName() string { return "users" }

// Public drops credentials before the user leaves the service layer.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	u.PasswordHash = ""
	u.Password = ""
	return u
}
