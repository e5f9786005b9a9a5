package entity

import (
	"time"

	"github.com/bitfantasy/fair-qms/pkg/inspection"
)

// User 用户实体。角色为封闭枚举:operator/qa/avp/master。
type User struct {
	ID           string          `json:"id" gorm:"primaryKey;size:32"`
	Username     string          `json:"username" gorm:"size:64;not null;uniqueIndex"`
	Name         string          `json:"name" gorm:"size:64;not null"`
	PasswordHash string          `json:"-" gorm:"size:128;not null"`
	Role         inspection.Role `json:"role" gorm:"size:16;not null;index"`
	Status       string          `json:"status" gorm:"size:16;not null;default:active"`
	LastLoginAt  *time.Time      `json:"last_login_at"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (User) TableName() string {
	return "qis_users"
}

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)
