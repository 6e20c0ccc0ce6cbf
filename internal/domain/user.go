package domain

import "time"

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// UserLevel is the membership tier, derived purely from cumulative spend.
type UserLevel string

const (
	LevelRegular UserLevel = "普通会员"
	LevelSilver  UserLevel = "白银会员"
	LevelGold    UserLevel = "黄金会员"
	LevelDiamond UserLevel = "钻石会员"
)

const (
	silverThreshold  int64 = 1000
	goldThreshold    int64 = 5000
	diamondThreshold int64 = 10000
)

// LevelFor maps cumulative spend to a membership level.
func LevelFor(totalSpent int64) UserLevel {
	switch {
	case totalSpent >= diamondThreshold:
		return LevelDiamond
	case totalSpent >= goldThreshold:
		return LevelGold
	case totalSpent >= silverThreshold:
		return LevelSilver
	default:
		return LevelRegular
	}
}

type User struct {
	Meta
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"passwordHash"`
	Phone        string     `json:"phone"`
	Avatar       string     `json:"avatar,omitempty"`
	Status       UserStatus `json:"status"`
	Level        UserLevel  `json:"level"`
	TotalOrders  int        `json:"totalOrders"`
	TotalSpent   int64      `json:"totalSpent"`
	Role         UserRole   `json:"role"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

// UserPatch lists the mutable user fields. Email, password, role, level and
// the spend counters move only through their dedicated manager operations.
type UserPatch struct {
	Name   *string     `json:"name,omitempty"`
	Phone  *string     `json:"phone,omitempty"`
	Avatar *string     `json:"avatar,omitempty"`
	Status *UserStatus `json:"status,omitempty"`
}
