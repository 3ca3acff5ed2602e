package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	// RoleAnonymous запрос без учетных данных
	RoleAnonymous   Role = ""
	RoleCitizen     Role = "citizen"
	RoleCoordinator Role = "coordinator"
	RoleAdmin       Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleCoordinator, RoleAdmin:
		return true
	}
	return false
}

// User учетная запись; жизненный цикл аутентификации находится вне ядра
type User struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	Role        Role      `json:"role"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	IsApproved  bool      `json:"is_approved"`
	CreatedAt   time.Time `json:"created_at"`
}

// DisplayName полное имя, либо логин, если имя не заполнено
func (u *User) DisplayName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.Username
	}
	return full
}

func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role, IsApproved: u.IsApproved}
}

// UserPatch изменяемые администратором поля пользователя
type UserPatch struct {
	Email       *string
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Role        *Role
	IsApproved  *bool
}

// Actor пользователь, от имени которого выполняется операция
type Actor struct {
	ID         uuid.UUID
	Role       Role
	IsApproved bool
}

// Anonymous запрос без аутентификации
func Anonymous() Actor {
	return Actor{Role: RoleAnonymous}
}

func (a Actor) IsAnonymous() bool {
	return a.ID == uuid.Nil
}
