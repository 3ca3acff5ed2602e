// Package policy содержит таблицу прав доступа (роль, действие) и проверку
// авторизации, выполняемую один раз на входе каждой операции ядра.
package policy

import (
	"github.com/shenikar/disaster_resource_system/internal/apperror"
	"github.com/shenikar/disaster_resource_system/internal/metrics"
	"github.com/shenikar/disaster_resource_system/internal/models"
)

type Action string

const (
	ActionResourceRead   Action = "resource:read"
	ActionResourceCreate Action = "resource:create"
	ActionResourceUpdate Action = "resource:update"
	ActionResourceDelete Action = "resource:delete"
	ActionResourceVerify Action = "resource:verify"
	ActionResourceAssign Action = "resource:assign_coordinator"
	ActionCapacityUpdate Action = "resource:update_capacity"
	ActionResourceStats  Action = "resource:stats"
	ActionResourceExport Action = "resource:export"
	ActionUpdateHistory  Action = "resource_update:read"
	ActionAlertRead      Action = "alert:read"
	ActionAlertCreate    Action = "alert:create"
	ActionAlertUpdate    Action = "alert:update"
	ActionAlertDelete    Action = "alert:delete"
	ActionUserManage     Action = "user:manage"
)

// Rule решение таблицы для пары (роль, действие)
type Rule uint8

const (
	Deny Rule = iota
	Allow
	// AllowOwn разрешено только для ресурсов, где координатор совпадает с субъектом
	AllowOwn
)

var readOnly = map[Action]Rule{
	ActionResourceRead: Allow,
	ActionAlertRead:    Allow,
}

var table = map[models.Role]map[Action]Rule{
	models.RoleAnonymous: readOnly,
	models.RoleCitizen:   readOnly,
	models.RoleCoordinator: {
		ActionResourceRead:   AllowOwn,
		ActionResourceCreate: Allow,
		ActionCapacityUpdate: AllowOwn,
		ActionUpdateHistory:  AllowOwn,
		ActionAlertRead:      Allow,
	},
	models.RoleAdmin: {
		ActionResourceRead:   Allow,
		ActionResourceCreate: Allow,
		ActionResourceUpdate: Allow,
		ActionResourceDelete: Allow,
		ActionResourceVerify: Allow,
		ActionResourceAssign: Allow,
		ActionCapacityUpdate: Allow,
		ActionResourceStats:  Allow,
		ActionResourceExport: Allow,
		ActionUpdateHistory:  Allow,
		ActionAlertRead:      Allow,
		ActionAlertCreate:    Allow,
		ActionAlertUpdate:    Allow,
		ActionAlertDelete:    Allow,
		ActionUserManage:     Allow,
	},
}

// RuleFor возвращает правило для субъекта. Неподтвержденные учетные записи
// получают права анонимного пользователя.
func RuleFor(actor models.Actor, action Action) Rule {
	role := actor.Role
	if actor.IsAnonymous() || !actor.IsApproved {
		role = models.RoleAnonymous
	}
	return table[role][action]
}

// Authorize проверяет право на действие без привязки к конкретному ресурсу.
// AllowOwn здесь считается разрешением: область видимости сужается вызывающей стороной.
func Authorize(actor models.Actor, action Action) error {
	if RuleFor(actor, action) == Deny {
		return deny(actor, action)
	}
	return nil
}

// AuthorizeResource проверяет право на действие над конкретным ресурсом
func AuthorizeResource(actor models.Actor, action Action, resource *models.Resource) error {
	switch RuleFor(actor, action) {
	case Allow:
		return nil
	case AllowOwn:
		if resource != nil && resource.ManagedBy(actor.ID) {
			return nil
		}
		metrics.RecordAuthorizationDenied(string(action), string(actor.Role))
		return apperror.Authorization("%s is allowed only on resources assigned to you", action)
	default:
		return deny(actor, action)
	}
}

// OwnScope сообщает, должна ли выборка ограничиваться ресурсами субъекта
func OwnScope(actor models.Actor, action Action) bool {
	return RuleFor(actor, action) == AllowOwn
}

// InitialApproval политика подтверждения при создании учетной записи:
// граждане подтверждаются автоматически, координаторы и администраторы ждут администратора
func InitialApproval(role models.Role) bool {
	return role == models.RoleCitizen
}

func deny(actor models.Actor, action Action) error {
	metrics.RecordAuthorizationDenied(string(action), string(actor.Role))
	if !actor.IsAnonymous() && !actor.IsApproved {
		return apperror.Authorization("account is pending approval")
	}
	role := string(actor.Role)
	if role == "" {
		role = "anonymous"
	}
	return apperror.Authorization("role %s is not allowed to perform %s", role, action)
}
