package role

import "time"

const (
	PermissionRead   = "read"
	PermissionWrite  = "write"
	PermissionManage = "manage"
)

// Role groups the permissions granted to account members.
type Role struct {
	ID          string
	AccountID   string
	Name        string
	Permissions []string
	CreatedAt   time.Time
}

// Default describes a role every account is bootstrapped with.
type Default struct {
	Name        string
	Permissions []string
}

// Defaults is the role set created for each new account.
var Defaults = []Default{
	{Name: "admin", Permissions: []string{PermissionRead, PermissionWrite, PermissionManage}},
	{Name: "manager", Permissions: []string{PermissionRead, PermissionWrite}},
	{Name: "viewer", Permissions: []string{PermissionRead}},
}
