package domain

import (
	"errors"
	"strings"
	"time"
)

// PermissionType distinguishes platform-seeded permissions from ones created
// by admins or sync reconciliation. SYSTEM permissions are immutable.
type PermissionType string

const (
	PermissionTypeSystem PermissionType = "SYSTEM"
	PermissionTypeCustom PermissionType = "CUSTOM"
)

var ErrInvalidPermissionKey = errors.New("domain: permission key must be \"resource:action\"")

// Permission is a grantable capability uniquely named by its
// "resource:action" key. It references its owning service by bare id only.
type Permission struct {
	ID          string
	ServiceID   string // optional, "" when not owned by a registered service
	Key         string // "resource:action", unique
	Resource    string
	Action      string
	Description string
	Type        PermissionType
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsSystem reports whether the permission is immutable.
func (p Permission) IsSystem() bool { return p.Type == PermissionTypeSystem }

// ParsePermissionKey splits a "resource:action" key into its parts.
func ParsePermissionKey(key string) (resource, action string, err error) {
	parts := strings.SplitN(key, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrInvalidPermissionKey
	}
	return parts[0], parts[1], nil
}
