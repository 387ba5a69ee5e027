package logger

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Các action audit của hệ thống
const (
	AuditDashboardCreate    = "dashboard_create"
	AuditRestaurantCreate   = "restaurant_create"
	AuditRestaurantDelete   = "restaurant_delete"
	AuditRestaurantTransfer = "restaurant_transfer"
	AuditAccessGrant        = "employee_access_grant"
	AuditAccessRevoke       = "employee_access_revoke"
	AuditRolePromote        = "user_role_promote"
)

// LogAction ghi một hành động audit. actorUID là người thực hiện.
func LogAction(ctx context.Context, action, actorUID, resourceType, resourceID string, details map[string]interface{}) {
	fields := logrus.Fields{
		"action":        action,
		"user_id":       actorUID,
		"resource_type": resourceType,
		"resource_id":   resourceID,
	}
	if rid := ctx.Value(RequestIDKey); rid != nil {
		fields["request_id"] = rid
	}
	for k, v := range details {
		fields[k] = v
	}
	GetAuditLogger().WithFields(fields).Info("Audit log")
}
