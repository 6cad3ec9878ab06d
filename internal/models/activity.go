package models

import (
	"time"

	"gorm.io/datatypes"
)

// User roles recognised by the analytics pipeline.
const (
	RoleEstudiante    = "estudiante"
	RoleProfesor      = "profesor"
	RoleAdministrador = "administrador"
)

// Activity actions recorded in the log.
const (
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionViewBuilding   = "view_building"
	ActionViewEvent      = "view_event"
	ActionSearchBuilding = "search_building"
	ActionCreateEvent    = "create_event"
	ActionUpdateEvent    = "update_event"
	ActionDeleteEvent    = "delete_event"
	ActionViewProfile    = "view_profile"
	ActionUpdateProfile  = "update_profile"
)

// Resource types an activity entry may reference.
const (
	ResourceBuilding = "building"
	ResourceEvent    = "event"
	ResourceProfile  = "profile"
	ResourceAuth     = "auth"
	ResourceOther    = "other"
)

// Device classes derived from the user agent.
const (
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
	DeviceTablet  = "tablet"
	DeviceUnknown = "unknown"
)

var activityActions = map[string]struct{}{
	ActionLogin: {}, ActionLogout: {},
	ActionViewBuilding: {}, ActionViewEvent: {}, ActionSearchBuilding: {},
	ActionCreateEvent: {}, ActionUpdateEvent: {}, ActionDeleteEvent: {},
	ActionViewProfile: {}, ActionUpdateProfile: {},
}

var activityResources = map[string]struct{}{
	ResourceBuilding: {}, ResourceEvent: {}, ResourceProfile: {}, ResourceAuth: {}, ResourceOther: {},
}

var deviceTypes = map[string]struct{}{
	DeviceMobile: {}, DeviceDesktop: {}, DeviceTablet: {}, DeviceUnknown: {},
}

// ValidAction reports whether action belongs to the recorded-action enum.
func ValidAction(action string) bool {
	_, ok := activityActions[action]
	return ok
}

// ValidResourceType reports whether resourceType belongs to the resource enum.
func ValidResourceType(resourceType string) bool {
	_, ok := activityResources[resourceType]
	return ok
}

// ValidDeviceType reports whether deviceType belongs to the device enum.
func ValidDeviceType(deviceType string) bool {
	_, ok := deviceTypes[deviceType]
	return ok
}

// ActivityLog is the append-only record of user-facing actions. Rows are never
// mutated; retention pruning is the only delete path. ResourceID is a loose
// reference, no foreign key is enforced.
type ActivityLog struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	UserID       *uint             `gorm:"index:idx_activity_user_ts,priority:1" json:"user_id"`
	UserEmail    string            `gorm:"size:160;index" json:"user_email"`
	UserRole     string            `gorm:"size:32" json:"user_role"`
	Action       string            `gorm:"size:32;not null;index:idx_activity_action_ts,priority:1" json:"action"`
	ResourceType string            `gorm:"size:32" json:"resource_type"`
	ResourceID   string            `gorm:"size:64;index" json:"resource_id"`
	Metadata     datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	IPAddress    string            `gorm:"size:64" json:"ip_address"`
	UserAgent    string            `gorm:"size:256" json:"user_agent"`
	DeviceType   string            `gorm:"size:16" json:"device_type"`
	Timestamp    time.Time         `gorm:"not null;index;index:idx_activity_user_ts,priority:2;index:idx_activity_action_ts,priority:2" json:"timestamp"`
}

// TableName keeps the collection name the reporting queries target.
func (ActivityLog) TableName() string {
	return "user_activity_logs"
}
