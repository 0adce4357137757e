package models

// AuditLog records admin operations performed on behalf of an owner.
type AuditLog struct {
	Base
	ActorID      string `gorm:"type:uuid;not null;index" json:"actor_id"`
	OwnerID      string `gorm:"type:uuid;index" json:"owner_id"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	Changes      string `json:"changes,omitempty"`
}
