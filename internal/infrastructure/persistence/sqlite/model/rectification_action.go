package model

import "time"

// RectificationAction is an append-only audit event on an issue or an
// acceptance record. photo_urls holds a JSON-encoded string list.
type RectificationAction struct {
	ActionID   uint64    `gorm:"column:action_id;primaryKey;autoIncrement"`
	ProjectID  uint64    `gorm:"column:project_id;not null;index:ix_actions_project"`
	TargetType string    `gorm:"column:target_type;type:text;not null;index:ix_actions_target"`
	TargetID   uint64    `gorm:"column:target_id;not null;index:ix_actions_target"`
	ActionType string    `gorm:"column:action_type;type:text;not null;index:ix_actions_type"`
	Content    *string   `gorm:"column:content;type:text"`
	PhotoURLs  *string   `gorm:"column:photo_urls;type:text"`
	ActorRole  *string   `gorm:"column:actor_role;type:text"`
	ActorName  *string   `gorm:"column:actor_name;type:text"`
	CreatedAt  time.Time `gorm:"column:created_at;not null;index:ix_actions_created_at"`
}

func (RectificationAction) TableName() string {
	return "rectification_actions"
}
