package model

import "time"

// AcceptanceRecord is one quality check on a (location, item, indicator).
// client_record_id is the idempotency key: unique per project when present.
type AcceptanceRecord struct {
	RecordID        uint64     `gorm:"column:record_id;primaryKey;autoIncrement"`
	ProjectID       uint64     `gorm:"column:project_id;not null;index:ix_acceptance_project;uniqueIndex:ux_acceptance_client_key"`
	RegionCode      *string    `gorm:"column:region_code;type:text"`
	RegionText      string     `gorm:"column:region_text;type:text;not null"`
	BuildingNo      *string    `gorm:"column:building_no;type:text;index:ix_acceptance_building"`
	FloorNo         *int       `gorm:"column:floor_no;index:ix_acceptance_floor"`
	Zone            *string    `gorm:"column:zone;type:text"`
	Division        *string    `gorm:"column:division;type:text"`
	Subdivision     *string    `gorm:"column:subdivision;type:text"`
	Item            *string    `gorm:"column:item;type:text"`
	ItemCode        *string    `gorm:"column:item_code;type:text;index:ix_acceptance_item_code"`
	Indicator       *string    `gorm:"column:indicator;type:text"`
	IndicatorCode   *string    `gorm:"column:indicator_code;type:text"`
	Result          string     `gorm:"column:result;type:text;not null;index:ix_acceptance_result"`
	PhotoPath       *string    `gorm:"column:photo_path;type:text"`
	Remark          *string    `gorm:"column:remark;type:text"`
	AIJSON          *string    `gorm:"column:ai_json;type:text"`
	ClientCreatedAt *time.Time `gorm:"column:client_created_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;not null;index:ix_acceptance_created_at"`
	Source          *string    `gorm:"column:source;type:text"`
	ClientRecordID  *string    `gorm:"column:client_record_id;type:text;uniqueIndex:ux_acceptance_client_key"`
}

func (AcceptanceRecord) TableName() string {
	return "acceptance_records"
}
