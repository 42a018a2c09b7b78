package model

import "time"

type IssueReport struct {
	IssueID           uint64     `gorm:"column:issue_id;primaryKey;autoIncrement"`
	ProjectID         uint64     `gorm:"column:project_id;not null;index:ix_issues_project;uniqueIndex:ux_issues_client_key"`
	RegionCode        *string    `gorm:"column:region_code;type:text"`
	RegionText        string     `gorm:"column:region_text;type:text;not null"`
	BuildingNo        *string    `gorm:"column:building_no;type:text;index:ix_issues_building"`
	FloorNo           *int       `gorm:"column:floor_no;index:ix_issues_floor"`
	Zone              *string    `gorm:"column:zone;type:text"`
	Division          *string    `gorm:"column:division;type:text"`
	Subdivision       *string    `gorm:"column:subdivision;type:text"`
	Item              *string    `gorm:"column:item;type:text"`
	ItemCode          *string    `gorm:"column:item_code;type:text"`
	Indicator         *string    `gorm:"column:indicator;type:text"`
	IndicatorCode     *string    `gorm:"column:indicator_code;type:text"`
	Description       string     `gorm:"column:description;type:text;not null"`
	Severity          *string    `gorm:"column:severity;type:text"`
	DeadlineDays      *int       `gorm:"column:deadline_days"`
	ResponsibleUnit   *string    `gorm:"column:responsible_unit;type:text;index:ix_issues_responsible_unit"`
	ResponsiblePerson *string    `gorm:"column:responsible_person;type:text"`
	Status            string     `gorm:"column:status;type:text;not null;index:ix_issues_status"`
	PhotoPath         *string    `gorm:"column:photo_path;type:text"`
	AIJSON            *string    `gorm:"column:ai_json;type:text"`
	ClientCreatedAt   *time.Time `gorm:"column:client_created_at"`
	CreatedAt         time.Time  `gorm:"column:created_at;not null;index:ix_issues_created_at"`
	Source            *string    `gorm:"column:source;type:text"`
	ClientRecordID    *string    `gorm:"column:client_record_id;type:text;uniqueIndex:ux_issues_client_key"`
}

func (IssueReport) TableName() string {
	return "issue_reports"
}
