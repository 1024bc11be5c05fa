package domain

import "time"

// OpinionHistory 답변/상태 변경 이력 - maps to opinion_histories table
type OpinionHistory struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OpinionID  uint64    `gorm:"column:opinion_id;index" json:"opinion_id"`
	PrevStatus string    `gorm:"column:prev_status;size:20" json:"prev_status"`
	NewStatus  string    `gorm:"column:new_status;size:20" json:"new_status"`
	ProcID     string    `gorm:"column:proc_id;size:50" json:"proc_id"`
	ProcName   string    `gorm:"column:proc_name;size:100" json:"proc_name"`
	ProcDesc   string    `gorm:"column:proc_desc;type:text" json:"proc_desc"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName returns the table name
func (OpinionHistory) TableName() string {
	return "opinion_histories"
}
