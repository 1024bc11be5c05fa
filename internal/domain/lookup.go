package domain

// 기준정보 상태
const (
	LookupActive   = "active"
	LookupInactive = "inactive"
)

// Category 안건구분 - maps to category table
type Category struct {
	ID     uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name   string `gorm:"column:name;size:100" json:"name"`
	Status string `gorm:"column:status;size:10;default:'active'" json:"status"`
}

// TableName returns the table name
func (Category) TableName() string {
	return "category"
}

// CompanyAffiliate 계열사 - maps to company_affiliate table
type CompanyAffiliate struct {
	ID     uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name   string `gorm:"column:name;size:100" json:"name"`
	Status string `gorm:"column:status;size:10;default:'active'" json:"status"`
}

// TableName returns the table name
func (CompanyAffiliate) TableName() string {
	return "company_affiliate"
}

// UserDept employee_id → dept 조인용 최소 projection
type UserDept struct {
	EmployeeID string `json:"employee_id"`
	Dept       string `json:"dept"`
}
