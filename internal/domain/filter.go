package domain

// ListFilter 관리자 조회/엑셀 공용 필터
type ListFilter struct {
	Year     string `form:"year" json:"year"`
	Quarter  string `form:"quarter" json:"quarter"`
	From     string `form:"from" json:"from"`
	To       string `form:"to" json:"to"`
	Status   string `form:"status" json:"status"`
	Category string `form:"category" json:"category"`
	Company  string `form:"company" json:"company"`
	Search   string `form:"q" json:"q"`
}

// Stats 대시보드 통계
type Stats struct {
	Window           DateRange        `json:"window"`
	Total            int64            `json:"total"`
	Answered         int64            `json:"answered"`
	Blinded          int64            `json:"blinded"`
	UniqueSubmitters int64            `json:"unique_submitters"`
	ByStatus         map[string]int64 `json:"by_status"`
	ByCategory       []NamedCount     `json:"by_category"`
	ByCompany        []NamedCount     `json:"by_company"`
}

// NamedCount name → count pair
type NamedCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}
