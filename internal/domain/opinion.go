package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// 처리 상태 (opinion.status)
const (
	StatusReceived   = "접수"
	StatusReviewing  = "검토중"
	StatusProcessing = "처리중"
	StatusAnswered   = "답변완료"
	StatusHeld       = "보류"
	StatusRejected   = "반려"
)

// DefaultBlindThreshold negative_score 가 이 값 이상이면 블라인드 처리
const DefaultBlindThreshold = 3

// ModerationNotice 블라인드된 의견의 본문 대신 노출되는 고정 문구
const ModerationNotice = "AI 자동 분석 결과, 부적절한 내용이 감지되어 비공개 처리 되었습니다."

var validStatuses = map[string]bool{
	StatusReceived:   true,
	StatusReviewing:  true,
	StatusProcessing: true,
	StatusAnswered:   true,
	StatusHeld:       true,
	StatusRejected:   true,
}

// Statuses returns every persisted status value in workflow order
func Statuses() []string {
	return []string{StatusReceived, StatusReviewing, StatusProcessing, StatusAnswered, StatusHeld, StatusRejected}
}

// IsValidStatus reports whether s is one of the six persisted status values
func IsValidStatus(s string) bool {
	return validStatuses[s]
}

// Opinion represents an employee improvement suggestion - maps to opinion table
type Opinion struct {
	ID                 uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Seq                uint64    `gorm:"column:seq;uniqueIndex" json:"seq"`
	Title              string    `gorm:"column:title;size:200" json:"title"`
	Asis               *string   `gorm:"column:asis;type:text" json:"asis,omitempty"`
	Tobe               string    `gorm:"column:tobe;type:text" json:"tobe"`
	Effect             string    `gorm:"column:effect;type:text" json:"effect"`
	CaseStudy          string    `gorm:"column:case_study;type:text" json:"case_study"`
	CategoryID         uint64    `gorm:"column:category_id;index" json:"category_id"`
	CompanyAffiliateID uint64    `gorm:"column:company_affiliate_id;index" json:"company_affiliate_id"`
	UserID             string    `gorm:"column:user_id;size:50;index" json:"user_id"`
	Quarter            string    `gorm:"column:quarter;size:2" json:"quarter"`
	Status             string    `gorm:"column:status;size:20;index;default:'접수'" json:"status"`
	NegativeScore      int       `gorm:"column:negative_score;default:0" json:"negative_score"`
	ProcID             *string   `gorm:"column:proc_id;size:50" json:"proc_id,omitempty"`
	ProcName           *string   `gorm:"column:proc_name;size:100" json:"proc_name,omitempty"`
	ProcDesc           *string   `gorm:"column:proc_desc;type:text" json:"proc_desc,omitempty"`
	CreatedAt          time.Time `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName returns the table name
func (Opinion) TableName() string {
	return "opinion"
}

// IsBlinded reports whether the opinion is hidden by moderation.
// Depends only on the immutable negative_score, never on status.
func (o *Opinion) IsBlinded(threshold int) bool {
	return o.NegativeScore >= threshold
}

// ModerationResult 모더레이션 결과 (negative_score + AI 생성 텍스트)
type ModerationResult struct {
	Effect        string `json:"effect"`
	Case          string `json:"case"`
	NegativeScore int    `json:"negative_score"`
}

// SubmitOpinionRequest 의견 제출 요청
type SubmitOpinionRequest struct {
	Title              string `json:"title" binding:"required,max=200"`
	Asis               string `json:"asis"`
	Tobe               string `json:"tobe" binding:"required"`
	CategoryID         uint64 `json:"category_id"`
	CompanyAffiliateID uint64 `json:"company_affiliate_id"`
}

// RespondRequest 관리자 답변 요청
type RespondRequest struct {
	Status   string `json:"status" binding:"required,opinion_status"`
	ProcDesc string `json:"proc_desc"`
}

// Response is the four-field unit written by a single respond call
type Response struct {
	Status    string
	ProcDesc  *string
	ProcID    string
	ProcName  string
	UpdatedAt time.Time
}

// SameAs reports whether applying r to o would change nothing
func (r *Response) SameAs(o *Opinion) bool {
	return o.Status == r.Status &&
		strValue(o.ProcDesc) == strValue(r.ProcDesc) &&
		strValue(o.ProcID) == r.ProcID &&
		strValue(o.ProcName) == r.ProcName
}

// OpinionView 관리자 화면/엑셀 공용 조합 결과 (category/company/user 조인)
type OpinionView struct {
	ID            uint64    `json:"id"`
	Seq           uint64    `json:"seq"`
	UserID        string    `json:"user_id"`
	Dept          string    `json:"dept"`      // 안건요청부서 (user_id 의 부서)
	ProcDept      string    `json:"proc_dept"` // 업무주관부서 (proc_id 의 부서)
	Company       string    `json:"company"`
	Category      string    `json:"category"`
	Title         string    `json:"title"`
	Asis          string    `json:"asis"`
	Tobe          string    `json:"tobe"`
	Effect        string    `json:"effect"`
	CaseStudy     string    `json:"case_study"`
	Quarter       string    `json:"quarter"`
	Status        string    `json:"status"`
	NegativeScore int       `json:"negative_score"`
	Blinded       bool      `json:"blinded"`
	Notice        string    `json:"notice,omitempty"`
	ProcID        string    `json:"proc_id"`
	ProcName      string    `json:"proc_name"`
	ProcDesc      string    `json:"proc_desc"`
	RegDate       string    `json:"reg_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewOpinionView builds a view without lookup fields; the aggregation step fills them
func NewOpinionView(o *Opinion, threshold int) OpinionView {
	return OpinionView{
		ID:            o.ID,
		Seq:           o.Seq,
		UserID:        o.UserID,
		Title:         o.Title,
		Asis:          strValue(o.Asis),
		Tobe:          o.Tobe,
		Effect:        o.Effect,
		CaseStudy:     o.CaseStudy,
		Quarter:       o.Quarter,
		Status:        o.Status,
		NegativeScore: o.NegativeScore,
		Blinded:       o.IsBlinded(threshold),
		ProcID:        strValue(o.ProcID),
		ProcName:      strValue(o.ProcName),
		ProcDesc:      strValue(o.ProcDesc),
		RegDate:       o.CreatedAt.Format("2006-01-02"),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// Obscured returns the presentation copy of a blinded view: submitter identity,
// department, company and title masked, content replaced by the moderation notice.
// Non-blinded views are returned unchanged.
func (v OpinionView) Obscured() OpinionView {
	if !v.Blinded {
		return v
	}
	v.UserID = MaskText(v.UserID)
	v.Dept = MaskText(v.Dept)
	v.Company = MaskText(v.Company)
	v.Title = MaskText(v.Title)
	v.Asis = ""
	v.Tobe = ModerationNotice
	v.Effect = ""
	v.CaseStudy = ""
	v.Notice = ModerationNotice
	return v
}

// MaskText keeps the first rune and replaces the rest with '*'
func MaskText(s string) string {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return ""
	}
	first, _ := utf8.DecodeRuneInString(s)
	if n == 1 {
		return "*"
	}
	return string(first) + strings.Repeat("*", n-1)
}

func strValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// StrPtr returns nil for an empty (after trim) string
func StrPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
