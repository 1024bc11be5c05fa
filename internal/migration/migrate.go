package migration

import (
	"fmt"

	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/internal/middleware"
	"github.com/damoang/opinion-backend/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed 초기 데이터 옵션
type Seed struct {
	AdminEmployeeID string
	AdminName       string
	AdminPassword   string
}

// Models returns every table owned by the service
func Models() []any {
	return []any{
		&domain.Opinion{},
		&domain.OpinionHistory{},
		&domain.User{},
		&domain.Category{},
		&domain.CompanyAffiliate{},
		&middleware.AuditLog{},
	}
}

// Run executes AutoMigrate for all tables and seeds default data if empty.
func Run(db *gorm.DB, seed Seed) error {
	// 1. AutoMigrate - 테이블 없으면 생성, 있으면 컬럼만 보강
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	// 2. 조회용 복합 인덱스
	if err := ensureIndexes(db); err != nil {
		return err
	}

	// 3. Seed - 비어 있을 때만 기본 데이터 삽입
	if err := seedLookups(db); err != nil {
		return err
	}
	return seedAdmin(db, seed)
}

func seedLookups(db *gorm.DB) error {
	var count int64
	db.Model(&domain.Category{}).Count(&count)
	if count == 0 {
		categories := []domain.Category{
			{Name: "업무개선", Status: domain.LookupActive},
			{Name: "제도개선", Status: domain.LookupActive},
			{Name: "복리후생", Status: domain.LookupActive},
			{Name: "조직문화", Status: domain.LookupActive},
			{Name: "기타", Status: domain.LookupActive},
		}
		if err := db.Create(&categories).Error; err != nil {
			return fmt.Errorf("seed category: %w", err)
		}
		logger.Info("[Migration] seeded %d categories", len(categories))
	}

	db.Model(&domain.CompanyAffiliate{}).Count(&count)
	if count == 0 {
		companies := []domain.CompanyAffiliate{
			{Name: "본사", Status: domain.LookupActive},
		}
		if err := db.Create(&companies).Error; err != nil {
			return fmt.Errorf("seed company_affiliate: %w", err)
		}
		logger.Info("[Migration] seeded %d companies", len(companies))
	}
	return nil
}

// seedAdmin creates the first admin account when no admin exists yet
func seedAdmin(db *gorm.DB, seed Seed) error {
	if seed.AdminEmployeeID == "" || seed.AdminPassword == "" {
		return nil
	}

	var count int64
	db.Model(&domain.User{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(seed.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	name := seed.AdminName
	if name == "" {
		name = "관리자"
	}
	admin := &domain.User{
		EmployeeID:   seed.AdminEmployeeID,
		Name:         name,
		Role:         domain.RoleAdmin,
		Status:       domain.UserStatusActive,
		PasswordHash: string(hashed),
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	logger.Info("[Migration] bootstrap admin %s created", seed.AdminEmployeeID)
	return nil
}
