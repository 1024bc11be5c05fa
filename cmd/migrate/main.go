package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/damoang/opinion-backend/internal/config"
	"github.com/damoang/opinion-backend/internal/database"
	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/internal/migration"
	pkglogger "github.com/damoang/opinion-backend/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "config file path (default: configs/config.$APP_ENV.yaml)")
	dryRun := flag.Bool("dry-run", false, "show what would be migrated without executing")
	verify := flag.Bool("verify", false, "verify data integrity (status values, seq gaps, orphan lookups)")
	seedAdmin := flag.Bool("seed-admin", true, "create the bootstrap admin when no admin exists")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	config.LoadDotEnv()
	pkglogger.InitStructured(config.Env())

	path := *configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := gormlogger.Warn
	if *verbose {
		logLevel = gormlogger.Info
	}

	db, err := database.Open(cfg, logLevel)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying DB: %v", err)
	}
	defer sqlDB.Close()

	if *dryRun {
		runDryRun(db)
		return
	}

	if *verify {
		if !runVerify(db) {
			os.Exit(1)
		}
		return
	}

	seed := migration.Seed{}
	if *seedAdmin {
		seed = migration.Seed{
			AdminEmployeeID: cfg.Bootstrap.AdminEmployeeID,
			AdminName:       cfg.Bootstrap.AdminName,
			AdminPassword:   cfg.Bootstrap.AdminPassword,
		}
	}

	start := time.Now()
	if err := migration.Run(db, seed); err != nil {
		log.Fatalf("[migrate] FAILED: %v", err)
	}
	log.Printf("[migrate] Completed in %v", time.Since(start))
}

func runDryRun(db *gorm.DB) {
	for _, model := range migration.Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			log.Printf("[dry-run] %T: %v", model, err)
			continue
		}
		state := "create"
		if db.Migrator().HasTable(model) {
			state = "alter (add missing columns/indexes)"
		}
		log.Printf("[dry-run] %-20s %s", stmt.Schema.Table, state)
	}
}

// runVerify reports rows that the application would not accept
func runVerify(db *gorm.DB) bool {
	ok := true

	for _, model := range migration.Models() {
		var count int64
		if err := db.Model(model).Count(&count).Error; err != nil {
			log.Printf("[verify] %T: %v", model, err)
			ok = false
			continue
		}
		log.Printf("[verify] %T: %d rows", model, count)
	}

	var badStatus int64
	db.Model(&domain.Opinion{}).Where("status NOT IN ?", domain.Statuses()).Count(&badStatus)
	if badStatus > 0 {
		log.Printf("[verify] %d opinions have an unknown status", badStatus)
		ok = false
	}

	var dupSeq int64
	db.Raw(`SELECT COUNT(*) FROM (SELECT seq FROM opinion GROUP BY seq HAVING COUNT(*) > 1) d`).Scan(&dupSeq)
	if dupSeq > 0 {
		log.Printf("[verify] %d duplicated seq values", dupSeq)
		ok = false
	}

	var orphanCategory int64
	db.Model(&domain.Opinion{}).
		Where("category_id NOT IN (?)", db.Model(&domain.Category{}).Select("id")).
		Count(&orphanCategory)
	if orphanCategory > 0 {
		// 조인 결과가 빈 문자열로 표시될 뿐 오류는 아님
		log.Printf("[verify] warning: %d opinions reference a missing category", orphanCategory)
	}

	if ok {
		log.Println("[verify] OK")
	}
	return ok
}
