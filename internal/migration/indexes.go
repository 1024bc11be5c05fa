package migration

import (
	"fmt"

	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/pkg/logger"
	"gorm.io/gorm"
)

type compositeIndex struct {
	name    string
	table   string
	columns string
}

// 관리자 목록/통계는 기간 + 상태로 조회한다
var compositeIndexes = []compositeIndex{
	{name: "idx_opinion_created_status", table: domain.Opinion{}.TableName(), columns: "created_at, status"},
	{name: "idx_history_opinion_created", table: domain.OpinionHistory{}.TableName(), columns: "opinion_id, created_at"},
}

// ensureIndexes adds composite indexes that struct tags do not express.
// Existing indexes are skipped so the step can be re-run.
func ensureIndexes(db *gorm.DB) error {
	for _, idx := range compositeIndexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}
		stmt := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
		logger.Info("[Migration] index %s created on %s", idx.name, idx.table)
	}
	return nil
}
