package database

import (
	"strings"

	"fileforge/internal/domain/statistics"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database records batch statistics
type Database struct {
	db *gorm.DB
}

// NewDatabase opens the statistics database at dsn. ":memory:" keeps the
// statistics for the lifetime of the process only.
func NewDatabase(dsn string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// Every pooled connection to an in-memory database would see its own
	// empty database.
	if strings.Contains(dsn, ":memory:") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	// Auto-migrate the schema
	if err := db.AutoMigrate(&BatchRecord{}); err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

// Record stores one batch summary.
func (d *Database) Record(summary statistics.BatchSummary) error {
	record := recordFromSummary(summary)
	return d.db.Create(&record).Error
}

// Totals aggregates every recorded batch.
func (d *Database) Totals() (*statistics.SessionStats, error) {
	var row struct {
		TotalBatches int64
		Succeeded    int64
		Failed       int64
		BytesIn      int64
		BytesOut     int64
	}
	err := d.db.Model(&BatchRecord{}).
		Select("COUNT(*) AS total_batches, " +
			"COALESCE(SUM(succeeded), 0) AS succeeded, " +
			"COALESCE(SUM(failed), 0) AS failed, " +
			"COALESCE(SUM(bytes_in), 0) AS bytes_in, " +
			"COALESCE(SUM(bytes_out), 0) AS bytes_out").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	saved := row.BytesIn - row.BytesOut
	if saved < 0 {
		saved = 0
	}
	return &statistics.SessionStats{
		TotalBatches:   row.TotalBatches,
		FilesProcessed: row.Succeeded,
		FilesFailed:    row.Failed,
		BytesIn:        row.BytesIn,
		BytesOut:       row.BytesOut,
		DataSaved:      saved,
	}, nil
}

// Recent returns up to limit summaries, newest first.
func (d *Database) Recent(limit int) ([]statistics.BatchSummary, error) {
	var records []BatchRecord
	if err := d.db.Order("finished_at DESC, id DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}

	out := make([]statistics.BatchSummary, len(records))
	for i, r := range records {
		out[i] = r.Summary()
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
