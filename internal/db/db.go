package db

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/practice-scheduler/internal/config"
	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

func NewDB(cfg *config.Config, logger zerolog.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.IsProduction() {
		level = gormlogger.Error
	}

	db, err := gorm.Open(postgres.Open(cfg.DB.URL), &gorm.Config{
		PrepareStmt: true,
		Logger:      gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}

	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Appointment{},
		&models.IntakeTemplate{},
		&models.IntakeSubmission{},
		&models.AuditLog{},
	); err != nil {
		return nil, errors.Wrap(err, "migrate")
	}

	if err := EnsureConstraints(db, logger); err != nil {
		return nil, err
	}

	return db, nil
}

const (
	createBtreeGist = `CREATE EXTENSION IF NOT EXISTS btree_gist`

	addNoOverlap = `
DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'appointments_no_overlap') THEN
		ALTER TABLE appointments ADD CONSTRAINT appointments_no_overlap
			EXCLUDE USING gist (
				practitioner_id WITH =,
				tstzrange(starts_at, ends_at, '[)') WITH &&
			) WHERE (status <> 'CANCELLED');
	END IF;
END $$`

	addTimeRange = `
DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'appointments_time_range') THEN
		ALTER TABLE appointments ADD CONSTRAINT appointments_time_range
			CHECK (ends_at > starts_at);
	END IF;
END $$`
)

// EnsureConstraints adds what AutoMigrate cannot express. Each statement
// is idempotent. The overlap constraint needs btree_gist; without it the
// advisory booking lock is the only guard and a warning is logged.
func EnsureConstraints(db *gorm.DB, logger zerolog.Logger) error {
	gist := true
	if err := db.Exec(createBtreeGist).Error; err != nil {
		gist = false
		logger.Warn().Err(err).Msg("btree_gist unavailable, skipping appointments_no_overlap")
	}

	if gist {
		if err := db.Exec(addNoOverlap).Error; err != nil {
			logger.Warn().Err(err).Msg("could not add appointments_no_overlap")
		}
	}

	if err := db.Exec(addTimeRange).Error; err != nil {
		return errors.Wrap(err, "add appointments_time_range")
	}

	return nil
}
