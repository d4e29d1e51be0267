package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

// Logger writes events to the audit_logs table.
type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Log(ctx context.Context, ev Event) error {
	metaJSON, err := encodeMetadata(ev.Metadata)
	if err != nil {
		return err
	}

	entry := models.AuditLog{
		ActorID:  optional(ev.ActorID),
		Action:   ev.Action,
		Entity:   ev.Entity,
		EntityID: optional(ev.EntityID),
		Metadata: metaJSON,
	}

	return l.db.WithContext(ctx).Create(&entry).Error
}

func encodeMetadata(meta any) (string, error) {
	if meta == nil {
		return "", nil
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return "", errors.Wrap(err, "encode audit metadata")
	}
	return string(b), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// LogSink writes events to a zerolog logger and keeps the most recent ones
// for List. Used with the memory driver.
type LogSink struct {
	logger zerolog.Logger
	store  retained
	now    func() time.Time
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger, now: time.Now}
}

func (s *LogSink) Log(_ context.Context, ev Event) error {
	meta, err := encodeMetadata(ev.Metadata)
	if err != nil {
		return err
	}
	s.store.add(ev, meta, s.now())
	s.logger.Info().
		Str("actor_id", ev.ActorID).
		Str("action", ev.Action).
		Str("entity", ev.Entity).
		Str("entity_id", ev.EntityID).
		Interface("metadata", ev.Metadata).
		Msg("audit")
	return nil
}
