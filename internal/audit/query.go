package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

type Query struct {
	Action string
	Entity string
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

// Normalize clamps paging to 1-based pages of at most MaxPageSize rows.
func (q Query) Normalize() Query {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > MaxPageSize {
		q.Limit = DefaultPageSize
	}
	return q
}

func (q Query) offset() int {
	return (q.Page - 1) * q.Limit
}

type Reader interface {
	List(ctx context.Context, q Query) ([]models.AuditLog, int64, error)
}

// List returns one page, newest first, and the total match count.
func (l *Logger) List(ctx context.Context, q Query) ([]models.AuditLog, int64, error) {
	q = q.Normalize()

	base := l.db.WithContext(ctx).Model(&models.AuditLog{})
	if q.Action != "" {
		base = base.Where("action = ?", q.Action)
	}
	if q.Entity != "" {
		base = base.Where("entity = ?", q.Entity)
	}
	if q.From != nil {
		base = base.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		base = base.Where("created_at < ?", *q.To)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count audit logs")
	}

	var logs []models.AuditLog
	if err := base.
		Order("created_at DESC").
		Limit(q.Limit).
		Offset(q.offset()).
		Find(&logs).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list audit logs")
	}

	return logs, total, nil
}

// --------------------------------------------------
// In-process retention for the memory driver
// --------------------------------------------------

const retainedEntries = 1000

type retained struct {
	mu      sync.RWMutex
	nextID  uint
	entries []models.AuditLog
}

func (r *retained) add(ev Event, meta string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.entries = append(r.entries, models.AuditLog{
		ID:        r.nextID,
		ActorID:   optional(ev.ActorID),
		Action:    ev.Action,
		Entity:    ev.Entity,
		EntityID:  optional(ev.EntityID),
		Metadata:  meta,
		CreatedAt: at,
	})
	if len(r.entries) > retainedEntries {
		r.entries = r.entries[len(r.entries)-retainedEntries:]
	}
}

func (r *retained) list(q Query) ([]models.AuditLog, int64) {
	q = q.Normalize()

	r.mu.RLock()
	var matched []models.AuditLog
	for _, e := range r.entries {
		if q.Action != "" && e.Action != q.Action {
			continue
		}
		if q.Entity != "" && e.Entity != q.Entity {
			continue
		}
		if q.From != nil && e.CreatedAt.Before(*q.From) {
			continue
		}
		if q.To != nil && !e.CreatedAt.Before(*q.To) {
			continue
		}
		matched = append(matched, e)
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := int64(len(matched))
	start := q.offset()
	if start >= len(matched) {
		return []models.AuditLog{}, total
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total
}

func (s *LogSink) List(_ context.Context, q Query) ([]models.AuditLog, int64, error) {
	logs, total := s.store.list(q)
	return logs, total, nil
}

var (
	_ Reader = (*Logger)(nil)
	_ Reader = (*LogSink)(nil)
)
