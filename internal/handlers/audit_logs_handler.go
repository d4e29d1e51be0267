package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/practice-scheduler/internal/audit"
	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	reader audit.Reader
}

func NewAuditLogsHandler(reader audit.Reader) *AuditLogsHandler {
	return &AuditLogsHandler{reader: reader}
}

// List is mounted behind RequireRole(ADMIN).
func (h *AuditLogsHandler) List(c *gin.Context) {
	from, err := queryDayBound(c, "from", false)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	to, err := queryDayBound(c, "to", true)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	q := audit.Query{
		Action: c.Query("action"),
		Entity: c.Query("entity"),
		From:   from,
		To:     to,
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", audit.DefaultPageSize),
	}.Normalize()

	logs, total, err := h.reader.List(c.Request.Context(), q)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(200, gin.H{
		"page":  q.Page,
		"limit": q.Limit,
		"total": total,
		"logs":  logs,
	})
}
