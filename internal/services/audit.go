package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/clientbase-backend/internal/data/repos"
	types "github.com/yungbote/clientbase-backend/internal/domain"
	"github.com/yungbote/clientbase-backend/internal/domain/audit"
	"github.com/yungbote/clientbase-backend/internal/pkg/dbctx"
	"github.com/yungbote/clientbase-backend/internal/pkg/pointers"
	"github.com/yungbote/clientbase-backend/internal/platform/logger"
)

const msgAuditRecorded = "Audit log created successfully"

// AuditEvent describes one mutation attempt. Status defaults to success and
// Metadata, when set, is stored as JSON.
type AuditEvent struct {
	Action         string
	Resource       string
	ResourceID     string
	Status         string
	Message        string
	Metadata       any
	OrganizationID uuid.UUID
	Caller         *Caller
}

// AuditRecorder appends audit entries. Stores call it after their mutation has
// committed and ignore the Result, so a recorder failure never changes the
// outcome of the mutation itself.
type AuditRecorder interface {
	Record(ctx context.Context, ev AuditEvent) Result
}

type auditRecorder struct {
	log  *logger.Logger
	repo repos.AuditLogRepo
}

func NewAuditRecorder(log *logger.Logger, repo repos.AuditLogRepo) AuditRecorder {
	return &auditRecorder{log: log.With("service", "AuditRecorder"), repo: repo}
}

func (a *auditRecorder) Record(ctx context.Context, ev AuditEvent) Result {
	entry, err := buildAuditLog(ev)
	if err != nil {
		a.log.Error("audit metadata marshal failed", "action", ev.Action, "error", err)
		return internal(err)
	}
	if err := a.repo.Create(dbctx.New(ctx), entry); err != nil {
		a.log.Error("audit insert failed", "action", ev.Action, "resource", ev.Resource, "error", err)
		return internal(err)
	}
	return succeeded(msgAuditRecorded, idPtr(entry.ID))
}

func buildAuditLog(ev AuditEvent) (*types.AuditLog, error) {
	status := ev.Status
	if status == "" {
		status = audit.StatusSuccess
	}
	entry := &types.AuditLog{
		ID:         uuid.New(),
		Action:     ev.Action,
		Resource:   pointers.NilIfEmpty(ev.Resource),
		ResourceID: pointers.NilIfEmpty(ev.ResourceID),
		Status:     status,
		Message:    pointers.NilIfEmpty(ev.Message),
	}
	if ev.Metadata != nil {
		raw, err := json.Marshal(ev.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal audit metadata: %w", err)
		}
		entry.Metadata = datatypes.JSON(raw)
	}
	if ev.OrganizationID != uuid.Nil {
		entry.OrganizationID = idPtr(ev.OrganizationID)
	}
	if c := ev.Caller; c != nil {
		if c.UserID != uuid.Nil {
			entry.UserID = idPtr(c.UserID)
		}
		if c.SessionID != uuid.Nil {
			entry.SessionID = idPtr(c.SessionID)
		}
		entry.IPAddress = c.IPAddress
		entry.UserAgent = c.UserAgent
	}
	return entry, nil
}

// NopAuditRecorder records nothing and always succeeds.
type NopAuditRecorder struct{}

func (NopAuditRecorder) Record(context.Context, AuditEvent) Result {
	return succeeded(msgAuditRecorded, nil)
}

type auditFailureCounter interface {
	AuditWriteFailed()
}

type countingAuditRecorder struct {
	next    AuditRecorder
	counter auditFailureCounter
}

// CountAuditFailures wraps rec so every unsuccessful write bumps counter.
func CountAuditFailures(rec AuditRecorder, counter auditFailureCounter) AuditRecorder {
	if counter == nil {
		return rec
	}
	return &countingAuditRecorder{next: rec, counter: counter}
}

func (c *countingAuditRecorder) Record(ctx context.Context, ev AuditEvent) Result {
	res := c.next.Record(ctx, ev)
	if !res.Success {
		c.counter.AuditWriteFailed()
	}
	return res
}

// recordFailure writes a failure entry for a mutation that broke after the
// caller was authenticated.
func recordFailure(ctx context.Context, rec AuditRecorder, ev AuditEvent, err error) {
	ev.Status = audit.StatusFailure
	if err != nil {
		ev.Message = err.Error()
	}
	_ = rec.Record(ctx, ev)
}
