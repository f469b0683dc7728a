package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/clientbase-backend/internal/data/repos"
	"github.com/yungbote/clientbase-backend/internal/data/repos/testutil"
	types "github.com/yungbote/clientbase-backend/internal/domain"
)

// recordingAudit keeps every event in memory. With fail set it reports a
// failure for each one, which must never leak into the caller's Result.
type recordingAudit struct {
	mu     sync.Mutex
	events []AuditEvent
	fail   bool
}

func (r *recordingAudit) Record(_ context.Context, ev AuditEvent) Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	if r.fail {
		return failed(KindInternal, "audit store unavailable")
	}
	return succeeded(msgAuditRecorded, nil)
}

func (r *recordingAudit) last(t *testing.T) AuditEvent {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		t.Fatalf("no audit events recorded")
	}
	return r.events[len(r.events)-1]
}

type fixture struct {
	ctx    context.Context
	db     *gorm.DB
	audit  *recordingAudit
	user   *types.User
	org    *types.Organization
	caller *Caller

	clients  ClientService
	contacts ContactService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	u := testutil.SeedUser(t, ctx, db, "owner-"+uuid.NewString()[:8]+"@example.com")
	o := testutil.SeedOrganization(t, ctx, db, u.ID)
	sess := testutil.SeedSession(t, ctx, db, u.ID)

	rec := &recordingAudit{}
	clientRepo := repos.NewClientRepo(db, log)
	contactRepo := repos.NewContactRepo(db, log)
	return &fixture{
		ctx:   ctx,
		db:    db,
		audit: rec,
		user:  u,
		org:   o,
		caller: &Caller{
			UserID:               u.ID,
			Role:                 u.Role,
			SessionID:            sess.ID,
			IPAddress:            sess.IPAddress,
			UserAgent:            sess.UserAgent,
			ActiveOrganizationID: &o.ID,
		},
		clients:  NewClientService(db, log, clientRepo, contactRepo, rec),
		contacts: NewContactService(db, log, clientRepo, contactRepo, rec),
	}
}
