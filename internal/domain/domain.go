package domain

import (
	"github.com/yungbote/clientbase-backend/internal/domain/audit"
	"github.com/yungbote/clientbase-backend/internal/domain/client"
	"github.com/yungbote/clientbase-backend/internal/domain/org"
	"github.com/yungbote/clientbase-backend/internal/domain/user"
)

type Organization = org.Organization
type Member = org.Member

type User = user.User
type Session = user.Session

type Client = client.Client
type ClientContact = client.ClientContact

type AuditLog = audit.Log

// Models lists every table in migration order.
func Models() []interface{} {
	return []interface{}{
		&Organization{},
		&Member{},
		&User{},
		&Session{},
		&Client{},
		&ClientContact{},
		&AuditLog{},
	}
}
