package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/clientbase-backend/internal/data/repos/analytics"
	"github.com/yungbote/clientbase-backend/internal/data/repos/audit"
	"github.com/yungbote/clientbase-backend/internal/data/repos/client"
	"github.com/yungbote/clientbase-backend/internal/data/repos/contact"
	"github.com/yungbote/clientbase-backend/internal/data/repos/org"
	"github.com/yungbote/clientbase-backend/internal/data/repos/user"
	"github.com/yungbote/clientbase-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type SessionRepo = user.SessionRepo

type OrganizationRepo = org.OrganizationRepo

type ClientRepo = client.ClientRepo
type ClientListFilter = client.ListFilter

type ContactRepo = contact.ContactRepo

type AuditLogRepo = audit.AuditLogRepo

type AnalyticsRepo = analytics.AnalyticsRepo
type ClientCountFilter = analytics.ClientFilter
type ContactCountFilter = analytics.ContactFilter
type GroupCount = analytics.GroupCount

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return user.NewSessionRepo(db, baseLog)
}

func NewOrganizationRepo(db *gorm.DB, baseLog *logger.Logger) OrganizationRepo {
	return org.NewOrganizationRepo(db, baseLog)
}

func NewClientRepo(db *gorm.DB, baseLog *logger.Logger) ClientRepo {
	return client.NewClientRepo(db, baseLog)
}

func NewContactRepo(db *gorm.DB, baseLog *logger.Logger) ContactRepo {
	return contact.NewContactRepo(db, baseLog)
}

func NewAuditLogRepo(db *gorm.DB, baseLog *logger.Logger) AuditLogRepo {
	return audit.NewAuditLogRepo(db, baseLog)
}

func NewAnalyticsRepo(db *gorm.DB, baseLog *logger.Logger) AnalyticsRepo {
	return analytics.NewAnalyticsRepo(db, baseLog)
}
