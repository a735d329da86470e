package service

import (
	"encoding/json"

	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditEntry is one row of the audit trail before it is persisted.
type AuditEntry struct {
	ActorUserID *uint
	Action      string
	EntityType  string
	EntityID    uint
	Detail      map[string]interface{}
	IPAddress   string
}

type Auditor struct {
	repo   *repository.AuditRepository
	logger *zap.Logger
}

func NewAuditor(repo *repository.AuditRepository, logger *zap.Logger) *Auditor {
	return &Auditor{repo: repo, logger: logger.Named("audit")}
}

// RecordTx writes the entry inside tx; the error aborts the caller's transaction.
func (a *Auditor) RecordTx(tx *gorm.DB, e AuditEntry) error {
	return a.repo.WithTx(tx).Create(toAuditLog(e))
}

// Record writes the entry outside any transaction. Failures are only logged.
func (a *Auditor) Record(e AuditEntry) {
	if err := a.repo.Create(toAuditLog(e)); err != nil {
		a.logger.Error("audit write failed", zap.String("action", e.Action), zap.Error(err))
	}
}

func toAuditLog(e AuditEntry) *models.AuditLog {
	var detail datatypes.JSON
	if len(e.Detail) > 0 {
		if b, err := json.Marshal(e.Detail); err == nil {
			detail = datatypes.JSON(b)
		}
	}
	return &models.AuditLog{
		ActorUserID: e.ActorUserID,
		Action:      e.Action,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Detail:      detail,
		IPAddress:   e.IPAddress,
	}
}

func actor(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}
