package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"simplegest/internal/model"
	"simplegest/internal/repository"

	"github.com/google/uuid"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

// AuditEntry describes one mutation performed through the UI
type AuditEntry struct {
	Username   string
	Action     string
	EntityID   string
	EntityName string
	Details    any
}

type AuditService interface {
	// Record stores the entry; failures are logged and never returned
	Record(ctx context.Context, entry AuditEntry)
	GetAuditLogs(ctx context.Context, query string, page, limit int) ([]AuditLogResponse, int64, error)
	Enabled() bool
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates the activity log service. A nil repository disables it.
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) Enabled() bool {
	return s.repo != nil
}

func (s *auditService) Record(ctx context.Context, entry AuditEntry) {
	if s.repo == nil {
		return
	}

	details := "{}"
	if entry.Details != nil {
		if raw, err := json.Marshal(entry.Details); err == nil {
			details = string(raw)
		}
	}

	username := entry.Username
	if username == "" {
		username = "Sistema"
	}

	audit := &model.AuditLog{
		ID:         uuid.New(),
		Username:   username,
		Action:     entry.Action,
		EntityID:   entry.EntityID,
		EntityName: entry.EntityName,
		Details:    details,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.Log(context.WithoutCancel(ctx), audit); err != nil {
		log.Printf("failed to write audit log %s for %s: %v", entry.Action, entry.EntityID, err)
	}
}

func (s *auditService) GetAuditLogs(ctx context.Context, query string, page, limit int) ([]AuditLogResponse, int64, error) {
	if s.repo == nil {
		return nil, 0, ErrAuditDisabled
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	logs, total, err := s.repo.List(ctx, query, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			Username:   l.Username,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return res, total, nil
}
