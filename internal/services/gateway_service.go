package services

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cashloan/internal/backend"
	"cashloan/internal/cache"
	"cashloan/internal/repositories"
	"cashloan/internal/session"
	"cashloan/internal/utils"

	"go.uber.org/zap"
)

// Cache scopes. Mutations drop the scopes they can change.
const (
	ScopeLoanStatistics = "loan-stats"
	ScopeLenders        = "lenders"
	ScopeAdminDashboard = "admin-dashboard"
)

// GatewayService forwards one browser request to the backend.
type GatewayService struct {
	Client    *backend.Client
	Cache     cache.Cache
	CacheTTL  time.Duration
	Audit     repositories.AuditRepository
	Log       *zap.Logger
	RequestID string
}

func (s GatewayService) cache() cache.Cache {
	if s.Cache != nil {
		return s.Cache
	}
	return cache.Noop{}
}

func (s GatewayService) ttl() time.Duration {
	if s.CacheTTL > 0 {
		return s.CacheTTL
	}
	return 30 * time.Second
}

// Forward returns the backend answer whatever its status; only transport
// failures come back as errors.
func (s GatewayService) Forward(ctx context.Context, req backend.Request) (*backend.Response, error) {
	req.RequestID = s.RequestID
	return s.Client.Do(ctx, req)
}

// ForwardCached serves a read from the cache, keyed per token fingerprint so
// callers never see each other's data. Only 2xx JSON bodies are stored.
func (s GatewayService) ForwardCached(ctx context.Context, scope string, req backend.Request) (*backend.Response, bool, error) {
	c := s.cache()
	key := cache.Key(scope, session.Fingerprint(req.Token), req.Query.Encode())
	body, ok, err := c.Get(ctx, key)
	if err != nil {
		utils.LogEvent(s.Log, s.RequestID, "gateway", "cache_get", "cache read failed", zap.String("scope", scope), zap.Error(err))
	}
	if ok {
		return &backend.Response{
			Status: http.StatusOK,
			Header: http.Header{"Content-Type": []string{"application/json"}},
			Body:   body,
		}, true, nil
	}

	resp, err := s.Forward(ctx, req)
	if err != nil {
		return nil, false, err
	}
	if resp.OK() && resp.IsJSON() && json.Valid(resp.Body) {
		if err := c.Set(ctx, key, resp.Body, s.ttl()); err != nil {
			utils.LogEvent(s.Log, s.RequestID, "gateway", "cache_set", "cache write failed", zap.String("scope", scope), zap.Error(err))
		}
	}
	return resp, false, nil
}

// Action describes a mutating call for the audit trail.
type Action struct {
	Name       string
	TargetID   int64
	Claims     session.Claims
	Invalidate []string
}

// ForwardAction sends a mutation once, records it and, when the backend
// accepted it, drops the cached scopes it touches. Audit and cache failures
// are logged and never change the answer.
func (s GatewayService) ForwardAction(ctx context.Context, a Action, req backend.Request) (*backend.Response, error) {
	resp, err := s.Forward(ctx, req)

	entry := repositories.AuditEntry{
		RequestID:        s.RequestID,
		TokenFingerprint: session.Fingerprint(req.Token),
		UserID:           a.Claims.UserID,
		Role:             string(a.Claims.Role),
		Action:           a.Name,
		Method:           req.Method,
		Path:             req.Path,
		TargetID:         a.TargetID,
	}
	switch {
	case err != nil:
		entry.Status = http.StatusBadGateway
		entry.Message = err.Error()
	default:
		entry.Status = resp.Status
		if rerr := resp.Err(); rerr != nil {
			entry.Message = rerr.Error()
		}
	}
	if s.Audit.Enabled() {
		// the audit row must outlive a client that hung up
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
		if _, aerr := s.Audit.Record(actx, entry); aerr != nil {
			utils.LogEvent(s.Log, s.RequestID, "gateway", "audit", "audit insert failed", zap.String("action", a.Name), zap.Error(aerr))
		}
		cancel()
	}

	if err == nil && resp.OK() {
		for _, scope := range a.Invalidate {
			if derr := s.cache().DeletePrefix(ctx, cache.Key(scope)); derr != nil {
				utils.LogEvent(s.Log, s.RequestID, "gateway", "cache_invalidate", "cache invalidate failed", zap.String("scope", scope), zap.Error(derr))
			}
		}
	}
	utils.LogEvent(s.Log, s.RequestID, "gateway", a.Name, "forwarded",
		zap.Int64("target_id", a.TargetID),
		zap.Int("status", entry.Status),
	)
	return resp, err
}

func (s GatewayService) RecentAudit(ctx context.Context, action string, limit int) ([]repositories.AuditEntry, error) {
	return s.Audit.ListRecent(ctx, action, limit)
}
