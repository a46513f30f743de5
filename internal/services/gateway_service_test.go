package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"cashloan/internal/backend"
	"cashloan/internal/cache"
	"cashloan/internal/repositories"
	"cashloan/internal/session"

	"github.com/DATA-DOG/go-sqlmock"
)

func newGateway(t *testing.T, h http.HandlerFunc) GatewayService {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return GatewayService{
		Client:    backend.New(backend.Options{BaseURL: srv.URL, Timeout: 2 * time.Second}),
		Cache:     cache.NewMemory(),
		RequestID: "req-1",
	}
}

func TestForwardCachedPerToken(t *testing.T) {
	var calls int32
	svc := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"statistics":{"total_loans":3}}`)
	})
	req := backend.Request{Method: http.MethodGet, Path: backend.PathLoanStatistics, Token: "a"}

	if _, hit, err := svc.ForwardCached(context.Background(), ScopeLoanStatistics, req); err != nil || hit {
		t.Fatalf("first call should miss: hit=%v err=%v", hit, err)
	}
	resp, hit, err := svc.ForwardCached(context.Background(), ScopeLoanStatistics, req)
	if err != nil || !hit || string(resp.Body) != `{"statistics":{"total_loans":3}}` {
		t.Fatalf("second call should hit: hit=%v err=%v", hit, err)
	}
	other := req
	other.Token = "b"
	if _, hit, _ := svc.ForwardCached(context.Background(), ScopeLoanStatistics, other); hit {
		t.Fatalf("another token must not share the cache entry")
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 backend calls, got %d", calls)
	}
}

func TestForwardCachedSkipsErrors(t *testing.T) {
	var calls int32
	svc := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"message":"Forbidden"}`)
	})
	req := backend.Request{Method: http.MethodGet, Path: backend.PathAdminDashboard, Token: "a", Query: url.Values{}}
	for i := 0; i < 2; i++ {
		resp, hit, err := svc.ForwardCached(context.Background(), ScopeAdminDashboard, req)
		if err != nil || hit || resp.Status != http.StatusForbidden {
			t.Fatalf("unexpected result hit=%v err=%v", hit, err)
		}
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("error responses must not be cached, got %d calls", calls)
	}
}

func TestForwardActionAuditsAndInvalidates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	svc := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"message":"Loan rejected"}`)
	})
	svc.Audit = repositories.AuditRepository{DB: db}

	ctx := context.Background()
	key := cache.Key(ScopeLoanStatistics, session.Fingerprint("tok"), "")
	_ = svc.Cache.Set(ctx, key, []byte(`{}`), time.Minute)

	mock.ExpectExec("INSERT INTO gateway_audit").
		WithArgs("req-1", session.Fingerprint("tok"), "9", "admin", "loan.reject", "POST", "/api/loans/7/reject", int64(7), 200, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	claims := session.Claims{}
	claims.UserID = "9"
	claims.Role = "admin"
	resp, err := svc.ForwardAction(ctx, Action{
		Name:       "loan.reject",
		TargetID:   7,
		Claims:     claims,
		Invalidate: []string{ScopeLoanStatistics},
	}, backend.Request{Method: http.MethodPost, Path: backend.LoanActionPath(7, "reject"), Token: "tok"})
	if err != nil || resp.Status != http.StatusOK {
		t.Fatalf("forward: %v", err)
	}
	if _, ok, _ := svc.Cache.Get(ctx, key); ok {
		t.Fatalf("statistics cache should be dropped after a successful action")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestForwardActionKeepsCacheOnFailure(t *testing.T) {
	svc := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"message":"Invalid"}`)
	})
	svc.Audit = repositories.AuditRepository{}
	ctx := context.Background()
	key := cache.Key(ScopeLoanStatistics, "x")
	_ = svc.Cache.Set(ctx, key, []byte(`{}`), time.Minute)

	resp, err := svc.ForwardAction(ctx, Action{Name: "loan.approve", Invalidate: []string{ScopeLoanStatistics}},
		backend.Request{Method: http.MethodPost, Path: backend.LoanActionPath(1, "approve"), Token: "tok"})
	if err != nil || resp.Status != http.StatusUnprocessableEntity {
		t.Fatalf("expected relayed 422, got %v %v", resp, err)
	}
	if _, ok, _ := svc.Cache.Get(ctx, key); !ok {
		t.Fatalf("cache must survive a rejected action")
	}
}
