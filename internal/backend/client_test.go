package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cashloan/internal/domain"
	"cashloan/internal/domain/models"
	"cashloan/internal/listview"
	"cashloan/internal/session"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/", Timeout: 2 * time.Second, RetryMax: 2}), srv
}

func TestListLoansForwardsQueryAndToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/loans" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token")
		}
		q := r.URL.Query()
		if q.Get("status") != "approved" || q.Get("per_page") != "10" || q.Get("sort_by") != "created_at" {
			t.Errorf("unexpected query %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"loans":{"data":[{"id":1,"status":"approved","principal_amount":"5000.00","borrower":{"first_name":"Jane","last_name":"Doe"}}],"current_page":1,"per_page":10,"total":21,"last_page":3}}`)
	})

	q := listview.NewQuery(10)
	q.SetFilter("status", "approved")
	q.ToggleSort("created_at")
	p, err := c.ListLoans(context.Background(), "tok", q)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(p.Items) != 1 || p.TotalItems != 21 || p.TotalPages != 3 {
		t.Fatalf("unexpected page %+v", p)
	}
	if p.Items[0].BorrowerName() != "Jane Doe" || p.Items[0].PrincipalAmount.Float() != 5000 {
		t.Fatalf("unexpected loan %+v", p.Items[0])
	}
}

func TestErrorRelaysJSONMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"message":"The amount field is required.","errors":{"amount":["required"]}}`)
	})
	_, err := c.RecordPayment(context.Background(), "tok", models.PaymentRequest{LoanID: 1, Amount: 10})
	var ue domain.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if ue.Status != 422 || ue.Message != "The amount field is required." || ue.Details == nil {
		t.Fatalf("unexpected upstream error %+v", ue)
	}
}

func TestNonJSONErrorBecomesServerError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>oops</html>")
	})
	_, err := c.Approve(context.Background(), "tok", 4, models.ApproveRequest{ApprovedAmount: 100})
	if err == nil || err.Error() != "Server error: Bad Gateway" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestBackend401IsUnauthorized(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Unauthenticated."}`)
	})
	_, err := c.ListUsers(context.Background(), "tok", listview.NewQuery(10))
	if !domain.IsUnauthorized(err) || err.Error() != "Unauthenticated." {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestMalformedSuccessBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data": [`)
	})
	_, err := c.ListPayments(context.Background(), "tok", listview.NewQuery(10))
	if !domain.IsMalformed(err) {
		t.Fatalf("expected malformed response, got %v", err)
	}
}

func TestReadsRetryMutationsDoNot(t *testing.T) {
	var gets, posts int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			if atomic.AddInt32(&gets, 1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"lenders":[{"id":2,"first_name":"Lee","last_name":"Ong"}]}`)
			return
		}
		atomic.AddInt32(&posts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	lenders, err := c.Lenders(context.Background(), "tok")
	if err != nil || len(lenders) != 1 || lenders[0].FullName() != "Lee Ong" {
		t.Fatalf("expected lenders after retry, got %v %v", lenders, err)
	}
	if atomic.LoadInt32(&gets) != 2 {
		t.Fatalf("expected one retry, got %d calls", gets)
	}

	reason := "x"
	_, err = c.Reject(context.Background(), "tok", 1, models.RejectRequest{Reason: &reason})
	if !domain.IsUpstream(err) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if atomic.LoadInt32(&posts) != 1 {
		t.Fatalf("mutations must not be retried, got %d calls", posts)
	}
}

func TestValidationStopsRequest(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	_, err := c.UpdateContact(context.Background(), "tok", models.ContactUpdate{FirstName: "Jane", LastName: "Doe", Phone: "123"})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("no request may be sent, got %d", calls)
	}
}

func TestFetcherWithoutTokenSendsNothing(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	f := LoanFetcher(c, session.NewMemoryStore(""))
	_, err := f.Fetch(context.Background(), listview.NewQuery(10))
	if !domain.IsUnauthorized(err) || atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("expected unauthorized with no calls, got %v (%d calls)", err, calls)
	}
}

func TestTimeoutIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()
	c := New(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/api/payments"})
	if !domain.IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestLoginRequiresToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body["password"] == "good" {
			_, _ = io.WriteString(w, `{"token":"abc","user":{"id":1,"first_name":"Jane"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"message":"ok"}`)
	})
	out, err := c.Login(context.Background(), models.LoginRequest{Email: "a@b.c", Password: "good"})
	if err != nil || out.Token != "abc" {
		t.Fatalf("login: %v", err)
	}
	if _, err := c.Login(context.Background(), models.LoginRequest{Email: "a@b.c", Password: "bad"}); !domain.IsMalformed(err) {
		t.Fatalf("expected malformed response without token, got %v", err)
	}
}
