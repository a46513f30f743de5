package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"cashloan/internal/domain"
	"cashloan/internal/domain/models"
	"cashloan/internal/listview"
	"cashloan/internal/session"
	"cashloan/internal/validate"
)

// Backend paths. The gateway serves the same ones.
const (
	PathLoans          = "/api/loans"
	PathLoanStatistics = "/api/loans/statistics"
	PathLenders        = "/api/lenders"
	PathLenderLoans    = "/api/lenders/me/loans"
	PathPayments       = "/api/payments"
	PathUsers          = "/api/users"
	PathUpdateContact  = "/api/settings/update-contact"
	PathAdminDashboard = "/api/admin/dashboard"
	PathLogin          = "/api/auth/login"
	PathLogout         = "/api/auth/logout"
	PathMe             = "/api/auth/me"
)

func LoanActionPath(id int64, action string) string {
	return PathLoans + "/" + strconv.FormatInt(id, 10) + "/" + action
}

func UserPath(id int64) string {
	return PathUsers + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) list(ctx context.Context, token, path string, q listview.Query, p listview.ParamNames) (*Response, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Token: token, Query: q.Values(p)})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ListLoans(ctx context.Context, token string, q listview.Query) (listview.Page[models.Loan], error) {
	resp, err := c.list(ctx, token, PathLoans, q, listview.LoanParams)
	if err != nil {
		return listview.Page[models.Loan]{}, err
	}
	return DecodePage[models.Loan](resp.Body, LoansKey)
}

func (c *Client) ListPayments(ctx context.Context, token string, q listview.Query) (listview.Page[models.Payment], error) {
	resp, err := c.list(ctx, token, PathPayments, q, listview.PaymentParams)
	if err != nil {
		return listview.Page[models.Payment]{}, err
	}
	return DecodePage[models.Payment](resp.Body, PaymentsKey)
}

func (c *Client) ListUsers(ctx context.Context, token string, q listview.Query) (listview.Page[models.User], error) {
	resp, err := c.list(ctx, token, PathUsers, q, listview.UserParams)
	if err != nil {
		return listview.Page[models.User]{}, err
	}
	return DecodePage[models.User](resp.Body, UsersKey)
}

func (c *Client) Lenders(ctx context.Context, token string) ([]models.Lender, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: PathLenders, Token: token})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	p, err := DecodePage[models.Lender](resp.Body, LendersKey)
	if err != nil {
		return nil, err
	}
	return p.Items, nil
}

// LenderLoans is the signed-in lender's whole portfolio in one response.
func (c *Client) LenderLoans(ctx context.Context, token string, q listview.Query) (listview.Page[models.Loan], error) {
	resp, err := c.list(ctx, token, PathLenderLoans, q, listview.ParamNames{})
	if err != nil {
		return listview.Page[models.Loan]{}, err
	}
	return DecodePage[models.Loan](resp.Body, LoansKey)
}

func (c *Client) LoanStatistics(ctx context.Context, token string) (models.LoanStatistics, error) {
	var out models.LoanStatistics
	err := c.object(ctx, token, PathLoanStatistics, "statistics", &out)
	return out, err
}

func (c *Client) AdminDashboard(ctx context.Context, token string) (models.AdminDashboard, error) {
	var out models.AdminDashboard
	err := c.object(ctx, token, PathAdminDashboard, "data", &out)
	return out, err
}

// Me is the signed-in user; the backend may wrap it in "user".
func (c *Client) Me(ctx context.Context, token string) (models.User, error) {
	var out models.User
	if token == "" {
		return out, domain.ErrUnauthorized
	}
	err := c.object(ctx, token, PathMe, "user", &out)
	return out, err
}

// object fetches a single JSON object, unwrapping key when present.
func (c *Client) object(ctx context.Context, token, path, key string, out any) error {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Token: token})
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	return DecodeObject(resp.Body, key, out)
}

// DecodeObject decodes body, or body[key] when the backend wrapped it.
func DecodeObject(body []byte, key string, out any) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return domain.MalformedResponseError{Err: err}
	}
	if v, ok := obj[key]; ok && key != "" {
		if v = bytes.TrimSpace(v); len(v) > 0 && v[0] == '{' {
			return DecodeJSON(v, out)
		}
	}
	return DecodeJSON(body, out)
}

// send validates body, posts it and decodes the ActionResult.
func (c *Client) send(ctx context.Context, method, path, token string, body any) (models.ActionResult, error) {
	var out models.ActionResult
	if body != nil {
		if err := validate.Struct(body); err != nil {
			return out, err
		}
	}
	req, err := JSONRequest(method, path, token, body)
	if err != nil {
		return out, err
	}
	err = c.call(ctx, req, &out)
	return out, err
}

func (c *Client) Approve(ctx context.Context, token string, id int64, body models.ApproveRequest) (models.ActionResult, error) {
	return c.send(ctx, http.MethodPost, LoanActionPath(id, "approve"), token, body)
}

func (c *Client) Reject(ctx context.Context, token string, id int64, body models.RejectRequest) (models.ActionResult, error) {
	return c.send(ctx, http.MethodPost, LoanActionPath(id, "reject"), token, body)
}

func (c *Client) Activate(ctx context.Context, token string, id int64, body models.ActivateRequest) (models.ActionResult, error) {
	return c.send(ctx, http.MethodPost, LoanActionPath(id, "activate"), token, body)
}

func (c *Client) RecordPayment(ctx context.Context, token string, body models.PaymentRequest) (models.ActionResult, error) {
	return c.send(ctx, http.MethodPost, PathPayments, token, body)
}

func (c *Client) UpdateUser(ctx context.Context, token string, id int64, body models.UserUpdate) (models.ActionResult, error) {
	return c.send(ctx, http.MethodPut, UserPath(id), token, body)
}

func (c *Client) UpdateContact(ctx context.Context, token string, body models.ContactUpdate) (models.ActionResult, error) {
	body.Normalize()
	return c.send(ctx, http.MethodPut, PathUpdateContact, token, body)
}

func (c *Client) Login(ctx context.Context, body models.LoginRequest) (models.LoginResponse, error) {
	var out models.LoginResponse
	if err := validate.Struct(body); err != nil {
		return out, err
	}
	req, err := JSONRequest(http.MethodPost, PathLogin, "", body)
	if err != nil {
		return out, err
	}
	if err := c.call(ctx, req, &out); err != nil {
		return out, err
	}
	if out.Token == "" {
		return out, domain.MalformedResponseError{Err: errNoToken}
	}
	return out, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.call(ctx, Request{Method: http.MethodPost, Path: PathLogout, Token: token}, nil)
}

// Fetchers bind a list call to a session. The token is read once per request;
// a missing token fails before anything is sent.

func LoanFetcher(c *Client, src session.Source) listview.Fetcher[models.Loan] {
	return fetcher(src, c.ListLoans)
}

func LenderLoanFetcher(c *Client, src session.Source) listview.Fetcher[models.Loan] {
	return fetcher(src, c.LenderLoans)
}

func PaymentFetcher(c *Client, src session.Source) listview.Fetcher[models.Payment] {
	return fetcher(src, c.ListPayments)
}

func UserFetcher(c *Client, src session.Source) listview.Fetcher[models.User] {
	return fetcher(src, c.ListUsers)
}

func fetcher[T any](src session.Source, list func(context.Context, string, listview.Query) (listview.Page[T], error)) listview.Fetcher[T] {
	return listview.FetchFunc[T](func(ctx context.Context, q listview.Query) (listview.Page[T], error) {
		token, ok := tokenOf(src)
		if !ok {
			return listview.Page[T]{}, domain.ErrUnauthorized
		}
		return list(ctx, token, q)
	})
}

func tokenOf(src session.Source) (string, bool) {
	if src == nil {
		return "", false
	}
	return src.Token()
}
