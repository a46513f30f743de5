package cli

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"cashloan/internal/backend"
	"cashloan/internal/domain"
	"cashloan/internal/session"

	"go.uber.org/zap"
)

var errNotLoggedIn = errors.New("not logged in, run 'loanctl login' first")

// getSession returns the token store selected by --token-file.
func getSession() (session.FileStore, error) {
	if strings.TrimSpace(tokenFile) != "" {
		return session.FileStore{Path: tokenFile}, nil
	}
	store, err := session.DefaultFileStore()
	if err != nil {
		return session.FileStore{}, fmt.Errorf("failed to locate token file: %w", err)
	}
	return store, nil
}

// getAPIClient builds a client for the gateway named by --gateway.
func getAPIClient() (*backend.Client, error) {
	u, err := url.Parse(strings.TrimSpace(gatewayURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid gateway URL %q", gatewayURL)
	}
	logger := zap.NewNop()
	if verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}
	return backend.New(backend.Options{
		BaseURL:  u.String(),
		Timeout:  timeout,
		RetryMax: 2,
		Logger:   logger,
	}), nil
}

// getAuthedClient is getAPIClient plus a session that must hold a token.
func getAuthedClient() (*backend.Client, session.FileStore, string, error) {
	store, err := getSession()
	if err != nil {
		return nil, store, "", err
	}
	token, ok := store.Token()
	if !ok {
		return nil, store, "", errNotLoggedIn
	}
	client, err := getAPIClient()
	if err != nil {
		return nil, store, "", err
	}
	return client, store, token, nil
}

// handleAPIError clears a rejected session and turns domain errors into the
// short message shown to the user.
func handleAPIError(store session.Store, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsUnauthorized(err) {
		if store != nil {
			_ = store.Clear()
		}
		return fmt.Errorf("session expired or invalid, run 'loanctl login' again: %w", err)
	}
	var ue domain.UpstreamError
	if errors.As(err, &ue) {
		if details := fieldErrors(ue.Details); details != "" {
			return fmt.Errorf("%s (%s)", ue.Error(), details)
		}
	}
	return err
}

// fieldErrors flattens a Laravel "errors" object into "field: msg; field: msg".
func fieldErrors(details any) string {
	m, ok := details.(map[string]any)
	if !ok || len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := m[k].(type) {
		case []any:
			msgs := make([]string, 0, len(v))
			for _, x := range v {
				msgs = append(msgs, fmt.Sprint(x))
			}
			parts = append(parts, k+": "+strings.Join(msgs, ", "))
		default:
			parts = append(parts, fmt.Sprintf("%s: %v", k, v))
		}
	}
	return strings.Join(parts, "; ")
}
