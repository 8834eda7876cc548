package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SpreadsheetsScope grants read/write access to spreadsheets.
const SpreadsheetsScope = sheets.SpreadsheetsScope

var ErrNoCredentials = errors.New("no google credentials configured")

// ServiceAccount is a parsed Google service-account key.
type ServiceAccount struct {
	ClientEmail string `json:"client_email"`
	ProjectID   string `json:"project_id"`

	raw []byte
}

// LoadServiceAccount prefers inline JSON and falls back to a key file on disk.
func LoadServiceAccount(inlineJSON string, path string) (ServiceAccount, error) {
	var raw []byte
	switch {
	case inlineJSON != "":
		raw = []byte(inlineJSON)
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return ServiceAccount{}, fmt.Errorf("read credentials file %s: %w", path, err)
		}
		raw = data
	default:
		return ServiceAccount{}, ErrNoCredentials
	}

	var sa ServiceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return ServiceAccount{}, fmt.Errorf("parse google credentials: %w", err)
	}
	sa.raw = raw
	return sa, nil
}

// TokenSource returns an auto-refreshing token source for scopes.
func (sa ServiceAccount) TokenSource(ctx context.Context, scopes ...string) (oauth2.TokenSource, error) {
	creds, err := google.CredentialsFromJSON(ctx, sa.raw, scopes...)
	if err != nil {
		return nil, fmt.Errorf("build google credentials: %w", err)
	}
	return creds.TokenSource, nil
}

// SheetsService dials the Sheets v4 API as this account.
func (sa ServiceAccount) SheetsService(ctx context.Context) (*sheets.Service, error) {
	ts, err := sa.TokenSource(ctx, SpreadsheetsScope)
	if err != nil {
		return nil, err
	}
	srv, err := sheets.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return srv, nil
}
