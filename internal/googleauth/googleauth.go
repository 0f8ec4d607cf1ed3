// Package googleauth exchanges the shared service-account credential for
// bearer tokens scoped to the spreadsheet and file-storage APIs.
package googleauth

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	drive "google.golang.org/api/drive/v3"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/maayanb/amuta-ledger/internal/domain"
)

// storageScope grants object read/write on Cloud Storage for the alternate
// file store backend.
const storageScope = "https://www.googleapis.com/auth/devstorage.read_write"

// Scopes cover both external stores with the single shared credential.
var Scopes = []string{sheets.SpreadsheetsScope, drive.DriveScope, storageScope}

// Credentials identifies the service account. PrivateKey is accepted as it
// arrives from the environment: possibly quote-wrapped and with literal \n
// sequences instead of newlines.
type Credentials struct {
	Email      string
	PrivateKey string
}

// NormalizePrivateKey strips wrapping quotes and converts literal \n
// sequences into real newlines so the PEM block parses.
func NormalizePrivateKey(key string) string {
	key = strings.TrimSpace(key)
	key = strings.Trim(key, `"`)
	return strings.ReplaceAll(key, `\n`, "\n")
}

// Validate checks that the credential carries an email and a parseable PEM
// private key. Failures wrap domain.ErrAuth.
func (c Credentials) Validate() error {
	if c.Email == "" {
		return fmt.Errorf("%w: missing service account email", domain.ErrAuth)
	}

	block, _ := pem.Decode([]byte(NormalizePrivateKey(c.PrivateKey)))
	if block == nil {
		return fmt.Errorf("%w: private key is not valid PEM", domain.ErrAuth)
	}
	if _, err := x509.ParsePKCS8PrivateKey(block.Bytes); err != nil {
		if _, err1 := x509.ParsePKCS1PrivateKey(block.Bytes); err1 != nil {
			return fmt.Errorf("%w: cannot parse private key: %v", domain.ErrAuth, err)
		}
	}
	return nil
}

// TokenSource builds a signed-assertion token source and performs one eager
// exchange so a rejected credential fails here rather than on first use.
// There is no retry at this layer; callers retry the operations that depend
// on it.
func (c Credentials) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	cfg := &jwt.Config{
		Email:      c.Email,
		PrivateKey: []byte(NormalizePrivateKey(c.PrivateKey)),
		Scopes:     Scopes,
		TokenURL:   google.JWTTokenURL,
	}

	ts := cfg.TokenSource(ctx)
	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange rejected: %v", domain.ErrAuth, err)
	}
	return oauth2.ReuseTokenSource(token, ts), nil
}

// HTTPClient wraps the token source in an authenticated HTTP client for the
// Google API services.
func (c Credentials) HTTPClient(ctx context.Context) (*http.Client, error) {
	ts, err := c.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}
