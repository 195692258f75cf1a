package github

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	apperrors "github.com/g30r93g/PRereq/internal/errors"
)

// GitHub rejects app JWTs that live longer than ten minutes.
const (
	MaxJWTDuration = 10 * time.Minute
	jwtDuration    = 9 * time.Minute
	jwtClockSkew   = 30 * time.Second
)

type AppsService interface {
	CreateInstallationToken(ctx context.Context, id int64, opts *github.InstallationTokenOptions) (*github.InstallationToken, *github.Response, error)
}

// JWTGenerator signs the short-lived RS256 tokens that authenticate as the app.
type JWTGenerator struct {
	appID      string
	privateKey *rsa.PrivateKey
	now        func() time.Time
}

func NewJWTGenerator(appID int64, privateKeyPEM []byte) (*JWTGenerator, error) {
	if appID <= 0 {
		return nil, apperrors.ErrConfigInvalid.WithError(fmt.Errorf("app ID must be positive"))
	}

	privateKey, err := parsePrivateKey(privateKeyPEM)
	if err != nil {
		return nil, apperrors.ErrPrivateKeyInvalid.WithError(err)
	}

	return &JWTGenerator{
		appID:      strconv.FormatInt(appID, 10),
		privateKey: privateKey,
		now:        time.Now,
	}, nil
}

func (g *JWTGenerator) GenerateToken(duration time.Duration) (string, time.Time, error) {
	if duration <= 0 {
		return "", time.Time{}, fmt.Errorf("duration must be positive")
	}
	if duration > MaxJWTDuration {
		return "", time.Time{}, fmt.Errorf("duration %v exceeds maximum allowed %v", duration, MaxJWTDuration)
	}

	now := g.now()
	expiresAt := now.Add(duration)

	claims := jwt.RegisteredClaims{
		Issuer:    g.appID,
		IssuedAt:  jwt.NewNumericDate(now.Add(-jwtClockSkew)),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(g.privateKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Token implements oauth2.TokenSource so the app JWT can drive an http.Client.
func (g *JWTGenerator) Token() (*oauth2.Token, error) {
	signed, expiresAt, err := g.GenerateToken(jwtDuration)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: signed, TokenType: "Bearer", Expiry: expiresAt}, nil
}

func parsePrivateKey(pemData []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	if block.Type == "RSA PRIVATE KEY" {
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is not RSA")
	}

	return rsaKey, nil
}

// installationTokenSource exchanges the app JWT for an installation token.
// Wrap it in oauth2.ReuseTokenSource so the exchange happens once per expiry.
type installationTokenSource struct {
	apps           AppsService
	installationID int64
}

func (s *installationTokenSource) Token() (*oauth2.Token, error) {
	// oauth2.TokenSource has no context; the exchange is bounded instead.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tok, _, err := s.apps.CreateInstallationToken(ctx, s.installationID, nil)
	if err != nil {
		return nil, apperrors.ErrInstallationToken.
			WithError(err).
			WithContext("installation_id", s.installationID)
	}

	return &oauth2.Token{
		AccessToken: tok.GetToken(),
		TokenType:   "token",
		Expiry:      tok.GetExpiresAt().Time,
	}, nil
}
