package models

import (
	"errors"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/goccy/go-json"
	"github.com/livekit/protocol/auth"
)

var ErrInvalidCredential = errors.New("invalid join credential")

// JoinClaims are the claims of a livekit access token we care about.
type JoinClaims struct {
	jwt.Claims
	Name     string           `json:"name,omitempty"`
	Video    *auth.VideoGrant `json:"video,omitempty"`
	Metadata string           `json:"metadata,omitempty"`
}

func (c *JoinClaims) Identity() string {
	return c.Subject
}

func (c *JoinClaims) ExpiresAt() time.Time {
	if c.Expiry == nil {
		return time.Time{}
	}
	return c.Expiry.Time()
}

func (c *JoinClaims) JoinMetadata() (*JoinMetadata, error) {
	md := new(JoinMetadata)
	if c.Metadata == "" {
		return md, nil
	}
	if err := json.Unmarshal([]byte(c.Metadata), md); err != nil {
		return nil, err
	}
	return md, nil
}

// VerifyJoinCredential checks the signature, issuer and lifetime of token.
func (m *AuthModel) VerifyJoinCredential(token string) (*JoinClaims, error) {
	info := m.app.LivekitInfo
	if info.ApiKey == "" || info.Secret == "" {
		return nil, ErrCredentialsNotConfigured
	}

	tok, err := jwt.ParseSigned(token, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return nil, errors.Join(ErrInvalidCredential, err)
	}

	out := new(JoinClaims)
	if err = tok.Claims([]byte(info.Secret), out); err != nil {
		return nil, errors.Join(ErrInvalidCredential, err)
	}

	err = out.Claims.Validate(jwt.Expected{
		Issuer: info.ApiKey,
		Time:   time.Now(),
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidCredential, err)
	}
	return out, nil
}

// ParseJoinClaimsUnverified reads the claims without checking the signature.
// Clients that don't hold the signing secret use it to learn their own
// identity and expiry.
func ParseJoinClaimsUnverified(token string) (*JoinClaims, error) {
	tok, err := jwt.ParseSigned(token, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return nil, err
	}
	out := new(JoinClaims)
	if err = tok.UnsafeClaimsWithoutVerification(out); err != nil {
		return nil, err
	}
	return out, nil
}
