package security

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"blogcore/internal/common"
	"blogcore/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	jwx "github.com/lestrrat-go/jwx/v2/jwt"
)

// AuthCookieName is the session cookie carrying the token. Its attributes
// (HTTP-only, secure, strict same-site, expiry = token lifetime) are part
// of the transport contract.
const AuthCookieName = "auth_token"

// Identity is the product of validating a session token: the user id and
// the role claims embedded at issuance time. Role claims reflect roles at
// issuance and are deliberately not re-checked against the store per
// request; a revoked role stays effective until the token expires.
type Identity struct {
	UserID int64
	Roles  []string
}

type TokenConfig struct {
	Secret   []byte
	Lifetime time.Duration
	Issuer   string
	Audience string
}

// TokenService mints and validates signed session tokens. The signing key
// and lifetime are injected at construction, never read from a global.
type TokenService struct {
	auth *jwtauth.JWTAuth
	cfg  TokenConfig
}

func NewTokenService(cfg TokenConfig) *TokenService {
	// Issuer and audience are enforced on every verification; expiry is
	// checked with zero clock-skew tolerance (jwx default).
	auth := jwtauth.New("HS256", cfg.Secret, nil,
		jwx.WithIssuer(cfg.Issuer),
		jwx.WithAudience(cfg.Audience),
	)
	return &TokenService{auth: auth, cfg: cfg}
}

// JWTAuth exposes the verifier used by the router's token-extraction middleware.
func (s *TokenService) JWTAuth() *jwtauth.JWTAuth {
	return s.auth
}

// Lifetime is the fixed validity window of issued tokens. The auth cookie
// expiry must match it.
func (s *TokenService) Lifetime() time.Duration {
	return s.cfg.Lifetime
}

// Issue mints a signed token binding the user id and the role set at issuance.
func (s *TokenService) Issue(user *model.User, roleNames []string) (string, error) {
	if roleNames == nil {
		roleNames = []string{}
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(user.ID, 10),
		"roles": roleNames,
		"iss":   s.cfg.Issuer,
		"aud":   s.cfg.Audience,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.Lifetime).Unix(),
		"jti":   uuid.NewString(),
	}
	_, tokenString, err := s.auth.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("security.TokenService.Issue: %w", err)
	}
	return tokenString, nil
}

// Validate verifies signature, issuer, audience and expiry, and returns the
// embedded identity. Any failure yields ErrUnauthorized; an unverified token
// is never partially trusted.
func (s *TokenService) Validate(tokenString string) (Identity, error) {
	token, err := jwtauth.VerifyToken(s.auth, tokenString)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid token: %w", common.ErrUnauthorized)
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return Identity{}, fmt.Errorf("unreadable token claims: %w", common.ErrUnauthorized)
	}
	return IdentityFromClaims(claims)
}

// IdentityFromClaims extracts the identity from already-verified claims,
// e.g. the ones the verifier middleware put in the request context.
func IdentityFromClaims(claims map[string]interface{}) (Identity, error) {
	sub, ok := claims["sub"].(string)
	if !ok {
		return Identity{}, fmt.Errorf("sub claim is missing or not a string: %w", common.ErrUnauthorized)
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return Identity{}, fmt.Errorf("sub claim is not a user id: %w", common.ErrUnauthorized)
	}

	var roles []string
	switch rawRoles := claims["roles"].(type) {
	case []interface{}:
		for _, r := range rawRoles {
			name, ok := r.(string)
			if !ok {
				return Identity{}, fmt.Errorf("roles claim holds a non-string entry: %w", common.ErrUnauthorized)
			}
			roles = append(roles, name)
		}
	case []string:
		roles = rawRoles
	case nil:
		// Authenticated but role-less identity.
	default:
		return Identity{}, fmt.Errorf("roles claim is malformed: %w", common.ErrUnauthorized)
	}

	return Identity{UserID: userID, Roles: roles}, nil
}
