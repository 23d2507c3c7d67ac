package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

var (
	ErrNoToken      = errors.New("no session token")
	ErrInvalidToken = errors.New("invalid session token")
)

// Viewer is the authenticated user behind a request.
type Viewer struct {
	UserID      int64
	Username    string
	Role        string
	Permissions []string
}

// ReportPermission names the permission granting access to a report page.
func ReportPermission(report string) string {
	return "view_" + report + "_reports"
}

// CanView reports whether the viewer may open the named report: admins and
// managers always can, other roles need view_<report>_reports.
func (v *Viewer) CanView(report string) bool {
	if v == nil {
		return false
	}
	switch strings.ToLower(v.Role) {
	case RoleAdmin, RoleManager:
		return true
	}
	return slices.Contains(v.Permissions, ReportPermission(report))
}

type Claims struct {
	UserID      int64    `json:"uid"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 session tokens issued by the station back office.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

func (v *Verifier) Verify(token string) (*Viewer, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoToken
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Role == "" {
		return nil, ErrInvalidToken
	}
	return &Viewer{
		UserID:      claims.UserID,
		Username:    claims.Username,
		Role:        claims.Role,
		Permissions: claims.Permissions,
	}, nil
}

// Sign issues a token for viewer. Report pages never call it; it backs the
// tests and local tooling.
func (v *Verifier) Sign(viewer Viewer, ttl time.Duration) (string, error) {
	now := v.now()
	claims := Claims{
		UserID:      viewer.UserID,
		Username:    viewer.Username,
		Role:        viewer.Role,
		Permissions: viewer.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   viewer.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// TokenFromRequest prefers an Authorization bearer token over the cookie.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

type viewerKey struct{}

func WithViewer(ctx context.Context, viewer *Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, viewer)
}

func FromContext(ctx context.Context) (*Viewer, bool) {
	viewer, ok := ctx.Value(viewerKey{}).(*Viewer)
	return viewer, ok && viewer != nil
}
