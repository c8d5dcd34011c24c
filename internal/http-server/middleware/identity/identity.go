// Package identity authenticates requests with HS256 bearer tokens and keeps
// the caller in the request context.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"tutor-portal/internal/models"
	"tutor-portal/pkg/logger/sl"
	"tutor-portal/pkg/response"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

type User struct {
	ID   uuid.UUID
	Role models.Role
}

type ctxKey struct{}

// Sign issues a token for userID. The portal itself does not log users in;
// this serves the seeding tools and tests.
func Sign(secret, issuer string, userID uuid.UUID, role models.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func Parse(secret, issuer, tokenString string) (*User, error) {
	const op = "identity.Parse"

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, jwt.ErrTokenInvalidClaims)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%s: subject: %w", op, err)
	}

	switch claims.Role {
	case models.RoleAdmin, models.RoleTeacher, models.RoleParent:
	default:
		return nil, fmt.Errorf("%s: unknown role %q", op, claims.Role)
	}

	return &User{ID: id, Role: claims.Role}, nil
}

// New rejects requests without a valid bearer token.
func New(log *slog.Logger, secret, issuer string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		log := log.With(slog.String("component", "middleware/identity"))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, r)
				return
			}

			user, err := Parse(secret, issuer, raw)
			if err != nil {
				log.Warn("rejected token",
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err),
				)
				unauthorized(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func RequireRole(roles ...models.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := FromContext(r.Context())
			if !ok {
				unauthorized(w, r)
				return
			}

			if !slices.Contains(roles, user.Role) {
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error(string(response.FORBIDDEN), "role is not allowed here"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

func FromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(ctxKey{}).(*User)
	return user, ok && user != nil
}

// Current is FromContext for handlers mounted behind New.
func Current(ctx context.Context) (*User, error) {
	user, ok := FromContext(ctx)
	if !ok {
		return nil, response.ErrUnauthorized
	}
	return user, nil
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusUnauthorized)
	render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "missing or invalid bearer token"))
}
