package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rivermart/storefront-backend/internal/apierr"
	"github.com/rivermart/storefront-backend/internal/logger"
	"github.com/rivermart/storefront-backend/internal/requestdata"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestSetContextFromToken(t *testing.T) {
	ss := NewSessionService(logger.NewNop(), testSecret)
	userID := uuid.New()

	tokenString := signToken(t, testSecret, jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	ctx, err := ss.SetContextFromToken(context.Background(), tokenString)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		t.Fatalf("expected request data on context")
	}
	if rd.UserID != userID {
		t.Fatalf("expected user %s, got %s", userID, rd.UserID)
	}
	if rd.TokenString != tokenString {
		t.Fatalf("token string not carried")
	}
}

func TestSetContextFromTokenRejects(t *testing.T) {
	ss := NewSessionService(logger.NewNop(), testSecret)
	userID := uuid.New()

	cases := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{
			name: "wrong_secret",
			token: signToken(t, "other-secret", jwt.MapClaims{
				"sub": userID.String(),
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
		{
			name: "expired",
			token: signToken(t, testSecret, jwt.MapClaims{
				"sub": userID.String(),
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
		},
		{
			name: "missing_subject",
			token: signToken(t, testSecret, jwt.MapClaims{
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
		{
			name: "subject_not_uuid",
			token: signToken(t, testSecret, jwt.MapClaims{
				"sub": "user-42",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, err := ss.SetContextFromToken(context.Background(), tc.token)
			if err == nil {
				t.Fatalf("expected rejection")
			}
			if !apierr.IsCode(err, apierr.CodeUnauthenticated) {
				t.Fatalf("expected %s, got %v", apierr.CodeUnauthenticated, err)
			}
			if requestdata.GetRequestData(ctx) != nil {
				t.Fatalf("rejected token must not attach identity")
			}
		})
	}
}
