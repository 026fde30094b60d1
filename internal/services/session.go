package services

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rivermart/storefront-backend/internal/apierr"
	"github.com/rivermart/storefront-backend/internal/logger"
	"github.com/rivermart/storefront-backend/internal/requestdata"
)

// SessionService resolves a request's identity from a bearer token. The cart
// core only tests presence of a resolved identity; issuing and refreshing
// tokens belongs to the identity provider.
type SessionService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type sessionService struct {
	log       *logger.Logger
	secretKey []byte
}

func NewSessionService(log *logger.Logger, secretKey string) SessionService {
	return &sessionService{
		log:       log.With("service", "SessionService"),
		secretKey: []byte(secretKey),
	}
}

func (ss *sessionService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ss.secretKey, nil
	})
	if err != nil || !token.Valid {
		return ctx, apierr.Unauthenticated(fmt.Errorf("invalid session token: %w", err))
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return ctx, apierr.Unauthenticated(fmt.Errorf("session token missing subject"))
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return ctx, apierr.Unauthenticated(fmt.Errorf("session token subject is not a user id: %w", err))
	}

	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}), nil
}
