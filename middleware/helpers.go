package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

const jwtClaimSubject = "sub"

// GetSubjectFromContext returns the "sub" claim of the verified token, i.e.
// who is submitting results.
func GetSubjectFromContext(ctx context.Context) (string, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", errors.New("user claims not found in context or invalid type")
	}

	subject, ok := claims[jwtClaimSubject]
	if !ok {
		return "", fmt.Errorf("missing '%s' claim in token", jwtClaimSubject)
	}

	subjectStr, ok := subject.(string)
	if !ok || subjectStr == "" {
		return "", fmt.Errorf("invalid type for '%s' claim: expected non-empty string, got %T", jwtClaimSubject, subject)
	}
	return subjectStr, nil
}
