package utils

import (
	"context"
	"errors"

	"consultancy-portal/internal/shared/contextkeys"
)

// Common context errors
var (
	ErrUserIDNotFound     = errors.New("userID not found in context")
	ErrUserIDNotString    = errors.New("userID in context is not a string")
	ErrUserRoleNotFound   = errors.New("userRole not found in context")
	ErrUserRoleNotString  = errors.New("userRole in context is not a string")
	ErrSessionIDNotFound  = errors.New("sessionID not found in context")
	ErrSessionIDNotString = errors.New("sessionID in context is not a string")
	ErrRequestIDNotFound  = errors.New("requestID not found in context")
	ErrRequestIDNotString = errors.New("requestID in context is not a string")
	ErrUserEmailNotFound  = errors.New("userEmail not found in context")
	ErrUserEmailNotString = errors.New("userEmail in context is not a string")
)

func stringFromContext(ctx context.Context, key interface{}, missing, notString error) (string, error) {
	val := ctx.Value(key)
	if val == nil {
		return "", missing
	}
	s, ok := val.(string)
	if !ok {
		return "", notString
	}
	return s, nil
}

// GetUserIDFromContext retrieves the authenticated user ID from the context.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	return stringFromContext(ctx, contextkeys.UserIDKey, ErrUserIDNotFound, ErrUserIDNotString)
}

// GetUserRoleFromContext retrieves the authenticated user's role from the context.
func GetUserRoleFromContext(ctx context.Context) (string, error) {
	return stringFromContext(ctx, contextkeys.UserRoleKey, ErrUserRoleNotFound, ErrUserRoleNotString)
}

// GetSessionIDFromContext retrieves the pagination session ID from the context.
func GetSessionIDFromContext(ctx context.Context) (string, error) {
	return stringFromContext(ctx, contextkeys.SessionIDKey, ErrSessionIDNotFound, ErrSessionIDNotString)
}

func GetRequestIDFromContext(ctx context.Context) (string, error) {
	return stringFromContext(ctx, contextkeys.RequestIDKey, ErrRequestIDNotFound, ErrRequestIDNotString)
}

func GetUserEmailFromContext(ctx context.Context) (string, error) {
	return stringFromContext(ctx, contextkeys.UserEmailKey, ErrUserEmailNotFound, ErrUserEmailNotString)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextkeys.UserIDKey, userID)
}

func WithUserRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, contextkeys.UserRoleKey, role)
}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, contextkeys.SessionIDKey, sessionID)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextkeys.RequestIDKey, requestID)
}

func WithUserEmail(ctx context.Context, userEmail string) context.Context {
	return context.WithValue(ctx, contextkeys.UserEmailKey, userEmail)
}

func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, contextkeys.ComponentKey, component)
}

func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, contextkeys.OperationKey, operation)
}

// GetUserIDOrDefault returns the user ID or def when absent
func GetUserIDOrDefault(ctx context.Context, def string) string {
	if id, err := GetUserIDFromContext(ctx); err == nil && id != "" {
		return id
	}
	return def
}

// GetSessionIDOrDefault returns the session ID or def when absent
func GetSessionIDOrDefault(ctx context.Context, def string) string {
	if id, err := GetSessionIDFromContext(ctx); err == nil && id != "" {
		return id
	}
	return def
}

func HasUserID(ctx context.Context) bool {
	_, err := GetUserIDFromContext(ctx)
	return err == nil
}
