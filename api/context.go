package api

import (
	"context"
	"errors"
)

type keyType string

const (
	adminEmailKey keyType = "adminEmail"
)

// ctxWithAdminEmail adds the verified administrator email to the context
func ctxWithAdminEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, adminEmailKey, email)
}

// ctxGetAdminEmail retrieves the email the admin gate admitted
func ctxGetAdminEmail(ctx context.Context) (string, error) {
	return ctxGetStringValue(ctx, adminEmailKey)
}

// ctxGetStringValue is a helper function to retrieve string values from the context by key
func ctxGetStringValue(ctx context.Context, key keyType) (string, error) {
	if ctxValue := ctx.Value(key); ctxValue == nil {
		return "", errors.New("key not found in context")
	} else if valueAsString, ok := ctxValue.(string); !ok {
		return "", errors.New("value is not of type `string`")
	} else {
		return valueAsString, nil
	}
}
