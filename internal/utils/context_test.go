// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/go-support-portal/models"
)

func TestContextKeyString(t *testing.T) {
	assert.Equal(t, "testKey", contextKey("testKey").String())
	assert.Equal(t, "identity", IdentityCtxKey.String())
}

func TestGetIdentityFromContext(t *testing.T) {
	identity := &models.Identity{User: models.User{ID: 42}}
	ctx := WithIdentity(context.Background(), identity)

	got, ok := GetIdentityFromContext(ctx)
	assert.True(t, ok)
	assert.Same(t, identity, got)
}

func TestGetIdentityFromContext_Missing(t *testing.T) {
	_, ok := GetIdentityFromContext(context.Background())
	assert.False(t, ok)

	_, ok = GetIdentityFromContext(WithIdentity(context.Background(), nil))
	assert.False(t, ok)

	ctx := context.WithValue(context.Background(), IdentityCtxKey, "not an identity")
	_, ok = GetIdentityFromContext(ctx)
	assert.False(t, ok)
}
