// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnect_InvalidInput(t *testing.T) {
	ctx := context.Background()

	t.Run("empty URL is rejected", func(t *testing.T) {
		_, err := Connect(ctx, "")
		assert.Error(t, err)
	})

	t.Run("malformed URL is rejected", func(t *testing.T) {
		_, err := Connect(ctx, "not a url ://")
		assert.Error(t, err)
	})
}
