// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

package uuidv7_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanphan/passgate/pkg/uuidv7"
)

func TestNew(t *testing.T) {
	first := uuidv7.New()
	second := uuidv7.New()

	assert.True(t, uuidv7.IsValid(first))
	assert.True(t, uuidv7.IsValid(second))
	assert.NotEqual(t, first, second)

	// Version nibble of a v7 UUID.
	assert.Equal(t, byte('7'), first[14])
}

func TestIsValid(t *testing.T) {
	assert.False(t, uuidv7.IsValid(""))
	assert.False(t, uuidv7.IsValid("not-a-uuid"))
	assert.True(t, uuidv7.IsValid("018f6d4e-1db0-7e4b-9a57-3f3c1c7b2a10"))
}
