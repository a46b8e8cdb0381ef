// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestEmailTakenQueries_ParametersAreSingleTyped pins the shape of the
email-conflict statements.

The account id column is uuid, so a parameter compared against it must never
also appear in a text comparison within the same statement — server-side
parameter type inference would reject the statement at parse time, failing
every registration and profile update.
*/
func TestEmailTakenQueries_ParametersAreSingleTyped(t *testing.T) {
	// The unconditional statement takes the email only.
	assert.NotContains(t, emailTakenQuery, "$2")

	// The excluding statement compares $2 against id and nothing else;
	// folding the empty-exclusion shortcut back in would pin $2 to text.
	assert.Contains(t, emailTakenExcludingQuery, "id <> $2")
	assert.NotContains(t, emailTakenExcludingQuery, "$2 = ''")
	assert.Equal(t, 1, strings.Count(emailTakenExcludingQuery, "$2"))
}
