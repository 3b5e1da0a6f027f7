// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identitycmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/fitmate/internal/identity"
)

func TestReadPassword(t *testing.T) {
	password, err := readPassword(strings.NewReader("s3cret pass\nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret pass", password)

	_, err = readPassword(strings.NewReader(""))
	assert.Error(t, err)

	_, err = readPassword(strings.NewReader("\n"))
	assert.Error(t, err)
}

func TestPrintIdentity(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printIdentity(&out, &identity.Identity{UID: "u1", Email: "a@x.io", DisplayName: "Al B"}))
	assert.Equal(t, "uid=u1 email=a@x.io name=\"Al B\"\n", out.String())
}
