package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "blog.db")
	ctx := context.Background()

	var out, errOut bytes.Buffer
	code := run(ctx, []string{"--db", dbPath, "alice", "pw1"}, &out, &errOut)
	assert.Equal(t, 0, code, errOut.String())
	assert.Equal(t, "User 'alice' has been created.\n", out.String())

	out.Reset()
	code = run(ctx, []string{"--db", dbPath, "alice", "other"}, &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Equal(t, "User 'alice' already exists.\n", out.String())
}

func TestRun_Usage(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"--db", filepath.Join(t.TempDir(), "blog.db"), "alice"}, &out, &errOut)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut.String(), "usage: createuser")
	assert.Empty(t, out.String())
}

func TestRun_PasswordTooLong(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"--db", filepath.Join(t.TempDir(), "blog.db"), "alice", strings.Repeat("p", 80)}, &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "password must not exceed 72 bytes")
	assert.Empty(t, out.String())
}
