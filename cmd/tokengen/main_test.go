package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRejectsBadInput(t *testing.T) {
	assert.Error(t, run([]string{"--secret", "c2VjcmV0LWtleS0xMjM=", "--subject", "0"}))
	assert.Error(t, run([]string{"--secret", "!!"}))
	assert.Error(t, run([]string{"--unknown"}))
}

func TestRunSignsToken(t *testing.T) {
	require.NoError(t, run([]string{"--secret", "c2VjcmV0LWtleS0xMjM=", "--subject", "7", "--ttl", "1m"}))
	require.NoError(t, run([]string{"--help"}))
}
