package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ssth/ssth-inventory/internal/app"
	_ "github.com/ssth/ssth-inventory/testing"
)

func TestMainReturnsEarlyInTestMode(t *testing.T) {
	require.True(t, app.InTestMode())
	require.NotPanics(t, main)
}
