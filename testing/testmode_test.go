package testing

import (
	"os"
	stdtesting "testing"

	"github.com/stretchr/testify/require"

	"github.com/ssth/ssth-inventory/internal/app"
)

func TestImportEnablesTestMode(t *stdtesting.T) {
	require.Equal(t, "1", os.Getenv(testModeEnv))
	require.True(t, app.RefreshTestMode())
	for key := range Defaults {
		require.NotEmpty(t, os.Getenv(key), key)
	}
}

func TestLoadConfigSucceedsWithDefaults(t *stdtesting.T) {
	cfg, err := app.LoadConfig()
	require.NoError(t, err)
	require.Equal(t, os.Getenv("STORAGE_PROVIDER"), cfg.StorageProvider)
}
