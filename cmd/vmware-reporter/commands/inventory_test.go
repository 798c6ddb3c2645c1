package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ipamo/vmware-reporter/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventory(t *testing.T) {
	t.Parallel()

	t.Run("Writes the tree under the output directory", func(t *testing.T) {
		t.Parallel()

		app, _, outDir := newAppForTests(t, nil, "inventory")
		require.NoError(t, app.Run())

		files, err := testutils.GetDirContents(t, outDir, 1)
		require.NoError(t, err, "Setup: could not read the output directory")
		require.Contains(t, files, "inventory.yml", "the inventory should land at the default mask")
		assert.Contains(t, files["inventory.yml"], "DC0 (")
		assert.Contains(t, files["inventory.yml"], "DC0_C0_RP0_VM0 (")
	})

	t.Run("Honors an explicit output file", func(t *testing.T) {
		t.Parallel()

		target := filepath.Join(t.TempDir(), "tree.yaml")
		app, _, _ := newAppForTests(t, nil, "inventory", "-o", target)
		require.NoError(t, app.Run())

		data, err := os.ReadFile(target)
		require.NoError(t, err, "the inventory should land at the explicit target")
		assert.Contains(t, string(data), "LocalDS_0 (")
	})
}
