package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ipamo/vmware-reporter/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatastoreFiles(t *testing.T) {
	t.Parallel()

	sim := testutils.StartVCenterSimulator(t)
	run := func(args ...string) error {
		t.Helper()
		app, _ := newAppWithSim(t, sim, nil, args...)
		return app.Run()
	}

	src := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0600), "Setup: could not write the source file")

	require.Error(t, run("datastore", "mkdir", "LocalDS_0", "inbox/deep"),
		"mkdir should fail on a missing ancestor")
	require.NoError(t, run("datastore", "mkdir", "--parents", "LocalDS_0", "inbox/deep"),
		"mkdir --parents should create the folder chain")

	require.NoError(t, run("datastore", "upload", src, "LocalDS_0", "inbox/deep/hello.txt"),
		"upload should succeed")

	target := filepath.Join(t.TempDir(), "fetched.txt")
	require.NoError(t, run("datastore", "download", "LocalDS_0", "inbox/deep/hello.txt", target),
		"download should succeed")
	data, err := os.ReadFile(target)
	require.NoError(t, err, "the downloaded file should exist")
	assert.Equal(t, "hello", string(data), "the file should round-trip unchanged")

	require.NoError(t, run("datastore", "rm", "LocalDS_0", "inbox"), "rm should delete the folder")
	require.Error(t, run("datastore", "download", "LocalDS_0", "inbox/deep/hello.txt", target),
		"download should fail after the deletion")

	require.Error(t, run("datastore", "upload", src, "NoSuchDS", "x.txt"),
		"an unknown datastore should fail")
}

func TestDatastoreTraversal(t *testing.T) {
	sim := testutils.StartVCenterSimulator(t)
	run := func(args ...string) error {
		t.Helper()
		app, _ := newAppWithSim(t, sim, nil, args...)
		return app.Run()
	}

	// Seed [LocalDS_0] tree/a.txt and tree/sub/b.txt, three bytes each.
	src := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(src, []byte("abc"), 0600), "Setup: could not write the source file")
	require.NoError(t, run("datastore", "mkdir", "--parents", "LocalDS_0", "tree/sub"), "Setup: could not create the folders")
	require.NoError(t, run("datastore", "upload", src, "LocalDS_0", "tree/a.txt"), "Setup: could not upload the first file")
	require.NoError(t, run("datastore", "upload", src, "LocalDS_0", "tree/sub/b.txt"), "Setup: could not upload the second file")

	tests := map[string]struct {
		args []string

		wantOut    []string
		wantNotOut []string
	}{
		"Elements lists the whole tree": {
			args: []string{"datastore", "elements", "--csv", "--path", "tree"},
			wantOut: []string{
				"LocalDS_0,tree/a.txt,File,3",
				"LocalDS_0,tree/sub,Folder,",
				"LocalDS_0,tree/sub/b.txt,File,3",
			},
		},
		"Stats aggregates at depth one by default": {
			args:       []string{"datastore", "stats", "--csv", "--path", "tree"},
			wantOut:    []string{"LocalDS_0,tree,,"},
			wantNotOut: []string{"tree/a.txt"},
		},
		"Stats details down to the requested depth": {
			args:    []string{"datastore", "stats", "--csv", "--path", "tree", "--max-depth", "2"},
			wantOut: []string{"LocalDS_0,tree/a.txt,File,3", "LocalDS_0,tree/sub,Folder,"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			// captureStdout forbids running in parallel.
			out := captureStdout(t)
			app, _ := newAppWithSim(t, sim, nil, tc.args...)

			err := app.Run()
			got := out()
			require.NoError(t, err, "Run should succeed")

			for _, want := range tc.wantOut {
				assert.Contains(t, got, want)
			}
			for _, notWant := range tc.wantNotOut {
				assert.NotContains(t, got, notWant)
			}
		})
	}
}
