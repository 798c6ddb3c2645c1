package datastore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ipamo/vmware-reporter/internal/datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadDownload(t *testing.T) {
	t.Parallel()

	e, ds := explorer(t)
	ctx := context.Background()

	t.Run("Round trip preserves the content", func(t *testing.T) {
		t.Parallel()

		src := filepath.Join(t.TempDir(), "data.bin")
		require.NoError(t, os.WriteFile(src, []byte("payload"), 0600), "Setup: could not write the source file")

		require.NoError(t, e.MakeDirectory(ctx, ds, "xfer", false), "MakeDirectory should not fail")
		require.NoError(t, e.Upload(ctx, ds, src, "xfer/data.bin"), "Upload should not fail")

		target := filepath.Join(t.TempDir(), "got.bin")
		require.NoError(t, e.Download(ctx, ds, "xfer/data.bin", target), "Download should not fail")

		got, err := os.ReadFile(target)
		require.NoError(t, err, "Could not read the downloaded file")
		assert.Equal(t, "payload", string(got), "Unexpected downloaded content")
	})

	t.Run("A directory target receives the remote base name", func(t *testing.T) {
		t.Parallel()

		src := filepath.Join(t.TempDir(), "named.bin")
		require.NoError(t, os.WriteFile(src, []byte("x"), 0600), "Setup: could not write the source file")
		require.NoError(t, e.Upload(ctx, ds, src, ""), "Upload should not fail")

		dir := t.TempDir()
		require.NoError(t, e.Download(ctx, ds, "named.bin", dir+string(os.PathSeparator)), "Download should not fail")
		assert.FileExists(t, filepath.Join(dir, "named.bin"), "The remote base name should complete the target")
	})

	t.Run("An empty upload target receives the source base name", func(t *testing.T) {
		t.Parallel()

		src := filepath.Join(t.TempDir(), "rooted.txt")
		require.NoError(t, os.WriteFile(src, []byte("root"), 0600), "Setup: could not write the source file")
		require.NoError(t, e.Upload(ctx, ds, src, ""), "Upload should not fail")

		target := filepath.Join(t.TempDir(), "back.txt")
		require.NoError(t, e.Download(ctx, ds, "rooted.txt", target), "The file should land under its base name")
	})

	t.Run("Error on a missing source file", func(t *testing.T) {
		t.Parallel()

		err := e.Upload(ctx, ds, filepath.Join(t.TempDir(), "nothing.bin"), "up.bin")
		require.Error(t, err, "Upload should fail on a missing source")
	})

	t.Run("Error on a missing remote file", func(t *testing.T) {
		t.Parallel()

		err := e.Download(ctx, ds, "no/such.bin", filepath.Join(t.TempDir(), "got.bin"))
		require.Error(t, err, "Download should fail on a missing remote file")
	})
}

func TestDelete(t *testing.T) {
	t.Parallel()

	e, ds := explorer(t)
	ctx := context.Background()

	t.Run("Deletes a file", func(t *testing.T) {
		t.Parallel()

		seed(t, e, ds, []string{"del1"}, map[string]string{"del1/f.txt": "x"})
		require.NoError(t, e.Delete(ctx, ds, "del1/f.txt"), "Delete should not fail")

		err := e.Download(ctx, ds, "del1/f.txt", filepath.Join(t.TempDir(), "got"))
		require.Error(t, err, "The deleted file should be gone")
	})

	t.Run("Deletes a folder with its content", func(t *testing.T) {
		t.Parallel()

		seed(t, e, ds, []string{"del2"}, map[string]string{"del2/f.txt": "x"})
		require.NoError(t, e.Delete(ctx, ds, "del2"), "Delete should not fail")

		_, err := e.Elements(ctx, ds, datastore.Query{Path: "del2", Size: true})
		require.Error(t, err, "The deleted folder should be gone")
	})

	t.Run("Error on a missing path", func(t *testing.T) {
		t.Parallel()

		err := e.Delete(ctx, ds, "del-nothing.txt")
		require.Error(t, err, "Delete should fail on a missing path")
	})
}

func TestMakeDirectory(t *testing.T) {
	t.Parallel()

	e, ds := explorer(t)
	ctx := context.Background()

	t.Run("Creates a folder", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, e.MakeDirectory(ctx, ds, "mk1", false), "MakeDirectory should not fail")

		_, err := e.Elements(ctx, ds, datastore.Query{Path: "mk1", Size: true})
		require.NoError(t, err, "The folder should be browsable")
	})

	t.Run("Creates missing parents when requested", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, e.MakeDirectory(ctx, ds, "mk2/a/b", true), "MakeDirectory should not fail")

		_, err := e.Elements(ctx, ds, datastore.Query{Path: "mk2/a/b", Size: true})
		require.NoError(t, err, "The nested folder should be browsable")
	})

	t.Run("Error on missing parents", func(t *testing.T) {
		t.Parallel()

		err := e.MakeDirectory(ctx, ds, "mk3/a/b", false)
		require.Error(t, err, "MakeDirectory should fail without its parents")
	})
}

func TestCompleteTarget(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		target string
		source string

		want string
	}{
		"Empty targets take the source base name":   {source: "dir/f.txt", want: "f.txt"},
		"Directory targets append the base name":    {target: "out/", source: "dir/f.txt", want: "out/f.txt"},
		"Backslash directory targets are completed": {target: `out\`, source: "f.txt", want: `out\f.txt`},
		"Explicit targets are kept":                 {target: "other.bin", source: "f.txt", want: "other.bin"},
		"Windows sources yield their base name":     {source: `C:\tmp\f.txt`, want: "f.txt"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, datastore.CompleteTarget(tc.target, tc.source), "Unexpected completed target")
		})
	}
}
