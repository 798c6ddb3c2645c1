package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ipamo/vmware-reporter/internal/cli"
	"github.com/ipamo/vmware-reporter/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitViperConfig(t *testing.T) {
	tests := map[string]struct {
		configFile string
		configFlag bool
		env        map[string]string

		wantErr  bool
		wantKeys map[string]string
	}{
		"No configuration file": {
			wantKeys: map[string]string{"host": ""},
		},
		"INI file in the current directory": {
			configFile: `
host = vcenter.example.org
user = admin

[out]
dir = /srv/reports
`,
			wantKeys: map[string]string{"host": "vcenter.example.org", "user": "admin", "out.dir": "/srv/reports"},
		},
		"Config flag points to the file": {
			configFile: "host = flagged.example.org\n",
			configFlag: true,
			wantKeys:   map[string]string{"host": "flagged.example.org"},
		},
		"Environment variables win over the file": {
			configFile: "host = vcenter.example.org\n",
			env:        map[string]string{"VMWARE_REPORTER_HOST": "env.example.org"},
			wantKeys:   map[string]string{"host": "env.example.org"},
		},
		"Environment variables bind nested keys": {
			env:      map[string]string{"VMWARE_REPORTER_OUT_DIR": "/env/reports"},
			wantKeys: map[string]string{"out.dir": "/env/reports"},
		},

		"Error on unreadable configuration file": {
			configFile: "\tnot: [valid\n  ini or anything",
			configFlag: true,
			wantErr:    true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			// Not parallel: changes directory and sets environment variables.
			dir := t.TempDir()
			t.Chdir(dir)

			cmd := &cobra.Command{Use: constants.CmdName}
			if tc.configFile != "" {
				ext := ".ini"
				if tc.wantErr {
					ext = ".yaml"
				}
				path := filepath.Join(dir, constants.CmdName+ext)
				require.NoError(t, os.WriteFile(path, []byte(tc.configFile), 0600), "Setup: could not write config file")
				if tc.configFlag {
					cmd.Flags().String("config", "", "")
					require.NoError(t, cmd.Flags().Set("config", path), "Setup: could not set config flag")
				}
			}

			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			vip := viper.New()
			err := cli.InitViperConfig(constants.CmdName, cmd, vip)
			if tc.wantErr {
				require.Error(t, err, "InitViperConfig should have failed")
				return
			}
			require.NoError(t, err, "InitViperConfig should not have failed")

			for k, want := range tc.wantKeys {
				assert.Equal(t, want, vip.GetString(k), "Unexpected value for viper key %q", k)
			}
		})
	}
}
