// Package constants is responsible for defining the constants used in the application.
// It also provides the default location of the connection profiles file.
package constants

import (
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// CmdName is the name of the command line tool.
	CmdName = "vmware-reporter"

	// DefaultAppFolder is the name of the default root folder.
	DefaultAppFolder = "vmware-reporter"

	// DefaultLogLevel is the default log level selected without any verbosity flags.
	DefaultLogLevel = slog.LevelWarn

	// ConnectionsFileName is the default base name of the connection profiles file.
	ConnectionsFileName = "connections.ini"

	// ConnectionsSection is the INI section holding the default vCenter profile.
	// Named vCenters use a "vmware-reporter:NAME" section.
	ConnectionsSection = "vmware-reporter"

	// DefaultVCenterName designates the unnamed vCenter profile. It is reserved
	// and may not be used as an explicit section name suffix.
	DefaultVCenterName = "default"

	// MultiOwner marks an aggregated datastore path whose elements belong to
	// several distinct owners.
	MultiOwner = "<multi>"
)

// Default output masks. {vcenter}, {title}, {typename}, {name} and {ref} are
// expanded before use. Relative paths are resolved against the output directory.
const (
	// DefaultOutDir is the default output directory mask for file outputs.
	DefaultOutDir = "data/vmware-{vcenter}"

	// DefaultTabularOut is the default output mask of a single tabular report.
	DefaultTabularOut = "{title}.csv"

	// DefaultExportOut is the default output mask of per-object JSON dumps.
	DefaultExportOut = "export/{typename}/{name} ({ref}).json"

	// DefaultInventoryOut is the default output file name of the inventory tree.
	DefaultInventoryOut = "inventory.yml"

	// DefaultReportOut is the default workbook target of the autoreport command.
	DefaultReportOut = "report.xlsx:{title}"
)

// Version is the version of the application.
var Version = "Dev"

type options struct {
	baseDir func() (string, error)
}

type option func(*options)

// GetDefaultConnectionsPath is the default path to the connection profiles file.
func GetDefaultConnectionsPath(opts ...option) string {
	o := options{baseDir: os.UserConfigDir}
	for _, opt := range opts {
		opt(&o)
	}

	return filepath.Join(getBaseDir(o.baseDir), DefaultAppFolder, ConnectionsFileName)
}

// getBaseDir is a helper function to handle the case where the baseDir function returns an error, and instead return an empty string.
func getBaseDir(baseDirFunc func() (string, error)) string {
	dir, err := baseDirFunc()
	if err != nil {
		return ""
	}
	return dir
}
