// Package settings loads the configuration of a reporting run: the connection
// profiles file, the output path masks and the extraction options.
package settings

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/ipamo/vmware-reporter/internal/constants"
	"github.com/ubuntu/decorate"
	"gopkg.in/ini.v1"
)

var (
	// ErrNoHost is returned when no vCenter host could be determined.
	ErrNoHost = fmt.Errorf("no vCenter host: pass --host, set it in the connection profiles file, or use the %s_HOST environment variable", envPrefix)

	// ErrUnknownVCenter is returned when the requested profile does not exist.
	ErrUnknownVCenter = fmt.Errorf("unknown vCenter profile")

	// ErrReservedName is returned when a profile uses the reserved default name.
	ErrReservedName = fmt.Errorf("%q is a reserved profile name", constants.DefaultVCenterName)
)

var envPrefix = strings.ToUpper(strings.ReplaceAll(constants.CmdName, "-", "_"))

// Config holds the settings of a reporting run, after flags, configuration
// file and environment variables have been merged.
type Config struct {
	VCenter     string
	Host        string
	User        string
	Password    string
	Insecure    bool
	Connections string

	Out     OutConfig
	Extract ExtractConfig
}

// OutConfig holds the output path masks. {vcenter}, {title}, {typename},
// {name} and {ref} are expanded when paths are compiled.
type OutConfig struct {
	Dir       string
	Tabular   string
	Export    string
	Inventory string
	Report    string
}

// ExtractConfig selects additional data to extract with the reports.
type ExtractConfig struct {
	CustomValues  []string `mapstructure:"customvalues" yaml:"customvalues"`
	TagCategories []string `mapstructure:"tagcategories" yaml:"tagcategories"`
}

// Connection is a resolved vCenter connection profile.
type Connection struct {
	Name     string
	Host     string
	User     string
	Password string
	Insecure bool
}

// Sanitize fills missing settings with defaults and reports unusable values.
func (c *Config) Sanitize(l *slog.Logger) error {
	c.VCenter = strings.TrimSpace(c.VCenter)
	c.Host = strings.TrimSpace(c.Host)

	if c.Connections == "" {
		c.Connections = constants.GetDefaultConnectionsPath()
		l.Debug("Using default connection profiles path", "path", c.Connections)
	}

	if c.Out.Dir == "" {
		c.Out.Dir = constants.DefaultOutDir
	}
	if c.Out.Tabular == "" {
		c.Out.Tabular = constants.DefaultTabularOut
	}
	if c.Out.Export == "" {
		c.Out.Export = constants.DefaultExportOut
	}
	if c.Out.Inventory == "" {
		c.Out.Inventory = constants.DefaultInventoryOut
	}
	if c.Out.Report == "" {
		c.Out.Report = constants.DefaultReportOut
	}

	return nil
}

// LogValue implements slog.LogValuer to avoid leaking the password in logs.
func (c Config) LogValue() slog.Value {
	password := ""
	if c.Password != "" {
		password = "*****"
	}
	return slog.GroupValue(
		slog.String("vcenter", c.VCenter),
		slog.String("host", c.Host),
		slog.String("user", c.User),
		slog.String("password", password),
		slog.Bool("insecure", c.Insecure),
		slog.String("connections", c.Connections),
		slog.Any("out", c.Out),
		slog.Any("extract", c.Extract),
	)
}

// Connection resolves the connection profile selected by the configuration,
// overlaying the host, user, password and insecure settings given explicitly.
//
// A missing profiles file is not an error as long as a host is known. An
// explicitly requested profile must exist in the file.
func (c Config) Connection() (conn Connection, err error) {
	defer decorate.OnError(&err, "could not resolve vCenter connection")

	name := c.VCenter
	if name == "" {
		name = constants.DefaultVCenterName
	}
	conn = Connection{Name: name}

	profiles, err := loadProfiles(c.Connections)
	if err != nil {
		return Connection{}, err
	}

	if profile, ok := profiles[name]; ok {
		conn.Host = profile.Host
		conn.User = profile.User
		conn.Password = profile.Password
		conn.Insecure = profile.Insecure
	} else if c.VCenter != "" && c.VCenter != constants.DefaultVCenterName {
		return Connection{}, fmt.Errorf("%w: %s", ErrUnknownVCenter, c.VCenter)
	}

	if c.Host != "" {
		conn.Host = c.Host
	}
	if c.User != "" {
		conn.User = c.User
	}
	if c.Password != "" {
		conn.Password = c.Password
	}
	if c.Insecure {
		conn.Insecure = true
	}

	if conn.Host == "" {
		return Connection{}, ErrNoHost
	}
	return conn, nil
}

// ConfiguredVCenters lists the profile names present in the connection
// profiles file, the default profile first.
func (c Config) ConfiguredVCenters() ([]string, error) {
	profiles, err := loadProfiles(c.Connections)
	if err != nil {
		return nil, err
	}

	var names []string
	if _, ok := profiles[constants.DefaultVCenterName]; ok {
		names = append(names, constants.DefaultVCenterName)
	}
	start := len(names)
	for name := range profiles {
		if name != constants.DefaultVCenterName {
			names = append(names, name)
		}
	}
	slices.Sort(names[start:])
	return names, nil
}

// loadProfiles reads the INI profiles file. The [vmware-reporter] section is
// the default profile, [vmware-reporter:NAME] sections are named profiles.
// A missing file yields no profiles.
func loadProfiles(path string) (map[string]Connection, error) {
	profiles := make(map[string]Connection)
	if path == "" {
		return profiles, nil
	}

	cfg, err := ini.LooseLoad(path)
	if err != nil {
		return nil, fmt.Errorf("could not read connection profiles %s: %v", path, err)
	}

	for _, section := range cfg.Sections() {
		name := ""
		switch {
		case section.Name() == constants.ConnectionsSection:
			name = constants.DefaultVCenterName
		case strings.HasPrefix(section.Name(), constants.ConnectionsSection+":"):
			name = strings.TrimPrefix(section.Name(), constants.ConnectionsSection+":")
			if name == constants.DefaultVCenterName {
				return nil, fmt.Errorf("%w (section %q in %s)", ErrReservedName, section.Name(), path)
			}
		default:
			continue
		}

		insecure, _ := section.Key("insecure").Bool()
		profiles[name] = Connection{
			Name:     name,
			Host:     section.Key("host").String(),
			User:     section.Key("user").String(),
			Password: section.Key("password").String(),
			Insecure: insecure,
		}
	}

	return profiles, nil
}
