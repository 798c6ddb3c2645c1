package settings

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Stdout is the target designating the standard output.
const Stdout = "-"

// PathAttrs holds the values substituted in output path masks.
type PathAttrs struct {
	VCenter  string
	Title    string
	TypeName string
	Name     string
	Ref      string
}

var maskPattern = regexp.MustCompile(`\{([a-z]+)\}`)

// ExpandMask replaces the {placeholder} directives of mask with the values of
// attrs. Unknown placeholders are an error.
func ExpandMask(mask string, attrs PathAttrs) (string, error) {
	values := map[string]string{
		"vcenter":  attrs.VCenter,
		"title":    attrs.Title,
		"typename": attrs.TypeName,
		"name":     attrs.Name,
		"ref":      attrs.Ref,
	}

	var unknown string
	expanded := maskPattern.ReplaceAllStringFunc(mask, func(m string) string {
		value, ok := values[strings.Trim(m, "{}")]
		if !ok {
			unknown = m
			return m
		}
		return value
	})
	if unknown != "" {
		return "", fmt.Errorf("unknown placeholder %s in mask %q", unknown, mask)
	}
	return expanded, nil
}

// CompileOut resolves the output target of a command.
//
// An empty target falls back to defaultMask. Placeholders are expanded in the
// target, then relative targets are resolved under the output directory. The
// special target "-" (standard output) and absolute paths are returned as is,
// and a target ending with a path separator is completed with defaultMask.
func (c Config) CompileOut(target, defaultMask string, attrs PathAttrs) (string, error) {
	if target == "" {
		target = defaultMask
	}
	if target == Stdout {
		return target, nil
	}

	expanded, err := ExpandMask(target, attrs)
	if err != nil {
		return "", err
	}

	if strings.HasSuffix(expanded, "/") || strings.HasSuffix(expanded, string(filepath.Separator)) {
		tail, err := ExpandMask(defaultMask, attrs)
		if err != nil {
			return "", err
		}
		expanded = filepath.Join(expanded, tail)
	}

	if filepath.IsAbs(expanded) {
		return expanded, nil
	}

	dir, err := ExpandMask(c.Out.Dir, attrs)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, expanded), nil
}
