package manifest

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/github/go-spdx/v2/spdxexp"
)

// Lint returns advisory warnings for a parsed manifest. Warnings never make
// a manifest invalid; they are shown by `talon validate`.
func Lint(m *Manifest) []string {
	var warnings []string

	if m.License != "" {
		if ok, invalid := spdxexp.ValidateLicenses([]string{m.License}); !ok {
			warnings = append(warnings, fmt.Sprintf("license %q is not a valid SPDX expression (%s)", m.License, strings.Join(invalid, ", ")))
		}
	}

	for _, field := range []struct{ key, value string }{
		{KeyRepository, m.Repository},
		{KeyHomepage, m.Homepage},
	} {
		if field.value == "" {
			continue
		}
		if !isHTTPURL(field.value) {
			warnings = append(warnings, fmt.Sprintf("%s %q is not an absolute http(s) URL", field.key, field.value))
		}
	}

	seen := make(map[string]bool, len(m.Tags))
	for _, tag := range m.Tags {
		if seen[tag] {
			warnings = append(warnings, fmt.Sprintf("tag %q is listed more than once", tag))
		}
		seen[tag] = true
	}

	if strings.TrimSpace(m.Documentation) == "" {
		warnings = append(warnings, "documentation body is empty")
	}

	return warnings
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
