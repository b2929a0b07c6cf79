package manifest

import (
	"errors"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// FileName is the manifest file every talon directory must contain.
// The lookup is case-sensitive on every platform.
const FileName = "TALON.md"

// Delimiter opens and closes the metadata block.
const Delimiter = "---"

// Known top-level metadata keys, in the order Marshal writes them.
const (
	KeyName        = "name"
	KeyVersion     = "version"
	KeyDescription = "description"
	KeyAuthor      = "author"
	KeyLicense     = "license"
	KeyTags        = "tags"
	KeyRepository  = "repository"
	KeyHomepage    = "homepage"
	KeyRuntime     = "runtime"
	KeyPermissions = "permissions"
	KeyEnvironment = "environment"
	KeyCommands    = "commands"
)

// KnownKeys lists the recognized metadata keys in canonical order.
var KnownKeys = []string{
	KeyName,
	KeyVersion,
	KeyDescription,
	KeyAuthor,
	KeyLicense,
	KeyTags,
	KeyRepository,
	KeyHomepage,
	KeyRuntime,
	KeyPermissions,
	KeyEnvironment,
	KeyCommands,
}

// RequiredKeys are checked in this order; the first one absent is reported.
var RequiredKeys = []string{KeyName, KeyVersion, KeyDescription}

var namePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Manifest is the parsed content of a TALON.md file.
//
// Runtime, Permissions, Environment and Commands hold the decoded YAML tree
// as-is (map[string]any, []any or scalars). Extra holds every top-level key
// the parser does not recognize. Both survive a Marshal/Parse round trip.
type Manifest struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Description string   `yaml:"description"`
	Author      string   `yaml:"author,omitempty"`
	License     string   `yaml:"license,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Repository  string   `yaml:"repository,omitempty"`
	Homepage    string   `yaml:"homepage,omitempty"`

	Runtime     any `yaml:"runtime,omitempty"`
	Permissions any `yaml:"permissions,omitempty"`
	Environment any `yaml:"environment,omitempty"`
	Commands    any `yaml:"commands,omitempty"`

	Extra map[string]any `yaml:"extra,omitempty"`

	Documentation string `yaml:"documentation,omitempty"`
}

// SemVer returns the parsed version. Manifests produced by Parse always
// carry a valid version, so an error here means the struct was built by hand.
func (m *Manifest) SemVer() (*semver.Version, error) {
	return ParseVersion(m.Version)
}

// ParseVersion accepts only full MAJOR.MINOR.PATCH versions with optional
// pre-release and build suffixes. A leading "v" is rejected.
func ParseVersion(v string) (*semver.Version, error) {
	if strings.HasPrefix(v, "v") || strings.HasPrefix(v, "V") {
		return nil, errors.New("version must not carry a \"v\" prefix")
	}
	return semver.StrictNewVersion(v)
}

// ValidName reports whether name is a lowercase, hyphen-separated token.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

func isKnownKey(key string) bool {
	for _, k := range KnownKeys {
		if k == key {
			return true
		}
	}
	return false
}
