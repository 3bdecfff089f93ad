package npm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Record is the full registry document for a package name, as served by the
// npm registry. One Record covers every published version of the package.
type Record struct {
	Name        string                 `json:"name"`
	DistTags    distTags               `json:"dist-tags"`
	Versions    map[string]VersionInfo `json:"versions"`
	Time        map[string]string      `json:"time"` // "modified", "created", plus one entry per version
	Maintainers []maintainer           `json:"maintainers"`
}

type distTags struct {
	Latest string `json:"latest"`
}

type maintainer struct {
	Name string `json:"name"`
}

// VersionInfo is the per-version manifest embedded in a Record.
// License, Repository, and Deprecated are duck-typed in the wire format
// (string or nested object); use the accessors instead of the raw fields.
type VersionInfo struct {
	Description  string         `json:"description"`
	License      any            `json:"license"`
	Licenses     []licenseEntry `json:"licenses"` // legacy plural form
	Deprecated   any            `json:"deprecated"`
	HomePage     string         `json:"homepage"`
	Repository   any            `json:"repository"`
	Maintainers  []maintainer   `json:"maintainers"`
	Dist         dist           `json:"dist"`
	Dependencies DependencyList `json:"dependencies"`
}

type licenseEntry struct {
	Type string `json:"type"`
}

type dist struct {
	UnpackedSize int64 `json:"unpackedSize"`
}

// Dependency is one declared dependency: a package name and its range spec.
type Dependency struct {
	Name  string
	Range string
}

// DependencyList preserves the declaration order of a manifest's
// "dependencies" object. encoding/json maps are unordered, so the list is
// decoded from the token stream instead.
type DependencyList []Dependency

// UnmarshalJSON decodes a JSON object into an ordered dependency list.
func (d *DependencyList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*d = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("dependencies: expected object, got %v", tok)
	}

	var deps DependencyList
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("dependencies: non-string key %v", keyTok)
		}
		var rangeSpec string
		if err := dec.Decode(&rangeSpec); err != nil {
			return fmt.Errorf("dependencies: range for %s: %w", name, err)
		}
		deps = append(deps, Dependency{Name: name, Range: rangeSpec})
	}
	*d = deps
	return nil
}

// MarshalJSON re-encodes the list as a JSON object in declaration order.
func (d DependencyList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, dep := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(dep.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(dep.Range)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// CanonicalLicense resolves the duck-typed license field into a single
// canonical string. The wire format is a string ("MIT"), an object
// ({"type": "MIT", "url": ...}), or absent. Returns "" when missing.
func (v *VersionInfo) CanonicalLicense() string {
	if s := extractField(v.License, "type"); s != "" {
		return strings.TrimSpace(s)
	}
	if len(v.Licenses) > 0 {
		return strings.TrimSpace(v.Licenses[0].Type)
	}
	return ""
}

// IsDeprecated reports whether the version carries a deprecation notice.
// npm encodes deprecation as a message string, occasionally as a bool.
func (v *VersionInfo) IsDeprecated() bool {
	switch val := v.Deprecated.(type) {
	case string:
		return val != ""
	case bool:
		return val
	}
	return false
}

// RepositoryURL returns the normalized repository URL, or "".
func (v *VersionInfo) RepositoryURL() string {
	return NormalizeRepoURL(extractField(v.Repository, "url"))
}

// MaintainerCount returns the number of maintainers for the version,
// falling back to the record-level maintainer list.
func (r *Record) MaintainerCount(v *VersionInfo) int {
	if len(v.Maintainers) > 0 {
		return len(v.Maintainers)
	}
	return len(r.Maintainers)
}

// PublishTime returns when the given version was published, preferring the
// exact per-version timestamp over the record's generic "modified" time.
// Returns nil if neither is available or parseable.
func (r *Record) PublishTime(version string) *time.Time {
	for _, key := range []string{version, "modified"} {
		if raw, ok := r.Time[key]; ok {
			if t, err := time.Parse(time.RFC3339, raw); err == nil {
				return &t
			}
		}
	}
	return nil
}

// extractField reads a string field from a duck-typed value: the value
// itself when it is a string, or value[field] when it is an object.
func extractField(v any, field string) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if s, ok := val[field].(string); ok {
			return s
		}
	}
	return ""
}

var repoURLReplacer = strings.NewReplacer(
	"git@github.com:", "https://github.com/",
	"git://github.com/", "https://github.com/",
)

// NormalizeRepoURL converts various repository URL formats to canonical HTTPS
// form. Handles git@, git://, and git+ prefixes, and removes .git suffixes.
// Returns empty string if raw is empty.
func NormalizeRepoURL(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "git+")
	s = repoURLReplacer.Replace(s)
	return strings.TrimSuffix(s, ".git")
}
