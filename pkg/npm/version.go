package npm

import (
	"github.com/Masterminds/semver/v3"

	"github.com/depscope/depscope/pkg/errors"
)

// ResolveVersion picks the concrete version a range spec resolves to within
// the record's published versions.
//
// An absent, "latest", or "*" spec resolves to the latest dist-tag (or the
// highest listed version if the tag is missing). Any other spec is treated
// as a semantic-version range: the maximum listed version satisfying it
// wins. If no version matches or the range cannot be parsed, resolution
// falls back to the latest tag.
//
// Returns ErrCodeVersionNotFound if the resolved version is absent from the
// record's version map.
func ResolveVersion(rec *Record, rangeSpec string) (string, error) {
	version := ""
	if rangeSpec == "" || rangeSpec == "latest" || rangeSpec == "*" {
		version = latestVersion(rec)
	} else if matched := maxSatisfying(rec, rangeSpec); matched != "" {
		version = matched
	} else {
		version = latestVersion(rec)
	}

	if version == "" {
		return "", errors.New(errors.ErrCodeVersionNotFound, "package %s has no resolvable version for %q", rec.Name, rangeSpec)
	}
	if _, ok := rec.Versions[version]; !ok {
		return "", errors.New(errors.ErrCodeVersionNotFound, "package %s: version %s not in registry version map", rec.Name, version)
	}
	return version, nil
}

// latestVersion returns the latest dist-tag, or the highest listed version
// when the tag is missing.
func latestVersion(rec *Record) string {
	if rec.DistTags.Latest != "" {
		return rec.DistTags.Latest
	}

	var best string
	var bestV *semver.Version
	for v := range rec.Versions {
		sv, err := semver.NewVersion(v)
		if err != nil {
			if best == "" || (bestV == nil && v > best) {
				best = v
			}
			continue
		}
		if bestV == nil || sv.GreaterThan(bestV) {
			best, bestV = v, sv
		}
	}
	return best
}

// maxSatisfying returns the highest listed version satisfying rangeSpec,
// or "" if the range is unparseable or nothing matches.
func maxSatisfying(rec *Record, rangeSpec string) string {
	constraint, err := semver.NewConstraint(rangeSpec)
	if err != nil {
		return ""
	}

	var best string
	var bestV *semver.Version
	for v := range rec.Versions {
		sv, err := semver.NewVersion(v)
		if err != nil {
			continue
		}
		if !constraint.Check(sv) {
			continue
		}
		if bestV == nil || sv.GreaterThan(bestV) {
			best, bestV = v, sv
		}
	}
	return best
}
