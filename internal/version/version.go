// Package version implements the three-part semantic version used in
// changelog headers and release tags.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// HeaderMarker prefixes every release header in the changelog.
const HeaderMarker = "## "

// BumpKind selects which component Next increments.
type BumpKind string

const (
	Major BumpKind = "major"
	Minor BumpKind = "minor"
	Patch BumpKind = "patch"
)

// Version is an immutable major.minor.patch triple.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseError reports input that does not describe a version.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Input, e.Reason)
}

// FromParts builds a version from integer components.
func FromParts(major, minor, patch int) (Version, error) {
	if major < 0 || minor < 0 || patch < 0 {
		return Version{}, &ParseError{
			Input:  fmt.Sprintf("%d.%d.%d", major, minor, patch),
			Reason: "components must be non-negative",
		}
	}
	return Version{Major: major, Minor: minor, Patch: patch}, nil
}

// FromString parses "M.m.p".
func FromString(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, &ParseError{Input: s, Reason: "expected three dot-separated components"}
	}

	var nums [3]int
	for i, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return Version{}, &ParseError{Input: s, Reason: fmt.Sprintf("component %q is not a non-negative integer", p)}
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, &ParseError{Input: s, Reason: err.Error()}
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// ParseHeader extracts the version from a changelog release header such as
// "## v1.2.3 - 2024-1-5". The line must start with HeaderMarker followed by
// prefix.
func ParseHeader(line, prefix string) (Version, error) {
	re := headerPattern(prefix)
	m := re.FindStringSubmatch(line)
	if m == nil {
		return Version{}, &ParseError{Input: line, Reason: fmt.Sprintf("not a %q release header", HeaderMarker+prefix)}
	}
	return FromString(m[1])
}

func headerPattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile("^" + regexp.QuoteMeta(HeaderMarker+prefix) + `(\d+\.\d+\.\d+)`)
}

// String returns "M.m.p".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// MarshalYAML renders the version as "M.m.p" in debug snapshots.
func (v Version) MarshalYAML() (any, error) {
	return v.String(), nil
}

// Format renders the version behind headerPrefix, appending " - YYYY-M-D"
// when date is non-nil. Month and day are not zero-padded.
func (v Version) Format(headerPrefix string, date *time.Time) string {
	s := headerPrefix + v.String()
	if date != nil {
		s += " - " + FormatDate(*date)
	}
	return s
}

// Tag returns the git tag name for the version.
func (v Version) Tag(prefix string) string {
	return prefix + v.String()
}

// Next returns the version after applying bump. Unknown kinds return v.
func (v Version) Next(bump BumpKind) Version {
	switch bump {
	case Major:
		return Version{Major: v.Major + 1}
	case Minor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	case Patch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	default:
		return v
	}
}

// FormatDate renders t in local time as YYYY-M-D.
func FormatDate(t time.Time) string {
	t = t.Local()
	return fmt.Sprintf("%d-%d-%d", t.Year(), int(t.Month()), t.Day())
}
