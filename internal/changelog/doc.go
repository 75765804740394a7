// Package changelog owns the Markdown changelog file for changeloger.
//
// This package implements:
//   - loading the file into an immutable Document snapshot, creating it with
//     a placeholder when absent
//   - reading the latest release from the version header on the second line
//   - rendering a new release section above the previous content
//   - persisting the result and rolling back a placeholder-only file
//   - recovering prior releases from the rendered Markdown
//
// The version header written by Render is the contract Load parses on the
// next run:
//
//	# Changelog
//
//	## v1.2.3 - 2024-1-5
package changelog
