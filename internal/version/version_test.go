package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromString(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input   string
		want    Version
		wantErr bool
	}{
		"simple":            {input: "1.2.3", want: Version{1, 2, 3}},
		"zero":              {input: "0.0.0", want: Version{}},
		"large components":  {input: "10.200.3000", want: Version{10, 200, 3000}},
		"two components":    {input: "1.2", wantErr: true},
		"four components":   {input: "1.2.3.4", wantErr: true},
		"negative":          {input: "1.-2.3", wantErr: true},
		"letters":           {input: "1.a.3", wantErr: true},
		"empty component":   {input: "1..3", wantErr: true},
		"leading prefix":    {input: "v1.2.3", wantErr: true},
		"empty":             {input: "", wantErr: true},
		"pre-release label": {input: "1.2.3-rc1", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := FromString(tt.input)
			if tt.wantErr {
				var perr *ParseError
				require.ErrorAs(t, err, &perr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromParts(t *testing.T) {
	t.Parallel()

	v, err := FromParts(1, 0, 9)
	require.NoError(t, err)
	assert.Equal(t, "1.0.9", v.String())

	_, err = FromParts(1, -1, 0)
	assert.Error(t, err)
}

func TestParseHeader(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		line    string
		prefix  string
		want    Version
		wantErr bool
	}{
		"with date":         {line: "## v1.4.2 - 2024-3-9", prefix: "v", want: Version{1, 4, 2}},
		"without date":      {line: "## v0.0.1", prefix: "v", want: Version{0, 0, 1}},
		"empty prefix":      {line: "## 2.0.0 - 2024-1-1", prefix: "", want: Version{2, 0, 0}},
		"regex meta prefix": {line: "## release.1.2.3", prefix: "release.", want: Version{1, 2, 3}},
		"wrong prefix":      {line: "## 1.2.3", prefix: "v", wantErr: true},
		"top header":        {line: "# Changelog", prefix: "v", wantErr: true},
		"sub header":        {line: "### v1.2.3", prefix: "v", wantErr: true},
		"not at start":      {line: "see ## v1.2.3", prefix: "v", wantErr: true},
		"empty line":        {line: "", prefix: "v", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseHeader(tt.line, tt.prefix)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	t.Parallel()

	date := time.Date(2024, time.January, 5, 12, 0, 0, 0, time.Local)
	for _, v := range []Version{{0, 0, 0}, {1, 2, 3}, {12, 0, 7}} {
		for _, prefix := range []string{"", "v", "release-"} {
			line := v.Format(HeaderMarker+prefix, &date)
			got, err := ParseHeader(line, prefix)
			require.NoError(t, err, line)
			assert.Equal(t, v, got)
		}
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	v := Version{1, 2, 3}
	date := time.Date(2024, time.March, 9, 8, 0, 0, 0, time.Local)

	assert.Equal(t, "## v1.2.3 - 2024-3-9", v.Format("## v", &date))
	assert.Equal(t, "v1.2.3", v.Format("v", nil))
	assert.Equal(t, "v1.2.3", v.Tag("v"))
}

func TestNext(t *testing.T) {
	t.Parallel()

	v := Version{1, 4, 7}
	tests := map[string]struct {
		bump BumpKind
		want Version
	}{
		"major":   {bump: Major, want: Version{2, 0, 0}},
		"minor":   {bump: Minor, want: Version{1, 5, 0}},
		"patch":   {bump: Patch, want: Version{1, 4, 8}},
		"unknown": {bump: BumpKind("build"), want: Version{1, 4, 7}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, v.Next(tt.bump))
		})
	}
	assert.Equal(t, Version{1, 4, 7}, v, "receiver must not change")
}

func TestFormatDate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "2023-12-31", FormatDate(time.Date(2023, 12, 31, 10, 0, 0, 0, time.Local)))
	assert.Equal(t, "2024-1-2", FormatDate(time.Date(2024, 1, 2, 10, 0, 0, 0, time.Local)))
}
