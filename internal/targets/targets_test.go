package targets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "targets.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadFileSkipsBlanksCommentsAndMalformed(t *testing.T) {
	path := writeTempFile(t, `
# scope for this week
10.0.0.5
10.0.0.6:8443
server.internal

not a host!!
10.0.0.7:notaport
`)
	ts, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, ts, 3)
	assert.Equal(t, Target{Host: "10.0.0.5"}, ts[0])
	assert.Equal(t, Target{Host: "10.0.0.6", Port: 8443}, ts[1])
	assert.Equal(t, Target{Host: "server.internal"}, ts[2])
}

func TestReadFilePreservesOrderAndDuplicates(t *testing.T) {
	path := writeTempFile(t, "10.0.0.2\n10.0.0.1\n10.0.0.2\n")
	ts, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.2", "10.0.0.1", "10.0.0.2"}, Hosts(ts))
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.txt"))
	var inputErr *InputError
	require.True(t, errors.As(err, &inputErr))
}

func TestReadFileNothingUsable(t *testing.T) {
	// An empty or fully-commented file is not an error: the caller gets
	// zero targets and reports zero results.
	for _, content := range []string{"", "# only comments\n\n"} {
		path := writeTempFile(t, content)
		ts, err := ReadFile(path)
		require.NoError(t, err, "content %q", content)
		assert.Empty(t, ts, "content %q", content)
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Target
		ok   bool
	}{
		{"10.0.0.1", Target{Host: "10.0.0.1"}, true},
		{"10.0.0.1:22", Target{Host: "10.0.0.1", Port: 22}, true},
		{"db-01.corp.local", Target{Host: "db-01.corp.local"}, true},
		{"[::1]:443", Target{Host: "::1", Port: 443}, true},
		{"host:99999", Target{}, false},
		{"-bad.example", Target{}, false},
		{"", Target{}, false},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			assert.Equal(t, tc.want, got, tc.in)
		} else {
			assert.Error(t, err, tc.in)
		}
	}
}
