package probe

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnknownService(t *testing.T) {
	_, err := New("gopher", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gopher")
}

func TestServicesSorted(t *testing.T) {
	names := Services()
	assert.True(t, sort.StringsAreSorted(names))
	assert.Contains(t, names, "ftp")
	assert.Contains(t, names, "smb")
	assert.Contains(t, names, "zookeeper")
}

func TestEveryProberHasDefaults(t *testing.T) {
	for _, name := range Services() {
		p, err := New(name, Options{})
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Service())
		assert.NotEmpty(t, p.DefaultPorts(), name)
	}
}
