package screenshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntry(t *testing.T) {
	tests := []struct {
		line string
		want Entry
	}{
		{"10.0.0.5 8080", Entry{Host: "10.0.0.5", Port: 8080}},
		{"10.0.0.5:8080", Entry{Host: "10.0.0.5", Port: 8080}},
		{"  app.corp.local 443  ", Entry{Host: "app.corp.local", Port: 443}},
		{"[fe80::1]:80", Entry{Host: "fe80::1", Port: 80}},
	}
	for _, tt := range tests {
		got, err := ParseEntry(tt.line)
		require.NoError(t, err, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
}

func TestParseEntryRejectsGarbage(t *testing.T) {
	for _, line := range []string{"", "justhost", "host port extra", "host:0", "host:99999", "host:abc"} {
		_, err := ParseEntry(line)
		assert.Error(t, err, line)
	}
}

func TestEntryURLSchemeByPort(t *testing.T) {
	assert.Equal(t, "https://10.0.0.5:443", Entry{Host: "10.0.0.5", Port: 443}.URL())
	assert.Equal(t, "http://10.0.0.5:8443", Entry{Host: "10.0.0.5", Port: 8443}.URL())
	assert.Equal(t, "http://10.0.0.5:80", Entry{Host: "10.0.0.5", Port: 80}.URL())
}

func TestEntryFileName(t *testing.T) {
	assert.Equal(t, "http_10_0_0_5_8080.png", Entry{Host: "10.0.0.5", Port: 8080}.FileName())
	assert.Equal(t, "https_app_corp_local_443.png", Entry{Host: "app.corp.local", Port: 443}.FileName())
}

func TestTimestampedDir(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)
	assert.Equal(t, "screenshots_20240309_140506", TimestampedDir(now))
}
