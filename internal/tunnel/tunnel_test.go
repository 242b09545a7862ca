package tunnel

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sam1101-sys/reconkit/internal/execx"
)

func TestSelectAssetPicksPlatformArchive(t *testing.T) {
	assets := []Asset{
		{Name: "chisel_1.9.1_checksums.txt", URL: "u1"},
		{Name: "chisel_1.9.1_darwin_amd64.gz", URL: "u2"},
		{Name: "chisel_1.9.1_linux_amd64.gz", URL: "u3"},
		{Name: "chisel_1.9.1_linux_arm64.gz", URL: "u4"},
		{Name: "chisel_1.9.1_windows_amd64.gz", URL: "u5"},
	}
	p := Platform{OS: "linux", Arch: "amd64"}
	got, err := SelectAsset(assets, p, []string{"chisel"})
	require.NoError(t, err)
	assert.Equal(t, "chisel_1.9.1_linux_amd64.gz", got.Name)
}

func TestSelectAssetNeverPicksChecksums(t *testing.T) {
	assets := []Asset{
		{Name: "bore_linux_amd64_sha256.txt", URL: "u1"},
		{Name: "bore-v0.5.0-x86_64-unknown-linux-musl.tar.gz", URL: "u2"},
	}
	got, err := SelectAsset(assets, Platform{OS: "linux", Arch: "amd64"}, []string{"bore"})
	require.NoError(t, err)
	assert.Equal(t, "bore-v0.5.0-x86_64-unknown-linux-musl.tar.gz", got.Name)
}

func TestSelectAssetRefusesLowConfidence(t *testing.T) {
	assets := []Asset{
		{Name: "source.tar.gz.sig", URL: "u1"},
		{Name: "README.txt", URL: "u2"},
	}
	_, err := SelectAsset(assets, Platform{OS: "linux", Arch: "amd64"}, []string{"frp"})
	assert.Error(t, err)
}

func TestScoreAssetKeywords(t *testing.T) {
	p := Platform{OS: "darwin", Arch: "arm64"}
	high := ScoreAsset("frp_0.58.0_darwin_arm64.tar.gz", p, []string{"frp"})
	low := ScoreAsset("frp_0.58.0_freebsd_386.tar.gz", p, []string{"frp"})
	assert.Greater(t, high, low)
}

func TestProxychainsConfig(t *testing.T) {
	content, err := ProxychainsConfig(ProxyConfig{Type: "socks5", Host: "127.0.0.1", Port: 1080})
	require.NoError(t, err)
	assert.Equal(t, "strict_chain\nproxy_dns\n[ProxyList]\nsocks5 127.0.0.1 1080\n", content)
}

func TestProxychainsConfigRejectsBadInput(t *testing.T) {
	_, err := ProxychainsConfig(ProxyConfig{Type: "socks6", Host: "h", Port: 1080})
	assert.Error(t, err)
	_, err = ProxychainsConfig(ProxyConfig{Type: "http", Host: "h", Port: 0})
	assert.Error(t, err)
}

func TestWriteProxychainsConfigCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "proxychains.conf")
	require.NoError(t, WriteProxychainsConfig(path, ProxyConfig{Type: "socks4", Host: "10.0.0.1", Port: 9050}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "socks4 10.0.0.1 9050")
}

func TestSSHDynamicArgs(t *testing.T) {
	args := SSHDynamicArgs(SSHDynamicOptions{Host: "jump.example.com", User: "alice"})
	assert.Equal(t, []string{"-N", "-D", "127.0.0.1:1080", "-p", "22", "alice@jump.example.com"}, args)

	args = SSHDynamicArgs(SSHDynamicOptions{
		Host: "j", User: "u", Port: 2222, KeyPath: "/tmp/id_ed25519", SocksPort: 9999,
	})
	assert.Equal(t, []string{"-N", "-D", "127.0.0.1:9999", "-p", "2222", "-i", "/tmp/id_ed25519", "u@j"}, args)
}

func TestConnectSingleRun(t *testing.T) {
	fake := execx.NewFake()
	fake.Outputs["chisel"] = execx.Output{ExitCode: 0}

	err := Connect(context.Background(), fake, false, "chisel", "client", "srv:8001", "R:1080:socks")
	require.NoError(t, err)
	require.Len(t, fake.Calls, 1)
	assert.Equal(t, []string{"chisel", "client", "srv:8001", "R:1080:socks"}, fake.Calls[0])
}

func TestConnectNonZeroExit(t *testing.T) {
	fake := execx.NewFake()
	fake.Outputs["bore"] = execx.Output{ExitCode: 3}

	err := Connect(context.Background(), fake, false, "bore")
	assert.Error(t, err)
}

func TestConnectMissingBinary(t *testing.T) {
	fake := execx.NewFake()
	fake.Missing["frpc"] = true

	err := Connect(context.Background(), fake, false, "frpc")
	assert.True(t, execx.IsDependencyError(err))
}

func TestConnectKeepAliveStopsOnCancel(t *testing.T) {
	fake := execx.NewFake()
	fake.Outputs["socat"] = execx.Output{ExitCode: 1}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Connect(ctx, fake, true, "socat") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("keep-alive loop did not stop after cancellation")
	}
}

func TestDefaultInstallDir(t *testing.T) {
	linux := DefaultInstallDir(Platform{OS: "linux", Arch: "amd64"})
	assert.True(t, filepath.IsAbs(linux) || linux != "")
	assert.Contains(t, linux, filepath.Join(".local", "bin"))

	windows := DefaultInstallDir(Platform{OS: "windows", Arch: "amd64"})
	assert.Contains(t, windows, "bin")
	assert.NotContains(t, windows, ".local")
}
