package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proxyharvest/internal/shared/types"
)

func TestLoadIniOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxyharvest.ini")
	content := `[scrape]
timeout_seconds = 10
max_per_source = 500

[check]
enabled = true
url = https://httpbin.org/ip
max_concurrent = 64

[output]
sort = address
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := Default()
	require.NoError(t, LoadIni(cfg, path))

	assert.Equal(t, 10, cfg.ScrapeConf.TimeoutSeconds)
	assert.Equal(t, 500, cfg.ScrapeConf.MaxPerSource)
	assert.Equal(t, "https://httpbin.org/ip", cfg.CheckConf.URL)
	assert.Equal(t, 64, cfg.CheckConf.MaxConcurrent)
	assert.Equal(t, "address", cfg.OutputConf.Sort)
	// 未出现在文件中的键保持默认值
	assert.True(t, cfg.OutputConf.TXT)
	assert.Equal(t, 60, cfg.CheckConf.TimeoutSeconds)
}

func TestLoadIniMissingFileKeepsDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, LoadIni(cfg, filepath.Join(t.TempDir(), "absent.ini")))
	assert.Equal(t, "speed", cfg.OutputConf.Sort)
	assert.Equal(t, 1024, cfg.CheckConf.MaxConcurrent)
}

func TestLoadIniEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxyharvest.ini")
	require.NoError(t, os.WriteFile(path, []byte("[check]\nmax_concurrent = 8\n"), 0644))

	t.Setenv("PROXYHARVEST_MAX_CONCURRENT", "256")
	t.Setenv("PROXYHARVEST_CHECK_URL", "https://api.ipify.org?format=text")

	cfg := Default()
	require.NoError(t, LoadIni(cfg, path))
	assert.Equal(t, 256, cfg.CheckConf.MaxConcurrent)
	assert.Equal(t, "https://api.ipify.org?format=text", cfg.CheckConf.URL)
}

func TestLoadSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.json")
	content := `[
  {"protocol": "http", "location": "https://example.com/http.txt"},
  {"protocol": "socks5", "location": "file:///tmp/socks5.txt"},
  {"protocol": "http", "location": "https://example.com/free", "kind": "html", "rowSelector": "table#list tr"}
]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	entries, err := LoadSources(path)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "socks5", entries[1].Protocol)
	assert.Equal(t, "html", entries[2].Kind)
	assert.Equal(t, "table#list tr", entries[2].RowSelector)
}

func TestLoadSourcesMissingFileFallsBackToDefaults(t *testing.T) {
	entries, err := LoadSources(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	protocols := make(map[string]bool)
	for _, e := range entries {
		protocols[e.Protocol] = true
	}
	assert.True(t, protocols["http"] && protocols["socks4"] && protocols["socks5"])
}

func TestSaveSourcesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.json")
	in := []*types.SourceEntry{{Protocol: "http", Location: "https://example.com/a.txt"}}

	require.NoError(t, SaveSources(path, in))
	out, err := LoadSources(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
