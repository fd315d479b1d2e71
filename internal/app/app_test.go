package app

import (
	"testing"
	"time"

	"github.com/kungul/scraper/internal/config"
	"github.com/kungul/scraper/internal/sites"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WiresSites(t *testing.T) {
	cfg := config.Defaults()
	cfg.Proxies = []string{"http://127.0.0.1:8080"}
	a, err := New(cfg, map[string]string{"X-Test": "1"})
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 1, a.Proxies.Len())
	assert.NotNil(t, a.Fetcher)
	assert.NotNil(t, a.Renderer)

	site, err := sites.Lookup("notino")
	require.NoError(t, err)
	s := a.Scraper(site)
	assert.NotNil(t, s.Source)
	assert.Equal(t, site.ChallengeBackoff, s.ChallengeBackoff)
	assert.Equal(t, site.Delay, a.Delay(site))
}

func TestDelayAndBackoffOverrides(t *testing.T) {
	cfg := config.Defaults()
	cfg.Delay = 3 * time.Second
	cfg.ChallengeBackoff = time.Second
	a, err := New(cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	site, err := sites.Lookup("inkeylist")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, a.Delay(site))
	assert.Equal(t, time.Second, a.Scraper(site).ChallengeBackoff)
}

func TestNew_BadProxy(t *testing.T) {
	cfg := config.Defaults()
	cfg.Proxies = []string{"://bad"}
	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}
