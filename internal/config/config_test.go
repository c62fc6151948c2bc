package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoadMicroblogDefaults(t *testing.T) {
	chdirTemp(t)

	cfg := LoadMicroblog()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8081", cfg.FriendsOrigin)
	assert.Equal(t, time.Duration(0), cfg.FriendsTimeout)
	assert.Equal(t, 100000, cfg.SeedTweetCeiling)
	assert.Equal(t, 1000, cfg.SeedUserCeiling)
	assert.Equal(t, "audit", cfg.AMQPExchange)
	assert.False(t, cfg.DebugRoutes)
}

func TestLoadMicroblogFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("MICROBLOG_PORT", "9000")
	t.Setenv("FRIENDS_CLIENT_TIMEOUT", "2s")
	t.Setenv("SEED_USER_CEILING", "10")
	t.Setenv("DEBUG_ROUTES", "true")
	t.Setenv("SEED_TWEET_CEILING", "not-a-number")

	cfg := LoadMicroblog()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.FriendsTimeout)
	assert.Equal(t, 10, cfg.SeedUserCeiling)
	assert.Equal(t, 100000, cfg.SeedTweetCeiling)
	assert.True(t, cfg.DebugRoutes)
}

func TestLoadFriendsReadsDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FRIENDS_PORT=7001\nFRIENDS_SEED_ON_START=true\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("FRIENDS_PORT")
		os.Unsetenv("FRIENDS_SEED_ON_START")
	})

	cfg := LoadFriends()

	assert.Equal(t, "7001", cfg.Port)
	assert.True(t, cfg.SeedOnStart)
	assert.Equal(t, "psql", cfg.SeedCommand)
}

func TestSeedSequencesMatchCeilingDefaults(t *testing.T) {
	seed, err := os.ReadFile(filepath.Join("..", "..", "sql", "seed_microblog.sql"))
	require.NoError(t, err)

	chdirTemp(t)
	cfg := LoadMicroblog()

	setval := regexp.MustCompile(`setval\('(\w+)', (\d+)\)`)
	got := map[string]int{}
	for _, m := range setval.FindAllStringSubmatch(string(seed), -1) {
		n, err := strconv.Atoi(m[2])
		require.NoError(t, err)
		got[m[1]] = n
	}

	assert.Equal(t, cfg.SeedTweetCeiling, got["tweets_id_seq"])
	assert.Equal(t, cfg.SeedUserCeiling, got["users_id_seq"])
}
