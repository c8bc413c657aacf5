package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/kazem-mohamed/socialhub-app/pkg/cache"
	"github.com/kazem-mohamed/socialhub-app/pkg/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	paths := [][]string{
		{"auth", "login"}, {"auth", "logout"}, {"auth", "whoami"},
		{"feed"}, {"feed", "browse"},
		{"post", "like"}, {"post", "bookmark"}, {"post", "share"}, {"post", "show"},
		{"comment", "list"}, {"comment", "create"}, {"comment", "reply"},
		{"comment", "edit"}, {"comment", "delete"}, {"comment", "like"},
		{"follow"},
		{"notifications", "list"}, {"notifications", "read"}, {"notifications", "read-all"},
		{"profile", "view"}, {"profile", "update"},
		{"cache", "stats"}, {"config", "show"}, {"config", "set"},
		{"version"}, {"completion"},
	}
	for _, path := range paths {
		c, rest, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Empty(t, rest, path)
		assert.Equal(t, path[len(path)-1], c.Name(), path)
	}
}

func TestVersion(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "socialhub v"+Version+"\n", buf.String())
}

func TestLoadPages(t *testing.T) {
	calls := 0
	more := func(context.Context) ([]cache.Record, error) {
		calls++
		if calls == 2 {
			return nil, service.ErrNoMorePages
		}
		return nil, nil
	}

	require.NoError(t, loadPages(context.Background(), 5, more))
	assert.Equal(t, 2, calls, "stops at the last page")

	calls = 0
	require.NoError(t, loadPages(context.Background(), 0, more))
	assert.Zero(t, calls)
}

func TestFeedFlagsExclusive(t *testing.T) {
	assert.NotNil(t, feedCmd.Flags().Lookup("bookmarks"))
	assert.NotNil(t, feedCmd.PersistentFlags().Lookup("mode"))
	assert.NotNil(t, feedBrowseCmd.Flags().Lookup("live"))
}
