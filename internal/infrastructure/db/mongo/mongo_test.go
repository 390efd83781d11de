package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func TestClientOptions(t *testing.T) {
	opts := clientOptions(Config{URI: "mongodb://localhost:27017", Database: "peerrent", Timeout: 2 * time.Second})

	require.NotNil(t, opts.AppName)
	assert.Equal(t, "peerrent-auth", *opts.AppName)
	require.NotNil(t, opts.ServerSelectionTimeout)
	assert.Equal(t, 2*time.Second, *opts.ServerSelectionTimeout)
	require.NotNil(t, opts.ConnectTimeout)
	assert.Equal(t, 2*time.Second, *opts.ConnectTimeout)
	require.NotNil(t, opts.ReadPreference)
	assert.Equal(t, readpref.PrimaryMode, opts.ReadPreference.Mode())
	require.NotNil(t, opts.RetryWrites)
	assert.True(t, *opts.RetryWrites)
}

func TestClientOptions_DefaultTimeout(t *testing.T) {
	opts := clientOptions(Config{URI: "mongodb://localhost:27017", Database: "peerrent"})

	require.NotNil(t, opts.ServerSelectionTimeout)
	assert.Equal(t, defaultTimeout, *opts.ServerSelectionTimeout)
}

func TestConnect_RequiresDatabase(t *testing.T) {
	_, _, err := Connect(context.Background(), Config{URI: "mongodb://localhost:27017"})
	assert.ErrorContains(t, err, "database name is required")
}

func TestConnect_UnreachableServer(t *testing.T) {
	start := time.Now()
	_, _, err := Connect(context.Background(), Config{
		URI:      "mongodb://127.0.0.1:1/?directConnection=true",
		Database: "peerrent",
		Timeout:  200 * time.Millisecond,
	})

	assert.ErrorContains(t, err, "mongo ping peerrent")
	assert.Less(t, time.Since(start), 5*time.Second)
}
