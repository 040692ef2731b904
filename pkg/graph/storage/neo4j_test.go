package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Port 1 is never a listening bolt endpoint; dialing it fails fast with
// a refused connection.
const unreachableURI = "bolt://127.0.0.1:1"

func TestConnectReturnsTypedError(t *testing.T) {
	store, err := NewNeo4jStore(unreachableURI, "neo4j", "wrong")
	require.NoError(t, err)
	defer store.Close(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = store.Connect(ctx)
	require.Error(t, err)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Contains(t, []ConnectionErrorKind{ConnNetworkUnavailable, ConnUnknown}, connErr.Kind)
}

func TestQueriesConnectLazily(t *testing.T) {
	store, err := NewNeo4jStore(unreachableURI, "neo4j", "wrong")
	require.NoError(t, err)
	defer store.Close(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// no explicit Connect: the first query must run the backoff connect
	// itself and surface the typed error, never a raw driver failure
	_, err = store.FetchGraph(ctx, FetchSpec{Limit: 1})
	require.Error(t, err)

	var connErr *ConnectionError
	assert.ErrorAs(t, err, &connErr)
}

func TestConnectHonorsContextCancellation(t *testing.T) {
	store, err := NewNeo4jStore(unreachableURI, "neo4j", "wrong")
	require.NoError(t, err)
	defer store.Close(context.Background())

	// expires during the first backoff window
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = store.Connect(ctx)
	require.Error(t, err)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Less(t, time.Since(start), 5*time.Second, "cancellation must cut the backoff short")
}
