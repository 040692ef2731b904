package services

import (
	"os"
	"sync"

	"github.com/graphlens/graphlens/pkg/graph/storage"
)

// DefaultGraphStore builds the Neo4j-backed gateway from the
// environment. The connection itself is verified lazily by the first
// caller holding a context.
var DefaultGraphStore = sync.OnceValue(func() *storage.Neo4jStore {
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		uri = "bolt://localhost:7687"
	}
	user := os.Getenv("NEO4J_USER")
	if user == "" {
		user = "neo4j"
	}
	password := os.Getenv("NEO4J_PASSWORD")

	store, err := storage.NewNeo4jStore(uri, user, password)
	if err != nil {
		panic("failed to initialize Neo4j driver: " + err.Error())
	}
	return store
})
