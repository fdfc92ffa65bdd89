// Package cache stores backend responses so repeated runs on the same screenshot do
// not call a detection or translation service again.
//
// A Store is a plain namespaced key-value store. Callers pick the namespace (usually
// the backend name and response version) and derive the key from a fingerprint of the
// request, so identical requests share one entry and distinct requests never collide.
//
// # Implementations
//
//   - FileStore: one JSON file per entry under ~/.labelingo/cache by default.
//   - RedisStore: shared cache for several machines, using github.com/redis/go-redis/v9.
//   - MemoryStore: process-local, for the MCP server and tests.
//   - NopStore: disables caching.
//
// Stores are passed explicitly to whatever needs them; there is no package-level
// default store.
package cache
