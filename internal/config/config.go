package config

import "time"

// CacheConfig controls the bounded cache itself.
type CacheConfig struct {
	Capacity     int
	DefaultTTL   time.Duration // 0 = writes without an explicit TTL never expire
	SaveOnChange bool          // snapshot after every mutation vs. manual/autosave only
}

// StorageConfig selects and parameterizes the persistence backend.
type StorageConfig struct {
	Backend      string // "memory", "file" or "sqlite"
	FilePath     string // file backend: snapshot path
	DatabasePath string // sqlite backend: database path
	SnapshotName string // sqlite backend: snapshot row name
}

// AutosaveConfig controls periodic snapshots when SaveOnChange is off.
type AutosaveConfig struct {
	Interval time.Duration // 0 disables the autosaver
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string
}

type Config struct {
	Cache    CacheConfig
	Storage  StorageConfig
	Autosave AutosaveConfig
	Server   ServerConfig
}

// Default returns the configuration the server starts from; cmd/server
// overrides individual fields via flags.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			Capacity:     1024,
			DefaultTTL:   0,
			SaveOnChange: true,
		},
		Storage: StorageConfig{
			Backend:      "memory",
			FilePath:     "cache-snapshot.json",
			DatabasePath: "cache.db",
			SnapshotName: "default",
		},
		Autosave: AutosaveConfig{
			Interval: 30 * time.Second,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}
