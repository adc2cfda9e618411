package internal

import "time"

// Config is the process-wide configuration, populated from the
// environment with Netflix/go-env after an optional .env load.
type Config struct {
	// Backend selects the persistence strategy: "file" for the JSON
	// snapshot document, "badger" for the append-only event log.
	Backend           string        `env:"STORE_BACKEND,default=file"`
	SnapshotPath      string        `env:"SNAPSHOT_PATH,default=./data/chat_data.json"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,default=./data/badger"`
	BlugeFilepath     string        `env:"BLUGE_FILEPATH,default=./data/bluge"`
	SearchEnabled     bool          `env:"SEARCH_ENABLED,default=true"`
	LockAttempts      int           `env:"LOCK_ATTEMPTS,default=50"`
	LockRetryInterval time.Duration `env:"LOCK_RETRY_INTERVAL,default=10ms"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
}
