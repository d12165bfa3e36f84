package config

import (
	"flag"
	"os"
	"time"

	"github.com/inkwellapp/inkwell/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend server (default from Config)
//	-f string   local database file path
//	-i int      sync interval in milliseconds
//	-n int      sync batch size
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-f", "-i", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerAddr, "a", cfg.ServerAddr, "address of the backend server")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "local database file")
	syncInterval := fs.Int("i", int(cfg.SyncInterval.Milliseconds()), "sync interval (in milliseconds)")
	fs.IntVar(&cfg.SyncBatchSize, "n", cfg.SyncBatchSize, "sync batch size")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SyncInterval = time.Duration(*syncInterval) * time.Millisecond
}
