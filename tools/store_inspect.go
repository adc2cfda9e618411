package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"textbox/domain"
	"textbox/internal"
	"textbox/repositories"
	"textbox/services"
	"textbox/storage"
)

// Developer tool: dumps the current store state (users, contacts,
// stats) from either backend without going through the view layer.
func main() {
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	backendName := flag.String("backend", config.Backend, "file | badger")
	flag.Parse()

	logger := logs.GetLoggerFromString(config.LogLevel)

	var backend services.Backend
	switch *backendName {
	case "badger":
		// BypassLockGuard allows opening while the app holds the lock
		opts := badger.DefaultOptions(config.BadgerFilepath).
			WithReadOnly(true).
			WithBypassLockGuard(true).
			WithLoggingLevel(badger.WARNING)
		db, err := badger.Open(opts)
		if err != nil {
			log.Fatalf("Failed to open event log: %v", err)
		}
		defer db.Close()
		backend = repositories.NewEventLog(db, logger)
	case "file":
		backend = storage.NewSnapshotFile(config.SnapshotPath, logger)
	default:
		log.Fatalf("Unknown backend %q", *backendName)
	}

	snapshot, err := backend.Load()
	if err != nil {
		log.Fatalf("Failed to load snapshot: %v", err)
	}

	header := fmt.Sprintf("  ====== textbox store (%s backend) ======", *backendName)
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(header))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Username", "Created", "Last Login", "Contacts"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for name, user := range snapshot.Users {
		table.Append([]string{
			name,
			user.CreatedAt.Format("2006-01-02 15:04:05"),
			user.LastLogin.Format("2006-01-02 15:04:05"),
			strings.Join(snapshot.Contacts[name], ", "),
		})
	}
	table.Render()

	printStats(snapshot.Stats())

	if config.SearchEnabled {
		printIndexCount(config.BlugeFilepath)
	}
}

// printIndexCount is best-effort: the index may not exist yet.
func printIndexCount(path string) {
	reader, err := bluge.OpenReader(bluge.DefaultConfig(path))
	if err != nil {
		fmt.Printf("Search index: unavailable (%v)\n", err)
		return
	}
	defer reader.Close()

	count, err := reader.Count()
	if err != nil {
		fmt.Printf("Search index: count failed (%v)\n", err)
		return
	}
	fmt.Printf("Search index: %d message(s)\n", count)
}

func printStats(stats domain.Stats) {
	fmt.Printf("\nUsers: %d\tContact edges: %d\tMessages: %d\n",
		stats.Users, stats.Contacts, stats.Messages)
}
