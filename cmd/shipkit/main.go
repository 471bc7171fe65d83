// Command shipkit is an operator CLI for shipkit-managed databases:
// apply and roll back schema migrations, inspect their status, and read
// or write settings.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/shipkit/shipkit/db"
	"github.com/shipkit/shipkit/migrate"
	"github.com/shipkit/shipkit/settings"
	"github.com/shipkit/shipkit/theme"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var err error
	switch os.Args[1] {
	case "up", "down", "status":
		err = runMigrate(os.Args[1], os.Args[2:], logger)
	case "settings":
		err = runSettings(os.Args[2:])
	case "theme":
		err = runTheme(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `usage: shipkit <command> [flags]

  up       apply all pending migrations
  down     roll back the most recently applied migration
  status   show applied/pending state of every migration
  settings get|set|list|del settings values
  theme    print a theme's CSS variables

Common flags: -db <file> (or SHIPKIT_DB), -dir <migrations dir>
`)
}

func openPool(path string) (*db.Pool, error) {
	if path == "" {
		path = os.Getenv("SHIPKIT_DB")
	}
	return db.Open(path, db.Options{})
}

func runMigrate(command string, args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	dbPath := fs.String("db", "", "database file path")
	dir := fs.String("dir", "migrations", "migrations directory")
	fs.Parse(args)

	pool, err := openPool(*dbPath)
	if err != nil {
		return err
	}
	defer pool.Close()

	registry := migrate.NewRegistry()
	if err := registry.LoadDir(*dir); err != nil {
		return err
	}
	engine := migrate.New(pool, registry, logger)
	ctx := context.Background()

	switch command {
	case "up":
		applied, err := engine.ApplyPending(ctx)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Println("nothing to apply")
			return nil
		}
		for _, st := range applied {
			fmt.Printf("applied %d_%s\n", st.Version, st.Name)
		}
	case "down":
		st, err := engine.Rollback(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("rolled back %d_%s\n", st.Version, st.Name)
	case "status":
		statuses, err := engine.Status(ctx)
		if err != nil {
			return err
		}
		for _, st := range statuses {
			if st.Applied {
				fmt.Printf("%6d  %-30s applied %s\n", st.Version, st.Name, st.AppliedAt.Format("2006-01-02 15:04:05"))
			} else {
				fmt.Printf("%6d  %-30s pending\n", st.Version, st.Name)
			}
		}
	}
	return nil
}

func runSettings(args []string) error {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	dbPath := fs.String("db", "", "database file path")
	ns := fs.String("ns", "app", "settings namespace")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) == 0 {
		return fmt.Errorf("settings: expected get, set, list or del")
	}

	pool, err := openPool(*dbPath)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx := context.Background()
	store, err := settings.NewStore(ctx, pool)
	if err != nil {
		return err
	}

	switch rest[0] {
	case "get":
		if len(rest) != 2 {
			return fmt.Errorf("settings get: expected a key")
		}
		value, err := store.Get(ctx, *ns, rest[1])
		if err != nil {
			return err
		}
		fmt.Println(string(value))
	case "set":
		if len(rest) != 3 {
			return fmt.Errorf("settings set: expected a key and a JSON value")
		}
		return store.Set(ctx, *ns, rest[1], json.RawMessage(rest[2]))
	case "list":
		values, err := store.All(ctx, *ns)
		if err != nil {
			return err
		}
		for key, value := range values {
			fmt.Printf("%s = %s\n", key, value)
		}
	case "del":
		if len(rest) != 2 {
			return fmt.Errorf("settings del: expected a key")
		}
		return store.Delete(ctx, *ns, rest[1])
	default:
		return fmt.Errorf("settings: unknown subcommand %q", rest[0])
	}
	return nil
}

func runTheme(args []string) error {
	fs := flag.NewFlagSet("theme", flag.ExitOnError)
	name := fs.String("name", "light", "theme name")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) != 1 || rest[0] != "css" {
		return fmt.Errorf("theme: expected the css subcommand")
	}

	engine, err := theme.NewEngine(theme.DefaultThemes(), *name)
	if err != nil {
		return err
	}
	fmt.Println(engine.CSS())
	return nil
}
