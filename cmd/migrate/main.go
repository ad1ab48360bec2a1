package main

import (
	"fmt"
	"os"
	"strconv"

	"shoppinglist-api/internal/migration"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return 1
	}

	migrator, err := migration.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer migrator.Close()

	if err := runCommand(migrator, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func runCommand(migrator *migration.Migrator, command string, args []string) error {
	switch command {
	case "up":
		if err := migrator.Up(); err != nil {
			return err
		}
		fmt.Println("Documents schema is up to date")
		return nil
	case "down":
		if err := migrator.Down(); err != nil {
			return err
		}
		fmt.Println("Rolled back one migration")
		return nil
	case "status":
		return printStatus(migrator)
	case "steps":
		n, err := intArg(args, "steps")
		if err != nil {
			return err
		}
		if err := migrator.Steps(n); err != nil {
			return err
		}
		fmt.Printf("Ran %d migration steps\n", n)
		return nil
	case "force":
		version, err := intArg(args, "force")
		if err != nil {
			return err
		}
		if err := migrator.Force(version); err != nil {
			return err
		}
		fmt.Printf("Forced migration version to %d; no migration was executed\n", version)
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printStatus(migrator *migration.Migrator) error {
	status, err := migrator.Status()
	if err != nil {
		return err
	}
	switch {
	case !status.Applied:
		fmt.Println("No migrations applied")
	case status.Dirty:
		fmt.Printf("Current version: %d (dirty, use 'force' after fixing the schema)\n", status.Version)
	default:
		fmt.Printf("Current version: %d\n", status.Version)
	}
	return nil
}

func intArg(args []string, command string) (int, error) {
	if len(args) < 1 {
		printUsage()
		return 0, fmt.Errorf("'%s' requires a number", command)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid number for '%s': %w", command, err)
	}
	return n, nil
}

func printUsage() {
	fmt.Print(`Documents schema migration tool

Usage:
  migrate <command> [arguments]

Commands:
  up              Apply all pending migrations
  down            Roll back the last migration
  status          Show the current schema version
  steps <n>       Run n migrations (positive = up, negative = down)
  force <version> Set the schema version without running migrations

Environment Variables:
  DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME (default: shoppinglist), DB_SSL_MODE
`)
}
