package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/modelgrid/modelgrid/pkg/db"
)

// definitionsWatchCmd represents the definitions watch command
var definitionsWatchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Watch a file and reload definitions when it's modified",
	Long: `Watch a file and reload model definitions when it changes.

To trigger a reload, replace the contents of the watched file with the path
to a definitions YAML file. The path must be visible to the process running
"modelgridctl definitions watch".

Example:
  modelgridctl definitions watch /run/modelgrid/definitions/load`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := watchDefinitions(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to watch definitions: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	definitionsCmd.AddCommand(definitionsWatchCmd)
}

func watchDefinitions(filename string) error {
	database, err := db.Connect(db.Config{})
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filename); err != nil {
		return fmt.Errorf("failed to watch file %s: %w", filename, err)
	}

	fmt.Printf("Watching %s for definition changes\n", filename)

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				fmt.Printf("[%s] File modified, reloading definitions...\n", time.Now().Format(time.RFC3339))

				// Read the file to get the definitions path
				content, err := os.ReadFile(filename)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
					continue
				}

				definitionsPath := strings.TrimSpace(string(content))
				if definitionsPath == "" {
					continue
				}

				if err := loadDefinitionsFile(database, definitionsPath); err != nil {
					fmt.Fprintf(os.Stderr, "Error loading definitions: %v\n", err)
				} else {
					fmt.Printf("Definitions loaded successfully from %s\n", definitionsPath)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
		case sig := <-sigChan:
			fmt.Printf("Received signal %v, shutting down\n", sig)
			return nil
		}
	}
}
