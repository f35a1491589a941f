package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/modelgrid/modelgrid/pkg/audit"
	"github.com/modelgrid/modelgrid/pkg/config"
	"github.com/modelgrid/modelgrid/pkg/db"
	"github.com/modelgrid/modelgrid/pkg/server"
	"github.com/modelgrid/modelgrid/pkg/server/endpoints"
	gormstore "github.com/modelgrid/modelgrid/pkg/server/store/gorm"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the ModelGrid application server",
	Long: `Run the ModelGrid application server

To run the server requires the environment variables DATABASE_URL and
MODELGRID_TOKEN_SECRET.

By default, database migrations are run on startup. Use --no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Validate required environment variables first (fail fast)
		if os.Getenv("DATABASE_URL") == "" {
			fmt.Fprintln(os.Stderr, "DATABASE_URL environment variable is required")
			os.Exit(1)
		}

		cfg := config.Get()
		if cfg.TokenSecret == "" {
			fmt.Fprintln(os.Stderr, "MODELGRID_TOKEN_SECRET environment variable is required")
			os.Exit(1)
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}

		// Run migrations unless --no-migrate is set
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			log.Println("Running database migrations...")
			if err := runMigrations(); err != nil {
				fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
				os.Exit(1)
			}
		}

		audit.SetEnabled(cfg.AuditEnabled)

		database, err := db.Connect(db.Config{})
		if err != nil {
			fmt.Println("Unable to connect to DB:", err)
			os.Exit(1)
		}

		if host, _ := cmd.Flags().GetString("bind-address"); host != "" {
			cfg.BindAddress = host
		}
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Port = port
		}

		schemaStore := gormstore.NewSchemaStore(database)
		definitionsStore := gormstore.NewDefinitionsStore(database, schemaStore)
		recordsStore := gormstore.NewRecordsStore(database, cfg.RecordListLimitMax)
		usersStore := gormstore.NewUsersStore(database)
		healthStore := gormstore.NewHealthStore(database)

		s := server.NewServer(cfg, database, definitionsStore, recordsStore, schemaStore, usersStore, healthStore)

		endpoints.RegisterAll(s)

		log.Printf("Running server at http://%s:%s...\n", cfg.BindAddress, cfg.Port)
		log.Fatal(s.Start())
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", "", "server listen port (overrides configuration)")
	serverCmd.Flags().StringP("bind-address", "b", "", "server bind address (overrides configuration)")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}
