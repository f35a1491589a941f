package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/modelgrid/modelgrid/pkg/db"
	"github.com/modelgrid/modelgrid/pkg/server/store"
	gormstore "github.com/modelgrid/modelgrid/pkg/server/store/gorm"
)

// definitionsLoadCmd represents the definitions load command
var definitionsLoadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Load model definitions from a YAML file",
	Long: `Load model definitions from a YAML file.

The file holds a list of definition specs. Each spec is validated,
registered, and its table materialized, exactly as through the API.
Specs whose table name is already taken are skipped.

Example:
  modelgridctl definitions load ./models.yml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		database, err := db.Connect(db.Config{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to connect to DB: %v\n", err)
			os.Exit(1)
		}

		if err := loadDefinitionsFile(database, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load definitions: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	definitionsCmd.AddCommand(definitionsLoadCmd)
}

func loadDefinitionsFile(database *gorm.DB, filename string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	var specs []store.DefinitionSpec
	if err := yaml.Unmarshal(content, &specs); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	if len(specs) == 0 {
		return fmt.Errorf("no definitions found in %s", filename)
	}

	schemaStore := gormstore.NewSchemaStore(database)
	definitionsStore := gormstore.NewDefinitionsStore(database, schemaStore)

	failed := 0
	for _, spec := range specs {
		def, warning, err := definitionsStore.Create(spec)
		if err != nil {
			if errors.Is(err, store.ErrDuplicateTableName) {
				fmt.Printf("Skipped %s: %v\n", spec.Name, err)
				continue
			}
			fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", spec.Name, err)
			failed++
			continue
		}

		fmt.Printf("Created model %q with table %q\n", def.Name, def.Table)
		if warning != "" {
			fmt.Printf("Warning: %s\n", warning)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d definition(s) failed to load", failed)
	}
	return nil
}
