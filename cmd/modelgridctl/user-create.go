package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modelgrid/modelgrid/pkg/db"
	"github.com/modelgrid/modelgrid/pkg/model"
	gormstore "github.com/modelgrid/modelgrid/pkg/server/store/gorm"
)

// userCreateCmd represents the user create command
var userCreateCmd = &cobra.Command{
	Use:   "create <email> <role>",
	Short: "Create a user",
	Long: `Create a user with the given email and role.

The role decides what the user may do: the configured superuser role manages
model definitions, any other role is checked against each model's RBAC map.

Example:
  modelgridctl user create admin@example.com Admin
  modelgridctl user create alice@example.com Editor`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		email := args[0]
		role := args[1]

		if err := createUser(email, role); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd)
}

func createUser(email, role string) error {
	database, err := db.Connect(db.Config{})
	if err != nil {
		return err
	}

	usersStore := gormstore.NewUsersStore(database)

	user := &model.User{Email: email, Role: role}
	if err := usersStore.Create(user); err != nil {
		return err
	}

	fmt.Printf("Created user %s with role %s (id: %s)\n", user.Email, user.Role, user.ID)
	return nil
}
