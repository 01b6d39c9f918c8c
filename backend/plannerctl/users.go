package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"planner-board/backend/planner-service/models"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Query the site user directory",
}

var usersSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find users whose name or email contains the query",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersSearch,
}

var usersAddCmd = &cobra.Command{
	Use:   "add <name> <email>",
	Short: "Register a user in a directory the planner manages itself",
	Args:  cobra.ExactArgs(2),
	RunE:  runUsersAdd,
}

// userRegistrar is implemented by directories that can provision users.
type userRegistrar interface {
	AddUser(ctx context.Context, name, email string) (models.DirectoryUser, error)
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersSearchCmd, usersAddCmd)
}

func runUsersAdd(cmd *cobra.Command, args []string) error {
	if !models.HasEmail(args[1]) {
		return fmt.Errorf("invalid email %q", args[1])
	}
	app, cfg, _, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	registrar, ok := app.Directory.(userRegistrar)
	if !ok {
		return fmt.Errorf("the %s directory does not accept new users", cfg.StoreDriver)
	}
	user, err := registrar.AddUser(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added user %d: %s <%s>\n", user.ID, user.Name, user.Email)
	return nil
}

func runUsersSearch(cmd *cobra.Command, args []string) error {
	app, _, _, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	users := app.Users.Search(cmd.Context(), args[0])
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), users)
	}
	if len(users) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching users.")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tEMAIL")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\n", u.Name, u.Email)
	}
	return w.Flush()
}
