package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"moodbot/environment"
)

func newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "Print registered users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printUsers(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func printUsers(ctx context.Context, out io.Writer) error {
	mainEnv, err := environment.GetMainEnvironment()
	if err != nil {
		return err
	}
	loc, err := mainEnv.Location()
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(mainEnv, environment.GetPostgreSQLEnvironment(), loc)
	if err != nil {
		return err
	}
	defer closeStore()

	users, err := store.LoadUsers(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USER_ID\tPROFESSION")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\n", u.UserID, u.Profession)
	}
	fmt.Fprintf(w, "\ntotal: %d\n", len(users))
	return w.Flush()
}
