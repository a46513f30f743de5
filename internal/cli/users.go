package cli

import (
	"errors"
	"fmt"

	"cashloan/internal/backend"
	"cashloan/internal/domain/models"
	"cashloan/internal/listview"
	"cashloan/internal/views"

	"github.com/spf13/cobra"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List and update users",
	}
	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersUpdateCmd())
	return cmd
}

func newUsersListCmd() *cobra.Command {
	flags := newListFlags("status")
	var admin bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, _, err := getAuthedClient()
			if err != nil {
				return err
			}
			q, err := flags.query(listview.NewQuery(listview.DefaultPageSize))
			if err != nil {
				return err
			}
			desc := views.Users()
			if admin {
				desc = views.AdminUsers()
			}
			p, err := fetchView(commandContext(cmd), store, desc, backend.UserFetcher(client, store), q)
			if err != nil {
				return err
			}
			if flags.asJSON {
				return printJSON(cmd.OutOrStdout(), p)
			}
			printUsers(cmd.OutOrStdout(), p)
			return nil
		},
	}
	flags.bind(cmd, true)
	cmd.Flags().BoolVar(&admin, "admin", false, "Use the admin dashboard view (name+email search, local paging)")
	return cmd
}

func newUsersUpdateCmd() *cobra.Command {
	var first, last, email, phone, address, role, status string

	cmd := &cobra.Command{
		Use:     "update <user-id>",
		Short:   "Update a user; only the given fields are sent",
		Example: `  loanctl users update 7 --status approved --role lender`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := int64Arg(args, 0, "user id")
			if err != nil {
				return err
			}
			var body models.UserUpdate
			set := func(flag string, v *string, dst **string) {
				if cmd.Flags().Changed(flag) {
					*dst = v
				}
			}
			set("first-name", &first, &body.FirstName)
			set("last-name", &last, &body.LastName)
			set("email", &email, &body.Email)
			set("phone", &phone, &body.Phone)
			set("address", &address, &body.Address)
			set("role", &role, &body.Role)
			set("status", &status, &body.Status)
			if body == (models.UserUpdate{}) {
				return errors.New("nothing to update, pass at least one field flag")
			}

			client, store, token, err := getAuthedClient()
			if err != nil {
				return err
			}
			res, err := client.UpdateUser(commandContext(cmd), token, id, body)
			if err != nil {
				return handleAPIError(store, err)
			}
			msg := res.Message
			if msg == "" {
				msg = "User updated"
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&first, "first-name", "", "First name")
	cmd.Flags().StringVar(&last, "last-name", "", "Last name")
	cmd.Flags().StringVar(&email, "email", "", "Email")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone (11 digits)")
	cmd.Flags().StringVar(&address, "address", "", "Address")
	cmd.Flags().StringVar(&role, "role", "", "Role (borrower|lender|loan_officer|admin)")
	cmd.Flags().StringVar(&status, "status", "", "Status (pending|approved|rejected)")
	return cmd
}
