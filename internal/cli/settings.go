package cli

import (
	"fmt"

	"cashloan/internal/domain/models"
	"cashloan/internal/validate"

	"github.com/spf13/cobra"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Account settings",
	}
	cmd.AddCommand(newSettingsContactCmd())
	return cmd
}

func newSettingsContactCmd() *cobra.Command {
	var form models.ContactUpdate

	cmd := &cobra.Command{
		Use:     "contact",
		Short:   "Update your contact details",
		Example: `  loanctl settings contact --first-name Jane --last-name Doe --phone 09171234567`,
		RunE: func(cmd *cobra.Command, args []string) error {
			form.Normalize()
			// invalid input never reaches the network
			if err := validate.Struct(form); err != nil {
				return err
			}
			client, store, token, err := getAuthedClient()
			if err != nil {
				return err
			}
			res, err := client.UpdateContact(commandContext(cmd), token, form)
			if err != nil {
				return handleAPIError(store, err)
			}
			msg := res.Message
			if msg == "" {
				msg = "Contact information updated"
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&form.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "Phone number, exactly 11 digits")
	cmd.Flags().StringVar(&form.Address, "address", "", "Address")
	return cmd
}
