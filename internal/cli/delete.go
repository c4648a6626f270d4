// delete.go implements the "workscope delete" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a stored session",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctrl, err := newController()
	if err != nil {
		return err
	}

	if err := ctrl.DeleteSession(args[0]); err != nil {
		return err
	}

	fmt.Printf("Deleted session %s\n", args[0])
	return nil
}
