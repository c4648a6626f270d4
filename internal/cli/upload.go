// upload.go implements the "workscope upload" command.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a project document and print the generated scope",
	Long: `Create a document session for the given file, submit it to the
backend and print the assistant's reply. The session id is printed so
the conversation can be continued with "workscope send".`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctrl, err := newController()
	if err != nil {
		return err
	}

	sess, err := ctrl.UploadDocument(context.Background(), args[0])
	if err != nil {
		if sess != nil {
			fmt.Printf("Session %s created, but the upload failed.\n", sess.ID)
			fmt.Println("Retry with: workscope send", sess.ID, "<message>")
		}
		return err
	}

	fmt.Printf("Session %s (%s)\n\n", sess.ID, sess.Name)
	printLastReply(sess)
	return nil
}
