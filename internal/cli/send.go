// send.go implements the "workscope send" command.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/workscope-dev/workscope/internal/scope"
	"github.com/workscope-dev/workscope/internal/session"
)

const renderWidth = 100

var sendCmd = &cobra.Command{
	Use:   "send <session-id> <message>...",
	Short: "Send a chat message to a session",
	Long: `Append a message to the given session, submit it to the backend and
print the assistant's reply. The first message of a direct chat also
names the session.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	ctrl, err := newController()
	if err != nil {
		return err
	}

	text := strings.Join(args[1:], " ")
	sess, err := ctrl.SendTurn(context.Background(), args[0], text)
	if err != nil {
		return err
	}

	printLastReply(sess)
	return nil
}

// printLastReply renders the most recent assistant message. Work-scope
// replies come out as a formatted document, everything else as text.
func printLastReply(sess *session.Session) {
	for i := len(sess.Messages) - 1; i >= 0; i-- {
		if sess.Messages[i].Role == session.RoleAssistant {
			fmt.Println(scope.Render(scope.Classify(sess.Messages[i].Content, ""), renderWidth))
			return
		}
	}
}
