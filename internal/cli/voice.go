// voice.go implements the "workscope voice" command.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/workscope-dev/workscope/internal/session"
)

var voiceCmd = &cobra.Command{
	Use:   "voice <session-id> <audio-file>",
	Short: "Send a recorded audio file as a chat turn",
	Long: `Submit an audio recording to the backend. The transcription becomes
the user message and the assistant's reply is printed.`,
	Args: cobra.ExactArgs(2),
	RunE: runVoice,
}

func runVoice(cmd *cobra.Command, args []string) error {
	ctrl, err := newController()
	if err != nil {
		return err
	}

	sess, err := ctrl.SendVoiceTurn(context.Background(), args[0], args[1])
	if err != nil {
		return err
	}

	if n := len(sess.Messages); n >= 2 && sess.Messages[n-2].Role == session.RoleUser {
		fmt.Printf("Transcribed: %s\n\n", sess.Messages[n-2].Content)
	}
	printLastReply(sess)
	return nil
}
