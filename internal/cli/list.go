// list.go implements the "workscope list" command showing stored sessions.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/workscope-dev/workscope/internal/session"
)

var listKind string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	Long: `Display every stored session with its id, kind, name and message
count. Use --kind to show only direct chats or only document sessions.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listKind, "kind", "", "Filter by kind: direct or document")
}

func runList(cmd *cobra.Command, args []string) error {
	switch listKind {
	case "", string(session.KindDirect), string(session.KindDocument):
	default:
		return fmt.Errorf("unknown kind %q (want direct or document)", listKind)
	}

	ctrl, err := newController()
	if err != nil {
		return err
	}

	sessions := ctrl.Store().List(session.Kind(listKind))
	if len(sessions) == 0 {
		fmt.Println("No sessions yet. Start one with: workscope upload <file> or the TUI.")
		return nil
	}

	for _, s := range sessions {
		extra := ""
		if s.Kind == session.KindDocument && s.SourceFileName != "" {
			extra = "  " + s.SourceFileName
		}
		fmt.Printf("  %-14s  %-8s  %3d msgs  %s%s\n", s.ID, s.Kind, len(s.Messages), s.Name, extra)
	}

	fmt.Println()
	fmt.Printf("%d session(s)\n", len(sessions))
	return nil
}
