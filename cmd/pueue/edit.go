package main

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pueued/pueue-go/internal/handlers"
)

var editCmd = &cobra.Command{
	Use:   "edit task_id",
	Short: "Edit a queued task's command in $EDITOR before it runs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}

		c, err := dial()
		if err != nil {
			return err
		}
		defer c.Close()

		snapshot, err := c.Edit(handlers.EditRequest{TaskID: id, Accept: false})
		if err != nil {
			return err
		}
		if snapshot.Edit == nil {
			return fmt.Errorf("daemon did not return an edit snapshot for task %d", id)
		}

		edited, err := editInEditor(snapshot.Edit.Command)
		if err != nil {
			return err
		}

		_, err = c.Edit(handlers.EditRequest{
			TaskID:  id,
			Accept:  true,
			Command: edited,
			Path:    snapshot.Edit.Path,
			Label:   snapshot.Edit.Label,
		})
		return err
	},
}

// editInEditor writes initial to a temp file, opens $EDITOR (falling back
// to vi) on it, and returns the edited contents. The task stays locked on
// the daemon for the whole round trip.
func editInEditor(initial string) (string, error) {
	f, err := os.CreateTemp("", "pueue-edit-*.sh")
	if err != nil {
		return "", err
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(initial); err != nil {
		f.Close()
		return "", err
	}
	f.Close()

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	ed := exec.Command(editor, path)
	ed.Stdin = os.Stdin
	ed.Stdout = os.Stdout
	ed.Stderr = os.Stderr
	if err := ed.Run(); err != nil {
		return "", fmt.Errorf("editor exited with an error: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func init() {
	rootCmd.AddCommand(editCmd)
}
