package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sharenotes/internal/client/app/views"
)

// ErrDeleteCancelled возвращается, если удаление не подтверждено.
var ErrDeleteCancelled = errors.New("delete cancelled")

func (c *cli) deleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			v := views.NewDeleteView(c.store, nil)
			defer v.Unmount()
			v.Mount(ctx, id)
			v.Wait()
			if err := c.stateError(); err != nil {
				return err
			}

			if !yes {
				confirmed, err := c.confirm(fmt.Sprintf("Are you sure you want to delete Note %d? [y/N] ", id))
				if err != nil {
					return err
				}
				if !confirmed {
					v.Cancel()
					return ErrDeleteCancelled
				}
			}

			if err := v.Confirm(ctx); err != nil {
				return err
			}
			v.Wait()
			if err := c.stateError(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(c.out, "Note %d deleted\n", id)
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without confirmation")
	return cmd
}

func (c *cli) confirm(prompt string) (bool, error) {
	if _, err := fmt.Fprint(c.errOut, prompt); err != nil {
		return false, fmt.Errorf("write prompt: %w", err)
	}
	answer, err := c.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
