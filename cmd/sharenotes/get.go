package main

import (
	"github.com/spf13/cobra"

	"sharenotes/internal/client/app/views"
)

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}

			v := views.NewDetailView(c.store, nil)
			defer v.Unmount()
			v.Mount(cmd.Context(), id)
			v.Wait()

			if err := c.stateError(); err != nil {
				return err
			}
			return c.renderNote(v.Render().Note)
		},
	}
}
