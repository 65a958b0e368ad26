package main

import (
	"github.com/spf13/cobra"

	"sharenotes/internal/client/app/views"
	"sharenotes/internal/client/ports/api"
)

func (c *cli) listCmd() *cobra.Command {
	var (
		page int
		size int
		sort string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes of the configured account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := api.ListParams{Sort: sort}
			if cmd.Flags().Changed("page") {
				params.Page = &page
			}
			if cmd.Flags().Changed("size") {
				params.Size = &size
			}

			v := views.NewListView(c.store, nil)
			defer v.Unmount()
			v.Mount(cmd.Context(), params)
			v.Wait()

			if err := c.stateError(); err != nil {
				return err
			}
			return c.renderNotes(v.Render().Notes)
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "Page number")
	cmd.Flags().IntVar(&size, "size", 0, "Page size")
	cmd.Flags().StringVar(&sort, "sort", "", "Sort expression, e.g. id,asc")
	return cmd
}
