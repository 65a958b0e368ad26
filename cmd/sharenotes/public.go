package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sharenotes/internal/client/app/views"
	"sharenotes/pkg/logger"
)

// ErrNoteLocked возвращается, если пароль публичной заметки не подошел.
var ErrNoteLocked = errors.New("note is locked")

func (c *cli) publicCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "public <id>",
		Short: "Open a public note with its access password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			limiter, attempts, err := c.newLimiter(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := attempts.Close(); err != nil {
					logger.Log(ctx).Warn(ctx, LogClosingCache, zap.Error(err))
				}
			}()

			v := views.NewPublicView(c.store, nil, limiter, c.cfg.Access.Dismiss)
			defer v.Unmount()
			v.Mount(ctx, id)

			if !cmd.Flags().Changed("password") {
				if password, err = c.readSecret("Password: "); err != nil {
					return err
				}
			}
			if err := v.Submit(ctx, password); err != nil {
				return err
			}
			v.Wait()

			r := v.Render()
			if r.State != views.Unlocked {
				if r.Remaining >= 0 {
					return fmt.Errorf("%w: %s (%d attempts left)", ErrNoteLocked, r.ErrorMessage, r.Remaining)
				}
				return fmt.Errorf("%w: %s", ErrNoteLocked, r.ErrorMessage)
			}
			return c.renderPublic(r)
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Access password, prompted when omitted")
	return cmd
}
