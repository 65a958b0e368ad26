package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"sharenotes/internal/client/app/views"
	"sharenotes/internal/client/domain/entities"
)

// ErrNothingToPatch возвращается, если patch вызван без изменяемых полей.
var ErrNothingToPatch = errors.New("nothing to patch: set --content, --password or --expiration")

// noteFlags - поля формы заметки из флагов команды.
type noteFlags struct {
	content    string
	password   string
	expiration string
}

func (f *noteFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.content, "content", "", "Note content (5-150 characters)")
	cmd.Flags().StringVar(&f.password, "password", "", "Access password (5-20 characters), prompted when omitted")
	cmd.Flags().StringVar(&f.expiration, "expiration", "", "Expiration date, YYYY-MM-DDTHH:mm local time")
}

// apply переносит в форму только явно заданные флаги.
func (f *noteFlags) apply(cmd *cobra.Command, form *entities.NoteForm) {
	if cmd.Flags().Changed("content") {
		form.Content = f.content
	}
	if cmd.Flags().Changed("password") {
		form.Password = f.password
	}
	if cmd.Flags().Changed("expiration") {
		form.ExpirationDate = f.expiration
	}
}

// changed возвращает явно заданные флаги по именам полей формы.
func (f *noteFlags) changed(cmd *cobra.Command) map[string]string {
	values := make(map[string]string)
	if cmd.Flags().Changed("content") {
		values["content"] = f.content
	}
	if cmd.Flags().Changed("password") {
		values["password"] = f.password
	}
	if cmd.Flags().Changed("expiration") {
		values["expirationDate"] = f.expiration
	}
	return values
}

func (c *cli) createCmd() *cobra.Command {
	var flags noteFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			v := views.NewEditView(c.store, nil, nil, c.cfg.API.GetLocation())
			defer v.Unmount()
			if err := v.Mount(ctx, ""); err != nil {
				return err
			}
			v.Wait()

			form := v.Defaults()
			flags.apply(cmd, &form)
			if form.Password == "" {
				password, err := c.readSecret("Password: ")
				if err != nil {
					return err
				}
				form.Password = password
			}
			return c.save(ctx, v, form)
		},
	}
	flags.bind(cmd)
	return cmd
}

func (c *cli) updateCmd() *cobra.Command {
	var flags noteFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a note, keeping fields that are not set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := parseNoteID(args[0]); err != nil {
				return err
			}

			ctx := cmd.Context()
			v := views.NewEditView(c.store, nil, nil, c.cfg.API.GetLocation())
			defer v.Unmount()
			if err := v.Mount(ctx, args[0]); err != nil {
				return err
			}
			v.Wait()
			if err := c.stateError(); err != nil {
				return err
			}

			form := v.Defaults()
			flags.apply(cmd, &form)
			return c.save(ctx, v, form)
		},
	}
	flags.bind(cmd)
	return cmd
}

// save сохраняет форму через представление и выводит сохраненную заметку.
func (c *cli) save(ctx context.Context, v *views.EditView, form entities.NoteForm) error {
	if err := v.Save(ctx, form, c.account); err != nil {
		return err
	}
	v.Wait()
	if err := c.stateError(); err != nil {
		return err
	}
	return c.renderNote(c.store.Snapshot().Entity)
}

func (c *cli) patchCmd() *cobra.Command {
	var flags noteFlags
	cmd := &cobra.Command{
		Use:   "patch <id>",
		Short: "Update only the given fields of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}

			values := flags.changed(cmd)
			if len(values) == 0 {
				return ErrNothingToPatch
			}
			if err := entities.ValidateFields(values); err != nil {
				return err
			}

			note := entities.Note{ID: entities.Int64(id)}
			note.Content = values["content"]
			note.Password = values["password"]
			if raw, ok := values["expirationDate"]; ok {
				exp, err := entities.ParseFormDateTime(raw, c.cfg.API.GetLocation())
				if err != nil {
					return entities.ValidationErrors{"expirationDate": entities.MsgInvalidDate}
				}
				utc := exp.UTC()
				note.ExpirationDate = &utc
			}

			c.store.PartialUpdate(cmd.Context(), note)
			if err := c.stateError(); err != nil {
				return err
			}
			return c.renderNote(c.store.Snapshot().Entity)
		},
	}
	flags.bind(cmd)
	return cmd
}
