package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"sharenotes/internal/client/app/views"
	"sharenotes/internal/client/domain/entities"
)

// Форматы вывода.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// ErrUnknownFormat возвращается для неподдерживаемого значения --output.
var ErrUnknownFormat = errors.New("unknown output format")

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// render выводит v в выбранном формате. Для таблицы вызывается table.
func (c *cli) render(v any, table func(w *tabwriter.Writer)) error {
	switch c.output {
	case formatJSON:
		encoder := json.NewEncoder(c.out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case formatYAML:
		encoder := yaml.NewEncoder(c.out)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return nil
	default:
		w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		table(w)
		if err := w.Flush(); err != nil {
			return fmt.Errorf("write table: %w", err)
		}
		return nil
	}
}

func (c *cli) renderNotes(notes []entities.Note) error {
	return c.render(notes, func(w *tabwriter.Writer) {
		if len(notes) == 0 {
			fmt.Fprintln(w, views.MsgNoNotes)
			return
		}
		fmt.Fprintln(w, "ID\tCONTENT\tEXPIRES\tLINK\tOWNER")
		for _, n := range notes {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				optID(n.ID), n.Content, optTime(n.ExpirationDate), optString(n.Link), owner(n.User))
		}
	})
}

func (c *cli) renderNote(n entities.Note) error {
	return c.render(n, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "ID\t%s\n", optID(n.ID))
		fmt.Fprintf(w, "CONTENT\t%s\n", n.Content)
		fmt.Fprintf(w, "EXPIRES\t%s\n", optTime(n.ExpirationDate))
		fmt.Fprintf(w, "LINK\t%s\n", optString(n.Link))
		fmt.Fprintf(w, "OWNER\t%s\n", owner(n.User))
	})
}

func (c *cli) renderPublic(r views.PublicRender) error {
	return c.render(r, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "STATE\t%s\n", r.State)
		if r.Note != nil {
			fmt.Fprintf(w, "ID\t%s\n", optID(r.Note.ID))
			fmt.Fprintf(w, "CONTENT\t%s\n", r.Note.Content)
			fmt.Fprintf(w, "EXPIRES\t%s\n", optTime(r.Note.ExpirationDate))
		}
		if r.ErrorMessage != "" {
			fmt.Fprintf(w, "ERROR\t%s\n", r.ErrorMessage)
		}
		if r.Remaining >= 0 {
			fmt.Fprintf(w, "REMAINING\t%d\n", r.Remaining)
		}
	})
}

func optID(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *id)
}

func optString(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func optTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}

func owner(u *entities.User) string {
	if u == nil {
		return "-"
	}
	return u.Login
}
