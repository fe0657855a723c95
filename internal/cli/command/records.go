package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	domain "petverse/internal/domain/records"
)

func recordScopeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{Name: "pet", Usage: "Pet ID", Required: true},
		&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Usage: kindsUsage(), Required: true},
	}
}

func kindsUsage() string {
	kinds := domain.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return "Record kind: " + strings.Join(names, ", ")
}

func fieldFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:    "field",
		Aliases: []string{"f"},
		Usage:   "name=value, repeatable",
	}
}

// RecordsCommand agrupa el CRUD de registros clínicos por mascota.
func RecordsCommand() *cli.Command {
	return &cli.Command{
		Name:  "records",
		Usage: "Manage clinical records of a pet",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List records of a kind",
				Flags:  recordScopeFlags(),
				Action: recordsList,
			},
			{
				Name:   "add",
				Usage:  "Add a record",
				Flags:  append(recordScopeFlags(), fieldFlag()),
				Action: recordsAdd,
			},
			{
				Name:  "update",
				Usage: "Update fields of a record",
				Flags: append(recordScopeFlags(),
					&cli.Int64Flag{Name: "id", Required: true},
					fieldFlag(),
				),
				Action: recordsUpdate,
			},
			{
				Name:   "delete",
				Usage:  "Delete a record",
				Flags:  append(recordScopeFlags(), &cli.Int64Flag{Name: "id", Required: true}),
				Action: recordsDelete,
			},
		},
	}
}

// parseFields convierte los --field name=value al tipo de cada campo del kind.
func parseFields(kind string, pairs []string) (map[string]any, error) {
	k, err := domain.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: --field expects name=value, got %q", domain.ErrInvalidInput, pair)
		}
		v, err := domain.ParseFieldValue(k, name, raw)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

func recordsList(c *cli.Context) error {
	rt, token, err := requireToken(c)
	if err != nil {
		return err
	}
	list, err := rt.Records.List(c.Context, c.Int64("pet"), c.String("kind"), token)
	if err != nil {
		return fail(err)
	}
	return printJSON(c, list)
}

func recordsAdd(c *cli.Context) error {
	rt, token, err := requireToken(c)
	if err != nil {
		return err
	}
	fields, err := parseFields(c.String("kind"), c.StringSlice("field"))
	if err != nil {
		return fail(err)
	}
	rec, err := rt.Records.Create(c.Context, c.Int64("pet"), c.String("kind"), fields, token)
	if err != nil {
		return fail(err)
	}
	return printJSON(c, rec)
}

func recordsUpdate(c *cli.Context) error {
	rt, token, err := requireToken(c)
	if err != nil {
		return err
	}
	fields, err := parseFields(c.String("kind"), c.StringSlice("field"))
	if err != nil {
		return fail(err)
	}
	rec, err := rt.Records.Update(c.Context, c.Int64("pet"), c.String("kind"), c.Int64("id"), fields, token)
	if err != nil {
		return fail(err)
	}
	return printJSON(c, rec)
}

func recordsDelete(c *cli.Context) error {
	rt, token, err := requireToken(c)
	if err != nil {
		return err
	}
	id := c.Int64("id")
	if err := rt.Records.Delete(c.Context, c.Int64("pet"), c.String("kind"), id, token); err != nil {
		return fail(err)
	}
	return printJSON(c, map[string]any{"deleted": id})
}
