package command

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"petverse/internal/client/pets"
)

func petFieldFlags(requireCore bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Required: requireCore},
		&cli.StringFlag{Name: "species", Required: requireCore},
		&cli.StringFlag{Name: "breed"},
		&cli.StringFlag{Name: "sex"},
		&cli.StringFlag{Name: "birthdate", Usage: "YYYY-MM-DD"},
		&cli.Float64Flag{Name: "weight", Usage: "kg"},
		&cli.StringFlag{Name: "avatar-url"},
	}
}

func petIDFlag() cli.Flag {
	return &cli.Int64Flag{Name: "id", Usage: "Pet ID", Required: true}
}

// PetsCommand agrupa el CRUD de mascotas.
func PetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "pets",
		Usage: "Manage your pets",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List your pets",
				Action: petsList,
			},
			{
				Name:   "create",
				Usage:  "Create a pet",
				Flags:  petFieldFlags(true),
				Action: petsCreate,
			},
			{
				Name:   "update",
				Usage:  "Update a pet (only the given flags change)",
				Flags:  append([]cli.Flag{petIDFlag()}, petFieldFlags(false)...),
				Action: petsUpdate,
			},
			{
				Name:   "delete",
				Usage:  "Delete a pet",
				Flags:  []cli.Flag{petIDFlag()},
				Action: petsDelete,
			},
			{
				Name:  "upload-image",
				Usage: "Upload the pet avatar",
				Flags: []cli.Flag{
					petIDFlag(),
					&cli.PathFlag{Name: "file", Aliases: []string{"f"}, Required: true},
				},
				Action: petsUploadImage,
			},
		},
	}
}

func petsList(c *cli.Context) error {
	rt, token, err := requireToken(c)
	if err != nil {
		return err
	}
	list, err := rt.Pets.List(c.Context, token)
	if err != nil {
		return fail(err)
	}
	return printJSON(c, list)
}

func petsCreate(c *cli.Context) error {
	rt, token, err := requireToken(c)
	if err != nil {
		return err
	}
	pet, err := rt.Pets.Create(c.Context, pets.CreateInput{
		Name:      c.String("name"),
		Species:   c.String("species"),
		Breed:     optString(c, "breed"),
		Sex:       optString(c, "sex"),
		Birthdate: optString(c, "birthdate"),
		Weight:    optFloat(c, "weight"),
		AvatarURL: optString(c, "avatar-url"),
	}, token)
	if err != nil {
		return fail(err)
	}
	return printJSON(c, pet)
}

func petsUpdate(c *cli.Context) error {
	rt, token, err := requireToken(c)
	if err != nil {
		return err
	}
	pet, err := rt.Pets.Update(c.Context, c.Int64("id"), pets.UpdateInput{
		Name:      optString(c, "name"),
		Species:   optString(c, "species"),
		Breed:     optString(c, "breed"),
		Sex:       optString(c, "sex"),
		Birthdate: optString(c, "birthdate"),
		Weight:    optFloat(c, "weight"),
		AvatarURL: optString(c, "avatar-url"),
	}, token)
	if err != nil {
		return fail(err)
	}
	return printJSON(c, pet)
}

func petsDelete(c *cli.Context) error {
	rt, token, err := requireToken(c)
	if err != nil {
		return err
	}
	id := c.Int64("id")
	if err := rt.Pets.Delete(c.Context, id, token); err != nil {
		return fail(err)
	}
	return printJSON(c, map[string]any{"deleted": id})
}

func petsUploadImage(c *cli.Context) error {
	rt, token, err := requireToken(c)
	if err != nil {
		return err
	}
	path := c.Path("file")
	f, err := os.Open(path)
	if err != nil {
		return fail(fmt.Errorf("open image: %w", err))
	}
	defer f.Close()

	url, err := rt.Pets.UploadImage(c.Context, c.Int64("id"), filepath.Base(path), f, token)
	if err != nil {
		return fail(err)
	}
	return printJSON(c, map[string]string{"url": url})
}
