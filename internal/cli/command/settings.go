package command

import (
	"github.com/urfave/cli/v2"

	"petverse/internal/client/users"
)

func SettingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Read or change your account settings",
		Subcommands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Print current settings",
				Action: func(c *cli.Context) error {
					rt, token, err := requireToken(c)
					if err != nil {
						return err
					}
					s, err := rt.Users.Settings(c.Context, token)
					if err != nil {
						return fail(err)
					}
					return printJSON(c, s)
				},
			},
			{
				Name:  "set",
				Usage: "Change settings (only the given flags change)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "notifications"},
					&cli.StringFlag{Name: "privacy-level"},
					&cli.StringFlag{Name: "language"},
					&cli.StringFlag{Name: "timezone"},
				},
				Action: func(c *cli.Context) error {
					rt, token, err := requireToken(c)
					if err != nil {
						return err
					}
					s, err := rt.Users.UpdateSettings(c.Context, users.Settings{
						NotificationsEnabled: optBool(c, "notifications"),
						PrivacyLevel:         optString(c, "privacy-level"),
						Language:             optString(c, "language"),
						Timezone:             optString(c, "timezone"),
					}, token)
					if err != nil {
						return fail(err)
					}
					return printJSON(c, s)
				},
			},
		},
	}
}

func AddressCommand() *cli.Command {
	return &cli.Command{
		Name:  "address",
		Usage: "Read or change your address",
		Subcommands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Print current address",
				Action: func(c *cli.Context) error {
					rt, token, err := requireToken(c)
					if err != nil {
						return err
					}
					a, err := rt.Users.Address(c.Context, token)
					if err != nil {
						return fail(err)
					}
					return printJSON(c, a)
				},
			},
			{
				Name:  "set",
				Usage: "Change address (only the given flags change)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "country"},
					&cli.StringFlag{Name: "city"},
					&cli.StringFlag{Name: "address"},
					&cli.Float64Flag{Name: "lat"},
					&cli.Float64Flag{Name: "lng"},
				},
				Action: func(c *cli.Context) error {
					rt, token, err := requireToken(c)
					if err != nil {
						return err
					}
					a, err := rt.Users.UpdateAddress(c.Context, users.Address{
						Country: optString(c, "country"),
						City:    optString(c, "city"),
						Address: optString(c, "address"),
						Lat:     optFloat(c, "lat"),
						Lng:     optFloat(c, "lng"),
					}, token)
					if err != nil {
						return fail(err)
					}
					return printJSON(c, a)
				},
			},
		},
	}
}
