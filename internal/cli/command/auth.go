package command

import (
	"github.com/urfave/cli/v2"

	"petverse/internal/client/auth"
	"petverse/internal/client/users"
	"petverse/internal/session"
)

type sessionOutput struct {
	TokenType string         `json:"token_type"`
	User      *users.Summary `json:"user,omitempty"`
	Profile   users.Profile  `json:"profile"`
}

func printSession(c *cli.Context, s session.Session) error {
	return printJSON(c, sessionOutput{
		TokenType: s.Credentials.TokenType,
		User:      s.User,
		Profile:   s.Profile,
	})
}

// LoginCommand: login con email y contraseña.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in with email and password",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true, EnvVars: []string{"PETVERSE_PASSWORD"}},
		},
		Action: func(c *cli.Context) error {
			rt := GetRuntime(c)
			s, err := rt.Session.LoginWithEmail(c.Context, auth.EmailLoginPayload{
				Email:    c.String("email"),
				Password: c.String("password"),
			})
			if err != nil {
				return fail(err)
			}
			return printSession(c, s)
		},
	}
}

func LoginGoogleCommand() *cli.Command {
	return &cli.Command{
		Name:  "login-google",
		Usage: "Log in with a Google ID token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id-token", Required: true, EnvVars: []string{"PETVERSE_GOOGLE_ID_TOKEN"}},
		},
		Action: func(c *cli.Context) error {
			rt := GetRuntime(c)
			s, err := rt.Session.LoginWithGoogleIDToken(c.Context, c.String("id-token"))
			if err != nil {
				return fail(err)
			}
			return printSession(c, s)
		},
	}
}

func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account and start a session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true, EnvVars: []string{"PETVERSE_PASSWORD"}},
		},
		Action: func(c *cli.Context) error {
			rt := GetRuntime(c)
			s, err := rt.Session.RegisterWithEmail(c.Context, auth.RegisterPayload{
				Name:     c.String("name"),
				Email:    c.String("email"),
				Password: c.String("password"),
			})
			if err != nil {
				return fail(err)
			}
			return printSession(c, s)
		},
	}
}

type whoamiOutput struct {
	Status  string         `json:"status"`
	Profile *users.Profile `json:"profile,omitempty"`
	Reason  string         `json:"reason,omitempty"`
}

// WhoamiCommand restaura la sesión guardada y muestra el perfil.
func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Restore the stored session and print the profile",
		Action: func(c *cli.Context) error {
			rt := GetRuntime(c)
			res := rt.Session.RestoreProfile(c.Context)

			out := whoamiOutput{Status: res.Status.String(), Profile: res.Profile}
			if res.Cause != nil {
				out.Reason = res.Cause.Error()
			}
			if err := printJSON(c, out); err != nil {
				return err
			}
			if res.Status == session.RestoreRejected {
				return cli.Exit("error: stored session was rejected, run `petverse logout` and log in again", exitAuth)
			}
			return nil
		},
	}
}

func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Forget the stored session",
		Action: func(c *cli.Context) error {
			if err := GetRuntime(c).Session.Logout(c.Context); err != nil {
				return fail(err)
			}
			return printJSON(c, map[string]string{"status": "logged_out"})
		},
	}
}
