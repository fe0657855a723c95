package command

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"petverse/internal/platform/httpclient"
)

// Códigos de salida.
const (
	exitFailure = 1
	exitUsage   = 2
	exitAuth    = 3
)

var errNotLoggedIn = errors.New("not logged in (run `petverse login` first)")

// printJSON escribe v indentado en la salida de la app.
func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return cli.Exit(fmt.Sprintf("error: encode output: %v", err), exitFailure)
	}
	return nil
}

// fail convierte errores de cliente en un cli.ExitCoder con mensaje legible.
func fail(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errNotLoggedIn) {
		return cli.Exit("error: "+err.Error(), exitAuth)
	}
	if apiErr, ok := httpclient.AsAPIError(err); ok {
		code := exitFailure
		if apiErr.Status == 401 || apiErr.Status == 403 {
			code = exitAuth
		}
		return cli.Exit(fmt.Sprintf("error: %s (status %d)", apiErr.Message, apiErr.Status), code)
	}
	return cli.Exit("error: "+err.Error(), exitFailure)
}

// requireToken devuelve el access token guardado o errNotLoggedIn.
func requireToken(c *cli.Context) (*Runtime, string, error) {
	rt := GetRuntime(c)
	if rt == nil {
		return nil, "", cli.Exit("error: runtime not initialized", exitFailure)
	}
	creds, ok, err := rt.Session.Credentials(c.Context)
	if err != nil {
		return nil, "", fail(err)
	}
	if !ok {
		return nil, "", fail(errNotLoggedIn)
	}
	return rt, creds.AccessToken, nil
}

func optString(c *cli.Context, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	v := c.String(name)
	return &v
}

func optFloat(c *cli.Context, name string) *float64 {
	if !c.IsSet(name) {
		return nil
	}
	v := c.Float64(name)
	return &v
}

func optBool(c *cli.Context, name string) *bool {
	if !c.IsSet(name) {
		return nil
	}
	v := c.Bool(name)
	return &v
}
