package generator

import (
	"os"

	"fwtest/internal/config"
	"fwtest/internal/graph"
)

// defaultPath is used when the host has no PATH
const defaultPath = "/usr/local/bin:/opt/bin:/bin:/usr/bin"

// NewEnvironment builds the construction environment from cfg. ENV starts
// from the host PATH only; extra holds dotenv variables layered on top.
func NewEnvironment(cfg *config.Config, lookup LookupFunc, extra map[string]string) *graph.Environment {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	env := graph.NewEnvironment()
	env.Set(graph.VarCXX, cfg.CXX)
	env.SetList(graph.VarLinkFlags, cfg.LinkFlags)
	env.SetList(graph.VarLibs, cfg.Libs)
	env.Set(graph.VarShell, cfg.Shell)

	path, ok := lookup("PATH")
	if !ok || path == "" {
		path = defaultPath
	}
	env.ENV["PATH"] = path
	if home, ok := lookup("HOME"); ok {
		env.ENV["HOME"] = home
	}

	for k, v := range extra {
		env.ENV[k] = v
	}
	return env
}
