// Package fetch picks the command used to download the installer script.
package fetch

import (
	"github.com/coreos/pkg/capnslog"

	"github.com/openinterpreter/oi-bootstrap/internal/pkg/config"
	"github.com/openinterpreter/oi-bootstrap/internal/pkg/pathenv"
)

var plog = capnslog.NewPackageLogger("github.com/openinterpreter/oi-bootstrap", "fetch")

// Select returns the first tool in preference order that resolves on PATH.
//
// If none resolve, the lookup error of the last candidate is returned as is,
// e.g. `exec: "wget": executable file not found in $PATH`.
func Select(env pathenv.Env, tools []config.FetchTool) (config.FetchTool, error) {
	err := pathenv.ErrNotFound
	for _, t := range tools {
		var path string
		path, err = env.LookPath(t.Name)
		if err == nil {
			plog.Debugf("using %s (%s) to fetch", t.Name, path)
			return t, nil
		}
		plog.Infof("%s unavailable: %v", t.Name, err)
	}
	return config.FetchTool{}, err
}
