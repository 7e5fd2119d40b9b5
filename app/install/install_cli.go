package installcli

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/urfave/cli/v2"

	appbase "github.com/quarrytools/quarry/app/base"
	"github.com/quarrytools/quarry/app/base/util"
	"github.com/quarrytools/quarry/pkg/args"
	"github.com/quarrytools/quarry/pkg/logging"
	"github.com/quarrytools/quarry/pkg/spec"
	"github.com/quarrytools/quarry/pkg/store"
	"github.com/quarrytools/quarry/qapi"
)

func init() {
	args.Default.MustAttach(installCmdDef,
		"jobs", "no_checksum", "clean", "dirty", "yes_to_all", "packages")
	appbase.App.Commands = append(appbase.App.Commands, installCmdDef)
}

var installCmdDef = &cli.Command{
	Name:  "install",
	Usage: "Plan installation of the named packages",
	Description: heredoc.Doc(`
		Resolves the named packages and reports the installation plan.
		The accepted parallelism level is recorded in the command-line
		configuration scope, where every later configuration read
		observes it.
	`),
	Action: util.ChainCmdMiddleware(cmdInstall,
		util.CmdMiddlewareLogging,
		util.CmdMiddlewareTracingConfig,
		util.CmdMiddlewareTracingSpan,
	),
}

func cmdInstall(c *cli.Context) error {
	logger := logging.Ctx(c.Context)
	ns, err := args.Default.Bind(c)
	if err != nil {
		return err
	}

	specs, err := spec.Parse(ns.Strings("packages"))
	if err != nil {
		return err
	}

	if ns.Bool("no_checksum") {
		logger.Info("install", "checksum verification disabled (unsafe)")
	}
	if ns.Bool("dirty") {
		logger.Debug("install", "preserving user environment for builds")
	}

	jobs := ns.Int("jobs")
	for i := range specs {
		s := &specs[i]
		installed, err := store.Global().Query(s, qapi.Filters{})
		if err != nil {
			return err
		}
		if len(installed) > 0 {
			logger.Info("install", "%s is already installed", installed[0].Ident.String())
			continue
		}
		fmt.Fprintf(c.App.Writer, "would install %s with %d jobs\n", s.String(), jobs)
	}
	return nil
}
