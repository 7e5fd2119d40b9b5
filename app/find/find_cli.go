package findcli

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/urfave/cli/v2"

	appbase "github.com/quarrytools/quarry/app/base"
	"github.com/quarrytools/quarry/app/base/util"
	"github.com/quarrytools/quarry/pkg/args"
	"github.com/quarrytools/quarry/pkg/logging"
	"github.com/quarrytools/quarry/qapi"
)

func init() {
	args.Default.MustAttach(findCmdDef,
		"long", "very_long", "tags", "install_status", "constraint")
	appbase.App.Commands = append(appbase.App.Commands, findCmdDef)
}

var findCmdDef = &cli.Command{
	Name:  "find",
	Usage: "List and search installed packages",
	Description: heredoc.Doc(`
		Lists installed packages matching the given constraint specs.
		With no constraint, every installed package is listed. When an
		environment is active, results are restricted to its installed
		subset.
	`),
	Action: util.ChainCmdMiddleware(cmdFind,
		util.CmdMiddlewareLogging,
		util.CmdMiddlewareTracingConfig,
		util.CmdMiddlewareTracingSpan,
	),
}

func cmdFind(c *cli.Context) error {
	logger := logging.Ctx(c.Context)
	ns, err := args.Default.Bind(c)
	if err != nil {
		return err
	}

	recs, err := ns.Specs().Resolve(qapi.Filters{Tags: ns.Strings("tags")})
	if err != nil {
		return err
	}

	for _, rec := range recs {
		line := rec.Ident.String()
		switch {
		case ns.Bool("very_long"):
			line = fmt.Sprintf("%s  %s", rec.Hash(), line)
		case ns.Bool("long"):
			line = fmt.Sprintf("%s  %s", rec.Hash().Short(), line)
		}
		if ns.Bool("install_status") {
			marker := " "
			if rec.Installed {
				marker = "+"
			}
			line = fmt.Sprintf("[%s] %s", marker, line)
		}
		fmt.Fprintf(c.App.Writer, "%s\n", line)
	}
	logger.Info("find", "%d installed packages", len(recs))
	return nil
}
