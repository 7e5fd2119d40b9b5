package uninstallcli

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/serum-errors/go-serum"
	"github.com/urfave/cli/v2"

	appbase "github.com/quarrytools/quarry/app/base"
	"github.com/quarrytools/quarry/app/base/util"
	"github.com/quarrytools/quarry/pkg/args"
	"github.com/quarrytools/quarry/pkg/logging"
	"github.com/quarrytools/quarry/pkg/store"
	"github.com/quarrytools/quarry/qapi"
)

func init() {
	args.Default.MustAttach(uninstallCmdDef,
		"yes_to_all", "recurse_dependents", "constraint")
	appbase.App.Commands = append(appbase.App.Commands, uninstallCmdDef)
}

var uninstallCmdDef = &cli.Command{
	Name:  "uninstall",
	Usage: "Remove installed packages",
	Description: heredoc.Doc(`
		Removes the installed packages matching the given constraint
		specs. Without --yes-to-all, only reports what would be removed.
	`),
	Action: util.ChainCmdMiddleware(cmdUninstall,
		util.CmdMiddlewareLogging,
		util.CmdMiddlewareTracingConfig,
		util.CmdMiddlewareTracingSpan,
	),
}

func cmdUninstall(c *cli.Context) error {
	logger := logging.Ctx(c.Context)
	ns, err := args.Default.Bind(c)
	if err != nil {
		return err
	}

	recs, err := ns.Specs().Resolve(qapi.Filters{})
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return serum.Error(qapi.ECodeMissing,
			serum.WithMessageLiteral("no installed packages match the requested constraint"))
	}

	// Dependent packages are pulled in up front so the removal list is
	// complete before anything is touched.
	if ns.Bool("dependents") {
		byHash := map[qapi.PackageHash]*qapi.PackageRecord{}
		for _, rec := range recs {
			byHash[rec.Hash()] = rec
		}
		for _, rec := range recs {
			for _, dep := range store.Global().Dependents(qapi.PackageName(rec.Ident.Name)) {
				byHash[dep.Hash()] = dep
			}
		}
		recs = recs[:0]
		for _, rec := range byHash {
			recs = append(recs, rec)
		}
		qapi.SortRecords(recs)
	}

	if !ns.Bool("yes_to_all") {
		for _, rec := range recs {
			fmt.Fprintf(c.App.Writer, "would uninstall %s\n", rec.Ident.String())
		}
		logger.Info("uninstall", "re-run with --yes-to-all to remove %d packages", len(recs))
		return nil
	}

	for _, rec := range recs {
		store.Global().Remove(rec.Hash())
		fmt.Fprintf(c.App.Writer, "uninstalled %s\n", rec.Ident.String())
	}
	return nil
}
