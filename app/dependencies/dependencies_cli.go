package dependenciescli

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/serum-errors/go-serum"
	"github.com/urfave/cli/v2"

	appbase "github.com/quarrytools/quarry/app/base"
	"github.com/quarrytools/quarry/app/base/util"
	"github.com/quarrytools/quarry/pkg/args"
	"github.com/quarrytools/quarry/pkg/deptype"
	"github.com/quarrytools/quarry/pkg/store"
	"github.com/quarrytools/quarry/qapi"
)

func init() {
	args.Default.MustAttach(dependenciesCmdDef,
		"deptype", "recurse_dependencies", "install_status", "package")
	appbase.App.Commands = append(appbase.App.Commands, dependenciesCmdDef)
}

var dependenciesCmdDef = &cli.Command{
	Name:  "dependencies",
	Usage: "Show dependencies of an installed package",
	Description: heredoc.Doc(`
		Lists the dependencies of an installed package, filtered by
		dependency type. With --dependencies, the traversal is
		transitive.
	`),
	Action: util.ChainCmdMiddleware(cmdDependencies,
		util.CmdMiddlewareLogging,
		util.CmdMiddlewareTracingConfig,
		util.CmdMiddlewareTracingSpan,
	),
}

func cmdDependencies(c *cli.Context) error {
	ns, err := args.Default.Bind(c)
	if err != nil {
		return err
	}
	chosen, _ := mustDeptypes(ns)
	name := ns.String("package")

	recs, err := store.Global().Query(&qapi.Spec{Name: name}, qapi.Filters{})
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return serum.Error(qapi.ECodeMissing,
			serum.WithMessageTemplate("no installed package named {{package|q}}"),
			serum.WithDetail("package", name),
		)
	}

	seen := map[qapi.PackageName]bool{}
	queue := []qapi.PackageName{}
	enqueue := func(rec *qapi.PackageRecord) {
		for _, dep := range rec.Ident.Dependencies.Keys {
			edge := rec.Ident.Dependencies.Values[dep]
			if !deptype.Matches(chosen, edge.Deptypes) || seen[dep] {
				continue
			}
			seen[dep] = true
			queue = append(queue, dep)
		}
	}
	for _, rec := range recs {
		enqueue(rec)
	}

	for i := 0; i < len(queue); i++ {
		dep := queue[i]
		installed, err := store.Global().Query(&qapi.Spec{Name: string(dep)}, qapi.Filters{})
		if err != nil {
			return err
		}
		line := string(dep)
		if ns.Bool("install_status") {
			marker := " "
			if len(installed) > 0 && installed[0].Installed {
				marker = "+"
			} else if len(installed) > 0 {
				marker = "-"
			}
			line = fmt.Sprintf("[%s] %s", marker, line)
		}
		fmt.Fprintf(c.App.Writer, "%s\n", line)
		if ns.Bool("recurse_dependencies") {
			for _, rec := range installed {
				enqueue(rec)
			}
		}
	}
	return nil
}

func mustDeptypes(ns *args.Namespace) ([]deptype.DepType, bool) {
	v, ok := ns.Value("deptype")
	if !ok {
		return deptype.AllTypes(), false
	}
	dts, ok := v.([]deptype.DepType)
	if !ok {
		return deptype.AllTypes(), false
	}
	return dts, true
}
