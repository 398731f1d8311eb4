// Command reactorgen scaffolds a model.Base-embedding struct from a flat
// property list — the dev-tooling stand-in for spec.md §1's out-of-scope
// "code generation mechanism that synthesizes setter methods for
// attributed properties." Flags and the cli.Command shape follow the
// teacher's cmd/codegen/main.go.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/delaneyj/reactor/cmd/reactorgen/templates"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

const (
	packageKey  = "package"
	typeKey     = "type"
	propsKey    = "props"
	outKey      = "out"
)

func main() {
	cmd := &cli.Command{
		Name:  "reactorgen",
		Usage: "Scaffold a reactor struct from a property list",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: packageKey, Usage: "Package name of the generated file", Value: "model"},
			&cli.StringFlag{Name: typeKey, Usage: "Generated struct name", Required: true},
			&cli.StringFlag{
				Name:  propsKey,
				Usage: "Comma-separated Name:GoType[:flags] entries; flags is a pipe-separated set of trackable|refonly|readonly|derived and/or dependsOn=A|B",
				Required: true,
			},
			&cli.StringFlag{Name: outKey, Usage: "Output file path", Required: true},
		},
		Action: generate,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func generate(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	log.Printf("reactorgen started")
	defer func() {
		log.Printf("reactorgen finished in %v", time.Since(start))
	}()

	props, err := parseProps(cmd.String(propsKey))
	if err != nil {
		return err
	}

	spec := templates.StructSpec{
		Package:    cmd.String(packageKey),
		TypeName:   cmd.String(typeKey),
		Properties: props,
	}
	contents := templates.StructGen(spec)

	if err := os.WriteFile(cmd.String(outKey), []byte(contents), 0644); err != nil {
		return err
	}

	renderSummary(spec)
	return nil
}

// parseProps decodes entries like "Age:int:trackable" or
// "MotherId::derived|dependsOn=Mother" into PropertySpecs.
func parseProps(raw string) ([]templates.PropertySpec, error) {
	var out []templates.PropertySpec
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 2 {
			return nil, fmt.Errorf("reactorgen: malformed property entry %q, want Name:GoType[:flags]", entry)
		}
		p := templates.PropertySpec{Name: parts[0], GoType: parts[1]}
		if len(parts) == 3 {
			inDeps := false
			for _, flag := range strings.Split(parts[2], "|") {
				flag = strings.TrimSpace(flag)
				switch {
				case flag == "trackable":
					p.Trackable = true
				case flag == "refonly":
					p.ReferenceOnly = true
				case flag == "readonly":
					p.ReadOnly = true
				case flag == "derived":
					p.Derived = true
				case strings.HasPrefix(flag, "dependsOn="):
					inDeps = true
					raw := strings.TrimPrefix(flag, "dependsOn=")
					for _, dep := range strings.Split(raw, "|") {
						if dep = strings.TrimSpace(dep); dep != "" {
							p.DependsOn = append(p.DependsOn, dep)
						}
					}
				case inDeps && flag != "":
					// a further name in "dependsOn=A|B", split apart above
					p.DependsOn = append(p.DependsOn, flag)
				}
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func renderSummary(spec templates.StructSpec) {
	tbl := tablewriter.NewWriter(os.Stdout)
	tbl.SetHeader([]string{"property", "kind", "refonly", "readonly", "dependsOn"})
	for _, p := range spec.Properties {
		kind := "observable"
		switch {
		case p.Derived:
			kind = "derived"
		case p.Trackable:
			kind = "trackable"
		}
		tbl.Append([]string{
			p.Name,
			kind,
			fmt.Sprint(p.ReferenceOnly),
			fmt.Sprint(p.ReadOnly),
			strings.Join(p.DependsOn, ", "),
		})
	}
	tbl.Render()
}
