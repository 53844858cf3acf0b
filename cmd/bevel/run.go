package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/bevel/internal/monitoring"
	"github.com/chazu/bevel/pkg/assemble"
	"github.com/chazu/bevel/pkg/catalog"
	"github.com/chazu/bevel/pkg/config"
	"github.com/chazu/bevel/pkg/gear"
	"github.com/chazu/bevel/pkg/kernel"
	"github.com/chazu/bevel/pkg/kernel/sdfx"
	"github.com/chazu/bevel/pkg/plan"
	"github.com/chazu/bevel/pkg/report"
	"github.com/chazu/bevel/pkg/tessellate"
	"github.com/spf13/cobra"
)

// loadPair loads the settings and resolves the pair to work on.
func loadPair(cmd *cobra.Command, o *options) (*config.Config, gear.PairSpec, error) {
	cfg, err := o.load(cmd)
	if err != nil {
		return nil, gear.PairSpec{}, fmt.Errorf("loading config: %w", err)
	}
	spec, err := cfg.GetPair()
	if err != nil {
		return nil, gear.PairSpec{}, err
	}
	return cfg, spec, nil
}

func assembleWith(cfg *config.Config, spec gear.PairSpec) (*assemble.Assembly, error) {
	return assemble.Assemble(spec, assemble.WithArcSegments(cfg.GetArcSegments()))
}

// fileName turns a component name into a file name: "25 Tooth" becomes
// "25-tooth".
func fileName(name string) string {
	r := strings.NewReplacer(" ", "-", "/", "-", "(", "", ")", "")
	return strings.ToLower(r.Replace(name))
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// stepView is one plan step with the steps it consumes.
type stepView struct {
	*plan.Step
	Consumes []*plan.Step `json:"consumes"`
}

func runPlan(cmd *cobra.Command, o *options, step string) error {
	cfg, spec, err := loadPair(cmd, o)
	if err != nil {
		return err
	}
	a, err := assembleWith(cfg, spec)
	if err != nil {
		return err
	}
	var data []byte
	if step == "" {
		data, err = a.Plan.JSON()
	} else {
		s := a.Plan.Lookup(step)
		if s == nil {
			return fmt.Errorf("plan %q has no step named %q", a.Plan.Name, step)
		}
		data, err = json.MarshalIndent(stepView{Step: s, Consumes: a.Plan.Inputs(s)}, "", "  ")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

type buildOptions struct {
	outDir  string
	gearSet string
	save    bool
	name    string
}

func runBuild(cmd *cobra.Command, o *options, b buildOptions) error {
	cfg, err := o.load(cmd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	outDir := b.outDir
	if outDir == "" {
		outDir = cfg.GetOutputDir()
	}

	var names []string
	var specs []gear.PairSpec
	if b.gearSet != "" {
		names, specs, err = config.LoadGearSets(b.gearSet)
		if err != nil {
			return err
		}
	} else {
		spec, err := cfg.GetPair()
		if err != nil {
			return err
		}
		names, specs = []string{b.name}, []gear.PairSpec{spec}
	}

	var cat *catalog.Catalog
	if b.save {
		cat, err = catalog.Open(cfg.GetCatalogPath())
		if err != nil {
			return err
		}
		defer cat.Close()
	}

	k := sdfx.New(sdfx.WithMeshCells(cfg.GetMeshCells()))
	for i, spec := range specs {
		dir := outDir
		if b.gearSet != "" {
			dir = filepath.Join(outDir, fileName(names[i]))
		}
		p, paths, err := buildPair(cfg, k, spec, dir)
		if err != nil {
			return err
		}
		for _, path := range paths {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		}
		if cat != nil {
			rec, err := cat.Save(cmd.Context(), names[i], spec, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s as %s\n", rec.Name, rec.ID)
		}
	}
	return nil
}

// buildPair executes the pair's plan and writes an STL file per gear.
func buildPair(cfg *config.Config, k kernel.Kernel, spec gear.PairSpec, dir string) (*plan.Plan, []string, error) {
	a, err := assembleWith(cfg, spec)
	if err != nil {
		return nil, nil, err
	}
	meshes, err := tessellate.Tessellate(a.Plan, k)
	if err != nil {
		return nil, nil, err
	}
	paths, err := writeMeshes(dir, meshes)
	if err != nil {
		return nil, nil, err
	}
	return a.Plan, paths, nil
}

func writeMeshes(dir string, meshes []*kernel.Mesh) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	var paths []string
	for _, m := range meshes {
		path := filepath.Join(dir, fileName(m.PartName)+".stl")
		if err := sdfx.SaveSTL(path, m); err != nil {
			return nil, err
		}
		monitoring.Debugf("wrote %s (%d triangles)", path, m.TriangleCount())
		paths = append(paths, path)
	}
	return paths, nil
}

func runValidate(cmd *cobra.Command, o *options) error {
	cfg, err := o.load(cmd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	w := cmd.OutOrStdout()
	spec, err := cfg.GetPair()
	if err != nil {
		printParameterErrors(w, err)
		return errors.New("gear pair parameters are invalid")
	}
	a, err := assembleWith(cfg, spec)
	if err != nil {
		printParameterErrors(w, err)
		return errors.New("gear pair could not be laid out")
	}
	findings := plan.Validate(a.Plan)
	printFindings(w, findings)
	if len(plan.Errors(findings)) > 0 {
		return errors.New("construction plan is invalid")
	}
	if err := report.Summary(w, a); err != nil {
		return err
	}
	fmt.Fprintf(w, "Result: VALID (%s, %d steps)\n", spec.Description(), a.Plan.Len())
	return nil
}

func runPlot(cmd *cobra.Command, o *options, outDir string) error {
	cfg, spec, err := loadPair(cmd, o)
	if err != nil {
		return err
	}
	if outDir == "" {
		outDir = cfg.GetOutputDir()
	}
	a, err := assembleWith(cfg, spec)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	base := fileName(spec.AssemblyName())

	section, err := report.SectionPlot(a)
	if err != nil {
		return err
	}
	paths := []string{filepath.Join(outDir, base+"-section.png")}
	if err := writeFile(paths[0], func(f *os.File) error { return report.WritePNG(f, section) }); err != nil {
		return err
	}
	for _, m := range a.Members() {
		p, err := report.ProfilePlot(m, cfg.GetArcSegments())
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, fmt.Sprintf("%s-%s-profile.png", base, m.Role))
		if err := writeFile(path, func(f *os.File) error { return report.WritePNG(f, p) }); err != nil {
			return err
		}
		paths = append(paths, path)
	}
	html := filepath.Join(outDir, base+".html")
	if err := writeFile(html, func(f *os.File) error { return report.WriteHTML(f, a, cfg.GetArcSegments()) }); err != nil {
		return err
	}
	paths = append(paths, html)
	for _, p := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", p)
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func runEval(cmd *cobra.Command, o *options, script, outDir string, asJSON bool) error {
	cfg, err := o.load(cmd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	source, err := os.ReadFile(script)
	if err != nil {
		return err
	}
	result := NewApp(cfg).Evaluate(string(source))
	if asJSON {
		if err := writeJSON(cmd, result); err != nil {
			return err
		}
	} else {
		printEvalResult(cmd.OutOrStdout(), script, result)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%s: %d errors", script, len(result.Errors))
	}
	if outDir == "" {
		return nil
	}
	for _, pr := range result.Pairs {
		meshes := make([]*kernel.Mesh, len(pr.Meshes))
		for i, m := range pr.Meshes {
			meshes[i] = m.mesh
		}
		paths, err := writeMeshes(filepath.Join(outDir, fileName(pr.Name)), meshes)
		if err != nil {
			return err
		}
		if !asJSON {
			for _, path := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			}
		}
	}
	return nil
}

func openCatalog(cmd *cobra.Command, o *options) (*catalog.Catalog, error) {
	cfg, err := o.load(cmd)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return catalog.Open(cfg.GetCatalogPath())
}

func runCatalogList(cmd *cobra.Command, o *options) error {
	cat, err := openCatalog(cmd, o)
	if err != nil {
		return err
	}
	defer cat.Close()
	recs, err := cat.List(cmd.Context())
	if err != nil {
		return err
	}
	printRecords(cmd.OutOrStdout(), recs)
	return nil
}

func runCatalogShow(cmd *cobra.Command, o *options, id string, showPlan bool) error {
	cat, err := openCatalog(cmd, o)
	if err != nil {
		return err
	}
	defer cat.Close()
	if showPlan {
		data, err := cat.Plan(cmd.Context(), id)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	rec, err := cat.Get(cmd.Context(), id)
	if isNotFound(err) {
		return fmt.Errorf("no saved pair with id %s; run \"bevel catalog list\"", id)
	}
	if err != nil {
		return err
	}
	printRecord(cmd.OutOrStdout(), rec)
	return nil
}

func runCatalogDelete(cmd *cobra.Command, o *options, id string) error {
	cat, err := openCatalog(cmd, o)
	if err != nil {
		return err
	}
	defer cat.Close()
	if err := cat.Delete(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
	return nil
}
