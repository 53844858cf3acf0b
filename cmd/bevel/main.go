package main

import (
	"os"

	"github.com/chazu/bevel/internal/monitoring"
	"github.com/chazu/bevel/pkg/config"
	"github.com/spf13/cobra"
)

// options are the flags shared by every command.
type options struct {
	configPath string
	verbose    bool
	pair       pairFlags
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &options{}
	rootCmd := &cobra.Command{
		Use:          "bevel",
		Short:        "Procedural bevel gear pair generator",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&o.configPath, "config", "c", config.DefaultConfigPath, "settings file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "log every plan step")

	rootCmd.AddCommand(planCmd(o))
	rootCmd.AddCommand(buildCmd(o))
	rootCmd.AddCommand(validateCmd(o))
	rootCmd.AddCommand(plotCmd(o))
	rootCmd.AddCommand(evalCmd(o))
	rootCmd.AddCommand(catalogCmd(o))
	return rootCmd
}

// load reads the settings file and applies the command-line overrides.
func (o *options) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, err
	}
	o.pair.apply(cmd, cfg)
	monitoring.SetVerbose(o.verbose || cfg.GetVerbose())
	return cfg, nil
}

func planCmd(o *options) *cobra.Command {
	var step string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the construction plan of a gear pair as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd, o, step)
		},
	}
	o.pair.register(cmd)
	cmd.Flags().StringVar(&step, "step", "", "print only the named step and the steps it consumes")
	return cmd
}

func buildCmd(o *options) *cobra.Command {
	var b buildOptions
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a gear pair and write one STL file per gear",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, o, b)
		},
	}
	o.pair.register(cmd)
	cmd.Flags().StringVarP(&b.outDir, "out", "o", "", "output directory (default from config)")
	cmd.Flags().StringVar(&b.gearSet, "gear-set", "", "build every pair of a gear-set file")
	cmd.Flags().BoolVar(&b.save, "save", false, "record the built pairs in the catalog")
	cmd.Flags().StringVar(&b.name, "name", "", "catalog name (default is the assembly name)")
	return cmd
}

func validateCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check gear pair parameters and the construction plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, o)
		},
	}
	o.pair.register(cmd)
	return cmd
}

func plotCmd(o *options) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Draw the cross-section and tooth profiles as PNG and HTML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlot(cmd, o, outDir)
		},
	}
	o.pair.register(cmd)
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default from config)")
	return cmd
}

func evalCmd(o *options) *cobra.Command {
	var outDir string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "eval [script]",
		Short: "Run a bevel script and build the pairs it declares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, o, args[0], outDir, asJSON)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "write STL files to this directory")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func catalogCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the catalog of saved gear pairs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved gear pairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCatalogList(cmd, o)
		},
	})
	var showPlan bool
	show := &cobra.Command{
		Use:   "show [id]",
		Short: "Show one saved gear pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogShow(cmd, o, args[0], showPlan)
		},
	}
	show.Flags().BoolVar(&showPlan, "plan", false, "print the stored plan JSON")
	cmd.AddCommand(show)
	cmd.AddCommand(&cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a saved gear pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogDelete(cmd, o, args[0])
		},
	})
	return cmd
}
