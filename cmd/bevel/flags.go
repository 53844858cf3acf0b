package main

import (
	"github.com/chazu/bevel/pkg/config"
	"github.com/spf13/cobra"
)

// pairFlags override the configured pair. Only flags given on the command
// line take effect.
type pairFlags struct {
	module        float64
	wheelTeeth    int
	pinionTeeth   int
	pressureAngle string
	backlash      float64
	thickness     float64
	bore          float64
}

func (f *pairFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64VarP(&f.module, "module", "m", 0, "module in mm")
	fs.IntVar(&f.wheelTeeth, "wheel-teeth", 0, "number of teeth on the wheel")
	fs.IntVar(&f.pinionTeeth, "pinion-teeth", 0, "number of teeth on the pinion")
	fs.StringVar(&f.pressureAngle, "pressure-angle", "", `pressure angle in degrees or a preset ("14.5 deg", "20 deg", "25 deg")`)
	fs.Float64Var(&f.backlash, "backlash", 0, "backlash in mm")
	fs.Float64Var(&f.thickness, "thickness", 0, "face thickness in mm")
	fs.Float64Var(&f.bore, "bore", 0, "center hole diameter in mm")
}

func (f *pairFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	if cfg.Pair == nil {
		cfg.Pair = &config.PairConfig{}
	}
	p := cfg.Pair
	if fs.Changed("module") {
		p.Module = &f.module
	}
	if fs.Changed("wheel-teeth") {
		p.WheelTeeth = &f.wheelTeeth
	}
	if fs.Changed("pinion-teeth") {
		p.PinionTeeth = &f.pinionTeeth
	}
	if fs.Changed("pressure-angle") {
		p.PressureAngle = &f.pressureAngle
	}
	if fs.Changed("backlash") {
		p.Backlash = &f.backlash
	}
	if fs.Changed("thickness") {
		p.FaceThickness = &f.thickness
	}
	if fs.Changed("bore") {
		p.BoreDiameter = &f.bore
	}
}
