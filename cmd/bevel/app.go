package main

import (
	"github.com/chazu/bevel/internal/monitoring"
	"github.com/chazu/bevel/pkg/assemble"
	"github.com/chazu/bevel/pkg/config"
	"github.com/chazu/bevel/pkg/engine"
	"github.com/chazu/bevel/pkg/gear"
	"github.com/chazu/bevel/pkg/kernel"
	"github.com/chazu/bevel/pkg/kernel/sdfx"
	"github.com/chazu/bevel/pkg/plan"
	"github.com/chazu/bevel/pkg/tessellate"
)

// colorPalette assigns distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App runs DSL scripts through the whole pipeline: engine, assembler and
// kernel.
type App struct {
	engine      *engine.Engine
	kernel      kernel.Kernel
	arcSegments int
}

// MeshData is the JSON form of one meshed component.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`

	mesh *kernel.Mesh
}

// PairResult is one pair declared by a script.
type PairResult struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Spec        gear.PairSpec `json:"spec"`
	Steps       int           `json:"steps"`
	Meshes      []MeshData    `json:"meshes"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is everything Evaluate produced.
type EvalResult struct {
	Pairs    []PairResult    `json:"pairs"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// Meshes returns the meshes of every pair in order.
func (r EvalResult) Meshes() []MeshData {
	var out []MeshData
	for _, p := range r.Pairs {
		out = append(out, p.Meshes...)
	}
	return out
}

// NewApp creates an App with an engine and an sdfx kernel configured from
// cfg.
func NewApp(cfg *config.Config) *App {
	return &App{
		engine:      engine.NewEngine(),
		kernel:      sdfx.New(sdfx.WithMeshCells(cfg.GetMeshCells())),
		arcSegments: cfg.GetArcSegments(),
	}
}

func errorData(err error) EvalErrorData {
	return EvalErrorData{Message: err.Error()}
}

// Evaluate runs source and meshes every pair it declares. Evaluation
// stops at the first pair that fails to build.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Pairs:    []PairResult{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the Lisp source into gear pairs.
	pairs, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		monitoring.Logf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, errorData(err))
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	color := 0
	for _, spec := range pairs {
		// Step 2: Lay out each pair as a construction plan.
		asm, err := assemble.Assemble(spec, assemble.WithArcSegments(a.arcSegments))
		if err != nil {
			result.Errors = append(result.Errors, errorData(err))
			return result
		}
		for _, f := range plan.Validate(asm.Plan) {
			if f.Severity == plan.SeverityWarning {
				result.Warnings = append(result.Warnings, EvalErrorData{Message: f.Error()})
			}
		}

		// Step 3: Execute the plan into one mesh per gear.
		meshes, err := tessellate.Tessellate(asm.Plan, a.kernel)
		if err != nil {
			monitoring.Logf("Tessellate error: %v", err)
			result.Errors = append(result.Errors, EvalErrorData{
				Message: "tessellation failed: " + err.Error(),
			})
			return result
		}

		pr := PairResult{
			Name:        spec.AssemblyName(),
			Description: spec.Description(),
			Spec:        spec,
			Steps:       asm.Plan.Len(),
			Meshes:      make([]MeshData, 0, len(meshes)),
		}
		for _, m := range meshes {
			pr.Meshes = append(pr.Meshes, MeshData{
				Vertices: m.Vertices,
				Normals:  m.Normals,
				Indices:  m.Indices,
				PartName: m.PartName,
				Color:    colorPalette[color%len(colorPalette)],
				mesh:     m,
			})
			color++
		}
		result.Pairs = append(result.Pairs, pr)
	}
	return result
}
