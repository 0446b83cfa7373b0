package scheduler

import (
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// DefaultCostFormula is the literal cost function from the spec: mean
// stretch time raised to the stretch weight, times normalised average
// power raised to the energy weight.
const DefaultCostFormula = "Pow(MeanStretch, StretchWeight) * Pow(Power, EnergyWeight)"

// costEnv is the expr evaluation environment for a cost formula. Pow is
// exposed as a method rather than relying on a builtin, since expr has no
// stdlib math functions in scope by default.
type costEnv struct {
	MeanStretch   float64
	Power         float64
	StretchWeight float64
	EnergyWeight  float64
}

func (costEnv) Pow(a, b float64) float64 { return math.Pow(a, b) }

// CostExpr is a compiled, reusable cost formula.
type CostExpr struct {
	program *vm.Program
}

// CompileCostExpr compiles a cost-formula expression string against the
// costEnv environment (MeanStretch, Power, StretchWeight, EnergyWeight,
// and the Pow(a, b) helper).
func CompileCostExpr(source string) (*CostExpr, error) {
	program, err := expr.Compile(source, expr.Env(costEnv{}))
	if err != nil {
		return nil, err
	}
	return &CostExpr{program: program}, nil
}

// DefaultCostExpr compiles DefaultCostFormula. It never fails at runtime
// since the formula is a compile-time constant validated by this package's
// own tests.
func DefaultCostExpr() *CostExpr {
	c, err := CompileCostExpr(DefaultCostFormula)
	if err != nil {
		panic("scheduler: default cost formula failed to compile: " + err.Error())
	}
	return c
}

// Eval computes the cost for the given inputs.
func (c *CostExpr) Eval(meanStretch, power, stretchWeight, energyWeight float64) (float64, error) {
	out, err := expr.Run(c.program, costEnv{
		MeanStretch:   meanStretch,
		Power:         power,
		StretchWeight: stretchWeight,
		EnergyWeight:  energyWeight,
	})
	if err != nil {
		return 0, err
	}
	v, ok := out.(float64)
	if !ok {
		return 0, errCostFormulaNotFloat
	}
	return v, nil
}

var errCostFormulaNotFloat = costFormulaError("cost formula did not evaluate to a float64")

type costFormulaError string

func (e costFormulaError) Error() string { return string(e) }
