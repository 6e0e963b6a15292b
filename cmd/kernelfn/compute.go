package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dshills/kernelfn/core"
	"github.com/dshills/kernelfn/core/compute"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	computeFamily    string
	computeX         string
	computeY         string
	computePrecision string
	computeScale     float64
	computeShift     float64
	computeGamma     float64
	computeSigma     float64
	computeDegree    int
	computeWorkers   int
	computeOutput    string
)

// computeCmd evaluates one kernel matrix and prints it
var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute a kernel matrix from files",
	Long: `Computes K[i][j] = k(x_i, y_j) for the rows of --x and --y and writes the
matrix to stdout. Without --y the self-kernel of --x is computed.

Inputs are .json (array of rows; "NaN", "+Inf", "-Inf" accepted as strings)
or .csv (one point per line, optional header).`,
	Example: `  kernelfn compute --family rbf --x points.csv --gamma 0.5
  kernelfn compute --family polynomial --x a.json --y b.json --degree 2 -o csv`,
	RunE: runCompute,
}

// computeSpec builds kernel parameters from the flags that were set
func computeSpec(cmd *cobra.Command) core.ParamsSpec {
	spec := core.ParamsSpec{Family: computeFamily}
	flags := cmd.Flags()
	if flags.Changed("scale") {
		spec.Scale = &computeScale
	}
	if flags.Changed("shift") {
		spec.Shift = &computeShift
	}
	if flags.Changed("gamma") {
		spec.Gamma = &computeGamma
	}
	if flags.Changed("sigma") {
		spec.Sigma = &computeSigma
	}
	if flags.Changed("degree") {
		spec.Degree = &computeDegree
	}
	return spec
}

func runCompute(cmd *cobra.Command, args []string) error {
	spec := computeSpec(cmd)
	params, err := spec.Params()
	if err != nil {
		return err
	}

	precision, err := core.ParsePrecision(computePrecision)
	if err != nil {
		return err
	}

	x, err := loadPointSet(computeX, precision)
	if err != nil {
		return err
	}
	var y *core.PointSet
	if computeY != "" {
		if y, err = loadPointSet(computeY, precision); err != nil {
			return err
		}
	}

	if cfg.Compute.RequireFinite {
		for _, ps := range []*core.PointSet{x, y} {
			if ps == nil {
				continue
			}
			if err := core.CheckFinite(ps); err != nil {
				return err
			}
		}
	}

	policyConfig := cfg.Compute.Config
	if computeWorkers > 0 {
		policyConfig.Workers = computeWorkers
	}
	policy, err := compute.NewPolicy(policyConfig)
	if err != nil {
		return err
	}

	start := time.Now()
	matrix, err := core.NewEvaluator(policy).Evaluate(cmd.Context(), x, y, params)
	if err != nil {
		return err
	}

	logger.Debug("kernel computed",
		zap.String("family", params.Family().String()),
		zap.Int("rows", matrix.Rows()),
		zap.Int("cols", matrix.Cols()),
		zap.Duration("duration", time.Since(start)))

	switch computeOutput {
	case "json":
		return writeJSON(cmd.OutOrStdout(), core.SpecOf(params), matrix)
	case "csv":
		return writeCSV(cmd.OutOrStdout(), matrix)
	default:
		return fmt.Errorf("unsupported output format: %s", computeOutput)
	}
}

func writeJSON(w io.Writer, spec core.ParamsSpec, matrix *core.Matrix) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Params core.ParamsSpec `json:"params"`
		Matrix *core.Matrix    `json:"matrix"`
	}{spec, matrix})
}

func writeCSV(w io.Writer, matrix *core.Matrix) error {
	bits := 64
	if matrix.Precision() == core.Float32 {
		bits = 32
	}

	writer := csv.NewWriter(w)
	record := make([]string, matrix.Cols())
	for i := 0; i < matrix.Rows(); i++ {
		for j := range record {
			record[j] = strconv.FormatFloat(matrix.At(i, j), 'g', -1, bits)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
