package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/dshills/kernelfn/core"
	"github.com/dshills/kernelfn/persistence"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag of cmd and its subcommands to its default
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// run executes the root command with args and returns stdout
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	missing := filepath.Join(t.TempDir(), "none.yml")
	rootCmd.SetArgs(append([]string{"--config", missing}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

type computeOutputJSON struct {
	Params core.ParamsSpec `json:"params"`
	Matrix *core.Matrix    `json:"matrix"`
}

func TestComputeCmd_LinearJSON(t *testing.T) {
	x := writeFile(t, "x.json", `[[1,0],[0,1]]`)

	out, err := run(t, "compute", "--family", "linear", "--x", x, "--scale", "2", "--shift", "1")
	require.NoError(t, err)

	var result computeOutputJSON
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, [][]float64{{3, 1}, {1, 3}}, result.Matrix.ToRows64())
	assert.Equal(t, "linear", result.Params.Family)
}

func TestComputeCmd_RBFCSV(t *testing.T) {
	x := writeFile(t, "x.csv", "a,b\n0,0\n1,1\n")
	y := writeFile(t, "y.csv", "0,0\n")

	out, err := run(t, "compute", "-f", "rbf", "--x", x, "--y", y, "--gamma", "0.5", "-o", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1", lines[0])
	assert.Equal(t, strconv.FormatFloat(math.Exp(-1), 'g', -1, 64), lines[1])
}

func TestComputeCmd_PolynomialFloat32(t *testing.T) {
	x := writeFile(t, "x.json", `[[1,2]]`)
	y := writeFile(t, "y.json", `[[3,4]]`)

	out, err := run(t, "compute", "--family", "poly", "--x", x, "--y", y, "--degree", "2", "--shift", "1", "--precision", "float32", "-o", "csv")
	require.NoError(t, err)
	assert.Equal(t, "144\n", out)
}

func TestComputeCmd_NonFiniteJSON(t *testing.T) {
	x := writeFile(t, "x.json", `[["NaN", 1], [2, 3]]`)

	out, err := run(t, "compute", "--x", x, "-o", "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "NaN,NaN\n"))
}

func TestComputeCmd_Errors(t *testing.T) {
	x := writeFile(t, "x.json", `[[1,2,3]]`)
	y := writeFile(t, "y.json", `[[1,2]]`)
	ragged := writeFile(t, "ragged.csv", "1,2\n3\n")
	bad := writeFile(t, "x.txt", "1 2")

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "dimension mismatch", args: []string{"compute", "--x", x, "--y", y}, wantErr: core.ErrShapeMismatch},
		{name: "zero gamma", args: []string{"compute", "-f", "rbf", "--x", x, "--gamma", "0"}, wantErr: core.ErrInvalidParameter},
		{name: "negative degree", args: []string{"compute", "-f", "polynomial", "--x", x, "--degree=-1"}, wantErr: core.ErrInvalidParameter},
		{name: "unknown family", args: []string{"compute", "-f", "sigmoid", "--x", x}, wantErr: core.ErrUnknownFamily},
		{name: "bad precision", args: []string{"compute", "--x", x, "-p", "float16"}, wantErr: core.ErrTypeMismatch},
		{name: "ragged csv", args: []string{"compute", "--x", ragged}, wantErr: core.ErrShapeMismatch},
		{name: "unsupported input", args: []string{"compute", "--x", bad}},
		{name: "missing x", args: []string{"compute"}},
		{name: "bad output", args: []string{"compute", "--x", x, "-o", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "kernelfn")
}

func TestReadCSVRows(t *testing.T) {
	rows, err := readCSVRows(strings.NewReader("x,y\n1, 2\nNaN,-Inf\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []float64{1, 2}, rows[0])
	assert.True(t, math.IsNaN(rows[1][0]))
	assert.True(t, math.IsInf(rows[1][1], -1))

	_, err = readCSVRows(strings.NewReader("1,2\nthree,4\n"))
	assert.Error(t, err)
}

func TestResultsCmd_ExportImport(t *testing.T) {
	source := filepath.Join(t.TempDir(), "source.bolt")
	target := filepath.Join(t.TempDir(), "target")
	dir := filepath.Join(t.TempDir(), "export")

	// Seed the source store through the store package directly
	store, err := persistence.NewBoltStore(source)
	require.NoError(t, err)
	x, err := core.PointSetFromRows64([][]float64{{1, 2}})
	require.NoError(t, err)
	m, err := core.Evaluate(x, nil, core.DefaultLinear())
	require.NoError(t, err)
	require.NoError(t, store.SaveResult(context.Background(), core.Result{ID: "one", Params: core.SpecOf(core.DefaultLinear()), Matrix: m}))
	require.NoError(t, store.Close())

	out, err := run(t, "results", "export", "--store", "bolt", "--store-path", source, "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 1 results")

	out, err = run(t, "results", "import", "--store", "badger", "--store-path", target, "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 results, skipped 0")

	out, err = run(t, "results", "list", "--store", "badger", "--store-path", target)
	require.NoError(t, err)
	var infos []core.ResultInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "one", infos[0].ID)
	assert.Equal(t, 1, infos[0].Rows)
}

func TestBenchCmd(t *testing.T) {
	out, err := run(t, "bench", "--rows", "16", "--features", "4", "--iterations", "2", "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Benchmark Results")
	assert.Contains(t, out, "polynomial")

	_, err = run(t, "bench", "--rows", "0")
	assert.Error(t, err)
}

func TestMCPCmd(t *testing.T) {
	rootCmd.SetIn(strings.NewReader(`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"compute_kernel","arguments":{"family":"linear","x":[[1,0],[0,1]],"scale":2,"shift":1}},"id":1}` + "\n"))
	defer rootCmd.SetIn(nil)

	out, err := run(t, "mcp")
	require.NoError(t, err)
	assert.Contains(t, out, `"jsonrpc":"2.0"`)
	assert.Contains(t, out, `[3,1],[1,3]`)
}
