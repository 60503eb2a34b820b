package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/san-kum/bifsim/internal/dynamo"
)

var (
	equilibriaHeader = []string{"i", "r", "x", "slope", "stability"}
	branchesHeader   = []string{"branch", "i", "r", "x", "stability"}
)

// WriteEquilibriaCSV writes one row per equilibrium. A sample without
// equilibria is written as a row with empty x, slope and stability.
func WriteEquilibriaCSV(w io.Writer, res *dynamo.SweepResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(equilibriaHeader); err != nil {
		return err
	}
	for i, r := range res.Rs {
		idx, rs := strconv.Itoa(i), formatFloat(r)
		if len(res.Roots[i]) == 0 {
			if err := cw.Write([]string{idx, rs, "", "", ""}); err != nil {
				return err
			}
			continue
		}
		for j, x := range res.Roots[i] {
			row := []string{idx, rs, formatFloat(x), formatFloat(res.Slopes[i][j]), string(res.Stabilities[i][j])}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBranchesCSV writes the present points of every branch.
func WriteBranchesCSV(w io.Writer, res *dynamo.SweepResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(branchesHeader); err != nil {
		return err
	}
	for k, b := range res.Branches {
		for i := range b.X {
			if !b.Present(i) {
				continue
			}
			row := []string{strconv.Itoa(k), strconv.Itoa(i), formatFloat(b.R[i]), formatFloat(b.X[i]), string(b.Stab[i])}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func readRecords(path string, header []string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(header)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: missing header", path)
	}
	return records[1:], nil
}

func readEquilibria(path string) (*dynamo.SweepResult, error) {
	records, err := readRecords(path, equilibriaHeader)
	if err != nil {
		return nil, err
	}

	res := &dynamo.SweepResult{}
	for _, rec := range records {
		i, err := strconv.Atoi(rec[0])
		if err != nil || i < 0 {
			return nil, fmt.Errorf("read %s: bad sample index %q", path, rec[0])
		}
		for len(res.Rs) <= i {
			res.Rs = append(res.Rs, math.NaN())
			res.Roots = append(res.Roots, []float64{})
			res.Stabilities = append(res.Stabilities, []dynamo.Stability{})
			res.Slopes = append(res.Slopes, []float64{})
		}
		res.Rs[i] = parseFloat(rec[1])
		if rec[2] == "" {
			continue
		}
		res.Roots[i] = append(res.Roots[i], parseFloat(rec[2]))
		res.Slopes[i] = append(res.Slopes[i], parseFloat(rec[3]))
		res.Stabilities[i] = append(res.Stabilities[i], dynamo.Stability(rec[4]))
	}
	return res, nil
}

func readBranches(path string, rs []float64) ([]dynamo.Branch, error) {
	records, err := readRecords(path, branchesHeader)
	if err != nil {
		return nil, err
	}

	branches := []dynamo.Branch{}
	for _, rec := range records {
		k, err1 := strconv.Atoi(rec[0])
		i, err2 := strconv.Atoi(rec[1])
		if err1 != nil || err2 != nil || k < 0 || i < 0 || i >= len(rs) {
			return nil, fmt.Errorf("read %s: bad row %v", path, rec)
		}
		for len(branches) <= k {
			b := dynamo.Branch{R: rs, X: make([]float64, len(rs)), Stab: make([]dynamo.Stability, len(rs))}
			for j := range b.X {
				b.X[j] = math.NaN()
			}
			branches = append(branches, b)
		}
		branches[k].X[i] = parseFloat(rec[3])
		branches[k].Stab[i] = dynamo.Stability(rec[4])
	}
	return branches, nil
}
