package evolution

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Table collects one row per generation and renders them as a console table
type Table struct {
	mu   sync.Mutex
	rows []table.Row
}

func (t *Table) OnGeneration(_ context.Context, s Summary) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, table.Row{
		s.Generation,
		fmt.Sprintf("%.3f", s.Best),
		fmt.Sprintf("%.3f", s.Median),
		fmt.Sprintf("%.3f", s.Mean),
		fmt.Sprintf("%.3f", s.StdDev),
		fmt.Sprintf("%.3f", s.Worst),
		fmt.Sprintf("%d/%d/%d/%d", s.Selection.Elite, s.Selection.Crossover, s.Selection.MutateOnly, s.Selection.Reset),
		calibration(s.Calibration),
	})
	return nil
}

// Len returns the number of collected generations
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// Render writes the table to w
func (t *Table) Render(w io.Writer) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Gen", "Best", "Median", "Mean", "StdDev", "Worst", "E/C/M/R", "Calibration"})
	tw.AppendRows(t.rows)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	tw.Render()
}

func calibration(values map[string]float64) string {
	if len(values) == 0 {
		return "-"
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%.2f", name, values[name])
	}
	return strings.Join(parts, " ")
}
