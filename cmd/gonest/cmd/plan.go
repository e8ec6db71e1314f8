package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/gonest/internal/denorm"
	"github.com/dbsmedya/gonest/internal/types"
)

var (
	planJob     string
	planColumns []string
	planInput   string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show how a job classifies result columns",
	Long: `Plan displays a job's relationships and, given the columns of a result
set, which relationship each column is routed to and the field name it gets.

Columns come from --columns or from the rows in --input. Without either, only
the relationships are shown.

The plan shows:
  - Job overview (root key, null handling, output format)
  - Relationships in matching order
  - Column classification
  - Problems that would make a transform fail

Example:
  gonest plan --config gonest.yaml --job users --columns user_id,user_name,role_id,role_name`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planJob, "job", "j", "",
		"Job name from configuration file (required)")
	planCmd.Flags().StringSliceVar(&planColumns, "columns", nil,
		"Comma-separated result column names, in result order")
	planCmd.Flags().StringVarP(&planInput, "input", "i", "",
		"JSON or YAML file whose rows supply the column names")
	planCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	job, err := cfg.GetJob(planJob)
	if err != nil {
		return err
	}
	opts := jobOptions(job)

	columns := planColumns
	if len(columns) == 0 && planInput != "" {
		rows, err := readInput(cmd, planInput)
		if err != nil {
			return err
		}
		columns = columnsOf(rows)
	}

	w := cmd.OutOrStdout()
	printHeader(w, "Nesting Plan: %s", planJob)

	// Job overview
	fmt.Fprintln(w)
	printSection(w, "Job Overview")
	nullKeys := "skipped"
	if opts.KeepNullInstances {
		nullKeys = "kept"
	}
	out := cfg.ApplyJobOverrides(planJob, GetCLIOverrides().OutputFormat)
	fmt.Fprintf(w, "  Root Primary Key: %s\n", opts.RootPrimaryKey)
	fmt.Fprintf(w, "  Relationships:    %d\n", len(opts.Relationships))
	fmt.Fprintf(w, "  Null Keys:        %s\n", nullKeys)
	fmt.Fprintf(w, "  Output Format:    %s\n", out.Format)

	// Relationships in matching order
	fmt.Fprintln(w)
	printSection(w, "Relationships (first matching prefix wins)")
	relRows := make([][]string, 0, len(opts.Relationships))
	for i, spec := range opts.Relationships {
		relRows = append(relRows, []string{
			fmt.Sprintf("[%d]", i+1), spec.Name, spec.Prefix, spec.PrimaryKey, spec.ReferenceColumn,
		})
	}
	printTable(w, []string{"#", "NAME", "PREFIX", "PRIMARY KEY", "REFERENCE"}, relRows, nil)

	if len(columns) == 0 {
		return nil
	}

	// Column classification
	fmt.Fprintln(w)
	printSection(w, "Column Classification")
	plan := classifyColumns(columns, opts)
	colRows := make([][]string, 0, len(plan))
	for _, c := range plan {
		colRows = append(colRows, []string{c.column, c.target, c.field, c.note})
	}
	printTable(w, []string{"COLUMN", "TARGET", "FIELD", "NOTE"}, colRows, func(row, col int, cell string) string {
		if col != 1 {
			return cell
		}
		if plan[row].root {
			return color.Green.Sprint(cell)
		}
		return color.Cyan.Sprint(cell)
	})

	// Problems
	fmt.Fprintln(w)
	printSection(w, "Problems")
	problems := planProblems(columns, opts)
	if len(problems) == 0 {
		fmt.Fprintf(w, "  %s\n", color.Green.Sprint("none"))
		return nil
	}
	for _, p := range problems {
		fmt.Fprintf(w, "  %s %s\n", color.Yellow.Sprint("!"), p)
	}
	return nil
}

type columnPlan struct {
	column string
	target string
	field  string
	note   string
	root   bool
}

// classifyColumns routes every column the way the transformer would.
func classifyColumns(columns []string, opts denorm.Options) []columnPlan {
	refs := make(map[string]bool, len(opts.Relationships))
	for _, spec := range opts.Relationships {
		refs[spec.ReferenceColumn] = true
	}

	plan := make([]columnPlan, 0, len(columns))
	for _, column := range columns {
		c, ok := denorm.Classify(column, opts.Relationships)
		if !ok {
			p := columnPlan{column: column, target: "(root)", field: column, root: true}
			switch {
			case column == opts.RootPrimaryKey:
				p.note = "root key"
			case refs[column]:
				p.note = "reference"
			}
			plan = append(plan, p)
			continue
		}

		p := columnPlan{column: column, target: c.Relationship, field: c.Field}
		if column == c.PrimaryKey {
			p.note = "instance key"
		}
		plan = append(plan, p)
	}
	return plan
}

// planProblems lists the columns a transform of these columns would miss.
func planProblems(columns []string, opts denorm.Options) []string {
	present := make(map[string]bool, len(columns))
	for _, column := range columns {
		present[column] = true
	}

	var problems []string
	if !present[opts.RootPrimaryKey] {
		problems = append(problems, fmt.Sprintf("root primary key %q is not a result column", opts.RootPrimaryKey))
	}
	for _, spec := range opts.Relationships {
		claimed := false
		for _, column := range columns {
			if c, ok := denorm.Classify(column, opts.Relationships); ok && c.Relationship == spec.Name {
				claimed = true
				break
			}
		}
		switch {
		case !claimed:
			problems = append(problems, fmt.Sprintf("relationship %q matches no column; it will always be empty", spec.Name))
		case !present[spec.PrimaryKey]:
			problems = append(problems, fmt.Sprintf("relationship %q: primary key %q is not a result column", spec.Name, spec.PrimaryKey))
		}
		if !present[spec.ReferenceColumn] {
			problems = append(problems, fmt.Sprintf("relationship %q: reference column %q is not a result column", spec.Name, spec.ReferenceColumn))
		} else if _, ok := denorm.Classify(spec.ReferenceColumn, opts.Relationships); ok {
			problems = append(problems, fmt.Sprintf("relationship %q: reference column %q is not a root column", spec.Name, spec.ReferenceColumn))
		}
	}
	return problems
}

// columnsOf returns every column name in rows in first-seen order.
func columnsOf(rows []*types.Row) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, row := range rows {
		for _, column := range row.Keys() {
			if !seen[column] {
				seen[column] = true
				columns = append(columns, column)
			}
		}
	}
	return columns
}

// printHeader prints a formatted header
func printHeader(w io.Writer, format string, args ...interface{}) {
	title := fmt.Sprintf(format, args...)
	width := runewidth.StringWidth(title) + 4
	fmt.Fprintln(w, strings.Repeat("=", width))
	fmt.Fprintf(w, "  %s\n", color.Bold.Sprint(title))
	fmt.Fprintln(w, strings.Repeat("=", width))
}

// printSection prints a section header
func printSection(w io.Writer, title string) {
	fmt.Fprintf(w, "[%s]\n", title)
	fmt.Fprintln(w, strings.Repeat("-", runewidth.StringWidth(title)+2))
}

// printTable prints rows in columns aligned by display width. paint, if set,
// decorates a cell after padding so escape codes do not skew alignment.
func printTable(w io.Writer, header []string, rows [][]string, paint func(row, col int, cell string) string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	line := func(cells []string, decorate func(col int, cell string) string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			padded := cell
			if i < len(cells)-1 {
				padded = runewidth.FillRight(cell, widths[i])
			}
			parts[i] = decorate(i, padded)
		}
		fmt.Fprintf(w, "  %s\n", strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	line(header, func(_ int, cell string) string { return color.Bold.Sprint(cell) })
	for r, row := range rows {
		line(row, func(col int, cell string) string {
			if paint == nil {
				return cell
			}
			return paint(r, col, cell)
		})
	}
}
