package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shashiranjanraj/kuman/app/models"
)

var jsonFlag bool

// table prints rows under a header and a dashed rule, aligned in columns.
func table(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	rule := make([]string, len(header))
	for i, h := range header {
		rule[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(rule, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

// emit prints v as indented JSON when --json is set, otherwise calls text.
func emit(v any, text func() error) error {
	if !jsonFlag {
		return text()
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func when(t models.Timestamp) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func parseID(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%q is not a valid id", s)
	}
	return n, nil
}

// parseDay reads YYYY-MM-DD in local time. Empty input is the zero time.
func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if s == "today" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

func parseStatuses(in []string) ([]models.Status, error) {
	out := make([]models.Status, 0, len(in))
	for _, s := range in {
		st := models.Status(s)
		if !st.Known() {
			return nil, fmt.Errorf("unknown status %q", s)
		}
		out = append(out, st)
	}
	return out, nil
}

func parseReporters(in []string) ([]models.Reporter, error) {
	out := make([]models.Reporter, 0, len(in))
	for _, s := range in {
		r := models.Reporter(s)
		if r != models.ReporterRequester && r != models.ReporterWalker {
			return nil, fmt.Errorf("unknown reporter %q", s)
		}
		out = append(out, r)
	}
	return out, nil
}

func orderRows(orders []models.Order) [][]string {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []string{
			itoa(o.OrderID),
			string(o.OrderStatus),
			orDash(o.Requester.Username),
			orDash(o.Walker.Username),
			orDash(o.Canteen),
			money(o.TotalPrice),
			when(o.OrderDate),
		})
	}
	return rows
}

var orderHeader = []string{"ID", "STATUS", "REQUESTER", "WALKER", "CANTEEN", "TOTAL", "DATE"}

func reportRows(reports []models.Report) [][]string {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{
			itoa(r.ReportID),
			itoa(r.OrderID),
			r.Title,
			string(r.Status),
			string(r.ReportBy),
			when(r.ReportDate),
		})
	}
	return rows
}

var reportHeader = []string{"ID", "ORDER", "TITLE", "STATUS", "BY", "DATE"}
