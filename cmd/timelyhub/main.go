/*
main.go - TimelyHub CLI entry point

PURPOSE:
  Command-line surface over the in-memory tracking engine. The engine is a
  library; this binary exists for demos and quick inspection.

COMMANDS:
  demo       Run an end-to-end scenario (entries, workflow, reports) and
             print every side channel: events, audit log, billing, CSV,
             aggregation, email outbox
  report     Filtered flat report over the demo dataset, optionally as CSV
  billing    Billing report over the demo dataset, optionally as PDF
  holidays   Print the built-in static holiday set for a country/year

EXAMPLES:
  # Full scenario with a PDF billing export
  timelyhub demo --pdf billing.pdf

  # Approved hours for one employee, as CSV
  timelyhub report --employee e1 --status approved --csv

  # French holidays for 2026
  timelyhub holidays --country FR --year 2026

SEE ALSO:
  - tracking/engine.go: The facade driven here
  - report/: aggregation and PDF rendering
*/
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/akimsoule/timelyhub/factory"
	"github.com/akimsoule/timelyhub/report"
	"github.com/akimsoule/timelyhub/tracking"
	"github.com/akimsoule/timelyhub/tracking/store"
)

var rootCmd = &cobra.Command{
	Use:   "timelyhub",
	Short: "TimelyHub - multi-company time entry policy and reporting engine",
	Long: `timelyhub drives the in-memory time tracking engine from the command line.
All state lives for the duration of one invocation; use the demo command to
see the full pipeline (policies, workflow, budgets, reports) end to end.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	demoCmd.Flags().String("pdf", "", "write the billing report as PDF to this path")
	reportCmd.Flags().String("employee", "", "filter by employee ID")
	reportCmd.Flags().String("project", "", "filter by project ID")
	reportCmd.Flags().String("status", "all", "filter by status (draft, submitted, approved, rejected, all)")
	reportCmd.Flags().Bool("csv", false, "print the report rows as CSV")
	billingCmd.Flags().String("pdf", "", "write the billing report as PDF to this path")
	holidaysCmd.Flags().String("country", "FR", "country code (FR, US)")
	holidaysCmd.Flags().Int("year", time.Now().Year(), "calendar year")
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(billingCmd)
	rootCmd.AddCommand(holidaysCmd)
}

// demoDay anchors the seeded scenario so reports are reproducible.
var demoDay = time.Date(2025, time.September, 14, 0, 0, 0, 0, time.UTC)

// seedDemo builds the shared scenario: one company with 15-minute rounding,
// a manager with approval rights, a billable employee rate, and two entries
// driven through the workflow (one approved, one rejected).
func seedDemo() (*tracking.Tracker, error) {
	t := tracking.New(store.NewAdapter())

	policy, err := factory.ParsePolicy(`{
		"rounding": {"step_minutes": 15, "mode": "nearest", "apply_on": "duration"}
	}`)
	if err != nil {
		return nil, err
	}
	t.AddCompany(&tracking.Company{ID: "c1", Name: "Acme", Policy: policy})
	if err := t.AddEmployee(&tracking.Employee{ID: "m1", CompanyID: "c1", Name: "Manager Mia", Email: "manager@acme.io", Role: "manager"}); err != nil {
		return nil, err
	}
	if err := t.AddEmployee(&tracking.Employee{ID: "e1", CompanyID: "c1", Name: "Dev Dan", Email: "dev@acme.io", Role: "employee"}); err != nil {
		return nil, err
	}
	if err := t.AddProject(&tracking.Project{ID: "p1", CompanyID: "c1", Name: "Client Project", ClientID: "client-42", Status: tracking.ProjectActive}); err != nil {
		return nil, err
	}

	t.Access().SetUserRole("c1", "m1", tracking.RoleManager)
	for _, action := range []tracking.PermissionAction{tracking.ActionApprove, tracking.ActionReject, tracking.ActionClosePeriod} {
		t.Access().Allow("c1", action, tracking.RoleManager)
	}

	t.Rates().Add(tracking.RateCard{
		ID: "r1", CompanyID: "c1", Target: tracking.TargetEmployee, Key: "e1",
		Billable: true, Rate: mustDecimal("100"), Currency: "EUR",
	})

	entries := []*tracking.TimeEntry{
		{ID: "t1", CompanyID: "c1", EmployeeID: "e1", ProjectID: "p1", Description: "Feature A",
			Start: demoDay.Add(9 * time.Hour), End: demoDay.Add(11 * time.Hour)},
		{ID: "t2", CompanyID: "c1", EmployeeID: "e1", ProjectID: "p1", Description: "Feature B",
			Start: demoDay.Add(12 * time.Hour), End: demoDay.Add(13 * time.Hour), Tags: []string{"billing"}},
	}
	for _, e := range entries {
		if err := t.AddTimeEntry(e); err != nil {
			return nil, err
		}
	}

	for _, id := range []tracking.EntryID{"t1", "t2"} {
		if err := t.SubmitEntry(id, ""); err != nil {
			return nil, err
		}
	}
	if err := t.ApproveEntryAs("m1", "t1", ""); err != nil {
		return nil, err
	}
	if err := t.RejectEntryAs("m1", "t2", "incomplete details"); err != nil {
		return nil, err
	}
	return t, nil
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the end-to-end demo scenario",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := seedDemo()
		if err != nil {
			return err
		}

		// Reports.
		from, to := demoDay, demoDay.AddDate(0, 0, 1)
		flat := t.GenerateReport(tracking.ReportParams{CompanyID: "c1", Status: tracking.StatusAll, Start: &from, End: &to})
		billing := t.GenerateBillingReport(tracking.BillingParams{CompanyID: "c1", Start: from, End: to})
		buckets := report.Aggregate(t.Stores().Entries().List(), report.Query{
			GroupBy: []report.Dimension{report.ByEmployee, report.ByDay},
		})

		// Close the month.
		if err := t.ClosePeriodAs("m1", "c1", time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)); err != nil {
			return err
		}

		fmt.Println("--- EVENTS ---")
		for _, name := range t.Events().Names() {
			fmt.Println(name)
		}

		fmt.Println("\n--- AUDIT LOG ---")
		for _, rec := range t.Audit().All() {
			fmt.Printf("%s %s entry=%s reason=%q\n", rec.At.Format(time.RFC3339), rec.Action, rec.EntryID, rec.Reason)
		}

		fmt.Printf("\n--- REPORT (all statuses) ---\ntotalHours=%.2f count=%d\n", flat.TotalHours, len(flat.Entries))

		fmt.Println("\n--- BILLING ---")
		for _, item := range billing.Items {
			fmt.Printf("%s hours=%.2f billable=%t amount=%s %s\n",
				item.EntryID, item.Hours, item.Billable, item.Amount.StringFixed(2), item.Currency)
		}
		for currency, total := range billing.TotalsByCurrency {
			fmt.Printf("total %s: %s (%.2f h)\n", currency, total.Amount.StringFixed(2), total.Hours)
		}

		fmt.Println("\n--- ENTRY CSV ---")
		fmt.Println(tracking.ExportReportToCSV(flat))

		fmt.Println("\n--- AGGREGATION (employee x day) ---")
		fmt.Print(report.ToCSV(buckets))

		fmt.Println("\n--- EMAIL OUTBOX ---")
		for _, msg := range t.Mail().Outbox() {
			fmt.Printf("to=%v subject=%q\n", msg.To, msg.Subject)
		}

		if path, _ := cmd.Flags().GetString("pdf"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := report.BillingPDF(billing, f); err != nil {
				return err
			}
			log.Printf("billing PDF written to %s", path)
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a filtered flat report over the demo dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := seedDemo()
		if err != nil {
			return err
		}

		employee, _ := cmd.Flags().GetString("employee")
		project, _ := cmd.Flags().GetString("project")
		status, _ := cmd.Flags().GetString("status")
		asCSV, _ := cmd.Flags().GetBool("csv")

		from, to := demoDay, demoDay.AddDate(0, 0, 1)
		rep := t.GenerateReport(tracking.ReportParams{
			CompanyID:  "c1",
			EmployeeID: tracking.EmployeeID(employee),
			ProjectID:  tracking.ProjectID(project),
			Status:     tracking.EntryStatus(status),
			Start:      &from,
			End:        &to,
		})

		if asCSV {
			fmt.Println(tracking.ExportReportToCSV(rep))
			return nil
		}
		fmt.Printf("entries=%d totalHours=%.2f\n", len(rep.Entries), rep.TotalHours)
		for _, e := range rep.Entries {
			fmt.Printf("%s %s %s %dm %s\n", e.ID, e.EffectiveStatus(), e.ProjectID, e.Minutes(), e.Description)
		}
		return nil
	},
}

var billingCmd = &cobra.Command{
	Use:   "billing",
	Short: "Print the billing report over the demo dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := seedDemo()
		if err != nil {
			return err
		}

		billing := t.GenerateBillingReport(tracking.BillingParams{
			CompanyID: "c1", Start: demoDay, End: demoDay.AddDate(0, 0, 1),
		})
		for _, item := range billing.Items {
			fmt.Printf("%s hours=%.2f billable=%t amount=%s %s\n",
				item.EntryID, item.Hours, item.Billable, item.Amount.StringFixed(2), item.Currency)
		}
		for currency, total := range billing.TotalsByCurrency {
			fmt.Printf("total %s: %s (%.2f h)\n", currency, total.Amount.StringFixed(2), total.Hours)
		}

		if path, _ := cmd.Flags().GetString("pdf"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := report.BillingPDF(billing, f); err != nil {
				return err
			}
			log.Printf("billing PDF written to %s", path)
		}
		return nil
	},
}

var holidaysCmd = &cobra.Command{
	Use:   "holidays",
	Short: "Print the static holiday set for a country and year",
	RunE: func(cmd *cobra.Command, args []string) error {
		country, _ := cmd.Flags().GetString("country")
		year, _ := cmd.Flags().GetInt("year")

		list := tracking.StaticSource{}.Fetch(country, year)
		if len(list) == 0 {
			return fmt.Errorf("no built-in holidays for country %q", country)
		}
		for _, h := range list {
			fmt.Printf("%s  %s\n", h.Date.Format("2006-01-02"), h.Name)
		}
		return nil
	},
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
