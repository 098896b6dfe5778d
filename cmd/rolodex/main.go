package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/openclaw/rolodex/internal/briefing"
	"github.com/openclaw/rolodex/internal/config"
	"github.com/openclaw/rolodex/internal/costs"
	"github.com/openclaw/rolodex/internal/crm"
	"github.com/openclaw/rolodex/internal/db"
	"github.com/openclaw/rolodex/internal/live"
	"github.com/openclaw/rolodex/internal/logger"
	"github.com/openclaw/rolodex/internal/mailbox"
	"github.com/openclaw/rolodex/internal/pipeline"
	"github.com/openclaw/rolodex/internal/scan"
	"github.com/openclaw/rolodex/internal/server"
)

var (
	version    = "dev"
	commit     = "none"
	buildDate  = "unknown"
	jsonOutput bool
)

func main() {
	// Optional .env for local overrides (IMAP credentials, server addr)
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "rolodex",
		Short: "Personal CRM over a local SQLite database",
		Long: `Rolodex scans mailbox envelope metadata into a contact database,
scores relationship health, answers keyword queries, and tracks a
job-search pipeline with follow-ups.`,
	}

	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(meCmd())
	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(briefingCmd())
	rootCmd.AddCommand(followupCmd())
	rootCmd.AddCommand(pipelineCmd())
	rootCmd.AddCommand(costsCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// fatal reports an error in the selected output mode and exits.
func fatal(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if jsonOutput {
		printJSON(map[string]interface{}{"ok": false, "message": msg})
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}

// openEngine loads config, opens the database and builds the engine.
// The caller must Close the returned handle.
func openEngine() (*config.Config, *crm.Engine, func()) {
	cfg, err := config.Load()
	if err != nil {
		fatal("Failed to load config: %v", err)
	}
	database, err := db.Open()
	if err != nil {
		fatal("Failed to open database: %v", err)
	}
	eng := crm.NewEngine(database, cfg.Rules, cfg.Me.Emails)
	return cfg, eng, func() { database.Close() }
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			if jsonOutput {
				printJSON(map[string]string{
					"version": version,
					"commit":  commit,
					"date":    buildDate,
				})
			} else {
				fmt.Printf("rolodex %s (%s, %s)\n", version, commit, buildDate)
			}
		},
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize rolodex config and database",
		Run: func(cmd *cobra.Command, args []string) {
			configDir, err := config.GetConfigDir()
			if err != nil {
				fatal("Failed to get config directory: %v", err)
			}
			dataDir, err := config.GetDataDir()
			if err != nil {
				fatal("Failed to get data directory: %v", err)
			}
			if err := os.MkdirAll(configDir, 0755); err != nil {
				fatal("Failed to create config directory: %v", err)
			}
			if err := os.MkdirAll(dataDir, 0755); err != nil {
				fatal("Failed to create data directory: %v", err)
			}
			if err := db.Init(); err != nil {
				fatal("Failed to initialize database: %v", err)
			}
			dbPath, err := db.GetPath()
			if err != nil {
				fatal("Failed to get database path: %v", err)
			}

			if jsonOutput {
				printJSON(map[string]interface{}{
					"ok":         true,
					"config_dir": configDir,
					"data_dir":   dataDir,
					"db_path":    dbPath,
				})
			} else {
				fmt.Printf("✓ Config directory: %s\n", configDir)
				fmt.Printf("✓ Data directory: %s\n", dataDir)
				fmt.Printf("✓ Database: %s\n", dbPath)
				fmt.Println("\nRolodex initialized successfully!")
			}
		},
	}
}

func meCmd() *cobra.Command {
	meCmd := &cobra.Command{
		Use:   "me",
		Short: "Configure owner identity",
		Long:  "Your own addresses are excluded from contact scanning.",
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Set your name and email addresses",
		Run: func(cmd *cobra.Command, args []string) {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			if name == "" && email == "" {
				fatal("At least one of --name or --email must be provided")
			}

			cfg, err := config.Load()
			if err != nil {
				fatal("Failed to load config: %v", err)
			}
			if name != "" {
				cfg.Me.Name = name
			}
			if email != "" {
				email = strings.ToLower(strings.TrimSpace(email))
				exists := false
				for _, e := range cfg.Me.Emails {
					if e == email {
						exists = true
						break
					}
				}
				if !exists {
					cfg.Me.Emails = append(cfg.Me.Emails, email)
				}
			}
			if err := cfg.Save(); err != nil {
				fatal("Failed to save config: %v", err)
			}

			if jsonOutput {
				printJSON(map[string]interface{}{"ok": true, "me": cfg.Me})
			} else {
				fmt.Println("✓ Identity updated")
				fmt.Printf("  Name: %s\n", cfg.Me.Name)
				fmt.Printf("  Emails: %s\n", strings.Join(cfg.Me.Emails, ", "))
			}
		},
	}
	setCmd.Flags().String("name", "", "Your full name")
	setCmd.Flags().String("email", "", "One of your email addresses (repeat the command to add more)")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the configured identity",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load()
			if err != nil {
				fatal("Failed to load config: %v", err)
			}
			if jsonOutput {
				printJSON(map[string]interface{}{"ok": true, "me": cfg.Me})
				return
			}
			if cfg.Me.Name == "" && len(cfg.Me.Emails) == 0 {
				fmt.Println("Identity not configured. Run 'rolodex me set --name \"Your Name\" --email you@example.com'")
				return
			}
			fmt.Printf("Name: %s\n", cfg.Me.Name)
			for _, e := range cfg.Me.Emails {
				fmt.Printf("  email: %s\n", e)
			}
		},
	}

	meCmd.AddCommand(setCmd)
	meCmd.AddCommand(showCmd)
	return meCmd
}

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan mailbox adapters into the contact database",
		Run: func(cmd *cobra.Command, args []string) {
			adapterName, _ := cmd.Flags().GetString("adapter")
			days, _ := cmd.Flags().GetInt("days")
			full, _ := cmd.Flags().GetBool("full")

			cfg, eng, closeDB := openEngine()
			defer closeDB()

			ctx := context.Background()
			var since time.Time
			if !full {
				since = time.Now().AddDate(0, 0, -days)
			}

			var result scan.Result
			if adapterName != "" {
				result = scan.One(ctx, eng, cfg, adapterName, since)
			} else {
				result = scan.All(ctx, eng, cfg, since)
			}

			if jsonOutput {
				printJSON(result)
				if !result.OK {
					os.Exit(1)
				}
				return
			}

			if !result.OK && result.Message != "" {
				fmt.Fprintf(os.Stderr, "Error: %s\n", result.Message)
				os.Exit(1)
			}
			if len(result.Adapters) == 0 {
				fmt.Println(result.Message)
				return
			}

			fmt.Println("Scan results:")
			for _, a := range result.Adapters {
				if a.Success {
					fmt.Printf("\n✓ %s\n", a.AdapterName)
					fmt.Printf("  Envelopes fetched: %d\n", a.Fetched)
					fmt.Printf("  Contacts added: %d\n", a.Added)
					fmt.Printf("  Contacts updated: %d\n", a.Updated)
					fmt.Printf("  Interactions logged: %d\n", a.Logged)
					fmt.Printf("  Skipped: %d\n", a.Skipped)
					fmt.Printf("  Duration: %s\n", a.Duration)
				} else {
					fmt.Printf("\n✗ %s\n", a.AdapterName)
					fmt.Printf("  Error: %s\n", a.Error)
				}
			}
			if !result.OK {
				os.Exit(1)
			}
		},
	}
	cmd.Flags().String("adapter", "", "Scan a specific adapter (default: all enabled)")
	cmd.Flags().Int("days", 90, "How many days back to fetch")
	cmd.Flags().Bool("full", false, "Fetch the entire mailbox history")
	return cmd
}

func printContacts(results []crm.ContactResult) {
	if len(results) == 0 {
		fmt.Println("No matches")
		return
	}
	for _, r := range results {
		last := "never"
		if len(r.LastContact) >= 10 {
			last = r.LastContact[:10]
		}
		fmt.Printf("  %s %3d  %-28s %-20s %-10s %d emails  last: %s\n",
			crm.TierEmoji(r.Health), r.Health, truncate(r.Name, 28), truncate(r.Company, 20), r.Role, r.Interactions, last)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query [text]",
		Short: "Query contacts by keyword",
		Long: `Classifies the query and returns a ranked contact list, e.g.:
  rolodex query "stale relationships"
  rolodex query "show recruiters"
  rolodex query "top contacts"
  rolodex query huxley`,
		Run: func(cmd *cobra.Command, args []string) {
			text := strings.Join(args, " ")

			_, eng, closeDB := openEngine()
			defer closeDB()

			results, err := eng.Query(text)
			if err != nil {
				fatal("Query failed: %v", err)
			}

			if jsonOutput {
				printJSON(map[string]interface{}{
					"ok":      true,
					"intent":  crm.ParseIntent(text).String(),
					"results": results,
				})
				return
			}
			fmt.Printf("\n🔍 %q — %d results (%s)\n", text, len(results), crm.ParseIntent(text))
			printContacts(results)
		},
	}
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show CRM aggregate counts and top contacts",
		Run: func(cmd *cobra.Command, args []string) {
			_, eng, closeDB := openEngine()
			defer closeDB()

			report, err := eng.Summary()
			if err != nil {
				fatal("Summary failed: %v", err)
			}

			if jsonOutput {
				printJSON(report)
				return
			}
			fmt.Println("\n📊 CRM Summary")
			fmt.Printf("  Total contacts:     %d\n", report.TotalContacts)
			fmt.Printf("  Recruiters:         %d\n", report.Recruiters)
			fmt.Printf("  Total interactions: %d\n", report.TotalInteractions)
			fmt.Printf("  Pending follow-ups: %d\n", report.PendingFollowUps)
			fmt.Printf("  Job pipeline:       %d\n", report.JobPipeline)
			fmt.Println("\n🔝 Top Contacts")
			printContacts(report.TopContacts)
		},
	}
}

func briefingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "briefing",
		Short: "Compose the daily briefing",
		Run: func(cmd *cobra.Command, args []string) {
			days, _ := cmd.Flags().GetInt("days")
			adapterName, _ := cmd.Flags().GetString("adapter")

			cfg, eng, closeDB := openEngine()
			defer closeDB()

			// Urgent mail needs fresh envelopes; skip the section when no
			// adapter is available rather than failing the briefing.
			var envelopes []crm.Envelope
			ctx := context.Background()
			since := time.Now().AddDate(0, 0, -days)
			for name, acfg := range cfg.Adapters {
				if !acfg.Enabled || (adapterName != "" && name != adapterName) {
					continue
				}
				if src, err := mailbox.New(name, acfg); err == nil {
					if envs, err := src.Fetch(ctx, since); err == nil {
						envelopes = append(envelopes, envs...)
					}
				}
			}

			database := eng.DB()
			b, err := briefing.Compose(database, eng, envelopes)
			if err != nil {
				fatal("Briefing failed: %v", err)
			}

			if jsonOutput {
				printJSON(b)
				return
			}
			fmt.Print(b.Text())
		},
	}
	cmd.Flags().Int("days", 3, "How many days of mail to check for urgency")
	cmd.Flags().String("adapter", "", "Fetch urgent mail from a specific adapter")
	return cmd
}

func followupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "followup",
		Short: "Manage follow-up reminders",
	}

	addCmd := &cobra.Command{
		Use:   "add <action>",
		Short: "Add a pending follow-up",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			due, _ := cmd.Flags().GetString("due")
			priority, _ := cmd.Flags().GetString("priority")
			contactID, _ := cmd.Flags().GetInt64("contact")
			jobID, _ := cmd.Flags().GetInt64("job")

			_, eng, closeDB := openEngine()
			defer closeDB()

			id, err := pipeline.AddFollowUp(eng.DB(), strings.Join(args, " "), due, priority, contactID, jobID)
			if err != nil {
				fatal("Failed to add follow-up: %v", err)
			}
			if jsonOutput {
				printJSON(map[string]interface{}{"ok": true, "id": id})
			} else {
				fmt.Printf("✓ Follow-up added (%s)\n", id)
			}
		},
	}
	addCmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	addCmd.Flags().String("priority", "medium", "Priority: urgent, high, medium, low")
	addCmd.Flags().Int64("contact", 0, "Contact id to link")
	addCmd.Flags().Int64("job", 0, "Job pipeline id to link")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List pending follow-ups",
		Run: func(cmd *cobra.Command, args []string) {
			_, eng, closeDB := openEngine()
			defer closeDB()

			followUps, err := pipeline.PendingFollowUps(eng.DB(), 50)
			if err != nil {
				fatal("Failed to list follow-ups: %v", err)
			}
			if jsonOutput {
				printJSON(map[string]interface{}{"ok": true, "follow_ups": followUps})
				return
			}
			if len(followUps) == 0 {
				fmt.Println("✅ No pending follow-ups")
				return
			}
			for _, f := range followUps {
				link := ""
				if f.ContactName != "" {
					link = " — " + f.ContactName
				} else if f.JobCompany != "" {
					link = " — " + f.JobCompany
				}
				fmt.Printf("  [%s] %s (due %s)%s\n    id: %s\n", f.Priority, f.Action, f.DueDate, link, f.ID)
			}
		},
	}

	doneCmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a follow-up complete",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			_, eng, closeDB := openEngine()
			defer closeDB()

			if err := pipeline.CompleteFollowUp(eng.DB(), args[0]); err != nil {
				fatal("Failed to complete follow-up: %v", err)
			}
			if jsonOutput {
				printJSON(map[string]interface{}{"ok": true})
			} else {
				fmt.Println("✓ Follow-up completed")
			}
		},
	}

	cmd.AddCommand(addCmd, listCmd, doneCmd)
	return cmd
}

func pipelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Track job applications",
	}

	addCmd := &cobra.Command{
		Use:   "add <company>",
		Short: "Add a job application",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			role, _ := cmd.Flags().GetString("role")
			status, _ := cmd.Flags().GetString("status")
			applied, _ := cmd.Flags().GetString("applied")
			url, _ := cmd.Flags().GetString("url")
			notes, _ := cmd.Flags().GetString("notes")
			if applied == "" {
				applied = time.Now().Format("2006-01-02")
			}

			_, eng, closeDB := openEngine()
			defer closeDB()

			id, err := pipeline.Add(eng.DB(), args[0], role, status, applied, url, notes)
			if err != nil {
				fatal("Failed to add job: %v", err)
			}
			if jsonOutput {
				printJSON(map[string]interface{}{"ok": true, "id": id})
			} else {
				fmt.Printf("✓ Added %s (id %d)\n", args[0], id)
			}
		},
	}
	addCmd.Flags().String("role", "", "Role title")
	addCmd.Flags().String("status", "discovered", "Status: "+strings.Join(pipeline.Statuses, ", "))
	addCmd.Flags().String("applied", "", "Applied date (default today)")
	addCmd.Flags().String("url", "", "Posting URL")
	addCmd.Flags().String("notes", "", "Notes")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List job applications",
		Run: func(cmd *cobra.Command, args []string) {
			_, eng, closeDB := openEngine()
			defer closeDB()

			entries, err := pipeline.List(eng.DB(), 50)
			if err != nil {
				fatal("Failed to list jobs: %v", err)
			}
			if jsonOutput {
				printJSON(map[string]interface{}{"ok": true, "jobs": entries})
				return
			}
			if len(entries) == 0 {
				fmt.Println("No applications tracked")
				return
			}
			for _, e := range entries {
				fmt.Printf("  %3d  %-24s %-24s %-12s %s\n", e.ID, truncate(e.Company, 24), truncate(e.Role, 24), e.Status, e.AppliedDate)
			}
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move an application to a new status",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			var id int64
			if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
				fatal("Invalid job id: %s", args[0])
			}

			_, eng, closeDB := openEngine()
			defer closeDB()

			if err := pipeline.SetStatus(eng.DB(), id, args[1]); err != nil {
				fatal("Failed to update status: %v", err)
			}
			if jsonOutput {
				printJSON(map[string]interface{}{"ok": true})
			} else {
				fmt.Printf("✓ Job %d → %s\n", id, args[1])
			}
		},
	}

	ratesCmd := &cobra.Command{
		Use:   "rates",
		Short: "Show response/interview/offer rates",
		Run: func(cmd *cobra.Command, args []string) {
			_, eng, closeDB := openEngine()
			defer closeDB()

			rates, err := pipeline.Rates(eng.DB())
			if err != nil {
				fatal("Failed to compute rates: %v", err)
			}
			companies, err := pipeline.CompanyBreakdown(eng.DB())
			if err != nil {
				fatal("Failed to compute company breakdown: %v", err)
			}
			trend, err := pipeline.Trend(eng.DB())
			if err != nil {
				fatal("Failed to compute trend: %v", err)
			}

			if jsonOutput {
				printJSON(map[string]interface{}{
					"ok":        true,
					"rates":     rates,
					"companies": companies,
					"trend":     trend,
				})
				return
			}

			fmt.Println("\n📊 RESPONSE RATE REPORT")
			fmt.Printf("  Total applications: %d\n", rates.TotalApplications)
			fmt.Printf("  Responses:  %d (%.1f%%)\n", rates.Responses, rates.ResponseRate)
			fmt.Printf("  Interviews: %d (%.1f%%)\n", rates.Interviews, rates.InterviewRate)
			fmt.Printf("  Offers:     %d (%.1f%%)\n", rates.Offers, rates.OfferRate)
			fmt.Println("\n🎯 Conversion")
			fmt.Printf("  Response → Interview: %.1f%%\n", rates.ResponseToInterview)
			fmt.Printf("  Interview → Offer:    %.1f%%\n", rates.InterviewToOffer)
			if len(companies) > 0 {
				fmt.Println("\n🏢 By company")
				for _, c := range companies {
					fmt.Printf("  %-24s applied %d, responded %d, interviewed %d, offers %d\n",
						truncate(c.Company, 24), c.Applied, c.Responded, c.Interviewed, c.Offers)
				}
			}
			if len(trend) > 0 {
				fmt.Println("\n📈 Monthly trend")
				for _, p := range trend {
					fmt.Printf("  %s: %d apps, %d responses (%.0f%%)\n", p.Period, p.Applications, p.Responses, p.ResponseRate)
				}
			}
		},
	}

	cmd.AddCommand(addCmd, listCmd, statusCmd, ratesCmd)
	return cmd
}

func costsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "costs",
		Short: "Track model API spend",
	}

	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Log one API call",
		Run: func(cmd *cobra.Command, args []string) {
			model, _ := cmd.Flags().GetString("model")
			provider, _ := cmd.Flags().GetString("provider")
			task, _ := cmd.Flags().GetString("task")
			in, _ := cmd.Flags().GetInt("input")
			out, _ := cmd.Flags().GetInt("output")
			session, _ := cmd.Flags().GetString("session")
			notes, _ := cmd.Flags().GetString("notes")
			if model == "" {
				fatal("--model is required")
			}

			_, eng, closeDB := openEngine()
			defer closeDB()

			cost, err := costs.Log(eng.DB(), model, provider, task, in, out, session, notes)
			if err != nil {
				fatal("Failed to log usage: %v", err)
			}
			if jsonOutput {
				printJSON(map[string]interface{}{"ok": true, "estimated_cost": cost})
			} else {
				fmt.Printf("✓ Logged %s: $%.6f\n", model, cost)
			}
		},
	}
	logCmd.Flags().String("model", "", "Model name")
	logCmd.Flags().String("provider", "", "Provider name")
	logCmd.Flags().String("task", "", "Task type")
	logCmd.Flags().Int("input", 0, "Input tokens")
	logCmd.Flags().Int("output", 0, "Output tokens")
	logCmd.Flags().String("session", "", "Session key")
	logCmd.Flags().String("notes", "", "Notes")

	reportCmd := &cobra.Command{
		Use:   "report [day|week|month|all]",
		Short: "Show the spend report for a period",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			period := "week"
			if len(args) > 0 {
				period = args[0]
			}

			_, eng, closeDB := openEngine()
			defer closeDB()

			summary, err := costs.Summarize(eng.DB(), period)
			if err != nil {
				fatal("Failed to summarize costs: %v", err)
			}
			if jsonOutput {
				printJSON(summary)
				return
			}
			fmt.Printf("\n📊 MODEL COST REPORT — %s\n", period)
			fmt.Printf("\n💰 Total estimated cost: $%.4f\n", summary.TotalCost)
			if len(summary.ByProvider) > 0 {
				fmt.Println("\nBy provider:")
				for _, p := range summary.ByProvider {
					fmt.Printf("  %-15s $%.4f (%d in / %d out)\n", p.Provider, p.Cost, p.Input, p.Output)
				}
			}
			if len(summary.ByModel) > 0 {
				fmt.Println("\nBy model:")
				for _, m := range summary.ByModel {
					fmt.Printf("  %-25s $%.4f (%d requests)\n", m.Model, m.Cost, m.Requests)
				}
			}
		},
	}

	cmd.AddCommand(logCmd, reportCmd)
	return cmd
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the local mailbox store and rescan on change",
		Run: func(cmd *cobra.Command, args []string) {
			path, _ := cmd.Flags().GetString("path")
			adapterName, _ := cmd.Flags().GetString("adapter")
			days, _ := cmd.Flags().GetInt("days")
			debounceSec, _ := cmd.Flags().GetInt("debounce")
			if path == "" {
				fatal("--path is required (maildir or mailbox export to watch)")
			}

			cfg, eng, closeDB := openEngine()
			defer closeDB()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigChan
				fmt.Println("\nShutting down...")
				cancel()
			}()

			rescan := func() error {
				since := time.Now().AddDate(0, 0, -days)
				var result scan.Result
				if adapterName != "" {
					result = scan.One(ctx, eng, cfg, adapterName, since)
				} else {
					result = scan.All(ctx, eng, cfg, since)
				}
				for _, a := range result.Adapters {
					if a.Success && (a.Added > 0 || a.Logged > 0) {
						fmt.Printf("[%s] %s: %d new contacts, %d interactions\n",
							time.Now().Format("15:04:05"), a.AdapterName, a.Added, a.Logged)
					}
					if !a.Success {
						fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", time.Now().Format("15:04:05"), a.AdapterName, a.Error)
					}
				}
				if !result.OK && result.Message != "" {
					return fmt.Errorf("%s", result.Message)
				}
				return nil
			}

			opts := live.Options{Path: path, Debounce: time.Duration(debounceSec) * time.Second}
			if err := live.Watch(ctx, opts, rescan, func(format string, args ...any) {
				fmt.Printf(format+"\n", args...)
			}); err != nil {
				fatal("Watch failed: %v", err)
			}
		},
	}
	cmd.Flags().String("path", "", "File or directory to watch")
	cmd.Flags().String("adapter", "", "Rescan a specific adapter (default: all enabled)")
	cmd.Flags().Int("days", 7, "How many days back each rescan fetches")
	cmd.Flags().Int("debounce", 2, "Debounce seconds")
	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the engine over local HTTP",
		Run: func(cmd *cobra.Command, args []string) {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = os.Getenv("ROLODEX_ADDR")
			}
			if addr == "" {
				addr = "127.0.0.1:8787"
			}

			log, err := logger.New(os.Getenv("ROLODEX_ENV"))
			if err != nil {
				fatal("Failed to build logger: %v", err)
			}
			defer log.Sync()

			_, eng, closeDB := openEngine()
			defer closeDB()

			srv := server.New(eng.DB(), eng, log)
			if err := srv.Run(addr); err != nil {
				fatal("Server failed: %v", err)
			}
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default 127.0.0.1:8787)")
	return cmd
}
