package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/whenworks/whenworks/internal/config"
	"github.com/whenworks/whenworks/pkg/core/availability"
	"github.com/whenworks/whenworks/pkg/core/grid"
	"github.com/whenworks/whenworks/pkg/core/model"
	"github.com/whenworks/whenworks/pkg/core/services"
	"github.com/whenworks/whenworks/pkg/postgres"
	"github.com/whenworks/whenworks/pkg/server"
	"github.com/whenworks/whenworks/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg      *config.Config
	database *postgres.DB
	logger   *zap.Logger
	ctx      context.Context
}

var (
	env string
	app *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "whenworks",
		Short: "whenworks - Find a time that works for everyone",
		Long:  `A scheduling tool: create an event, collect availability from participants, and see where everyone overlaps.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				if app.logger != nil {
					app.logger.Sync()
				}
				if app.database != nil {
					app.database.Close()
				}
			}
		},
	}

	// Add persistent environment flag
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	// Add all commands
	rootCmd.AddCommand(createEventCmd())
	rootCmd.AddCommand(showEventCmd())
	rootCmd.AddCommand(gridCmd())
	rootCmd.AddCommand(submitCmd())
	rootCmd.AddCommand(resultsCmd())
	rootCmd.AddCommand(exportICSCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, and database
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	// Initialize logger
	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.logger.Info("Loading configuration")
	app.cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	// Connect to the database and apply pending migrations
	app.logger.Info("Connecting to database")
	app.database, err = postgres.NewDB(app.ctx, app.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := app.database.RunMigrations(app.ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.logger.Info("Database initialized successfully")

	return nil
}

// Command definitions

func createEventCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-event <title>",
		Short: "Create a new event and print its code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventRange, err := rangeFromFlags(cmd)
			if err != nil {
				return err
			}

			code, _ := cmd.Flags().GetString("code")
			result, err := services.CreateEvent(app.ctx, app.database, app.logger, services.CreateEventInput{
				Title:      args[0],
				CustomCode: code,
				Range:      eventRange,
			})
			if err != nil {
				return err
			}
			if len(result.FieldErrors) > 0 {
				printFieldErrors(result.FieldErrors)
				return fmt.Errorf("event rejected with %d validation errors", len(result.FieldErrors))
			}

			fmt.Printf("\nEvent created!\n\n")
			fmt.Printf("Code:  %s\n", result.Record.Code)
			fmt.Printf("Title: %s\n\n", result.Record.Title)

			fmt.Printf("Days:\n")
			for _, g := range result.DayGroups {
				fmt.Printf("  %s (%s): %d slots\n", g.DayKey, g.DayLabel, len(g.Slots))
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("code", "", "Custom event code (default: generated)")
	cmd.Flags().String("type", "date", "Event type: date or week")
	cmd.Flags().String("from", "", "First date, YYYY-MM-DD (date events)")
	cmd.Flags().String("to", "", "Last date, YYYY-MM-DD (date events)")
	cmd.Flags().String("days", "", "Comma-separated weekdays, e.g. mon,tue,wed (week events)")
	cmd.Flags().String("start", "09:00", "Daily window start, HH:MM")
	cmd.Flags().String("end", "17:00", "Daily window end, HH:MM (24:00 for midnight)")
	cmd.Flags().String("tz", "", "Event timezone (default: config defaultTimezone)")
	cmd.Flags().Int("duration", 0, "Desired meeting length in minutes")

	return cmd
}

func showEventCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-event <code>",
		Short: "Show an event and its expanded days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.GetEvent(app.ctx, app.database, app.logger, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n%s (%s)\n", result.Record.Title, result.Record.Code)
			fmt.Printf("Type:     %s\n", result.Record.EventType)
			fmt.Printf("Timezone: %s\n", result.Record.Timezone)
			fmt.Printf("Window:   %s - %s\n\n", formatMinutes(result.Record.StartTime), formatMinutes(result.Record.EndTime))

			for _, g := range result.DayGroups {
				fmt.Printf("  %s (%s): %d slots\n", g.DayKey, g.DayLabel, len(g.Slots))
			}
			fmt.Println()

			return nil
		},
	}
}

func gridCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grid <code>",
		Short: "Render an event's slot grid in your timezone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			event, err := services.GetEvent(app.ctx, app.database, app.logger, args[0])
			if err != nil {
				return err
			}

			tz, _ := cmd.Flags().GetString("tz")
			if tz == "" {
				tz = app.cfg.DefaultTimezone
			}
			page, _ := cmd.Flags().GetInt("page")

			view, err := grid.BuildView(event.DayGroups, tz, page, app.cfg.DaysPerPage)
			if err != nil {
				return err
			}
			if view.Empty {
				fmt.Println("\nNothing to show: the event expands to zero slots.")
				return nil
			}

			if locate, _ := cmd.Flags().GetString("locate"); locate != "" {
				return locateSlot(view, locate, tz)
			}

			fmt.Printf("\n%s - page %d/%d (%s)\n\n", event.Record.Title, view.Page+1, view.TotalPages, tz)

			fmt.Printf("%8s", "")
			for _, day := range view.VisibleDays {
				fmt.Printf("  %-10s", day.Label)
			}
			fmt.Println()

			for _, block := range view.Blocks {
				// cells[row][column], 1-based like the view itself
				cells := make(map[int]map[int]bool)
				for _, placed := range block.Slots {
					if cells[placed.Cell.Row] == nil {
						cells[placed.Cell.Row] = make(map[int]bool)
					}
					cells[placed.Cell.Row][placed.Cell.Column] = true
				}

				for row := 1; row <= block.NumQuarterHours; row++ {
					minute := (block.StartHour*60 + (row-1)*15)
					fmt.Printf("%8s", formatMinutes(minute))
					for col := 1; col <= len(view.VisibleDays); col++ {
						mark := "."
						if cells[row][col] {
							mark = "#"
						}
						fmt.Printf("  %-10s", mark)
					}
					fmt.Println()
				}
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().String("tz", "", "Viewer timezone (default: config defaultTimezone)")
	cmd.Flags().Int("page", 0, "Page of days to show")
	cmd.Flags().String("locate", "", "Print the grid cell of one slot instead of the full grid")

	return cmd
}

// locateSlot resolves a single slot against the current page, counting
// rows from the configured grid start hour.
func locateSlot(view *grid.View, slotID, tz string) error {
	t, err := model.ParseSlot(slotID)
	if err != nil {
		return err
	}

	keys := make([]string, len(view.VisibleDays))
	for i, day := range view.VisibleDays {
		keys[i] = day.Key
	}

	cell, err := grid.MapToGrid(t, keys, tz, app.cfg.GridStartHour)
	if err != nil {
		return err
	}

	placed, ok := cell.Get()
	if !ok {
		fmt.Printf("\n%s is not on this page.\n\n", slotID)
		return nil
	}

	fmt.Printf("\n%s -> row %d, column %d (%s)\n\n", slotID, placed.Row, placed.Column, view.VisibleDays[placed.Column-1].Label)
	return nil
}

func submitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <code>",
		Short: "Submit availability for an event",
		Long: `Submit availability for an event. Slots can be given directly with --slots,
or as a drag gesture with --drag-from/--drag-to which fills every slot
the gesture covers.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			tz, _ := cmd.Flags().GetString("tz")
			if tz == "" {
				tz = app.cfg.DefaultTimezone
			}

			slots, err := slotsFromFlags(cmd)
			if err != nil {
				return err
			}

			result, err := services.SubmitAvailability(app.ctx, app.database, app.logger, services.SubmitAvailabilityInput{
				EventCode:   args[0],
				DisplayName: name,
				Timezone:    tz,
				Slots:       slots,
			})
			if err != nil {
				return err
			}
			if len(result.FieldErrors) > 0 {
				printFieldErrors(result.FieldErrors)
				return fmt.Errorf("submission rejected with %d validation errors", len(result.FieldErrors))
			}

			fmt.Printf("\nAvailability stored for %s: %d slots\n\n", result.Record.DisplayName, len(result.Record.AvailableSlots))
			return nil
		},
	}

	cmd.Flags().String("name", "", "Your display name")
	cmd.MarkFlagRequired("name")
	cmd.Flags().String("tz", "", "Your timezone (default: config defaultTimezone)")
	cmd.Flags().StringSlice("slots", nil, "Slot identifiers, e.g. 2025-01-01T09:00:00Z")
	cmd.Flags().String("drag-from", "", "Drag gesture start slot")
	cmd.Flags().String("drag-to", "", "Drag gesture end slot")

	return cmd
}

func resultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "results <code>",
		Short: "Show aggregated availability for an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.ViewResults(app.ctx, app.database, app.logger, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\nParticipants (%d): %s\n\n", len(result.Participants), strings.Join(result.Participants, ", "))

			if len(result.Consensus.AllAvailable) > 0 {
				fmt.Printf("Everyone is available at:\n")
				for _, slot := range result.Consensus.AllAvailable {
					fmt.Printf("  %s\n", slot)
				}
			} else {
				fmt.Println("No slot works for everyone yet.")
			}
			fmt.Println()

			// Per-slot heat, densest first
			slots := make([]string, 0, len(result.Availability))
			for slot := range result.Availability {
				slots = append(slots, slot)
			}
			sort.Slice(slots, func(i, j int) bool {
				a, b := len(result.Availability[slots[i]]), len(result.Availability[slots[j]])
				if a != b {
					return a > b
				}
				return slots[i] < slots[j]
			})

			for _, slot := range slots {
				names := result.Availability[slot]
				fmt.Printf("  %s  %d/%d  %s\n", slot, len(names), len(result.Participants), strings.Join(names, ", "))
			}
			fmt.Println()

			return nil
		},
	}
}

func exportICSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-ics <code>",
		Short: "Export the consensus windows as an iCalendar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.ExportCalendar(app.ctx, app.database, app.logger, args[0])
			if err != nil {
				return err
			}

			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				fmt.Print(result.ICS)
				return nil
			}

			if err := os.WriteFile(out, []byte(result.ICS), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			fmt.Printf("\nWrote %d consensus windows to %s\n\n", len(result.Windows), out)
			return nil
		},
	}

	cmd.Flags().String("out", "", "Output file (default: stdout)")

	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.InitServerLogger()
			if err != nil {
				return fmt.Errorf("failed to initialize server logger: %w", err)
			}
			defer logger.Sync()

			srv := server.New(app.database, logger)
			logger.Info("Listening", zap.String("addr", app.cfg.ListenAddr))
			return http.ListenAndServe(app.cfg.ListenAddr, srv)
		},
	}
}

// Flag parsing helpers

func rangeFromFlags(cmd *cobra.Command) (model.EventRange, error) {
	eventType, _ := cmd.Flags().GetString("type")
	startStr, _ := cmd.Flags().GetString("start")
	endStr, _ := cmd.Flags().GetString("end")
	tz, _ := cmd.Flags().GetString("tz")
	duration, _ := cmd.Flags().GetInt("duration")

	if tz == "" {
		tz = app.cfg.DefaultTimezone
	}

	start, err := parseClock(startStr)
	if err != nil {
		return nil, fmt.Errorf("invalid --start: %w", err)
	}
	end, err := parseClock(endStr)
	if err != nil {
		return nil, fmt.Errorf("invalid --end: %w", err)
	}
	window := model.TimeWindow{From: start, To: end}

	switch eventType {
	case "date":
		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")
		from, err := model.ParseDate(fromStr)
		if err != nil {
			return nil, fmt.Errorf("invalid --from: %w", err)
		}
		to, err := model.ParseDate(toStr)
		if err != nil {
			return nil, fmt.Errorf("invalid --to: %w", err)
		}
		return model.SpecificRange{
			FromDate:        from,
			ToDate:          to,
			TimeWindow:      window,
			Timezone:        tz,
			DurationMinutes: duration,
		}, nil

	case "week":
		daysStr, _ := cmd.Flags().GetString("days")
		selected, err := parseWeekdays(daysStr)
		if err != nil {
			return nil, err
		}
		return model.WeekdayRange{
			Selected:        selected,
			TimeWindow:      window,
			Timezone:        tz,
			DurationMinutes: duration,
		}, nil
	}

	return nil, fmt.Errorf("unknown event type %q (want date or week)", eventType)
}

func slotsFromFlags(cmd *cobra.Command) ([]string, error) {
	slots, _ := cmd.Flags().GetStringSlice("slots")
	dragFrom, _ := cmd.Flags().GetString("drag-from")
	dragTo, _ := cmd.Flags().GetString("drag-to")

	if dragFrom == "" && dragTo == "" {
		return slots, nil
	}
	if dragFrom == "" || dragTo == "" {
		return nil, fmt.Errorf("--drag-from and --drag-to must be given together")
	}

	filled, err := availability.GenerateDragSlots(dragFrom, dragTo)
	if err != nil {
		return nil, err
	}

	set := availability.FromWire(slots)
	for slot := range filled {
		set[slot] = struct{}{}
	}
	return set.ToWire(), nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

func parseWeekdays(s string) (model.WeekdaySet, error) {
	var set model.WeekdaySet
	if strings.TrimSpace(s) == "" {
		return set, fmt.Errorf("--days is required for week events")
	}
	for _, part := range strings.Split(s, ",") {
		day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(part))]
		if !ok {
			return set, fmt.Errorf("unknown weekday %q", part)
		}
		set[day] = true
	}
	return set, nil
}

// parseClock converts "HH:MM" to minutes after midnight. "24:00" is the
// midnight sentinel for window ends.
func parseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("want HH:MM, got %q", s)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	total := hours*60 + minutes
	if total < 0 || total > model.MinutesPerDay {
		return 0, fmt.Errorf("clock %q out of range", s)
	}
	return total, nil
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func printFieldErrors(errs []model.FieldError) {
	fmt.Printf("\nValidation errors:\n")
	for _, fe := range errs {
		fmt.Printf("  %s: %s (%s)\n", fe.Field, fe.Message, fe.Code)
	}
	fmt.Println()
}
