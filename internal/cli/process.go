package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	attendanceService "github.com/cmlabs-hris/attendance-engine/internal/service/attendance"
	"github.com/spf13/cobra"
)

var processCmd = EngineCommand{
	Use:   "process",
	Short: "Fold unprocessed punches since the last checkpoint into daily records",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, eng engine, args []string) error {
		return runProcess(cmd, eng.svc)
	},
}.Build()

func runProcess(cmd *cobra.Command, svc attendance.AttendanceService) error {
	summary, err := svc.RunIncremental(contextOf(cmd))
	if err != nil {
		if attendanceService.IsRunInProgress(err) {
			return fmt.Errorf("another run holds the processing lease, try again later")
		}
		return err
	}
	return writeJSON(cmd.OutOrStdout(), summary)
}

var finalizeCmd = EngineCommand{
	Use:   "finalize",
	Short: "Write Absent or Weekend records for scheduled employees without punches",
	Args:  cobra.NoArgs,
	StrFlags: []StringFlag{
		{Name: "date", Usage: "day to finalize (YYYY-MM-DD, default yesterday)"},
	},
	Run: func(cmd *cobra.Command, eng engine, args []string) error {
		dateFlag, _ := cmd.Flags().GetString("date")
		return runFinalize(cmd, eng.svc, dateFlag, eng.cfg.Location(), time.Now())
	},
}.Build()

func runFinalize(cmd *cobra.Command, svc attendance.AttendanceService, dateFlag string, loc *time.Location, now time.Time) error {
	day := attendanceService.DateOf(now.In(loc).AddDate(0, 0, -1), loc)
	if dateFlag != "" {
		parsed, ok := validator.IsValidDate(dateFlag)
		if !ok {
			return fmt.Errorf("invalid --date value %q: expected YYYY-MM-DD", dateFlag)
		}
		day = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, loc)
	}

	summary, err := svc.FinalizeDay(contextOf(cmd), day)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), summary)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
