package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cmlabs-hris/attendance-engine/internal/config"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-engine/internal/service/attendance"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "attendancectl",
	Short:        "Run and repair attendance processing from the command line",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(recalcCmd)
	rootCmd.AddCommand(finalizeCmd)
	rootCmd.AddCommand(tokenCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

// newService connects to the database from the environment and builds the engine.
// The returned func closes the connection pool.
var newService = func() (attendance.AttendanceService, *config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := database.NewPostgreSQLDB(context.Background(), cfg.DatabaseURL(), cfg.PoolOptions())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	svc := attendanceService.NewAttendanceService(
		postgresql.NewPunchRepository(db),
		postgresql.NewShiftCalendarRepository(db),
		postgresql.NewDailyAttendanceRepository(db),
		postgresql.NewCheckpointRepository(db),
		postgresql.NewLeaseRepository(db),
		postgresql.NewTxManager(db),
		attendanceService.Options{
			ProcessID: cfg.Processing.ProcessID,
			Workers:   cfg.Processing.Workers,
			LeaseTTL:  cfg.Processing.LeaseTTL,
			Location:  cfg.Location(),
		},
	)
	return svc, cfg, db.Close, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
