package cli

import (
	"strings"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/spf13/cobra"
)

var recalcDayCmd = EngineCommand{
	Use:   "day <employee-id> <YYYY-MM-DD>",
	Short: "Re-derive one employee's day from all of its punches",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, eng engine, args []string) error {
		return runRecalcDay(cmd, eng.svc, args[0], args[1])
	},
}.Build()

func runRecalcDay(cmd *cobra.Command, svc attendance.AttendanceService, employeeID, date string) error {
	result, err := svc.RecalculateDay(contextOf(cmd), attendance.RecalculateDayRequest{
		EmployeeID: employeeID,
		Date:       date,
	})
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

var recalcMonthCmd = EngineCommand{
	Use:   "month --year YYYY --month M",
	Short: "Re-derive a whole month for some or all employees",
	Args:  cobra.NoArgs,
	IntFlags: []IntFlag{
		{Name: "year", Usage: "calendar year", Required: true},
		{Name: "month", Usage: "calendar month (1-12)", Required: true},
	},
	StrFlags: []StringFlag{
		{Name: "employees", Usage: "comma-separated employee ids (default: everyone with punches)"},
	},
	Run: func(cmd *cobra.Command, eng engine, args []string) error {
		year, _ := cmd.Flags().GetInt("year")
		month, _ := cmd.Flags().GetInt("month")
		employeesFlag, _ := cmd.Flags().GetString("employees")

		req := attendance.RecalculateMonthRequest{Month: month, Year: year, EmployeeIDs: splitEmployees(employeesFlag)}
		return runRecalcMonth(cmd, eng.svc, req)
	},
}.Build()

// runRecalcMonth leaves range checks on month and year to the request's validation.
func runRecalcMonth(cmd *cobra.Command, svc attendance.AttendanceService, req attendance.RecalculateMonthRequest) error {
	summary, err := svc.RecalculateMonth(contextOf(cmd), req)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), summary)
}

func splitEmployees(flag string) []string {
	var ids []string
	for _, id := range strings.Split(flag, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Forcibly re-derive stored attendance",
}

func init() {
	recalcCmd.AddCommand(recalcDayCmd, recalcMonthCmd)
}
