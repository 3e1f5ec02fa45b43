package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/config"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService answers the engine calls the commands make.
type stubService struct {
	attendance.AttendanceService

	err          error
	dayReq       attendance.RecalculateDayRequest
	monthReq     attendance.RecalculateMonthRequest
	finalizeDate time.Time
}

func (s *stubService) RunIncremental(ctx context.Context) (attendance.RunSummary, error) {
	return attendance.RunSummary{RunID: "run-1", ProcessedCount: 4, CreatedCount: 2}, s.err
}

func (s *stubService) RecalculateDay(ctx context.Context, req attendance.RecalculateDayRequest) (attendance.DailyAttendanceResponse, error) {
	s.dayReq = req
	return attendance.DailyAttendanceResponse{EmployeeID: req.EmployeeID, Date: req.Date, Status: "Present"}, s.err
}

func (s *stubService) RecalculateMonth(ctx context.Context, req attendance.RecalculateMonthRequest) (attendance.RunSummary, error) {
	s.monthReq = req
	return attendance.RunSummary{RunID: "run-2"}, s.err
}

func (s *stubService) FinalizeDay(ctx context.Context, date time.Time) (attendance.RunSummary, error) {
	s.finalizeDate = date
	return attendance.RunSummary{RunID: "run-3"}, s.err
}

func useStubService(t *testing.T, svc *stubService) *bool {
	t.Helper()
	closed := false
	orig := newService
	newService = func() (attendance.AttendanceService, *config.Config, func(), error) {
		return svc, &config.Config{}, func() { closed = true }, nil
	}
	t.Cleanup(func() { newService = orig })
	return &closed
}

func execCmd(args ...string) (string, string, error) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestProcessCommand(t *testing.T) {
	svc := &stubService{}
	closed := useStubService(t, svc)

	stdout, _, err := execCmd("process")
	require.NoError(t, err)
	assert.True(t, *closed)

	var summary attendance.RunSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, 4, summary.ProcessedCount)
}

func TestProcessCommand_LeaseHeld(t *testing.T) {
	useStubService(t, &stubService{err: attendance.ErrRunInProgress})

	_, _, err := execCmd("process")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "processing lease")
}

func TestProcessCommand_ConnectionFailure(t *testing.T) {
	orig := newService
	newService = func() (attendance.AttendanceService, *config.Config, func(), error) {
		return nil, nil, nil, errors.New("failed to connect to database")
	}
	defer func() { newService = orig }()

	_, _, err := execCmd("process")
	assert.EqualError(t, err, "failed to connect to database")
}

func TestRecalcDayCommand(t *testing.T) {
	svc := &stubService{}
	useStubService(t, svc)

	stdout, _, err := execCmd("recalc", "day", "emp-1", "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, attendance.RecalculateDayRequest{EmployeeID: "emp-1", Date: "2024-03-04"}, svc.dayReq)
	assert.Contains(t, stdout, `"status": "Present"`)

	_, _, err = execCmd("recalc", "day", "emp-1")
	assert.Error(t, err)
}

func TestRecalcMonthCommand(t *testing.T) {
	svc := &stubService{}
	useStubService(t, svc)

	_, _, err := execCmd("recalc", "month", "--year", "2024", "--month", "3", "--employees", "emp-1, emp-2,,")
	require.NoError(t, err)
	assert.Equal(t, 2024, svc.monthReq.Year)
	assert.Equal(t, 3, svc.monthReq.Month)
	assert.Equal(t, []string{"emp-1", "emp-2"}, svc.monthReq.EmployeeIDs)

	_, _, err = execCmd("recalc", "month", "--year=2024", "--month=4", "--employees=")
	require.NoError(t, err)
	assert.Equal(t, 4, svc.monthReq.Month)
	assert.Empty(t, svc.monthReq.EmployeeIDs)

	_, _, err = execCmd("recalc", "month", "--year=2024", "--month=april")
	assert.Error(t, err)
	assert.Equal(t, 4, svc.monthReq.Month)

	_, _, err = execCmd("recalc", "month", "2024-05", "--year=2024", "--month=5")
	assert.Error(t, err)
}

func TestSplitEmployees(t *testing.T) {
	assert.Nil(t, splitEmployees(""))
	assert.Nil(t, splitEmployees(" , ,"))
	assert.Equal(t, []string{"emp-1", "emp-2"}, splitEmployees("emp-1,  emp-2"))
}

func TestRunFinalize(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	now := time.Date(2024, time.March, 4, 18, 0, 0, 0, time.UTC)

	t.Run("defaults to yesterday in location", func(t *testing.T) {
		svc := &stubService{}
		cmd := &cobra.Command{}
		cmd.SetOut(new(bytes.Buffer))

		require.NoError(t, runFinalize(cmd, svc, "", jakarta, now))
		assert.True(t, time.Date(2024, time.March, 4, 0, 0, 0, 0, jakarta).Equal(svc.finalizeDate))
	})

	t.Run("explicit date", func(t *testing.T) {
		svc := &stubService{}
		out := new(bytes.Buffer)
		cmd := &cobra.Command{}
		cmd.SetOut(out)

		require.NoError(t, runFinalize(cmd, svc, "2024-02-29", jakarta, now))
		assert.True(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, jakarta).Equal(svc.finalizeDate))
		assert.Contains(t, out.String(), `"run_id": "run-3"`)
	})

	t.Run("invalid date", func(t *testing.T) {
		svc := &stubService{}
		err := runFinalize(&cobra.Command{}, svc, "29/02/2024", jakarta, now)
		require.Error(t, err)
		assert.True(t, svc.finalizeDate.IsZero())
	})
}

func TestRunToken(t *testing.T) {
	svc := jwt.NewJWTService("cli-test-secret", "2h")

	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	require.NoError(t, runToken(cmd, svc, "ops-1", "owner", true))
	token := strings.TrimSpace(out.String())
	assert.NotEmpty(t, token)
	assert.Contains(t, errOut.String(), "expires at")

	parsed, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims, err := parsed.AsMap(context.Background())
	require.NoError(t, err)
	c := auth.ClaimsFromMap(claims)
	assert.Equal(t, "ops-1", c.UserID)
	assert.Equal(t, auth.RoleOwner, c.Role)
	assert.True(t, c.IsAdmin)

	err = runToken(cmd, svc, "ops-1", "superuser", false)
	assert.Error(t, err)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"process", "recalc", "finalize", "token"})
}
