package cli

import (
	"github.com/cmlabs-hris/attendance-engine/internal/config"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/spf13/cobra"
)

// IntFlag defines an integer flag. Required flags have no usable default.
type IntFlag struct {
	Name     string
	Usage    string
	Default  int
	Required bool
}

// StringFlag defines a string flag.
type StringFlag struct {
	Name    string
	Usage   string
	Default string
}

// engine is what a command gets once the database is connected.
type engine struct {
	svc attendance.AttendanceService
	cfg *config.Config
}

// EngineCommand is a subcommand that runs against the attendance engine. Build wires the
// connection: the pool is opened before Run and closed after it.
type EngineCommand struct {
	Use      string
	Short    string
	Args     cobra.PositionalArgs
	IntFlags []IntFlag
	StrFlags []StringFlag
	Run      func(cmd *cobra.Command, eng engine, args []string) error
}

// Build creates the cobra.Command with its flags registered.
func (ec EngineCommand) Build() *cobra.Command {
	cmd := &cobra.Command{
		Use:   ec.Use,
		Short: ec.Short,
		Args:  ec.Args,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, closeDB, err := newService()
			if err != nil {
				return err
			}
			defer closeDB()

			return ec.Run(cmd, engine{svc: svc, cfg: cfg}, args)
		},
	}
	for _, f := range ec.IntFlags {
		cmd.Flags().Int(f.Name, f.Default, f.Usage)
		if f.Required {
			_ = cmd.MarkFlagRequired(f.Name)
		}
	}
	for _, f := range ec.StrFlags {
		cmd.Flags().String(f.Name, f.Default, f.Usage)
	}
	return cmd
}
