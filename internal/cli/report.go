package cli

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"timed-quiz-platform/internal/domain"
	"timed-quiz-platform/internal/frontend"
	"timed-quiz-platform/internal/report"
)

// NewReportCmd exports one participant's result as PDF.
func NewReportCmd(configPath, apiURL *string) *cobra.Command {
	flags := &adminFlags{}
	var channel, out string
	cmd := &cobra.Command{
		Use:   "report USERNAME",
		Short: "Export a participant's result as a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]
			return adminSession(cmd, *configPath, *apiURL, flags, func(ctx context.Context, view *frontend.View, _ *console) error {
				path := out
				if path == "" {
					path = report.FileName(domain.ParticipantReport{Username: username})
				}
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				if err := view.ExportReport(ctx, username, channel, f); err != nil {
					f.Close()
					_ = os.Remove(path)
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				log.Printf("report written to %s", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&flags.username, "user", "admin", "admin username")
	cmd.Flags().StringVar(&flags.password, "password", "", "admin password (or QUIZ_ADMIN_PASSWORD)")
	cmd.Flags().StringVar(&channel, "channel", "", "channel code (defaults to the participant's latest attempt)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (defaults to <username>_quiz_results.pdf)")
	return cmd
}
