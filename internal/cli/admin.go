package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"timed-quiz-platform/internal/client"
	"timed-quiz-platform/internal/frontend"
)

type adminFlags struct {
	username string
	password string
}

// adminSession logs in and hands the signed-in view to fn.
func adminSession(cmd *cobra.Command, configPath, apiURL string, flags *adminFlags, fn func(ctx context.Context, view *frontend.View, con *console) error) error {
	api, _, err := newAPIClient(configPath, apiURL)
	if err != nil {
		return err
	}
	con := newConsole(os.Stdin, cmd.OutOrStdout())
	view := frontend.NewView(api, con, frontend.Options{})

	password := flags.password
	if password == "" {
		password = os.Getenv("QUIZ_ADMIN_PASSWORD")
	}
	if password == "" {
		password, _ = con.ask("Password: ")
	}
	ctx := cmd.Context()
	if err := view.AdminLogin(ctx, flags.username, password); err != nil {
		return err
	}
	defer view.SignOut()
	return fn(ctx, view, con)
}

// confirmDelete asks for the DELETE literal before running the pending delete.
func confirmDelete(ctx context.Context, view *frontend.View, con *console, target frontend.DeleteTarget) error {
	view.RequestDelete(target)
	text, _ := con.ask(fmt.Sprintf("Type DELETE to remove %s %q: ", target.Kind, target.Name))
	if !frontend.DeleteEnabled(text) {
		view.CancelDelete()
		con.printf("Cancelled.\n")
		return nil
	}
	return view.ConfirmDelete(ctx, text)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// NewAdminCmd groups the dashboard operations.
func NewAdminCmd(configPath, apiURL *string) *cobra.Command {
	flags := &adminFlags{}
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage channels, questions, results and admin users",
	}
	cmd.PersistentFlags().StringVar(&flags.username, "user", "admin", "admin username")
	cmd.PersistentFlags().StringVar(&flags.password, "password", "", "admin password (or QUIZ_ADMIN_PASSWORD)")

	run := func(fn func(ctx context.Context, view *frontend.View, con *console, args []string) error) func(*cobra.Command, []string) error {
		return func(c *cobra.Command, args []string) error {
			return adminSession(c, *configPath, *apiURL, flags, func(ctx context.Context, view *frontend.View, con *console) error {
				return fn(ctx, view, con, args)
			})
		}
	}

	channels := &cobra.Command{Use: "channels", Short: "List, create and delete channels"}
	channels.AddCommand(
		&cobra.Command{Use: "list", RunE: run(func(ctx context.Context, v *frontend.View, con *console, _ []string) error {
			if err := v.LoadChannels(ctx); err != nil {
				return err
			}
			tw := tabwriter.NewWriter(con.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCODE\tCREATED")
			for _, ch := range v.Channels() {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", ch.ID, ch.Name, ch.Code, ch.CreatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		})},
		&cobra.Command{Use: "create NAME", Args: cobra.ExactArgs(1), RunE: run(func(ctx context.Context, v *frontend.View, _ *console, args []string) error {
			v.OpenCreateChannel(ctx)
			_, err := v.CreateChannel(ctx, args[0])
			return err
		})},
		&cobra.Command{Use: "delete ID", Args: cobra.ExactArgs(1), RunE: run(func(ctx context.Context, v *frontend.View, con *console, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return confirmDelete(ctx, v, con, frontend.DeleteTarget{Kind: frontend.DeleteChannel, ID: id, Name: args[0]})
		})},
	)

	var in client.QuestionInput
	add := &cobra.Command{Use: "add", Short: "Add a question", RunE: run(func(ctx context.Context, v *frontend.View, _ *console, _ []string) error {
		_, err := v.AddQuestion(ctx, in)
		return err
	})}
	add.Flags().StringVar(&in.Text, "text", "", "question text")
	add.Flags().StringVar(&in.OptionA, "a", "", "option A")
	add.Flags().StringVar(&in.OptionB, "b", "", "option B")
	add.Flags().StringVar(&in.OptionC, "c", "", "option C")
	add.Flags().StringVar(&in.OptionD, "d", "", "option D")
	add.Flags().StringVar(&in.CorrectAnswer, "answer", "A", "correct letter")

	questions := &cobra.Command{Use: "questions", Short: "List, add and delete questions"}
	questions.AddCommand(
		&cobra.Command{Use: "list", RunE: run(func(ctx context.Context, v *frontend.View, con *console, _ []string) error {
			if err := v.LoadQuestions(ctx); err != nil {
				return err
			}
			for _, q := range v.Questions() {
				con.printf("#%d %s\n   A) %s  B) %s  C) %s  D) %s  [%s]\n", q.ID, q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectAnswer)
			}
			return nil
		})},
		add,
		&cobra.Command{Use: "delete ID", Args: cobra.ExactArgs(1), RunE: run(func(ctx context.Context, v *frontend.View, con *console, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return confirmDelete(ctx, v, con, frontend.DeleteTarget{Kind: frontend.DeleteQuestion, ID: id, Name: args[0]})
		})},
	)

	results := &cobra.Command{Use: "results", Short: "List or clear participant results"}
	results.AddCommand(
		&cobra.Command{Use: "list", RunE: run(func(ctx context.Context, v *frontend.View, con *console, _ []string) error {
			if err := v.LoadResults(ctx); err != nil {
				return err
			}
			tw := tabwriter.NewWriter(con.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "USER\tCHANNEL\tSCORE\tANSWERED")
			for _, r := range v.Results() {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", r.Username, r.Channel, r.Score, r.TotalQuestions)
			}
			return tw.Flush()
		})},
		&cobra.Command{Use: "clear", RunE: run(func(ctx context.Context, v *frontend.View, con *console, _ []string) error {
			return confirmDelete(ctx, v, con, frontend.DeleteTarget{Kind: frontend.DeleteResults, Name: "all quiz results"})
		})},
	)

	users := &cobra.Command{Use: "users", Short: "List, create and delete admin users"}
	users.AddCommand(
		&cobra.Command{Use: "list", RunE: run(func(ctx context.Context, v *frontend.View, con *console, _ []string) error {
			if err := v.LoadUsers(ctx); err != nil {
				return err
			}
			for _, a := range v.Admins() {
				con.printf("%d\t%s\n", a.ID, a.Username)
			}
			return nil
		})},
		&cobra.Command{Use: "create USERNAME", Args: cobra.ExactArgs(1), RunE: run(func(ctx context.Context, v *frontend.View, con *console, args []string) error {
			pw, _ := con.ask("New user's password: ")
			return v.CreateAdminUser(ctx, args[0], pw)
		})},
		&cobra.Command{Use: "delete ID", Args: cobra.ExactArgs(1), RunE: run(func(ctx context.Context, v *frontend.View, con *console, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return confirmDelete(ctx, v, con, frontend.DeleteTarget{Kind: frontend.DeleteUser, ID: id, Name: args[0]})
		})},
	)

	passwd := &cobra.Command{Use: "passwd", Short: "Change your own password", RunE: run(func(ctx context.Context, v *frontend.View, con *console, _ []string) error {
		current, _ := con.ask("Current password: ")
		next, _ := con.ask("New password: ")
		return v.ChangePassword(ctx, current, next)
	})}

	cmd.AddCommand(channels, questions, results, users, passwd)
	return cmd
}
