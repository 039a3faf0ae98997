package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"timed-quiz-platform/internal/config"
	"timed-quiz-platform/internal/frontend"
	"timed-quiz-platform/internal/session"
)

const takeHelp = `commands: a|b|c|d select, n next, p previous, g <n> go to, m mark, s submit, t time, q quit`

// NewTakeCmd runs a quiz attempt in the terminal.
func NewTakeCmd(configPath, apiURL *string) *cobra.Command {
	var code, username string
	cmd := &cobra.Command{
		Use:   "take",
		Short: "Join a channel and take the timed quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, cfg, err := newAPIClient(*configPath, *apiURL)
			if err != nil {
				return err
			}
			con := newConsole(os.Stdin, cmd.OutOrStdout())
			view := frontend.NewView(api, con, frontend.Options{
				QuestionCount: cfg.Quiz.QuestionCount,
				Duration:      config.TTLDuration(cfg.Quiz.Duration, config.DefaultQuizDuration),
			})
			return takeQuiz(cmd.Context(), view, con, code, username)
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "channel access code")
	cmd.Flags().StringVar(&username, "name", "", "participant name")
	return cmd
}

func takeQuiz(ctx context.Context, view *frontend.View, con *console, code, username string) error {
	view.Show(frontend.ModeJoin)
	for view.Mode() == frontend.ModeJoin {
		if code == "" {
			code, _ = con.ask("Channel code: ")
		}
		if username == "" {
			username, _ = con.ask("Your name: ")
		}
		if code == "" || username == "" {
			return fmt.Errorf("channel code and name are required")
		}
		if err := view.Join(ctx, code, username); err != nil {
			code = ""
			if again, ok := con.ask("Try again? [y/N] "); !ok || !strings.EqualFold(again, "y") {
				return nil
			}
		}
	}

	a := view.Attempt()
	con.printf("Joined %s. The quiz has a time limit; it is submitted automatically when time runs out.\n", a.ChannelName())
	if _, ok := con.ask("Press Enter to start..."); !ok {
		view.Abandon()
		return nil
	}
	if err := view.Start(ctx); err != nil {
		view.Abandon()
		return err
	}
	con.printf("%s\n", takeHelp)

	for view.Mode() == frontend.ModeQuiz {
		showQuestion(view, con)
		line, ok := con.ask("> ")
		if !ok {
			view.Abandon()
			return nil
		}
		if view.Mode() != frontend.ModeQuiz {
			break // submitted by the timer while waiting for input
		}
		if err := handleQuizCommand(ctx, view, con, line); err != nil {
			con.printf("%v\n", err)
		}
	}
	return nil
}

func showQuestion(view *frontend.View, con *console) {
	a := view.Attempt()
	if a == nil {
		return
	}
	q, ok := a.Question()
	if !ok {
		return
	}
	states := a.States()
	cur := a.Current()
	flag := ""
	if cur < len(states) && states[cur].Marked {
		flag = " [marked]"
	}
	con.printf("\nQuestion %d of %d%s  (%s left)\n%s\n", cur+1, a.Len(), flag, session.FormatRemaining(view.Remaining()), q.Text)
	for _, letter := range []string{"A", "B", "C", "D"} {
		mark := " "
		if a.Selected() == letter {
			mark = "*"
		}
		con.printf(" %s %s) %s\n", mark, letter, q.Option(letter))
	}
}

func handleQuizCommand(ctx context.Context, view *frontend.View, con *console, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch cmd := strings.ToLower(fields[0]); cmd {
	case "a", "b", "c", "d":
		return view.Select(strings.ToUpper(cmd))
	case "n":
		return view.Next()
	case "p":
		return view.Previous()
	case "g":
		if len(fields) < 2 {
			return fmt.Errorf("usage: g <question number>")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("usage: g <question number>")
		}
		return view.Goto(n - 1)
	case "m":
		_, err := view.ToggleMark()
		return err
	case "t":
		st, err := view.Stats()
		if err != nil {
			return err
		}
		con.printf("%s left, answered %d, marked %d, unanswered %d\n", session.FormatRemaining(view.Remaining()), st.Answered, st.Marked, st.Unanswered)
		return nil
	case "s":
		if err := view.RequestSubmit(); err != nil {
			return err
		}
		text, _ := con.ask("Type SUBMIT to hand in your answers: ")
		if !frontend.SubmitEnabled(text) {
			view.CancelSubmit()
			con.printf("Submission cancelled.\n")
			return nil
		}
		return view.ConfirmSubmit(ctx, text)
	case "q":
		view.Abandon()
		return nil
	case "h", "?":
		con.printf("%s\n", takeHelp)
		return nil
	}
	return fmt.Errorf("unknown command %q; %s", line, takeHelp)
}
