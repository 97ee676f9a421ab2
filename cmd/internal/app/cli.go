package app

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	v1 "github.com/jaswanth-exaze/recruitment-project-sub001/shared/contracts/notify/v1"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/apiclient"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/session"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/dashboard"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/realtime"
)

// cli holds state shared by every command of one invocation.
type cli struct {
	cfg Config
	rt  *Runtime

	apiBase  string
	storage  string
	logLevel string
}

// newCLI builds the hiring command tree. Configuration comes from the
// environment; flags override it.
func newCLI() (*cli, *cobra.Command) {
	c := &cli{}

	root := &cobra.Command{
		Use:           "hiring",
		Short:         "Hiring dashboards from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&c.apiBase, "api-base", "", "API base URL (overrides HIRING_API_BASE)")
	root.PersistentFlags().StringVar(&c.storage, "storage", "", "credential storage: file, memory or postgres")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.profileCmd(),
		c.jobsCmd(),
		c.jobCmd(),
		c.interviewsCmd(),
		c.feedbackCmd(),
		c.overviewCmd(),
		c.watchCmd(),
		c.getCmd(),
	)
	return c, root
}

func (c *cli) close() {
	if c.rt != nil {
		c.rt.Close()
	}
}

func (c *cli) setup(cmd *cobra.Command) error {
	c.cfg = LoadConfig()
	if c.apiBase != "" {
		c.cfg.APIBase = ResolveAPIBase(c.apiBase, "", "")
	}
	if c.storage != "" {
		c.cfg.Storage = strings.ToLower(c.storage)
	}
	if c.logLevel != "" {
		c.cfg.LogLevel = c.logLevel
	}

	log := NewLogger(cmd.ErrOrStderr(), c.cfg.LogLevel, c.cfg.LogFormat)
	errOut := cmd.ErrOrStderr()
	nav := session.NavigatorFunc(func(reason string) {
		fmt.Fprintf(errOut, "signed out: %s\nrun `hiring login` to continue\n", reason)
	})

	rt, err := NewRuntime(cmd.Context(), c.cfg, log, nav)
	if err != nil {
		return err
	}
	c.rt = rt
	return nil
}

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if msg, ok := c.rt.Auth.LoginNotice(); ok {
				fmt.Fprintln(cmd.ErrOrStderr(), msg)
			}
			if password == "" {
				password = os.Getenv("HIRING_PASSWORD")
			}
			if password == "" {
				p, err := prompt(cmd.InOrStdin(), cmd.ErrOrStderr(), "password: ")
				if err != nil {
					return err
				}
				password = p
			}
			res, err := c.rt.Auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			out := map[string]any{"role": res.Role}
			if res.User != nil {
				out["user"] = res.User
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&email, "email", os.Getenv("HIRING_EMAIL"), "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (or HIRING_PASSWORD; prompted when empty)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.rt.Auth.Logout(cmd.Context())
			return nil
		},
	}
}

func (c *cli) profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := c.rt.Auth.Profile(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
}

func (c *cli) jobsCmd() *cobra.Command {
	var f dashboard.JobFilter
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List jobs (hiring manager, HR, admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := dashboard.RequireRole(cmd.Context(), c.rt.Creds, dashboard.RoleHiringManager, dashboard.RoleHR, dashboard.RoleAdmin); err != nil {
				return err
			}
			jobs, err := c.rt.Manager.Jobs(cmd.Context(), f)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), jobs)
		},
	}
	cmd.Flags().StringVar(&f.Status, "status", "", "filter by status")
	cmd.Flags().StringVar(&f.Search, "search", "", "filter by title")
	cmd.Flags().IntVar(&f.Page, "page", 0, "page number")
	return cmd
}

func (c *cli) jobCmd() *cobra.Command {
	var (
		withApps  bool
		setStatus string
	)
	cmd := &cobra.Command{
		Use:   "job <id>",
		Short: "Show one job, its applications, or change its status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if setStatus != "" {
				job, err := c.rt.Manager.UpdateJobStatus(ctx, args[0], setStatus)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), job)
			}

			job, err := c.rt.Manager.Job(ctx, args[0])
			if err != nil {
				return err
			}
			if !withApps {
				return printJSON(cmd.OutOrStdout(), job)
			}
			apps, err := c.rt.Manager.Applications(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"job": job, "applications": apps})
		},
	}
	cmd.Flags().BoolVar(&withApps, "applications", false, "include applications")
	cmd.Flags().StringVar(&setStatus, "set-status", "", "move the job to draft, open, paused or closed")
	return cmd
}

func (c *cli) interviewsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "interviews [id]",
		Short: "List assigned interviews, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				iv, err := c.rt.Interviewer.Interview(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), iv)
			}
			ivs, err := c.rt.Interviewer.Interviews(cmd.Context(), !all)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ivs)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include completed interviews")
	return cmd
}

func (c *cli) feedbackCmd() *cobra.Command {
	var fb dashboard.Feedback
	cmd := &cobra.Command{
		Use:   "feedback <interview-id>",
		Short: "Submit a scorecard for an interview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.rt.Interviewer.SubmitFeedback(cmd.Context(), args[0], fb); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "feedback recorded")
			return nil
		},
	}
	cmd.Flags().IntVar(&fb.Rating, "rating", 0, "1 to 5")
	cmd.Flags().StringVar(&fb.Recommendation, "recommendation", "", "strong_hire, hire, no_hire or strong_no_hire")
	cmd.Flags().StringVar(&fb.Notes, "notes", "", "free-form notes")
	return cmd
}

func (c *cli) overviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Load the landing view for the signed-in role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := c.rt.Overview.Load(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), snap)
		},
	}
}

func (c *cli) watchCmd() *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream notifications until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if metricsAddr != "" {
				stop, err := c.serveMetrics(metricsAddr)
				if err != nil {
					return err
				}
				defer stop()
			}

			out := cmd.OutOrStdout()
			err := c.rt.Realtime.Subscribe(ctx, func(_ context.Context, n v1.NotificationPayload) error {
				c.rt.Metrics.Notification(n.Kind)
				return printJSON(out, n)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if errors.Is(err, realtime.ErrUnauthorized) {
				return errors.New("not signed in")
			}
			return err
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")
	return cmd
}

func (c *cli) serveMetrics(addr string) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.rt.Metrics.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	c.rt.log.Info("metrics.start", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

func (c *cli) getCmd() *cobra.Command {
	var query []string
	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "GET any API path through the authenticated client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := map[string]any{}
			for _, kv := range query {
				k, v, ok := strings.Cut(kv, "=")
				if !ok || k == "" {
					return fmt.Errorf("bad --query %q, want key=value", kv)
				}
				q[k] = v
			}
			raw, err := c.rt.API.Get(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}
			if raw == nil {
				return nil
			}
			return printJSON(cmd.OutOrStdout(), raw)
		},
	}
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "query parameter key=value (repeatable)")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func prompt(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ExitCode maps an error to a process exit status: 2 for a missing session,
// 1 otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case apiclient.IsUnauthorized(err), errors.Is(err, dashboard.ErrRoleDenied):
		return 2
	default:
		return 1
	}
}
