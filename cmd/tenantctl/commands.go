package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/neomorfeo/barberiq/internal/app"
	"github.com/neomorfeo/barberiq/internal/config"
	"github.com/neomorfeo/barberiq/internal/domain"
)

// cli carries the flag values and the environment they open.
type cli struct {
	cfgPath   string
	apiURL    string
	cachePath string
	env       *env
}

// run executes one command line and always releases what it opened.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	c := &cli{}
	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	defer func() {
		if c.env != nil {
			err = errors.Join(err, c.env.close(context.WithoutCancel(ctx)))
		}
	}()
	return root.ExecuteContext(ctx)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "tenantctl",
		Short:         "Resolve barbershops and browse their records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			c.env, err = newEnv(c.cfgPath, c.apiURL, c.cachePath, cmd.ErrOrStderr())
			return err
		},
	}
	root.PersistentFlags().StringVar(&c.cfgPath, "config", config.DefaultConfigFile, "YAML configuration file")
	root.PersistentFlags().StringVar(&c.apiURL, "api-url", "", "barberiq API base URL (overrides config)")
	root.PersistentFlags().StringVar(&c.cachePath, "cache-path", "", "tenant cache file (overrides config)")

	envFn := func() *env { return c.env }
	root.AddCommand(
		newResolveCmd(envFn),
		newCheckCmd(envFn),
		newSlugifyCmd(),
		newRouteCmd(envFn),
		newListCmd(envFn),
		newCacheCmd(envFn),
	)
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --- resolve ---

func newResolveCmd(envFn func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <slug>",
		Short: "Resolve a barbershop slug, using the tenant cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := envFn().openSession(cmd.Context())
			if err != nil {
				return err
			}
			tenant, err := s.Context.LoadTenant(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), tenant)
		},
	}
}

// --- check ---

func newCheckCmd(envFn func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "check <slug>",
		Short: "Check whether a slug can be registered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := envFn().openSession(cmd.Context())
			if err != nil {
				return err
			}
			res, err := s.Resolver.CheckSlugAvailability(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
}

// --- slugify ---

func newSlugifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slugify <name>...",
		Short: "Suggest a slug for a barbershop name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := domain.GenerateSlugFromName(strings.Join(args, " "))
			if v := domain.ValidateSlugFormat(slug); !v.Valid {
				return fmt.Errorf("no usable slug for %q: %s", strings.Join(args, " "), v.Message)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), slug)
			return err
		},
	}
}

// --- route ---

func newRouteCmd(envFn func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "route <path>",
		Short: "Show which barbershop a URL path selects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := envFn().openSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.Context.SyncRoute(cmd.Context(), args[0]); err != nil {
				return err
			}
			st := s.Context.State()
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"status":   st.Status,
				"slug":     st.Slug,
				"tenantId": st.TenantID,
			})
		},
	}
}

// --- list ---

func newListCmd(envFn func() *env) *cobra.Command {
	var (
		slug     string
		status   string
		barberID string
		date     string
		active   bool
	)

	cmd := &cobra.Command{
		Use:       "list <collection>",
		Short:     "List a barbershop's appointments, barbers, comments or services",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: domain.Collections,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := envFn().openSession(ctx)
			if err != nil {
				return err
			}
			if _, err := s.Context.LoadTenant(ctx, slug); err != nil {
				return err
			}

			filter := domain.Filter{}
			if status != "" {
				filter["status"] = status
			}
			if barberID != "" {
				filter["barberId"] = barberID
			}
			if date != "" {
				if _, err := time.Parse(time.DateOnly, date); err != nil {
					return fmt.Errorf("--date: %w", err)
				}
				filter["date"] = date
			}
			if cmd.Flags().Changed("active") {
				filter["active"] = strconv.FormatBool(active)
			}

			items, err := fetch(cmd, s, args[0], filter)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().StringVar(&slug, "slug", "", "barbershop slug (required)")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&barberID, "barber", "", "filter by barber id")
	cmd.Flags().StringVar(&date, "date", "", "filter appointments by day (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&active, "active", false, "filter barbers or services by active flag")
	_ = cmd.MarkFlagRequired("slug")
	return cmd
}

func fetch(cmd *cobra.Command, s *app.Session, collection string, filter domain.Filter) (any, error) {
	ctx := cmd.Context()
	switch collection {
	case domain.CollectionAppointments:
		return s.Appointments.Fetch(ctx, filter)
	case domain.CollectionBarbers:
		return s.Barbers.Fetch(ctx, filter)
	case domain.CollectionComments:
		return s.Comments.Fetch(ctx, filter)
	case domain.CollectionServices:
		return s.Services.Fetch(ctx, filter)
	}
	return nil, fmt.Errorf("unknown collection %q (want one of %s)", collection, strings.Join(domain.Collections, ", "))
}

// --- cache ---

func newCacheCmd(envFn func() *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Maintain the local tenant cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clean",
		Short: "Remove expired and unreadable tenant entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache, err := envFn().tenantCache()
			if err != nil {
				return err
			}
			n := cache.CleanExpired()
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired entries\n", n)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every tenant entry and the current-tenant keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache, err := envFn().tenantCache()
			if err != nil {
				return err
			}
			cache.Clear()
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "tenant cache cleared")
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "current",
		Short: "Show the last barbershop a session bound",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache, err := envFn().tenantCache()
			if err != nil {
				return err
			}
			id, _ := cache.CurrentTenantID()
			slug, _ := cache.CurrentSlug()
			return writeJSON(cmd.OutOrStdout(), map[string]string{"tenantId": id, "slug": slug})
		},
	})
	return cmd
}
