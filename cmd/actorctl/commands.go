package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-actor-client/actor"
	"github.com/jrsteele09/go-actor-client/alerts"
	"github.com/jrsteele09/go-actor-client/identities"
	"github.com/jrsteele09/go-actor-client/internal/app"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

type appFactory func(ctx context.Context, notifier alerts.Notifier) (*app.App, error)

// cli carries the state shared by the commands of one invocation.
type cli struct {
	newApp   appFactory
	as       string
	app      *app.App
	recorder *alerts.Recorder
}

func newRootCmd(factory appFactory) *cobra.Command {
	c := &cli{newApp: factory, recorder: &alerts.Recorder{}}

	root := &cobra.Command{
		Use:          "actorctl",
		Short:        "Talk to the tours actor as one of your identities",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			figure.NewFigure("actorctl", "cybermedium", true).Print()
			fmt.Fprintln(cmd.OutOrStdout())
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&c.as, "as", "", "principal (or unique prefix) of the identity to act as")

	for _, sub := range []*cobra.Command{
		c.identitiesCmd(),
		c.whoamiCmd(),
		c.profileCmd(),
		c.registerCmd(),
		c.payCmd(),
		c.aboutCmd(),
		c.toursCmd(),
		c.loginURLCmd(),
		c.loginCmd(),
	} {
		run := sub.RunE
		sub.PreRunE = c.setup
		sub.RunE = func(cmd *cobra.Command, args []string) error {
			defer c.teardown(cmd)
			return run(cmd, args)
		}
		root.AddCommand(sub)
	}
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	a, err := c.newApp(cmd.Context(), c.recorder)
	if err != nil {
		return err
	}
	c.app = a
	if err := a.Start(cmd.Context()); err != nil {
		return err
	}

	if c.as == "" {
		return nil
	}
	id, err := c.resolve(c.as)
	if err != nil {
		return err
	}
	if err := a.Select(id.Principal()); err != nil {
		return err
	}
	a.Wait()
	return nil
}

func (c *cli) teardown(cmd *cobra.Command) {
	if c.app != nil {
		c.app.Close()
	}
	printAlerts(cmd.ErrOrStderr(), c.recorder.Drain())
}

// resolve finds the identity whose principal equals or starts with ref.
func (c *cli) resolve(ref string) (*identities.Identity, error) {
	var match *identities.Identity
	for _, id := range c.app.Identities.List() {
		if id.Principal() == ref {
			return id, nil
		}
		if strings.HasPrefix(id.Principal(), ref) {
			if match != nil {
				return nil, fmt.Errorf("%q matches more than one identity", ref)
			}
			match = id
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%q: %w", ref, identities.ErrIdentityNotFound)
	}
	return match, nil
}

func (c *cli) identitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "identities",
		Short: "List the registered identities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, id := range c.app.Identities.List() {
				marker := " "
				if c.app.Session.IsCurrent(id) {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\t%s\n", marker, id.DisplayName(), id.Principal())
			}
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			current, ok := c.app.Session.Current()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "anonymous")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), current.Principal())
			return nil
		},
	}
}

func (c *cli) profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the profile of the current identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Selecting the identity in setup already fetched the profile.
			profile, ok := c.app.Profiles.Profile()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no profile")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "username: %s\nbio: %s\n", profile.Username, profile.Bio)
			return nil
		},
	}
}

func (c *cli) registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <username> <bio>",
		Short: "Create a profile for the current identity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := c.app.Profiles.Register(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s\n", profile.Username)
			return nil
		},
	}
}

func (c *cli) payCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <card-number> <amount>",
		Short: "Pay for a tour",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := actor.ParseNat(args[1])
			if err != nil {
				return err
			}
			outcome, err := c.app.Payments.PayNat(cmd.Context(), args[0], amount)
			fmt.Fprintln(cmd.OutOrStdout(), outcome)
			return err
		},
	}
}

func (c *cli) aboutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "about",
		Short: "Show the about us text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.app.Content.AboutUs(cmd.Context()))
			return nil
		},
	}
}

func (c *cli) toursCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "tours",
		Short: "List tours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var tours []actor.Tour
			if category != "" {
				tours = c.app.Content.ToursByCategory(cmd.Context(), category)
			} else {
				tours = c.app.View().Tours
			}
			for _, t := range tours {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d spots\n", t.ID, t.Category, t.Name, t.AvailableSpots)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list tours in this category")
	return cmd
}

func (c *cli) loginURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login-url <provider>",
		Short: "Print the sign-in URL of a login provider with fresh state and PKCE verifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state := uuid.New().String()
			verifier := oauth2.GenerateVerifier()
			u, err := c.app.LoginURL(args[0], state, oauth2.S256ChallengeFromVerifier(verifier))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "url: %s\nstate: %s\nverifier: %s\n", u, state, verifier)
			return nil
		},
	}
}

func (c *cli) loginCmd() *cobra.Command {
	var code, verifier, idToken string
	cmd := &cobra.Command{
		Use:   "login <provider>",
		Short: "Sign in with a login provider and make the identity current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				id  *identities.Identity
				err error
			)
			switch {
			case idToken != "":
				id, err = c.app.LoginWithIDToken(cmd.Context(), args[0], idToken)
			case code != "":
				id, err = c.app.Login(cmd.Context(), args[0], code, verifier)
			default:
				return errors.New("one of --code or --id-token is required")
			}
			if err != nil {
				return err
			}
			c.app.Wait()
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id.DisplayName(), id.Principal())
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "authorization code returned to the redirect URL")
	cmd.Flags().StringVar(&verifier, "verifier", "", "PKCE verifier printed by login-url")
	cmd.Flags().StringVar(&idToken, "id-token", "", "ID token obtained out of band")
	return cmd
}

func printAlerts(w io.Writer, list []alerts.Alert) {
	for _, a := range list {
		fmt.Fprintf(w, "[%s] %s\n", a.Level, a.Message)
	}
}
