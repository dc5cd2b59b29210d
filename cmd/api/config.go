package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind           string
	port           int
	roundDuration  time.Duration
	graceDelay     time.Duration
	maxPlayers     int
	sessionTimeout time.Duration
	reconnectGrace time.Duration
	verbose        bool
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.roundDuration < time.Second {
		return fmt.Errorf("round duration too short: %v", c.roundDuration)
	}
	if c.maxPlayers < 2 {
		return fmt.Errorf("max players must be at least 2: %d", c.maxPlayers)
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("QUIZRUSH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "quizrush",
		Short:         "Session authority for a turn-based multiplayer trivia game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: QUIZRUSH_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 4000, "port to listen on (env: QUIZRUSH_PORT)")
	fs.DurationVar(&cfg.roundDuration, "round-duration", 60*time.Second, "countdown for each round (env: QUIZRUSH_ROUND_DURATION)")
	fs.DurationVar(&cfg.graceDelay, "grace-delay", 3*time.Second, "pause between round end and the next round (env: QUIZRUSH_GRACE_DELAY)")
	fs.IntVar(&cfg.maxPlayers, "max-players", 8, "maximum players per session (env: QUIZRUSH_MAX_PLAYERS)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 30*time.Minute, "time before idle sessions are ended (env: QUIZRUSH_SESSION_TIMEOUT)")
	fs.DurationVar(&cfg.reconnectGrace, "reconnect-grace", 2*time.Minute, "time a disconnected player keeps their seat (env: QUIZRUSH_RECONNECT_GRACE)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "enable debug logging (env: QUIZRUSH_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	return cmd
}
