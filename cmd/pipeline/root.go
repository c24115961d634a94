package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	// Version of this software, filled in by ldflags
	Version string
	// BuildTime of this software, filled in by ldflags
	BuildTime string
)

const envPrefix = "WORLDSTATS"

func setupVersionBuild() {
	if Version == "" {
		Version = "v0.0.0"
	}
	if BuildTime == "" {
		BuildTime = "not recorded"
	}
}

var subcommandFns = map[string]func(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command{}

// NewRootCommand builds the worldstats command with every registered subcommand
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	setupVersionBuild()
	rc := &cobra.Command{
		Use:   "worldstats",
		Short: "worldstats - population and GDP cleaning and analysis",
		Long: `Downloads the raw population and GDP tables, cleans and joins them
into a versioned, year-partitioned Parquet fact table and computes
the analytical views over it.

Every flag can also be set with a WORLDSTATS_<FLAG> environment variable
or in the YAML file named by --config.

Version: ` + Version + `
Build Time: ` + BuildTime + "\n",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			return setAllConfig(v, cmd.Flags(), envPrefix)
		},
	}
	rc.PersistentFlags().String("config", "", "YAML configuration file")

	names := make([]string, 0, len(subcommandFns))
	for name := range subcommandFns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rc.AddCommand(subcommandFns[name](stdin, stdout, stderr))
	}
	rc.SetIn(stdin)
	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

// setAllConfig takes a FlagSet to be the definition of all configuration
// options, as well as their defaults. It then reads from the command line, the
// environment, and a config file (if specified), and applies the configuration
// in that priority order. Environment variables are the upper-cased flag names
// with dashes replaced by underscores, prefixed with envPrefix and an underscore.
func setAllConfig(v *viper.Viper, flags *pflag.FlagSet, envPrefix string) error {
	if err := v.BindPFlags(flags); err != nil {
		return err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if c := v.GetString("config"); c != "" {
		v.SetConfigFile(c)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading configuration file '%s': %v", c, err)
		}
	}

	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil || f.Changed {
			// flags set on the command line win
			return
		}
		var value string
		if f.Value.Type() == "stringSlice" {
			value = strings.Join(v.GetStringSlice(f.Name), ",")
		} else {
			value = v.GetString(f.Name)
		}
		if err := f.Value.Set(value); err != nil {
			flagErr = fmt.Errorf("invalid value %q for %s: %v", value, f.Name, err)
		}
	})
	return flagErr
}
