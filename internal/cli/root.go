// Package cli implements crmctl, the operator tool that works directly
// against the configured stores.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"spincrm/internal/app"
	"spincrm/internal/config"
)

type options struct {
	configFile string
	v          *viper.Viper
	out        io.Writer
}

// flagKeys maps persistent flags onto the environment keys read by config.
var flagKeys = map[string]string{
	"database-url":     "DATABASE_URL",
	"store-backend":    "STORE_BACKEND",
	"mongodb-uri":      "MONGODB_URI",
	"mongodb-database": "MONGODB_DATABASE",
	"lead-transitions": "LEAD_TRANSITIONS",
	"jwt-secret":       "JWT_SECRET",
}

func NewRootCmd(out io.Writer) *cobra.Command {
	opts := &options{v: viper.New(), out: out}

	cmd := &cobra.Command{
		Use:           "crmctl",
		Short:         "Operator commands for the CRM backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  crmctl migrate
  crmctl user add --email ops@example.com --password s3cretpass --role admin
  crmctl leads export --status accepted --out accepted.csv
`),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.bind(cmd)
		},
	}
	cmd.SetOut(out)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "YAML config file with the same keys as the environment")
	flags.String("database-url", "", "SQL database DSN")
	flags.String("store-backend", "", "client/lead store: sql or mongo")
	flags.String("mongodb-uri", "", "MongoDB connection URI")
	flags.String("mongodb-database", "", "MongoDB database name")
	flags.String("lead-transitions", "", "lead transition policy: strict or open")
	flags.String("jwt-secret", "", "token signing secret")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newUserCmd(opts),
		newProgressCmd(opts),
		newLeadsCmd(opts),
		newTokensCmd(opts),
	)
	return cmd
}

func (o *options) bind(cmd *cobra.Command) error {
	if o.configFile != "" {
		o.v.SetConfigFile(o.configFile)
		o.v.SetConfigType("yaml")
		if err := o.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", o.configFile, err)
		}
	}
	o.v.AutomaticEnv()
	for flag, key := range flagKeys {
		if err := o.v.BindPFlag(key, cmd.Root().PersistentFlags().Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

func (o *options) config() (*config.Config, error) {
	return config.LoadFrom(o.v.GetString)
}

// open loads the configuration and wires the services without a live feed.
func (o *options) open(ctx context.Context) (*app.App, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	return app.Open(ctx, cfg, nil, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
}

func (o *options) printf(format string, args ...any) {
	fmt.Fprintf(o.out, format, args...)
}
