// Package cmd implements the identityctl commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/pilab-dev/shadow-identity/config"
	"github.com/pilab-dev/shadow-identity/docstore"
	"github.com/pilab-dev/shadow-identity/identity"
	"github.com/pilab-dev/shadow-identity/internal/audit"
	"github.com/pilab-dev/shadow-identity/log"
	"github.com/pilab-dev/shadow-identity/memstore"
	"github.com/pilab-dev/shadow-identity/metrics"
	"github.com/pilab-dev/shadow-identity/mongodb"
	"github.com/pilab-dev/shadow-identity/tracing"
)

const appName = "identityctl"

// environment is what every command runs against. It is built by the root
// command's PersistentPreRunE and torn down by its PersistentPostRunE.
type environment struct {
	cfg        *config.Config
	logger     log.Logger
	users      *identity.UserStore[string]
	roles      *identity.RoleStore[string]
	normalizer identity.Normalizer
	registry   *prometheus.Registry
	audit      *audit.Logger
	client     *mongodb.Client
	tracer     *sdktrace.TracerProvider
}

// The in-memory backend lives as long as the process.
var memory struct {
	once         sync.Once
	users, roles *memstore.Collection
}

func memoryCollections() (docstore.Collection, docstore.Collection) {
	memory.once.Do(func() {
		memory.users = memstore.New(memstore.WithUnique("normalized_user_name", "normalized_email"))
		memory.roles = memstore.New(memstore.WithUnique("normalized_name"))
	})
	return memory.users, memory.roles
}

type rootFlags struct {
	configFile string
	memory     bool
	trace      bool
	audit      bool
}

// NewRootCommand builds the identityctl command tree.
func NewRootCommand() *cobra.Command {
	var (
		flags rootFlags
		env   = &environment{}
	)

	root := &cobra.Command{
		Use:           appName,
		Short:         "identityctl manages identity users and roles stored in MongoDB",
		Long:          `A command-line interface for the shadow-identity user and role stores: users, roles, claims, logins and two-factor tokens.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return env.open(cmd.Context(), flags)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return env.close(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&flags.configFile, "config", "",
		"config file (default is identity.yaml in ., /etc/shadow-identity or $HOME/.shadow-identity)")
	root.PersistentFlags().BoolVar(&flags.memory, "memory", false, "use a process-local in-memory store instead of MongoDB")
	root.PersistentFlags().BoolVar(&flags.trace, "trace", false, "export spans to stderr")
	root.PersistentFlags().BoolVar(&flags.audit, "audit", false, "write an audit record per command to stderr")

	root.AddCommand(
		newUserCommand(env),
		newRoleCommand(env),
		newCodesCommand(env),
		newAuthenticatorCommand(env),
		newResetCommand(env),
	)
	auditLeaves(env, root)
	return root
}

// auditLeaves wraps every runnable command so its outcome is audited. The
// target is the first argument, a user or role name.
func auditLeaves(env *environment, c *cobra.Command) {
	for _, sub := range c.Commands() {
		auditLeaves(env, sub)
	}
	run := c.RunE
	if run == nil {
		return
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		target := ""
		if len(args) > 0 {
			target = args[0]
		}
		env.audit.Log(cmd.CommandPath(), target, err)
		return err
	}
}

func (e *environment) open(ctx context.Context, flags rootFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		return err
	}
	e.cfg = cfg
	e.logger = log.NewZerologAdapter(log.ParseLevel(cfg.LogLevel), cfg.LogPretty).
		With(log.Fields{"app": appName})
	e.normalizer = identity.UpperInvariantNormalizer{}
	if flags.audit {
		e.audit = audit.New(os.Stderr, appName)
	}

	if flags.trace {
		tp, err := tracing.InitTracerProvider(cfg.OtelServiceName, os.Stderr)
		if err != nil {
			e.logger.Error(ctx, "Failed to initialize TracerProvider", err)
			return err
		}
		e.tracer = tp
	}

	var users, roles docstore.Collection
	if flags.memory {
		users, roles = memoryCollections()
		e.logger.Debug(ctx, "Using in-memory store")
	} else {
		client, err := mongodb.Connect(ctx, mongodb.ClientConfig{
			URI:            cfg.MongoURI,
			Database:       cfg.MongoDBName,
			ConnectTimeout: cfg.ConnectTimeout,
			Logger:         e.logger,
		})
		if err != nil {
			return err
		}
		e.client = client
		usersColl := client.Collection(cfg.UsersCollection)
		rolesColl := client.Collection(cfg.RolesCollection)
		if err := mongodb.EnsureIndexes(ctx, usersColl.Mongo(), rolesColl.Mongo(), e.logger); err != nil {
			return err
		}
		users, roles = usersColl, rolesColl
	}

	e.registry = prometheus.NewRegistry()
	opts := []identity.Option{
		identity.WithLogger(e.logger),
		identity.WithMetrics(metrics.NewRecorder(e.registry)),
		identity.WithRoleCache(cfg.RoleCacheTTL),
	}
	e.users = identity.NewUserStore[string](users, roles, opts...)
	e.roles = identity.NewRoleStore[string](roles, opts...)
	return nil
}

func (e *environment) close(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	e.logWriteCounts(ctx)

	var errs []error
	if e.client != nil {
		errs = append(errs, e.client.Close(ctx))
		e.client = nil
	}
	if e.tracer != nil {
		errs = append(errs, e.tracer.Shutdown(context.Background()))
		e.tracer = nil
	}
	return errors.Join(errs...)
}

// logWriteCounts reports the store counters of this run at debug level.
func (e *environment) logWriteCounts(ctx context.Context) {
	if e.registry == nil {
		return
	}
	families, err := e.registry.Gather()
	if err != nil {
		e.logger.Warn(ctx, "Failed to gather store metrics", log.Fields{"error": err.Error()})
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fields := log.Fields{"metric": mf.GetName(), "value": m.GetCounter().GetValue()}
			for _, lp := range m.GetLabel() {
				fields[lp.GetName()] = lp.GetValue()
			}
			e.logger.Debug(ctx, "Store writes", fields)
		}
	}
}
