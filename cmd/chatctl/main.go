// Command chatctl seeds API users and imports CSV transcripts without going
// through the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/chatinsight/core/internal/app"
	"github.com/chatinsight/core/internal/config"
	"github.com/chatinsight/core/internal/models"
	"github.com/chatinsight/core/internal/modules/importer"
	"github.com/chatinsight/core/internal/modules/user"
	"github.com/chatinsight/core/internal/store"
)

const usage = `usage: chatctl [--config path] <command> [flags]

commands:
  create-user --email addr [--name name] [--admin]
  import --file path.csv
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, openStore); err != nil {
		fmt.Fprintln(os.Stderr, "chatctl:", err)
		os.Exit(1)
	}
}

type storeOpener func(ctx context.Context, cfg *config.AppConfig) (store.Store, error)

func openStore(ctx context.Context, cfg *config.AppConfig) (store.Store, error) {
	return app.OpenStore(ctx, cfg)
}

func run(ctx context.Context, args []string, out io.Writer, open storeOpener) error {
	global := flag.NewFlagSet("chatctl", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	configPath := global.String("config", config.DefaultConfigPath, "Path to YAML config file")
	if err := global.Parse(args); err != nil {
		return fmt.Errorf("%w\n%s", err, usage)
	}
	rest := global.Args()
	if len(rest) == 0 {
		return errors.New(usage)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger, err := stderrLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	switch rest[0] {
	case "create-user":
		return createUser(ctx, cfg, rest[1:], out, open)
	case "import":
		return importCSV(ctx, cfg, rest[1:], out, open, logger)
	default:
		return fmt.Errorf("unknown command %q\n%s", rest[0], usage)
	}
}

func createUser(ctx context.Context, cfg *config.AppConfig, args []string, out io.Writer, open storeOpener) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "user email")
	name := fs.String("name", "", "display name")
	admin := fs.Bool("admin", false, "grant the admin role")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	role := models.RoleUser
	if *admin {
		role = models.RoleAdmin
	}
	u, err := user.NewService(st, st, nil, 0).CreateUser(ctx, *email, *name, role)
	if err != nil {
		return err
	}
	return writeJSON(out, map[string]string{
		"id":      u.ID,
		"email":   u.Email,
		"role":    string(u.Role),
		"api_key": u.APIKey,
	})
}

func importCSV(ctx context.Context, cfg *config.AppConfig, args []string, out io.Writer, open storeOpener, logger *zap.Logger) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	path := fs.String("file", "", "CSV file to import")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("import: --file is required")
	}

	st, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	stats, err := importer.NewService(st, logger.Named("import")).ImportFile(ctx, *path)
	if err != nil {
		return err
	}
	return writeJSON(out, stats)
}

// stderrLogger keeps stdout free for command output.
func stderrLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
