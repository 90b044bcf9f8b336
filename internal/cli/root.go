// Пакет cli — команды repairctl: клиент мастерской в терминале.
// Команды работают с теми же сессией и хранилищами, что и портал;
// сессия хранится в YAML-файле и восстанавливается при каждом запуске.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bigkaa/repairshop-portal/internal/apiclient"
	"github.com/bigkaa/repairshop-portal/internal/config"
	"github.com/bigkaa/repairshop-portal/internal/domain/role"
	"github.com/bigkaa/repairshop-portal/internal/guard"
	"github.com/bigkaa/repairshop-portal/internal/session"
	"github.com/bigkaa/repairshop-portal/internal/ui/workspace"
)

// Значения по умолчанию.
const (
	defaultTimeout     = 30 * time.Second
	defaultSessionFile = ".repairctl/session.yaml"
	workspaceID        = "repairctl"
)

// ErrAccessDenied — команда требует входа под другой ролью.
var ErrAccessDenied = errors.New("доступ запрещён")

// app — состояние одного запуска repairctl.
type app struct {
	backend     string
	sessionFile string
	logLevel    string
	lang        string
	timeout     time.Duration

	out     io.Writer
	logger  *slog.Logger
	storage *session.FileStorage
	ws      *workspace.Workspace
}

// NewRootCommand собирает дерево команд repairctl. Результаты пишутся
// в out, логи уходят в stderr.
func NewRootCommand(out io.Writer) *cobra.Command {
	a := &app{out: out}

	cmd := &cobra.Command{
		Use:           "repairctl",
		Short:         "Клиент ремонтной мастерской",
		Long:          "repairctl выполняет действия клиента, мастера и администратора\nмастерской через REST backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.ws != nil {
				a.ws.Close()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.backend, "backend", os.Getenv("RP_BACKEND_URL"), "URL REST backend (RP_BACKEND_URL)")
	flags.StringVar(&a.sessionFile, "session-file", defaultSessionPath(), "файл сохранённой сессии")
	flags.StringVar(&a.logLevel, "log-level", "warn", "уровень логов (debug, info, warn, error)")
	flags.DurationVar(&a.timeout, "timeout", defaultTimeout, "таймаут запросов к backend")
	flags.StringVar(&a.lang, "lang", "ru", "язык заголовков выгрузки (en, ru, zh)")

	cmd.AddCommand(
		a.loginCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.registerCommand(),
		a.userCommand(),
		a.workerCommand(),
		a.adminCommand(),
		&cobra.Command{
			Use:   "version",
			Short: "Версия repairctl",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(a.out, "repairctl %s\n", config.Version)
			},
		},
	)
	return cmd
}

// defaultSessionPath — $HOME/.repairctl/session.yaml.
func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultSessionFile
	}
	return filepath.Join(home, defaultSessionFile)
}

// open настраивает логгер, собирает рабочее пространство и восстанавливает
// сессию из файла. Каждый запуск получает свой request id.
func (a *app) open(cmd *cobra.Command) error {
	level, err := config.ParseLogLevel(a.logLevel)
	if err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	a.logger = config.NewLogger(level, "text")

	if cmd.Name() == "version" {
		return nil
	}
	if a.backend == "" {
		return errors.New("не задан URL backend: --backend или RP_BACKEND_URL")
	}

	a.storage = session.NewFileStorage(a.sessionFile)
	build := workspace.NewBuilder(a.backend, &http.Client{Timeout: a.timeout}, a.storage, a.logger)
	a.ws = build(workspaceID)

	ctx := apiclient.WithRequestID(cmd.Context(), uuid.NewString())
	cmd.SetContext(ctx)
	a.ws.Session.Restore(ctx)
	return nil
}

// guarded оборачивает команду проверкой доступа: та же таблица решений,
// что и у маршрутов портала.
func (a *app) guarded(meta guard.Meta, run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if d := guard.Check(meta, a.ws.Session); !d.Allow {
			if meta.Role != role.None {
				return fmt.Errorf("%w: требуется вход под ролью %s (repairctl login --role %s)",
					ErrAccessDenied, meta.Role, meta.Role)
			}
			return fmt.Errorf("%w: требуется вход (repairctl login)", ErrAccessDenied)
		}
		return run(cmd, args)
	}
}
