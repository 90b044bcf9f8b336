package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bigkaa/repairshop-portal/internal/domain/model"
	"github.com/bigkaa/repairshop-portal/internal/domain/order"
	"github.com/bigkaa/repairshop-portal/internal/domain/role"
	"github.com/bigkaa/repairshop-portal/internal/export"
	"github.com/bigkaa/repairshop-portal/internal/guard"
	"github.com/bigkaa/repairshop-portal/internal/ui/i18n"
)

// adminCommand — управление заказами, мастерами и расчётами.
func (a *app) adminCommand() *cobra.Command {
	meta := guard.ForRole(role.Admin)
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Действия администратора",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "users",
			Short: "Клиенты мастерской",
			Args:  cobra.NoArgs,
			RunE: a.guarded(meta, func(cmd *cobra.Command, _ []string) error {
				if err := a.ws.Admin.FetchUsers(cmd.Context()); err != nil {
					return err
				}
				return printYAML(a.out, a.ws.Admin.Users())
			}),
		},
		&cobra.Command{
			Use:   "workers",
			Short: "Мастера",
			Args:  cobra.NoArgs,
			RunE: a.guarded(meta, func(cmd *cobra.Command, _ []string) error {
				if err := a.ws.Admin.FetchWorkers(cmd.Context()); err != nil {
					return err
				}
				return printYAML(a.out, a.ws.Admin.Workers())
			}),
		},
		&cobra.Command{
			Use:   "orders",
			Short: "Все заказы на ремонт",
			Args:  cobra.NoArgs,
			RunE: a.guarded(meta, func(cmd *cobra.Command, _ []string) error {
				if err := a.ws.Admin.FetchRepairOrders(cmd.Context()); err != nil {
					return err
				}
				return printYAML(a.out, a.ws.Admin.RepairOrders())
			}),
		},
	)

	var assign model.AssignOrderRequest
	assignCmd := &cobra.Command{
		Use:   "assign ORDER_ID",
		Short: "Назначить заказ мастеру",
		Args:  cobra.ExactArgs(1),
		RunE: a.guarded(meta, func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			assign.Priority = strings.ToUpper(assign.Priority)
			if err := a.ws.Admin.AssignOrder(cmd.Context(), id, assign); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Заказ %d назначен мастеру %d\n", id, assign.WorkerID)
			return nil
		}),
	}
	assignCmd.Flags().Int64Var(&assign.WorkerID, "worker", 0, "id мастера")
	assignCmd.Flags().StringVar(&assign.Priority, "priority", "", "приоритет (LOW, MEDIUM, HIGH, URGENT)")
	assignCmd.Flags().Float64Var(&assign.EstimatedHours, "hours", 0, "оценка трудоёмкости в часах")
	assignCmd.Flags().StringVar(&assign.Notes, "notes", "", "примечания")
	cmd.AddCommand(assignCmd)

	var target, reason string
	rollback := &cobra.Command{
		Use:   "rollback ORDER_ID",
		Short: "Откатить заказ в указанный статус",
		Args:  cobra.ExactArgs(1),
		RunE: a.guarded(meta, func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status, err := order.ParseStatus(target)
			if err != nil {
				return err
			}
			res, err := a.ws.Admin.RollbackOrder(cmd.Context(), id, model.RollbackRequest{
				Reason:           reason,
				RollbackToStatus: status,
			})
			if err != nil {
				return err
			}
			return printYAML(a.out, res)
		}),
	}
	rollback.Flags().StringVar(&target, "status", "", "целевой статус")
	rollback.Flags().StringVar(&reason, "reason", "", "причина отката")
	cmd.AddCommand(rollback)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete ORDER_ID...",
		Short: "Удалить заказы пакетом",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.guarded(meta, func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			res, err := a.ws.Admin.BatchDeleteOrders(cmd.Context(), ids)
			if err != nil {
				return err
			}
			return printYAML(a.out, res)
		}),
	})

	var settle model.MonthlySettlementRequest
	settleCmd := &cobra.Command{
		Use:   "settle",
		Short: "Запустить месячный расчёт мастеров",
		Args:  cobra.NoArgs,
		RunE: a.guarded(meta, func(cmd *cobra.Command, _ []string) error {
			res, err := a.ws.Admin.RunMonthlySettlement(cmd.Context(), settle)
			if err != nil {
				return err
			}
			return printYAML(a.out, res)
		}),
	}
	settleCmd.Flags().IntVar(&settle.Year, "year", 0, "год")
	settleCmd.Flags().IntVar(&settle.Month, "month", 0, "месяц (1-12)")
	settleCmd.Flags().BoolVar(&settle.SettleIncomplete, "incomplete", false, "учитывать незавершённые заказы")
	cmd.AddCommand(settleCmd)

	var filter model.SettlementFilter
	var xlsx string
	settlements := &cobra.Command{
		Use:   "settlements",
		Short: "Расчёты мастеров, при --xlsx выгрузка в Excel",
		Args:  cobra.NoArgs,
		RunE: a.guarded(meta, func(cmd *cobra.Command, _ []string) error {
			if err := a.ws.Admin.FetchWorkerSettlements(cmd.Context(), filter); err != nil {
				return err
			}
			items := a.ws.Admin.Settlements()
			if xlsx == "" {
				return printYAML(a.out, items)
			}
			return writeWorkbook(xlsx, items, a.translator())
		}),
	}
	settlements.Flags().IntVar(&filter.Year, "year", 0, "год")
	settlements.Flags().IntVar(&filter.Month, "month", 0, "месяц")
	settlements.Flags().Int64Var(&filter.WorkerID, "worker", 0, "id мастера")
	settlements.Flags().StringVar(&filter.Status, "status", "", "статус расчёта")
	settlements.Flags().StringVar(&xlsx, "xlsx", "", "путь файла выгрузки .xlsx")
	cmd.AddCommand(settlements)

	var audit model.AuditLogFilter
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Журнал аудита",
		Args:  cobra.NoArgs,
		RunE: a.guarded(meta, func(cmd *cobra.Command, _ []string) error {
			if err := a.ws.Admin.FetchAuditLogs(cmd.Context(), audit); err != nil {
				return err
			}
			return printYAML(a.out, a.ws.Admin.AuditLogs())
		}),
	}
	auditCmd.Flags().StringVar(&audit.EntityType, "entity", "", "тип сущности")
	auditCmd.Flags().Int64Var(&audit.EntityID, "entity-id", 0, "id сущности")
	auditCmd.Flags().StringVar(&audit.Action, "action", "", "действие")
	auditCmd.Flags().StringVar(&audit.Username, "user", "", "пользователь")
	auditCmd.Flags().IntVar(&audit.Page, "page", 0, "страница (с нуля)")
	auditCmd.Flags().IntVar(&audit.Size, "size", 20, "размер страницы")
	cmd.AddCommand(auditCmd)

	return cmd
}

// writeWorkbook сохраняет расчёты в файл .xlsx.
func writeWorkbook(path string, items []model.MonthlySettlement, translate func(string) string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("создание файла выгрузки: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("закрытие файла выгрузки: %w", cerr)
		}
	}()
	return export.WriteSettlements(f, items, translate)
}

// translator возвращает перевод заголовков выгрузки на язык --lang из
// встроенных каталогов портала. При ошибке заголовки остаются ключами.
func (a *app) translator() func(string) string {
	langs, err := i18n.NewLanguages([]string{a.lang})
	if err != nil {
		a.logger.Warn("Язык выгрузки не поддерживается", slog.String("error", err.Error()))
		return nil
	}
	bundle := i18n.Init(a.logger)
	if err := i18n.LoadFromEmbedFS(bundle, langs, a.logger); err != nil {
		a.logger.Warn("Каталоги переводов не загружены", slog.String("error", err.Error()))
		return nil
	}
	return func(key string) string { return bundle.Translate(a.lang, key) }
}
