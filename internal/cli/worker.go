package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bigkaa/repairshop-portal/internal/domain/model"
	"github.com/bigkaa/repairshop-portal/internal/domain/role"
	"github.com/bigkaa/repairshop-portal/internal/guard"
)

// workerEarnings — вывод команды worker earnings.
type workerEarnings struct {
	Earnings    float64                   `json:"earnings"`
	Detailed    *model.Earning            `json:"detailed,omitempty"`
	Performance *model.WorkerPerformance  `json:"performance,omitempty"`
	Settlements []model.MonthlySettlement `json:"settlements"`
}

// workerCommand — действия мастера над назначенными заказами.
func (a *app) workerCommand() *cobra.Command {
	meta := guard.ForRole(role.Worker)
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Действия мастера",
	}

	var processed bool
	orders := &cobra.Command{
		Use:   "orders",
		Short: "Назначенные (или обработанные) заказы",
		Args:  cobra.NoArgs,
		RunE: a.guarded(meta, func(cmd *cobra.Command, _ []string) error {
			if processed {
				if err := a.ws.Worker.FetchProcessedOrders(cmd.Context()); err != nil {
					return err
				}
				return printYAML(a.out, a.ws.Worker.ProcessedOrders())
			}
			if err := a.ws.Worker.FetchAssignedOrders(cmd.Context()); err != nil {
				return err
			}
			return printYAML(a.out, a.ws.Worker.AssignedOrders())
		}),
	}
	orders.Flags().BoolVar(&processed, "processed", false, "показать обработанные заказы")
	cmd.AddCommand(orders)

	cmd.AddCommand(
		a.workerTransition(meta, "accept", "Принять назначенный заказ", func(ctx context.Context, id int64) error {
			return a.ws.Worker.AcceptOrder(ctx, id)
		}),
		a.workerTransition(meta, "start", "Начать ремонт", func(ctx context.Context, id int64) error {
			return a.ws.Worker.StartOrder(ctx, id)
		}),
	)

	var reason string
	reject := a.workerTransition(meta, "reject", "Отказаться от заказа", func(ctx context.Context, id int64) error {
		return a.ws.Worker.RejectOrder(ctx, id, reason)
	})
	reject.Flags().StringVar(&reason, "reason", "", "причина отказа")
	cmd.AddCommand(reject)

	var done model.CompleteOrderRequest
	complete := a.workerTransition(meta, "complete", "Завершить ремонт", func(ctx context.Context, id int64) error {
		return a.ws.Worker.CompleteOrder(ctx, id, done)
	})
	complete.Flags().Float64Var(&done.LaborHours, "hours", 0, "затраченные часы")
	complete.Flags().StringVar(&done.Description, "description", "", "описание выполненных работ")
	complete.Flags().StringVar(&done.Suggestion, "suggestion", "", "рекомендации клиенту")
	cmd.AddCommand(complete)

	var mat model.MaterialRequest
	material := &cobra.Command{
		Use:   "material ORDER_ID",
		Short: "Добавить материал к заказу",
		Args:  cobra.ExactArgs(1),
		RunE: a.guarded(meta, func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			mat.OrderID = id
			m, err := a.ws.Worker.AddMaterial(cmd.Context(), mat)
			if err != nil {
				return err
			}
			return printYAML(a.out, m)
		}),
	}
	material.Flags().StringVar(&mat.Name, "name", "", "наименование")
	material.Flags().IntVar(&mat.Quantity, "quantity", 1, "количество")
	material.Flags().Float64Var(&mat.Price, "price", 0, "цена за единицу")
	cmd.AddCommand(material)

	cmd.AddCommand(&cobra.Command{
		Use:   "earnings",
		Short: "Заработок, показатели и расчёты",
		Args:  cobra.NoArgs,
		RunE: a.guarded(meta, func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			w := a.ws.Worker
			for _, fetch := range []func(context.Context) error{
				w.FetchEarnings, w.FetchDetailedEarnings, w.FetchPerformance, w.FetchSettlements,
			} {
				if err := fetch(ctx); err != nil {
					return err
				}
			}
			return printYAML(a.out, workerEarnings{
				Earnings:    w.Earnings(),
				Detailed:    w.DetailedEarnings(),
				Performance: w.Performance(),
				Settlements: w.Settlements(),
			})
		}),
	})

	return cmd
}

// workerTransition — команда перехода статуса заказа с id в аргументе.
func (a *app) workerTransition(meta guard.Meta, use, short string, action func(ctx context.Context, id int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ORDER_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: a.guarded(meta, func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := action(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Заказ %d: %s выполнено\n", id, use)
			return nil
		}),
	}
}
