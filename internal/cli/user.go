package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/bigkaa/repairshop-portal/internal/domain/model"
	"github.com/bigkaa/repairshop-portal/internal/domain/role"
	"github.com/bigkaa/repairshop-portal/internal/guard"
)

// userCommand — действия клиента: автомобили, заявки, отзывы, журнал.
func (a *app) userCommand() *cobra.Command {
	meta := guard.ForRole(role.User)
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Действия клиента",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "vehicles",
		Short: "Список автомобилей",
		Args:  cobra.NoArgs,
		RunE: a.guarded(meta, func(cmd *cobra.Command, _ []string) error {
			if err := a.ws.User.FetchVehicles(cmd.Context()); err != nil {
				return err
			}
			return printYAML(a.out, a.ws.User.Vehicles())
		}),
	})

	var v model.Vehicle
	addVehicle := &cobra.Command{
		Use:   "add-vehicle",
		Short: "Добавить автомобиль",
		Args:  cobra.NoArgs,
		RunE: a.guarded(meta, func(cmd *cobra.Command, _ []string) error {
			created, err := a.ws.User.AddVehicle(cmd.Context(), v)
			if err != nil {
				return err
			}
			return printYAML(a.out, created)
		}),
	}
	addVehicle.Flags().StringVar(&v.LicensePlate, "plate", "", "госномер")
	addVehicle.Flags().StringVar(&v.Brand, "brand", "", "марка")
	addVehicle.Flags().StringVar(&v.Model, "model", "", "модель")
	addVehicle.Flags().IntVar(&v.Year, "year", 0, "год выпуска")
	addVehicle.Flags().StringVar(&v.VIN, "vin", "", "VIN (17 символов)")
	cmd.AddCommand(addVehicle)

	cmd.AddCommand(&cobra.Command{
		Use:   "orders",
		Short: "Мои заявки на ремонт",
		Args:  cobra.NoArgs,
		RunE: a.guarded(meta, func(cmd *cobra.Command, _ []string) error {
			if err := a.ws.User.FetchRepairOrders(cmd.Context()); err != nil {
				return err
			}
			return printYAML(a.out, a.ws.User.RepairOrders())
		}),
	})

	var req model.SubmitRepairRequest
	submit := &cobra.Command{
		Use:   "submit",
		Short: "Подать заявку на ремонт",
		Args:  cobra.NoArgs,
		RunE: a.guarded(meta, func(cmd *cobra.Command, _ []string) error {
			req.Priority = strings.ToUpper(req.Priority)
			o, err := a.ws.User.SubmitRepair(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printYAML(a.out, o)
		}),
	}
	submit.Flags().Int64Var(&req.VehicleID, "vehicle", 0, "id автомобиля")
	submit.Flags().StringVar(&req.RepairType, "type", "", "вид ремонта")
	submit.Flags().StringVar(&req.Issue, "issue", "", "описание неисправности")
	submit.Flags().StringVar(&req.AdditionalInfo, "info", "", "дополнительные сведения")
	submit.Flags().StringVar(&req.Priority, "priority", "", "приоритет (LOW, MEDIUM, HIGH, URGENT)")
	cmd.AddCommand(submit)

	var fb model.FeedbackRequest
	feedback := &cobra.Command{
		Use:   "feedback ORDER_ID",
		Short: "Оставить отзыв о завершённом заказе",
		Args:  cobra.ExactArgs(1),
		RunE: a.guarded(meta, func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			fb.RepairOrderID = id
			if err := a.ws.User.SubmitFeedback(cmd.Context(), fb); err != nil {
				return err
			}
			return printYAML(a.out, map[string]any{"orderId": id, "rating": fb.Rating})
		}),
	}
	feedback.Flags().IntVar(&fb.Rating, "rating", 0, "оценка 1-5")
	feedback.Flags().StringVar(&fb.Content, "content", "", "текст отзыва")
	cmd.AddCommand(feedback)

	cmd.AddCommand(&cobra.Command{
		Use:   "logs",
		Short: "Журнал ремонтов моих автомобилей",
		Args:  cobra.NoArgs,
		RunE: a.guarded(meta, func(cmd *cobra.Command, _ []string) error {
			if err := a.ws.User.FetchRepairLogs(cmd.Context()); err != nil {
				return err
			}
			return printYAML(a.out, a.ws.User.RepairLogs())
		}),
	})

	return cmd
}
