package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/logger"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/service"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/utils"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Preview the installments and interest of a note",
	Long: `Split a note into installments and price them offline, using operation
type parameters given on the command line instead of the database.

Rate types charge taxa% per 30 days on each installment. Flat-fee types
(--valor-fixo greater than zero) spread the fee evenly, optionally
multiplied by --peso.`,
	Example: `  # 3 installments at 3% a month counted from the note date
  fidcctl schedule --valor 9000 --prazos 30/60/90 --data-operacao 2024-01-10 \
    --data-nf 2024-01-05 --taxa 3 --prazo-sacado

  # Flat fee weighted by cargo
  fidcctl schedule --valor 3000 --prazos 30 --data-operacao 2024-01-10 \
    --data-nf 2024-01-05 --valor-fixo 50 --peso-fixo --peso 2.5 --json`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().String("valor", "", "Note value")
	scheduleCmd.Flags().String("prazos", "", "Day offsets separated by '/', e.g. 30/60/90")
	scheduleCmd.Flags().String("data-operacao", "", "Operation date (YYYY-MM-DD)")
	scheduleCmd.Flags().String("data-nf", "", "Note issue date (YYYY-MM-DD)")
	scheduleCmd.Flags().String("taxa", "0", "Monthly interest rate in percent")
	scheduleCmd.Flags().String("valor-fixo", "0", "Flat fee; when positive the rate is ignored")
	scheduleCmd.Flags().Bool("prazo-sacado", false, "Count interest days from the note date offsets")
	scheduleCmd.Flags().Bool("peso-fixo", false, "Multiply the flat fee by --peso")
	scheduleCmd.Flags().String("peso", "0", "Weight applied to the flat fee")
	scheduleCmd.Flags().Bool("json", false, "Output as JSON format")

	_ = scheduleCmd.MarkFlagRequired("valor")
	_ = scheduleCmd.MarkFlagRequired("prazos")
	_ = scheduleCmd.MarkFlagRequired("data-operacao")
	_ = scheduleCmd.MarkFlagRequired("data-nf")
}

func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	raw, _ := cmd.Flags().GetString(name)
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %w", name, err)
	}
	return value, nil
}

func dateFlag(cmd *cobra.Command, name string) (utils.Date, error) {
	raw, _ := cmd.Flags().GetString(name)
	value, err := utils.ParseDate(raw)
	if err != nil {
		return utils.Date{}, fmt.Errorf("--%s: %w", name, err)
	}
	return value, nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("schedule")

	noteValue, err := decimalFlag(cmd, "valor")
	if err != nil {
		return err
	}
	rate, err := decimalFlag(cmd, "taxa")
	if err != nil {
		return err
	}
	fixedFee, err := decimalFlag(cmd, "valor-fixo")
	if err != nil {
		return err
	}
	weight, err := decimalFlag(cmd, "peso")
	if err != nil {
		return err
	}
	operationDate, err := dateFlag(cmd, "data-operacao")
	if err != nil {
		return err
	}
	noteDate, err := dateFlag(cmd, "data-nf")
	if err != nil {
		return err
	}

	rawOffsets, _ := cmd.Flags().GetString("prazos")
	offsets, err := service.ParseOffsets(rawOffsets)
	if err != nil {
		return err
	}

	useDebtorTerm, _ := cmd.Flags().GetBool("prazo-sacado")
	useWeight, _ := cmd.Flags().GetBool("peso-fixo")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	schedule, err := service.ComputeSchedule(service.ScheduleInput{
		NoteValue:     noteValue,
		OperationDate: operationDate,
		NoteDate:      noteDate,
		Offsets:       offsets,
		Weight:        weight,
		Type: &domain.OperationType{
			Name:                "cli",
			InterestRate:        rate,
			FixedFee:            fixedFee,
			UseDebtorTerm:       useDebtorTerm,
			UseWeightOnFixedFee: useWeight,
		},
	})
	if err != nil {
		return err
	}

	log.Debug().
		Int("installments", len(schedule.Installments)).
		Str("total_interest", schedule.TotalInterest.StringFixed(2)).
		Msg("Schedule computed")

	out := cmd.OutOrStdout()
	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(service.ToScheduleResponse(schedule))
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tVencimento\tValor\tJuros\t")
	for _, installment := range schedule.Installments {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n",
			installment.Number,
			installment.DueDate,
			utils.ToCurrency(installment.FaceValue).StringFixed(2),
			utils.ToCurrency(installment.Interest).StringFixed(2))
	}
	fmt.Fprintf(tw, "\tTotal juros\t\t%s\t\n", utils.ToCurrency(schedule.TotalInterest).StringFixed(2))
	fmt.Fprintf(tw, "\tValor liquido\t\t%s\t\n", utils.ToCurrency(schedule.NetValue).StringFixed(2))
	return tw.Flush()
}
