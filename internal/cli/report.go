package cli

import (
	"fmt"
	"io"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/app"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/service"

	"github.com/spf13/cobra"
)

func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print sales, credit and stock summaries",
	}
	cmd.AddCommand(newSalesReportCommand(rootOpts))
	cmd.AddCommand(newCreditReportCommand(rootOpts))
	cmd.AddCommand(newInventoryReportCommand(rootOpts))
	cmd.AddCommand(newProductsReportCommand(rootOpts))
	return cmd
}

// dateRange is the --from/--to pair shared by the dated reports.
type dateRange struct{ from, to string }

func (r *dateRange) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&r.to, "to", "", "last day, YYYY-MM-DD")
}

func newSalesReportCommand(opts *RootOptions) *cobra.Command {
	var r dateRange
	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Sales totals by day and payment mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(app.Options{})
			if err != nil {
				return err
			}
			defer closeApp(a)

			from, to, err := service.DayTimes(r.from, r.to, a.Location)
			if err != nil {
				return WrapExitError(ExitCommandError, "date range", err)
			}
			rep, err := a.Reports.SalesReport(cmd.Context(), from, to)
			if err != nil {
				return WrapExitError(ExitFailure, "sales report", err)
			}
			return opts.printer(cmd.OutOrStdout()).print(rep, func(w io.Writer) {
				fmt.Fprintf(w, "Bills: %d  Sales: %s  Average: %s\n",
					rep.TotalBills, rep.TotalSales.StringFixed(2), rep.AverageBill.StringFixed(2))
				for _, d := range rep.DailyBreakdown {
					fmt.Fprintf(w, "  %s  %4d  %12s\n", d.Date, d.Count, d.Total.StringFixed(2))
				}
				for _, m := range rep.ByPaymentMode {
					fmt.Fprintf(w, "  %-10s %4d  %12s\n", m.Mode, m.Count, m.Total.StringFixed(2))
				}
			})
		},
	}
	r.bind(cmd)
	return cmd
}

func newCreditReportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "credit",
		Short: "Customers with an outstanding balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(app.Options{})
			if err != nil {
				return err
			}
			defer closeApp(a)

			rep, err := a.Reports.CreditReport(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "credit report", err)
			}
			return opts.printer(cmd.OutOrStdout()).print(rep, func(w io.Writer) {
				for _, c := range rep.Customers {
					fmt.Fprintf(w, "%-30s %12s\n", c.CustomerName, c.Outstanding.StringFixed(2))
				}
				fmt.Fprintf(w, "%-30s %12s\n", "Total outstanding", rep.TotalOutstanding.StringFixed(2))
			})
		},
	}
}

func newInventoryReportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "Stock value and low-stock products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(app.Options{})
			if err != nil {
				return err
			}
			defer closeApp(a)

			rep, err := a.Reports.InventoryReport(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "inventory report", err)
			}
			return opts.printer(cmd.OutOrStdout()).print(rep, func(w io.Writer) {
				fmt.Fprintf(w, "Products: %d  Stock value: %s  Cost value: %s\n",
					rep.TotalProducts, rep.TotalStockValue.StringFixed(2), rep.TotalCostValue.StringFixed(2))
				fmt.Fprintf(w, "Low stock: %d  Out of stock: %d\n", rep.LowStockCount, rep.OutOfStockCount)
				for _, p := range rep.LowStock {
					fmt.Fprintf(w, "  %-30s %s %s\n", p.Name, p.CurrentStock.String(), p.Unit)
				}
			})
		},
	}
}

func newProductsReportCommand(opts *RootOptions) *cobra.Command {
	var r dateRange
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Products ranked by revenue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(app.Options{})
			if err != nil {
				return err
			}
			defer closeApp(a)

			from, to, err := service.DayTimes(r.from, r.to, a.Location)
			if err != nil {
				return WrapExitError(ExitCommandError, "date range", err)
			}
			rows, err := a.Reports.ProductPerformance(cmd.Context(), from, to)
			if err != nil {
				return WrapExitError(ExitFailure, "product report", err)
			}
			return opts.printer(cmd.OutOrStdout()).print(rows, func(w io.Writer) {
				for _, p := range rows {
					fmt.Fprintf(w, "%-30s %10s %12s\n", p.ProductName, p.QuantitySold.String(), p.Revenue.StringFixed(2))
				}
			})
		},
	}
	r.bind(cmd)
	return cmd
}
