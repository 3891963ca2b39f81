package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shiplabel-dev/shiplabel/internal/client"
	"github.com/shiplabel-dev/shiplabel/internal/models"
	"github.com/shiplabel-dev/shiplabel/internal/router"
	"github.com/shiplabel-dev/shiplabel/internal/validation"
)

// NewOrdersCmd creates the orders command
func NewOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"ls"},
		Short:   "List your shipment orders",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrders(cmd)
		},
	}
	return withRoute(cmd, mainPath(router.PageOrders))
}

func runOrders(cmd *cobra.Command) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	user, err := currentUser(cmd, a)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	orders, err := a.Client.ListOrders(cmd.Context(), user.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch orders: %w", err)
	}

	if len(orders) == 0 {
		fmt.Fprintln(out, "No orders found.")
		fmt.Fprintln(out, "\nCreate one with: shiplabel main order-label --file order.yaml")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NO\tSERVICE\tSENDER\tRECEIVER\tTRACKING #\tADDED")
	fmt.Fprintln(w, "──\t───────\t──────\t────────\t──────────\t─────")
	for i, o := range orders {
		added := ""
		if !o.CreatedAt.IsZero() {
			added = o.CreatedAt.Local().Format("2006-01-02")
		}
		fmt.Fprintf(w, "%d\t%s\t%s (%s)\t%s (%s)\t%s\t%s\n",
			i+1,
			o.ServiceName,
			o.Sender.Name, o.Sender.Company,
			o.Receiver.Name, o.Receiver.Company,
			o.TrackingNumber,
			added,
		)
	}
	return w.Flush()
}

// NewOrderLabelCmd creates the order-label command
func NewOrderLabelCmd() *cobra.Command {
	var file, service string
	var template bool

	cmd := &cobra.Command{
		Use:   "order-label",
		Short: "Submit a shipment order from a YAML or JSON file",
		Long: `Submit a shipment order described by a YAML or JSON file.

Print an empty order to start from with --template:
  shiplabel main order-label --template > order.yaml
  shiplabel main order-label --file order.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if template {
				return printOrderTemplate(cmd)
			}
			if file == "" {
				return fmt.Errorf("--file is required (or use --template to print an empty order)")
			}
			return runOrderLabel(cmd, file, service)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Order file (YAML or JSON)")
	cmd.Flags().StringVar(&service, "service", "", "Carrier service, overrides the file")
	cmd.Flags().BoolVar(&template, "template", false, "Print an empty order as YAML")

	return withRoute(cmd, mainPath(router.PageOrderLabel))
}

func printOrderTemplate(cmd *cobra.Command) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(models.NewShipmentForm()); err != nil {
		return fmt.Errorf("failed to encode template: %w", err)
	}
	return enc.Close()
}

// loadShipmentForm reads an order file. JSON files parse as YAML.
func loadShipmentForm(path string) (models.ShipmentForm, error) {
	form := models.NewShipmentForm()

	data, err := os.ReadFile(path)
	if err != nil {
		return form, fmt.Errorf("failed to read order file: %w", err)
	}
	if err := yaml.Unmarshal(data, &form); err != nil {
		return form, fmt.Errorf("failed to parse order file %s: %w", path, err)
	}
	return form, nil
}

func runOrderLabel(cmd *cobra.Command, file, service string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	user, err := currentUser(cmd, a)
	if err != nil {
		return err
	}

	form, err := loadShipmentForm(file)
	if err != nil {
		return err
	}
	if service != "" {
		form.Package.ServiceType = service
	}

	if err := validation.Shipment(form); err != nil {
		return err
	}

	resp, err := a.Client.CreateShipment(cmd.Context(), form, user.ID)
	if err != nil {
		a.Notifier.Error(client.Message(err))
		return reported(err)
	}
	a.Notifier.Success(resp.Message)
	return nil
}
