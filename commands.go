package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tournevent/spring/internal/config"
	"github.com/tournevent/spring/internal/telemetry"
	"github.com/tournevent/spring/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

var (
	createFiles   []string
	createCarrier string

	labelOutput  string
	labelCarrier string
)

var createCmd = &cobra.Command{
	Use:   "create -f order.yaml [-f ...]",
	Short: "Create shipments from order files and print their tracking numbers",
	Args:  cobra.NoArgs,
	RunE:  runCreate,
}

var labelCmd = &cobra.Command{
	Use:   "label <tracking-number>",
	Short: "Download the label for a shipment",
	Args:  cobra.ExactArgs(1),
	RunE:  runLabel,
}

func init() {
	createCmd.Flags().StringSliceVarP(&createFiles, "file", "f", nil, "order file (YAML or JSON), repeatable")
	createCmd.Flags().StringVar(&createCarrier, "carrier", defaultCarrier, "carrier to ship with")
	createCmd.MarkFlagRequired("file")

	labelCmd.Flags().StringVarP(&labelOutput, "output", "o", "", "output file (default <tracking-number>.<ext>, - for stdout)")
	labelCmd.Flags().StringVar(&labelCarrier, "carrier", defaultCarrier, "carrier the shipment was created with")

	rootCmd.AddCommand(createCmd, labelCmd)
}

// cliRegistry wires the carriers for one-shot commands. Logs go to stderr.
func cliRegistry() (*config.Config, *shipper.Registry, *otelzap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := telemetry.NewCLILogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}

	registry, err := initShipperRegistry(cfg, logger, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, registry, logger, nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	var orders []shipper.Order
	var sources []string
	for _, path := range createFiles {
		fileOrders, err := readOrderFile(path)
		if err != nil {
			return err
		}
		for i, order := range fileOrders {
			orders = append(orders, order)
			sources = append(sources, orderSource(path, i, len(fileOrders)))
		}
	}

	cfg, registry, logger, err := cliRegistry()
	if err != nil {
		return err
	}
	defer logger.Sync()

	results, err := registry.CreateShipments(cmd.Context(), createCarrier, orders, cfg.BatchConcurrency)
	if err != nil {
		return err
	}

	return printResults(cmd.OutOrStdout(), sources, results)
}

func orderSource(path string, index, total int) string {
	if total == 1 {
		return path
	}
	return fmt.Sprintf("%s[%d]", path, index)
}

// printResults writes one line per order and fails when any order failed.
// Failures show the user-safe message only.
func printResults(w io.Writer, sources []string, results []shipper.ShipmentResult) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "%s\tERROR\t%s\n", sources[r.Index], shipper.PublicMessage(r.Err))
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", sources[r.Index], r.TrackingNumber)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d shipments failed", failed, len(results))
	}
	return nil
}

func runLabel(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	_, registry, logger, err := cliRegistry()
	if err != nil {
		return err
	}
	defer logger.Sync()

	carrier, err := registry.Get(labelCarrier)
	if err != nil {
		return err
	}

	label, err := carrier.FetchLabel(cmd.Context(), args[0])
	if err != nil {
		// Details were logged by the client.
		return errors.New(shipper.PublicMessage(err))
	}

	return writeLabel(cmd.OutOrStdout(), label, labelOutput)
}

func writeLabel(stdout io.Writer, label *shipper.Label, output string) error {
	switch output {
	case "-":
		_, err := stdout.Write(label.Data)
		return err
	case "":
		output = label.TrackingNumber + "." + label.Format.Extension()
	}

	if err := os.WriteFile(output, label.Data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s\n", output)
	return nil
}
