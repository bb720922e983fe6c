package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/abgdnv/catalog/internal/catalog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ErrProductNotFound is returned by the get command for an unknown id.
var ErrProductNotFound = errors.New("product not found")

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, opts, func(ctx context.Context, svc *catalog.Service) error {
				products, err := svc.ListProducts(ctx)
				if err != nil {
					return err
				}
				return write(cmd.OutOrStdout(), output, products)
			})
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseInt(args[0], "id")
			if err != nil {
				return err
			}
			return withService(cmd, opts, func(ctx context.Context, svc *catalog.Service) error {
				p, err := svc.GetProduct(ctx, id)
				if err != nil {
					return err
				}
				if p == nil {
					return fmt.Errorf("%w: %d", ErrProductNotFound, id)
				}
				return write(cmd.OutOrStdout(), output, p)
			})
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "add --file <product.json|product.yaml>",
		Short: "Add one product described by a JSON or YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var m catalog.Mapping
			if err := readFile(file, &m); err != nil {
				return err
			}
			return withService(cmd, opts, func(ctx context.Context, svc *catalog.Service) error {
				if err := svc.AddProduct(ctx, m); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added product %v\n", m[catalog.KeyID])
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "product file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <products.json|products.yaml>",
		Short: "Add every product of a JSON or YAML list, or none if any is invalid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ms []catalog.Mapping
			if err := readFile(args[0], &ms); err != nil {
				return err
			}
			return withService(cmd, opts, func(ctx context.Context, svc *catalog.Service) error {
				if err := svc.AddProducts(ctx, ms); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d products\n", len(ms))
				return nil
			})
		},
	}
}

func newSetQtyCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-qty <id> <qty>",
		Short: "Set the quantity of a product",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseInt(args[0], "id")
			if err != nil {
				return err
			}
			qty, err := parseInt(args[1], "qty")
			if err != nil {
				return err
			}
			return withService(cmd, opts, func(ctx context.Context, svc *catalog.Service) error {
				return svc.UpdateQty(ctx, id, qty)
			})
		},
	}
	// a negative qty such as -1 is an argument, not a shorthand flag
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func addOutputFlag(cmd *cobra.Command, output *string) {
	cmd.Flags().StringVarP(output, "output", "o", outputJSON, "output format: json or yaml")
}

func parseInt(s, name string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", name, s)
	}
	return v, nil
}

// readFile decodes a JSON or YAML file into dst. JSON is read by the YAML decoder,
// which keeps integers as int rather than float64.
func readFile(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func write(w io.Writer, format string, v any) error {
	switch format {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return fmt.Errorf("unknown output format %q", format)
}
