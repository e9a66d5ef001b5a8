package commands

import (
	"fmt"
	"net"
	"text/tabwriter"

	"github.com/arturoeanton/redcross-volunteers/internal/adapter/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// BlocklistCmd manages the IP blocklist from the command line.
func BlocklistCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blocklist",
		Short: "Manage blocked IP addresses",
	}

	var reason string
	add := &cobra.Command{
		Use:   "add <ip>",
		Short: "Block an IP address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ip := net.ParseIP(args[0])
			if ip == nil {
				return fmt.Errorf("invalid ip address %q", args[0])
			}
			return app.withBlocklist(cmd, func(bl *store.CachedBlocklist) error {
				b, err := bl.BlockIP(cmd.Context(), ip.String(), reason)
				if err != nil {
					return err
				}
				app.Logger.Info("ip blocked", zap.String("ip", b.IP))
				fmt.Fprintf(cmd.OutOrStdout(), "blocked %s\n", b.IP)
				return nil
			})
		},
	}
	add.Flags().StringVar(&reason, "reason", "", "Why the address is blocked")

	remove := &cobra.Command{
		Use:   "remove <ip>",
		Short: "Unblock an IP address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ip := net.ParseIP(args[0])
			if ip == nil {
				return fmt.Errorf("invalid ip address %q", args[0])
			}
			return app.withBlocklist(cmd, func(bl *store.CachedBlocklist) error {
				if err := bl.UnblockIP(cmd.Context(), ip.String()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "unblocked %s\n", ip)
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List blocked IP addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withBlocklist(cmd, func(bl *store.CachedBlocklist) error {
				ips, err := bl.ListBlockedIPs(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "IP\tSINCE\tREASON")
				for _, b := range ips {
					fmt.Fprintf(w, "%s\t%s\t%s\n", b.IP, b.CreatedAt.Format("2006-01-02 15:04"), b.Reason)
				}
				return w.Flush()
			})
		},
	}

	cmd.AddCommand(add, remove, list)
	return cmd
}

func (app *AppContext) withBlocklist(cmd *cobra.Command, fn func(bl *store.CachedBlocklist) error) error {
	pg, err := app.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer pg.Close()

	rdb, err := app.openRedis(cmd.Context())
	if err != nil {
		app.Logger.Warn("redis unavailable, cache will not be invalidated", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	return fn(store.NewCachedBlocklist(pg, rdb, app.Cfg.BlocklistCacheTTL, app.Logger))
}
