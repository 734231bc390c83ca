package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/dshills/inspect/internal/cache"
	"github.com/dshills/inspect/internal/config"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the model response cache",
}

var flagExpiredOnly bool

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear cached model responses",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		c, err := cache.New(true, cfg.Cache.Dir, cfg.Cache.TTLSeconds, 0)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		if flagExpiredOnly {
			n, err := c.Prune()
			if err != nil {
				return fmt.Errorf("pruning cache: %w", err)
			}
			fmt.Fprintf(os.Stdout, "Removed %d expired entries.\n", n)
			return nil
		}
		if err := c.Clear(); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Fprintln(os.Stdout, "Cache cleared.")
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		c, err := cache.New(cfg.CacheEnabled(), cfg.Cache.Dir, cfg.Cache.TTLSeconds, 0)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		if !c.Enabled() {
			fmt.Fprintln(os.Stdout, "Cache is disabled.")
			return nil
		}
		stats, err := c.GetStats()
		if err != nil {
			return fmt.Errorf("reading cache stats: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Directory: %s\n", c.Dir())
		fmt.Fprintf(os.Stdout, "Entries:   %d\n", stats.Entries)
		fmt.Fprintf(os.Stdout, "Expired:   %d\n", stats.Expired)
		fmt.Fprintf(os.Stdout, "Size:      %d bytes\n", stats.TotalBytes)
		fmt.Fprintf(os.Stdout, "TTL:       %s\n", time.Duration(cfg.Cache.TTLSeconds)*time.Second)
		return nil
	},
}

func init() {
	cacheClearCmd.Flags().BoolVar(&flagExpiredOnly, "expired", false, "Only remove expired entries")
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheShowCmd)
}
