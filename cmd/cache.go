package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"content-cache/core/modcache"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	jsonOutput bool
	listQuery  string
	listLimit  int
)

// cacheCmd groups the content cache commands
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the content cache",
}

var cacheUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Evaluate the cache index and update or rebuild it",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadCache(cmd)
		if err != nil {
			return err
		}
		defer rt.close()

		rt.logg.Info("Content cache ready", zap.Int("entries", rt.system.Store().Len()), zap.String("index", rt.system.IndexPath()))
		return nil
	},
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached entries, optionally fuzzy searching by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadCache(cmd)
		if err != nil {
			return err
		}
		defer rt.close()

		return printEntries(rt.system.Store().Search(listQuery, listLimit))
	},
}

var cacheFindCmd = &cobra.Command{
	Use:   "find <filename>",
	Short: "Find the entry for a file name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadCache(cmd)
		if err != nil {
			return err
		}
		defer rt.close()

		e := rt.system.Store().Find(args[0])
		if e == nil {
			return fmt.Errorf("%s: %w", args[0], modcache.ErrNotFound)
		}
		return printJSON(e)
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show <number>",
	Short: "Show one entry by number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid entry number %q", args[0])
		}

		rt, err := loadCache(cmd)
		if err != nil {
			return err
		}
		defer rt.close()

		e := rt.system.Store().ByNumber(n)
		if e == nil {
			return fmt.Errorf("entry %d: %w", n, modcache.ErrNotFound)
		}
		return printJSON(e)
	},
}

var cacheSkinsCmd = &cobra.Command{
	Use:   "skins <guid>",
	Short: "List the skins usable on a vehicle guid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadCache(cmd)
		if err != nil {
			return err
		}
		defer rt.close()

		return printEntries(rt.system.Store().UsableSkins(args[0]))
	},
}

var cacheLoadCmd = &cobra.Command{
	Use:   "load <filename>",
	Short: "Materialize the bundle of an entry as a resource group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadCache(cmd)
		if err != nil {
			return err
		}
		defer rt.close()

		group, ok := rt.system.CheckResourceLoaded(args[0])
		if group == "" {
			return fmt.Errorf("%s: %w", args[0], modcache.ErrNotFound)
		}
		fmt.Printf("%s -> %s (resolved: %t)\n", rt.system.Store().PrettyName(args[0]), group, ok)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the cache index and every side-cache thumbnail",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer rt.close()

		rt.system.ClearCache(cmd.Context())
		rt.logg.Info("Content cache cleared", zap.String("dir", rt.cfg.Cache.CacheDir))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheUpdateCmd, cacheListCmd, cacheFindCmd, cacheShowCmd, cacheSkinsCmd, cacheLoadCmd, cacheClearCmd)

	cacheCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print entry lists as JSON")
	cacheListCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Fuzzy search by display name")
	cacheListCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of entries (0 for all)")
}

// loadCache bootstraps and initialises the cache. Empty content is fatal.
func loadCache(cmd *cobra.Command) (*runtime, error) {
	rt, err := bootstrap(cmd)
	if err != nil {
		return nil, err
	}
	if err := rt.system.Init(cmd.Context()); err != nil {
		if errors.Is(err, modcache.ErrNoContent) {
			rt.logg.Fatal("No usable content found", zap.Strings("roots", rt.cfg.Cache.ContentRoots))
		}
		rt.close()
		return nil, err
	}
	return rt, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func printEntries(entries []*modcache.Entry) error {
	if jsonOutput {
		return printJSON(entries)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tFILE\tCATEGORY\tBUNDLE")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.Number, e.DisplayName, e.Fpath+e.Fname, e.CategoryName, e.BundlePath)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d entries\n", len(entries))
	return nil
}
