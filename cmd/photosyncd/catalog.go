package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/snorochevskiy/photo-sync-tst/pkg/catalog"
	"github.com/snorochevskiy/photo-sync-tst/pkg/storage"
	"github.com/snorochevskiy/photo-sync-tst/pkg/types"
)

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(checksumCmd)
}

// openCatalog opens the catalog under the global --data-dir flag. The daemon
// must not be running against the same directory; BoltDB holds an exclusive
// file lock.
func openCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	store, err := storage.NewBoltStore(dataDir)
	if err != nil {
		return nil, err
	}
	return catalog.New(store), nil
}

var addCmd = &cobra.Command{
	Use:   "add DATE OBJECT_ID...",
	Short: "Record objects in the local catalog",
	Long: `Record one or more objects under a day.

Object ids are 64-character hex SHA-256 hashes of the object bytes.

Examples:
  photosyncd add 2020-11-15 9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := types.ParseDate(args[0])
		if err != nil {
			return err
		}

		cat, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer cat.Close()

		for _, arg := range args[1:] {
			id, err := types.ParseObjectID(arg)
			if err != nil {
				return err
			}
			if err := cat.AddObject(d, id); err != nil {
				return err
			}
		}
		fmt.Printf("Recorded %d object(s) under %s\n", len(args)-1, d)
		return nil
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls [DATE]",
	Short: "List catalog contents",
	Long: `Without arguments, list every day in the catalog with its object
count. With a DATE argument, list the object ids recorded under that day.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer cat.Close()

		if len(args) == 1 {
			d, err := types.ParseDate(args[0])
			if err != nil {
				return err
			}
			ids, err := cat.DayObjects(d)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		}

		years, err := cat.ListYears()
		if err != nil {
			return err
		}
		for _, year := range years {
			months, err := cat.ListMonths(year)
			if err != nil {
				return err
			}
			for _, month := range months {
				days, err := cat.ListDays(year, month)
				if err != nil {
					return err
				}
				for _, day := range days {
					d := types.Date{Year: year, Month: month, Day: day}
					ids, err := cat.DayObjects(d)
					if err != nil {
						return err
					}
					fmt.Printf("%s  %d object(s)\n", d, len(ids))
				}
			}
		}
		return nil
	},
}

var checksumCmd = &cobra.Command{
	Use:   "checksum YYYY[-MM[-DD]]",
	Short: "Print a stored checksum",
	Long: `Print the stored checksum at year, month, or day granularity.

Examples:
  photosyncd checksum 2020
  photosyncd checksum 2020-11
  photosyncd checksum 2020-11-15`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer cat.Close()

		var cs types.Checksum
		switch strings.Count(args[0], "-") {
		case 0:
			var year int
			if _, err := fmt.Sscanf(args[0], "%d", &year); err != nil {
				return fmt.Errorf("%w: malformed year %q", types.ErrInvalidArgument, args[0])
			}
			cs, err = cat.YearChecksum(year)
		case 1:
			var year, month int
			if _, err := fmt.Sscanf(args[0], "%d-%d", &year, &month); err != nil {
				return fmt.Errorf("%w: malformed month %q", types.ErrInvalidArgument, args[0])
			}
			cs, err = cat.MonthChecksum(year, month)
		default:
			var d types.Date
			d, err = types.ParseDate(args[0])
			if err != nil {
				return err
			}
			cs, err = cat.DayChecksum(d)
		}
		if err != nil {
			return err
		}
		fmt.Println(cs)
		return nil
	},
}
