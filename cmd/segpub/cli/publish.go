package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	zippkg "segpub/internal/archive/zip"
	"segpub/internal/publisher"
	"segpub/internal/segment"
)

// identityFlags names one interval of one data source. Multiple segment
// dirs on the command line are shards of that interval: dir i gets
// partition firstPartition+i.
type identityFlags struct {
	dataSource     string
	start          string
	end            string
	version        string
	firstPartition int
}

func (f identityFlags) records(n int) ([]segment.Record, error) {
	if f.dataSource == "" {
		return nil, fmt.Errorf("--data-source is required")
	}
	if f.version == "" {
		return nil, fmt.Errorf("--segment-version is required")
	}
	start, err := time.Parse(time.RFC3339, f.start)
	if err != nil {
		return nil, fmt.Errorf("bad --start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, f.end)
	if err != nil {
		return nil, fmt.Errorf("bad --end: %w", err)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("--end %s is not after --start %s", f.end, f.start)
	}

	recs := make([]segment.Record, n)
	for i := range recs {
		recs[i] = segment.Record{
			DataSource:   f.dataSource,
			Interval:     segment.Interval{Start: start, End: end},
			Version:      f.version,
			PartitionNum: f.firstPartition + i,
		}
	}
	return recs, nil
}

// NewPublishCommand returns the "publish" command.
func NewPublishCommand(logger *slog.Logger) *cobra.Command {
	var (
		idf         identityFlags
		store       string
		storeParams []string
		container   string
		account     string
		maxTries    uint64
		replace     bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "publish DIR...",
		Short: "Publish one or more segment directories",
		Long: "Package each segment directory into an archive plus descriptor and " +
			"upload both to the configured blob store. Multiple directories are " +
			"treated as consecutive partitions of the same interval and published " +
			"concurrently.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := idf.records(len(args))
			if err != nil {
				return err
			}

			factory, ok := uploaderFactories()[store]
			if !ok {
				return fmt.Errorf("unknown --store %q, want one of %v", store, storeNames())
			}
			params, err := parseStoreParams(storeParams)
			if err != nil {
				return err
			}
			uploader, err := factory(params, logger)
			if err != nil {
				return err
			}

			pub, err := publisher.New(uploader, zippkg.New("", logger), publisher.Config{
				Container: container,
				Account:   account,
				StoreType: store,
				MaxTries:  maxTries,
			}, logger)
			if err != nil {
				return err
			}

			results := make([]segment.Record, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(concurrency)
			for i, dir := range args {
				i, dir := i, dir
				g.Go(func() error {
					out, err := pub.Push(ctx, dir, recs[i], replace)
					if err != nil {
						return err
					}
					results[i] = out
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			for _, rec := range results {
				if err := enc.Encode(rec); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&idf.dataSource, "data-source", "", "data source the segments belong to")
	cmd.Flags().StringVar(&idf.start, "start", "", "interval start (RFC 3339, inclusive)")
	cmd.Flags().StringVar(&idf.end, "end", "", "interval end (RFC 3339, exclusive)")
	cmd.Flags().StringVar(&idf.version, "segment-version", "", "segment version string")
	cmd.Flags().IntVar(&idf.firstPartition, "partition", 0, "partition number of the first directory")
	cmd.Flags().StringVar(&store, "store", "azure", "blob store backend: azure, gcs or s3")
	cmd.Flags().StringArrayVar(&storeParams, "store-param", nil, "backend parameter key=value (repeatable)")
	cmd.Flags().StringVar(&container, "container", "", "target container or bucket")
	cmd.Flags().StringVar(&account, "account", "", "storage account name")
	cmd.Flags().Uint64Var(&maxTries, "max-tries", publisher.DefaultMaxTries, "upload attempts per segment")
	cmd.Flags().BoolVar(&replace, "replace", false, "overwrite already-published segments")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "segments published in parallel")

	return cmd
}
