package main

import (
	"fmt"
	"sort"

	"curbfinder/internal/geo"

	"github.com/spf13/cobra"
)

func newBucketsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "buckets [key]",
		Short: "Show index stats, or the curbs stored under one bucket key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				stats := svc.Stats(ctx)
				fmt.Fprintf(out, "precision %d, %d records in %d buckets (largest %d)\n",
					stats.Precision, stats.Records, stats.Buckets, stats.LargestBucket)
				for _, key := range svc.Buckets(ctx) {
					fmt.Fprintf(out, "%s\t%d\n", key, len(svc.Bucket(ctx, key)))
				}
				return nil
			}

			bucket := svc.Bucket(ctx, args[0])
			codes := make([]string, 0, len(bucket))
			for code := range bucket {
				codes = append(codes, code)
			}
			sort.Strings(codes)
			for _, code := range codes {
				fmt.Fprintf(out, "%s\t%d\n", code, bucket[code])
			}
			return nil
		},
	}
}

func newCoverageCmd(a *app) *cobra.Command {
	var (
		radius    float64
		precision int
		merge     bool
	)

	cmd := &cobra.Command{
		Use:   "coverage <geohash>",
		Short: "List the geohash cells covering a radius around a position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if radius == 0 {
				radius = a.cfg.Search.RadiusMeters
			}
			if precision <= 0 {
				precision = a.cfg.Index.Precision
			}

			lat, lon, err := geo.Decode(args[0])
			if err != nil {
				return err
			}
			cells, err := geo.NewCoverageGenerator(a.cfg.Index.MaxCoverageCells).
				Coverage(lat, lon, radius, precision, merge)
			if err != nil {
				return err
			}
			for _, c := range cells {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&radius, "radius", 0, "radius in meters (default search.radius_meters)")
	cmd.Flags().IntVar(&precision, "precision", 0, "cell precision (default index.precision)")
	cmd.Flags().BoolVar(&merge, "merge", false, "merge complete sibling sets into their parent")
	return cmd
}
