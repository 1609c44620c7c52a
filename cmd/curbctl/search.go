package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"curbfinder/internal/domain/entities"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		radius  float64
		limit   int
		updates []string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "search <geohash>",
		Short: "Rank the best curb spots around a 12-character geohash",
		Example: "  curbctl search 9q8ytwheyxsh --data curbs.json\n" +
			"  curbctl search 9q8ytwheyxsh --data curbs.json --update 9q8yyqr3h670=0",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}

			for _, u := range updates {
				record, err := parseUpdate(u)
				if err != nil {
					return err
				}
				if err := svc.Update(ctx, record); err != nil {
					return err
				}
			}

			result, err := svc.Search(ctx, args[0], radius, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result.Results)
			}
			if len(result.Results) == 0 {
				fmt.Fprintln(out, "no curb spots found")
				return nil
			}
			for i, r := range result.Results {
				fmt.Fprintf(out, "%2d. %s  %.4f\n", i+1, r.Geohash, r.CurbScore)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&radius, "radius", 0, "search radius in meters (default search.radius_meters)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (default search.top_k)")
	cmd.Flags().StringArrayVar(&updates, "update", nil, "apply geohash=designation before searching (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

// parseUpdate reads "geohash=designation".
func parseUpdate(s string) (entities.CurbRecord, error) {
	code, value, ok := strings.Cut(s, "=")
	if !ok {
		return entities.CurbRecord{}, eris.Wrapf(entities.ErrMalformedRecord, "update %q: want geohash=designation", s)
	}
	designation, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return entities.CurbRecord{}, eris.Wrapf(entities.ErrMalformedRecord, "update %q: %v", s, err)
	}
	return entities.CurbRecord{Geohash: strings.TrimSpace(code), Designation: designation}, nil
}
