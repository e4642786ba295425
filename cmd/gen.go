package main

import (
	"io"
	"os"
	"strings"

	"github.com/okian/heats/internal/domain/wcif"
	"github.com/okian/heats/internal/fixture"
	"github.com/spf13/cobra"
)

func newGenCmd() *cobra.Command {
	var (
		competitors int
		delegates   int
		events      []string
		shared      []string
		rooms       int
		rounds      int
		rate        float64
		seed        int64
		output      string
	)
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a synthetic WCIF competition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := []fixture.Option{
				fixture.WithCompetitors(competitors),
				fixture.WithDelegates(delegates),
				fixture.WithEvents(events...),
				fixture.WithRooms(rooms),
				fixture.WithRounds(rounds),
				fixture.WithRegistrationRate(rate),
				fixture.WithSeed(seed),
			}
			for _, group := range shared {
				opts = append(opts, fixture.WithSharedLimit(strings.Split(group, "+")...))
			}
			comp, err := fixture.Generate(opts...)
			if err != nil {
				return err
			}

			encode := func(out io.Writer) error { return wcif.Encode(out, comp) }
			if output == "" {
				return encode(cmd.OutOrStdout())
			}
			file, err := os.Create(output)
			if err != nil {
				return err
			}
			return writeAndClose(file, encode)
		},
	}
	fl := cmd.Flags()
	fl.IntVarP(&competitors, "competitors", "n", 60, "number of accepted competitors")
	fl.IntVar(&delegates, "delegates", 2, "how many of them are delegates")
	fl.StringSliceVarP(&events, "events", "e", []string{"333", "222", "pyram"}, "events in schedule order")
	fl.StringArrayVar(&shared, "shared", nil, `events sharing a cumulative limit, e.g. "444bf+555bf"`)
	fl.IntVar(&rooms, "rooms", 1, "rooms to spread first rounds over")
	fl.IntVar(&rounds, "rounds", 1, "rounds per event")
	fl.Float64Var(&rate, "registration-rate", 0.7, "chance to register for each event after the first")
	fl.Int64Var(&seed, "seed", 1, "random seed")
	fl.StringVarP(&output, "output", "o", "", "output file, stdout when empty")
	return cmd
}
