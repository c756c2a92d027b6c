package cli

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/daslerpc/mech-checker/internal/store"
	"github.com/daslerpc/mech-checker/internal/validity"
	"github.com/daslerpc/mech-checker/pkg/types"
)

type stateVerdict struct {
	Record     string   `json:"record"`
	State      string   `json:"state"`
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
}

type sampleSummary struct {
	Samples int            `json:"samples"`
	Seed    int64          `json:"seed"`
	Valid   int            `json:"valid"`
	Invalid int            `json:"invalid"`
	ByKind  map[string]int `json:"violations_by_kind"`
}

type checkSummary struct {
	States []stateVerdict `json:"states,omitempty"`
	Sample *sampleSummary `json:"sample,omitempty"`
}

func newCheckCmd(a *app) *cobra.Command {
	var (
		samples int
		seed    int64
	)
	cmd := &cobra.Command{
		Use:   "check [v0,v1,h0,h1,t ...]",
		Short: "Explain why states are legal or not",
		Long: `Check evaluates individual states, given as records in the same
comma-separated decimal form the state files use, and lists every rule each
one breaks.

With --sample N it instead draws N random states from the grid and tallies
how often each rule rejects them.`,
		Example: `  mechcheck check 0.0,0.0,0.0,0.0,0.0
  mechcheck check 0.25,0.0,0.25,0.0,0.25
  mechcheck check --sample 10000 --seed 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && samples <= 0 {
				return errors.New("check needs at least one state or --sample")
			}
			s, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var sum checkSummary
			for _, rec := range args {
				st, err := store.ParseState(s.model, rec)
				if err != nil {
					return fmt.Errorf("state %q: %w", rec, err)
				}
				v := stateVerdict{Record: rec, State: st.String(), Valid: true}
				for _, viol := range s.checker.Explain(st) {
					v.Valid = false
					v.Violations = append(v.Violations, viol.String())
				}
				sum.States = append(sum.States, v)
			}
			if samples > 0 {
				sum.Sample = s.sample(samples, seed)
			}
			return emit(a, cmd.OutOrStdout(), sum, printCheck)
		},
	}
	cmd.Flags().IntVar(&samples, "sample", 0, "number of random grid states to evaluate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for --sample (default: time based)")
	return cmd
}

// sample draws n uniform states from the grid and tallies violations by
// kind through the checker's trace hook.
func (s *session) sample(n int, seed int64) *sampleSummary {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sum := &sampleSummary{Samples: n, Seed: seed, ByKind: map[string]int{}}
	checker := validity.New(s.model, validity.WithTrace(func(_ types.State, vs []validity.Violation) {
		for _, v := range vs {
			sum.ByKind[v.Kind.String()]++
		}
	}))

	rng := rand.New(rand.NewSource(seed))
	maxIdx, horizon := s.model.MaxIndex(), s.model.Horizon()
	for i := 0; i < n; i++ {
		st := types.State{
			V0: rng.Intn(maxIdx + 1),
			V1: rng.Intn(maxIdx + 1),
			H0: rng.Intn(maxIdx + 1),
			H1: rng.Intn(maxIdx + 1),
			T:  rng.Intn(horizon + 1),
		}
		if checker.Valid(st) {
			sum.Valid++
		} else {
			sum.Invalid++
		}
	}
	return sum
}

func printCheck(w io.Writer, sum checkSummary) {
	for _, v := range sum.States {
		if v.Valid {
			printSuccess(w, fmt.Sprintf("%s %s is legal", v.Record, v.State))
			continue
		}
		printFailure(w, fmt.Sprintf("%s %s is illegal", v.Record, v.State))
		for _, reason := range v.Violations {
			fmt.Fprintf(w, "    %s\n", reason)
		}
	}
	if sum.Sample == nil {
		return
	}
	printSection(w, "Sample")
	printLabelValue(w, "seed", sum.Sample.Seed)
	printLabelValue(w, "samples", sum.Sample.Samples)
	printLabelValue(w, "legal", sum.Sample.Valid)
	printLabelValue(w, "illegal", sum.Sample.Invalid)
	kinds := make([]string, 0, len(sum.Sample.ByKind))
	for k := range sum.Sample.ByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		printLabelValue(w, k, sum.Sample.ByKind[k])
	}
}
