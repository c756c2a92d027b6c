package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daslerpc/mech-checker/internal/catalog"
	"github.com/daslerpc/mech-checker/internal/store"
	"github.com/daslerpc/mech-checker/pkg/types"
)

type verifySummary struct {
	Input   string `json:"input"`
	Plans   int    `json:"plans"`
	Valid   bool   `json:"valid"`
	Failure string `json:"failure,omitempty"`
}

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [plan-file]",
		Short: "Replay a plan file against the legality and adjacency rules",
		Long: `Verify reloads a motion plan file and checks that every plan starts at the
origin, ends on the goal, moves between adjacent states, and visits only legal
states. The first failure is reported with its plan number.

Without an argument the newest search output for the active parameters is
verified.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			explicit := ""
			if len(args) == 1 {
				explicit = args[0]
			}
			path, err := s.upstream(cmd.Context(), explicit, catalog.StageSearch,
				store.Path(s.cfg.DataDir, store.PrefixPlans, s.model))
			if err != nil {
				return err
			}

			sum := verifySummary{Input: path, Valid: true}
			verr := store.ReadPlans(path, s.model, func(n int, p types.Plan) error {
				sum.Plans = n
				return s.replay(n, p)
			})
			if verr != nil {
				sum.Valid = false
				sum.Failure = verr.Error()
			}
			if err := emit(a, cmd.OutOrStdout(), sum, printVerify); err != nil {
				return err
			}
			return verr
		},
	}
}

// replay checks one plan's shape and the legality of each of its states.
func (s *session) replay(n int, p types.Plan) error {
	if err := p.CheckShape(s.model.GoalIndex(), s.model.Advance()); err != nil {
		return fmt.Errorf("plan %d: %w", n, err)
	}
	for i, st := range p {
		if vs := s.checker.Explain(st); len(vs) > 0 {
			reasons := make([]string, len(vs))
			for k, v := range vs {
				reasons[k] = v.String()
			}
			return fmt.Errorf("%w: plan %d: step %d %s is illegal: %s",
				types.ErrInvalidPlan, n, i, st, strings.Join(reasons, "; "))
		}
	}
	return nil
}

func printVerify(w io.Writer, sum verifySummary) {
	printSection(w, "Verify")
	printLabelValue(w, "input", sum.Input)
	printLabelValue(w, "plans checked", sum.Plans)
	if sum.Valid {
		printSuccess(w, "every plan is legal")
		return
	}
	printFailure(w, sum.Failure)
}
