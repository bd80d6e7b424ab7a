package agents

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tripplanner/orchestrator/internal/state"
)

// destinationOption is one entry in the closed dictionary destination_
// recommender chooses from, per spec §4.5.
type destinationOption struct {
	Name       string
	State      string
	BestMonths map[time.Month]bool
}

var destinationDictionary = []destinationOption{
	{Name: "Rishikesh", State: "Uttarakhand", BestMonths: months(time.September, time.October, time.November, time.March, time.April)},
	{Name: "Goa", State: "Goa", BestMonths: months(time.November, time.December, time.January, time.February)},
	{Name: "Jaipur", State: "Rajasthan", BestMonths: months(time.October, time.November, time.December, time.January, time.February)},
	{Name: "Udaipur", State: "Rajasthan", BestMonths: months(time.October, time.November, time.December, time.January, time.February)},
	{Name: "Manali", State: "Himachal Pradesh", BestMonths: months(time.March, time.April, time.May, time.June, time.December)},
	{Name: "Leh", State: "Ladakh", BestMonths: months(time.June, time.July, time.August, time.September)},
	{Name: "Varanasi", State: "Uttar Pradesh", BestMonths: months(time.October, time.November, time.December, time.January, time.February, time.March)},
	{Name: "Hampi", State: "Karnataka", BestMonths: months(time.October, time.November, time.December, time.January, time.February)},
	{Name: "Mysore", State: "Karnataka", BestMonths: months(time.October, time.November, time.December, time.January, time.February)},
	{Name: "Kochi", State: "Kerala", BestMonths: months(time.October, time.November, time.December, time.January, time.February)},
	{Name: "Darjeeling", State: "West Bengal", BestMonths: months(time.March, time.April, time.October, time.November)},
	{Name: "Amritsar", State: "Punjab", BestMonths: months(time.October, time.November, time.December, time.January, time.February, time.March)},
	{Name: "Pondicherry", State: "Puducherry", BestMonths: months(time.November, time.December, time.January, time.February)},
}

func months(ms ...time.Month) map[time.Month]bool {
	out := make(map[time.Month]bool, len(ms))
	for _, m := range ms {
		out[m] = true
	}
	return out
}

// DestinationRecommenderNode implements destination_recommender per spec
// §4.5: pick exactly 3 destinations from the closed dictionary, preferring
// seasonal fit for the trip month and diversity across states, then
// suspend for human approval.
type DestinationRecommenderNode struct{}

func (n *DestinationRecommenderNode) Name() string { return "destination_recommender" }

func (n *DestinationRecommenderNode) Execute(ctx context.Context, s *state.PlannerState) (state.PartialState, error) {
	start := time.Now()

	tripMonth := time.Now().Month()
	if !s.TripRequest.StartDate.IsZero() {
		tripMonth = s.TripRequest.StartDate.Month()
	}

	type scored struct {
		opt   destinationOption
		score int
	}
	var candidates []scored
	for _, opt := range destinationDictionary {
		score := 0
		if opt.BestMonths[tripMonth] {
			score = 1
		}
		candidates = append(candidates, scored{opt: opt, score: score})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].opt.Name < candidates[j].opt.Name
	})

	var picked []destinationOption
	usedStates := map[string]bool{}
	for _, c := range candidates {
		if len(picked) == 3 {
			break
		}
		if usedStates[c.opt.State] {
			continue
		}
		picked = append(picked, c.opt)
		usedStates[c.opt.State] = true
	}
	for _, c := range candidates {
		if len(picked) == 3 {
			break
		}
		already := false
		for _, p := range picked {
			if p.Name == c.opt.Name {
				already = true
				break
			}
		}
		if !already {
			picked = append(picked, c.opt)
		}
	}

	names := make([]string, len(picked))
	for i, p := range picked {
		names[i] = p.Name
	}

	requiresApproval := true
	approvalType := state.ApprovalDestination
	response := fmt.Sprintf("Here are 3 destinations to choose from: %v", names)
	stage := n.Name()
	return state.PartialState{
		RequiresApproval:     &requiresApproval,
		ApprovalType:         &approvalType,
		ConversationResponse: &response,
		CurrentStage:         &stage,
		AgentDecisions: []state.AgentDecision{
			{
				AgentName:     n.Name(),
				Action:        "recommend_destinations",
				Reasoning:     fmt.Sprintf("trip_month=%s seasonal+state-diversity selection", tripMonth),
				ResultSummary: fmt.Sprintf("recommended: %v", names),
				LatencyMS:     time.Since(start).Milliseconds(),
				CreatedAt:     time.Now(),
			},
		},
	}, nil
}
