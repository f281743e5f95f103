package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/hydernasirr/aws-finops-2/internal/domain/entity"
)

// recommendationText maps an idle-condition reason to the presentation
// fields of its recommendation.
type recommendationText struct {
	category    string
	service     string // breakdown entry feeding the spend context line
	titleNoun   string
	description string
	action      string
}

var recommendationTexts = map[string]recommendationText{
	ReasonStoppedInstance: {
		category:    "EC2",
		service:     "Amazon Elastic Compute Cloud - Compute",
		titleNoun:   "Stopped EC2 Instance(s)",
		description: "%d stopped EC2 instance(s) are still incurring EBS and attached-resource costs.",
		action:      "Terminate unused instances, or create AMIs and terminate.",
	},
	ReasonUnattachedVolume: {
		category:    "EBS",
		service:     "EC2 - Other",
		titleNoun:   "Unattached EBS Volume(s)",
		description: "%d EBS volume(s) are not attached to any instance.",
		action:      "Delete unused volumes after creating snapshots if needed.",
	},
	ReasonUnassociatedEIP: {
		category:    "Network",
		service:     "EC2 - Other",
		titleNoun:   "Unassociated Elastic IP(s)",
		description: "%d Elastic IP(s) are not associated with any resource.",
		action:      "Release unused Elastic IPs.",
	},
	ReasonStoppedDatabase: {
		category:    "RDS",
		service:     "Amazon Relational Database Service",
		titleNoun:   "Stopped RDS Instance(s)",
		description: "%d RDS instance(s) are stopped but still incurring storage costs.",
		action:      "Take snapshots and terminate if not needed, or start if actively used.",
	},
}

type findingGroup struct {
	resourceType entity.ResourceType
	reason       string
}

// BuildRecommendations turns audit findings into a ranked recommendation
// list: one recommendation per (resource type, idle condition) group,
// savings summed over the group, ordered by severity and then by savings
// descending. An empty findings set yields an empty list; that is the
// all-clear, not an error.
func BuildRecommendations(findings []entity.Finding, breakdown entity.ServiceCostBreakdown) []entity.Recommendation {
	groups := lo.GroupBy(findings, func(f entity.Finding) findingGroup {
		return findingGroup{resourceType: f.ResourceType, reason: f.Reason}
	})

	recs := make([]entity.Recommendation, 0, len(groups))
	for key, members := range groups {
		text, ok := recommendationTexts[key.reason]
		if !ok {
			continue
		}

		description := fmt.Sprintf(text.description, len(members))
		if spend := categorySpend(breakdown, text.service); spend > 0 {
			description += fmt.Sprintf(" %s currently accounts for $%.2f of this window's spend.", text.service, spend)
		}

		recs = append(recs, entity.Recommendation{
			Title:       fmt.Sprintf("%d %s", len(members), text.titleNoun),
			Description: description,
			Category:    text.category,
			Severity:    members[0].Severity,
			Action:      text.action,
			PotentialSavings: round2(lo.SumBy(members, func(f entity.Finding) float64 {
				return f.EstimatedMonthlySaving
			})),
			ResourceIDs: lo.Map(members, func(f entity.Finding, _ int) string {
				return f.ResourceID
			}),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Severity.Rank() != recs[j].Severity.Rank() {
			return recs[i].Severity.Rank() < recs[j].Severity.Rank()
		}
		return recs[i].PotentialSavings > recs[j].PotentialSavings
	})

	return recs
}

// AggregateSavings sums the potential savings across recommendations. Each
// resource belongs to exactly one recommendation, so nothing is counted
// twice.
func AggregateSavings(recs []entity.Recommendation) float64 {
	return round2(lo.SumBy(recs, func(r entity.Recommendation) float64 {
		return r.PotentialSavings
	}))
}

func categorySpend(breakdown entity.ServiceCostBreakdown, service string) float64 {
	for _, e := range breakdown.Entries {
		if e.ServiceName == service {
			return e.Cost
		}
	}
	return 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
