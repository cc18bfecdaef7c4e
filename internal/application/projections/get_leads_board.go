package projections

import (
	"context"
	"strings"

	"opsboard/internal/domain/lead"
)

// ShortDateLayout is the short date shown on lead cards.
const ShortDateLayout = "1/2/2006"

// URLResolver turns stored object keys into public URLs.
type URLResolver interface {
	PublicURL(bucket, key string) string
}

// LeadLister defines the lead store interface needed by the board.
type LeadLister interface {
	List(ctx context.Context) ([]lead.Lead, error)
}

// LeadCard is one lead as shown on the board and in the manage list.
type LeadCard struct {
	ID              string
	Name            string
	Description     string // markdown
	PreviewImageURL string
	Associations    string
	Stage           string
	StageLabel      string
	Created         string
}

// LeadColumn is one stage column.
type LeadColumn struct {
	Stage string
	Label string
	Leads []LeadCard
}

// LeadsBoardResult carries the leads page.
type LeadsBoardResult struct {
	Columns []LeadColumn
	All     []LeadCard // manage list, every lead including untriaged ones
}

// GetLeadsBoardDeps holds dependencies for GetLeadsBoard.
type GetLeadsBoardDeps struct {
	LeadStore LeadLister
	Resolver  URLResolver
}

// GetLeadsBoard groups leads into the four stage columns and builds the manage list.
// Leads without a recognised stage only appear in the manage list, labelled lead.StageUnknown.
func GetLeadsBoard(ctx context.Context, deps GetLeadsBoardDeps) (LeadsBoardResult, error) {
	leads, err := deps.LeadStore.List(ctx)
	if err != nil {
		return LeadsBoardResult{}, err
	}

	result := LeadsBoardResult{Columns: make([]LeadColumn, len(lead.Stages))}
	index := make(map[string]int, len(lead.Stages))
	for i, s := range lead.Stages {
		result.Columns[i] = LeadColumn{Stage: s, Label: lead.StageLabel(s)}
		index[s] = i
	}

	for _, l := range leads {
		card := LeadCard{
			ID:           l.ID,
			Name:         l.Name,
			Description:  l.Description,
			Associations: strings.Join(l.Associations, " "),
			Stage:        l.Stage,
			StageLabel:   lead.StageLabel(l.Stage),
		}
		if !l.CreatedAt.IsZero() {
			card.Created = l.CreatedAt.Format(ShortDateLayout)
		}
		if deps.Resolver != nil {
			card.PreviewImageURL = deps.Resolver.PublicURL(lead.PreviewBucket, l.PreviewImagePath)
		}
		result.All = append(result.All, card)
		if i, ok := index[l.Stage]; ok {
			result.Columns[i].Leads = append(result.Columns[i].Leads, card)
		}
	}
	return result, nil
}
