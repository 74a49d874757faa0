package upstream

import "context"

// Plannix wraps the Plannix production-tracking API.
type Plannix struct {
	client *Client
}

// NewPlannix constructs the Plannix client.
func NewPlannix(client *Client) *Plannix {
	return &Plannix{client: client}
}

// ProductionEntry is one produced piece reported by Plannix.
type ProductionEntry struct {
	SiteCode  string  `json:"sigla"`
	PieceName string  `json:"nomePeca"`
	Weight    float64 `json:"peso"`
	Date      string  `json:"data"`
}

// AssemblyEntry is one assembled piece reported by Plannix.
type AssemblyEntry struct {
	SiteCode  string  `json:"sigla"`
	PieceName string  `json:"nomePeca"`
	Weight    float64 `json:"peso"`
	Date      string  `json:"data"`
}

// Production fetches pieces produced inside the date range.
func (p *Plannix) Production(ctx context.Context, start, end string) ([]ProductionEntry, error) {
	var entries []ProductionEntry
	if err := p.client.get(ctx, "/api/bi/producaosemconsumo", rangeParams(start, end), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Assembly fetches pieces assembled inside the date range.
func (p *Plannix) Assembly(ctx context.Context, start, end string) ([]AssemblyEntry, error) {
	var entries []AssemblyEntry
	if err := p.client.get(ctx, "/api/bi/pecasMontadas", rangeParams(start, end), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
