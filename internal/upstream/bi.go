package upstream

import "context"

// BI wraps the plant-floor business-intelligence API.
type BI struct {
	client *Client
}

// NewBI constructs the BI client.
func NewBI(client *Client) *BI {
	return &BI{client: client}
}

// ShippedLoad is one dispatched truck load as the BI API reports it, with
// its pieces nested.
type ShippedLoad struct {
	Date     string         `json:"Data"`
	LoadCode int64          `json:"codProgCargas"`
	SiteCode string         `json:"siglaObra"`
	SiteName string         `json:"nomeObra"`
	Pieces   []ShippedPiece `json:"pecas"`
}

// ShippedPiece is one piece inside a load.
type ShippedPiece struct {
	Name        string  `json:"NomePeca"`
	ControlCode string  `json:"CodigoControle"`
	Weight      float64 `json:"Peso"`
}

// ShippedPieceRow is the flattened shape the API hands to callers: one row
// per piece with a composite unique id, matching what the reporting frontend
// keys its grids on.
type ShippedPieceRow struct {
	UniqueID    string  `json:"id"`
	Date        string  `json:"date"`
	LoadCode    int64   `json:"load_code"`
	SiteCode    string  `json:"site_code"`
	SiteName    string  `json:"site_name"`
	PieceName   string  `json:"piece_name"`
	ControlCode string  `json:"control_code"`
	Weight      float64 `json:"weight"`
}

// ProjectedPiece is one engineered piece scheduled for a site.
type ProjectedPiece struct {
	SiteCode  string  `json:"sigla"`
	PieceName string  `json:"nomePeca"`
	Weight    float64 `json:"peso"`
	Date      string  `json:"data"`
}

// Site is one construction site known to the BI API.
type Site struct {
	Code string `json:"sigla"`
	Name string `json:"nome"`
}

// ShippedLoads fetches dispatched loads for the date range and flattens them
// to one row per piece.
func (b *BI) ShippedLoads(ctx context.Context, start, end string) ([]ShippedPieceRow, error) {
	var loads []ShippedLoad
	if err := b.client.get(ctx, "/api/bi/cargasexpedidas", rangeParams(start, end), &loads); err != nil {
		return nil, err
	}
	return FlattenLoads(loads), nil
}

// ProjectedPieces fetches the pieces projected for one site in the range.
func (b *BI) ProjectedPieces(ctx context.Context, start, end, site string) ([]ProjectedPiece, error) {
	params := rangeParams(start, end)
	params.Set("sigla", site)
	var pieces []ProjectedPiece
	if err := b.client.get(ctx, "/api/bi/pecasProjetadas", params, &pieces); err != nil {
		return nil, err
	}
	return pieces, nil
}

// Sites fetches the sites active in the date range.
func (b *BI) Sites(ctx context.Context, start, end string) ([]Site, error) {
	var sites []Site
	if err := b.client.get(ctx, "/api/bi/obras", rangeParams(start, end), &sites); err != nil {
		return nil, err
	}
	return sites, nil
}
