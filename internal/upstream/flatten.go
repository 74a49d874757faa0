package upstream

import "fmt"

// FlattenLoads turns nested load/piece documents into one row per piece with
// a composite unique id.
func FlattenLoads(loads []ShippedLoad) []ShippedPieceRow {
	var rows []ShippedPieceRow
	for _, load := range loads {
		for _, piece := range load.Pieces {
			rows = append(rows, ShippedPieceRow{
				UniqueID:    fmt.Sprintf("%d-%s", load.LoadCode, piece.ControlCode),
				Date:        load.Date,
				LoadCode:    load.LoadCode,
				SiteCode:    load.SiteCode,
				SiteName:    load.SiteName,
				PieceName:   piece.Name,
				ControlCode: piece.ControlCode,
				Weight:      piece.Weight,
			})
		}
	}
	return rows
}
