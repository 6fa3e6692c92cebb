package resources

// Building and card prices.
var (
	RoadCost       = Collection{Lumber: 1, Brick: 1}
	SettlementCost = Collection{Lumber: 1, Brick: 1, Wool: 1, Grain: 1}
	TownCost       = Collection{Grain: 2, Ore: 3}
	GrowthCardCost = Collection{Wool: 1, Grain: 1, Ore: 1}
)

// Transfer moves every card in amount from one collection to another.
// Nothing moves if the source cannot cover the full amount.
func Transfer(from, to Collection, amount Collection) bool {
	if !from.RemoveAll(amount) {
		return false
	}
	to.AddAll(amount)
	return true
}
