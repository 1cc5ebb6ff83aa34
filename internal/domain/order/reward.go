package order

import "github.com/shopspring/decimal"

const (
	rewardRate = "0.01"
	rewardMin  = 10
	rewardMax  = 500
)

// CoinReward computes the coins granted per completed sub-order:
// min(500, max(10, floor(total × 0.01))). The 500 cap applies to every
// order of 50,000+ identically; the formula is kept literally.
func CoinReward(total decimal.Decimal) int64 {
	coins := total.Mul(decimal.RequireFromString(rewardRate)).Floor().IntPart()
	if coins < rewardMin {
		coins = rewardMin
	}
	if coins > rewardMax {
		coins = rewardMax
	}
	return coins
}
