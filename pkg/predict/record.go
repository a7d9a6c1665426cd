package predict

import (
	"strconv"
	"strings"
)

// ParseRecord turns "W-L" or "W-D-L" into a TeamRecord.
// Basketball always reads the first two fields as W-L. Other sports read W-D-L
// when three fields are present and fall back to W-L. Anything malformed gives a zero record.
func ParseRecord(record string, sport Sport) TeamRecord {
	record = trimmed(record)
	if record == "" {
		return TeamRecord{}
	}

	parts := strings.Split(strings.ReplaceAll(record, "–", "-"), "-")

	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return TeamRecord{}
		}
		nums = append(nums, n)
	}

	var ret TeamRecord
	switch {
	case sport.IsBasketball() && len(nums) >= 2:
		ret.Wins, ret.Losses = nums[0], nums[1]
	case !sport.IsBasketball() && len(nums) == 3:
		ret.Wins, ret.Draws, ret.Losses = nums[0], nums[1], nums[2]
	case !sport.IsBasketball() && len(nums) == 2:
		ret.Wins, ret.Losses = nums[0], nums[1]
	default:
		return TeamRecord{}
	}

	ret.GamesPlayed = ret.Wins + ret.Losses + ret.Draws
	ret.WinPercentage = pctOf(ret.Wins, ret.GamesPlayed)
	return ret
}
