package espn

import (
	"strings"

	"github.com/richard-senior/apex/pkg/predict"
)

// League is one ESPN competition the client knows how to query
type League struct {
	Sport predict.Sport `json:"sport"`
	Slug  string        `json:"slug"`
	Name  string        `json:"name"`
}

// Path returns the "{sport}/{league}" URL segment
func (l League) Path() string {
	return string(l.Sport) + "/" + l.Slug
}

// Leagues lists the supported competitions
var Leagues = []League{
	{predict.SportSoccer, "eng.1", "Premier League"},
	{predict.SportSoccer, "esp.1", "La Liga"},
	{predict.SportSoccer, "ita.1", "Serie A"},
	{predict.SportSoccer, "ger.1", "Bundesliga"},
	{predict.SportSoccer, "fra.1", "Ligue 1"},
	{predict.SportSoccer, "ned.1", "Eredivisie"},
	{predict.SportSoccer, "eng.2", "Championship"},
	{predict.SportSoccer, "por.1", "Liga Portugal"},
	{predict.SportSoccer, "tur.1", "Super Lig"},
	{predict.SportSoccer, "mex.1", "Liga MX"},
	{predict.SportSoccer, "bra.1", "Brasileirão"},
	{predict.SportSoccer, "conmebol.libertadores", "Libertadores"},
	{predict.SportSoccer, "uefa.champions", "Champions League"},
	{predict.SportSoccer, "uefa.europa", "Europa League"},
	{predict.SportSoccer, "usa.1", "MLS"},
	{predict.SportSoccer, "fifa.friendly", "International Friendlies"},
	{predict.SportSoccer, "uefa.nations", "Nations League"},
	{predict.SportSoccer, "uefa.euro", "Euros"},
	{predict.SportSoccer, "fifa.world", "World Cup"},

	{predict.SportBasketball, "nba", "NBA"},
	{predict.SportBasketball, "wnba", "WNBA"},
	{predict.SportBasketball, "mens-college-basketball", "NCAA Men"},
	{predict.SportBasketball, "womens-college-basketball", "NCAA Women"},
	{predict.SportBasketball, "nba-g-league", "NBA G League"},
}

// FindLeague looks a league up by slug, case-insensitively
func FindLeague(slug string) (League, bool) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	for _, l := range Leagues {
		if l.Slug == slug {
			return l, true
		}
	}
	return League{}, false
}
