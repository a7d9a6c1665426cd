package espn

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Wire shapes of the ESPN site API. Only the fields the mapper reads are declared.

type teamResponse struct {
	Team struct {
		ID              string `json:"id"`
		DisplayName     string `json:"displayName"`
		Abbreviation    string `json:"abbreviation"`
		StandingSummary string `json:"standingSummary"`
		Record          struct {
			Items []struct {
				Summary string `json:"summary"`
			} `json:"items"`
		} `json:"record"`
	} `json:"team"`
}

type scheduleResponse struct {
	Events []event `json:"events"`
}

type scoreboardResponse struct {
	Events []event `json:"events"`
}

type event struct {
	ID           string        `json:"id"`
	Date         string        `json:"date"`
	Name         string        `json:"name"`
	Status       status        `json:"status"`
	Competitions []competition `json:"competitions"`
}

type status struct {
	Type struct {
		State       string `json:"state"`
		Completed   bool   `json:"completed"`
		Description string `json:"description"`
		ShortDetail string `json:"shortDetail"`
	} `json:"type"`
}

type competition struct {
	Date        string       `json:"date"`
	Status      status       `json:"status"`
	Competitors []competitor `json:"competitors"`
}

type competitor struct {
	ID       string `json:"id"`
	HomeAway string `json:"homeAway"`
	Winner   bool   `json:"winner"`
	Form     string `json:"form"`
	Team     struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
	} `json:"team"`
	Score   score `json:"score"`
	Records []struct {
		Summary string `json:"summary"`
	} `json:"records"`
}

func (c competitor) teamID() string {
	if c.Team.ID != "" {
		return c.Team.ID
	}
	return c.ID
}

// score accepts both the scoreboard's "2" and the schedule's {"value":2.0,"displayValue":"2"}
type score struct {
	Value *int
}

func (s *score) UnmarshalJSON(b []byte) error {
	s.Value = nil
	raw := strings.TrimSpace(string(b))
	if raw == "null" || raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "{") {
		var obj struct {
			Value        *float64 `json:"value"`
			DisplayValue string   `json:"displayValue"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		if obj.Value != nil {
			v := int(*obj.Value)
			s.Value = &v
			return nil
		}
		s.Value = parseScore(obj.DisplayValue)
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		s.Value = parseScore(str)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	v := int(f)
	s.Value = &v
	return nil
}

func parseScore(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

type newsResponse struct {
	Articles []struct {
		Headline    string `json:"headline"`
		Description string `json:"description"`
		Published   string `json:"published"`
		Links       struct {
			Web struct {
				Href string `json:"href"`
			} `json:"web"`
		} `json:"links"`
	} `json:"articles"`
}

type summaryResponse struct {
	Header struct {
		ID           string        `json:"id"`
		Competitions []competition `json:"competitions"`
	} `json:"header"`
	HeadToHeadGames []h2hEntry `json:"headToHeadGames"`
}

// h2hEntry is either a past meeting or a group holding meetings under "events"
type h2hEntry struct {
	h2hEvent
	Events []h2hEvent `json:"events"`
}

type h2hEvent struct {
	ID            string `json:"id"`
	GameDate      string `json:"gameDate"`
	HomeTeamID    string `json:"homeTeamId"`
	AwayTeamID    string `json:"awayTeamId"`
	HomeTeamScore string `json:"homeTeamScore"`
	AwayTeamScore string `json:"awayTeamScore"`
	Score         string `json:"score"`
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02",
}

// parseDate reads the handful of timestamp shapes ESPN emits. Unparseable input gives the zero time.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
