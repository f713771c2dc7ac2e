package sheets

import (
	"errors"
	"strings"
	"time"

	"github.com/kbvlyon/visitsync/internal/identity"
	"github.com/kbvlyon/visitsync/internal/model"
)

// ErrNoHeader is returned when no row carries both a date and a speaker column.
var ErrNoHeader = errors.New("no header row with date and speaker columns")

// Row is one planned visit read from a sheet.
type Row struct {
	Date         string
	Speaker      string
	Congregation string
	TalkNo       string
	Theme        string
	Host         string
}

// Planning holds the rows of every fetched tab.
type Planning struct {
	Rows []Row
	// Skipped counts rows naming a speaker without a readable date.
	Skipped int
}

type column int

const (
	colDate column = iota
	colSpeaker
	colCongregation
	colTalkNo
	colTheme
	colHost
)

// headerNames maps compacted header labels to columns.
var headerNames = map[string]column{
	"date":         colDate,
	"orateur":      colSpeaker,
	"nom":          colSpeaker,
	"congregation": colCongregation,
	"n":            colTalkNo,
	"no":           colTalkNo,
	"numero":       colTalkNo,
	"discours":     colTalkNo,
	"theme":        colTheme,
	"accueil":      colHost,
	"hote":         colHost,
	"contact":      colHost,
}

var dateLayouts = []string{"2006-01-02", "02/01/2006", "2/1/2006", "02/01/06"}

// ParseRows finds the header row and converts the rows below it.
func ParseRows(records [][]string) ([]Row, int, error) {
	start, cols := -1, map[column]int{}
	for i, rec := range records {
		found := map[column]int{}
		for j, cell := range rec {
			if c, ok := headerNames[identity.CompactName(cell)]; ok {
				if _, dup := found[c]; !dup {
					found[c] = j
				}
			}
		}
		_, hasDate := found[colDate]
		_, hasSpeaker := found[colSpeaker]
		if hasDate && hasSpeaker {
			start, cols = i, found
			break
		}
	}
	if start < 0 {
		return nil, 0, ErrNoHeader
	}

	cell := func(rec []string, c column) string {
		j, ok := cols[c]
		if !ok || j >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[j])
	}

	var rows []Row
	skipped := 0
	for _, rec := range records[start+1:] {
		speaker := cell(rec, colSpeaker)
		if speaker == "" {
			continue
		}
		date, ok := parseDate(cell(rec, colDate))
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, Row{
			Date:         date,
			Speaker:      speaker,
			Congregation: cell(rec, colCongregation),
			TalkNo:       cell(rec, colTalkNo),
			Theme:        cell(rec, colTheme),
			Host:         cell(rec, colHost),
		})
	}
	return rows, skipped, nil
}

func parseDate(s string) (string, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// Snapshot converts the planning to an importable snapshot. Speakers already
// known to existing are left out so their stored details survive the merge;
// unknown speakers are added with the congregation read from the sheet.
// Visit fields absent from the sheet stay empty and keep their stored value.
func (p *Planning) Snapshot(existing *model.Snapshot) *model.Snapshot {
	known := map[string]bool{}
	if existing != nil {
		for _, sp := range existing.Speakers {
			known[identity.SpeakerKey(sp)] = true
		}
	}

	out := model.Empty()
	for _, r := range p.Rows {
		key := identity.NormalizeName(r.Speaker)
		if !known[key] {
			known[key] = true
			out.Speakers = append(out.Speakers, model.Speaker{
				Nom:          r.Speaker,
				Congregation: r.Congregation,
				TalkHistory:  []model.TalkHistory{},
			})
		}
		out.Visits = append(out.Visits, model.Visit{
			Nom:          r.Speaker,
			Congregation: r.Congregation,
			VisitDate:    r.Date,
			Host:         r.Host,
			TalkNoOrType: r.TalkNo,
			TalkTheme:    r.Theme,
		})
	}
	return out
}
