// Package report renders a snapshot for people: a plain-text overview, an
// XLSX planning workbook and the JSON export format.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kbvlyon/visitsync/internal/dupes"
	"github.com/kbvlyon/visitsync/internal/model"
)

// Summary is the overview printed by the CLI.
type Summary struct {
	Counts     model.Counts  `json:"counts"`
	Upcoming   []model.Visit `json:"upcoming"`
	Unassigned int           `json:"unassigned"`
	Pending    int           `json:"pending"`
	Issues     []string      `json:"issues"`
}

// Summarize computes the overview of s as of today (YYYY-MM-DD). Upcoming
// visits are sorted by date then time.
func Summarize(s *model.Snapshot, today string, finder dupes.Finder) Summary {
	sum := Summary{Counts: s.Counts(), Upcoming: []model.Visit{}}
	for _, v := range s.Visits {
		if v.VisitDate >= today && v.Status != model.StatusCancelled {
			sum.Upcoming = append(sum.Upcoming, v)
			if v.Host == model.UnassignedHost {
				sum.Unassigned++
			}
			if v.Status == model.StatusPending {
				sum.Pending++
			}
		}
	}
	sort.SliceStable(sum.Upcoming, func(i, j int) bool {
		a, b := sum.Upcoming[i], sum.Upcoming[j]
		if a.VisitDate != b.VisitDate {
			return a.VisitDate < b.VisitDate
		}
		return a.VisitTime < b.VisitTime
	})
	sum.Issues = finder.Analyze(s).Suggestions()
	if sum.Issues == nil {
		sum.Issues = []string{}
	}
	return sum
}

// Today formats t as a visit date.
func Today(t time.Time) string {
	return t.Format("2006-01-02")
}

// WriteText renders sum as aligned text.
func WriteText(w io.Writer, sum Summary) error {
	c := sum.Counts
	fmt.Fprintf(w, "Orateurs : %d\nContacts : %d\nVisites  : %d (archivées : %d)\nDiscours : %d\n",
		c.Speakers, c.Hosts, c.Visits, c.Archived, c.Talks)

	fmt.Fprintf(w, "\nProchaines visites (%d, %d sans accueil, %d en attente)\n", len(sum.Upcoming), sum.Unassigned, sum.Pending)
	if len(sum.Upcoming) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, v := range sum.Upcoming {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\n",
				v.VisitDate, v.VisitTime, v.Nom, orDash(v.Congregation), v.Host, v.Status)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(sum.Issues) > 0 {
		fmt.Fprintf(w, "\nÀ vérifier\n  %s\n", strings.Join(sum.Issues, "\n  "))
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
