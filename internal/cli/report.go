package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/jyotish/pkg/core/chart"
	"github.com/matzehuels/jyotish/pkg/core/dasha"
	"github.com/matzehuels/jyotish/pkg/core/sidereal"
	"github.com/matzehuels/jyotish/pkg/core/timing"
	"github.com/matzehuels/jyotish/pkg/core/transit"
	"github.com/matzehuels/jyotish/pkg/pipeline"
)

const dateFormat = "2006-01-02"

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			return styleCell
		})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatDegree(deg, min int) string {
	return fmt.Sprintf("%2d°%02d′", deg, min)
}

// positionsTable lists positions. With a natal chart, a house column is
// added relative to its ascendant.
func positionsTable(positions []sidereal.Position, natal *chart.Natal) string {
	headers := []string{"Body", "Sign", "Degree", "Nakshatra", "Pada"}
	if natal != nil {
		headers = append(headers, "House")
	}
	t := newTable(headers...)
	for _, p := range positions {
		row := []string{
			p.Body.Symbol() + " " + p.Body.Name(),
			p.Sign.String(),
			formatDegree(p.Degree, p.Minute),
			p.Nakshatra.String(),
			fmt.Sprint(p.Pada),
		}
		if natal != nil {
			row = append(row, fmt.Sprint(natal.Ascendant.House(p.Sign)))
		}
		t.Row(row...)
	}
	return t.String()
}

func renderChart(w io.Writer, natal *chart.Natal) {
	asc := natal.Ascendant
	fmt.Fprintln(w, StyleTitle.Render("Natal chart")+" "+StyleDim.Render(natal.Birth.Format(time.RFC3339)))
	fmt.Fprintf(w, "%s %s %s %s\n",
		StyleDim.Render("Ascendant"),
		StyleHighlight.Render(asc.Sign.String()),
		StyleValue.Render(formatDegree(asc.Degree, asc.Minute)),
		StyleDim.Render(fmt.Sprintf("%s pada %d", asc.Nakshatra, asc.Pada)))
	fmt.Fprintln(w, positionsTable(natal.Planets, natal))
}

func renderPositions(w io.Writer, at time.Time, positions []sidereal.Position) {
	fmt.Fprintln(w, StyleTitle.Render("Sidereal positions")+" "+StyleDim.Render(at.Format(time.RFC3339)))
	fmt.Fprintf(w, "%s %s\n", StyleDim.Render("Ayanamsha"), StyleValue.Render(fmt.Sprintf("%.4f°", sidereal.Ayanamsha(at))))
	fmt.Fprintln(w, positionsTable(positions, nil))
}

func renderDasha(w io.Writer, rep *pipeline.DashaReport, antars bool) {
	tl := rep.Timeline
	fmt.Fprintln(w, StyleTitle.Render("Vimshottari dasha")+" "+
		StyleDim.Render(fmt.Sprintf("Moon in %s, %.1f%% elapsed", tl.Nakshatra, tl.Elapsed*100)))

	if rep.Current != nil {
		cur := rep.Current
		fmt.Fprintf(w, "%s %s %s\n",
			StyleDim.Render("Running"),
			StyleHighlight.Render(cur.Maha.Lord.Name()+" / "+cur.Antar.Lord.Name()),
			StyleDim.Render("until "+cur.Antar.End.Format(dateFormat)))
	}

	t := newTable("Lord", "Years", "Start", "End")
	for i, m := range tl.Mahas {
		lord := m.Lord.Symbol() + " " + m.Lord.Name()
		if rep.Current != nil && i == rep.Current.MahaIndex {
			lord = StyleHighlight.Render(lord + " ◂")
		}
		t.Row(lord, fmt.Sprint(m.Years), m.Start.Format(dateFormat), m.End.Format(dateFormat))
	}
	fmt.Fprintln(w, t.String())

	if antars && rep.Current != nil {
		maha := tl.Mahas[rep.Current.MahaIndex]
		fmt.Fprintln(w, StyleTitle.Render("Antar dashas of "+maha.Lord.Name()))
		fmt.Fprintln(w, periodsTable(maha.Antars, rep.Current.AntarIndex))
	}
}

func periodsTable(periods []dasha.Period, current int) string {
	t := newTable("Lord", "Start", "End")
	for i, p := range periods {
		lord := p.Lord.Symbol() + " " + p.Lord.Name()
		if i == current {
			lord = StyleHighlight.Render(lord + " ◂")
		}
		t.Row(lord, p.Start.Format(dateFormat), p.End.Format(dateFormat))
	}
	return t.String()
}

func formatStay(s *timing.Summary) string {
	if s == nil {
		return StyleDim.Render("-")
	}
	return fmt.Sprintf("%s → %s %s",
		s.Entry.Format(dateFormat),
		s.Exit.Format(dateFormat),
		StyleDim.Render(fmt.Sprintf("(%.0f%%, %dd left)", s.ProgressPct, s.DaysRemaining)))
}

func renderTransits(w io.Writer, rep *pipeline.TransitReport, withTiming bool) {
	fmt.Fprintln(w, StyleTitle.Render("Transits")+" "+StyleDim.Render(rep.At.Format(time.RFC3339)))

	headers := []string{"Body", "Sign", "Degree", "House", "Quality"}
	if withTiming {
		headers = append(headers, "Stay")
	}
	t := newTable(headers...)
	for _, tr := range rep.Transits {
		row := []string{
			tr.Body.Symbol() + " " + tr.Body.Name(),
			tr.Sign.String(),
			formatDegree(tr.Degree, tr.Minute),
			fmt.Sprint(tr.House),
			qualityStyle(tr.Quality).Render(string(tr.Quality)),
		}
		if withTiming {
			row = append(row, formatStay(tr.Timing))
		}
		t.Row(row...)
	}
	fmt.Fprintln(w, t.String())

	for _, tr := range rep.Transits {
		if len(tr.Conjunctions) == 0 && len(tr.Aspects) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", StyleHighlight.Render(tr.Body.Name()), tr.Description)
		for _, c := range tr.Conjunctions {
			if c.Timing == nil || c.Timing.Exact == nil {
				continue
			}
			verb := "separating, exact"
			if c.Timing.IsApplying {
				verb = "applying, exact"
			}
			fmt.Fprintf(w, "  %s\n", StyleDim.Render(fmt.Sprintf("conjunct natal %s: %s %s",
				c.Natal.Name(), verb, c.Timing.Exact.Format(dateFormat))))
		}
	}

	fmt.Fprintf(w, "%s %s %s\n",
		StyleDim.Render("Day"),
		ratingStyle(rep.Rating).Render(string(rep.Rating)),
		StyleDim.Render(fmt.Sprintf("(score %+.2f)", rep.Score)))
}

func renderCalendar(w io.Writer, rep *pipeline.CalendarReport) {
	first := time.Date(rep.Year, time.Month(rep.Month), 1, 0, 0, 0, 0, time.UTC)
	fmt.Fprintln(w, StyleTitle.Render(first.Format("January 2006")))

	t := newTable("Mo", "Tu", "We", "Th", "Fr", "Sa", "Su")
	week := make([]string, 7)
	col := (int(first.Weekday()) + 6) % 7
	for _, d := range rep.Days {
		week[col] = ratingStyle(d.Rating).Render(fmt.Sprintf("%2d", d.Date.Day()))
		col++
		if col == 7 {
			t.Row(week...)
			week, col = make([]string, 7), 0
		}
	}
	if col > 0 {
		t.Row(week...)
	}
	fmt.Fprintln(w, t.String())

	var counts [3]int
	for _, d := range rep.Days {
		switch d.Rating {
		case transit.Good:
			counts[0]++
		case transit.Challenging:
			counts[2]++
		default:
			counts[1]++
		}
	}
	fmt.Fprintln(w, strings.Join([]string{
		StyleSuccess.Render(fmt.Sprintf("%d good", counts[0])),
		StyleWarning.Render(fmt.Sprintf("%d mixed", counts[1])),
		StyleDanger.Render(fmt.Sprintf("%d challenging", counts[2])),
	}, StyleDim.Render(" · ")))
}
