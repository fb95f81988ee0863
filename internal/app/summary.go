package app

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"TenderMonitor/internal/domain"
	"TenderMonitor/internal/usecase"
)

// writeSummary prints per-source and per-channel results of a run.
func writeSummary(w io.Writer, result usecase.RunReport) {
	sourcesTable := table.NewWriter()
	sourcesTable.SetOutputMirror(w)
	sourcesTable.SetStyle(table.StyleLight)
	sourcesTable.SetTitle("Run %s", result.RunID)
	sourcesTable.AppendHeader(table.Row{"Source", "Entries", "Attempts", "Status"})
	for _, src := range result.Sources {
		status := "ok"
		if !src.OK() {
			status = "failed"
		}
		sourcesTable.AppendRow(table.Row{src.Source, len(src.Entries), src.Attempts, status})
	}

	outcomes := make([]string, 0, len(result.Outcomes))
	for outcome := range result.Outcomes {
		outcomes = append(outcomes, string(outcome))
	}
	sort.Strings(outcomes)
	for _, outcome := range outcomes {
		sourcesTable.AppendFooter(table.Row{outcome, result.Outcomes[domain.EntryOutcome(outcome)], "", ""})
	}
	sourcesTable.AppendFooter(table.Row{"new records", len(result.New), "total", result.TotalRecords})
	sourcesTable.Render()

	if len(result.Channels) == 0 {
		return
	}

	channelsTable := table.NewWriter()
	channelsTable.SetOutputMirror(w)
	channelsTable.SetStyle(table.StyleLight)
	channelsTable.AppendHeader(table.Row{"Channel", "Status", "Error"})
	for _, ch := range result.Channels {
		errText := ""
		if ch.Err != nil {
			errText = fmt.Sprint(ch.Err)
		}
		channelsTable.AppendRow(table.Row{ch.Channel, ch.Status, errText})
	}
	channelsTable.Render()
}
