package commands

import (
	"fmt"
	"io"

	"go.trai.ch/meshcache/internal/core/domain"
	"go.trai.ch/meshcache/internal/ui/style"
)

// writeSummary prints the run statistics.
func writeSummary(w io.Writer, s domain.Stats) {
	status := style.Good.Render(style.Check + " all meshes built")
	if s.Failures > 0 {
		status = style.Bad.Render(fmt.Sprintf("%s %d reconstruction(s) failed", style.Cross, s.Failures))
	}

	rows := []struct {
		label string
		value string
	}{
		{"meshes", fmt.Sprintf("%d/%d cached", s.Cache.Len, s.Cache.Capacity)},
		{"hits", fmt.Sprintf("%d (%.0f%%)", s.Cache.Hits, 100*s.Cache.HitRatio())},
		{"misses", fmt.Sprint(s.Cache.Misses)},
		{"evictions", fmt.Sprint(s.Cache.Evictions)},
		{"runs", fmt.Sprintf("%d on %d worker(s)", s.PipelineRuns, s.Workers)},
	}
	if s.Discarded > 0 {
		rows = append(rows, struct {
			label string
			value string
		}{"discarded", style.Warn.Render(fmt.Sprint(s.Discarded))})
	}

	_, _ = fmt.Fprintln(w, style.Title.Render("meshcache"), status)
	for _, r := range rows {
		_, _ = fmt.Fprintln(w, style.Label.Render(r.label)+r.value)
	}
}
