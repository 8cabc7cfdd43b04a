package server

import (
	"strings"
	"time"

	"github.com/vrclog/presence-go/pkg/presence"
)

// resultsView feeds the results.html template.
type resultsView struct {
	*analyzeResponse
	Window   string
	Sessions []sessionRow
}

type sessionRow struct {
	World    string
	Start    string
	Duration string
	Players  string
}

func buildResultsView(resp *analyzeResponse, sessions []presence.Session) resultsView {
	v := resultsView{analyzeResponse: resp}
	if resp.StartTime != "" {
		v.Window = resp.StartTime + " to " + resp.EndTime
	}
	for _, sess := range sessions {
		world := sess.WorldName
		if world == "" {
			world = sess.WorldID
		}
		if world == "" {
			world = "(unknown world)"
		}
		v.Sessions = append(v.Sessions, sessionRow{
			World:    world,
			Start:    sess.Start.Format(timeJSON),
			Duration: sess.Duration().Round(time.Second).String(),
			Players:  strings.Join(sess.Players(), ", "),
		})
	}
	return v
}
