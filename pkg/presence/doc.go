// Package presence reconstructs per-user presence timelines from VRChat
// log files.
//
// This package allows you to:
//   - Parse VRChat log lines into structured events
//   - Rebuild who was present when, from join/leave event streams
//   - Answer windowed queries: who was here between two instants, for how long
//
// # Basic Usage
//
// To analyze a log file:
//
//	events, err := presence.ParseFileAll(ctx, "output_log.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := presence.Analyze(events)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, user := range report.Users {
//	    fmt.Printf("%s was online %s across %d visits\n",
//	        user.Username, user.Online, len(user.Intervals))
//	}
//
// To restrict the query to a time window:
//
//	report, err := presence.Analyze(events,
//	    presence.WithWindow(start, end),
//	)
//
// To parse a single log line:
//
//	event, err := presence.ParseLine(line)
//	if err != nil {
//	    log.Printf("parse error: %v", err)
//	} else if event != nil {
//	    // process event
//	}
//
// # Data Quality
//
// Real logs are partial: a file can start mid-session, joins can repeat,
// leaves can arrive with nothing to close. Reconstruction absorbs these
// silently and reports them as anomaly counters instead of failing; the
// only query error is an invalid window.
//
// # Platform Support
//
// Log auto-detection targets Windows where VRChat runs. Explicit file
// paths work anywhere.
//
// # Disclaimer
//
// This is an unofficial tool and is not affiliated with VRChat Inc.
package presence
