package presence_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/vrclog/presence-go/pkg/presence"
)

func TestAnalyze_OrdersUsersCaseInsensitively(t *testing.T) {
	events := []presence.Event{
		join(at(10, 0), "bob", "usr_b"),
		join(at(10, 1), "Carol", "usr_c"),
		join(at(10, 2), "Alice", "usr_a"),
	}

	report, err := presence.Analyze(events)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	var got []string
	for _, u := range report.Users {
		got = append(got, u.Username)
	}
	want := []string{"Alice", "bob", "Carol"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("user order = %v, want %v", got, want)
	}
}

func TestAnalyze_DeterministicAcrossParallelism(t *testing.T) {
	var events []presence.Event
	names := []string{"Alice", "bob", "Carol", "dave", "Erin", "frank", "Grace", "heidi"}
	for i, name := range names {
		id := "usr_" + name
		events = append(events,
			join(at(9, i), name, id),
			leave(at(10, i), name, id),
			join(at(11, i), name, id),
		)
	}

	serial, err := presence.Analyze(events, presence.WithParallelism(1))
	if err != nil {
		t.Fatalf("Analyze(parallelism=1) error = %v", err)
	}
	parallel, err := presence.Analyze(events, presence.WithParallelism(8))
	if err != nil {
		t.Fatalf("Analyze(parallelism=8) error = %v", err)
	}

	if !reflect.DeepEqual(serial, parallel) {
		t.Errorf("reports differ across parallelism:\nserial:   %+v\nparallel: %+v", serial, parallel)
	}
}

func TestAnalyze_TotalsIncludeFilteredUsers(t *testing.T) {
	// Bob's presence is entirely outside the window. He drops out of
	// Users but his events still count in the report totals.
	events := []presence.Event{
		join(at(10, 0), "Alice", "usr_a"),
		leave(at(10, 30), "Alice", "usr_a"),
		join(at(14, 0), "Bob", "usr_b"),
		leave(at(14, 30), "Bob", "usr_b"),
	}

	report, err := presence.Analyze(events, presence.WithWindow(at(10, 0), at(11, 0)))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if report.TotalUsers() != 1 {
		t.Fatalf("TotalUsers() = %d, want 1", report.TotalUsers())
	}
	if report.Users[0].Username != "Alice" {
		t.Errorf("Users[0].Username = %q, want Alice", report.Users[0].Username)
	}
	if report.TotalJoinEvents != 2 {
		t.Errorf("TotalJoinEvents = %d, want 2", report.TotalJoinEvents)
	}
	if report.TotalLeaveEvents != 2 {
		t.Errorf("TotalLeaveEvents = %d, want 2", report.TotalLeaveEvents)
	}
}

func TestAnalyze_InvalidWindow(t *testing.T) {
	events := []presence.Event{join(at(10, 0), "Alice", "usr_a")}

	report, err := presence.Analyze(events, presence.WithWindow(at(11, 0), at(10, 0)))
	if !errors.Is(err, presence.ErrInvalidWindow) {
		t.Fatalf("Analyze() error = %v, want ErrInvalidWindow", err)
	}
	if report != nil {
		t.Errorf("report = %+v, want nil on error", report)
	}
}

func TestAnalyze_BoundaryTouchKeepsUser(t *testing.T) {
	events := []presence.Event{
		join(at(9, 0), "Alice", "usr_a"),
		leave(at(10, 0), "Alice", "usr_a"),
	}

	report, err := presence.Analyze(events, presence.WithWindow(at(10, 0), at(11, 0)))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if report.TotalUsers() != 1 {
		t.Fatalf("TotalUsers() = %d, want 1 (boundary touch counts as overlap)", report.TotalUsers())
	}
	u := report.Users[0]
	if len(u.Intervals) != 0 {
		t.Errorf("Intervals = %v, want none", u.Intervals)
	}
	if u.Online != 0 {
		t.Errorf("Online = %v, want 0", u.Online)
	}
}

func TestAnalyze_UserPresenceFields(t *testing.T) {
	events := []presence.Event{
		join(at(10, 0), "Alice", "usr_a"),
		leave(at(10, 15), "Alice", "usr_a"),
		join(at(10, 30), "Alice", "usr_a"),
		leave(at(10, 45), "Alice", "usr_a"),
	}

	report, err := presence.Analyze(events)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if report.TotalUsers() != 1 {
		t.Fatalf("TotalUsers() = %d, want 1", report.TotalUsers())
	}

	u := report.Users[0]
	if u.UserID != "usr_a" {
		t.Errorf("UserID = %q, want usr_a", u.UserID)
	}
	if u.JoinCount != 2 || u.LeaveCount != 2 {
		t.Errorf("counts = %d/%d, want 2/2", u.JoinCount, u.LeaveCount)
	}
	if u.Online != 30*time.Minute {
		t.Errorf("Online = %v, want %v", u.Online, 30*time.Minute)
	}
	if !u.FirstJoin.Equal(at(10, 0)) {
		t.Errorf("FirstJoin = %v, want %v", u.FirstJoin, at(10, 0))
	}
	if !u.LastLeave.Equal(at(10, 45)) {
		t.Errorf("LastLeave = %v, want %v", u.LastLeave, at(10, 45))
	}
	if u.PresentAtEnd {
		t.Error("PresentAtEnd = true, want false")
	}
}

func TestAnalyze_OnlineNow(t *testing.T) {
	events := []presence.Event{
		join(at(10, 0), "Alice", "usr_a"),
		join(at(10, 5), "Bob", "usr_b"),
		leave(at(10, 30), "Bob", "usr_b"),
	}

	report, err := presence.Analyze(events)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	online := report.OnlineNow()
	if len(online) != 1 || online[0].Username != "Alice" {
		t.Fatalf("OnlineNow() = %+v, want just Alice", online)
	}
	if !online[0].PresentAtEnd {
		t.Error("PresentAtEnd = false, want true")
	}
}

func TestAnalyze_AnomalyCounters(t *testing.T) {
	events := []presence.Event{
		leave(at(9, 0), "Alice", "usr_a"),
		join(at(10, 0), "Alice", "usr_a"),
		join(at(10, 5), "Alice", "usr_a"),
		leave(at(10, 30), "Alice", "usr_a"),
	}

	report, err := presence.Analyze(events)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	u := report.Users[0]
	if u.DuplicateJoins != 1 {
		t.Errorf("DuplicateJoins = %d, want 1", u.DuplicateJoins)
	}
	if u.OrphanLeaves != 1 {
		t.Errorf("OrphanLeaves = %d, want 1", u.OrphanLeaves)
	}
	if want := []presence.Interval{{Start: at(10, 0), End: at(10, 30)}}; !reflect.DeepEqual(u.Intervals, want) {
		t.Errorf("Intervals = %v, want %v", u.Intervals, want)
	}
}

func TestAnalyze_LeavesOnlyUserExcludedWithoutWindow(t *testing.T) {
	// A user with no reconstructable presence never makes the result set,
	// window or not, but still feeds the totals.
	events := []presence.Event{
		leave(at(9, 0), "Ghost", "usr_g"),
		join(at(10, 0), "Alice", "usr_a"),
	}

	report, err := presence.Analyze(events)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if report.TotalUsers() != 1 || report.Users[0].Username != "Alice" {
		t.Errorf("Users = %+v, want just Alice", report.Users)
	}
	if report.TotalLeaveEvents != 1 {
		t.Errorf("TotalLeaveEvents = %d, want 1", report.TotalLeaveEvents)
	}
}

func TestAnalyze_Empty(t *testing.T) {
	report, err := presence.Analyze(nil)
	if err != nil {
		t.Fatalf("Analyze(nil) error = %v", err)
	}
	if report.TotalUsers() != 0 {
		t.Errorf("TotalUsers() = %d, want 0", report.TotalUsers())
	}
	if report.TotalJoinEvents != 0 || report.TotalLeaveEvents != 0 {
		t.Errorf("totals = %d/%d, want 0/0", report.TotalJoinEvents, report.TotalLeaveEvents)
	}
}

func TestAnalyze_WindowEchoedInReport(t *testing.T) {
	events := []presence.Event{
		join(at(10, 0), "Alice", "usr_a"),
		leave(at(10, 30), "Alice", "usr_a"),
	}

	report, err := presence.Analyze(events, presence.WithWindow(at(10, 0), at(11, 0)))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if report.Window == nil {
		t.Fatal("Window = nil, want echoed query window")
	}
	if !report.Window.Start.Equal(at(10, 0)) || !report.Window.End.Equal(at(11, 0)) {
		t.Errorf("Window = %+v, want 10:00..11:00", report.Window)
	}
}
