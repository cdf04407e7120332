package usecase

import (
	"context"
	"strings"
	"testing"
)

type captureNotifier struct {
	subjects []string
	bodies   []string
}

func (n *captureNotifier) Notify(_ context.Context, subject, body string) error {
	n.subjects = append(n.subjects, subject)
	n.bodies = append(n.bodies, body)
	return nil
}

func TestWeeklyReportContents(t *testing.T) {
	jobs := newFakeJobRepo()
	matches := &fakeMatchRepo{}
	notifier := &captureNotifier{}

	j1 := goJob()
	j2 := goJob()
	j2.JobUID = "cinode_9"
	j2.Source = "cinode"
	p1 := jobs.add(j1)
	jobs.add(j2)

	if _, err := matches.UpsertMatch(context.Background(), p1.ID, p1.ID, 0.85, dummyReason()); err != nil {
		t.Fatal(err)
	}

	uc := NewReportUsecase(jobs, matches, notifier, 0.8, nil)
	body, err := uc.WeeklyReport(context.Background())
	if err != nil {
		t.Fatalf("WeeklyReport failed: %v", err)
	}

	for _, want := range []string{
		"Weekly assignment report",
		"New assignments: 2",
		"verama: 1",
		"cinode: 1",
		"Matches generated: 1",
		"High-quality matches (score >= 0.80): 1",
		"Most requested skills:",
		"Go: 2",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("report missing %q:\n%s", want, body)
		}
	}
	if len(notifier.subjects) != 1 || notifier.subjects[0] != "Weekly assignment report" {
		t.Fatalf("notifier subjects = %v", notifier.subjects)
	}
}

func TestMondayBriefDelivered(t *testing.T) {
	notifier := &captureNotifier{}
	uc := NewReportUsecase(newFakeJobRepo(), &fakeMatchRepo{}, notifier, 0.8, nil)

	body, err := uc.MondayBrief(context.Background())
	if err != nil {
		t.Fatalf("MondayBrief failed: %v", err)
	}
	if !strings.Contains(body, "Monday brief") {
		t.Fatalf("unexpected body:\n%s", body)
	}
	if !strings.Contains(body, "New assignments: 0") {
		t.Fatalf("empty period should report zero:\n%s", body)
	}
	if len(notifier.bodies) != 1 {
		t.Fatal("brief must be delivered once")
	}
}
