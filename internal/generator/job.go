package generator

import (
	"fmt"
	"time"

	domain "github.com/jvanrooyen/cultivation-tasks/internal/domain/workflow"
	"github.com/jvanrooyen/cultivation-tasks/internal/repository"
)

// Window is the dedup period within which only one task of a given name
// may exist per batch.
type Window string

const (
	// WindowDaily dedups on the calendar day (UTC)
	WindowDaily Window = "daily"

	// WindowWeekly dedups on the ISO week, Monday 00:00 UTC through
	// Sunday 23:59 UTC
	WindowWeekly Window = "weekly"
)

// PeriodKey returns the dedup key for the window containing now.
func (w Window) PeriodKey(now time.Time) string {
	now = now.UTC()
	switch w {
	case WindowWeekly:
		year, week := now.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	default:
		return now.Format("2006-01-02")
	}
}

// dueHourUTC is 15:00 UTC, i.e. 17:00 SAST. South Africa has no DST, so
// the fixed offset is stable and deliberately not timezone-aware.
const dueHourUTC = 15

// DueAt returns the due timestamp for a run happening at now.
func DueAt(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), dueHourUTC, 0, 0, 0, time.UTC)
}

// TaskTemplate describes one task a job materializes per eligible batch.
// The rendered name doubles as the idempotency match key.
type TaskTemplate struct {
	SOFCode         string
	Description     string
	Category        domain.Category
	Status          string
	ChecklistLabels []string
}

// TaskName renders the display name, which is also the dedup name key.
func (t TaskTemplate) TaskName(batchNumber string) string {
	return fmt.Sprintf("%s: %s - %s", t.SOFCode, t.Description, batchNumber)
}

// Job is one recurring generator: an eligibility filter over batches, a
// dedup window, and the task templates to materialize. A job may carry
// several templates, each independently idempotent, so a single run can
// emit zero, one, or more tasks per eligible batch.
type Job struct {
	Name      string
	Window    Window
	Filter    repository.BatchFilter
	Templates []TaskTemplate
}

// Result summarizes one generator run
type Result struct {
	BatchesProcessed int `json:"batchesProcessed"`
	TasksCreated     int `json:"tasksCreated"`
	TasksSkipped     int `json:"tasksSkipped"`
}
