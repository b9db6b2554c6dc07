package generator

import (
	"github.com/jvanrooyen/cultivation-tasks/internal/domain/entity"
	domain "github.com/jvanrooyen/cultivation-tasks/internal/domain/workflow"
	"github.com/jvanrooyen/cultivation-tasks/internal/repository"
)

// Job names, used as HTTP trigger identifiers and worker labels.
const (
	JobDailyMortality = "daily-mortality"
	JobDailyCloning   = "daily-cloning"
	JobWeeklyBatch    = "weekly-batch"
)

// DailyMortalityJob materializes the SOF12 mortality and discard record
// for every active batch, once per calendar day.
func DailyMortalityJob() Job {
	return Job{
		Name:   JobDailyMortality,
		Window: WindowDaily,
		Filter: repository.BatchFilter{Status: entity.BatchStatusActive},
		Templates: []TaskTemplate{
			{
				SOFCode:     "SOF12",
				Description: "Mortality & Discard Record",
				Category:    domain.CategoryMortalityDiscard,
				Status:      entity.StatusPending,
				ChecklistLabels: []string{
					"Record plant mortalities for the day",
					"Record discarded plant material and weights",
					"Verify discard log against batch register",
				},
			},
		},
	}
}

// DailyCloningJob materializes the SOF15 cloning and transplant checklist
// for batches currently in the cloning stage, once per calendar day.
func DailyCloningJob() Job {
	return Job{
		Name:   JobDailyCloning,
		Window: WindowDaily,
		Filter: repository.BatchFilter{
			Status:       entity.BatchStatusInProgress,
			CurrentStage: entity.BatchStageCloning,
		},
		Templates: []TaskTemplate{
			{
				SOFCode:     "SOF15",
				Description: "Daily Cloning & Transplant Checklist",
				Category:    domain.CategoryDailyCloningTransplant,
				Status:      entity.StatusInProgress,
				ChecklistLabels: []string{
					"Inspect clone trays for root development",
					"Record transplant counts",
					"Check humidity dome settings",
				},
			},
		},
	}
}

// WeeklyBatchJob materializes two weekly tasks (SOF40 growth monitoring
// and SOF03 crop hygiene) for every in-progress batch not yet at harvest.
// Each template is independently idempotent within the ISO week.
func WeeklyBatchJob() Job {
	return Job{
		Name:   JobWeeklyBatch,
		Window: WindowWeekly,
		Filter: repository.BatchFilter{
			Status:       entity.BatchStatusInProgress,
			ExcludeStage: entity.BatchStageHarvest,
		},
		Templates: []TaskTemplate{
			{
				SOFCode:     "SOF40",
				Description: "Weekly Growth & Health Monitoring",
				Category:    domain.CategoryWeeklyGrowthMonitoring,
				Status:      entity.StatusPending,
				ChecklistLabels: []string{
					"Measure canopy height and spread",
					"Score pest and disease pressure",
					"Photograph representative plants",
				},
			},
			{
				SOFCode:     "SOF03",
				Description: "Weekly Crop Hygiene Checklist",
				Category:    domain.CategoryWeeklyCropHygiene,
				Status:      entity.StatusPending,
				ChecklistLabels: []string{
					"Clean and disinfect work surfaces",
					"Inspect drainage and remove standing water",
					"Confirm waste disposal records",
				},
			},
		},
	}
}

// Jobs returns all recurring jobs keyed by trigger name.
func Jobs() map[string]Job {
	return map[string]Job{
		JobDailyMortality: DailyMortalityJob(),
		JobDailyCloning:   DailyCloningJob(),
		JobWeeklyBatch:    WeeklyBatchJob(),
	}
}
