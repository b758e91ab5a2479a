package workflows_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/testsuite"

	"github.com/protocol-parity/parity-go/internal/corpus"
	"github.com/protocol-parity/parity-go/internal/temporal/activities"
	"github.com/protocol-parity/parity-go/internal/temporal/workflows"
)

type MaintenanceSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env *testsuite.TestWorkflowEnvironment
}

func (s *MaintenanceSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	s.env.RegisterActivity(&activities.Activities{})
}

func (s *MaintenanceSuite) AfterTest(_, _ string) {
	s.env.AssertExpectations(s.T())
}

func (s *MaintenanceSuite) TestCleanupAndStats() {
	s.env.OnActivity("CleanupCorpus", testAnyCtx, activities.CleanupCorpusInput{RetentionDays: 14}).
		Return(activities.CleanupCorpusOutput{FilesRemoved: 7}, nil)
	s.env.OnActivity("CollectCorpusStats", testAnyCtx, testAnyInput).
		Return(activities.CorpusStatsOutput{
			Stats: corpus.Stats{StableCases: 90, Divergences: 5, Crashes: 5, TotalCases: 100},
		}, nil)

	s.env.ExecuteWorkflow(workflows.CorpusMaintenanceWorkflow, workflows.MaintenanceInput{RetentionDays: 14})
	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result workflows.MaintenanceResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal(7, result.FilesRemoved)
	s.Equal(100, result.Stats.TotalCases)
}

func (s *MaintenanceSuite) TestZeroRetentionUsesDefault() {
	s.env.OnActivity("CleanupCorpus", testAnyCtx, activities.CleanupCorpusInput{RetentionDays: workflows.DefaultRetentionDays}).
		Return(activities.CleanupCorpusOutput{}, nil)
	s.env.OnActivity("CollectCorpusStats", testAnyCtx, testAnyInput).
		Return(activities.CorpusStatsOutput{}, nil)

	s.env.ExecuteWorkflow(workflows.CorpusMaintenanceWorkflow, workflows.MaintenanceInput{})
	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
}

func (s *MaintenanceSuite) TestCleanupFailure() {
	s.env.OnActivity("CleanupCorpus", testAnyCtx, testAnyInput).Return(
		activities.CleanupCorpusOutput{}, fmt.Errorf("corpus dir missing"))

	s.env.ExecuteWorkflow(workflows.CorpusMaintenanceWorkflow, workflows.MaintenanceInput{RetentionDays: 7})
	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
}

func TestMaintenanceSuite(t *testing.T) {
	suite.Run(t, new(MaintenanceSuite))
}
