package tests

// Replay test validates workflow determinism by replaying a recorded history.
//
// The test is a stub that will be activated once we have a recorded history
// JSON in tests/testdata/. To generate:
//
//  1. Run the worker + start a campaign via CLI
//  2. Export history: temporal workflow show --workflow-id WID -o json > tests/testdata/fuzz_campaign_history.json
//  3. Uncomment the test below.
//
// import (
//     "testing"
//     "go.temporal.io/sdk/worker"
//     "github.com/protocol-parity/parity-go/internal/temporal/workflows"
// )
//
// func TestReplayFuzzCampaign(t *testing.T) {
//     replayer := worker.NewWorkflowReplayer()
//     replayer.RegisterWorkflow(workflows.FuzzCampaignWorkflow)
//     err := replayer.ReplayWorkflowHistoryFromJSONFile(nil, "testdata/fuzz_campaign_history.json")
//     if err != nil {
//         t.Fatalf("replay failed: %v", err)
//     }
// }
