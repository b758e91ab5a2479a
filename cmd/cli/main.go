// Command parity is a CLI tool for triggering and inspecting fuzzing campaigns.
//
// Usage:
//
//	parity campaign --cases N [--seed S] [--batch-size B]
//	parity progress --workflow-id WID
//	parity status   --workflow-id WID
//	parity maintain [--retention-days D]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"

	"github.com/protocol-parity/parity-go/internal/config"
	"github.com/protocol-parity/parity-go/internal/temporal/versioning"
	"github.com/protocol-parity/parity-go/internal/temporal/workflows"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "campaign":
		cmdCampaign(os.Args[2:])
	case "progress":
		cmdProgress(os.Args[2:])
	case "status":
		cmdStatus(os.Args[2:])
	case "maintain":
		cmdMaintain(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: parity <campaign|progress|status|maintain> [flags]")
	os.Exit(1)
}

func dial() client.Client {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	c, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalHost,
		Namespace: cfg.TemporalNS,
	})
	if err != nil {
		log.Fatalf("unable to create Temporal client: %v", err)
	}
	return c
}

func cmdCampaign(args []string) {
	fs := flag.NewFlagSet("campaign", flag.ExitOnError)
	cases := fs.Int("cases", 1000, "total cases to run (required)")
	seed := fs.Uint64("seed", 42, "generator seed")
	batchSize := fs.Int("batch-size", workflows.DefaultBatchSize, "cases per activity batch")
	_ = fs.Parse(args)

	if *cases <= 0 {
		fs.Usage()
		os.Exit(1)
	}

	input := workflows.CampaignInput{
		Seed:       *seed,
		TotalCases: *cases,
		BatchSize:  *batchSize,
	}

	wfID := fmt.Sprintf("fuzz-campaign-%d-%d", *seed, time.Now().Unix())
	c := dial()
	defer c.Close()

	run, err := c.ExecuteWorkflow(context.Background(), client.StartWorkflowOptions{
		ID:        wfID,
		TaskQueue: versioning.QueueCampaign,
	}, workflows.FuzzCampaignWorkflow, input)
	if err != nil {
		log.Fatalf("failed to start workflow: %v", err)
	}
	fmt.Printf("started campaign %s (run=%s)\n", run.GetID(), run.GetRunID())
}

func cmdProgress(args []string) {
	fs := flag.NewFlagSet("progress", flag.ExitOnError)
	wfID := fs.String("workflow-id", "", "workflow ID (required)")
	_ = fs.Parse(args)

	if *wfID == "" {
		fs.Usage()
		os.Exit(1)
	}

	c := dial()
	defer c.Close()

	resp, err := c.QueryWorkflow(context.Background(), *wfID, "", workflows.ProgressQuery)
	if err != nil {
		log.Fatalf("failed to query workflow: %v", err)
	}

	var progress workflows.CampaignProgress
	if err := resp.Get(&progress); err != nil {
		log.Fatalf("failed to decode progress: %v", err)
	}
	printJSON(progress)
}

func cmdStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	wfID := fs.String("workflow-id", "", "workflow ID (required)")
	_ = fs.Parse(args)

	if *wfID == "" {
		fs.Usage()
		os.Exit(1)
	}

	c := dial()
	defer c.Close()

	desc, err := c.DescribeWorkflowExecution(context.Background(), *wfID, "")
	if err != nil {
		log.Fatalf("failed to describe workflow: %v", err)
	}

	info := desc.WorkflowExecutionInfo
	printJSON(map[string]any{
		"workflow_id": *wfID,
		"status":      info.Status.String(),
		"running":     info.Status == enums.WORKFLOW_EXECUTION_STATUS_RUNNING,
		"start_time":  info.StartTime,
		"close_time":  info.CloseTime,
	})
}

func cmdMaintain(args []string) {
	fs := flag.NewFlagSet("maintain", flag.ExitOnError)
	retention := fs.Int("retention-days", workflows.DefaultRetentionDays, "delete corpus entries older than this")
	_ = fs.Parse(args)

	input := workflows.MaintenanceInput{RetentionDays: *retention}

	wfID := fmt.Sprintf("corpus-maintenance-%d", time.Now().Unix())
	c := dial()
	defer c.Close()

	run, err := c.ExecuteWorkflow(context.Background(), client.StartWorkflowOptions{
		ID:        wfID,
		TaskQueue: versioning.QueueMaintenance,
	}, workflows.CorpusMaintenanceWorkflow, input)
	if err != nil {
		log.Fatalf("failed to start workflow: %v", err)
	}

	var result workflows.MaintenanceResult
	if err := run.Get(context.Background(), &result); err != nil {
		log.Fatalf("maintenance failed: %v", err)
	}
	printJSON(result)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal: %v", err)
	}
	fmt.Println(string(data))
}
