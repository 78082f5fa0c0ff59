package main

import (
	"context"

	"github.com/spf13/cobra"

	"pinecli/internal/render"
)

// taskCmd controls the background task attached to a session
var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Start or stop a session's background task",
}

var taskStartCmd = &cobra.Command{
	Use:   "start <session-id>",
	Short: "Start the session's task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskStart,
}

var taskStopCmd = &cobra.Command{
	Use:   "stop <session-id>",
	Short: "Stop the session's running task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskStop,
}

func init() {
	taskCmd.AddCommand(taskStartCmd, taskStopCmd)
}

func runTaskStart(cmd *cobra.Command, args []string) error {
	return runGuarded(cmd, func(ctx context.Context) error {
		client, _, err := requireClient()
		if err != nil {
			return err
		}
		result, err := client.StartTask(ctx, args[0])
		if err != nil {
			return err
		}
		console := render.Stdout()
		console.Successf("Task started.")
		if result.Message != "" {
			console.Dimf("%s", result.Message)
		}
		return nil
	})
}

func runTaskStop(cmd *cobra.Command, args []string) error {
	return runGuarded(cmd, func(ctx context.Context) error {
		client, _, err := requireClient()
		if err != nil {
			return err
		}
		result, err := client.StopTask(ctx, args[0])
		if err != nil {
			return err
		}
		console := render.Stdout()
		console.Successf("Task stopped.")
		if result.Message != "" {
			console.Dimf("%s", result.Message)
		}
		return nil
	})
}
