package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pinecli/internal/render"
	"pinecli/internal/voice"
)

// voiceCmd places and monitors voice calls
var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "Place voice calls through Pine AI",
}

var (
	voiceTo           string
	voiceName         string
	voiceContext      string
	voiceObjective    string
	voiceInstructions string
	voiceCaller       string
	voiceVoice        string
	voiceMaxDuration  int
	voiceNoWait       bool
	voiceJSONOutput   bool
)

var voiceCallCmd = &cobra.Command{
	Use:   "call",
	Short: "Place a voice call",
	Long: `Place a voice call on your behalf. Pine AI dials the number, pursues
the stated objective, and reports back with a summary and transcript.

The number must be in E.164 form, for example +14155550100.`,
	RunE: runVoiceCall,
}

var voiceStatusCmd = &cobra.Command{
	Use:   "status <call-id>",
	Short: "Check the status of a voice call",
	Args:  cobra.ExactArgs(1),
	RunE:  runVoiceStatus,
}

func init() {
	voiceCallCmd.Flags().StringVar(&voiceTo, "to", "", "Number to call (E.164)")
	voiceCallCmd.Flags().StringVar(&voiceName, "name", "", "Who is being called")
	voiceCallCmd.Flags().StringVar(&voiceContext, "context", "", "Background for the call")
	voiceCallCmd.Flags().StringVar(&voiceObjective, "objective", "", "What the call should achieve")
	voiceCallCmd.Flags().StringVar(&voiceInstructions, "instructions", "", "Extra instructions for the agent")
	voiceCallCmd.Flags().StringVar(&voiceCaller, "caller", "", "Caller persona: negotiator or communicator")
	voiceCallCmd.Flags().StringVar(&voiceVoice, "voice", "", "Agent voice: male or female")
	voiceCallCmd.Flags().IntVar(&voiceMaxDuration, "max-duration", 0, "Maximum call length in minutes")
	voiceCallCmd.Flags().BoolVar(&voiceNoWait, "no-wait", false, "Return the call ID without waiting")
	voiceCallCmd.Flags().BoolVar(&voiceJSONOutput, "json", false, "Output as JSON")
	_ = voiceCallCmd.MarkFlagRequired("to")
	_ = voiceCallCmd.MarkFlagRequired("name")
	_ = voiceCallCmd.MarkFlagRequired("context")
	_ = voiceCallCmd.MarkFlagRequired("objective")

	voiceStatusCmd.Flags().BoolVar(&voiceJSONOutput, "json", false, "Output as JSON")

	voiceCmd.AddCommand(voiceCallCmd, voiceStatusCmd)
}

func runVoiceCall(cmd *cobra.Command, args []string) error {
	switch voiceCaller {
	case "", "negotiator", "communicator":
	default:
		return errors.New("--caller must be negotiator or communicator")
	}
	switch voiceVoice {
	case "", "male", "female":
	default:
		return errors.New("--voice must be male or female")
	}

	return runGuarded(cmd, func(ctx context.Context) error {
		apiClient, _, err := requireClient()
		if err != nil {
			return err
		}
		client := voice.New(apiClient)
		console := render.Stdout()

		req := voice.CallRequest{
			To:                 voiceTo,
			Name:               voiceName,
			Context:            voiceContext,
			Objective:          voiceObjective,
			Instructions:       voiceInstructions,
			Caller:             voiceCaller,
			Voice:              voiceVoice,
			MaxDurationMinutes: voiceMaxDuration,
			EnableSummary:      true,
		}

		if voiceNoWait {
			call, err := client.Create(ctx, req)
			if err != nil {
				return err
			}
			if voiceJSONOutput {
				return printJSON(call)
			}
			console.Successf("Call placed: %s", call.CallID)
			console.Dimf("Check progress with: pine voice status %s", call.CallID)
			return nil
		}

		onProgress := func(call *voice.Call) {
			if !voiceJSONOutput {
				console.Dimf("  ● %s", call.Status)
			}
		}
		console.Printf("Calling %s (%s)…\n", voiceName, voiceTo)
		call, err := client.CreateAndWait(ctx, req, onProgress)
		if err != nil {
			return err
		}

		if voiceJSONOutput {
			return printJSON(call)
		}
		renderCall(console, call)
		return nil
	})
}

func runVoiceStatus(cmd *cobra.Command, args []string) error {
	return runGuarded(cmd, func(ctx context.Context) error {
		apiClient, _, err := requireClient()
		if err != nil {
			return err
		}
		call, err := voice.New(apiClient).Get(ctx, args[0])
		if err != nil {
			return err
		}
		if voiceJSONOutput {
			return printJSON(call)
		}
		renderCall(render.Stdout(), call)
		return nil
	})
}

// renderCall prints the call's outcome: status line, summary when the
// service produced one, and the transcript as a table.
func renderCall(console *render.Console, call *voice.Call) {
	switch call.Status {
	case "completed":
		console.Successf("Call %s completed (%s)", call.CallID, formatDuration(call.DurationSeconds))
	case "failed", "cancelled":
		console.Errorf("Call %s %s", call.CallID, call.Status)
	default:
		console.Printf("Call %s: %s\n", call.CallID, call.Status)
	}
	if call.CreditsCharged > 0 {
		console.Dimf("Credits charged: %d", call.CreditsCharged)
	}

	if call.Summary != "" {
		console.Println()
		console.Boldf("Summary")
		console.Printf("  %s\n", call.Summary)
	}

	if len(call.Transcript) > 0 {
		console.Println()
		table := render.NewTable("Transcript", "Speaker", "Text")
		for _, entry := range call.Transcript {
			table.AddRow(entry.Speaker, entry.Text)
		}
		console.Println(table.View())
	}
}

func formatDuration(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm%02ds", seconds/60, seconds%60)
}
