package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/vibedraft/internal/model"
)

// streamedEvents are listed in the command help in the order a game emits them
var streamedEvents = []model.EventType{
	model.EventPlayerJoined,
	model.EventWordsSubmitted,
	model.EventPickingStarted,
	model.EventWordPicked,
	model.EventDraftComplete,
	model.EventWorldGenerated,
	model.EventGenerationFailed,
	model.EventCardGenerated,
	model.EventImageReady,
}

// errStreamDone stops reading once the awaited event has arrived
var errStreamDone = errors.New("stream done")

func newEventsCmd() *cobra.Command {
	var (
		jsonOutput bool
		until      string
	)

	names := make([]string, len(streamedEvents))
	for i, e := range streamedEvents {
		names[i] = "  " + string(e)
	}

	cmd := &cobra.Command{
		Use:   "events <session-id>",
		Short: "Stream a session's live events",
		Long: "Stream the session's server-sent events until interrupted.\n\nEvents:\n" +
			strings.Join(names, "\n") +
			"\n\nWith --until, exit as soon as the named event arrives.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return streamEvents(ctx, args[0], jsonOutput, until)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().StringVar(&until, "until", "", "Exit after this event type is received")

	return cmd
}

// SSEEvent is one received event as printed by --json
type SSEEvent struct {
	Time  time.Time       `json:"time"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func streamEvents(ctx context.Context, sessionID string, jsonOutput bool, until string) error {
	body, err := client.Stream(ctx, "/api/v1/sessions/"+sessionID+"/events")
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	if !jsonOutput {
		fmt.Printf("Connected to session %s\n", sessionID)
	}

	err = readEvents(body, func(event, data string) error {
		printEvent(event, data, jsonOutput)
		if until != "" && event == until {
			return errStreamDone
		}
		return nil
	})
	switch {
	case errors.Is(err, errStreamDone), err == nil:
	case ctx.Err() != nil:
		// interrupted
	default:
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		fmt.Println("Disconnected")
	}
	return nil
}

// readEvents splits an SSE stream into events and hands each to fn
func readEvents(r io.Reader, fn func(event, data string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), 1<<20)

	var (
		event string
		data  []string
	)
	for scanner.Scan() {
		line := scanner.Text()
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch {
		case line == "":
			if event != "" {
				if err := fn(event, strings.Join(data, "\n")); err != nil {
					return err
				}
			}
			event, data = "", nil
		case field == "event":
			event = value
		case field == "data":
			data = append(data, value)
		}
	}
	return scanner.Err()
}

func printEvent(event, data string, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		raw := json.RawMessage(data)
		if !json.Valid(raw) {
			raw, _ = json.Marshal(data)
		}
		line, _ := json.Marshal(SSEEvent{Time: now, Event: event, Data: raw})
		fmt.Println(string(line))
		return
	}

	display := strings.ReplaceAll(data, "\n", " ")
	if len(display) > 100 {
		display = display[:100] + "..."
	}
	fmt.Printf("[%s] %s: %s\n", now.Format("15:04:05"), event, display)
}
