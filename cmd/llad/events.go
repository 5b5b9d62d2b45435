package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/lla-project/llad/pkg/log"
)

type eventsOptions struct {
	session  string
	category string
	port     string
	universe uint
	since    string
	until    string
	format   string
}

func newEventsCmd() *cobra.Command {
	opts := &eventsOptions{}

	cmd := &cobra.Command{
		Use:   "events <file>",
		Short: "View an event log written with --event-log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := opts.filter()
			if err != nil {
				return err
			}
			return viewEvents(cmd.OutOrStdout(), args[0], filter, opts.format)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.session, "session", "", "Only events of this session")
	flags.StringVar(&opts.category, "category", "", "Only events of this category: binding, dmx, device, error")
	flags.StringVar(&opts.port, "port", "", "Only events of this port unique ID")
	flags.UintVar(&opts.universe, "universe", 0, "Only events of this universe")
	flags.StringVar(&opts.since, "since", "", "Only events at or after this RFC 3339 time")
	flags.StringVar(&opts.until, "until", "", "Only events before this RFC 3339 time")
	flags.StringVar(&opts.format, "format", "text", "Output format: text, jsonl")
	return cmd
}

func (o *eventsOptions) filter() (log.Filter, error) {
	filter := log.Filter{
		SessionID:  o.session,
		PortID:     o.port,
		UniverseID: o.universe,
	}

	if o.category != "" {
		c, ok := log.ParseCategory(o.category)
		if !ok {
			return filter, fmt.Errorf("unknown category %q", o.category)
		}
		filter.Category = &c
	}
	if o.since != "" {
		t, err := time.Parse(time.RFC3339, o.since)
		if err != nil {
			return filter, fmt.Errorf("invalid --since: %w", err)
		}
		filter.TimeStart = &t
	}
	if o.until != "" {
		t, err := time.Parse(time.RFC3339, o.until)
		if err != nil {
			return filter, fmt.Errorf("invalid --until: %w", err)
		}
		filter.TimeEnd = &t
	}
	return filter, nil
}

func viewEvents(w io.Writer, path string, filter log.Filter, format string) error {
	if format != "text" && format != "jsonl" {
		return fmt.Errorf("unknown format %q", format)
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}

	r, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return err
	}
	defer r.Close()

	events, err := r.ReadAll()
	if err != nil {
		return err
	}

	for _, event := range events {
		if format == "jsonl" {
			if err := writeJSONEvent(w, event); err != nil {
				return err
			}
			continue
		}
		formatEvent(w, event)
	}
	return nil
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [%s] %-7s", ts, shortenSessionID(event.SessionID), event.Category)

	if event.PortID != "" {
		fmt.Fprintf(w, " port=%s", event.PortID)
	}
	if event.UniverseID != 0 {
		fmt.Fprintf(w, " universe=%d", event.UniverseID)
	}

	switch {
	case event.Binding != nil:
		fmt.Fprintf(w, " %s", event.Binding.Action)
		if event.Binding.Previous != 0 {
			fmt.Fprintf(w, " previous=%d", event.Binding.Previous)
		}
	case event.DMX != nil:
		fmt.Fprintf(w, " %s channels=%d ok=%t", event.DMX.Direction, event.DMX.Frame.Size(), event.DMX.OK)
	case event.Device != nil:
		fmt.Fprintf(w, " %s %q plugin=%d device=%d ports=%d",
			event.Device.Action, event.Device.Name, event.Device.PluginID, event.Device.DeviceID, event.Device.Ports)
	case event.Error != nil:
		fmt.Fprintf(w, " %s", event.Error.Message)
		if event.Error.Context != "" {
			fmt.Fprintf(w, " (%s)", event.Error.Context)
		}
	}
	fmt.Fprintln(w)
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

type jsonEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	SessionID  string    `json:"session_id"`
	Category   string    `json:"category"`
	PortID     string    `json:"port_id,omitempty"`
	UniverseID uint      `json:"universe_id,omitempty"`
	Action     string    `json:"action,omitempty"`
	Previous   uint      `json:"previous,omitempty"`
	Direction  string    `json:"direction,omitempty"`
	Frame      []int     `json:"frame,omitempty"`
	OK         *bool     `json:"ok,omitempty"`
	Device     string    `json:"device,omitempty"`
	Error      string    `json:"error,omitempty"`
}

func writeJSONEvent(w io.Writer, event log.Event) error {
	je := jsonEvent{
		Timestamp:  event.Timestamp,
		SessionID:  event.SessionID,
		Category:   event.Category.String(),
		PortID:     event.PortID,
		UniverseID: event.UniverseID,
	}

	switch {
	case event.Binding != nil:
		je.Action = event.Binding.Action.String()
		je.Previous = event.Binding.Previous
	case event.DMX != nil:
		je.Direction = event.DMX.Direction.String()
		for _, v := range event.DMX.Frame.Data() {
			je.Frame = append(je.Frame, int(v))
		}
		ok := event.DMX.OK
		je.OK = &ok
	case event.Device != nil:
		je.Action = event.Device.Action.String()
		je.Device = event.Device.Name
	case event.Error != nil:
		je.Error = event.Error.Message
	}

	data, err := json.Marshal(je)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
