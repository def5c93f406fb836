package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/eventstaff/attendance/internal/core/events"
	"github.com/eventstaff/attendance/pkg/logger"
	"github.com/spf13/cobra"
)

var busCmd = &cobra.Command{
	Use:   "bus",
	Short: "Event bus commands",
	Long:  `Inspect the in-process event bus: publish test events and watch handlers run`,
}

var publishBusCmd = &cobra.Command{
	Use:       "publish [time_record.created|employee.changed]",
	Short:     "Publish a test event",
	Long:      `Publish a test event to the event bus for testing and debugging`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{events.EventTypeTimeRecordCreated, events.EventTypeEmployeeChanged},
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(cmd.Context(), args[0])
	},
}

var (
	busEventID    int64
	busEmployeeID int64
)

func publishTestEvent(ctx context.Context, eventType string) error {
	lg := logger.L()
	bus := events.NewEventBus(lg)

	bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		eventID, _ := events.EventIDOf(event)
		lg.Info("test handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"attendance_event_id", eventID,
			"payload", event.Payload())
		return nil
	})

	var testEvent events.Event
	switch eventType {
	case events.EventTypeTimeRecordCreated:
		testEvent = events.NewTimeRecordCreatedEvent(0, busEmployeeID, busEventID, "check_in", "working", "cli", time.Now().UTC())
	case events.EventTypeEmployeeChanged:
		testEvent = events.NewEmployeeChangedEvent(busEmployeeID, busEventID, "updated")
	default:
		return fmt.Errorf("unknown event type %q", eventType)
	}

	lg.Info("publishing test event", "event_type", eventType, "event_id", testEvent.EventID())
	if err := bus.Publish(ctx, testEvent); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	drainCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := bus.Drain(drainCtx); err != nil {
		return err
	}
	lg.Info("test event published successfully")
	return nil
}

func init() {
	publishBusCmd.Flags().Int64Var(&busEventID, "event-id", 1, "attendance event id carried by the test event")
	publishBusCmd.Flags().Int64Var(&busEmployeeID, "employee-id", 1, "employee id carried by the test event")

	busCmd.AddCommand(publishBusCmd)
	rootCmd.AddCommand(busCmd)
}
