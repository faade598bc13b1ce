package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"

	pkgkafka "github.com/aman3729/credit-score/pkg/kafka"
)

func eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect decision events on Kafka",
	}
	cmd.AddCommand(eventsTailCmd())
	return cmd
}

func eventsTailCmd() *cobra.Command {
	var (
		brokers   []string
		topic     string
		group     string
		fromStart bool
	)
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print decision events as they are published",
		RunE: func(cmd *cobra.Command, args []string) error {
			offset := kafkago.LastOffset
			if fromStart {
				offset = kafkago.FirstOffset
			}
			out := cmd.OutOrStdout()
			consumer, err := pkgkafka.NewConsumer(
				pkgkafka.Config{ClientID: "decisionctl", ConsumerGroup: group, Brokers: brokers},
				topic,
				offset,
				func(_ context.Context, msg pkgkafka.Message) error {
					_, err := fmt.Fprintln(out, formatEvent(msg))
					return err
				},
				slog.New(slog.NewTextHandler(io.Discard, nil)),
			)
			if err != nil {
				return err
			}
			defer consumer.Close()
			return consumer.Start(cmd.Context())
		},
	}
	cmd.Flags().StringSliceVar(&brokers, "brokers", []string{"localhost:9092"}, "Kafka brokers")
	cmd.Flags().StringVar(&topic, "topic", "credit.decision-events", "Decision event topic")
	cmd.Flags().StringVar(&group, "group", "", "Consumer group; without one only partition 0 is read")
	cmd.Flags().BoolVar(&fromStart, "from-start", false, "Read from the oldest retained event")
	return cmd
}

// formatEvent renders one event as a single line: type, borrower, payload.
func formatEvent(msg pkgkafka.Message) string {
	eventType := msg.Headers["event_type"]
	if eventType == "" {
		eventType = "unknown"
	}
	return strings.Join([]string{eventType, string(msg.Key), string(msg.Value)}, "\t")
}
