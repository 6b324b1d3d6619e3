package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/BearBump/TrainBox/internal/broker/kafka"
	"github.com/BearBump/TrainBox/internal/broker/messages"
	"github.com/spf13/cobra"
)

type eventSource interface {
	Consume(ctx context.Context, handler func(key, value []byte) error) error
	Close() error
}

func newEventsCmd(root *rootOpts) *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Tail train.resolved events from Kafka",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Kafka.Host == "" {
				return fmt.Errorf("kafka.host is not configured")
			}
			topic := cfg.Kafka.TrainResolvedTopicName
			if topic == "" {
				topic = "train.resolved"
			}
			brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
			return tailEvents(cmd, kafka.NewConsumer(brokers, topic, group))
		},
	}
	cmd.Flags().StringVarP(&group, "group", "g", "", "Consumer group; empty tails from the latest offset without committing")
	return cmd
}

func tailEvents(cmd *cobra.Command, src eventSource) error {
	defer func() { _ = src.Close() }()

	out := cmd.OutOrStdout()
	return src.Consume(cmd.Context(), func(_ []byte, value []byte) error {
		var ev messages.TrainResolved
		if err := json.Unmarshal(value, &ev); err != nil {
			// чужие сообщения в топике пропускаем
			cmd.PrintErrf("skip malformed event: %v\n", err)
			return nil
		}
		delay := "n/a"
		if ev.DelayMinutes != nil {
			delay = fmt.Sprintf("%+d min", *ev.DelayMinutes)
		}
		_, err := fmt.Fprintf(out, "%s  %-4s %-6s %-9s %-8s delay %s\n",
			ev.ResolvedAt.Local().Format("2006-01-02 15:04:05"), ev.TrainKind, ev.TrainNumber, ev.OriginCode, ev.JourneyState, delay)
		return err
	})
}
