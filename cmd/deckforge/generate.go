package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/deckforge/internal/domain"
	"github.com/phrazzld/deckforge/internal/events"
	"github.com/phrazzld/deckforge/internal/orchestrator"
	"github.com/spf13/cobra"
)

// progressBuffer sizes the event channel feeding the progress printer.
const progressBuffer = 256

type generateOptions struct {
	theme string
	style string
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	genOpts := &generateOptions{}

	cmd := &cobra.Command{
		Use:       "generate <section>",
		Short:     "Generate one section and stream its progress",
		ValidArgs: sectionArgs(),
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			section, err := domain.ParseSectionName(args[0])
			if err != nil {
				return err
			}

			cfg, log, err := opts.loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			generator, err := newGenerator(ctx, cfg.LLM, log)
			if err != nil {
				return err
			}
			db, err := openDatabase(ctx, cfg.Database, log)
			if err != nil {
				return err
			}

			app, err := newApplication(ctx, cfg, log, generator, db)
			if err != nil {
				if db != nil {
					_ = db.Close()
				}
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer app.cleanup()

			return app.runGenerate(ctx, cmd.OutOrStdout(), orchestrator.Request{
				Section: section,
				Theme:   genOpts.theme,
				Style:   genOpts.style,
			})
		},
	}

	cmd.Flags().StringVar(&genOpts.theme, "theme", "", "deck theme (required)")
	cmd.Flags().StringVar(&genOpts.style, "style", "", "optional visual style")
	_ = cmd.MarkFlagRequired("theme")
	return cmd
}

// runGenerate runs one section synchronously, printing a line per progress
// event to out, followed by a summary.
func (app *application) runGenerate(ctx context.Context, out io.Writer, req orchestrator.Request) error {
	stream := events.NewChannelHandler(progressBuffer)
	app.emitter.RegisterHandler(stream)

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for event := range stream.Events() {
			if line := formatEvent(event); line != "" {
				fmt.Fprintln(out, line)
			}
		}
	}()

	outcome, err := app.controller.GenerateSection(ctx, req)
	stream.Close()
	<-printed

	if dropped := stream.Dropped(); dropped > 0 {
		app.logger.Warn("progress lines dropped", "count", dropped)
	}
	if err != nil {
		return fmt.Errorf("generation of %s failed: %w", req.Section, err)
	}

	fmt.Fprintf(out, "%s: %d ready, %d failed (run %s)\n",
		outcome.Section.Name.Label(), outcome.Ready, outcome.Failed, outcome.RunID)
	return nil
}

// formatEvent renders a progress event as one line. Events with nothing to
// show yield an empty string.
func formatEvent(event *events.Event) string {
	if event == nil {
		return ""
	}
	prefix := fmt.Sprintf("[%s]", event.Section)

	switch event.Type {
	case events.TypeStageChanged:
		return fmt.Sprintf("%s stage %s", prefix, event.Progress.Stage)
	case events.TypeSectionPublished:
		return fmt.Sprintf("%s metadata ready for %d items", prefix, len(event.Items))
	case events.TypeItemUpdated:
		if event.Item == nil {
			return ""
		}
		return fmt.Sprintf("%s %s: %s", prefix, event.Item.Name, event.Item.Status)
	case events.TypeProgress:
		return fmt.Sprintf("%s %s %d/%d", prefix, event.Progress.Stage, event.Progress.Completed, event.Progress.Total)
	case events.TypeRetryScheduled:
		return fmt.Sprintf("%s rate limited, retrying in %s (%d left)", prefix, event.NextDelay, event.RemainingRetries)
	case events.TypeRetryExhausted:
		return fmt.Sprintf("%s retries exhausted: %s", prefix, event.Error)
	case events.TypeRunFinished:
		if event.Error != "" {
			return fmt.Sprintf("%s failed: %s", prefix, event.Error)
		}
		return fmt.Sprintf("%s done", prefix)
	default:
		return ""
	}
}

func sectionArgs() []string {
	names := make([]string, 0, len(domain.SectionNames))
	for _, name := range domain.SectionNames {
		names = append(names, string(name))
	}
	return names
}
