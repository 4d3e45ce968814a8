package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avoronov/snapledger/internal/capture"
	"github.com/avoronov/snapledger/internal/cli"
	"github.com/avoronov/snapledger/internal/common"
	"github.com/avoronov/snapledger/internal/files"
	"github.com/avoronov/snapledger/internal/model"
	"github.com/avoronov/snapledger/internal/service"
)

func captureCmd() *cobra.Command {
	var (
		text    string
		image   string
		voice   string
		caption string
	)

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture a receipt and confirm it interactively",
		Long: `Capture a receipt from free text, a photo, or a voice note. The extraction
is previewed for approval; type a correction to revise it, approve to save,
or reject to discard.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := buildInput(text, image, voice, caption)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			extractor, err := newExtractor()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			wf := capture.New(
				extractor,
				capture.NewMemoryPendingStore(),
				store,
				files.NewLocalFetcher(),
				newConsoleNotifier(out),
			)

			userID := currentUserID()
			var preview *model.Preview
			err = common.WithRetry(ctx, func() error {
				var beginErr error
				preview, beginErr = wf.BeginCapture(ctx, userID, in)
				return beginErr
			}, service.RetryOptions{MaxAttempts: 3})
			if err != nil {
				common.LogError(err, "capture failed", common.Fields{"kind": in.Kind})
				fmt.Fprintln(out, cli.ErrorStyle.Render(common.UserMessage(err)))
				return err
			}

			reader := cli.NewLineReader(cmd.InOrStdin())
			for {
				fmt.Fprintln(out, cli.RenderPreview(preview))
				wf.NotePreviewShown(userID, preview.Token, "console")

				fmt.Fprint(out, "Approve [y], reject [n], or type a correction: ")
				line, err := reader.ReadLine(ctx)
				if err != nil {
					if errors.Is(err, cli.ErrInputCancelled) {
						return nil
					}
					return err
				}

				switch strings.ToLower(line) {
				case "y", "yes":
					result, err := wf.Resolve(ctx, userID, capture.ActionApprove, preview.Token)
					if err != nil {
						fmt.Fprintln(out, cli.ErrorStyle.Render(common.UserMessage(err)))
						continue
					}
					fmt.Fprintln(out, cli.SuccessStyle.Render(fmt.Sprintf("Saved, ID %d", result.ReceiptID)))
					return nil

				case "n", "no":
					if _, err := wf.Resolve(ctx, userID, capture.ActionReject, preview.Token); err != nil {
						fmt.Fprintln(out, cli.ErrorStyle.Render(common.UserMessage(err)))
						continue
					}
					fmt.Fprintln(out, cli.SubtleStyle.Render("Discarded."))
					return nil

				case "":
					continue

				default:
					revised, err := wf.Revise(ctx, userID, capture.Input{Kind: capture.InputText, Text: line})
					if err != nil {
						fmt.Fprintln(out, cli.WarningStyle.Render(common.UserMessage(err)))
						continue
					}
					preview = revised
				}
			}
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "free-text purchase description")
	cmd.Flags().StringVar(&image, "image", "", "path to a receipt photo")
	cmd.Flags().StringVar(&voice, "voice", "", "path to a voice note")
	cmd.Flags().StringVar(&caption, "caption", "", "optional caption for --image")

	return cmd
}

func buildInput(text, image, voice, caption string) (capture.Input, error) {
	set := 0
	for _, v := range []string{text, image, voice} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return capture.Input{}, fmt.Errorf("exactly one of --text, --image or --voice is required")
	}

	switch {
	case text != "":
		return capture.Input{Kind: capture.InputText, Text: text}, nil
	case image != "":
		return capture.Input{Kind: capture.InputImage, FileRef: image, Caption: caption}, nil
	default:
		return capture.Input{Kind: capture.InputVoice, FileRef: voice}, nil
	}
}
