// Package capture implements the multi-turn receipt capture-and-confirm
// workflow: raw input is extracted into a candidate receipt, previewed to the
// user, revised through follow-up comments and committed exactly once on
// explicit approval. Staleness tokens guard every approve/reject against
// racing ahead of a newer candidate.
package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/avoronov/snapledger/internal/ai"
	"github.com/avoronov/snapledger/internal/common"
	"github.com/avoronov/snapledger/internal/model"
	"github.com/avoronov/snapledger/internal/parse"
	"github.com/avoronov/snapledger/internal/sanitize"
	"github.com/avoronov/snapledger/internal/service"
)

// InputKind selects the pre-processing path for a capture or revision.
type InputKind string

// Supported input kinds.
const (
	InputText  InputKind = "text"
	InputImage InputKind = "image"
	InputVoice InputKind = "voice"
)

// Input is one user turn: free text, a photo reference, or a voice note
// reference. Caption only applies to images.
type Input struct {
	Kind    InputKind
	Text    string
	FileRef string
	Caption string
}

// Action resolves a pending candidate.
type Action string

// Supported resolution actions.
const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// CommitResult reports how a pending candidate was resolved.
type CommitResult struct {
	ReceiptID int64
	Discarded bool
}

// Config holds workflow limits.
type Config struct {
	ImageTypes    []string
	VoiceTypes    []string
	MaxTextLength int
	MaxImageBytes int64
	MaxVoiceBytes int64
}

// DefaultConfig returns the default workflow limits.
func DefaultConfig() Config {
	return Config{
		ImageTypes:    []string{"image/jpeg", "image/png", "image/webp"},
		VoiceTypes:    []string{"audio/ogg", "application/ogg", "audio/mpeg", "audio/wave", "audio/wav"},
		MaxTextLength: 2000,
		MaxImageBytes: 10 << 20,
		MaxVoiceBytes: 5 << 20,
	}
}

// Workflow drives the capture state machine for every user. All collaborators
// are injected; the pending store is the only mutable state.
type Workflow struct {
	extractor ai.Extractor
	pending   PendingStore
	store     service.ReceiptStore
	files     service.FileFetcher
	notifier  service.Notifier
	config    Config
}

// New creates a workflow with default limits.
func New(extractor ai.Extractor, pending PendingStore, store service.ReceiptStore, files service.FileFetcher, notifier service.Notifier) *Workflow {
	return NewWithConfig(extractor, pending, store, files, notifier, DefaultConfig())
}

// NewWithConfig creates a workflow with custom limits.
func NewWithConfig(extractor ai.Extractor, pending PendingStore, store service.ReceiptStore, files service.FileFetcher, notifier service.Notifier, config Config) *Workflow {
	return &Workflow{
		extractor: extractor,
		pending:   pending,
		store:     store,
		files:     files,
		notifier:  notifier,
		config:    config,
	}
}

// BeginCapture starts a new capture cycle from raw input. On success the
// candidate replaces whatever was pending for the user and a preview with a
// fresh token is returned. On failure any previously pending entry is left
// untouched.
func (w *Workflow) BeginCapture(ctx context.Context, userID int64, in Input) (*model.Preview, error) {
	raw, echo, err := w.extract(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	return w.stageCandidate(userID, raw, echo)
}

// Revise applies a follow-up comment (text or voice) to the currently pending
// candidate. The revision is derived from the staged candidate's JSON, so
// consecutive revisions chain off the latest accepted edit. The replacement
// entry gets a new token and the prior preview's actions are cleared
// best-effort.
func (w *Workflow) Revise(ctx context.Context, userID int64, in Input) (*model.Preview, error) {
	entry, ok := w.pending.Get(userID)
	if !ok {
		return nil, fmt.Errorf("%w: nothing to revise", common.ErrNoPendingCapture)
	}

	var (
		comment string
		echo    string
	)
	switch in.Kind {
	case InputText:
		comment = sanitize.Text(in.Text, w.config.MaxTextLength)
	case InputVoice:
		transcript, err := w.transcribe(ctx, userID, in.FileRef)
		if err != nil {
			return nil, err
		}
		comment = transcript
		echo = transcript
	default:
		return nil, common.Validationf("unsupported revision input kind %q", in.Kind)
	}
	if comment == "" {
		return nil, common.Validationf("revision comment is empty")
	}

	raw, err := w.extractor.ApplyComment(ctx, entry.OriginalJSON, comment)
	if err != nil {
		return nil, err
	}

	preview, err := w.stageCandidate(userID, raw, echo)
	if err != nil {
		return nil, err
	}

	// The superseded preview's buttons are inert thanks to the token check;
	// clearing them is a courtesy that may fail without consequence.
	if entry.PreviewMessageRef != "" {
		if clearErr := w.notifier.ClearActions(ctx, userID, entry.PreviewMessageRef); clearErr != nil {
			slog.Warn("failed to clear superseded preview actions",
				"user_id", userID, "message_ref", entry.PreviewMessageRef, "error", clearErr)
		}
	}

	return preview, nil
}

// Resolve commits or discards the pending candidate. The action is honored
// only when its token matches the staged entry; anything else is a terminal
// no-op surfaced as a stale action.
func (w *Workflow) Resolve(ctx context.Context, userID int64, action Action, token string) (*CommitResult, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", common.ErrStaleAction)
	}
	if action != ActionApprove && action != ActionReject {
		return nil, fmt.Errorf("%w: unknown action %q", common.ErrStaleAction, action)
	}

	entry, ok := w.pending.Get(userID)
	if !ok {
		return nil, fmt.Errorf("%w: no entry for user", common.ErrNoPendingCapture)
	}
	if entry.Token != token {
		return nil, fmt.Errorf("%w: token superseded", common.ErrStaleAction)
	}

	if action == ActionReject {
		w.pending.Clear(userID)
		slog.Info("candidate discarded", "user_id", userID)
		return &CommitResult{Discarded: true}, nil
	}

	id, err := w.store.SaveReceipt(ctx, entry.Candidate)
	if err != nil {
		// The entry stays staged; the user may retry the same approval.
		return nil, common.ServiceFailure("save receipt", err)
	}

	w.pending.Clear(userID)
	slog.Info("receipt committed", "user_id", userID, "receipt_id", id)
	return &CommitResult{ReceiptID: id}, nil
}

// NotePreviewShown records which transport message renders the current
// candidate's actions, so a later revision can clear them. Stale tokens are
// ignored.
func (w *Workflow) NotePreviewShown(userID int64, token, messageRef string) {
	w.pending.SetPreviewMessage(userID, token, messageRef)
}

// extract runs the per-kind pre-processing path and converges on a raw
// extraction string. For voice it also returns the transcript echo.
func (w *Workflow) extract(ctx context.Context, userID int64, in Input) (raw, echo string, err error) {
	switch in.Kind {
	case InputText:
		text := sanitize.Text(in.Text, w.config.MaxTextLength)
		if text == "" {
			return "", "", common.Validationf("text input is empty")
		}
		raw, err = w.extractor.ExtractFromText(ctx, text)
		return raw, "", err

	case InputImage:
		data, ferr := w.fetchValidated(ctx, in.FileRef, w.config.ImageTypes, w.config.MaxImageBytes)
		if ferr != nil {
			return "", "", ferr
		}
		caption := sanitize.Text(in.Caption, w.config.MaxTextLength)
		raw, err = w.extractor.ExtractFromImage(ctx, data, caption)
		return raw, "", err

	case InputVoice:
		transcript, terr := w.transcribe(ctx, userID, in.FileRef)
		if terr != nil {
			return "", "", terr
		}
		raw, err = w.extractor.ExtractFromText(ctx, transcript)
		return raw, transcript, err

	default:
		return "", "", common.Validationf("unsupported input kind %q", in.Kind)
	}
}

// transcribe fetches and validates a voice note, transcribes it and echoes
// the transcript back to the user. The echo is fire-and-forget: a failed
// send is logged and never aborts the flow.
func (w *Workflow) transcribe(ctx context.Context, userID int64, fileRef string) (string, error) {
	data, err := w.fetchValidated(ctx, fileRef, w.config.VoiceTypes, w.config.MaxVoiceBytes)
	if err != nil {
		return "", err
	}

	transcript, err := w.extractor.TranscribeVoice(ctx, data)
	if err != nil {
		return "", err
	}
	transcript = sanitize.Text(transcript, w.config.MaxTextLength)
	if transcript == "" {
		return "", common.Validationf("voice note transcribed to nothing")
	}

	if echoErr := w.notifier.EchoTranscript(ctx, userID, transcript); echoErr != nil {
		slog.Warn("failed to echo transcript", "user_id", userID, "error", echoErr)
	}

	return transcript, nil
}

func (w *Workflow) fetchValidated(ctx context.Context, ref string, allowedTypes []string, maxSize int64) ([]byte, error) {
	if ref == "" {
		return nil, common.Validationf("file reference is empty")
	}
	data, err := w.files.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	if _, err := w.files.Validate(data, allowedTypes, maxSize); err != nil {
		return nil, err
	}
	return data, nil
}

// stageCandidate validates and parses a raw extraction, replaces the user's
// pending entry and builds the preview. Nothing is staged unless every step
// succeeded.
func (w *Workflow) stageCandidate(userID int64, raw, echo string) (*model.Preview, error) {
	doc, err := sanitize.ValidateReceiptJSON(raw)
	if err != nil {
		return nil, err
	}

	candidate, err := parse.Receipt(doc, userID)
	if err != nil {
		return nil, err
	}

	originalJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, common.MalformedOutputf("re-encode validated document: %v", err)
	}

	entry := w.pending.Stage(userID, candidate, string(originalJSON))
	slog.Debug("candidate staged",
		"user_id", userID,
		"merchant", candidate.Merchant,
		"total", candidate.TotalAmount,
		"positions", len(candidate.Positions))

	preview := model.NewPreview(candidate, entry.Token, echo)
	return &preview, nil
}
