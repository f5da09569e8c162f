// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot questions, reasoning graphs, OCR and voice.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/medchat-tui/internal/apiclient"
	"github.com/jeranaias/medchat-tui/internal/media"
	"github.com/jeranaias/medchat-tui/internal/ui/chat"
	"github.com/jeranaias/medchat-tui/internal/ui/components"
)

// HandleAsk sends one question and prints the answer.
func HandleAsk(ctx context.Context, args Args, d Deps) error {
	return OutputJSON(d.Out, args.JSON, "ask", func() (interface{}, error) {
		text := strings.TrimSpace(args.Query)
		if text == "" {
			return nil, ErrMissingArgument("question", "medchat ask <question>")
		}
		user, err := requireSession(ctx, d)
		if err != nil {
			return nil, err
		}
		res, err := send(ctx, d, user, text, convArg(args.ConvID))
		if err != nil {
			return nil, err
		}
		if !args.JSON {
			printAnswer(d, res)
		}
		return res, nil
	})
}

// printAnswer writes the answer to Out and the conversation hint to Err.
func printAnswer(d Deps, res *askResult) {
	fmt.Fprintln(d.Out, renderAnswer(d, res.Answer))
	if !res.ConvID.IsZero() && d.Err != nil {
		fmt.Fprintln(d.Err, DimStyle.Render(fmt.Sprintf("conversation %s · continue with --conv %s", res.ConvID, res.ConvID)))
	}
}

// graphData is the JSON form of a reasoning graph.
type graphData struct {
	ConvID apiclient.ID    `json:"conv_id"`
	Graph  json.RawMessage `json:"graph"`
}

// HandleGraph prints the reasoning graph of a conversation.
func HandleGraph(ctx context.Context, args Args, d Deps) error {
	return OutputJSON(d.Out, args.JSON, "graph", func() (interface{}, error) {
		conv := convArg(args.ConvID)
		if conv == nil {
			return nil, ErrMissingArgument("conv_id", "medchat graph <conv_id>")
		}
		if _, err := requireSession(ctx, d); err != nil {
			return nil, err
		}
		graph, err := d.Chat.FetchGraph(ctx, *conv)
		if err != nil {
			return nil, err
		}
		if !args.JSON {
			printGraph(d, *conv, graph)
		}
		return graphData{ConvID: *conv, Graph: json.RawMessage(graph.Pretty())}, nil
	})
}

func printGraph(d Deps, conv apiclient.ID, graph *apiclient.Graph) {
	if d.Err != nil {
		fmt.Fprintln(d.Err, TitleStyle.Render(components.GraphTitle(conv)))
	}
	body := graph.Pretty()
	if d.Color {
		body = components.HighlightJSON(body)
	}
	fmt.Fprintln(d.Out, body)
}

// mediaResult is the JSON form of ocr and voice. Answer is set unless
// --no-ask was given.
type mediaResult struct {
	Text   string     `json:"text"`
	Answer *askResult `json:"answer,omitempty"`
}

// HandleOCR extracts text from an image and asks it as a question.
func HandleOCR(ctx context.Context, args Args, d Deps) error {
	return OutputJSON(d.Out, args.JSON, "ocr", func() (interface{}, error) {
		if strings.TrimSpace(args.Path) == "" {
			return nil, ErrMissingArgument("image", "medchat ocr <image>")
		}
		user, err := requireSession(ctx, d)
		if err != nil {
			return nil, err
		}
		text, err := extractText(ctx, d, args.Path)
		if err != nil {
			return nil, err
		}
		return finishMedia(ctx, args, d, user, text)
	})
}

// extractText packages the image locally and sends it for OCR.
func extractText(ctx context.Context, d Deps, path string) (string, error) {
	var limit int64
	if d.Config != nil {
		limit = int64(d.Config.Media.MaxUploadMB) * 1024 * 1024
	}
	upload, err := media.ImageUpload(path, limit)
	if err != nil {
		return "", err
	}
	text, err := d.Media.ExtractText(ctx, upload.Filename, upload.ContentType, upload.Data)
	if err != nil {
		d.log().Info("ocr failed", zap.String("path", path), zap.Error(err))
		return "", WrapError(err, chat.MsgOCRFailed)
	}
	return text, nil
}

// HandleVoice transcribes an audio file, or records from the microphone
// until Enter when no file is given, and asks the transcript.
func HandleVoice(ctx context.Context, args Args, d Deps) error {
	return OutputJSON(d.Out, args.JSON, "voice", func() (interface{}, error) {
		user, err := requireSession(ctx, d)
		if err != nil {
			return nil, err
		}

		var audio []byte
		if args.Path != "" {
			data, err := os.ReadFile(args.Path)
			if err != nil {
				return nil, fmt.Errorf("read audio: %w", err)
			}
			upload, err := media.VoiceUpload(data)
			if err != nil {
				return nil, err
			}
			audio = upload.Data
		} else {
			upload, err := record(ctx, d)
			if err != nil {
				return nil, err
			}
			audio = upload.Data
		}

		text, err := d.Media.Transcribe(ctx, audio)
		if err != nil {
			d.log().Info("voice processing failed", zap.Error(err))
			return nil, WrapError(err, chat.MsgVoiceFailed)
		}
		return finishMedia(ctx, args, d, user, text)
	})
}

// record captures one clip. The user presses Enter to stop.
func record(ctx context.Context, d Deps) (*media.Upload, error) {
	if d.Mic == nil || d.Prompt == nil {
		return nil, &media.CaptureError{}
	}
	if err := d.Mic.Start(ctx); err != nil {
		return nil, err
	}
	if _, err := d.Prompt.ReadLine(RenderStatus("warn") + " Recording... press Enter to stop "); err != nil {
		_, _ = d.Mic.Stop()
		return nil, err
	}
	return d.Mic.Stop()
}

// finishMedia prints extracted text and, unless --no-ask, asks it.
func finishMedia(ctx context.Context, args Args, d Deps, user *apiclient.User, text string) (*mediaResult, error) {
	res := &mediaResult{Text: text}
	if !args.JSON {
		fmt.Fprintln(d.Out, text)
	}
	if args.NoAsk || strings.TrimSpace(text) == "" {
		return res, nil
	}
	answer, err := send(ctx, d, user, text, nil)
	if err != nil {
		return nil, err
	}
	res.Answer = answer
	if !args.JSON {
		fmt.Fprintln(d.Out, RenderSeparator())
		printAnswer(d, answer)
	}
	return res, nil
}
